package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	flag "github.com/spf13/pflag"

	"github.com/nhle/todoclient/internal/api"
	"github.com/nhle/todoclient/internal/app"
	"github.com/nhle/todoclient/internal/auth"
	"github.com/nhle/todoclient/internal/credential"
	"github.com/nhle/todoclient/internal/model"
	"github.com/nhle/todoclient/internal/store"
	"github.com/nhle/todoclient/internal/theme"
)

func main() {
	configPath := flag.StringP("config", "c", model.DefaultConfigPath(), "path to the config file")
	baseURL := flag.String("base-url", "", "override api.base_url")
	writeConfig := flag.Bool("write-config", false, "write the effective config to --config and exit")
	flag.Parse()

	if err := run(*configPath, *baseURL, *writeConfig); err != nil {
		fmt.Fprintln(os.Stderr, "todoclient:", err)
		os.Exit(1)
	}
}

func run(configPath, baseURL string, writeConfig bool) error {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if baseURL != "" {
		cfg.API.BaseURL = baseURL
	}

	if writeConfig {
		return model.SaveConfig(configPath, cfg)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	logFile, err := tea.LogToFile(cfg.Log.File, "todoclient")
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	secrets, err := credential.Open(model.ConfigDir())
	if err != nil {
		return err
	}

	prefs, err := store.NewSQLiteStore(cfg.Storage.StateDB)
	if err != nil {
		return err
	}
	defer prefs.Close()

	client := api.NewClient(cfg.API.BaseURL)
	svc := auth.NewService(client, secrets, prefs, auth.Options{
		EmailDomain:   cfg.Register.EmailDomain,
		VerifySession: cfg.API.VerifySession,
	})

	theme.Apply(cfg.Display.Theme)
	log.Printf("starting against %s", client.BaseURL())

	root := app.New(*cfg, svc, client).WithConfigPath(configPath)
	p := tea.NewProgram(root, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
