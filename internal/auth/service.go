// Package auth implements the login, registration and session restore
// flows on top of the API client and the session stores.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/nhle/todoclient/internal/api"
	"github.com/nhle/todoclient/internal/session"
)

// ErrResetUnavailable is returned by ForgotPassword for every valid request.
var ErrResetUnavailable = errors.New("This feature is not available yet. Please contact admin.")

// Remote is the subset of the API client the auth flows use.
type Remote interface {
	Login(ctx context.Context, email, password string) (*api.AuthResponse, error)
	Register(ctx context.Context, fullName, email, password string) (api.Ack, error)
	VerifyToken(ctx context.Context, token string) (api.Ack, error)
}

// LoginInput is the content of the login form.
type LoginInput struct {
	Email    string
	Password string
	Remember bool
}

// RegisterInput is the content of the registration form.
type RegisterInput struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
	About           string
}

// Service runs the auth flows. Tokens go to secrets, the remembered
// login email goes to prefs.
type Service struct {
	remote        Remote
	secrets       session.Store
	prefs         session.Store
	emailDomain   string
	verifySession bool
}

// Options configure a Service.
type Options struct {
	// EmailDomain is appended to registration emails without "@".
	EmailDomain string

	// VerifySession makes Restore confirm the stored token remotely.
	VerifySession bool
}

// NewService creates an auth Service.
func NewService(remote Remote, secrets, prefs session.Store, opts Options) *Service {
	return &Service{
		remote:        remote,
		secrets:       secrets,
		prefs:         prefs,
		emailDomain:   strings.TrimPrefix(opts.EmailDomain, "@"),
		verifySession: opts.VerifySession,
	}
}

// Login validates input, exchanges it for a token, and persists the
// session. Nothing is written when the API returns no usable token.
func (s *Service) Login(ctx context.Context, in LoginInput) (*session.Session, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return nil, api.Validation("login", "Please enter your email and password")
	}

	res, err := s.remote.Login(ctx, email, in.Password)
	if err != nil {
		return nil, err
	}

	sess, err := session.New(res.Token)
	if err != nil {
		log.Printf("login: decoding token: %v", err)
		return nil, &api.Error{
			Kind:    api.KindRemote,
			Op:      "login",
			Message: "Login failed: invalid token returned",
			Err:     err,
		}
	}

	if err := s.secrets.Set(session.KeyToken, sess.Token); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	if err := s.rememberEmail(email, in.Remember); err != nil {
		// The session is usable; losing the remembered email is not fatal.
		log.Printf("login: updating remembered email: %v", err)
	}

	return sess, nil
}

func (s *Service) rememberEmail(email string, remember bool) error {
	if !remember {
		return errors.Join(
			s.prefs.Delete(session.KeyRememberedEmail),
			s.prefs.Delete(session.KeyRememberMe),
		)
	}
	if err := s.prefs.Set(session.KeyRememberedEmail, email); err != nil {
		return err
	}
	return s.prefs.Set(session.KeyRememberMe, "true")
}

// RememberedEmail returns the email saved by a remembered login, or "".
func (s *Service) RememberedEmail() string {
	flag, err := s.prefs.Get(session.KeyRememberMe)
	if err != nil || flag != "true" {
		return ""
	}
	email, err := s.prefs.Get(session.KeyRememberedEmail)
	if err != nil {
		return ""
	}
	return email
}

// Register validates the form locally and creates the account. Empty
// fields and mismatched passwords never reach the network.
func (s *Service) Register(ctx context.Context, in RegisterInput) (api.Ack, error) {
	fields := []string{
		in.FirstName, in.LastName, in.Email,
		in.Password, in.ConfirmPassword, in.About,
	}
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return api.Ack{}, api.Validation("register", "Please fill in all the fields")
		}
	}
	if in.Password != in.ConfirmPassword {
		return api.Ack{}, api.Validation("register", "Passwords do not match")
	}

	fullName := strings.TrimSpace(
		strings.TrimSpace(in.FirstName) + " " + strings.TrimSpace(in.LastName),
	)

	return s.remote.Register(ctx, fullName, s.normalizeEmail(in.Email), in.Password)
}

func (s *Service) normalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	if strings.Contains(email, "@") || s.emailDomain == "" {
		return email
	}
	return email + "@" + s.emailDomain
}

// Restore loads the persisted session. It returns (nil, nil) when there
// is no usable session; a malformed or rejected token is deleted.
func (s *Service) Restore(ctx context.Context) (*session.Session, error) {
	token, err := s.secrets.Get(session.KeyToken)
	if errors.Is(err, session.ErrNotFound) || (err == nil && token == "") {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}

	sess, err := session.New(token)
	if err != nil {
		log.Printf("restore: discarding stored token: %v", err)
		return nil, s.Logout()
	}

	if s.verifySession {
		if _, err := s.remote.VerifyToken(ctx, sess.Token); err != nil {
			log.Printf("restore: token rejected: %v", err)
			return nil, s.Logout()
		}
	}

	return sess, nil
}

// Logout removes the persisted token.
func (s *Service) Logout() error {
	if err := s.secrets.Delete(session.KeyToken); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// ForgotPassword validates the email. Password reset is not offered by
// the API, so a valid request always reports the feature as unavailable.
func (s *Service) ForgotPassword(email string) error {
	if strings.TrimSpace(email) == "" {
		return api.Validation("forgot password", "Please enter your email")
	}
	return ErrResetUnavailable
}
