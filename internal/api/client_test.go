package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nhle/todoclient/internal/api"
	"github.com/nhle/todoclient/internal/model"
	"github.com/nhle/todoclient/tests/testutil"
)

func TestLogin(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	fake.AddUser("Ada Admin", "ada@x.io", "secret", "ADMIN")
	c := api.NewClient(fake.URL() + "/")

	res, err := c.Login(context.Background(), "ada@x.io", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token == "" {
		t.Fatal("expected a token")
	}
	if res.User.Role != "ADMIN" || res.User.FullName != "Ada Admin" {
		t.Errorf("user = %+v", res.User)
	}

	reqs := fake.Requests()
	if len(reqs) != 1 || reqs[0].Auth != "" {
		t.Errorf("login must not send Authorization, got %+v", reqs)
	}
}

func TestLogin_Failures(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	fake.AddUser("Uma", "uma@x.io", "pw", "USER")
	c := api.NewClient(fake.URL())

	_, err := c.Login(context.Background(), "uma@x.io", "wrong")
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Kind != api.KindRemote {
		t.Fatalf("wrong password error = %v, want remote *api.Error", err)
	}
	if api.Message(err) != "Invalid email or password" {
		t.Errorf("Message = %q", api.Message(err))
	}

	fake.OmitToken = true
	_, err = c.Login(context.Background(), "uma@x.io", "pw")
	if !errors.Is(err, api.ErrNoToken) {
		t.Fatalf("missing token error = %v, want ErrNoToken", err)
	}
}

func TestLogin_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := api.NewClient(url).Login(context.Background(), "a", "b")
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Kind != api.KindTransport {
		t.Fatalf("error = %v, want transport *api.Error", err)
	}
	if api.Message(err) != "Login failed" {
		t.Errorf("Message = %q, want generic login failure", api.Message(err))
	}
}

func TestRegister(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	c := api.NewClient(fake.URL())
	ctx := context.Background()

	ack, err := c.Register(ctx, "New Person", "new@x.io", "pw")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if ack.Message != "Registered" {
		t.Errorf("ack message = %q", ack.Message)
	}

	reqs := fake.Requests()
	if got := reqs[0].Body["fullname"]; got != "New Person" {
		t.Errorf("fullname in body = %v", got)
	}

	_, err = c.Register(ctx, "Again", "new@x.io", "pw")
	if api.Message(err) != "Email already registered" {
		t.Errorf("duplicate Message = %q, want first structured error", api.Message(err))
	}
}

func TestRegister_ErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"first of errors list", `{"errors":["a bad","b bad"],"message":"m"}`, "a bad"},
		{"object errors", `{"errors":[{"message":"obj bad"}]}`, "obj bad"},
		{"message only", `{"message":"just message"}`, "just message"},
		{"plain text body", `server exploded`, "server exploded"},
		{"empty body", ``, "Registration failed"},
		{"json without message", `{"status":"conflict"}`, `{"status":"conflict"}`},
		{"blank body", " \n", "Registration failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := api.NewClient(srv.URL).Register(context.Background(), "n", "e", "p")
			if got := api.Message(err); got != tt.want {
				t.Errorf("Message = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVerifyToken(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	fake.AddUser("Uma", "uma@x.io", "pw", "USER")
	token := fake.Token(t, "uma@x.io")
	c := api.NewClient(fake.URL())
	ctx := context.Background()

	if _, err := c.VerifyToken(ctx, token); err != nil {
		t.Fatalf("VerifyToken(valid): %v", err)
	}

	_, err := c.VerifyToken(ctx, "bogus")
	if !errors.Is(err, api.ErrTokenInvalid) {
		t.Fatalf("VerifyToken(bogus) = %v, want ErrTokenInvalid", err)
	}

	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	_, err = api.NewClient(srv.URL).VerifyToken(ctx, token)
	if !errors.Is(err, api.ErrTokenInvalid) {
		t.Fatalf("VerifyToken(transport failure) = %v, want ErrTokenInvalid", err)
	}
	if api.Message(err) != "Token invalid" {
		t.Errorf("Message = %q", api.Message(err))
	}
}

func TestTodos_BearerAndQuery(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": map[string]any{
				"entries": []any{}, "page": 2, "totalData": 0, "totalPage": 0,
			},
		})
	}))
	defer srv.Close()

	_, err := api.NewClient(srv.URL).GetTodos(context.Background(), "tok", api.TodoQuery{
		Page:          2,
		Rows:          5,
		SearchFilters: map[string]string{"item": "milk", "user.fullName": "milk"},
		Filters:       map[string]any{"isDone": true},
	})
	if err != nil {
		t.Fatalf("GetTodos: %v", err)
	}

	if got.Header.Get("Authorization") != "Bearer tok" {
		t.Errorf("Authorization = %q", got.Header.Get("Authorization"))
	}
	q := got.URL.Query()
	checks := map[string]string{
		"page":          "2",
		"rows":          "5",
		"orderKey":      "createdAt",
		"orderRule":     "desc",
		"searchFilters": `{"item":"milk","user.fullName":"milk"}`,
		"filters":       `{"isDone":true}`,
	}
	for k, want := range checks {
		if q.Get(k) != want {
			t.Errorf("query %s = %q, want %q", k, q.Get(k), want)
		}
	}
}

func TestTodos_OptionalFiltersOmitted(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	fake.AddUser("Uma", "uma@x.io", "pw", "USER")
	token := fake.Token(t, "uma@x.io")

	_, err := api.NewClient(fake.URL()).GetTodos(context.Background(), token, api.TodoQuery{Page: 1, Rows: 5})
	if err != nil {
		t.Fatalf("GetTodos: %v", err)
	}

	q := fake.Requests()[0].Query
	if q.Has("searchFilters") || q.Has("filters") {
		t.Errorf("unexpected filter params: %v", q)
	}
}

func TestGetTodos_PageBounds(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	fake.AddUser("Uma", "uma@x.io", "pw", "USER")
	for i := 0; i < 12; i++ {
		fake.SeedTodo("uma@x.io", "item", false)
	}
	token := fake.Token(t, "uma@x.io")
	c := api.NewClient(fake.URL())

	for page := 1; page <= 3; page++ {
		res, err := c.GetTodos(context.Background(), token, api.TodoQuery{Page: page, Rows: 5})
		if err != nil {
			t.Fatalf("page %d: %v", page, err)
		}
		if len(res.Entries) > 5 {
			t.Errorf("page %d has %d entries, want <= 5", page, len(res.Entries))
		}
		if res.Page != page {
			t.Errorf("page echoed %d, want %d", res.Page, page)
		}
		if res.TotalPages != 3 || res.TotalData != 12 {
			t.Errorf("totals = %d pages / %d rows", res.TotalPages, res.TotalData)
		}
	}
}

func TestTodoLifecycle(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	fake.AddUser("Uma", "uma@x.io", "pw", "USER")
	fake.SeedTodo("uma@x.io", "older", false)
	token := fake.Token(t, "uma@x.io")
	c := api.NewClient(fake.URL())
	ctx := context.Background()

	created, err := c.CreateTodo(ctx, "Buy milk", token)
	if err != nil {
		t.Fatalf("CreateTodo: %v", err)
	}
	if created.ID == "" || created.Item != "Buy milk" || created.IsDone {
		t.Fatalf("created = %+v", created)
	}

	page, err := c.GetTodos(ctx, token, api.TodoQuery{Page: 1, Rows: 5})
	if err != nil {
		t.Fatalf("GetTodos: %v", err)
	}
	if page.Entries[0].ID != created.ID {
		t.Errorf("newest todo should be first, got %+v", page.Entries)
	}

	if _, err := c.MarkTodo(ctx, created.ID, model.MarkDone, token); err != nil {
		t.Fatalf("MarkTodo: %v", err)
	}
	if !fake.IsDone(created.ID) {
		t.Error("todo should be done on the server")
	}
	if body := fake.Requests()[len(fake.Requests())-1].Body; body["action"] != "DONE" {
		t.Errorf("mark body = %v", body)
	}

	if _, err := c.DeleteTodoByID(ctx, created.ID, token); err != nil {
		t.Fatalf("DeleteTodoByID: %v", err)
	}
	if fake.TodoCount() != 1 {
		t.Errorf("TodoCount = %d, want 1", fake.TodoCount())
	}
}

func TestTodos_Unauthorized(t *testing.T) {
	fake := testutil.NewFakeAPI(t)

	_, err := api.NewClient(fake.URL()).GetTodos(context.Background(), "expired", api.TodoQuery{Page: 1, Rows: 5})
	if !api.IsUnauthorized(err) {
		t.Fatalf("error = %v, want unauthorized", err)
	}
}
