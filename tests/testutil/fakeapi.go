package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// FakeAPI is an in-memory stand-in for the remote todo API served over
// httptest. Admins see every todo; users see their own.
type FakeAPI struct {
	Server *httptest.Server

	mu       sync.Mutex
	users    map[string]*fakeUser // by email
	tokens   map[string]string    // token -> email
	todos    []*fakeTodo
	clock    time.Time
	requests []RecordedRequest
	failures []failure

	// OmitToken makes /login answer 200 without a token.
	OmitToken bool
}

// RecordedRequest is one request seen by the fake.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Auth   string
	Body   map[string]any
}

type fakeUser struct {
	ID       string
	FullName string
	Email    string
	Password string
	Role     string
}

type fakeTodo struct {
	ID        string    `json:"id"`
	Item      string    `json:"item"`
	IsDone    bool      `json:"isDone"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	owner     *fakeUser
}

type failure struct {
	method string
	prefix string
	status int
	body   string
}

// NewFakeAPI starts a fake API server that is closed when the test ends.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()

	f := &FakeAPI{
		users:  make(map[string]*fakeUser),
		tokens: make(map[string]string),
		clock:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the base URL of the fake.
func (f *FakeAPI) URL() string { return f.Server.URL }

// AddUser registers an account directly and returns its ID.
func (f *FakeAPI) AddUser(fullName, email, password, role string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addUserLocked(fullName, email, password, role).ID
}

func (f *FakeAPI) addUserLocked(fullName, email, password, role string) *fakeUser {
	u := &fakeUser{
		ID:       uuid.NewString(),
		FullName: fullName,
		Email:    email,
		Password: password,
		Role:     role,
	}
	f.users[email] = u
	return u
}

// Token issues a session token for email without going through /login.
func (f *FakeAPI) Token(t *testing.T, email string) string {
	t.Helper()

	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[email]
	if !ok {
		t.Fatalf("fake api: unknown user %s", email)
	}
	return f.issueLocked(u)
}

func (f *FakeAPI) issueLocked(u *fakeUser) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       u.ID,
		"fullName": u.FullName,
		"email":    u.Email,
		"role":     u.Role,
		"iat":      f.clock.Unix(),
		"jti":      uuid.NewString(),
	}).SignedString([]byte("fake-api-secret"))
	if err != nil {
		panic(err)
	}
	f.tokens[token] = u.Email
	return token
}

// SeedTodo stores a todo owned by email and returns its ID. Later seeds
// are newer.
func (f *FakeAPI) SeedTodo(email, item string, done bool) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createLocked(f.users[email], item, done).ID
}

func (f *FakeAPI) createLocked(owner *fakeUser, item string, done bool) *fakeTodo {
	f.clock = f.clock.Add(time.Second)
	td := &fakeTodo{
		ID:        uuid.NewString(),
		Item:      item,
		IsDone:    done,
		CreatedAt: f.clock,
		owner:     owner,
	}
	if owner != nil {
		td.UserID = owner.ID
	}
	f.todos = append(f.todos, td)
	return td
}

// IsDone reports the stored done flag of id.
func (f *FakeAPI) IsDone(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, td := range f.todos {
		if td.ID == id {
			return td.IsDone
		}
	}
	return false
}

// TodoCount returns how many todos the fake holds.
func (f *FakeAPI) TodoCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.todos)
}

// Fail makes every subsequent request whose method matches and whose
// path starts with prefix answer status with body.
func (f *FakeAPI) Fail(method, prefix string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, failure{
		method: method, prefix: prefix, status: status, body: body,
	})
}

// Requests returns a copy of every request received so far.
func (f *FakeAPI) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RecordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

// Count returns how many requests matched method and path prefix.
func (f *FakeAPI) Count(method, prefix string) int {
	n := 0
	for _, r := range f.Requests() {
		if r.Method == method && strings.HasPrefix(r.Path, prefix) {
			n++
		}
	}
	return n
}

func (f *FakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(raw, &body)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Auth:   r.Header.Get("Authorization"),
		Body:   body,
	})

	for _, fl := range f.failures {
		if fl.method == r.Method && strings.HasPrefix(r.URL.Path, fl.prefix) {
			w.WriteHeader(fl.status)
			_, _ = io.WriteString(w, fl.body)
			return
		}
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/login":
		f.login(w, body)
	case r.Method == http.MethodPost && r.URL.Path == "/register":
		f.register(w, body)
	case r.Method == http.MethodPost && r.URL.Path == "/verify-token":
		f.verify(w, body)
	case r.URL.Path == "/todos" || strings.HasPrefix(r.URL.Path, "/todos/"):
		u := f.authorize(r)
		if u == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Unauthorized"})
			return
		}
		f.todosRoute(w, r, u, body)
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not found"})
	}
}

func (f *FakeAPI) login(w http.ResponseWriter, body map[string]any) {
	email, _ := body["email"].(string)
	password, _ := body["password"].(string)

	u, ok := f.users[email]
	if !ok || u.Password != password {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "Invalid email or password",
		})
		return
	}

	token := ""
	if !f.OmitToken {
		token = f.issueLocked(u)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"content": map[string]any{
			"token": token,
			"user": map[string]any{
				"id": u.ID, "fullName": u.FullName,
				"email": u.Email, "role": u.Role,
			},
		},
	})
}

func (f *FakeAPI) register(w http.ResponseWriter, body map[string]any) {
	fullName, _ := body["fullname"].(string)
	email, _ := body["email"].(string)
	password, _ := body["password"].(string)

	if _, exists := f.users[email]; exists {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "Bad request",
			"errors":  []string{"Email already registered"},
		})
		return
	}

	u := f.addUserLocked(fullName, email, password, "USER")
	writeJSON(w, http.StatusCreated, map[string]any{
		"content": map[string]any{"id": u.ID, "fullName": u.FullName, "email": u.Email},
		"message": "Registered",
	})
}

func (f *FakeAPI) verify(w http.ResponseWriter, body map[string]any) {
	token, _ := body["token"].(string)
	if _, ok := f.tokens[token]; !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Token invalid"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"content": map[string]any{"valid": true}})
}

func (f *FakeAPI) authorize(r *http.Request) *fakeUser {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	email, ok := f.tokens[token]
	if !ok {
		return nil
	}
	return f.users[email]
}

func (f *FakeAPI) todosRoute(w http.ResponseWriter, r *http.Request, u *fakeUser, body map[string]any) {
	rest := strings.TrimPrefix(r.URL.Path, "/todos")
	rest = strings.Trim(rest, "/")
	parts := strings.Split(rest, "/")

	switch {
	case rest == "" && r.Method == http.MethodGet:
		f.list(w, r, u)
	case rest == "" && r.Method == http.MethodPost:
		item, _ := body["item"].(string)
		if strings.TrimSpace(item) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"errors": []string{"item is required"},
			})
			return
		}
		td := f.createLocked(u, item, false)
		writeJSON(w, http.StatusCreated, map[string]any{"content": f.render(td)})
	case len(parts) == 2 && parts[1] == "mark" && r.Method == http.MethodPut:
		td := f.find(parts[0], u)
		if td == nil {
			writeJSON(w, http.StatusNotFound, map[string]any{"message": "Todo not found"})
			return
		}
		switch body["action"] {
		case "DONE":
			td.IsDone = true
		case "UNDONE":
			td.IsDone = false
		default:
			writeJSON(w, http.StatusBadRequest, map[string]any{"errors": []string{"invalid action"}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "Todo updated"})
	case len(parts) == 1 && r.Method == http.MethodDelete:
		td := f.find(parts[0], u)
		if td == nil {
			writeJSON(w, http.StatusNotFound, map[string]any{"message": "Todo not found"})
			return
		}
		f.remove(td.ID)
		writeJSON(w, http.StatusOK, map[string]any{"message": "Todo deleted"})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"message": "Method not allowed"})
	}
}

func (f *FakeAPI) list(w http.ResponseWriter, r *http.Request, u *fakeUser) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	rows, _ := strconv.Atoi(q.Get("rows"))
	if page < 1 {
		page = 1
	}
	if rows < 1 {
		rows = 10
	}

	var search map[string]string
	if s := q.Get("searchFilters"); s != "" {
		_ = json.Unmarshal([]byte(s), &search)
	}
	var filters map[string]any
	if s := q.Get("filters"); s != "" {
		_ = json.Unmarshal([]byte(s), &filters)
	}

	var visible []*fakeTodo
	for _, td := range f.todos {
		if u.Role != "ADMIN" && td.UserID != u.ID {
			continue
		}
		if done, ok := filters["isDone"].(bool); ok && td.IsDone != done {
			continue
		}
		if len(search) > 0 && !matchesAny(td, search) {
			continue
		}
		visible = append(visible, td)
	}

	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].CreatedAt.After(visible[j].CreatedAt)
	})

	total := len(visible)
	totalPage := (total + rows - 1) / rows
	start := (page - 1) * rows
	if start > total {
		start = total
	}
	end := start + rows
	if end > total {
		end = total
	}

	entries := make([]map[string]any, 0, end-start)
	for _, td := range visible[start:end] {
		entries = append(entries, f.render(td))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"content": map[string]any{
			"entries":   entries,
			"page":      page,
			"totalData": total,
			"totalPage": totalPage,
		},
	})
}

func matchesAny(td *fakeTodo, search map[string]string) bool {
	for field, needle := range search {
		var hay string
		switch field {
		case "item":
			hay = td.Item
		case "user.fullName":
			if td.owner != nil {
				hay = td.owner.FullName
			}
		}
		if strings.Contains(strings.ToLower(hay), strings.ToLower(needle)) {
			return true
		}
	}
	return false
}

func (f *FakeAPI) find(id string, u *fakeUser) *fakeTodo {
	for _, td := range f.todos {
		if td.ID == id && (u.Role == "ADMIN" || td.UserID == u.ID) {
			return td
		}
	}
	return nil
}

func (f *FakeAPI) remove(id string) {
	kept := f.todos[:0]
	for _, td := range f.todos {
		if td.ID != id {
			kept = append(kept, td)
		}
	}
	f.todos = kept
}

func (f *FakeAPI) render(td *fakeTodo) map[string]any {
	out := map[string]any{
		"id":        td.ID,
		"item":      td.Item,
		"isDone":    td.IsDone,
		"userId":    td.UserID,
		"createdAt": td.CreatedAt.Format(time.RFC3339),
	}
	if td.owner != nil {
		out["user"] = map[string]any{
			"id":       td.owner.ID,
			"fullName": td.owner.FullName,
			"email":    td.owner.Email,
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
