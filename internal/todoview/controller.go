// Package todoview keeps one page of todos consistent with user intent
// and the remote store. All state changes happen in Update, on the Bubble
// Tea event loop; remote calls run as commands and report back as
// messages.
package todoview

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sourcegraph/conc/iter"

	"github.com/nhle/todoclient/internal/api"
	"github.com/nhle/todoclient/internal/model"
)

// ErrEmptyItem is returned by Add for blank input.
var ErrEmptyItem = api.Validation("add todo", "Please enter a task")

// API is the part of the remote client the controller drives.
type API interface {
	GetTodos(ctx context.Context, token string, q api.TodoQuery) (*model.TodoPage, error)
	CreateTodo(ctx context.Context, item, token string) (*model.Todo, error)
	MarkTodo(ctx context.Context, id string, action model.MarkAction, token string) (api.Ack, error)
	DeleteTodoByID(ctx context.Context, id, token string) (api.Ack, error)
}

// State is the fetch state of a view.
type State int

const (
	Idle State = iota
	Loading
)

// Options configure a view variant.
type Options struct {
	PageSize int

	// Debounce is the quiet period after the last search keystroke
	// before the search is committed.
	Debounce time.Duration

	// SearchFields are the todo fields the search term is matched
	// against, e.g. "item" or "user.fullName".
	SearchFields []string

	// StatusFilter enables the done/undone filter.
	StatusFilter bool
}

// UserOptions is the variant for a user's own todos.
func UserOptions(pageSize int, debounce time.Duration) Options {
	return Options{
		PageSize:     pageSize,
		Debounce:     debounce,
		SearchFields: []string{"item"},
	}
}

// AdminOptions is the variant for the admin view over every user's todos.
func AdminOptions(pageSize int, debounce time.Duration) Options {
	return Options{
		PageSize:     pageSize,
		Debounce:     debounce,
		SearchFields: []string{"item", "user.fullName"},
		StatusFilter: true,
	}
}

var lastViewID atomic.Int64

// Controller owns one page of todos, its filter, and the bookkeeping
// that keeps stale responses out.
type Controller struct {
	id    int
	api   API
	token string
	opts  Options

	filter  model.Filter
	pending string

	// searchSeq is the debounce generation; fetchSeq the request token.
	searchSeq int
	fetchSeq  int

	page model.TodoPage

	// snapshot is the done flag of each entry as the server last
	// confirmed it, used to roll back failed optimistic toggles.
	snapshot map[string]bool

	state  State
	loaded bool
	err    error
}

// New creates a controller for token. Call Load to fetch the first page.
func New(client API, token string, opts Options) *Controller {
	if opts.PageSize <= 0 {
		opts.PageSize = 5
	}
	if len(opts.SearchFields) == 0 {
		opts.SearchFields = []string{"item"}
	}
	return &Controller{
		id:       int(lastViewID.Add(1)),
		api:      client,
		token:    token,
		opts:     opts,
		filter:   model.Filter{Page: 1},
		snapshot: make(map[string]bool),
	}
}

// ID identifies this controller's messages.
func (c *Controller) ID() int { return c.id }

// Options returns the view variant.
func (c *Controller) Options() Options { return c.opts }

// Page returns the current snapshot.
func (c *Controller) Page() model.TodoPage { return c.page }

// Entries returns the todos of the current page.
func (c *Controller) Entries() []model.Todo { return c.page.Entries }

// Filter returns the committed filter.
func (c *Controller) Filter() model.Filter { return c.filter }

// PendingSearch returns the search text not yet committed by the debounce.
func (c *Controller) PendingSearch() string { return c.pending }

// State returns Idle or Loading.
func (c *Controller) State() State { return c.state }

// Loading reports whether a fetch is outstanding.
func (c *Controller) Loading() bool { return c.state == Loading }

// Err returns the last fetch failure, cleared by the next success.
func (c *Controller) Err() error { return c.err }

// NoData reports whether the last accepted fetch returned nothing.
func (c *Controller) NoData() bool {
	return c.loaded && c.page.Empty()
}

// TotalPages returns the server's page count, at least 1.
func (c *Controller) TotalPages() int {
	if c.page.TotalPages < 1 {
		return 1
	}
	return c.page.TotalPages
}

// Load fetches the page for the current filter.
func (c *Controller) Load() tea.Cmd { return c.fetch() }

// Refresh re-fetches the current page.
func (c *Controller) Refresh() tea.Cmd { return c.fetch() }

// SetSearch records a keystroke-level change of the search text. The
// term is committed after the debounce quiet period.
func (c *Controller) SetSearch(term string) tea.Cmd {
	c.pending = term
	c.searchSeq++
	if c.opts.Debounce <= 0 {
		return c.commitSearch()
	}

	view, seq := c.id, c.searchSeq
	return tea.Tick(c.opts.Debounce, func(t time.Time) tea.Msg {
		return searchTickMsg{View: view, Seq: seq, At: t}
	})
}

// SubmitSearch commits the pending search immediately.
func (c *Controller) SubmitSearch() tea.Cmd {
	c.searchSeq++
	return c.commitSearch()
}

// ClearSearch drops both the pending and committed search.
func (c *Controller) ClearSearch() tea.Cmd {
	c.pending = ""
	return c.SubmitSearch()
}

func (c *Controller) commitSearch() tea.Cmd {
	term := strings.TrimSpace(c.pending)
	if term == c.filter.Search && c.filter.Page == 1 && c.loaded {
		return nil
	}
	c.filter = c.filter.WithSearch(term)
	return c.fetch()
}

// SetStatusFilter constrains the view to done (true), undone (false) or
// all (nil) todos. Views without the status filter ignore it.
func (c *Controller) SetStatusFilter(status *bool) tea.Cmd {
	if !c.opts.StatusFilter {
		return nil
	}
	c.filter = c.filter.WithStatus(status)
	return c.fetch()
}

// CycleStatusFilter steps all → done → undone → all.
func (c *Controller) CycleStatusFilter() tea.Cmd {
	var next *bool
	switch {
	case c.filter.Status == nil:
		done := true
		next = &done
	case *c.filter.Status:
		undone := false
		next = &undone
	}
	return c.SetStatusFilter(next)
}

// SetPage fetches page n, clamped to the known page range.
func (c *Controller) SetPage(n int) tea.Cmd {
	if n > c.TotalPages() {
		n = c.TotalPages()
	}
	if n < 1 {
		n = 1
	}
	if n == c.filter.Page {
		return nil
	}
	c.filter.Page = n
	return c.fetch()
}

// NextPage moves one page forward.
func (c *Controller) NextPage() tea.Cmd { return c.SetPage(c.filter.Page + 1) }

// PrevPage moves one page back.
func (c *Controller) PrevPage() tea.Cmd { return c.SetPage(c.filter.Page - 1) }

// Add creates a todo from item. Blank input is rejected without a call.
func (c *Controller) Add(item string) (tea.Cmd, error) {
	item = strings.TrimSpace(item)
	if item == "" {
		return nil, ErrEmptyItem
	}

	client, token, view := c.api, c.token, c.id
	return func() tea.Msg {
		todo, err := client.CreateTodo(context.Background(), item, token)
		return TodoAddedMsg{View: view, Todo: todo, Err: err}
	}, nil
}

// Toggle flips the done flag of id locally and asks the server for the
// opposite of the previous local state. A failed mark rolls the entry
// back to the last server-confirmed value.
func (c *Controller) Toggle(id string) tea.Cmd {
	i := c.indexOf(id)
	if i < 0 {
		return nil
	}

	action := model.ActionFor(c.page.Entries[i].IsDone)
	c.page.Entries[i].IsDone = !c.page.Entries[i].IsDone

	client, token, view := c.api, c.token, c.id
	return func() tea.Msg {
		_, err := client.MarkTodo(context.Background(), id, action, token)
		return TodoMarkedMsg{View: view, ID: id, Action: action, Err: err}
	}
}

// Delete removes id, then re-fetches the current page.
func (c *Controller) Delete(id string) tea.Cmd {
	client, token, view := c.api, c.token, c.id
	return func() tea.Msg {
		_, err := client.DeleteTodoByID(context.Background(), id, token)
		return TodoDeletedMsg{View: view, ID: id, Err: err}
	}
}

// DeleteCompleted deletes every done todo on the current page
// concurrently and reports once all deletes have settled.
func (c *Controller) DeleteCompleted() tea.Cmd {
	ids := c.page.Completed()
	if len(ids) == 0 {
		return nil
	}

	client, token, view := c.api, c.token, c.id
	return func() tea.Msg {
		mapper := iter.Mapper[string, DeleteOutcome]{MaxGoroutines: len(ids)}
		outcomes := mapper.Map(ids, func(id *string) DeleteOutcome {
			_, err := client.DeleteTodoByID(context.Background(), *id, token)
			return DeleteOutcome{ID: *id, Err: err}
		})
		return BulkDeletedMsg{View: view, Outcomes: outcomes}
	}
}

// Update applies results addressed to this controller. Messages for
// other views are ignored.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case searchTickMsg:
		if msg.View != c.id || msg.Seq != c.searchSeq {
			return nil
		}
		return c.commitSearch()

	case PageLoadedMsg:
		if msg.View != c.id {
			return nil
		}
		return c.applyPage(msg)

	case TodoAddedMsg:
		if msg.View != c.id {
			return nil
		}
		if msg.Err != nil {
			return c.fail("add todo", msg.Err)
		}
		c.filter.Page = 1
		return c.fetch()

	case TodoMarkedMsg:
		if msg.View != c.id {
			return nil
		}
		if msg.Err != nil {
			c.rollback(msg.ID)
			return c.fail("mark todo", msg.Err)
		}
		c.snapshot[msg.ID] = msg.Action == model.MarkDone
		return nil

	case TodoDeletedMsg:
		if msg.View != c.id {
			return nil
		}
		refetch := c.fetch()
		if msg.Err != nil {
			return tea.Batch(c.fail("delete todo", msg.Err), refetch)
		}
		return refetch

	case BulkDeletedMsg:
		if msg.View != c.id {
			return nil
		}
		refetch := c.fetch()
		failed := msg.Failed()
		if len(failed) == 0 {
			return refetch
		}
		errs := make([]error, 0, len(failed))
		for _, o := range failed {
			errs = append(errs, fmt.Errorf("todo %s: %w", o.ID, o.Err))
		}
		err := &api.Error{
			Kind: api.KindRemote,
			Op:   "delete completed",
			Message: fmt.Sprintf(
				"Failed to delete %d of %d completed todos",
				len(failed), len(msg.Outcomes),
			),
			Err: errors.Join(errs...),
		}
		return tea.Batch(c.fail("delete completed", err), refetch)
	}

	return nil
}

// applyPage accepts the response of the latest request and drops the rest.
func (c *Controller) applyPage(msg PageLoadedMsg) tea.Cmd {
	if msg.Seq != c.fetchSeq {
		return nil
	}
	c.state = Idle

	if msg.Err != nil {
		c.err = msg.Err
		return c.fail("get todos", msg.Err)
	}

	page := *msg.Page
	if page.Page == 0 {
		page.Page = msg.Filter.Page
	}

	// The page we were on can vanish after deletes; step back to the last one.
	if page.Empty() && msg.Filter.Page > 1 && page.TotalPages >= 1 &&
		msg.Filter.Page > page.TotalPages {
		c.filter.Page = page.TotalPages
		return c.fetch()
	}

	c.err = nil
	c.loaded = true
	c.page = page
	c.snapshot = make(map[string]bool, len(page.Entries))
	for _, t := range page.Entries {
		c.snapshot[t.ID] = t.IsDone
	}
	return nil
}

func (c *Controller) rollback(id string) {
	i := c.indexOf(id)
	if i < 0 {
		return
	}
	if done, ok := c.snapshot[id]; ok {
		c.page.Entries[i].IsDone = done
	}
}

func (c *Controller) indexOf(id string) int {
	for i, t := range c.page.Entries {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// fetch issues a request for the current filter under a new token.
func (c *Controller) fetch() tea.Cmd {
	c.fetchSeq++
	c.state = Loading

	client, token, view, seq := c.api, c.token, c.id, c.fetchSeq
	filter := c.filter
	query := c.query(filter)
	return func() tea.Msg {
		page, err := client.GetTodos(context.Background(), token, query)
		return PageLoadedMsg{View: view, Seq: seq, Filter: filter, Page: page, Err: err}
	}
}

func (c *Controller) query(f model.Filter) api.TodoQuery {
	q := api.TodoQuery{Page: f.Page, Rows: c.opts.PageSize}

	if f.Search != "" {
		q.SearchFilters = make(map[string]string, len(c.opts.SearchFields))
		for _, field := range c.opts.SearchFields {
			q.SearchFilters[field] = f.Search
		}
	}
	if c.opts.StatusFilter && f.Status != nil {
		q.Filters = map[string]any{"isDone": *f.Status}
	}

	return q
}

func (c *Controller) fail(op string, err error) tea.Cmd {
	log.Printf("%s: %v", op, err)
	view := c.id
	return func() tea.Msg {
		return FailedMsg{View: view, Op: op, Err: err}
	}
}
