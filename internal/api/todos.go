package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nhle/todoclient/internal/model"
)

// Fixed ordering for GET /todos: newest first.
const (
	orderKey  = "createdAt"
	orderRule = "desc"
)

// GetTodos fetches one page of todos visible to token.
func (c *Client) GetTodos(
	ctx context.Context,
	token string,
	q TodoQuery,
) (*model.TodoPage, error) {
	params, err := q.values()
	if err != nil {
		return nil, err
	}

	var env Envelope[model.TodoPage]
	_, err = c.do(ctx, request{
		op:       "get todos",
		method:   http.MethodGet,
		path:     "/todos",
		query:    params,
		token:    token,
		fallback: "Failed to fetch todos",
	}, &env)
	if err != nil {
		return nil, err
	}

	page := env.Content
	if page.Entries == nil {
		page.Entries = []model.Todo{}
	}
	return &page, nil
}

// CreateTodo adds item and returns the todo as stored by the API.
func (c *Client) CreateTodo(
	ctx context.Context,
	item, token string,
) (*model.Todo, error) {
	var env Envelope[model.Todo]
	_, err := c.do(ctx, request{
		op:       "create todo",
		method:   http.MethodPost,
		path:     "/todos",
		token:    token,
		body:     createTodoRequest{Item: item},
		fallback: "Failed to add todo",
	}, &env)
	if err != nil {
		return nil, err
	}
	return &env.Content, nil
}

// MarkTodo sets the done state of a todo explicitly.
func (c *Client) MarkTodo(
	ctx context.Context,
	id string,
	action model.MarkAction,
	token string,
) (Ack, error) {
	body, err := c.do(ctx, request{
		op:       "mark todo",
		method:   http.MethodPut,
		path:     "/todos/" + url.PathEscape(id) + "/mark",
		token:    token,
		body:     markTodoRequest{Action: action},
		fallback: "Failed to update todo",
	}, nil)
	if err != nil {
		return Ack{}, err
	}
	return ack(body), nil
}

// DeleteTodoByID removes a todo.
func (c *Client) DeleteTodoByID(
	ctx context.Context,
	id, token string,
) (Ack, error) {
	body, err := c.do(ctx, request{
		op:       "delete todo",
		method:   http.MethodDelete,
		path:     "/todos/" + url.PathEscape(id),
		token:    token,
		fallback: "Failed to delete todo",
	}, nil)
	if err != nil {
		return Ack{}, err
	}
	return ack(body), nil
}

// values serializes q into query parameters. Filter maps travel as
// compact JSON values.
func (q TodoQuery) values() (url.Values, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("rows", strconv.Itoa(q.Rows))
	params.Set("orderKey", orderKey)
	params.Set("orderRule", orderRule)

	if len(q.SearchFilters) > 0 {
		data, err := json.Marshal(q.SearchFilters)
		if err != nil {
			return nil, fmt.Errorf("encoding search filters: %w", err)
		}
		params.Set("searchFilters", string(data))
	}

	if len(q.Filters) > 0 {
		data, err := json.Marshal(q.Filters)
		if err != nil {
			return nil, fmt.Errorf("encoding filters: %w", err)
		}
		params.Set("filters", string(data))
	}

	return params, nil
}
