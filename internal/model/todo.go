package model

import "time"

// MarkAction is the explicit target state sent when marking a todo.
type MarkAction string

const (
	MarkDone   MarkAction = "DONE"
	MarkUndone MarkAction = "UNDONE"
)

// ActionFor returns the action that moves a todo away from isDone.
func ActionFor(isDone bool) MarkAction {
	if isDone {
		return MarkUndone
	}
	return MarkDone
}

// Owner is the denormalized user reference the API attaches to a todo.
type Owner struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email,omitempty"`
}

// Todo is a single entry held by the remote store. The client never
// assigns IDs.
type Todo struct {
	ID        string     `json:"id"`
	Item      string     `json:"item"`
	IsDone    bool       `json:"isDone"`
	UserID    string     `json:"userId,omitempty"`
	User      *Owner     `json:"user,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// OwnerName returns the owner's full name, or "" when the API did not
// include the user.
func (t Todo) OwnerName() string {
	if t.User == nil {
		return ""
	}
	return t.User.FullName
}

// StatusLabel is the admin-facing label for the done flag.
func (t Todo) StatusLabel() string {
	if t.IsDone {
		return "Success"
	}
	return "Pending"
}

// TodoPage is one server-side window of todos. It is always replaced
// wholesale by the next fetch.
type TodoPage struct {
	Entries    []Todo `json:"entries"`
	Page       int    `json:"page"`
	TotalData  int    `json:"totalData"`
	TotalPages int    `json:"totalPage"`
}

// Empty reports whether the page holds no entries.
func (p TodoPage) Empty() bool { return len(p.Entries) == 0 }

// Completed returns the IDs of entries marked done, in page order.
func (p TodoPage) Completed() []string {
	var ids []string
	for _, t := range p.Entries {
		if t.IsDone {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// Filter is the query state of a todo view. Search and Status changes
// reset Page to 1.
type Filter struct {
	Search string
	Status *bool
	Page   int
}

// WithSearch returns a copy with the search term replaced and the page reset.
func (f Filter) WithSearch(term string) Filter {
	f.Search = term
	f.Page = 1
	return f
}

// WithStatus returns a copy with the status constraint replaced and the
// page reset.
func (f Filter) WithStatus(status *bool) Filter {
	f.Status = status
	f.Page = 1
	return f
}
