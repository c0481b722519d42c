package todoview

import (
	"time"

	"github.com/nhle/todoclient/internal/model"
)

// PageLoadedMsg carries the result of a page fetch. Seq is the request
// token it was issued under; only the latest Seq is applied.
type PageLoadedMsg struct {
	View   int
	Seq    int
	Filter model.Filter
	Page   *model.TodoPage
	Err    error
}

// TodoAddedMsg is sent after a create call returns.
type TodoAddedMsg struct {
	View int
	Todo *model.Todo
	Err  error
}

// TodoMarkedMsg is sent after a mark call returns.
type TodoMarkedMsg struct {
	View   int
	ID     string
	Action model.MarkAction
	Err    error
}

// TodoDeletedMsg is sent after a single delete call returns.
type TodoDeletedMsg struct {
	View int
	ID   string
	Err  error
}

// DeleteOutcome is the result of deleting one todo in a bulk delete.
type DeleteOutcome struct {
	ID  string
	Err error
}

// BulkDeletedMsg is sent once every delete of a bulk delete has settled.
type BulkDeletedMsg struct {
	View     int
	Outcomes []DeleteOutcome
}

// Failed returns the outcomes that did not succeed.
func (m BulkDeletedMsg) Failed() []DeleteOutcome {
	var out []DeleteOutcome
	for _, o := range m.Outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}

// FailedMsg reports an operation failure that should be surfaced to the
// user. It never stops the view.
type FailedMsg struct {
	View int
	Op   string
	Err  error
}

// searchTickMsg fires when the debounce interval of search generation Seq
// has elapsed.
type searchTickMsg struct {
	View int
	Seq  int
	At   time.Time
}
