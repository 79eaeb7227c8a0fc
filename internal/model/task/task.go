// Package task instantiates the record store for a to-do list.
package task

import "github.com/zhouzirui/recordkeeper/backend/internal/model/record"

type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
)

const StampCompleted = "completed_at"

type (
	Record = record.Record[Status, struct{}]
	Store  = record.Store[Status, struct{}]
)

var Graph = record.MustGraph(StatusPending,
	[]Status{StatusPending, StatusDone},
	record.Edge[Status]{From: StatusPending, To: StatusDone, Stamp: StampCompleted},
)

var Verbs = map[string]Status{
	"complete": StatusDone,
}

// NewStore returns a task list with numeric ids. The record metadata holds the
// optional category.
func NewStore(opts ...record.Option) *Store {
	return record.New[Status, struct{}](Graph, opts...)
}
