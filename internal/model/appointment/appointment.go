// Package appointment instantiates the record store for appointment scheduling.
package appointment

import (
	"time"

	"github.com/zhouzirui/recordkeeper/backend/internal/model/record"
)

// Status is the lifecycle position of an appointment.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Timestamps written by appointment transitions.
const (
	StampCompleted = "completed_at"
	StampCancelled = "cancelled_at"
)

// Details holds the appointment fields the store does not interpret.
type Details struct {
	ScheduledAt time.Time `json:"scheduledAt"`
}

type (
	Record = record.Record[Status, Details]
	Store  = record.Store[Status, Details]
)

// Graph: active may be completed or cancelled, both terminal.
var Graph = record.MustGraph(StatusActive,
	[]Status{StatusActive, StatusCompleted, StatusCancelled},
	record.Edge[Status]{From: StatusActive, To: StatusCompleted, Stamp: StampCompleted},
	record.Edge[Status]{From: StatusActive, To: StatusCancelled, Stamp: StampCancelled},
)

// Verbs maps the named operations of the scheduling desk to target statuses.
var Verbs = map[string]Status{
	"complete": StatusCompleted,
	"cancel":   StatusCancelled,
}

// NewStore returns an appointment book with ids "appointment-1", "appointment-2", ...
// Patient names are not required to be unique.
func NewStore(opts ...record.Option) *Store {
	base := []record.Option{record.WithIDGenerator(record.NewSequence("appointment"))}
	return record.New[Status, Details](Graph, append(base, opts...)...)
}
