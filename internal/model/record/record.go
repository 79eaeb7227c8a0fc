// Package record implements a generic in-memory store for records that move
// through a fixed status lifecycle.
package record

import (
	"maps"
	"time"
)

// Status is the constraint satisfied by every domain status enumeration.
type Status interface {
	~string
}

// Record is one managed entity. Data carries the typed domain payload; the
// store never interprets it, nor Metadata.
type Record[S Status, P any] struct {
	ID        string               `json:"id"`
	Label     string               `json:"label"`
	Status    S                    `json:"status"`
	StatusAt  *time.Time           `json:"statusAt,omitempty"`
	Stamps    map[string]time.Time `json:"stamps,omitempty"`
	Metadata  *string              `json:"metadata,omitempty"`
	Data      P                    `json:"data,omitzero"`
	CreatedAt time.Time            `json:"createdAt"`
}

// Stamp returns the named timestamp written by a transition, if present.
func (r Record[S, P]) Stamp(name string) (time.Time, bool) {
	at, ok := r.Stamps[name]
	return at, ok
}

// clone returns a copy that shares no mutable state with r.
func (r Record[S, P]) clone() Record[S, P] {
	out := r
	if r.StatusAt != nil {
		at := *r.StatusAt
		out.StatusAt = &at
	}
	if r.Metadata != nil {
		m := *r.Metadata
		out.Metadata = &m
	}
	out.Stamps = maps.Clone(r.Stamps)
	return out
}
