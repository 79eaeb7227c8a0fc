package record

import (
	"iter"
	"strings"
	"time"

	ierr "github.com/zhouzirui/recordkeeper/backend/internal/errors"
)

// Store holds records in insertion order. It is not safe for concurrent use;
// callers that share a Store serialize access themselves.
type Store[S Status, P any] struct {
	graph   *Graph[S]
	ids     IDGenerator
	now     func() time.Time
	unique  bool
	fold    bool
	records []Record[S, P]
}

type options struct {
	ids    IDGenerator
	now    func() time.Time
	unique bool
	fold   bool
}

// Option configures a Store.
type Option func(*options)

// WithIDGenerator replaces the default numeric sequence.
func WithIDGenerator(ids IDGenerator) Option {
	return func(o *options) { o.ids = ids }
}

// WithClock replaces time.Now for transition timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithUniqueLabels rejects Create calls whose label matches an existing record.
func WithUniqueLabels() Option {
	return func(o *options) { o.unique = true }
}

// WithCaseInsensitiveLabels compares labels case-insensitively in FindByLabel
// and in the uniqueness check.
func WithCaseInsensitiveLabels() Option {
	return func(o *options) { o.fold = true }
}

// New returns an empty store whose records follow graph.
func New[S Status, P any](graph *Graph[S], opts ...Option) *Store[S, P] {
	o := options{
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.ids == nil {
		o.ids = NewSequence("")
	}
	return &Store[S, P]{
		graph:  graph,
		ids:    o.ids,
		now:    o.now,
		unique: o.unique,
		fold:   o.fold,
	}
}

// Graph returns the lifecycle the store enforces.
func (s *Store[S, P]) Graph() *Graph[S] { return s.graph }

// Create appends a record in the initial status. A duplicate label on a
// unique-label store fails with ErrAlreadyExists without allocating an id.
func (s *Store[S, P]) Create(label string, metadata *string, data P) (Record[S, P], error) {
	if s.unique {
		if existing, ok := s.lookupLabel(label); ok {
			return Record[S, P]{}, ierr.NewErrorf("label %q already exists", label).
				WithHintf("A record labelled %q already exists", existing.Label).
				WithReportableDetails(map[string]any{
					"label":       label,
					"existing_id": existing.ID,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
	}

	rec := Record[S, P]{
		ID:        s.ids.Next(),
		Label:     label,
		Status:    s.graph.Initial(),
		Data:      data,
		CreatedAt: s.now(),
	}
	if metadata != nil {
		m := *metadata
		rec.Metadata = &m
	}
	s.records = append(s.records, rec)
	return rec.clone(), nil
}

// FindByID returns the record with the given id.
func (s *Store[S, P]) FindByID(id string) (Record[S, P], error) {
	i, ok := s.indexOf(id)
	if !ok {
		return Record[S, P]{}, notFound("id", id)
	}
	return s.records[i].clone(), nil
}

// FindByLabel returns the first record, in insertion order, whose label matches.
func (s *Store[S, P]) FindByLabel(label string) (Record[S, P], error) {
	rec, ok := s.lookupLabel(label)
	if !ok {
		return Record[S, P]{}, notFound("label", label)
	}
	return rec.clone(), nil
}

// Transition moves a record to target if the graph has that edge. On success
// the edge's stamp is written (and StatusAt updated) and its cleared stamps
// removed; nothing else changes.
func (s *Store[S, P]) Transition(id string, target S) (Record[S, P], error) {
	i, ok := s.indexOf(id)
	if !ok {
		return Record[S, P]{}, notFound("id", id)
	}

	rec := &s.records[i]
	edge, ok := s.graph.Edge(rec.Status, target)
	if !ok {
		cause := &TransitionError[S]{
			ID:       rec.ID,
			From:     rec.Status,
			To:       target,
			Terminal: s.graph.Terminal(rec.Status),
		}
		b := ierr.WithError(cause)
		if !s.graph.Valid(target) {
			b = b.WithHintf("Unknown status %q", target)
		} else {
			b = b.WithHintf("Record is %s and cannot move to %s", rec.Status, target)
		}
		return Record[S, P]{}, b.
			WithReportableDetails(map[string]any{
				"id":      rec.ID,
				"current": string(rec.Status),
				"target":  string(target),
			}).
			Mark(ierr.ErrInvalidTransition)
	}

	rec.Status = target
	if edge.Stamp != "" {
		at := s.now()
		if rec.Stamps == nil {
			rec.Stamps = make(map[string]time.Time, 2)
		}
		rec.Stamps[edge.Stamp] = at
		rec.StatusAt = &at
	}
	for _, name := range edge.Clears {
		delete(rec.Stamps, name)
	}
	return rec.clone(), nil
}

// ListAll yields every record in insertion order. The sequence reads live
// state each time it is ranged over.
func (s *Store[S, P]) ListAll() iter.Seq[Record[S, P]] {
	return func(yield func(Record[S, P]) bool) {
		for i := 0; i < len(s.records); i++ {
			if !yield(s.records[i].clone()) {
				return
			}
		}
	}
}

// ListByStatus yields the records currently in status, in insertion order.
func (s *Store[S, P]) ListByStatus(status S) iter.Seq[Record[S, P]] {
	return func(yield func(Record[S, P]) bool) {
		for i := 0; i < len(s.records); i++ {
			if s.records[i].Status != status {
				continue
			}
			if !yield(s.records[i].clone()) {
				return
			}
		}
	}
}

// Len returns the number of records held.
func (s *Store[S, P]) Len() int { return len(s.records) }

// Counts returns the size of every status partition, zero entries included.
func (s *Store[S, P]) Counts() map[S]int {
	counts := make(map[S]int, len(s.graph.states))
	for _, st := range s.graph.states {
		counts[st] = 0
	}
	for _, rec := range s.records {
		counts[rec.Status]++
	}
	return counts
}

func (s *Store[S, P]) indexOf(id string) (int, bool) {
	for i := range s.records {
		if s.records[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

func (s *Store[S, P]) lookupLabel(label string) (Record[S, P], bool) {
	for _, rec := range s.records {
		if s.sameLabel(rec.Label, label) {
			return rec, true
		}
	}
	return Record[S, P]{}, false
}

func (s *Store[S, P]) sameLabel(a, b string) bool {
	if s.fold {
		return strings.EqualFold(a, b)
	}
	return a == b
}

func notFound(field, value string) error {
	return ierr.NewErrorf("record with %s %q not found", field, value).
		WithHintf("No record with %s %q", field, value).
		Mark(ierr.ErrNotFound)
}
