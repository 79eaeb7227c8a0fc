package records

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"

	ierr "github.com/zhouzirui/recordkeeper/backend/internal/errors"
	"github.com/zhouzirui/recordkeeper/backend/internal/logger"
	"github.com/zhouzirui/recordkeeper/backend/internal/model/record"
)

// EventType names a change broadcast to subscribers.
type EventType string

const (
	EventCreated      EventType = "created"
	EventTransitioned EventType = "transitioned"
)

// Event describes one successful mutation.
type Event[S record.Status, P any] struct {
	Type   EventType          `json:"type"`
	Domain string             `json:"domain"`
	From   S                  `json:"from,omitempty"`
	Record record.Record[S, P] `json:"record"`
	At     time.Time          `json:"at"`
}

// Service shares one record store between request goroutines and fans out
// change events to subscribers.
type Service[S record.Status, P any] struct {
	domain string
	verbs  map[string]S
	log    *logger.Logger

	mu    sync.RWMutex
	store *record.Store[S, P]

	subMu   sync.Mutex
	subs    map[int]chan Event[S, P]
	nextSub int
}

// NewService wraps store. verbs maps named operations ("cancel", "loan") to
// target statuses.
func NewService[S record.Status, P any](domain string, store *record.Store[S, P], verbs map[string]S, log *logger.Logger) *Service[S, P] {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service[S, P]{
		domain: domain,
		verbs:  verbs,
		log:    log.Named("records." + domain),
		store:  store,
		subs:   make(map[int]chan Event[S, P]),
	}
}

// Domain returns the name the service was registered under.
func (s *Service[S, P]) Domain() string { return s.domain }

// Verbs returns the named operations sorted by name.
func (s *Service[S, P]) Verbs() []string {
	names := lo.Keys(s.verbs)
	slices.Sort(names)
	return names
}

// Statuses returns the declared statuses of the domain lifecycle.
func (s *Service[S, P]) Statuses() []S {
	return s.store.Graph().States()
}

// ParseStatus converts raw into a declared status.
func (s *Service[S, P]) ParseStatus(raw string) (S, error) {
	st := S(raw)
	if !s.store.Graph().Valid(st) {
		var zero S
		return zero, ierr.NewErrorf("unknown %s status %q", s.domain, raw).
			WithHintf("status must be one of %v", s.Statuses()).
			Mark(ierr.ErrValidation)
	}
	return st, nil
}

// Create stores a new record in the initial status.
func (s *Service[S, P]) Create(_ context.Context, label string, metadata *string, data P) (record.Record[S, P], error) {
	s.mu.Lock()
	rec, err := s.store.Create(label, metadata, data)
	s.mu.Unlock()
	if err != nil {
		s.log.Debugw("create rejected", "label", label, "error", err)
		return rec, err
	}

	s.log.Infow("record created", "id", rec.ID, "label", rec.Label)
	s.publish(Event[S, P]{Type: EventCreated, Domain: s.domain, Record: rec, At: rec.CreatedAt})
	return rec, nil
}

// Get retrieves a record by identifier.
func (s *Service[S, P]) Get(_ context.Context, id string) (record.Record[S, P], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.FindByID(id)
}

// Lookup retrieves the first record carrying label.
func (s *Service[S, P]) Lookup(_ context.Context, label string) (record.Record[S, P], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.FindByLabel(label)
}

// Transition moves the record with id to target.
func (s *Service[S, P]) Transition(_ context.Context, id string, target S) (record.Record[S, P], error) {
	s.mu.Lock()
	before, err := s.store.FindByID(id)
	if err != nil {
		s.mu.Unlock()
		return before, err
	}
	rec, err := s.store.Transition(id, target)
	s.mu.Unlock()

	if err != nil {
		s.log.Debugw("transition rejected", "id", id, "target", target, "error", err)
		return rec, err
	}

	s.log.Infow("record transitioned", "id", rec.ID, "from", before.Status, "to", rec.Status)
	at := rec.CreatedAt
	if rec.StatusAt != nil {
		at = *rec.StatusAt
	}
	s.publish(Event[S, P]{Type: EventTransitioned, Domain: s.domain, From: before.Status, Record: rec, At: at})
	return rec, nil
}

// TransitionByLabel resolves label to a record and transitions it, the way the
// library desk loans and returns books by title.
func (s *Service[S, P]) TransitionByLabel(ctx context.Context, label string, target S) (record.Record[S, P], error) {
	rec, err := s.Lookup(ctx, label)
	if err != nil {
		return rec, err
	}
	return s.Transition(ctx, rec.ID, target)
}

// Apply runs a named verb against the record with id.
func (s *Service[S, P]) Apply(ctx context.Context, id, verb string) (record.Record[S, P], error) {
	target, ok := s.verbs[verb]
	if !ok {
		return record.Record[S, P]{}, ierr.NewErrorf("unknown %s operation %q", s.domain, verb).
			WithHintf("operation must be one of %v", s.Verbs()).
			Mark(ierr.ErrValidation)
	}
	return s.Transition(ctx, id, target)
}

// List returns a snapshot of all records, or only those in status when given.
func (s *Service[S, P]) List(_ context.Context, status *S) []record.Record[S, P] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seq := s.store.ListAll()
	if status != nil {
		seq = s.store.ListByStatus(*status)
	}
	out := slices.Collect(seq)
	if out == nil {
		out = []record.Record[S, P]{}
	}
	return out
}

// Counts returns the size of every status partition.
func (s *Service[S, P]) Counts(_ context.Context) map[S]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Counts()
}

// Subscribe registers a change listener. Events are dropped for a subscriber
// whose buffer is full. The returned cancel func closes the channel.
func (s *Service[S, P]) Subscribe(buffer int) (<-chan Event[S, P], func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event[S, P], buffer)

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			close(ch)
			s.subMu.Unlock()
		})
	}
	return ch, cancel
}

func (s *Service[S, P]) publish(evt Event[S, P]) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for id, ch := range s.subs {
		select {
		case ch <- evt:
		default:
			s.log.Warnw("subscriber buffer full, dropping event", "subscriber", id, "type", evt.Type, "id", evt.Record.ID)
		}
	}
}
