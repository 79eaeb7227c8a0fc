package record_test

import (
	"slices"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ierr "github.com/zhouzirui/recordkeeper/backend/internal/errors"
	"github.com/zhouzirui/recordkeeper/backend/internal/model/record"
)

type ticketStatus string

const (
	ticketOpen   ticketStatus = "open"
	ticketClosed ticketStatus = "closed"
	ticketVoid   ticketStatus = "void"
)

var ticketGraph = record.MustGraph(ticketOpen,
	[]ticketStatus{ticketOpen, ticketClosed, ticketVoid},
	record.Edge[ticketStatus]{From: ticketOpen, To: ticketClosed, Stamp: "closed_at"},
	record.Edge[ticketStatus]{From: ticketOpen, To: ticketVoid},
)

type fixedClock struct{ t time.Time }

func (c *fixedClock) now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func newTicketStore(opts ...record.Option) *record.Store[ticketStatus, struct{}] {
	return record.New[ticketStatus, struct{}](ticketGraph, opts...)
}

func TestCreateAssignsDistinctIDsInOrder(t *testing.T) {
	store := newTicketStore()

	var created []record.Record[ticketStatus, struct{}]
	for _, label := range []string{"a", "b", "c", "a"} {
		rec, err := store.Create(label, nil, struct{}{})
		require.NoError(t, err)
		created = append(created, rec)
	}

	ids := lo.Map(created, func(r record.Record[ticketStatus, struct{}], _ int) string { return r.ID })
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids)
	assert.Equal(t, created, slices.Collect(store.ListAll()))
	assert.Equal(t, 4, store.Len())
}

func TestCreateStartsInInitialStatus(t *testing.T) {
	store := newTicketStore()
	note := "printer on floor 2"

	rec, err := store.Create("paper jam", &note, struct{}{})
	require.NoError(t, err)

	assert.Equal(t, ticketOpen, rec.Status)
	assert.Nil(t, rec.StatusAt)
	assert.Empty(t, rec.Stamps)
	require.NotNil(t, rec.Metadata)
	assert.Equal(t, note, *rec.Metadata)

	note = "changed by caller"
	got, err := store.FindByID(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "printer on floor 2", *got.Metadata)
}

func TestFindByIDRoundTrip(t *testing.T) {
	store := newTicketStore()
	rec, err := store.Create("x", lo.ToPtr("meta"), struct{}{})
	require.NoError(t, err)

	got, err := store.FindByID(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	_, err = store.FindByID("missing")
	assert.True(t, ierr.IsNotFound(err))
}

func TestFindByLabel(t *testing.T) {
	sensitive := newTicketStore()
	first, _ := sensitive.Create("Dup", nil, struct{}{})
	_, _ = sensitive.Create("Dup", nil, struct{}{})

	got, err := sensitive.FindByLabel("Dup")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	_, err = sensitive.FindByLabel("dup")
	assert.True(t, ierr.IsNotFound(err))

	folded := newTicketStore(record.WithCaseInsensitiveLabels())
	_, _ = folded.Create("Dup", nil, struct{}{})
	_, err = folded.FindByLabel("DUP")
	assert.NoError(t, err)
}

func TestUniqueLabels(t *testing.T) {
	store := newTicketStore(record.WithUniqueLabels(), record.WithCaseInsensitiveLabels())

	first, err := store.Create("Title", nil, struct{}{})
	require.NoError(t, err)

	_, err = store.Create("title", nil, struct{}{})
	require.Error(t, err)
	assert.True(t, ierr.IsAlreadyExists(err))
	assert.Equal(t, 1, store.Len())

	// the failed create must not consume an id
	next, err := store.Create("Other", nil, struct{}{})
	require.NoError(t, err)
	assert.Equal(t, "1", first.ID)
	assert.Equal(t, "2", next.ID)

	open := newTicketStore()
	_, err = open.Create("Title", nil, struct{}{})
	require.NoError(t, err)
	_, err = open.Create("title", nil, struct{}{})
	assert.NoError(t, err)
}

func TestTransitionStampsAndRejectsRepeat(t *testing.T) {
	clock := &fixedClock{t: time.Date(2025, 10, 20, 10, 0, 0, 0, time.UTC)}
	store := newTicketStore(record.WithClock(clock.now))
	rec, _ := store.Create("t", nil, struct{}{})

	closed, err := store.Transition(rec.ID, ticketClosed)
	require.NoError(t, err)
	assert.Equal(t, ticketClosed, closed.Status)
	require.NotNil(t, closed.StatusAt)
	stamp, ok := closed.Stamp("closed_at")
	require.True(t, ok)
	assert.Equal(t, stamp, *closed.StatusAt)
	assert.Equal(t, rec.Label, closed.Label)
	assert.Equal(t, rec.CreatedAt, closed.CreatedAt)

	_, err = store.Transition(rec.ID, ticketClosed)
	require.Error(t, err)
	assert.True(t, ierr.IsInvalidTransition(err))

	var te *record.TransitionError[ticketStatus]
	require.True(t, ierr.As(err, &te))
	assert.True(t, te.AlreadyReached())
	assert.True(t, te.Terminal)

	_, err = store.Transition(rec.ID, ticketVoid)
	require.Error(t, err)
	require.True(t, ierr.As(err, &te))
	assert.False(t, te.AlreadyReached())

	after, _ := store.FindByID(rec.ID)
	assert.Equal(t, closed, after)
}

func TestTransitionWithoutStampLeavesStatusAtNil(t *testing.T) {
	store := newTicketStore()
	rec, _ := store.Create("t", nil, struct{}{})

	voided, err := store.Transition(rec.ID, ticketVoid)
	require.NoError(t, err)
	assert.Equal(t, ticketVoid, voided.Status)
	assert.Nil(t, voided.StatusAt)
}

func TestTransitionErrors(t *testing.T) {
	store := newTicketStore()
	rec, _ := store.Create("t", nil, struct{}{})

	_, err := store.Transition("99", ticketClosed)
	assert.True(t, ierr.IsNotFound(err))

	_, err = store.Transition(rec.ID, ticketStatus("bogus"))
	assert.True(t, ierr.IsInvalidTransition(err))

	_, err = store.Transition(rec.ID, ticketOpen)
	assert.True(t, ierr.IsInvalidTransition(err))
}

func TestListByStatusPartitions(t *testing.T) {
	store := newTicketStore()
	for _, label := range []string{"a", "b", "c", "d", "e"} {
		_, _ = store.Create(label, nil, struct{}{})
	}
	_, _ = store.Transition("2", ticketClosed)
	_, _ = store.Transition("4", ticketVoid)
	_, _ = store.Transition("5", ticketClosed)

	seen := map[string]ticketStatus{}
	total := 0
	for _, st := range ticketGraph.States() {
		for rec := range store.ListByStatus(st) {
			_, dup := seen[rec.ID]
			assert.False(t, dup, "record %s in two partitions", rec.ID)
			seen[rec.ID] = st
			total++
		}
	}
	assert.Equal(t, store.Len(), total)

	closedIDs := lo.Map(slices.Collect(store.ListByStatus(ticketClosed)),
		func(r record.Record[ticketStatus, struct{}], _ int) string { return r.ID })
	assert.Equal(t, []string{"2", "5"}, closedIDs)

	assert.Equal(t, map[ticketStatus]int{ticketOpen: 2, ticketClosed: 2, ticketVoid: 1}, store.Counts())
}

func TestListingsAreLiveAndRestartable(t *testing.T) {
	store := newTicketStore()
	_, _ = store.Create("a", nil, struct{}{})
	open := store.ListByStatus(ticketOpen)

	assert.Len(t, slices.Collect(open), 1)
	_, _ = store.Create("b", nil, struct{}{})
	assert.Len(t, slices.Collect(open), 2)
	_, _ = store.Transition("1", ticketClosed)
	assert.Len(t, slices.Collect(open), 1)

	count := 0
	for range store.ListAll() {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	store := newTicketStore()
	rec, _ := store.Create("a", nil, struct{}{})
	closed, _ := store.Transition(rec.ID, ticketClosed)

	closed.Stamps["closed_at"] = time.Time{}
	closed.Label = "mutated"

	got, _ := store.FindByID(rec.ID)
	assert.Equal(t, "a", got.Label)
	stamp, _ := got.Stamp("closed_at")
	assert.False(t, stamp.IsZero())
}

func TestPrefixedAndUUIDGenerators(t *testing.T) {
	seq := record.NewSequence("ticket")
	assert.Equal(t, "ticket-1", seq.Next())
	assert.Equal(t, "ticket-2", seq.Next())

	store := newTicketStore(record.WithIDGenerator(record.UUIDs{}))
	a, _ := store.Create("a", nil, struct{}{})
	b, _ := store.Create("b", nil, struct{}{})
	assert.Len(t, a.ID, 36)
	assert.NotEqual(t, a.ID, b.ID)
}
