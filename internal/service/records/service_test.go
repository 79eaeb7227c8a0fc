package records_test

import (
	"context"
	"sync"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ierr "github.com/zhouzirui/recordkeeper/backend/internal/errors"
	"github.com/zhouzirui/recordkeeper/backend/internal/model/book"
	"github.com/zhouzirui/recordkeeper/backend/internal/model/task"
	"github.com/zhouzirui/recordkeeper/backend/internal/service/records"
)

func newBooks() *records.Service[book.Status, struct{}] {
	return records.NewService("books", book.NewStore(), book.Verbs, nil)
}

func TestServiceCreateAndGet(t *testing.T) {
	svc := newBooks()
	ctx := context.Background()

	rec, err := svc.Create(ctx, "1984", lo.ToPtr("George Orwell"), struct{}{})
	require.NoError(t, err)

	got, err := svc.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	_, err = svc.Get(ctx, "missing")
	assert.True(t, ierr.IsNotFound(err))
}

func TestServiceTransitionByLabel(t *testing.T) {
	svc := newBooks()
	ctx := context.Background()
	_, err := svc.Create(ctx, "1984", nil, struct{}{})
	require.NoError(t, err)

	rec, err := svc.TransitionByLabel(ctx, "1984", book.StatusLoaned)
	require.NoError(t, err)
	assert.Equal(t, book.StatusLoaned, rec.Status)

	_, err = svc.TransitionByLabel(ctx, "1984", book.StatusLoaned)
	assert.True(t, ierr.IsInvalidTransition(err))

	_, err = svc.TransitionByLabel(ctx, "Missing Title", book.StatusLoaned)
	assert.True(t, ierr.IsNotFound(err))
}

func TestServiceApplyVerbs(t *testing.T) {
	svc := newBooks()
	ctx := context.Background()
	rec, _ := svc.Create(ctx, "O Hobbit", nil, struct{}{})

	loaned, err := svc.Apply(ctx, rec.ID, "loan")
	require.NoError(t, err)
	assert.Equal(t, book.StatusLoaned, loaned.Status)

	returned, err := svc.Apply(ctx, rec.ID, "return")
	require.NoError(t, err)
	assert.Equal(t, book.StatusAvailable, returned.Status)

	_, err = svc.Apply(ctx, rec.ID, "burn")
	assert.True(t, ierr.IsValidation(err))
	assert.Equal(t, []string{"loan", "return"}, svc.Verbs())
}

func TestServiceParseStatus(t *testing.T) {
	svc := newBooks()

	st, err := svc.ParseStatus("loaned")
	require.NoError(t, err)
	assert.Equal(t, book.StatusLoaned, st)

	_, err = svc.ParseStatus("lost")
	assert.True(t, ierr.IsValidation(err))
}

func TestServiceListAndCounts(t *testing.T) {
	svc := records.NewService("tasks", task.NewStore(), task.Verbs, nil)
	ctx := context.Background()

	assert.Empty(t, svc.List(ctx, nil))
	assert.NotNil(t, svc.List(ctx, nil))

	for _, d := range []string{"a", "b", "c"} {
		_, err := svc.Create(ctx, d, nil, struct{}{})
		require.NoError(t, err)
	}
	_, err := svc.Apply(ctx, "2", "complete")
	require.NoError(t, err)

	assert.Len(t, svc.List(ctx, nil), 3)
	done := svc.List(ctx, lo.ToPtr(task.StatusDone))
	require.Len(t, done, 1)
	assert.Equal(t, "2", done[0].ID)
	assert.Equal(t, map[task.Status]int{task.StatusPending: 2, task.StatusDone: 1}, svc.Counts(ctx))
}

func TestServiceSubscribe(t *testing.T) {
	svc := newBooks()
	ctx := context.Background()

	events, cancel := svc.Subscribe(4)

	rec, err := svc.Create(ctx, "1984", nil, struct{}{})
	require.NoError(t, err)
	_, err = svc.Apply(ctx, rec.ID, "loan")
	require.NoError(t, err)
	_, err = svc.Apply(ctx, rec.ID, "loan")
	require.Error(t, err)

	created := <-events
	assert.Equal(t, records.EventCreated, created.Type)
	assert.Equal(t, "books", created.Domain)
	assert.Equal(t, rec.ID, created.Record.ID)

	moved := <-events
	assert.Equal(t, records.EventTransitioned, moved.Type)
	assert.Equal(t, book.StatusAvailable, moved.From)
	assert.Equal(t, book.StatusLoaned, moved.Record.Status)

	cancel()
	cancel()
	_, open := <-events
	assert.False(t, open)
}

func TestServiceSlowSubscriberDoesNotBlock(t *testing.T) {
	svc := records.NewService("tasks", task.NewStore(), task.Verbs, nil)
	ctx := context.Background()
	_, cancel := svc.Subscribe(1)
	defer cancel()

	for i := 0; i < 5; i++ {
		_, err := svc.Create(ctx, "t", nil, struct{}{})
		require.NoError(t, err)
	}
	assert.Len(t, svc.List(ctx, nil), 5)
}

func TestServiceConcurrentCreates(t *testing.T) {
	svc := records.NewService("tasks", task.NewStore(), task.Verbs, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Create(ctx, "t", nil, struct{}{})
		}()
	}
	wg.Wait()

	all := svc.List(ctx, nil)
	ids := lo.Uniq(lo.Map(all, func(r task.Record, _ int) string { return r.ID }))
	assert.Len(t, ids, 50)
}
