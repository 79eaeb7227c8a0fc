package book_test

import (
	"slices"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ierr "github.com/zhouzirui/recordkeeper/backend/internal/errors"
	"github.com/zhouzirui/recordkeeper/backend/internal/model/book"
	"github.com/zhouzirui/recordkeeper/backend/internal/model/record"
)

type tick struct{ t time.Time }

func (c *tick) now() time.Time {
	c.t = c.t.Add(time.Hour)
	return c.t
}

func TestLoanCycle(t *testing.T) {
	clock := &tick{t: time.Date(2025, 9, 21, 9, 0, 0, 0, time.UTC)}
	store := book.NewStore(record.WithClock(clock.now))

	orwell, err := store.Create("1984", lo.ToPtr("George Orwell"), struct{}{})
	require.NoError(t, err)
	assert.Equal(t, book.StatusAvailable, orwell.Status)
	assert.Nil(t, orwell.StatusAt)

	loaned, err := store.Transition(orwell.ID, book.StatusLoaned)
	require.NoError(t, err)
	loanedAt, ok := loaned.Stamp(book.StampLoaned)
	require.True(t, ok)
	assert.Equal(t, loanedAt, *loaned.StatusAt)

	_, err = store.Transition(orwell.ID, book.StatusLoaned)
	require.Error(t, err)
	assert.True(t, ierr.IsInvalidTransition(err))
	var te *record.TransitionError[book.Status]
	require.True(t, ierr.As(err, &te))
	assert.True(t, te.AlreadyReached())
	assert.False(t, te.Terminal)

	returned, err := store.Transition(orwell.ID, book.StatusAvailable)
	require.NoError(t, err)
	returnedAt, ok := returned.Stamp(book.StampReturned)
	require.True(t, ok)
	assert.True(t, returnedAt.After(loanedAt))
	keptLoan, ok := returned.Stamp(book.StampLoaned)
	require.True(t, ok)
	assert.Equal(t, loanedAt, keptLoan)

	reloaned, err := store.Transition(orwell.ID, book.StatusLoaned)
	require.NoError(t, err)
	_, ok = reloaned.Stamp(book.StampReturned)
	assert.False(t, ok, "re-loan clears the previous return time")
	newLoan, _ := reloaned.Stamp(book.StampLoaned)
	assert.True(t, newLoan.After(returnedAt))
}

func TestTitlesUniqueIgnoringCase(t *testing.T) {
	store := book.NewStore()
	_, err := store.Create("O Hobbit", lo.ToPtr("J.R.R. Tolkien"), struct{}{})
	require.NoError(t, err)

	_, err = store.Create("o hobbit", lo.ToPtr("Someone Else"), struct{}{})
	assert.True(t, ierr.IsAlreadyExists(err))

	found, err := store.FindByLabel("O HOBBIT")
	require.NoError(t, err)
	assert.Equal(t, "J.R.R. Tolkien", *found.Metadata)
	assert.Equal(t, 1, store.Len())
}

func TestReturnOnShelfBookFails(t *testing.T) {
	store := book.NewStore()
	hobbit, _ := store.Create("O Hobbit", nil, struct{}{})

	_, err := store.Transition(hobbit.ID, book.StatusAvailable)
	assert.True(t, ierr.IsInvalidTransition(err))

	available := slices.Collect(store.ListByStatus(book.StatusAvailable))
	require.Len(t, available, 1)
	assert.Equal(t, hobbit.ID, available[0].ID)
}
