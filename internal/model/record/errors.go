package record

import "fmt"

// TransitionError describes a status change the graph does not allow. It is
// returned wrapped and marked with ierr.ErrInvalidTransition.
type TransitionError[S Status] struct {
	ID       string
	From     S
	To       S
	Terminal bool
}

func (e *TransitionError[S]) Error() string {
	switch {
	case e.AlreadyReached():
		return fmt.Sprintf("record %s is already %s", e.ID, e.To)
	case e.Terminal:
		return fmt.Sprintf("record %s is %s and cannot change status", e.ID, e.From)
	default:
		return fmt.Sprintf("record %s cannot move from %s to %s", e.ID, e.From, e.To)
	}
}

// AlreadyReached reports whether the record already had the requested status,
// the retry case of a transition.
func (e *TransitionError[S]) AlreadyReached() bool {
	return e.From == e.To
}
