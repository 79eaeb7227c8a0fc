// Package book instantiates the record store for a library catalog where each
// title is either on the shelf or out on loan.
package book

import "github.com/zhouzirui/recordkeeper/backend/internal/model/record"

// Status is the loan state of a book.
type Status string

const (
	StatusAvailable Status = "available"
	StatusLoaned    Status = "loaned"
)

const (
	StampLoaned   = "loaned_at"
	StampReturned = "returned_at"
)

type (
	Record = record.Record[Status, struct{}]
	Store  = record.Store[Status, struct{}]
)

// Graph cycles between the two states. Loaning clears the previous return time.
var Graph = record.MustGraph(StatusAvailable,
	[]Status{StatusAvailable, StatusLoaned},
	record.Edge[Status]{From: StatusAvailable, To: StatusLoaned, Stamp: StampLoaned, Clears: []string{StampReturned}},
	record.Edge[Status]{From: StatusLoaned, To: StatusAvailable, Stamp: StampReturned},
)

var Verbs = map[string]Status{
	"loan":   StatusLoaned,
	"return": StatusAvailable,
}

// NewStore returns a catalog keyed by UUID whose titles are unique regardless
// of case. The record metadata holds the author.
func NewStore(opts ...record.Option) *Store {
	base := []record.Option{
		record.WithIDGenerator(record.UUIDs{}),
		record.WithUniqueLabels(),
		record.WithCaseInsensitiveLabels(),
	}
	return record.New[Status, struct{}](Graph, append(base, opts...)...)
}
