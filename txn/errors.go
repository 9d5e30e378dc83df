// Package txn implements the versioned-zone transaction layer: readers see
// a stable immutable Version snapshot, a single writer at a time builds a
// copy-on-write WritableVersion, and Commit publishes it atomically and
// runs a pruning policy over retained history.
package txn

import "github.com/cockroachdb/errors"

var (
	// ErrDeleteNotExact is returned by Transaction.DeleteExact when one of
	// the rdata given for deletion is absent from the stored rdataset.
	ErrDeleteNotExact = errors.New("txn: delete_exact target not present")
	// ErrReadOnly is returned by any mutating Transaction method called on
	// a reader transaction.
	ErrReadOnly = errors.New("txn: transaction is read-only")
	// ErrAlreadyDone is returned by Commit/Rollback/Close called a second
	// time on the same transaction.
	ErrAlreadyDone = errors.New("txn: transaction already committed or rolled back")
	// ErrSerialWrapped is returned by UpdateSerial when a relative
	// increment would move the SOA serial more than 2^31-1 forward.
	ErrSerialWrapped = errors.New("txn: serial increment wraps RFC 1982 comparison window")
	// ErrVetoed is wrapped around the error returned by a CheckPutRdataset/
	// CheckDeleteRdataset/CheckDeleteName hook that rejects a mutation.
	ErrVetoed = errors.New("txn: mutation vetoed by hook")
)
