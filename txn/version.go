package txn

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dnscore-go/dnscore/zone"
)

// Version is an immutable, committed snapshot of a zone. It is never
// mutated after construction; a Transaction in reader mode holds one of
// these directly and needs no further locking to read from it.
type Version struct {
	ID   uuid.UUID
	Seq  uint64
	Zone *zone.Zone

	refs int32 // atomic; live reader/pruning-policy holds
}

// newVersion wraps z as a freshly committed Version with seq and a random
// ID, zero live references.
func newVersion(z *zone.Zone, seq uint64) *Version {
	return &Version{ID: uuid.New(), Seq: seq, Zone: z}
}

// Retain bumps the live-reference count, called once per open reader or
// pruning-policy hold.
func (v *Version) Retain() {
	if v == nil {
		return
	}
	atomic.AddInt32(&v.refs, 1)
}

// Release drops a reference taken by Retain.
func (v *Version) Release() {
	if v == nil {
		return
	}
	atomic.AddInt32(&v.refs, -1)
}

// RefCount returns the current number of live references.
func (v *Version) RefCount() int32 {
	if v == nil {
		return 0
	}
	return atomic.LoadInt32(&v.refs)
}
