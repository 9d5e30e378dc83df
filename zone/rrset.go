package zone

import "github.com/dnscore-go/dnscore/dnsmsg"

// RRset is an Rdataset plus an owner name and an optional "deleting"
// class marker used by dynamic-update messages (RFC 2136): a non-zero
// Deleting class overrides the rendered class on the wire to signal a
// delete-this-rrset or delete-this-rdata update.
type RRset struct {
	*Rdataset
	Name     string
	Deleting dnsmsg.Class
}

// NewRRset wraps ds with an owner name.
func NewRRset(name string, ds *Rdataset) *RRset {
	return &RRset{Rdataset: ds, Name: name}
}

// ToWire renders the RRset to wire Resources, honoring Deleting as a
// class override when set.
func (rr *RRset) ToWire(opts ToWireOptions) []*dnsmsg.Resource {
	if rr.Deleting != 0 {
		opts.OverrideClass = rr.Deleting
	}
	return rr.Rdataset.ToWire(rr.Name, opts)
}
