package zone

import (
	"bytes"
	"math/rand/v2"
	"sort"

	"github.com/dnscore-go/dnscore/dnsmsg"
)

// Rdataset is a set-semantics collection of Rdata sharing (class, type,
// covers) plus a single TTL. Adding an rdata with a different TTL
// minimizes the stored TTL.
type Rdataset struct {
	Class  dnsmsg.Class
	Type   dnsmsg.Type
	Covers dnsmsg.Type // non-zero only for SIG/RRSIG rdatasets

	ttl   uint32
	rdata []dnsmsg.RData
}

// NewRdataset creates an empty Rdataset for the given (class, type,
// covers). covers should be zero for anything other than SIG/RRSIG.
func NewRdataset(class dnsmsg.Class, typ, covers dnsmsg.Type) *Rdataset {
	return &Rdataset{Class: class, Type: typ, Covers: covers}
}

// TTL returns the rdataset's current (minimized) TTL.
func (r *Rdataset) TTL() uint32 { return r.ttl }

// Len returns the number of distinct rdatas in the set.
func (r *Rdataset) Len() int { return len(r.rdata) }

// All returns the rdatas in insertion order. The slice is a copy of the
// header; callers must not mutate its contents (Rdata itself is
// immutable).
func (r *Rdataset) All() []dnsmsg.RData {
	out := make([]dnsmsg.RData, len(r.rdata))
	copy(out, r.rdata)
	return out
}

// canonicalBytes renders a single Rdata's wire encoding for equality and
// sort-order comparisons. It is not lower-cased; embedded-name case
// folding for DNSSEC canonical ordering is the dnssec package's concern.
func canonicalBytes(rd dnsmsg.RData) []byte {
	b, err := dnsmsg.MarshalRData([]dnsmsg.RData{rd})
	if err != nil {
		return nil
	}
	return b
}

// Add inserts rd, deduplicating by canonical wire-form equality, and
// minimizes the TTL: an empty set adopts ttl outright, otherwise the
// stored TTL becomes min(old, ttl) regardless of whether rd was new.
func (r *Rdataset) Add(rd dnsmsg.RData, ttl uint32) {
	if len(r.rdata) == 0 {
		r.ttl = ttl
	} else if ttl < r.ttl {
		r.ttl = ttl
	}

	key := canonicalBytes(rd)
	for _, existing := range r.rdata {
		if bytes.Equal(canonicalBytes(existing), key) {
			return
		}
	}
	r.rdata = append(r.rdata, rd)
}

// Update merges other into r: the union of rdatas, TTL = min. Returns
// ErrTypeMismatch if (class, type, covers) differ.
func (r *Rdataset) Update(other *Rdataset) error {
	if other == nil {
		return nil
	}
	if r.Class != other.Class || r.Type != other.Type || r.Covers != other.Covers {
		return ErrTypeMismatch
	}
	for _, rd := range other.rdata {
		r.Add(rd, other.ttl)
	}
	return nil
}

// Match reports whether r carries the given (class, type, covers) tuple.
func (r *Rdataset) Match(class dnsmsg.Class, typ, covers dnsmsg.Type) bool {
	return r.Class == class && r.Type == typ && r.Covers == covers
}

// Union returns a new Rdataset holding the union of r and other's rdata.
func (r *Rdataset) Union(other *Rdataset) (*Rdataset, error) {
	out := NewRdataset(r.Class, r.Type, r.Covers)
	if err := out.Update(r); err != nil {
		return nil, err
	}
	if err := out.Update(other); err != nil {
		return nil, err
	}
	return out, nil
}

// Intersect returns a new Rdataset holding only rdata present in both r
// and other.
func (r *Rdataset) Intersect(other *Rdataset) (*Rdataset, error) {
	if other != nil && (r.Class != other.Class || r.Type != other.Type || r.Covers != other.Covers) {
		return nil, ErrTypeMismatch
	}
	out := NewRdataset(r.Class, r.Type, r.Covers)
	if other == nil {
		return out, nil
	}
	otherKeys := make(map[string]struct{}, len(other.rdata))
	for _, rd := range other.rdata {
		otherKeys[string(canonicalBytes(rd))] = struct{}{}
	}
	for _, rd := range r.rdata {
		if _, ok := otherKeys[string(canonicalBytes(rd))]; ok {
			out.Add(rd, r.ttl)
		}
	}
	return out, nil
}

// Difference returns a new Rdataset holding rdata present in r but not in
// other.
func (r *Rdataset) Difference(other *Rdataset) (*Rdataset, error) {
	if other != nil && (r.Class != other.Class || r.Type != other.Type || r.Covers != other.Covers) {
		return nil, ErrTypeMismatch
	}
	out := NewRdataset(r.Class, r.Type, r.Covers)
	otherKeys := map[string]struct{}{}
	if other != nil {
		for _, rd := range other.rdata {
			otherKeys[string(canonicalBytes(rd))] = struct{}{}
		}
	}
	for _, rd := range r.rdata {
		if _, ok := otherKeys[string(canonicalBytes(rd))]; !ok {
			out.Add(rd, r.ttl)
		}
	}
	return out, nil
}

// ToWireOptions controls Rdataset.ToWire rendering.
type ToWireOptions struct {
	// OverrideClass, if non-zero, replaces Class in the emitted records
	// (used for dynamic-update "deleting" rrsets).
	OverrideClass dnsmsg.Class
	// Shuffle randomizes record order within the set. The permutation is
	// drawn from a fresh source per call so distinct calls need not agree,
	// but a single call renders one consistent order (needed to keep any
	// external compression-offset bookkeeping valid within that call).
	Shuffle bool
}

// ToWire renders one dnsmsg.Resource per rdata in the set, owned by name.
func (r *Rdataset) ToWire(name string, opts ToWireOptions) []*dnsmsg.Resource {
	order := make([]int, len(r.rdata))
	for i := range order {
		order[i] = i
	}
	if opts.Shuffle && len(order) > 1 {
		rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}

	class := r.Class
	if opts.OverrideClass != 0 {
		class = opts.OverrideClass
	}

	out := make([]*dnsmsg.Resource, len(order))
	for i, idx := range order {
		out[i] = &dnsmsg.Resource{
			Name:  name,
			Type:  r.Type,
			Class: class,
			TTL:   r.ttl,
			Data:  r.rdata[idx],
		}
	}
	return out
}

// SortCanonical returns the rdatas in ascending canonical wire-byte order,
// used by the zone-file writer and ZONEMD digest (RFC 8976 Section 3: per
// RRset, RRs are ordered by their rdata in canonical form). Embedded
// names are compared as stored, without case folding.
func (r *Rdataset) SortCanonical() []dnsmsg.RData {
	out := r.All()
	// canonicalBytes starts with type and rdlength; compare from the rdata
	// on so that a shorter rdata does not sort first for its length alone.
	key := func(rd dnsmsg.RData) []byte {
		b := canonicalBytes(rd)
		if len(b) < 4 {
			return b
		}
		return b[4:]
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(key(out[i]), key(out[j])) < 0
	})
	return out
}
