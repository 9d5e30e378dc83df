package zone

import (
	"github.com/dnscore-go/dnscore/dnsmsg"
	"github.com/dnscore-go/dnscore/dnsname"
)

type nodeEntry struct {
	name dnsname.Name // as stored: relative to origin iff z.Relativize
	node *Node
}

// Zone is an origin name, class and relativize flag plus a map of name to
// Node. Zone is not thread-safe for concurrent mutation; callers must
// externally serialize writes (the txn package provides that).
type Zone struct {
	Origin     dnsname.Name
	Class      dnsmsg.Class
	Relativize bool

	nodes map[string]*nodeEntry // keyed by CanonicalWire() of the stored name
}

// New creates an empty Zone at origin.
func New(origin dnsname.Name, class dnsmsg.Class, relativize bool) *Zone {
	return &Zone{
		Origin:     origin,
		Class:      class,
		Relativize: relativize,
		nodes:      make(map[string]*nodeEntry),
	}
}

// resolve validates that name is the origin or a subdomain of it and
// returns the form under which it is stored (relativized iff
// z.Relativize) along with its map key.
func (z *Zone) resolve(name dnsname.Name) (key string, stored dnsname.Name, err error) {
	if !name.IsSubdomainOf(z.Origin) {
		return "", dnsname.Name{}, ErrNotSubdomain
	}
	stored = name
	if z.Relativize {
		rel, ok := name.Relativize(z.Origin)
		if ok {
			stored = rel
		}
	}
	return string(stored.CanonicalWire()), stored, nil
}

// Absolute returns stored (as kept in the node map) fully qualified
// against the zone origin, the inverse of the relativization resolve
// performs on the way in.
func (z *Zone) Absolute(stored dnsname.Name) dnsname.Name {
	if !z.Relativize {
		return stored
	}
	abs, err := stored.Derelativize(z.Origin)
	if err != nil {
		return stored
	}
	return abs
}

// FindRdataset returns the rdataset at (name, type, covers). If create is
// false, a miss returns ErrNotFound; if true, the node and rdataset are
// created as needed.
func (z *Zone) FindRdataset(name dnsname.Name, typ, covers dnsmsg.Type, create bool) (*Rdataset, error) {
	key, stored, err := z.resolve(name)
	if err != nil {
		return nil, err
	}
	entry, ok := z.nodes[key]
	if !ok {
		if !create {
			return nil, ErrNotFound
		}
		entry = &nodeEntry{name: stored, node: NewNode()}
		z.nodes[key] = entry
	}
	if ds := entry.node.Get(typ, covers); ds != nil {
		return ds, nil
	}
	if !create {
		return nil, ErrNotFound
	}
	ds := NewRdataset(z.Class, typ, covers)
	entry.node.Put(ds)
	return ds, nil
}

// GetRdataset is like FindRdataset(create=false) but returns (nil, nil)
// on a miss instead of an error.
func (z *Zone) GetRdataset(name dnsname.Name, typ, covers dnsmsg.Type) (*Rdataset, error) {
	ds, err := z.FindRdataset(name, typ, covers, false)
	if err == ErrNotFound {
		return nil, nil
	}
	return ds, err
}

// GetNode returns the node at name, or nil if none exists.
func (z *Zone) GetNode(name dnsname.Name) (*Node, error) {
	key, _, err := z.resolve(name)
	if err != nil {
		return nil, err
	}
	entry, ok := z.nodes[key]
	if !ok {
		return nil, nil
	}
	return entry.node, nil
}

// PutRdataset inserts or merges ds at name, creating the node if needed,
// and enforcing the node's CNAME-vs-other-data invariant.
func (z *Zone) PutRdataset(name dnsname.Name, ds *Rdataset) error {
	key, stored, err := z.resolve(name)
	if err != nil {
		return err
	}
	entry, ok := z.nodes[key]
	if !ok {
		entry = &nodeEntry{name: stored, node: NewNode()}
		z.nodes[key] = entry
	}
	entry.node.Put(ds)
	return nil
}

// DeleteRdataset removes the rdataset at (name, type, covers), a no-op if
// absent, deleting the enclosing node if it becomes empty.
func (z *Zone) DeleteRdataset(name dnsname.Name, typ, covers dnsmsg.Type) error {
	key, _, err := z.resolve(name)
	if err != nil {
		return err
	}
	entry, ok := z.nodes[key]
	if !ok {
		return nil
	}
	entry.node.Delete(typ, covers)
	if entry.node.Empty() {
		delete(z.nodes, key)
	}
	return nil
}

// ReplaceRdataset atomically deletes any existing rdataset that matches
// replacement's (type, covers) at name, then inserts replacement.
func (z *Zone) ReplaceRdataset(name dnsname.Name, replacement *Rdataset) error {
	if err := z.DeleteRdataset(name, replacement.Type, replacement.Covers); err != nil {
		return err
	}
	return z.PutRdataset(name, replacement)
}

// NamedRdataset pairs a stored rdataset with its absolute owner name.
type NamedRdataset struct {
	Name     dnsname.Name
	Rdataset *Rdataset
}

// IterateRdatasets visits every rdataset in the zone, optionally filtered
// to a single (type, covers); dnsmsg.ANY/zero-covers visits everything.
func (z *Zone) IterateRdatasets(typ, covers dnsmsg.Type) []NamedRdataset {
	var out []NamedRdataset
	for _, entry := range z.nodes {
		for _, ds := range entry.node.Rdatasets() {
			if typ != dnsmsg.ANY && ds.Type != typ {
				continue
			}
			if typ != dnsmsg.ANY && ds.Covers != covers {
				continue
			}
			out = append(out, NamedRdataset{Name: z.Absolute(entry.name), Rdataset: ds})
		}
	}
	return out
}

// NamedRdata pairs a single rdata with its owner name and TTL.
type NamedRdata struct {
	Name dnsname.Name
	TTL  uint32
	Data dnsmsg.RData
}

// IterateRdatas flattens IterateRdatasets down to individual rdata.
func (z *Zone) IterateRdatas(typ, covers dnsmsg.Type) []NamedRdata {
	var out []NamedRdata
	for _, nrd := range z.IterateRdatasets(typ, covers) {
		for _, rd := range nrd.Rdataset.All() {
			out = append(out, NamedRdata{Name: nrd.Name, TTL: nrd.Rdataset.TTL(), Data: rd})
		}
	}
	return out
}

// CheckOrigin verifies the origin node exists and carries both SOA and NS
// rdatasets.
func (z *Zone) CheckOrigin() error {
	node, err := z.GetNode(z.Origin)
	if err != nil {
		return err
	}
	if node == nil {
		return ErrNoOrigin
	}
	if node.Get(dnsmsg.SOA, 0) == nil {
		return ErrNoSOA
	}
	if node.Get(dnsmsg.NS, 0) == nil {
		return ErrNoNS
	}
	return nil
}

// GetSOA returns the SOA rdata at the origin, or ErrNoSOA if absent.
func (z *Zone) GetSOA() (*dnsmsg.RDataSOA, error) {
	ds, err := z.GetRdataset(z.Origin, dnsmsg.SOA, 0)
	if err != nil {
		return nil, err
	}
	if ds == nil || ds.Len() == 0 {
		return nil, ErrNoSOA
	}
	soa, ok := ds.All()[0].(*dnsmsg.RDataSOA)
	if !ok {
		return nil, ErrNoSOA
	}
	return soa, nil
}
