package zone

import "github.com/dnscore-go/dnscore/dnsmsg"

// neutralTypes may coexist with a CNAME rdataset at the same node
// without tripping the CNAME-vs-other-data invariant.
var neutralTypes = map[dnsmsg.Type]bool{
	dnsmsg.NSEC:  true,
	dnsmsg.NSEC3: true,
	dnsmsg.KEY:   true,
}

func isNeutral(typ dnsmsg.Type) bool { return neutralTypes[typ] }

func extendedType(typ, covers dnsmsg.Type) uint32 {
	return uint32(covers)<<16 | uint32(typ)
}

// Node holds the rdatasets present at one owner name. It enforces the
// CNAME-vs-other-data invariant: a node is either a CNAME node (CNAME
// plus neutral types and their RRSIG covers), an other-data node (no
// CNAME/RRSIG(CNAME)), or empty/neutral-only.
type Node struct {
	rdatasets map[uint32]*Rdataset
}

// NewNode returns an empty Node.
func NewNode() *Node {
	return &Node{rdatasets: make(map[uint32]*Rdataset)}
}

// Empty reports whether the node carries no rdatasets at all.
func (n *Node) Empty() bool { return len(n.rdatasets) == 0 }

// IsCNAME reports whether the node currently carries a CNAME rdataset.
func (n *Node) IsCNAME() bool {
	_, ok := n.rdatasets[extendedType(dnsmsg.CNAME, 0)]
	return ok
}

// Get returns the rdataset at (type, covers), or nil if absent.
func (n *Node) Get(typ, covers dnsmsg.Type) *Rdataset {
	return n.rdatasets[extendedType(typ, covers)]
}

// Put inserts or merges rd into the node, enforcing the CNAME invariant:
// adding a CNAME purges every non-neutral rdataset; adding any
// non-neutral rdataset purges CNAME and RRSIG(CNAME). RRSIG(CNAME) is
// treated like CNAME, and an RRSIG covering a neutral type as neutral.
// The node's most recent write always wins.
func (n *Node) Put(rd *Rdataset) {
	if rd.Type == dnsmsg.CNAME || (rd.Type == dnsmsg.RRSIG && rd.Covers == dnsmsg.CNAME) {
		for key, existing := range n.rdatasets {
			if existing.Type == dnsmsg.CNAME || (existing.Type == dnsmsg.RRSIG && existing.Covers == dnsmsg.CNAME) {
				continue
			}
			if isNeutral(existing.Type) {
				continue
			}
			if existing.Type == dnsmsg.RRSIG && isNeutral(existing.Covers) {
				continue
			}
			delete(n.rdatasets, key)
		}
	} else if !isNeutral(rd.Type) && !(rd.Type == dnsmsg.RRSIG && isNeutral(rd.Covers)) {
		delete(n.rdatasets, extendedType(dnsmsg.CNAME, 0))
		delete(n.rdatasets, extendedType(dnsmsg.RRSIG, dnsmsg.CNAME))
	}

	key := extendedType(rd.Type, rd.Covers)
	if existing, ok := n.rdatasets[key]; ok {
		existing.Update(rd)
		return
	}
	n.rdatasets[key] = rd
}

// Delete removes the rdataset at (type, covers), if present.
func (n *Node) Delete(typ, covers dnsmsg.Type) {
	delete(n.rdatasets, extendedType(typ, covers))
}

// Rdatasets returns every rdataset at this node, in no particular order.
func (n *Node) Rdatasets() []*Rdataset {
	out := make([]*Rdataset, 0, len(n.rdatasets))
	for _, rd := range n.rdatasets {
		out = append(out, rd)
	}
	return out
}
