package txn

import (
	"github.com/dnscore-go/dnscore/dnsmsg"
	"github.com/dnscore-go/dnscore/dnsname"
	"github.com/dnscore-go/dnscore/zone"
)

// WritableVersion is a shadow copy of a Version's zone: reads fall through
// to base until a name is first touched, at which point every rdataset at
// that name is cloned into working so mutation never reaches back into
// base's (still-published) data. Names never touched are reused by
// reference when Commit builds the next Version.
type WritableVersion struct {
	base    *zone.Zone
	working *zone.Zone
	touched map[string]bool
}

func newWritableVersion(base *zone.Zone) *WritableVersion {
	return &WritableVersion{
		base:    base,
		working: zone.New(base.Origin, base.Class, base.Relativize),
		touched: make(map[string]bool),
	}
}

// cloneRdataset copies rd's rdata and TTL into a fresh Rdataset so later
// in-place Update calls on the clone never mutate rd itself.
func cloneRdataset(rd *zone.Rdataset) *zone.Rdataset {
	clone := zone.NewRdataset(rd.Class, rd.Type, rd.Covers)
	clone.Update(rd) // never errors: same (class, type, covers) by construction
	return clone
}

// touch copies name's node out of base into working, cloning every
// rdataset, the first time name is mutated in this transaction. A no-op on
// every subsequent touch of the same name.
func (w *WritableVersion) touch(name dnsname.Name) error {
	key := string(name.CanonicalWire())
	if w.touched[key] {
		return nil
	}
	w.touched[key] = true

	node, err := w.base.GetNode(name)
	if err != nil {
		return err
	}
	if node == nil {
		return nil
	}
	for _, rd := range node.Rdatasets() {
		if err := w.working.PutRdataset(name, cloneRdataset(rd)); err != nil {
			return err
		}
	}
	return nil
}

// isTouched reports whether name has already been copied into working.
func (w *WritableVersion) isTouched(name dnsname.Name) bool {
	return w.touched[string(name.CanonicalWire())]
}

// resolveRead returns the zone to read name from: working if touched,
// base otherwise.
func (w *WritableVersion) resolveRead(name dnsname.Name) *zone.Zone {
	if w.isTouched(name) {
		return w.working
	}
	return w.base
}

func (w *WritableVersion) get(name dnsname.Name, typ, covers dnsmsg.Type) (*zone.Rdataset, error) {
	return w.resolveRead(name).GetRdataset(name, typ, covers)
}

func (w *WritableVersion) getNode(name dnsname.Name) (*zone.Node, error) {
	return w.resolveRead(name).GetNode(name)
}

func (w *WritableVersion) nameExists(name dnsname.Name) (bool, error) {
	node, err := w.getNode(name)
	if err != nil {
		return false, err
	}
	return node != nil, nil
}

func (w *WritableVersion) add(name dnsname.Name, ds *zone.Rdataset) error {
	if err := w.touch(name); err != nil {
		return err
	}
	return w.working.PutRdataset(name, ds)
}

func (w *WritableVersion) replace(name dnsname.Name, ds *zone.Rdataset) error {
	if err := w.touch(name); err != nil {
		return err
	}
	return w.working.ReplaceRdataset(name, ds)
}

func (w *WritableVersion) deleteRdataset(name dnsname.Name, typ, covers dnsmsg.Type) error {
	if err := w.touch(name); err != nil {
		return err
	}
	return w.working.DeleteRdataset(name, typ, covers)
}

// deleteExact removes exactly the rdata in want from the rdataset at
// (name, typ, covers), returning ErrDeleteNotExact if any of them is
// absent. The surviving rdata (if any) replace the rdataset; an empty
// result deletes it outright.
func (w *WritableVersion) deleteExact(name dnsname.Name, typ, covers dnsmsg.Type, want []dnsmsg.RData) error {
	if err := w.touch(name); err != nil {
		return err
	}
	current, err := w.working.GetRdataset(name, typ, covers)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrDeleteNotExact
	}

	have := current.All()
	haveWire := make([][]byte, len(have))
	for i, rd := range have {
		b, _ := dnsmsg.MarshalRData([]dnsmsg.RData{rd})
		haveWire[i] = b
	}
	wantWire := make([][]byte, len(want))
	for i, rd := range want {
		b, _ := dnsmsg.MarshalRData([]dnsmsg.RData{rd})
		wantWire[i] = b
	}

	removed := make([]bool, len(have))
	for _, wb := range wantWire {
		found := false
		for i, hb := range haveWire {
			if removed[i] {
				continue
			}
			if string(hb) == string(wb) {
				removed[i] = true
				found = true
				break
			}
		}
		if !found {
			return ErrDeleteNotExact
		}
	}

	survivors := zone.NewRdataset(current.Class, typ, covers)
	for i, rd := range have {
		if !removed[i] {
			survivors.Add(rd, current.TTL())
		}
	}
	if survivors.Len() == 0 {
		return w.working.DeleteRdataset(name, typ, covers)
	}
	return w.working.ReplaceRdataset(name, survivors)
}

func (w *WritableVersion) deleteName(name dnsname.Name) error {
	if err := w.touch(name); err != nil {
		return err
	}
	node, err := w.working.GetNode(name)
	if err != nil {
		return err
	}
	if node == nil {
		return nil
	}
	for _, rd := range node.Rdatasets() {
		if err := w.working.DeleteRdataset(name, rd.Type, rd.Covers); err != nil {
			return err
		}
	}
	return nil
}

// namedRdataset pairs a name with a rdataset, used by iterate so the
// result doesn't depend on whether it came from base or working.
type namedRdataset = zone.NamedRdataset

// iterateRdatasets merges base's untouched names with working's touched
// ones (whose current, possibly-deleted, state in working is authoritative).
func (w *WritableVersion) iterateRdatasets(typ, covers dnsmsg.Type) []namedRdataset {
	var out []namedRdataset
	for _, nrd := range w.base.IterateRdatasets(typ, covers) {
		if w.isTouched(nrd.Name) {
			continue
		}
		out = append(out, nrd)
	}
	out = append(out, w.working.IterateRdatasets(typ, covers)...)
	return out
}

func (w *WritableVersion) iterateNames() []dnsname.Name {
	seen := make(map[string]dnsname.Name)
	for _, nrd := range w.iterateRdatasets(dnsmsg.ANY, 0) {
		seen[string(nrd.Name.CanonicalWire())] = nrd.Name
	}
	out := make([]dnsname.Name, 0, len(seen))
	for _, n := range seen {
		out = append(out, n)
	}
	return out
}

// commit builds the next immutable zone.Zone: base's untouched names
// reused by reference, touched names taken from working (already clones).
func (w *WritableVersion) commit() *zone.Zone {
	next := zone.New(w.base.Origin, w.base.Class, w.base.Relativize)
	for _, nrd := range w.iterateRdatasets(dnsmsg.ANY, 0) {
		// error is impossible: nrd.Name came from a zone sharing this origin
		_ = next.PutRdataset(nrd.Name, nrd.Rdataset)
	}
	return next
}
