package txn

import (
	"github.com/dnscore-go/dnscore/dnsmsg"
	"github.com/dnscore-go/dnscore/dnsname"
	"github.com/dnscore-go/dnscore/serial"
	"github.com/dnscore-go/dnscore/zone"
)

// Transaction is either a reader, pinned to one immutable Version, or a
// writer, holding the Manager's admission lock and a copy-on-write
// WritableVersion. The zero value is not usable; obtain one from
// Manager.Reader or Manager.Writer.
type Transaction struct {
	mgr      *Manager
	writable bool
	version  *Version         // reader: the pinned snapshot; writer: the base it forked from
	wv       *WritableVersion // writer only
	done     bool
}

// Writable reports whether tx supports the mutating methods.
func (tx *Transaction) Writable() bool { return tx.writable }

// Version returns the Version this transaction reads from: the pinned
// snapshot for a reader, the pre-commit base for a writer.
func (tx *Transaction) Version() *Version { return tx.version }

func (tx *Transaction) readZone() *zone.Zone {
	if tx.writable {
		return tx.wv.working
	}
	return tx.version.Zone
}

// Get returns the rdataset at (name, typ, covers), or (nil, nil) on a miss.
func (tx *Transaction) Get(name dnsname.Name, typ, covers dnsmsg.Type) (*zone.Rdataset, error) {
	if tx.writable {
		return tx.wv.get(name, typ, covers)
	}
	return tx.version.Zone.GetRdataset(name, typ, covers)
}

// GetNode returns the node at name, or nil if absent.
func (tx *Transaction) GetNode(name dnsname.Name) (*zone.Node, error) {
	if tx.writable {
		return tx.wv.getNode(name)
	}
	return tx.version.Zone.GetNode(name)
}

// NameExists reports whether name carries any rdataset.
func (tx *Transaction) NameExists(name dnsname.Name) (bool, error) {
	if tx.writable {
		return tx.wv.nameExists(name)
	}
	node, err := tx.version.Zone.GetNode(name)
	return node != nil, err
}

// IterateRdatasets visits every rdataset visible to this transaction,
// optionally filtered to (typ, covers); dnsmsg.ANY/zero visits everything.
func (tx *Transaction) IterateRdatasets(typ, covers dnsmsg.Type) []zone.NamedRdataset {
	if tx.writable {
		return tx.wv.iterateRdatasets(typ, covers)
	}
	return tx.version.Zone.IterateRdatasets(typ, covers)
}

// IterateNames visits every distinct owner name visible to this
// transaction.
func (tx *Transaction) IterateNames() []dnsname.Name {
	if tx.writable {
		return tx.wv.iterateNames()
	}
	seen := make(map[string]dnsname.Name)
	for _, nrd := range tx.version.Zone.IterateRdatasets(dnsmsg.ANY, 0) {
		seen[string(nrd.Name.CanonicalWire())] = nrd.Name
	}
	out := make([]dnsname.Name, 0, len(seen))
	for _, n := range seen {
		out = append(out, n)
	}
	return out
}

func (tx *Transaction) runCheckPut(name dnsname.Name, ds *zone.Rdataset) error {
	tx.mgr.hooksMu.Lock()
	hooks := tx.mgr.checkPutRdataset
	tx.mgr.hooksMu.Unlock()
	for _, h := range hooks {
		if err := h(tx, name, ds); err != nil {
			return errVeto(err)
		}
	}
	return nil
}

func (tx *Transaction) runCheckDeleteRdataset(name dnsname.Name, typ, covers dnsmsg.Type) error {
	tx.mgr.hooksMu.Lock()
	hooks := tx.mgr.checkDeleteRdataset
	tx.mgr.hooksMu.Unlock()
	for _, h := range hooks {
		if err := h(tx, name, typ, covers); err != nil {
			return errVeto(err)
		}
	}
	return nil
}

func (tx *Transaction) runCheckDeleteName(name dnsname.Name) error {
	tx.mgr.hooksMu.Lock()
	hooks := tx.mgr.checkDeleteName
	tx.mgr.hooksMu.Unlock()
	for _, h := range hooks {
		if err := h(tx, name); err != nil {
			return errVeto(err)
		}
	}
	return nil
}

// Add inserts or merges ds at name, creating the node if needed.
func (tx *Transaction) Add(name dnsname.Name, ds *zone.Rdataset) error {
	if !tx.writable {
		return ErrReadOnly
	}
	if err := tx.runCheckPut(name, ds); err != nil {
		return err
	}
	return tx.wv.add(name, ds)
}

// PutRdataset is Add under the method name zonefile.Target uses, so a
// writer Transaction can be handed to a zonefile.Reader.
func (tx *Transaction) PutRdataset(name dnsname.Name, ds *zone.Rdataset) error {
	return tx.Add(name, ds)
}

// Replace atomically deletes any existing rdataset matching replacement's
// (type, covers) at name, then inserts replacement.
func (tx *Transaction) Replace(name dnsname.Name, replacement *zone.Rdataset) error {
	if !tx.writable {
		return ErrReadOnly
	}
	if err := tx.runCheckPut(name, replacement); err != nil {
		return err
	}
	return tx.wv.replace(name, replacement)
}

// Delete removes the rdataset at (name, typ, covers), a no-op if absent.
func (tx *Transaction) Delete(name dnsname.Name, typ, covers dnsmsg.Type) error {
	if !tx.writable {
		return ErrReadOnly
	}
	if err := tx.runCheckDeleteRdataset(name, typ, covers); err != nil {
		return err
	}
	return tx.wv.deleteRdataset(name, typ, covers)
}

// DeleteExact removes exactly the rdata in want from (name, typ, covers),
// returning ErrDeleteNotExact if any of them is absent.
func (tx *Transaction) DeleteExact(name dnsname.Name, typ, covers dnsmsg.Type, want []dnsmsg.RData) error {
	if !tx.writable {
		return ErrReadOnly
	}
	if err := tx.runCheckDeleteRdataset(name, typ, covers); err != nil {
		return err
	}
	return tx.wv.deleteExact(name, typ, covers, want)
}

// DeleteName removes every rdataset at name.
func (tx *Transaction) DeleteName(name dnsname.Name) error {
	if !tx.writable {
		return ErrReadOnly
	}
	if err := tx.runCheckDeleteName(name); err != nil {
		return err
	}
	return tx.wv.deleteName(name)
}

// UpdateSerial adjusts the SOA serial at name (the zone origin if name is
// the zero Name). relative=true adds value under RFC 1982 arithmetic,
// rejecting an increment that would wrap the comparison window;
// relative=false sets the serial to value outright.
func (tx *Transaction) UpdateSerial(value uint32, relative bool, name dnsname.Name) error {
	if !tx.writable {
		return ErrReadOnly
	}
	if name.Empty() {
		name = tx.wv.base.Origin
	}

	ds, err := tx.wv.get(name, dnsmsg.SOA, 0)
	if err != nil {
		return err
	}
	if ds == nil || ds.Len() == 0 {
		return zone.ErrNoSOA
	}
	soa, ok := ds.All()[0].(*dnsmsg.RDataSOA)
	if !ok {
		return zone.ErrNoSOA
	}

	newSerial := value
	if relative {
		next, ok := serial.Add(serial.Serial(soa.Serial), value)
		if !ok {
			return ErrSerialWrapped
		}
		newSerial = uint32(next)
	}

	updated := &dnsmsg.RDataSOA{
		MName: soa.MName, RName: soa.RName,
		Serial: newSerial, Refresh: soa.Refresh, Retry: soa.Retry,
		Expire: soa.Expire, Minimum: soa.Minimum,
	}
	replacement := zone.NewRdataset(ds.Class, dnsmsg.SOA, 0)
	replacement.Add(updated, ds.TTL())
	return tx.wv.replace(name, replacement)
}

// Commit publishes the writer's accumulated edits as a new Version and
// releases writer admission. Calling it a second time, or on a reader,
// returns ErrAlreadyDone/ErrReadOnly.
func (tx *Transaction) Commit() error {
	if !tx.writable {
		return ErrReadOnly
	}
	if tx.done {
		return ErrAlreadyDone
	}
	tx.done = true
	tx.mgr.commit(tx)
	return nil
}

// Rollback discards a writer's accumulated edits without publishing them.
// A no-op (but released) call on an already-done transaction returns
// ErrAlreadyDone.
func (tx *Transaction) Rollback() error {
	if !tx.writable {
		return ErrReadOnly
	}
	if tx.done {
		return ErrAlreadyDone
	}
	tx.done = true
	tx.mgr.rollback(tx)
	return nil
}

// Close ends a reader transaction, releasing its hold on the pinned
// Version. Writers must call Commit or Rollback instead.
func (tx *Transaction) Close() error {
	if tx.writable {
		return ErrReadOnly
	}
	if tx.done {
		return ErrAlreadyDone
	}
	tx.done = true
	tx.mgr.closeReader(tx)
	return nil
}

func errVeto(err error) error {
	return &vetoError{cause: err}
}

type vetoError struct{ cause error }

func (e *vetoError) Error() string { return "txn: mutation vetoed: " + e.cause.Error() }
func (e *vetoError) Unwrap() error { return e.cause }
func (e *vetoError) Is(target error) bool { return target == ErrVetoed }
