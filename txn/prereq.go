package txn

import (
	"github.com/cockroachdb/errors"

	"github.com/dnscore-go/dnscore/dnsmsg"
	"github.com/dnscore-go/dnscore/dnsname"
)

// Prerequisite-violation sentinels, RFC 2136 §2.4. A zone update server
// built on top of Transaction checks these before admitting the update
// section's Add/Delete calls, and reports the matching RCODE (see
// RCodeFor) back to the client instead of applying anything.
var (
	ErrYXDomain = errors.New("txn: name exists (YXDOMAIN prerequisite failed)")
	ErrYXRRSet  = errors.New("txn: rrset exists (YXRRSET prerequisite failed)")
	ErrNXRRSet  = errors.New("txn: rrset does not exist (NXRRSET prerequisite failed)")
	ErrNXDomain = errors.New("txn: name does not exist (NXDOMAIN prerequisite failed)")
)

// CheckNameNotExists implements the RFC 2136 §2.4.5 "name is not in use"
// prerequisite: it returns ErrYXDomain if name carries any rdataset.
func (tx *Transaction) CheckNameNotExists(name dnsname.Name) error {
	ok, err := tx.NameExists(name)
	if err != nil {
		return err
	}
	if ok {
		return ErrYXDomain
	}
	return nil
}

// CheckNameExists implements the RFC 2136 §2.4.4 "name is in use"
// prerequisite: it returns ErrNXDomain if name carries no rdataset.
func (tx *Transaction) CheckNameExists(name dnsname.Name) error {
	ok, err := tx.NameExists(name)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNXDomain
	}
	return nil
}

// CheckRRsetExists implements the RFC 2136 §2.4.2 "RRset exists (value
// independent)" prerequisite: it returns ErrNXRRSet if (name, typ, covers)
// carries no rdata.
func (tx *Transaction) CheckRRsetExists(name dnsname.Name, typ, covers dnsmsg.Type) error {
	ds, err := tx.Get(name, typ, covers)
	if err != nil {
		return err
	}
	if ds == nil || ds.Len() == 0 {
		return ErrNXRRSet
	}
	return nil
}

// CheckRRsetNotExists implements the RFC 2136 §2.4.3 "RRset does not
// exist" prerequisite: it returns ErrYXRRSet if (name, typ, covers)
// carries any rdata.
func (tx *Transaction) CheckRRsetNotExists(name dnsname.Name, typ, covers dnsmsg.Type) error {
	ds, err := tx.Get(name, typ, covers)
	if err != nil {
		return err
	}
	if ds != nil && ds.Len() > 0 {
		return ErrYXRRSet
	}
	return nil
}

// RCodeFor maps a prerequisite or mutation-check error to the RCODE an
// RFC 2136 UPDATE response should carry. Unrecognized errors map to
// ErrServFail.
func RCodeFor(err error) dnsmsg.RCode {
	switch {
	case err == nil:
		return dnsmsg.NoError
	case errors.Is(err, ErrYXDomain):
		return dnsmsg.ErrYXDomain
	case errors.Is(err, ErrYXRRSet):
		return dnsmsg.ErrYXRRSet
	case errors.Is(err, ErrNXRRSet):
		return dnsmsg.ErrNXRRSet
	case errors.Is(err, ErrNXDomain):
		return dnsmsg.ErrName
	case errors.Is(err, ErrVetoed), errors.Is(err, ErrReadOnly):
		return dnsmsg.ErrRefused
	default:
		return dnsmsg.ErrServFail
	}
}
