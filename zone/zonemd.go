package zone

import (
	"bytes"
	"crypto/sha512"
	"sort"

	"github.com/dnscore-go/dnscore/dnsmsg"
	"github.com/dnscore-go/dnscore/dnsname"
	"github.com/dnscore-go/dnscore/dnssec"
)

// digestAlgo returns the hash function for a ZONEMD hash algorithm, or
// ErrUnknownDigestAlgorithm if unsupported.
func digestAlgo(alg dnsmsg.ZonemdHashAlgorithm) (func([]byte) []byte, error) {
	switch alg {
	case dnsmsg.ZonemdHashSHA384:
		return func(b []byte) []byte { h := sha512.Sum384(b); return h[:] }, nil
	case dnsmsg.ZonemdHashSHA512:
		return func(b []byte) []byte { h := sha512.Sum512(b); return h[:] }, nil
	default:
		return nil, ErrUnknownDigestAlgorithm
	}
}

// allRRs flattens the zone into absolute-name Resources, sorted first by
// canonical owner-name DNSSEC order then by (type, class, canonical
// rdata bytes), per RFC 8976 Section 3. skipZONEMD excludes ZONEMD
// records at the origin (the digest-in-progress record itself), while
// still including any RRSIG covering ZONEMD.
func (z *Zone) allRRs(skipZONEMD bool) ([]*dnsmsg.Resource, error) {
	var out []*dnsmsg.Resource
	for _, entry := range z.nodes {
		abs := z.Absolute(entry.name)
		name := abs.String()
		atOrigin := abs.Equal(z.Origin)
		for _, ds := range entry.node.Rdatasets() {
			if skipZONEMD && atOrigin && ds.Type == dnsmsg.ZONEMD {
				continue
			}
			for _, rd := range ds.SortCanonical() {
				out = append(out, &dnsmsg.Resource{
					Name:  name,
					Type:  ds.Type,
					Class: ds.Class,
					TTL:   ds.TTL(),
					Data:  rd,
				})
			}
		}
	}

	// sort.Slice's comparator can't propagate errors, so the canonical
	// rdata bytes that break ties are computed once up front.
	keys := make([][]byte, len(out))
	for i, rr := range out {
		k, err := dnssec.CanonicalRRBytes(rr)
		if err != nil {
			return nil, err
		}
		// Keep only the rdata: skip owner, type, class, ttl and rdlength.
		keys[i] = k[len(dnssec.CanonicalName(rr.Name))+10:]
	}

	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		a, b := out[idx[i]], out[idx[j]]
		na, _ := dnsname.FromText(a.Name, nil)
		nb, _ := dnsname.FromText(b.Name, nil)
		if c := na.Compare(nb); c != 0 {
			return c < 0
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.Class != b.Class {
			return a.Class < b.Class
		}
		return bytes.Compare(keys[idx[i]], keys[idx[j]]) < 0
	})

	sorted := make([]*dnsmsg.Resource, len(out))
	for i, j := range idx {
		sorted[i] = out[j]
	}
	return sorted, nil
}

// ComputeDigest computes the ZONEMD SIMPLE-scheme digest over every RR in
// the zone (ZONEMD itself excluded), as specified by RFC 8976.
func ComputeDigest(z *Zone, alg dnsmsg.ZonemdHashAlgorithm) ([]byte, error) {
	hash, err := digestAlgo(alg)
	if err != nil {
		return nil, err
	}
	rrs, err := z.allRRs(true)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	for _, rr := range rrs {
		b, err := dnssec.CanonicalRRBytes(rr)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	return hash(buf.Bytes()), nil
}

// VerifyDigest recomputes the zone's ZONEMD digest and compares it
// against the ZONEMD record(s) stored at the origin. It reports
// ErrDigestVerificationFailure if no stored ZONEMD with a supported
// scheme/algorithm matches.
func VerifyDigest(z *Zone) error {
	ds, err := z.GetRdataset(z.Origin, dnsmsg.ZONEMD, 0)
	if err != nil {
		return err
	}
	if ds == nil {
		return ErrDigestVerificationFailure
	}
	for _, rd := range ds.All() {
		zmd, ok := rd.(*dnsmsg.RDataZONEMD)
		if !ok || zmd.Scheme != dnsmsg.ZonemdSchemeSimple {
			continue
		}
		digest, err := ComputeDigest(z, zmd.HashAlgorithm)
		if err != nil {
			continue
		}
		if bytes.Equal(digest, zmd.Digest) {
			return nil
		}
	}
	return ErrDigestVerificationFailure
}
