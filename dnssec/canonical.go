package dnssec

import (
	"bytes"
	"encoding/binary"
	"sort"
	"strings"

	"github.com/dnscore-go/dnscore/dnsmsg"
	"github.com/dnscore-go/dnscore/dnsname"
)

// CanonicalName converts a domain name to canonical (lowercase) wire format
// as specified in RFC 4034 Section 6.1.
func CanonicalName(name string) []byte {
	name = strings.ToLower(name)
	if !strings.HasSuffix(name, ".") {
		name += "."
	}

	var buf bytes.Buffer
	labels := strings.Split(strings.TrimSuffix(name, "."), ".")
	for _, label := range labels {
		buf.WriteByte(byte(len(label)))
		buf.WriteString(label)
	}
	buf.WriteByte(0) // Root label
	return buf.Bytes()
}

// rawWireName renders name in uncompressed wire format with its original
// case preserved. RFC 4034 §6.2 excludes rdata types registered after
// RFC 3597 (NSEC, SVCB, HTTPS) from the owner/embedded-name lower-casing
// rule that applies to the legacy RR types, so their names canonicalize
// through this instead of CanonicalName.
func rawWireName(name string) ([]byte, error) {
	n, err := dnsname.FromText(ensureAbsolute(name), nil)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 0, n.WireLen())
	for _, l := range n.Labels() {
		buf = append(buf, byte(len(l)))
		buf = append(buf, l...)
	}
	buf = append(buf, 0)
	return buf, nil
}

// ensureAbsolute appends a trailing root dot if name lacks one, matching
// CanonicalName's tolerance for names passed without it.
func ensureAbsolute(name string) string {
	if strings.HasSuffix(name, ".") {
		return name
	}
	return name + "."
}

// CanonicalRRset sorts an RRset in canonical order as specified in RFC 4034 Section 6.3.
// Records are sorted by their RDATA in canonical wire format.
func CanonicalRRset(rrset []*dnsmsg.Resource) ([]*dnsmsg.Resource, error) {
	if len(rrset) <= 1 {
		return rrset, nil
	}

	sorted := make([]*dnsmsg.Resource, len(rrset))
	copy(sorted, rrset)

	keys := make([][]byte, len(sorted))
	for i, rr := range sorted {
		k, err := encodeRDataDirect(rr)
		if err != nil {
			return nil, err
		}
		keys[i] = k
	}

	idx := make([]int, len(sorted))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return bytes.Compare(keys[idx[i]], keys[idx[j]]) < 0
	})

	out := make([]*dnsmsg.Resource, len(sorted))
	for i, j := range idx {
		out[i] = sorted[j]
	}
	return out, nil
}

// BuildSignedData constructs the data to be signed/verified for an RRSIG
// as specified in RFC 4034 Section 3.1.8.1. Per RFC 4035 §5.3.2, if an
// RRset's owner name carries more labels than rrsig.Labels (root not
// counted), the owner
// used in the signed data is the synthesized wildcard "*.<trailing
// labels>" rather than the literal expanded name.
func BuildSignedData(rrsig *dnsmsg.RDataRRSIG, rrset []*dnsmsg.Resource) ([]byte, error) {
	var buf bytes.Buffer

	// RRSIG RDATA (without signature)
	// Type Covered (2) + Algorithm (1) + Labels (1) + Original TTL (4) +
	// Signature Expiration (4) + Signature Inception (4) + Key Tag (2) + Signer's Name
	binary.Write(&buf, binary.BigEndian, uint16(rrsig.TypeCovered))
	buf.WriteByte(byte(rrsig.Algorithm))
	buf.WriteByte(rrsig.Labels)
	binary.Write(&buf, binary.BigEndian, rrsig.OrigTTL)
	binary.Write(&buf, binary.BigEndian, rrsig.Expiration)
	binary.Write(&buf, binary.BigEndian, rrsig.Inception)
	binary.Write(&buf, binary.BigEndian, rrsig.KeyTag)
	buf.Write(CanonicalName(rrsig.SignerName))

	// RRset in canonical order
	sortedRRset, err := CanonicalRRset(rrset)
	if err != nil {
		return nil, err
	}
	for _, rr := range sortedRRset {
		owner, err := signedOwnerName(rr.Name, int(rrsig.Labels))
		if err != nil {
			return nil, err
		}

		// owner name | type | class | TTL | RDLENGTH | RDATA
		buf.Write(owner)
		binary.Write(&buf, binary.BigEndian, uint16(rr.Type))
		binary.Write(&buf, binary.BigEndian, uint16(rr.Class))
		binary.Write(&buf, binary.BigEndian, rrsig.OrigTTL) // Use original TTL from RRSIG

		rdata, err := encodeRDataDirect(rr)
		if err != nil {
			return nil, err
		}
		binary.Write(&buf, binary.BigEndian, uint16(len(rdata)))
		buf.Write(rdata)
	}

	return buf.Bytes(), nil
}

// signedOwnerName returns the canonical owner name an RRSIG's signed data
// should carry for a record owned by name: the literal name, unless name
// has more labels than wildcardLabels (root not counted), in which case the trailing
// wildcardLabels labels are prefixed with "*." (RFC 4035 §5.3.2).
func signedOwnerName(name string, wildcardLabels int) ([]byte, error) {
	n, err := dnsname.FromText(ensureAbsolute(name), nil)
	if err != nil {
		return nil, err
	}
	owner, err := n.WildcardOwner(wildcardLabels)
	if err != nil {
		return nil, err
	}
	return owner.CanonicalWire(), nil
}

// encodeRDataDirect encodes just the RDATA portion of a resource record in
// canonical form (RFC 4034 §6.2): embedded domain names in rdata types
// defined before RFC 3597 are lower-cased and uncompressed; rdata types
// defined after RFC 3597 (NSEC, SVCB, HTTPS) keep their original case.
// Every other type has no special-cased name handling and marshals through
// the ordinary RData wire codec.
func encodeRDataDirect(rr *dnsmsg.Resource) ([]byte, error) {
	if rr.Data == nil {
		return nil, nil
	}

	switch data := rr.Data.(type) {
	case *dnsmsg.RDataIP:
		return []byte(data.IP), nil
	case dnsmsg.RDataTXT:
		// TXT records are character strings
		txt := string(data)
		var buf bytes.Buffer
		for len(txt) > 0 {
			chunk := txt
			if len(chunk) > 255 {
				chunk = chunk[:255]
			}
			buf.WriteByte(byte(len(chunk)))
			buf.WriteString(chunk)
			txt = txt[len(chunk):]
		}
		return buf.Bytes(), nil
	case *dnsmsg.RDataMX:
		var buf bytes.Buffer
		binary.Write(&buf, binary.BigEndian, data.Pref)
		buf.Write(CanonicalName(data.Server))
		return buf.Bytes(), nil
	case *dnsmsg.RDataSOA:
		var buf bytes.Buffer
		buf.Write(CanonicalName(data.MName))
		buf.Write(CanonicalName(data.RName))
		binary.Write(&buf, binary.BigEndian, data.Serial)
		binary.Write(&buf, binary.BigEndian, data.Refresh)
		binary.Write(&buf, binary.BigEndian, data.Retry)
		binary.Write(&buf, binary.BigEndian, data.Expire)
		binary.Write(&buf, binary.BigEndian, data.Minimum)
		return buf.Bytes(), nil
	case *dnsmsg.RDataLabel:
		return CanonicalName(data.Label), nil
	case *dnsmsg.RDataDNSKEY:
		var buf bytes.Buffer
		binary.Write(&buf, binary.BigEndian, data.Flags)
		buf.WriteByte(data.Protocol)
		buf.WriteByte(byte(data.Algorithm))
		buf.Write(data.PublicKey)
		return buf.Bytes(), nil
	case *dnsmsg.RDataDS:
		var buf bytes.Buffer
		binary.Write(&buf, binary.BigEndian, data.KeyTag)
		buf.WriteByte(byte(data.Algorithm))
		buf.WriteByte(byte(data.DigestType))
		buf.Write(data.Digest)
		return buf.Bytes(), nil
	case *dnsmsg.RDataSRV:
		var buf bytes.Buffer
		binary.Write(&buf, binary.BigEndian, data.Priority)
		binary.Write(&buf, binary.BigEndian, data.Weight)
		binary.Write(&buf, binary.BigEndian, data.Port)
		buf.Write(CanonicalName(data.Target))
		return buf.Bytes(), nil
	case *dnsmsg.RDataNAPTR:
		var buf bytes.Buffer
		binary.Write(&buf, binary.BigEndian, data.Order)
		binary.Write(&buf, binary.BigEndian, data.Preference)
		writeCharString(&buf, data.Flags)
		writeCharString(&buf, data.Service)
		writeCharString(&buf, data.Regexp)
		buf.Write(CanonicalName(data.Replacement))
		return buf.Bytes(), nil
	case *dnsmsg.RDataRP:
		var buf bytes.Buffer
		buf.Write(CanonicalName(data.Mbox))
		buf.Write(CanonicalName(data.Txt))
		return buf.Bytes(), nil
	case *dnsmsg.RDataAFSDB:
		var buf bytes.Buffer
		binary.Write(&buf, binary.BigEndian, data.Subtype)
		buf.Write(CanonicalName(data.Hostname))
		return buf.Bytes(), nil
	case *dnsmsg.RDataNSEC:
		wire, err := rawWireName(data.NextDomain)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		buf.Write(wire)
		buf.Write(data.TypeBitMap)
		return buf.Bytes(), nil
	case *dnsmsg.RDataSVCB:
		wire, err := rawWireName(data.Target)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		binary.Write(&buf, binary.BigEndian, data.Priority)
		buf.Write(wire)
		params := append([]dnsmsg.SvcParam(nil), data.Params...)
		sort.Slice(params, func(i, j int) bool { return params[i].Key < params[j].Key })
		for _, p := range params {
			binary.Write(&buf, binary.BigEndian, uint16(p.Key))
			binary.Write(&buf, binary.BigEndian, uint16(len(p.Value)))
			buf.Write(p.Value)
		}
		return buf.Bytes(), nil
	default:
		// No embedded domain name: the RData wire codec already produces
		// canonical (uncompressed) bytes for these types.
		encoded, err := dnsmsg.MarshalRData([]dnsmsg.RData{rr.Data})
		if err != nil {
			return nil, err
		}
		if len(encoded) < 4 {
			return nil, nil
		}
		return encoded[4:], nil
	}
}

func writeCharString(buf *bytes.Buffer, s string) {
	for len(s) > 0 {
		chunk := s
		if len(chunk) > 255 {
			chunk = chunk[:255]
		}
		buf.WriteByte(byte(len(chunk)))
		buf.WriteString(chunk)
		s = s[len(chunk):]
	}
}

// CanonicalRRBytes renders rr (owner name, type, class, ttl, rdata) in the
// canonical form used as ZONEMD digest input: lower-cased uncompressed
// owner name, followed by type(16), class(16), ttl(32), rdlength(16) and
// canonical rdata.
func CanonicalRRBytes(rr *dnsmsg.Resource) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(CanonicalName(rr.Name))
	binary.Write(&buf, binary.BigEndian, uint16(rr.Type))
	binary.Write(&buf, binary.BigEndian, uint16(rr.Class))
	binary.Write(&buf, binary.BigEndian, rr.TTL)
	rdata, err := encodeRDataDirect(rr)
	if err != nil {
		return nil, err
	}
	binary.Write(&buf, binary.BigEndian, uint16(len(rdata)))
	buf.Write(rdata)
	return buf.Bytes(), nil
}

// CountLabels returns the number of labels in a domain name,
// excluding the root label.
func CountLabels(name string) uint8 {
	name = strings.TrimSuffix(name, ".")
	if name == "" {
		return 0
	}
	return uint8(strings.Count(name, ".") + 1)
}

// signedLabels returns the RRSIG.Labels value for an RRset owned by name:
// the label count, excluding a literal leading "*" wildcard label (RFC
// 4035 §2.2) so a validator reconstructing the owner via WildcardOwner
// recovers the signer's original count.
func signedLabels(name string) uint8 {
	trimmed := strings.TrimSuffix(name, ".")
	if trimmed == "*" {
		return 0
	}
	if strings.HasPrefix(trimmed, "*.") {
		return CountLabels(strings.TrimPrefix(trimmed, "*."))
	}
	return CountLabels(name)
}
