package dnsmsg

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// SvcParamKey identifies a SvcParam in an SVCB/HTTPS record (RFC 9460
// Section 14.3).
type SvcParamKey uint16

const (
	SvcParamMandatory     SvcParamKey = 0
	SvcParamALPN          SvcParamKey = 1
	SvcParamNoDefaultALPN SvcParamKey = 2
	SvcParamPort          SvcParamKey = 3
	SvcParamIPv4Hint      SvcParamKey = 4
	SvcParamECH           SvcParamKey = 5
	SvcParamIPv6Hint      SvcParamKey = 6
)

func (k SvcParamKey) String() string {
	switch k {
	case SvcParamMandatory:
		return "mandatory"
	case SvcParamALPN:
		return "alpn"
	case SvcParamNoDefaultALPN:
		return "no-default-alpn"
	case SvcParamPort:
		return "port"
	case SvcParamIPv4Hint:
		return "ipv4hint"
	case SvcParamECH:
		return "ech"
	case SvcParamIPv6Hint:
		return "ipv6hint"
	}
	return fmt.Sprintf("key%d", uint16(k))
}

// SvcParam is a single key/value pair of an SVCB/HTTPS rdata. Value holds
// the raw wire bytes; interpretation is key-specific.
type SvcParam struct {
	Key   SvcParamKey
	Value []byte
}

// RDataSVCB represents an SVCB or HTTPS resource record (RFC 9460). Both
// types share the same rdata layout; HTTPS is a dedicated RRtype so
// stub resolvers that don't understand SVCB can still ignore it cleanly.
type RDataSVCB struct {
	Priority uint16
	Target   string
	Params   []SvcParam
	rtype    Type
}

func (s *RDataSVCB) GetType() Type { return s.rtype }

func (s *RDataSVCB) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d %s", s.Priority, s.Target)
	for _, p := range s.Params {
		b.WriteByte(' ')
		b.WriteString(p.Key.String())
		if len(p.Value) > 0 {
			b.WriteByte('=')
			b.WriteString(formatSvcParamValue(p.Key, p.Value))
		}
	}
	return b.String()
}

func (s *RDataSVCB) encode(c *context) error {
	if err := binary.Write(c, binary.BigEndian, s.Priority); err != nil {
		return err
	}
	if err := c.appendLabel(s.Target); err != nil {
		return err
	}
	// SvcParams must appear in strictly increasing key order on the wire
	// (RFC 9460 §2.2).
	params := append([]SvcParam(nil), s.Params...)
	sort.Slice(params, func(i, j int) bool { return params[i].Key < params[j].Key })
	for i := 1; i < len(params); i++ {
		if params[i].Key == params[i-1].Key {
			return ErrInvalidLabel
		}
	}
	if err := validateSvcParams(params); err != nil {
		return err
	}
	for _, p := range params {
		if err := binary.Write(c, binary.BigEndian, uint16(p.Key)); err != nil {
			return err
		}
		if err := binary.Write(c, binary.BigEndian, uint16(len(p.Value))); err != nil {
			return err
		}
		if _, err := c.Write(p.Value); err != nil {
			return err
		}
	}
	return nil
}

func (s *RDataSVCB) decode(c *context, d []byte) error {
	if len(d) < 2 {
		return ErrInvalidLen
	}
	s.Priority = binary.BigEndian.Uint16(d[0:2])
	target, n, err := c.readLabel(d[2:])
	if err != nil {
		return err
	}
	s.Target = target
	rest := d[2+n:]
	s.Params = nil
	var lastKey int32 = -1
	for len(rest) > 0 {
		if len(rest) < 4 {
			return ErrInvalidLen
		}
		key := SvcParamKey(binary.BigEndian.Uint16(rest[0:2]))
		if int32(key) <= lastKey {
			return ErrInvalidLabel
		}
		lastKey = int32(key)
		vlen := int(binary.BigEndian.Uint16(rest[2:4]))
		if len(rest) < 4+vlen {
			return ErrInvalidLen
		}
		val := make([]byte, vlen)
		copy(val, rest[4:4+vlen])
		s.Params = append(s.Params, SvcParam{key, val})
		rest = rest[4+vlen:]
	}
	if s.Priority == 0 {
		// AliasForm: RFC 9460 §2.4.3 forbids params on priority-0 records.
		if len(s.Params) > 0 {
			return ErrInvalidLabel
		}
	}
	return validateSvcParams(s.Params)
}

// validateSvcParams enforces the two SvcParam cross-field rules RFC 9460
// names beyond key ordering (§8 and §7.1.1): a "mandatory" param must not
// list its own key, and "no-default-alpn" requires "alpn" to be present.
func validateSvcParams(params []SvcParam) error {
	var hasALPN, hasNoDefaultALPN bool
	for _, p := range params {
		switch p.Key {
		case SvcParamALPN:
			hasALPN = true
		case SvcParamNoDefaultALPN:
			hasNoDefaultALPN = true
		case SvcParamMandatory:
			for i := 0; i+1 < len(p.Value); i += 2 {
				if SvcParamKey(binary.BigEndian.Uint16(p.Value[i:i+2])) == SvcParamMandatory {
					return ErrInvalidLabel
				}
			}
		}
	}
	if hasNoDefaultALPN && !hasALPN {
		return ErrInvalidLabel
	}
	return nil
}

func formatSvcParamValue(key SvcParamKey, v []byte) string {
	switch key {
	case SvcParamPort:
		if len(v) == 2 {
			return strconv.Itoa(int(binary.BigEndian.Uint16(v)))
		}
	case SvcParamALPN:
		var ids []string
		for len(v) > 0 {
			l := int(v[0])
			if len(v) < 1+l {
				break
			}
			ids = append(ids, string(v[1:1+l]))
			v = v[1+l:]
		}
		return strings.Join(ids, ",")
	}
	return fmt.Sprintf("%x", v)
}
