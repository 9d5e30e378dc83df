package dnsmsg

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
)

// ZonemdScheme identifies the method used to serialize a zone before
// hashing (RFC 8976 Section 2).
type ZonemdScheme uint8

const (
	ZonemdSchemeSimple ZonemdScheme = 1
)

func (s ZonemdScheme) String() string {
	switch s {
	case ZonemdSchemeSimple:
		return "SIMPLE"
	}
	return fmt.Sprintf("SCHEME%d", uint8(s))
}

// ZonemdHashAlgorithm identifies the digest algorithm used for a ZONEMD
// digest (RFC 8976 Section 3).
type ZonemdHashAlgorithm uint8

const (
	ZonemdHashSHA384 ZonemdHashAlgorithm = 1
	ZonemdHashSHA512 ZonemdHashAlgorithm = 2
)

func (a ZonemdHashAlgorithm) String() string {
	switch a {
	case ZonemdHashSHA384:
		return "SHA384"
	case ZonemdHashSHA512:
		return "SHA512"
	}
	return fmt.Sprintf("ALG%d", uint8(a))
}

// RDataZONEMD represents a ZONEMD resource record (RFC 8976). It carries
// a whole-zone digest computed over the zone's canonicalized wire form,
// letting a secondary verify it received a complete, unmodified copy.
type RDataZONEMD struct {
	Serial       uint32
	Scheme       ZonemdScheme
	HashAlgorithm ZonemdHashAlgorithm
	Digest       []byte
}

func (z *RDataZONEMD) GetType() Type { return ZONEMD }

func (z *RDataZONEMD) String() string {
	return fmt.Sprintf("%d %d %d %s", z.Serial, z.Scheme, z.HashAlgorithm,
		strings.ToUpper(hex.EncodeToString(z.Digest)))
}

func (z *RDataZONEMD) encode(c *context) error {
	if err := binary.Write(c, binary.BigEndian, z.Serial); err != nil {
		return err
	}
	if _, err := c.Write([]byte{byte(z.Scheme), byte(z.HashAlgorithm)}); err != nil {
		return err
	}
	_, err := c.Write(z.Digest)
	return err
}

func (z *RDataZONEMD) decode(c *context, d []byte) error {
	if len(d) < 6 {
		return ErrInvalidLen
	}
	z.Serial = binary.BigEndian.Uint32(d[0:4])
	z.Scheme = ZonemdScheme(d[4])
	z.HashAlgorithm = ZonemdHashAlgorithm(d[5])
	z.Digest = make([]byte, len(d)-6)
	copy(z.Digest, d[6:])
	return nil
}

// expectedDigestLen returns the digest length mandated for this record's
// hash algorithm, or 0 if the algorithm is unrecognized.
func (z *RDataZONEMD) expectedDigestLen() int {
	switch z.HashAlgorithm {
	case ZonemdHashSHA384:
		return 48
	case ZonemdHashSHA512:
		return 64
	}
	return 0
}
