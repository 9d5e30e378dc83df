package dnssec

import (
	"crypto/sha1"
	"encoding/base32"
	"strings"

	"github.com/dnscore-go/dnscore/dnsmsg"
)

// base32HexNoPad matches the encoding dnsmsg uses for NSEC3's hashed owner
// names (RFC 5155 Section 1, extended hex alphabet, no padding).
var base32HexNoPad = base32.HexEncoding.WithPadding(base32.NoPadding)

// HashNSEC3 computes the NSEC3 hash of name under the given algorithm,
// iteration count and salt, as specified in RFC 5155 Section 5.
//
//	IH(salt, x, 0) = H(x || salt)
//	IH(salt, x, k) = H(IH(salt, x, k-1) || salt), if k > 0
//
// The owner name is hashed as IH(salt, owner name, iterations).
func HashNSEC3(alg dnsmsg.NSEC3HashAlg, iterations uint16, salt []byte, name string) ([]byte, error) {
	if alg != dnsmsg.NSEC3HashSHA1 {
		return nil, ErrUnsupportedAlgorithm
	}

	h := CanonicalName(name)
	for i := 0; i <= int(iterations); i++ {
		sum := sha1.New()
		sum.Write(h)
		sum.Write(salt)
		h = sum.Sum(nil)
	}
	return h, nil
}

// NSEC3OwnerName computes the base32hex-encoded, lowercase NSEC3 owner
// label for name, to be prepended to zone (e.g. "<hash>.example.com.").
func NSEC3OwnerName(alg dnsmsg.NSEC3HashAlg, iterations uint16, salt []byte, name, zone string) (string, error) {
	hash, err := HashNSEC3(alg, iterations, salt, name)
	if err != nil {
		return "", err
	}
	label := strings.ToLower(base32HexNoPad.EncodeToString(hash))
	zone = strings.TrimSuffix(zone, ".")
	if zone == "" {
		return label + ".", nil
	}
	return label + "." + zone + ".", nil
}
