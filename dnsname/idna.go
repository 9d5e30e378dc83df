package dnsname

import "golang.org/x/net/idna"

// IDNAProfile selects between the two internationalized-domain-name
// encoding behaviors.
type IDNAProfile int

const (
	// IDNA2008 is the default, strict profile (length + bidi validation).
	IDNA2008 IDNAProfile = iota
	// IDNA2003 relaxes validation for compatibility with older resolvers
	// (transitional processing, e.g. German sharp-s mapping).
	IDNA2003
)

func (p IDNAProfile) profile() *idna.Profile {
	if p == IDNA2003 {
		return idna.New(idna.MapForLookup(), idna.Transitional(true))
	}
	return idna.New(idna.MapForLookup(), idna.VerifyDNSLength(true), idna.BidiRule())
}

// EncodeIDNA converts a Unicode presentation label to its ASCII
// A-label ("xn--...") form using the given profile.
func EncodeIDNA(label string, profile IDNAProfile) (string, error) {
	return profile.profile().ToASCII(label)
}

// DecodeIDNA converts an A-label back to its Unicode presentation form.
func DecodeIDNA(label string, profile IDNAProfile) (string, error) {
	return profile.profile().ToUnicode(label)
}
