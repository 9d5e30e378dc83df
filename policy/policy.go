// Package policy holds the DNSSEC algorithm/digest deny-sets that gate
// signing, validation and DS creation. A zero-value Policy is the
// spec's hard-coded default; operators can instead decode one from YAML
// to relax or tighten the defaults without a recompile.
package policy

import (
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/dnscore-go/dnscore/dnsmsg"
)

// ErrDeniedByPolicy is returned by callers in dnssec when an operation
// is vetoed by one of the Policy's deny-sets.
var ErrDeniedByPolicy = errors.New("denied by policy")

// Policy gates which DNSSEC algorithms and digest types may be used for
// signing, validating and DS-record creation/validation.
type Policy struct {
	DenySign        []dnsmsg.Algorithm  `yaml:"deny_sign,omitempty"`
	DenyValidate    []dnsmsg.Algorithm  `yaml:"deny_validate,omitempty"`
	DenyCreateDS    []dnsmsg.DigestType `yaml:"deny_create_ds,omitempty"`
	DenyValidateDS  []dnsmsg.DigestType `yaml:"deny_validate_ds,omitempty"`
}

// defaultPolicy is the default deny-set policy: deny signing with
// {RSAMD5, DSA, DSANSEC3SHA1, ECCGOST}; deny validating with {RSAMD5,
// DSA, DSANSEC3SHA1}; deny creating DS with digest types {NULL, SHA1,
// GOST}; deny validating DS with {NULL}.
var defaultPolicy = Policy{
	DenySign: []dnsmsg.Algorithm{
		dnsmsg.AlgorithmRSAMD5,
		dnsmsg.AlgorithmDSA,
		dnsmsg.AlgorithmDSANSEC3SHA1,
		dnsmsg.AlgorithmGOST,
	},
	DenyValidate: []dnsmsg.Algorithm{
		dnsmsg.AlgorithmRSAMD5,
		dnsmsg.AlgorithmDSA,
		dnsmsg.AlgorithmDSANSEC3SHA1,
	},
	DenyCreateDS: []dnsmsg.DigestType{
		dnsmsg.DigestNull,
		dnsmsg.DigestSHA1,
		dnsmsg.DigestGOST,
	},
	DenyValidateDS: []dnsmsg.DigestType{
		dnsmsg.DigestNull,
	},
}

// resolved returns p if it has any deny-set populated, otherwise the
// package default. This lets the Policy zero value mean "use defaults"
// both for a bare `policy.Policy{}` and for one decoded from a YAML
// document that sets no deny-set. A document that sets any deny-set
// replaces all four defaults; unset sets stay empty.
func (p Policy) resolved() Policy {
	if len(p.DenySign) == 0 && len(p.DenyValidate) == 0 &&
		len(p.DenyCreateDS) == 0 && len(p.DenyValidateDS) == 0 {
		return defaultPolicy
	}
	return p
}

func containsAlg(set []dnsmsg.Algorithm, a dnsmsg.Algorithm) bool {
	for _, v := range set {
		if v == a {
			return true
		}
	}
	return false
}

func containsDigest(set []dnsmsg.DigestType, d dnsmsg.DigestType) bool {
	for _, v := range set {
		if v == d {
			return true
		}
	}
	return false
}

// CheckSign returns ErrDeniedByPolicy if alg may not be used to sign.
func (p Policy) CheckSign(alg dnsmsg.Algorithm) error {
	if containsAlg(p.resolved().DenySign, alg) {
		return errors.Wrapf(ErrDeniedByPolicy, "sign algorithm %s", alg)
	}
	return nil
}

// CheckValidate returns ErrDeniedByPolicy if alg may not be used to validate.
func (p Policy) CheckValidate(alg dnsmsg.Algorithm) error {
	if containsAlg(p.resolved().DenyValidate, alg) {
		return errors.Wrapf(ErrDeniedByPolicy, "validate algorithm %s", alg)
	}
	return nil
}

// CheckCreateDS returns ErrDeniedByPolicy if dt may not be used to create a DS digest.
func (p Policy) CheckCreateDS(dt dnsmsg.DigestType) error {
	if containsDigest(p.resolved().DenyCreateDS, dt) {
		return errors.Wrapf(ErrDeniedByPolicy, "create-DS digest %s", dt)
	}
	return nil
}

// CheckValidateDS returns ErrDeniedByPolicy if dt may not be used to validate a DS digest.
func (p Policy) CheckValidateDS(dt dnsmsg.DigestType) error {
	if containsDigest(p.resolved().DenyValidateDS, dt) {
		return errors.Wrapf(ErrDeniedByPolicy, "validate-DS digest %s", dt)
	}
	return nil
}

// Default returns the hard-coded default deny-set policy.
func Default() Policy {
	return defaultPolicy
}

// Load decodes a Policy from YAML, following the ambient configuration
// convention of decoding straight into a plain struct.
func Load(data []byte) (Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, errors.Wrap(err, "decoding DNSSEC policy")
	}
	return p, nil
}

// MarshalYAML round-trips a Policy back to YAML, e.g. for an operator
// dumping the effective (possibly default-resolved) policy.
func (p Policy) MarshalYAML() (interface{}, error) {
	r := p.resolved()
	return struct {
		DenySign       []dnsmsg.Algorithm  `yaml:"deny_sign,omitempty"`
		DenyValidate   []dnsmsg.Algorithm  `yaml:"deny_validate,omitempty"`
		DenyCreateDS   []dnsmsg.DigestType `yaml:"deny_create_ds,omitempty"`
		DenyValidateDS []dnsmsg.DigestType `yaml:"deny_validate_ds,omitempty"`
	}{r.DenySign, r.DenyValidate, r.DenyCreateDS, r.DenyValidateDS}, nil
}
