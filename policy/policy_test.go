package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dnscore-go/dnscore/dnsmsg"
)

func TestDefaultPolicyDeniesRSAMD5Sign(t *testing.T) {
	var p Policy
	err := p.CheckSign(dnsmsg.AlgorithmRSAMD5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDeniedByPolicy)
}

func TestDefaultPolicyAllowsRSASHA256(t *testing.T) {
	var p Policy
	assert.NoError(t, p.CheckSign(dnsmsg.AlgorithmRSASHA256))
	assert.NoError(t, p.CheckValidate(dnsmsg.AlgorithmRSASHA256))
}

func TestDefaultPolicyDeniesNullDigest(t *testing.T) {
	var p Policy
	assert.Error(t, p.CheckCreateDS(dnsmsg.DigestNull))
	assert.Error(t, p.CheckValidateDS(dnsmsg.DigestNull))
	assert.NoError(t, p.CheckCreateDS(dnsmsg.DigestSHA256))
}

func TestLoadOverridesDefaults(t *testing.T) {
	doc := []byte(`
deny_sign: [5]
`)
	p, err := Load(doc)
	require.NoError(t, err)

	// An explicit (even partial) document replaces the default deny-sets.
	assert.Error(t, p.CheckSign(dnsmsg.AlgorithmRSASHA1))
	assert.NoError(t, p.CheckSign(dnsmsg.AlgorithmRSAMD5))
}

func TestEmptyPolicyResolvesToDefault(t *testing.T) {
	p, err := Load([]byte(""))
	require.NoError(t, err)
	assert.Error(t, p.CheckSign(dnsmsg.AlgorithmRSAMD5))
}
