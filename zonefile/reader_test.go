package zonefile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dnscore-go/dnscore/dnsmsg"
	"github.com/dnscore-go/dnscore/dnsname"
	"github.com/dnscore-go/dnscore/zone"
)

func mustOrigin(t *testing.T, text string) dnsname.Name {
	t.Helper()
	n, err := dnsname.FromText(text, nil)
	require.NoError(t, err)
	return n
}

func TestReaderBasicRecords(t *testing.T) {
	input := `$ORIGIN example.
$TTL 3600
@   IN SOA ns.example. root.example. 1 7200 3600 1209600 3600
    IN NS  ns.example.
ns  IN A   192.0.2.1
www IN A   192.0.2.2
`
	z := zone.New(mustOrigin(t, "example."), dnsmsg.IN, false)
	r := NewReader(strings.NewReader(input), "<test>", z, Options{})
	require.NoError(t, r.ReadAll())

	ds, err := z.GetRdataset(mustOrigin(t, "www.example."), dnsmsg.A, 0)
	require.NoError(t, err)
	require.NotNil(t, ds)
	assert.Equal(t, uint32(3600), ds.TTL())
	require.Equal(t, 1, ds.Len())

	require.NoError(t, z.CheckOrigin())
}

func TestReaderMultilineSOA(t *testing.T) {
	input := `$ORIGIN example.
@ 3600 IN SOA ns.example. root.example. (
    1       ; serial
    7200    ; refresh
    3600    ; retry
    1209600 ; expire
    3600 )  ; minimum
`
	z := zone.New(mustOrigin(t, "example."), dnsmsg.IN, false)
	r := NewReader(strings.NewReader(input), "<test>", z, Options{})
	require.NoError(t, r.ReadAll())

	soa, err := z.GetSOA()
	require.NoError(t, err)
	assert.EqualValues(t, 1, soa.Serial)
	assert.EqualValues(t, 3600, soa.Minimum)
}

func TestReaderLastNameCarriesForward(t *testing.T) {
	input := `$ORIGIN example.
$TTL 300
www IN A 192.0.2.1
    IN A 192.0.2.2
`
	z := zone.New(mustOrigin(t, "example."), dnsmsg.IN, false)
	r := NewReader(strings.NewReader(input), "<test>", z, Options{})
	require.NoError(t, r.ReadAll())

	ds, err := z.GetRdataset(mustOrigin(t, "www.example."), dnsmsg.A, 0)
	require.NoError(t, err)
	require.NotNil(t, ds)
	assert.Equal(t, 2, ds.Len())
}

func TestReaderUnknownOriginError(t *testing.T) {
	input := "www IN A 192.0.2.1\n"
	z := zone.New(mustOrigin(t, "example."), dnsmsg.IN, false)
	r := NewReader(strings.NewReader(input), "<test>", z, Options{})
	err := r.ReadAll()
	assert.ErrorIs(t, err, ErrUnknownOrigin)
}

func TestReaderTXTRecord(t *testing.T) {
	input := "$ORIGIN example.\ntxt IN 60 TXT \"hello world\"\n"
	z := zone.New(mustOrigin(t, "example."), dnsmsg.IN, false)
	r := NewReader(strings.NewReader(input), "<test>", z, Options{})
	require.NoError(t, r.ReadAll())

	ds, err := z.GetRdataset(mustOrigin(t, "txt.example."), dnsmsg.TXT, 0)
	require.NoError(t, err)
	require.NotNil(t, ds)
	require.Equal(t, 1, ds.Len())
	txt, ok := ds.All()[0].(dnsmsg.RDataTXT)
	require.True(t, ok)
	assert.Equal(t, "hello world", string(txt))
}

func TestReaderGenerate(t *testing.T) {
	input := "$ORIGIN example.\n$TTL 60\n$GENERATE 1-3 host$ A 192.0.2.$\n"
	z := zone.New(mustOrigin(t, "example."), dnsmsg.IN, false)
	r := NewReader(strings.NewReader(input), "<test>", z, Options{})
	require.NoError(t, r.ReadAll())

	for i := 1; i <= 3; i++ {
		name := mustOrigin(t, "host"+itoaTest(i)+".example.")
		ds, err := z.GetRdataset(name, dnsmsg.A, 0)
		require.NoError(t, err)
		require.NotNilf(t, ds, "host%d", i)
		assert.Equal(t, 1, ds.Len())
	}
}

func itoaTest(i int) string {
	return string(rune('0' + i))
}

func TestParseTTLBindUnits(t *testing.T) {
	got, err := ParseTTL("1w6d4h3m10s")
	require.NoError(t, err)
	want := uint32(7*24*3600 + 6*24*3600 + 4*3600 + 3*60 + 10)
	assert.Equal(t, want, got)

	plain, err := ParseTTL("3600")
	require.NoError(t, err)
	assert.Equal(t, uint32(3600), plain)

	_, err = ParseTTL("bogus")
	assert.Error(t, err)
}

func TestSubstituteDollarFormatting(t *testing.T) {
	out, err := substituteDollar(`host${0,3,d}`, 7)
	require.NoError(t, err)
	assert.Equal(t, "host007", out)

	out, err = substituteDollar(`host${-1}`, 7)
	require.NoError(t, err)
	assert.Equal(t, "host6", out)

	out, err = substituteDollar(`$.example.`, 5)
	require.NoError(t, err)
	assert.Equal(t, "5.example.", out)

	out, err = substituteDollar(`\$escaped`, 5)
	require.NoError(t, err)
	assert.Equal(t, "$escaped", out)
}
