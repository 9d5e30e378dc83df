package zonefile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dnscore-go/dnscore/dnsmsg"
	"github.com/dnscore-go/dnscore/zone"
)

func buildWriteTestZone(t *testing.T) *zone.Zone {
	t.Helper()
	origin := mustOrigin(t, "example.")
	z := zone.New(origin, dnsmsg.IN, false)

	soaRD, err := dnsmsg.RDataFromString(dnsmsg.SOA, "ns.example. root.example. 1 7200 3600 1209600 3600")
	require.NoError(t, err)
	soaDS := zone.NewRdataset(dnsmsg.IN, dnsmsg.SOA, 0)
	soaDS.Add(soaRD, 3600)
	require.NoError(t, z.PutRdataset(origin, soaDS))

	aRD, err := dnsmsg.RDataFromString(dnsmsg.A, "192.0.2.1")
	require.NoError(t, err)
	aDS := zone.NewRdataset(dnsmsg.IN, dnsmsg.A, 0)
	aDS.Add(aRD, 60)
	require.NoError(t, z.PutRdataset(mustOrigin(t, "www.example."), aDS))

	return z
}

func TestWriteZoneRoundTripsThroughReader(t *testing.T) {
	z := buildWriteTestZone(t)
	text, err := ZoneText(z, WriteOptions{Sorted: true})
	require.NoError(t, err)
	assert.Contains(t, text, "www.example.")
	assert.Contains(t, text, "192.0.2.1")

	reread := zone.New(mustOrigin(t, "example."), dnsmsg.IN, false)
	r := NewReader(strings.NewReader(text), "<roundtrip>", reread, Options{
		Origin: mustOrigin(t, "example."), HaveOrigin: true,
	})
	require.NoError(t, r.ReadAll())

	ds, err := reread.GetRdataset(mustOrigin(t, "www.example."), dnsmsg.A, 0)
	require.NoError(t, err)
	require.NotNil(t, ds)
	assert.Equal(t, 1, ds.Len())
}

func TestFormatBindTTL(t *testing.T) {
	assert.Equal(t, "0s", FormatBindTTL(0))
	assert.Equal(t, "1m", FormatBindTTL(60))
	assert.Equal(t, "1h1m1s", FormatBindTTL(3661))
	assert.Equal(t, "1w6d4h3m10s", FormatBindTTL(7*24*3600+6*24*3600+4*3600+3*60+10))
}
