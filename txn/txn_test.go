package txn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dnscore-go/dnscore/dnsmsg"
	"github.com/dnscore-go/dnscore/dnsname"
	"github.com/dnscore-go/dnscore/zone"
)

func mustName(t *testing.T, text string) dnsname.Name {
	t.Helper()
	n, err := dnsname.FromText(text, nil)
	require.NoError(t, err)
	return n
}

func baseZone(t *testing.T) *zone.Zone {
	t.Helper()
	origin := mustName(t, "example.")
	z := zone.New(origin, dnsmsg.IN, false)

	soaRD, err := dnsmsg.RDataFromString(dnsmsg.SOA, "ns.example. root.example. 1 7200 3600 1209600 3600")
	require.NoError(t, err)
	soaDS := zone.NewRdataset(dnsmsg.IN, dnsmsg.SOA, 0)
	soaDS.Add(soaRD, 3600)
	require.NoError(t, z.PutRdataset(origin, soaDS))

	nsRD, err := dnsmsg.RDataFromString(dnsmsg.NS, "ns.example.")
	require.NoError(t, err)
	nsDS := zone.NewRdataset(dnsmsg.IN, dnsmsg.NS, 0)
	nsDS.Add(nsRD, 3600)
	require.NoError(t, z.PutRdataset(origin, nsDS))

	aRD, err := dnsmsg.RDataFromString(dnsmsg.A, "192.0.2.1")
	require.NoError(t, err)
	aDS := zone.NewRdataset(dnsmsg.IN, dnsmsg.A, 0)
	aDS.Add(aRD, 60)
	require.NoError(t, z.PutRdataset(mustName(t, "www.example."), aDS))

	return z
}

func TestReaderSeesStableSnapshot(t *testing.T) {
	mgr := NewManager(baseZone(t))
	www := mustName(t, "www.example.")

	r1 := mgr.Reader()
	defer r1.Close()

	w := mgr.Writer()
	newRD, err := dnsmsg.RDataFromString(dnsmsg.A, "192.0.2.2")
	require.NoError(t, err)
	ds := zone.NewRdataset(dnsmsg.IN, dnsmsg.A, 0)
	ds.Add(newRD, 60)
	require.NoError(t, w.Replace(www, ds))
	require.NoError(t, w.Commit())

	old, err := r1.Get(www, dnsmsg.A, 0)
	require.NoError(t, err)
	require.NotNil(t, old)
	assert.Equal(t, "192.0.2.1", old.All()[0].String())

	r2 := mgr.Reader()
	defer r2.Close()
	fresh, err := r2.Get(www, dnsmsg.A, 0)
	require.NoError(t, err)
	require.NotNil(t, fresh)
	assert.Equal(t, "192.0.2.2", fresh.All()[0].String())
}

func TestWriterCopyOnWriteDoesNotMutateBase(t *testing.T) {
	mgr := NewManager(baseZone(t))
	www := mustName(t, "www.example.")
	base := mgr.Current()

	w := mgr.Writer()
	extraRD, err := dnsmsg.RDataFromString(dnsmsg.A, "192.0.2.9")
	require.NoError(t, err)
	ds := zone.NewRdataset(dnsmsg.IN, dnsmsg.A, 0)
	ds.Add(extraRD, 60)
	require.NoError(t, w.Add(www, ds))
	require.NoError(t, w.Commit())

	baseDS, err := base.Zone.GetRdataset(www, dnsmsg.A, 0)
	require.NoError(t, err)
	require.NotNil(t, baseDS)
	assert.Equal(t, 1, baseDS.Len(), "base version must not observe the writer's mutation")
}

func TestRollbackDiscardsEdits(t *testing.T) {
	mgr := NewManager(baseZone(t))
	www := mustName(t, "www.example.")

	w := mgr.Writer()
	require.NoError(t, w.DeleteName(www))
	require.NoError(t, w.Rollback())

	r := mgr.Reader()
	defer r.Close()
	ds, err := r.Get(www, dnsmsg.A, 0)
	require.NoError(t, err)
	assert.NotNil(t, ds, "rollback must not publish the deletion")
}

func TestDeleteExactRequiresPresence(t *testing.T) {
	mgr := NewManager(baseZone(t))
	www := mustName(t, "www.example.")

	w := mgr.Writer()
	defer w.Rollback()

	absent, err := dnsmsg.RDataFromString(dnsmsg.A, "192.0.2.200")
	require.NoError(t, err)
	err = w.DeleteExact(www, dnsmsg.A, 0, []dnsmsg.RData{absent})
	assert.ErrorIs(t, err, ErrDeleteNotExact)

	present, err := dnsmsg.RDataFromString(dnsmsg.A, "192.0.2.1")
	require.NoError(t, err)
	require.NoError(t, w.DeleteExact(www, dnsmsg.A, 0, []dnsmsg.RData{present}))

	exists, err := w.NameExists(www)
	require.NoError(t, err)
	assert.False(t, exists, "the only rdataset at www was deleted, the node should be gone")
}

func TestUpdateSerialRelative(t *testing.T) {
	mgr := NewManager(baseZone(t))

	w := mgr.Writer()
	require.NoError(t, w.UpdateSerial(5, true, dnsname.Name{}))
	require.NoError(t, w.Commit())

	r := mgr.Reader()
	defer r.Close()
	ds, err := r.Get(mustName(t, "example."), dnsmsg.SOA, 0)
	require.NoError(t, err)
	soa := ds.All()[0].(*dnsmsg.RDataSOA)
	assert.EqualValues(t, 6, soa.Serial)
}

func TestUpdateSerialRejectsWrap(t *testing.T) {
	mgr := NewManager(baseZone(t))

	w := mgr.Writer()
	defer w.Rollback()
	err := w.UpdateSerial(1<<31, true, dnsname.Name{})
	assert.ErrorIs(t, err, ErrSerialWrapped)
}

func TestCheckPutRdatasetVeto(t *testing.T) {
	mgr := NewManager(baseZone(t))
	mgr.AddCheckPutRdataset(func(tx *Transaction, name dnsname.Name, ds *zone.Rdataset) error {
		if ds.Type == dnsmsg.TXT {
			return ErrVetoed
		}
		return nil
	})

	w := mgr.Writer()
	defer w.Rollback()

	txtRD, err := dnsmsg.RDataFromString(dnsmsg.TXT, `"hi"`)
	require.NoError(t, err)
	ds := zone.NewRdataset(dnsmsg.IN, dnsmsg.TXT, 0)
	ds.Add(txtRD, 60)
	err = w.Add(mustName(t, "www.example."), ds)
	assert.ErrorIs(t, err, ErrVetoed)
}

func TestPruningPolicyRetainsOnlyLiveReaders(t *testing.T) {
	mgr := NewManager(baseZone(t))
	www := mustName(t, "www.example.")

	r1 := mgr.Reader()

	w := mgr.Writer()
	rd, err := dnsmsg.RDataFromString(dnsmsg.A, "192.0.2.5")
	require.NoError(t, err)
	ds := zone.NewRdataset(dnsmsg.IN, dnsmsg.A, 0)
	ds.Add(rd, 60)
	require.NoError(t, w.Replace(www, ds))
	require.NoError(t, w.Commit())

	require.Len(t, mgr.History(), 1, "r1 still holds the superseded version")

	require.NoError(t, r1.Close())

	w2 := mgr.Writer()
	require.NoError(t, w2.UpdateSerial(1, true, dnsname.Name{}))
	require.NoError(t, w2.Commit())

	assert.Len(t, mgr.History(), 0, "nothing still pins the now-unreferenced version")
}

func TestIterateNamesCoversTouchedAndUntouched(t *testing.T) {
	mgr := NewManager(baseZone(t))

	w := mgr.Writer()
	rd, err := dnsmsg.RDataFromString(dnsmsg.A, "192.0.2.42")
	require.NoError(t, err)
	ds := zone.NewRdataset(dnsmsg.IN, dnsmsg.A, 0)
	ds.Add(rd, 60)
	require.NoError(t, w.Add(mustName(t, "mail.example."), ds))

	names := w.IterateNames()
	var sawOrigin, sawWWW, sawMail bool
	for _, n := range names {
		switch n.String() {
		case "example.":
			sawOrigin = true
		case "www.example.":
			sawWWW = true
		case "mail.example.":
			sawMail = true
		}
	}
	assert.True(t, sawOrigin)
	assert.True(t, sawWWW)
	assert.True(t, sawMail)
	require.NoError(t, w.Rollback())
}
