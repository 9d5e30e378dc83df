package dnssec

import (
	"testing"

	"github.com/dnscore-go/dnscore/dnsmsg"
	"github.com/dnscore-go/dnscore/dnsname"
	"github.com/dnscore-go/dnscore/zone"
)

func TestSignZoneKSKZSKPartition(t *testing.T) {
	origin, err := dnsname.FromText("example.", nil)
	if err != nil {
		t.Fatalf("FromText failed: %v", err)
	}
	z := zone.New(origin, dnsmsg.IN, false)

	nsRD, _ := dnsmsg.RDataFromString(dnsmsg.NS, "ns.example.")
	nsDS := zone.NewRdataset(dnsmsg.IN, dnsmsg.NS, 0)
	nsDS.Add(nsRD, 3600)
	if err := z.PutRdataset(origin, nsDS); err != nil {
		t.Fatalf("PutRdataset NS failed: %v", err)
	}

	aName, _ := dnsname.FromText("www.example.", nil)
	aRD, _ := dnsmsg.RDataFromString(dnsmsg.A, "192.0.2.1")
	aDS := zone.NewRdataset(dnsmsg.IN, dnsmsg.A, 0)
	aDS.Add(aRD, 3600)
	if err := z.PutRdataset(aName, aDS); err != nil {
		t.Fatalf("PutRdataset A failed: %v", err)
	}

	kskKey, kskPriv, err := GenerateKSK(dnsmsg.AlgorithmECDSAP256, 0)
	if err != nil {
		t.Fatalf("GenerateKSK failed: %v", err)
	}
	zskKey, zskPriv, err := GenerateKey(dnsmsg.AlgorithmECDSAP256, 0)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	ksk, err := NewSigner(kskKey, kskPriv)
	if err != nil {
		t.Fatalf("NewSigner(ksk) failed: %v", err)
	}
	zsk, err := NewSigner(zskKey, zskPriv)
	if err != nil {
		t.Fatalf("NewSigner(zsk) failed: %v", err)
	}

	err = SignZone(z, []*Signer{ksk, zsk}, SignZoneOptions{
		AddDNSKey: true, Inception: 0, Expiration: 2000000000,
	})
	if err != nil {
		t.Fatalf("SignZone failed: %v", err)
	}

	dnskeyRRSIG, err := z.GetRdataset(origin, dnsmsg.RRSIG, dnsmsg.DNSKEY)
	if err != nil {
		t.Fatalf("GetRdataset(RRSIG over DNSKEY) failed: %v", err)
	}
	if dnskeyRRSIG == nil || dnskeyRRSIG.Len() != 2 {
		t.Fatalf("expected apex DNSKEY RRset signed by both KSK and ZSK, got %v", dnskeyRRSIG)
	}

	nsRRSIG, err := z.GetRdataset(origin, dnsmsg.RRSIG, dnsmsg.NS)
	if err != nil {
		t.Fatalf("GetRdataset(RRSIG over NS) failed: %v", err)
	}
	if nsRRSIG == nil || nsRRSIG.Len() != 1 {
		t.Fatalf("expected apex NS RRset signed only by the ZSK, got %v", nsRRSIG)
	}

	aRRSIG, err := z.GetRdataset(aName, dnsmsg.RRSIG, dnsmsg.A)
	if err != nil {
		t.Fatalf("GetRdataset(RRSIG over A) failed: %v", err)
	}
	if aRRSIG == nil || aRRSIG.Len() != 1 {
		t.Fatalf("expected www A RRset signed only by the ZSK, got %v", aRRSIG)
	}
}
