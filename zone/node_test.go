package zone

import (
	"testing"

	"github.com/dnscore-go/dnscore/dnsmsg"
)

func TestNodeCNAMEPurgesOtherData(t *testing.T) {
	n := NewNode()

	a := NewRdataset(dnsmsg.IN, dnsmsg.A, 0)
	a.Add(mustA(t, "192.0.2.1"), 60)
	n.Put(a)

	cname := NewRdataset(dnsmsg.IN, dnsmsg.CNAME, 0)
	target, err := dnsmsg.RDataFromString(dnsmsg.CNAME, "bar.example.")
	if err != nil {
		t.Fatalf("RDataFromString(CNAME): %v", err)
	}
	cname.Add(target, 60)
	n.Put(cname)

	if n.Get(dnsmsg.A, 0) != nil {
		t.Error("A rdataset should have been purged by CNAME")
	}
	if !n.IsCNAME() {
		t.Error("node should be a CNAME node")
	}
}

func TestNodeOtherDataPurgesCNAME(t *testing.T) {
	n := NewNode()

	cname := NewRdataset(dnsmsg.IN, dnsmsg.CNAME, 0)
	target, _ := dnsmsg.RDataFromString(dnsmsg.CNAME, "bar.example.")
	cname.Add(target, 60)
	n.Put(cname)

	a := NewRdataset(dnsmsg.IN, dnsmsg.A, 0)
	a.Add(mustA(t, "192.0.2.1"), 60)
	n.Put(a)

	if n.IsCNAME() {
		t.Error("CNAME should have been purged by other data")
	}
	if n.Get(dnsmsg.A, 0) == nil {
		t.Error("A rdataset should be present")
	}
}

func TestNodeCNAMEToleratesNeutralTypes(t *testing.T) {
	n := NewNode()

	cname := NewRdataset(dnsmsg.IN, dnsmsg.CNAME, 0)
	target, _ := dnsmsg.RDataFromString(dnsmsg.CNAME, "bar.example.")
	cname.Add(target, 60)
	n.Put(cname)

	nsec := NewRdataset(dnsmsg.IN, dnsmsg.NSEC, 0)
	n.Put(nsec)

	if !n.IsCNAME() {
		t.Error("node should remain a CNAME node")
	}
	if n.Get(dnsmsg.NSEC, 0) == nil {
		t.Error("NSEC rdataset should coexist with CNAME")
	}
}
