package dnssec

import (
	"github.com/dnscore-go/dnscore/dnsmsg"
	"github.com/dnscore-go/dnscore/zone"
)

// SignZoneOptions controls SignZone.
type SignZoneOptions struct {
	// AddDNSKey inserts each signer's DNSKEY into the apex DNSKEY rrset
	// before signing.
	AddDNSKey  bool
	Inception  uint32
	Expiration uint32
}

// SignZone computes and adds an RRSIG to z for every RRset (excluding
// RRSIG itself), one per signer whose role admits signing that RRset.
// Keys are partitioned by their DNSKEY's SEP flag: SEP keys (KSK role)
// sign only the apex DNSKEY RRset; non-SEP keys (ZSK role) sign
// everything. If no signer carries the SEP flag, every signer signs
// everything.
func SignZone(z *zone.Zone, signers []*Signer, opts SignZoneOptions) error {
	if opts.AddDNSKey {
		dnskeyDS, err := z.FindRdataset(z.Origin, dnsmsg.DNSKEY, 0, true)
		if err != nil {
			return err
		}
		for _, s := range signers {
			dnskeyDS.Add(s.Key, dnskeyDS.TTL())
		}
	}

	haveSEP := false
	for _, s := range signers {
		if s.Key.IsSEP() {
			haveSEP = true
			break
		}
	}

	for _, nrd := range z.IterateRdatasets(dnsmsg.ANY, 0) {
		ds := nrd.Rdataset
		if ds.Type == dnsmsg.RRSIG {
			continue
		}

		apexDNSKEY := nrd.Name.Equal(z.Origin) && ds.Type == dnsmsg.DNSKEY
		ttl := ds.TTL()
		rrset := ds.ToWire(nrd.Name.String(), zone.ToWireOptions{})

		for _, s := range signers {
			signs := !haveSEP || !s.Key.IsSEP() || apexDNSKEY
			if !signs {
				continue
			}
			rrsig, err := s.SignRRset(rrset, z.Origin.String(), ttl, opts.Inception, opts.Expiration)
			if err != nil {
				return err
			}
			rrsigDS, err := z.FindRdataset(nrd.Name, dnsmsg.RRSIG, ds.Type, true)
			if err != nil {
				return err
			}
			rrsigDS.Add(rrsig, ttl)
		}
	}

	return nil
}
