package status

import (
	"github.com/metal-stack/netstatus/internal/leases"
	"github.com/metal-stack/netstatus/internal/ndp"
)

// Entry is everything known about a single mac address.
type Entry struct {
	DHCPLease  *leases.Lease `json:"dhcp_lease"`
	NDPEntries ndp.Entries   `json:"ndp_entries"`
}

// Status maps a mac address to its entry. encoding/json writes the keys sorted.
type Status map[string]*Entry

// Merge joins active leases and neighbor entries on the mac address.
// Leases are applied first, a later lease for the same mac replaces an earlier one.
// Neighbor entries are appended in input order. The inputs are not modified.
func Merge(active leases.Leases, neighbors ndp.Entries) Status {
	s := Status{}
	for _, l := range active {
		lease := l
		s[lease.Mac] = &Entry{
			DHCPLease:  &lease,
			NDPEntries: ndp.Entries{},
		}
	}
	for _, n := range neighbors {
		e, ok := s[n.Mac]
		if !ok {
			e = &Entry{NDPEntries: ndp.Entries{}}
			s[n.Mac] = e
		}
		e.NDPEntries = append(e.NDPEntries, n)
	}
	return s
}
