package leases

import (
	"net/netip"
	"slices"
	"time"
)

// Lease is a single DHCP lease taken from the dhcpd lease database.
type Lease struct {
	Mac      string     `json:"mac_address"`
	IP       netip.Addr `json:"ip_address"`
	End      time.Time  `json:"expires_at"`
	Hostname *string    `json:"hostname"`
}

type Leases []Lease

// IsActive reports whether the lease is still valid at now.
func (l Lease) IsActive(now time.Time) bool {
	return l.End.After(now)
}

func (l Lease) MacContainedIn(macs []string) bool {
	return slices.Contains(macs, l.Mac)
}
