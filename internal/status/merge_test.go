package status

import (
	"encoding/json"
	"net/netip"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/metal-stack/netstatus/internal/leases"
	"github.com/metal-stack/netstatus/internal/ndp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var addrComparer = cmp.Comparer(func(a, b netip.Addr) bool { return a == b })

func ptr(s string) *string {
	return &s
}

func TestMerge(t *testing.T) {
	end := time.Date(2080, 01, 10, 14, 44, 2, 0, time.UTC)
	l1 := leases.Lease{Mac: "aa:bb:cc:00:00:01", IP: netip.MustParseAddr("10.0.0.5"), End: end, Hostname: ptr("laptop")}
	l2 := leases.Lease{Mac: "aa:bb:cc:00:00:02", IP: netip.MustParseAddr("10.0.0.6"), End: end}
	l2renewed := leases.Lease{Mac: "aa:bb:cc:00:00:02", IP: netip.MustParseAddr("10.0.0.8"), End: end}

	n1 := ndp.Entry{Mac: "aa:bb:cc:00:00:01", IP: "fe80::1", State: ndp.Reachable}
	n2 := ndp.Entry{Mac: "aa:bb:cc:00:00:03", IP: "fe80::2", State: ndp.Stale}
	n3 := ndp.Entry{Mac: "aa:bb:cc:00:00:01", IP: "2001:db8::1"}

	tests := []struct {
		name      string
		leases    leases.Leases
		neighbors ndp.Entries
		want      Status
	}{
		{
			name: "nothing",
			want: Status{},
		},
		{
			name:   "lease only",
			leases: leases.Leases{l1},
			want: Status{
				"aa:bb:cc:00:00:01": {DHCPLease: &l1, NDPEntries: ndp.Entries{}},
			},
		},
		{
			name:      "neighbor only",
			neighbors: ndp.Entries{n2},
			want: Status{
				"aa:bb:cc:00:00:03": {NDPEntries: ndp.Entries{n2}},
			},
		},
		{
			name:      "outer join keeps neighbor order",
			leases:    leases.Leases{l1},
			neighbors: ndp.Entries{n1, n2, n3},
			want: Status{
				"aa:bb:cc:00:00:01": {DHCPLease: &l1, NDPEntries: ndp.Entries{n1, n3}},
				"aa:bb:cc:00:00:03": {NDPEntries: ndp.Entries{n2}},
			},
		},
		{
			name:   "last lease for a mac wins",
			leases: leases.Leases{l2, l1, l2renewed},
			want: Status{
				"aa:bb:cc:00:00:01": {DHCPLease: &l1, NDPEntries: ndp.Entries{}},
				"aa:bb:cc:00:00:02": {DHCPLease: &l2renewed, NDPEntries: ndp.Entries{}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.leases, tt.neighbors)
			if diff := cmp.Diff(tt.want, got, addrComparer); diff != "" {
				t.Errorf("diff = %s", diff)
			}
		})
	}
}

func TestMergeIsRepeatable(t *testing.T) {
	end := time.Now().Add(time.Hour)
	ls := leases.Leases{
		{Mac: "aa:bb:cc:00:00:01", IP: netip.MustParseAddr("10.0.0.5"), End: end},
	}
	ns := ndp.Entries{
		{Mac: "aa:bb:cc:00:00:01", IP: "fe80::1"},
		{Mac: "aa:bb:cc:00:00:03", IP: "fe80::2"},
	}
	lsBefore := append(leases.Leases{}, ls...)
	nsBefore := append(ndp.Entries{}, ns...)

	first := Merge(ls, ns)
	second := Merge(ls, ns)

	if diff := cmp.Diff(first, second, addrComparer); diff != "" {
		t.Errorf("diff = %s", diff)
	}
	if diff := cmp.Diff(lsBefore, ls, addrComparer); diff != "" {
		t.Errorf("leases were modified: %s", diff)
	}
	assert.Equal(t, nsBefore, ns)

	// mutating one result must not leak into the other
	first["aa:bb:cc:00:00:01"].NDPEntries[0].IP = "changed"
	first["aa:bb:cc:00:00:01"].DHCPLease.Mac = "changed"
	assert.Equal(t, "fe80::1", second["aa:bb:cc:00:00:01"].NDPEntries[0].IP)
	assert.Equal(t, "aa:bb:cc:00:00:01", ls[0].Mac)
}

func TestStatusJSON(t *testing.T) {
	l := leases.Lease{
		Mac:      "aa:bb:cc:00:00:01",
		IP:       netip.MustParseAddr("10.0.0.5"),
		End:      time.Date(2080, 01, 10, 14, 44, 2, 0, time.UTC),
		Hostname: ptr("laptop"),
	}
	s := Merge(leases.Leases{l}, ndp.Entries{
		{Mac: "aa:bb:cc:00:00:03", IP: "fe80::2", State: ndp.Stale},
		{Mac: "aa:bb:cc:00:00:01", IP: "fe80::1"},
	})

	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"aa:bb:cc:00:00:01": {
			"dhcp_lease": {
				"mac_address": "aa:bb:cc:00:00:01",
				"ip_address": "10.0.0.5",
				"expires_at": "2080-01-10T14:44:02Z",
				"hostname": "laptop"
			},
			"ndp_entries": [{"mac_address": "aa:bb:cc:00:00:01", "ip_address": "fe80::1"}]
		},
		"aa:bb:cc:00:00:03": {
			"dhcp_lease": null,
			"ndp_entries": [{"mac_address": "aa:bb:cc:00:00:03", "ip_address": "fe80::2", "cache_state": "Stale"}]
		}
	}`, string(b))

	empty, err := json.Marshal(Merge(leases.Leases{l}, nil))
	require.NoError(t, err)
	assert.Contains(t, string(empty), `"ndp_entries":[]`)
}
