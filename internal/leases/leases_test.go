package leases

import (
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/metal-stack/netstatus/internal/failure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustAddr(s string) netip.Addr {
	return netip.MustParseAddr(s)
}

func addrEqual(a, b netip.Addr) bool {
	return a == b
}

func TestFilterActive(t *testing.T) {
	l, err := Parse(strings.NewReader(LEASES_CONTENT))
	require.NoError(t, err)
	assert.Equal(t, Leases{}, l.FilterActive(time.Now()))
}

func TestIsActive(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		end  time.Time
		want bool
	}{
		{name: "one second in the past", end: now.Add(-time.Second), want: false},
		{name: "exactly now", end: now, want: false},
		{name: "one second in the future", end: now.Add(time.Second), want: true},
		{name: "same instant in another zone", end: now.In(time.FixedZone("CEST", 2*60*60)), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Lease{Mac: "aa:aa", End: tt.end}
			assert.Equal(t, tt.want, l.IsActive(now))
		})
	}
}

func TestFilterActiveKeepsOrder(t *testing.T) {
	now := time.Now()
	l1 := Lease{Mac: "aa:aa", End: now.Add(time.Hour)}
	l2 := Lease{Mac: "bb:bb", End: now.Add(-time.Hour)}
	l3 := Lease{Mac: "cc:cc", End: now.Add(2 * time.Hour)}

	assert.Equal(t, Leases{l1, l3}, Leases{l1, l2, l3}.FilterActive(now))
}

func TestMacContainedIn(t *testing.T) {
	l := Lease{Mac: "aa:bb:cc:00:00:01"}
	assert.True(t, l.MacContainedIn([]string{"ff:ff:ff:ff:ff:ff", "aa:bb:cc:00:00:01"}))
	assert.False(t, l.MacContainedIn(nil))
}

func TestReadLeases(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dhcpd.leases")
	err := os.WriteFile(path, []byte(leaseFile), 0600)
	require.NoError(t, err)

	l, err := ReadLeases(path)
	require.NoError(t, err)
	assert.Len(t, l, 3)

	_, err = ReadLeases(filepath.Join(dir, "missing.leases"))
	require.Error(t, err)
	assert.ErrorIs(t, err, failure.ErrSourceUnavailable)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dhcpd.leases")
	require.NoError(t, os.WriteFile(path, []byte(leaseFile), 0600))

	s := FileSource{Path: path}
	l, err := s.Leases(t.Context())
	require.NoError(t, err)
	assert.Len(t, l, 3)

	// a changed file is picked up by the next call
	require.NoError(t, os.WriteFile(path, []byte(LEASES_CONTENT), 0600))
	l, err = s.Leases(t.Context())
	require.NoError(t, err)
	assert.Len(t, l, 2)
}
