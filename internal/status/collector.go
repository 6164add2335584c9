package status

import (
	"context"
	"fmt"
	"net/netip"
	"slices"
	"time"

	"github.com/metal-stack/netstatus/internal/failure"
	"github.com/metal-stack/netstatus/internal/leases"
	"github.com/metal-stack/netstatus/internal/ndp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type LeaseSource interface {
	Leases(ctx context.Context) (leases.Leases, error)
}

type NeighborSource interface {
	Neighbors(ctx context.Context) (ndp.Entries, error)
}

type Config struct {
	Log       *zap.SugaredLogger
	Leases    LeaseSource
	Neighbors NeighborSource

	// IgnoreMacs are dropped from both sources.
	IgnoreMacs []string

	// AllowedCidrs restricts which leases are reported, empty allows everything.
	AllowedCidrs []netip.Prefix

	// Now defaults to time.Now.
	Now func() time.Time
}

// Collector builds a fresh Status from the lease database and the neighbor
// table on every call. Nothing is shared between calls.
type Collector struct {
	log          *zap.SugaredLogger
	leases       LeaseSource
	neighbors    NeighborSource
	ignoreMacs   []string
	allowedCidrs []netip.Prefix
	now          func() time.Time
}

func New(c Config) *Collector {
	now := c.Now
	if now == nil {
		now = time.Now
	}
	log := c.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Collector{
		log:          log,
		leases:       c.Leases,
		neighbors:    c.Neighbors,
		ignoreMacs:   c.IgnoreMacs,
		allowedCidrs: c.AllowedCidrs,
		now:          now,
	}
}

// Collect reads both sources concurrently and merges them. Any error aborts
// the whole collection, a partial view is never returned.
func (c *Collector) Collect(ctx context.Context) (Status, error) {
	start := time.Now()
	s, err := c.collect(ctx)
	collectDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		collectTotal.WithLabelValues(failure.Kind(err)).Inc()
		return nil, err
	}
	collectTotal.WithLabelValues("success").Inc()
	return s, nil
}

func (c *Collector) collect(ctx context.Context) (Status, error) {
	var (
		all       leases.Leases
		neighbors ndp.Entries
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ls, err := c.leases.Leases(gctx)
		if err != nil {
			return fmt.Errorf("could not read leases: %w", err)
		}
		all = ls
		return nil
	})
	g.Go(func() error {
		ns, err := c.neighbors.Neighbors(gctx)
		if err != nil {
			return fmt.Errorf("could not read neighbor table: %w", err)
		}
		neighbors = ns
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	active := c.filterLeases(all.FilterActive(c.now()))
	neighbors = c.filterNeighbors(neighbors)

	s := Merge(active, neighbors)
	c.log.Debugw("collected status", "all", len(all), "active", len(active), "neighbors", len(neighbors), "entries", len(s))

	activeLeases.Set(float64(len(active)))
	neighborEntries.Set(float64(len(neighbors)))
	return s, nil
}

func (c *Collector) filterLeases(ls leases.Leases) leases.Leases {
	filtered := leases.Leases{}
	for _, l := range ls {
		if l.MacContainedIn(c.ignoreMacs) {
			continue
		}
		if !c.isInAllowedCidr(l.IP) {
			c.log.Debugw("lease outside of allowed cidrs", "mac", l.Mac, "ip", l.IP)
			continue
		}
		filtered = append(filtered, l)
	}
	return filtered
}

func (c *Collector) filterNeighbors(ns ndp.Entries) ndp.Entries {
	if len(c.ignoreMacs) == 0 {
		return ns
	}
	filtered := ndp.Entries{}
	for _, n := range ns {
		if slices.Contains(c.ignoreMacs, n.Mac) {
			continue
		}
		filtered = append(filtered, n)
	}
	return filtered
}

func (c *Collector) isInAllowedCidr(ip netip.Addr) bool {
	if len(c.allowedCidrs) == 0 {
		return true
	}
	for _, pfx := range c.allowedCidrs {
		if pfx.Contains(ip) {
			return true
		}
	}
	return false
}
