package leases

import (
	"bufio"
	"fmt"
	"io"
	"net/netip"
	"regexp"
	"strings"
	"time"

	"github.com/metal-stack/netstatus/internal/failure"
)

const DATE_FORMAT = "2006/01/02 15:04:05"

var (
	ipRegex       = regexp.MustCompile(`lease (?P<ip>.*?) \{`)
	endRegex      = regexp.MustCompile(`ends \d (?P<end>[^;]*);`)
	macRegex      = regexp.MustCompile(`hardware ethernet (?P<mac>[^;]*);`)
	hostnameRegex = regexp.MustCompile(`client-hostname "(?P<hostname>.*?)";`)
)

// ParseError describes a lease block which could not be interpreted.
// Blocks are counted from 1 in the order they appear in the lease file.
type ParseError struct {
	Block  int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("lease block %d: %s", e.Block, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return failure.ErrMalformedRecord
}

type scanState int

const (
	outside scanState = iota
	insideBlock
)

// Parse reads a dhcpd lease database and returns one lease per lease block.
// The first malformed block aborts parsing, no partial result is returned.
// A block which is still open at the end of the input is dropped.
func Parse(r io.Reader) (Leases, error) {
	var (
		leases = Leases{}
		state  = outside
		block  strings.Builder
		count  int
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch state {
		case outside:
			if !strings.HasPrefix(line, "lease") {
				continue
			}
			state = insideBlock
			block.WriteString(line)
		case insideBlock:
			block.WriteString(line)
			if line != "}" {
				continue
			}
			count++
			lease, err := parseBlock(count, block.String())
			if err != nil {
				return nil, err
			}
			leases = append(leases, lease)
			block.Reset()
			state = outside
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("unable to read leases: %w: %w", failure.ErrSourceUnavailable, err)
	}

	return leases, nil
}

func parseBlock(n int, block string) (Lease, error) {
	rawIP, ok := capture(ipRegex, "ip", block)
	if !ok {
		return Lease{}, &ParseError{Block: n, Reason: "no lease address"}
	}
	ip, err := netip.ParseAddr(rawIP)
	if err != nil || !ip.Is4() {
		return Lease{}, &ParseError{Block: n, Reason: fmt.Sprintf("%q is not an ipv4 address", rawIP)}
	}

	rawEnd, ok := capture(endRegex, "end", block)
	if !ok {
		return Lease{}, &ParseError{Block: n, Reason: "no ends statement"}
	}
	end, err := time.ParseInLocation(DATE_FORMAT, rawEnd, time.UTC)
	if err != nil {
		return Lease{}, &ParseError{Block: n, Reason: fmt.Sprintf("unparsable end %q: %v", rawEnd, err)}
	}

	mac, ok := capture(macRegex, "mac", block)
	mac = strings.ToLower(strings.TrimSpace(mac))
	if !ok || mac == "" {
		return Lease{}, &ParseError{Block: n, Reason: "no hardware ethernet statement"}
	}

	l := Lease{
		Mac: mac,
		IP:  ip,
		End: end,
	}
	if hostname, ok := capture(hostnameRegex, "hostname", block); ok {
		l.Hostname = &hostname
	}
	return l, nil
}

// capture returns the submatch of the named group of re in s.
func capture(re *regexp.Regexp, name, s string) (string, bool) {
	i := re.SubexpIndex(name)
	if i < 0 {
		return "", false
	}
	m := re.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[i], true
}
