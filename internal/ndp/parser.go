package ndp

import (
	"fmt"
	"strings"

	"github.com/metal-stack/netstatus/internal/failure"
)

// stateColumn is the index of the "S" column in
// Neighbor Linklayer-Address Netif Expire S Flags
const stateColumn = 4

// incomplete is printed instead of a link-layer address for unresolved neighbors.
const incomplete = "(incomplete)"

// ParseError describes a neighbor table row which could not be interpreted.
// Line is the 1 based line number in the command output, the header included.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("neighbor table line %d: %s", e.Line, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return failure.ErrMalformedRecord
}

// Parse interprets the output of the neighbor table command. The first line is
// always treated as a header, blank lines and unresolved neighbors are skipped.
func Parse(output string) (Entries, error) {
	entries := Entries{}
	lines := strings.Split(output, "\n")
	for i, line := range lines {
		if i == 0 {
			continue
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, &ParseError{Line: i + 1, Reason: fmt.Sprintf("expected at least two columns, got %q", line)}
		}

		if strings.EqualFold(fields[1], incomplete) {
			continue
		}

		e := Entry{
			IP:  fields[0],
			Mac: strings.ToLower(fields[1]),
		}
		if len(fields) > stateColumn {
			e.State = ParseCacheState(fields[stateColumn])
		}
		entries = append(entries, e)
	}
	return entries, nil
}
