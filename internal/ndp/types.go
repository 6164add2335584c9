package ndp

import (
	"encoding/json"
	"fmt"
)

// Entry is one row of the neighbor discovery table.
type Entry struct {
	Mac   string     `json:"mac_address"`
	IP    string     `json:"ip_address"`
	State CacheState `json:"cache_state,omitempty"`
}

type Entries []Entry

// CacheState is the reachability state the kernel reports for a neighbor.
// It is informational only.
type CacheState int

const (
	// StateNone is used when the row carries no state column.
	StateNone CacheState = iota
	NoState
	WaitDelete
	Incomplete
	Reachable
	Stale
	Delay
	Probing
	Unknown
)

var stateNames = map[CacheState]string{
	NoState:    "No State",
	WaitDelete: "Wait Delete",
	Incomplete: "Incomplete",
	Reachable:  "Reachable",
	Stale:      "Stale",
	Delay:      "Delay",
	Probing:    "Probing",
	Unknown:    "Unknown",
}

var stateFlags = map[string]CacheState{
	"N": NoState,
	"W": WaitDelete,
	"I": Incomplete,
	"R": Reachable,
	"S": Stale,
	"D": Delay,
	"P": Probing,
	"?": Unknown,
}

// ParseCacheState accepts both the single letter flag printed by ndp(8) and the
// long name. Anything else is Unknown.
func ParseCacheState(s string) CacheState {
	if st, ok := stateFlags[s]; ok {
		return st
	}
	for st, name := range stateNames {
		if name == s {
			return st
		}
	}
	return Unknown
}

func (s CacheState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return ""
}

func (s CacheState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *CacheState) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("cache state must be a string: %w", err)
	}
	if name == "" {
		*s = StateNone
		return nil
	}
	*s = ParseCacheState(name)
	return nil
}
