package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// AllocationSlice is the share of the portfolio held in one category.
type AllocationSlice struct {
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

// AllocationEntry pairs a category label with its slice.
type AllocationEntry struct {
	Label string
	AllocationSlice
}

// AllocationGroup is an ordered mapping from category label to slice.
// Labels are unique and keep first-seen order. The zero value is empty
// and ready to use.
type AllocationGroup struct {
	entries []AllocationEntry
	index   map[string]int
}

// Set stores the slice for label, replacing any existing value in place.
func (g *AllocationGroup) Set(label string, slice AllocationSlice) {
	if g.index == nil {
		g.index = make(map[string]int)
	}
	if i, ok := g.index[label]; ok {
		g.entries[i].AllocationSlice = slice
		return
	}
	g.index[label] = len(g.entries)
	g.entries = append(g.entries, AllocationEntry{Label: label, AllocationSlice: slice})
}

// Get returns the slice for label.
func (g AllocationGroup) Get(label string) (AllocationSlice, bool) {
	i, ok := g.index[label]
	if !ok {
		return AllocationSlice{}, false
	}
	return g.entries[i].AllocationSlice, true
}

// Len returns the number of categories.
func (g AllocationGroup) Len() int {
	return len(g.entries)
}

// Labels returns category labels in first-seen order.
func (g AllocationGroup) Labels() []string {
	labels := make([]string, len(g.entries))
	for i, e := range g.entries {
		labels[i] = e.Label
	}
	return labels
}

// Entries returns a copy of the entries in first-seen order.
func (g AllocationGroup) Entries() []AllocationEntry {
	out := make([]AllocationEntry, len(g.entries))
	copy(out, g.entries)
	return out
}

// Largest returns the entry with the highest percentage. Ties go to the
// entry seen first. ok is false for an empty group.
func (g AllocationGroup) Largest() (entry AllocationEntry, ok bool) {
	for i, e := range g.entries {
		if i == 0 || e.Percentage > entry.Percentage {
			entry = e
			ok = true
		}
	}
	return entry, ok
}

// TopByValue returns up to n entries ordered by value, highest first.
func (g AllocationGroup) TopByValue(n int) []AllocationEntry {
	sorted := g.Entries()
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value > sorted[j].Value
	})
	if n >= 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// MarshalJSON renders the group as a JSON object keyed by label.
func (g AllocationGroup) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range g.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Label)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.AllocationSlice)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keyed by label. Key order is preserved.
func (g *AllocationGroup) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("allocation group: expected object, got %v", tok)
	}
	*g = AllocationGroup{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		label, ok := tok.(string)
		if !ok {
			return fmt.Errorf("allocation group: expected string key, got %v", tok)
		}
		var slice AllocationSlice
		if err := dec.Decode(&slice); err != nil {
			return fmt.Errorf("allocation group %q: %w", label, err)
		}
		g.Set(label, slice)
	}
	_, err = dec.Token()
	return err
}

// AllocationBreakdown groups portfolio value by sector and market-cap tier.
type AllocationBreakdown struct {
	BySector    AllocationGroup `json:"bySector"`
	ByMarketCap AllocationGroup `json:"byMarketCap"`
}
