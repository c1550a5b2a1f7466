package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Item is the domain model for a todo entry.
// The server owns it; the client only ever holds copies of what it returned.
type Item struct {
	ID        ID     `json:"id"`
	Task      string `json:"task"`
	Completed bool   `json:"completed"`
}

// ID is the server-assigned identifier of an Item.
// It is opaque: the reference API hands out integers, others may use strings.
type ID string

// ParseID turns user input (a CLI argument) into an ID.
func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty id")
	}
	return ID(s), nil
}

func (id ID) String() string { return string(id) }

// UnmarshalJSON accepts both JSON numbers and JSON strings.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes ids in canonical integer form ("0", "42") as JSON
// numbers and everything else, "007" included, as strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if isCanonicalInt(string(id)) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func isCanonicalInt(s string) bool {
	if s == "" || (s[0] == '0' && len(s) > 1) {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Stats counts completed items against the total.
func Stats(items []Item) (completed, total int) {
	for _, it := range items {
		if it.Completed {
			completed++
		}
	}
	return completed, len(items)
}
