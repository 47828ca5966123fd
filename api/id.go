package api

import (
	"bytes"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/goliatone/go-errors"
)

// ID identifies a server record. The API mixes numeric and string ids, so ids
// are held as strings and converted at the JSON boundary.
type ID string

// String returns the id.
func (id ID) String() string { return string(id) }

// IsZero reports whether the id is empty.
func (id ID) IsZero() bool { return id == "" }

// IntID converts a numeric id.
func IntID(n int64) ID { return ID(strconv.FormatInt(n, 10)) }

// MarshalJSON emits decimal ids as JSON numbers and anything else as a string.
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil && canonical(string(id)) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON accepts a number, a string or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errors.Wrap(err, errors.CategoryBadInput, "invalid id")
		}
		*id = ID(s)
		return nil
	default:
		if _, err := strconv.ParseFloat(string(data), 64); err != nil {
			return errors.Wrap(err, errors.CategoryBadInput, "invalid id")
		}
		*id = ID(data)
		return nil
	}
}

// canonical rejects forms like "007" or "+7" that would not survive a round trip.
func canonical(s string) bool {
	if s == "0" {
		return true
	}
	if s[0] == '-' {
		s = s[1:]
	}
	return s != "" && s[0] != '0' && s[0] != '+'
}
