package api

import (
	"bytes"

	"github.com/goccy/go-json"
)

// List decodes a collection sent either as a bare array or wrapped as {"data": [...]}.
type List[T any] []T

// UnmarshalJSON accepts both list shapes. null decodes to an empty list.
func (l *List[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = List[T]{}
		return nil
	}

	if data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}

	var wrapped struct {
		Data []T `json:"data"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	if wrapped.Data == nil {
		wrapped.Data = []T{}
	}
	*l = wrapped.Data
	return nil
}

// Pagination is the limit/offset envelope of paged endpoints.
type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

// Page is one page of a paged endpoint.
type Page[T any] struct {
	Data       List[T]    `json:"data"`
	Pagination Pagination `json:"pagination"`
}
