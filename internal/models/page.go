package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Page is the paginated list envelope.
type Page[T any] struct {
	Content       []T `json:"content"`
	CurrentPage   int `json:"currentPage"`
	TotalPages    int `json:"totalPages"`
	TotalElements int `json:"totalElements"`
}

// DecodePage normalizes a list response. The backend returns either a [Page] envelope or a bare JSON array;
// a bare array becomes a single page holding every element.
func DecodePage[T any](raw []byte) (Page[T], error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Page[T]{Content: []T{}, TotalPages: 0}, nil
	}

	if raw[0] == '[' {
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return Page[T]{}, fmt.Errorf("failed to decode list: %w", err)
		}
		if items == nil {
			items = []T{}
		}
		return Page[T]{Content: items, TotalPages: 1, TotalElements: len(items)}, nil
	}

	var page Page[T]
	if err := json.Unmarshal(raw, &page); err != nil {
		return Page[T]{}, fmt.Errorf("failed to decode page: %w", err)
	}
	if page.Content == nil {
		page.Content = []T{}
	}
	return page, nil
}
