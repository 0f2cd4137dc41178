package utils

import (
	"fmt"
	"strings"
	"time"
)

// Date layouts accepted from CSV files and the relational store, tried in
// order. The ISO form comes first because it is what the store writes.
var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"2006/01/02",
	"2006-01-02 15:04:05",
}

// ParseDate parses a transaction date string. The time-of-day portion of a
// date carries no significance anywhere in the pipeline.
func ParseDate(dateStr string) (time.Time, error) {
	s := strings.TrimSpace(dateStr)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
}
