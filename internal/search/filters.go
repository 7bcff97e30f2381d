// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/policy-engine/pkg/types"
)

// ErrInvalidFilter reports a metadata filter that could not be decoded.
// Unknown filter fields are rejected rather than ignored.
var ErrInvalidFilter = errors.New("invalid metadata filter")

const dateFmt = "2006-01-02"

// stringList accepts either a single string or a list of strings.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one = strings.TrimSpace(one); one != "" {
			*l = stringList{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("expected string or list of strings")
	}
	*l = many
	return nil
}

type rawFilters struct {
	IssuingAuthority stringList `json:"issuing_authority"`
	Status           stringList `json:"status"`
	LawLevel         stringList `json:"law_level"`
	DateRange        *struct {
		From string `json:"from"`
		To   string `json:"to"`
	} `json:"date_range"`
}

// DecodeFilters parses a JSON metadata filter. Recognized fields are
// issuing_authority, status, law_level (string or list) and date_range
// ({"from": "YYYY-MM-DD", "to": "YYYY-MM-DD"}). Empty input yields no
// filter.
func DecodeFilters(data []byte) (types.Filters, error) {
	if len(bytes.TrimSpace(data)) == 0 || string(bytes.TrimSpace(data)) == "null" {
		return types.Filters{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var raw rawFilters
	if err := dec.Decode(&raw); err != nil {
		return types.Filters{}, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}

	f := types.Filters{
		IssuingAuthority: raw.IssuingAuthority,
		Status:           raw.Status,
		LawLevel:         raw.LawLevel,
	}
	if raw.DateRange != nil {
		dr, err := ParseDateRange(raw.DateRange.From, raw.DateRange.To)
		if err != nil {
			return types.Filters{}, err
		}
		f.DateRange = dr
	}
	return f, nil
}

// ParseDateRange builds a date range from YYYY-MM-DD bounds; either may be
// empty. It returns nil when both are empty. The upper bound is inclusive
// of the whole day.
func ParseDateRange(from, to string) (*types.DateRange, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" && to == "" {
		return nil, nil
	}
	var dr types.DateRange
	if from != "" {
		t, err := time.Parse(dateFmt, from)
		if err != nil {
			return nil, fmt.Errorf("%w: date_range.from %q: %v", ErrInvalidFilter, from, err)
		}
		dr.From = t
	}
	if to != "" {
		t, err := time.Parse(dateFmt, to)
		if err != nil {
			return nil, fmt.Errorf("%w: date_range.to %q: %v", ErrInvalidFilter, to, err)
		}
		dr.To = t.Add(24*time.Hour - time.Nanosecond)
	}
	if !dr.From.IsZero() && !dr.To.IsZero() && dr.To.Before(dr.From) {
		return nil, fmt.Errorf("%w: date_range.to is before date_range.from", ErrInvalidFilter)
	}
	return &dr, nil
}
