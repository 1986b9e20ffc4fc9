package sfs

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FileRecord is one entry of a context listing. Raw holds the record exactly
// as the service sent it; Date is its decoded "date" field (json.Number or
// string, nil when absent).
type FileRecord struct {
	Raw  json.RawMessage
	Date any
}

// ParseListing decodes a files listing. The service wraps records in
// {"files": [...]}; a bare array is accepted as well.
func ParseListing(body []byte) ([]FileRecord, error) {
	trimmed := bytes.TrimSpace(body)

	var raws []json.RawMessage
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, fmt.Errorf("parse listing: %w", err)
		}
	} else {
		var envelope struct {
			Files []json.RawMessage `json:"files"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("parse listing: %w", err)
		}
		raws = envelope.Files
	}

	records := make([]FileRecord, 0, len(raws))
	for i, raw := range raws {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("parse listing entry %d: %w", i, err)
		}
		date, err := decodeDate(fields["date"])
		if err != nil {
			return nil, fmt.Errorf("parse listing entry %d: %w", i, err)
		}
		records = append(records, FileRecord{Raw: raw, Date: date})
	}
	return records, nil
}

func decodeDate(raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode date: %w", err)
	}
	return v, nil
}

// MostRecent returns the record with the greatest date. Ties keep the
// earliest record in listing order.
func MostRecent(records []FileRecord) (FileRecord, error) {
	if len(records) == 0 {
		return FileRecord{}, ErrNoFiles
	}

	best := records[0]
	for _, r := range records[1:] {
		greater, err := dateAfter(r.Date, best.Date)
		if err != nil {
			return FileRecord{}, err
		}
		if greater {
			best = r
		}
	}
	// A single record still needs a usable date.
	if _, err := dateAfter(best.Date, best.Date); err != nil {
		return FileRecord{}, err
	}
	return best, nil
}

// dateAfter reports a > b. Numbers compare numerically, strings lexically.
func dateAfter(a, b any) (bool, error) {
	switch av := a.(type) {
	case json.Number:
		bv, ok := b.(json.Number)
		if !ok {
			return false, fmt.Errorf("%w: %v and %v", ErrIncomparableDates, a, b)
		}
		return compareNumbers(av, bv)
	case string:
		bv, ok := b.(string)
		if !ok {
			return false, fmt.Errorf("%w: %v and %v", ErrIncomparableDates, a, b)
		}
		return av > bv, nil
	default:
		return false, fmt.Errorf("%w: %v and %v", ErrIncomparableDates, a, b)
	}
}

func compareNumbers(a, b json.Number) (bool, error) {
	if ai, err := a.Int64(); err == nil {
		if bi, err := b.Int64(); err == nil {
			return ai > bi, nil
		}
	}
	af, err := a.Float64()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrIncomparableDates, err)
	}
	bf, err := b.Float64()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrIncomparableDates, err)
	}
	return af > bf, nil
}
