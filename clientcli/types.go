package clientcli

import (
	"encoding/json"
	"fmt"
)

// fileSummary is the part of a listing record shown in tables. Fields the
// server omits stay zero.
type fileSummary struct {
	Name string `json:"name"`
	Size *int64 `json:"size"`
}

// contextsListing mirrors the list_contexts response.
type contextsListing struct {
	Contexts []json.RawMessage `json:"contexts"`
}

// contextSummary is one context entry. Servers may send either a bare name
// or an object.
type contextSummary struct {
	Org  string `json:"org"`
	Name string `json:"name"`
}

func (c *contextSummary) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		c.Name = name
		return nil
	}

	type plain contextSummary
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decode context entry: %w", err)
	}
	*c = contextSummary(p)
	return nil
}

func parseContexts(raw json.RawMessage) ([]contextSummary, error) {
	var listing contextsListing
	if err := json.Unmarshal(raw, &listing); err != nil {
		return nil, fmt.Errorf("decode contexts: %w", err)
	}

	out := make([]contextSummary, len(listing.Contexts))
	for i, entry := range listing.Contexts {
		if err := json.Unmarshal(entry, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}
