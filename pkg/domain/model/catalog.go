package model

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/m-mizutani/appdeck/pkg/domain/types"
)

// CatalogEntry is one promoted application in a catalog
type CatalogEntry struct {
	IconName    string            `json:"iconName"`    // Relative or absolute icon locator
	DownloadURL string            `json:"downloadURL"` // Target link, unique within a catalog
	Name        map[string]string `json:"name"`        // Raw locale tag -> display name
	Summary     map[string]string `json:"summary"`     // Raw locale tag -> summary
}

// ID returns the identity key of the entry
func (e CatalogEntry) ID() string {
	return e.DownloadURL
}

// Link parses the download URL. Only absolute URLs are accepted.
func (e CatalogEntry) Link() (*url.URL, error) {
	u, err := url.Parse(e.DownloadURL)
	if err != nil {
		return nil, fmt.Errorf("%w: download URL %q: %w", types.ErrInvalidURL, e.DownloadURL, err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("%w: download URL %q is not absolute", types.ErrInvalidURL, e.DownloadURL)
	}
	return u, nil
}

// UnmarshalJSON requires every field to be present with the right type so
// that a malformed entry invalidates the whole apps list.
func (e *CatalogEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		IconName    *string            `json:"iconName"`
		DownloadURL *string            `json:"downloadURL"`
		Name        *map[string]string `json:"name"`
		Summary     *map[string]string `json:"summary"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch {
	case raw.IconName == nil:
		return fmt.Errorf("missing iconName")
	case raw.DownloadURL == nil:
		return fmt.Errorf("missing downloadURL")
	case raw.Name == nil:
		return fmt.Errorf("missing name")
	case raw.Summary == nil:
		return fmt.Errorf("missing summary")
	}

	*e = CatalogEntry{
		IconName:    *raw.IconName,
		DownloadURL: *raw.DownloadURL,
		Name:        *raw.Name,
		Summary:     *raw.Summary,
	}
	return nil
}

// Catalog is the decoded remote document
type Catalog struct {
	Active  bool
	Entries []CatalogEntry
}

// DecodeCatalog parses a catalog document. Only a body that is not a JSON
// object fails; a missing or malformed active flag decodes as false and a
// missing or malformed apps list decodes as empty.
func DecodeCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: catalog document: %w", types.ErrDecode, err)
	}
	return &c, nil
}

// UnmarshalJSON accepts both "Active" and "active", checking "Active" first
func (c *Catalog) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("catalog document is null")
	}

	c.Active = false
	for _, key := range []string{"Active", "active"} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var active bool
		if err := json.Unmarshal(raw, &active); err == nil && string(raw) != "null" {
			c.Active = active
			break
		}
	}

	c.Entries = []CatalogEntry{}
	if raw, ok := fields["apps"]; ok {
		var entries []CatalogEntry
		if err := json.Unmarshal(raw, &entries); err == nil && entries != nil {
			c.Entries = entries
		}
	}

	return nil
}

// MarshalJSON writes the canonical document shape
func (c Catalog) MarshalJSON() ([]byte, error) {
	entries := c.Entries
	if entries == nil {
		entries = []CatalogEntry{}
	}
	return json.Marshal(struct {
		Active bool           `json:"Active"`
		Apps   []CatalogEntry `json:"apps"`
	}{
		Active: c.Active,
		Apps:   entries,
	})
}

// Entry returns the entry with the given identity key
func (c *Catalog) Entry(id string) (CatalogEntry, bool) {
	if c == nil {
		return CatalogEntry{}, false
	}
	for _, e := range c.Entries {
		if e.ID() == id {
			return e, true
		}
	}
	return CatalogEntry{}, false
}
