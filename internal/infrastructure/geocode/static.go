// Package geocode resolves store locations for distance ranking.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fernetbarato/fernet-barato/api/internal/public/domain"
)

// Locator resolves a store to coordinates. ok is false when the store is unknown.
type Locator interface {
	Locate(ctx context.Context, store domain.Store) (coords domain.Coordinates, ok bool, err error)
}

// StaticTable holds known coordinates keyed by store name.
type StaticTable struct {
	byName map[string]domain.Coordinates
}

type tableFile struct {
	Stores []struct {
		Name string  `yaml:"name"`
		Lat  float64 `yaml:"lat"`
		Lng  float64 `yaml:"lng"`
	} `yaml:"stores"`
}

// NewStaticTable builds a table from name to coordinates.
func NewStaticTable(entries map[string]domain.Coordinates) *StaticTable {
	t := &StaticTable{byName: make(map[string]domain.Coordinates, len(entries))}
	for name, c := range entries {
		t.byName[normalize(name)] = c
	}
	return t
}

// ParseStaticTable reads a YAML coordinates document.
func ParseStaticTable(raw []byte) (*StaticTable, error) {
	var doc tableFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse coordinates: %w", err)
	}

	entries := make(map[string]domain.Coordinates, len(doc.Stores))
	for i, s := range doc.Stores {
		c := domain.Coordinates{Lat: s.Lat, Lng: s.Lng}
		if strings.TrimSpace(s.Name) == "" || !c.Valid() {
			return nil, fmt.Errorf("coordinates entry %d is invalid", i)
		}
		entries[s.Name] = c
	}
	return NewStaticTable(entries), nil
}

// LoadStaticTable reads the YAML file at path. A missing file yields an empty table.
func LoadStaticTable(path string) (*StaticTable, error) {
	if path == "" {
		return NewStaticTable(nil), nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewStaticTable(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read coordinates: %w", err)
	}
	return ParseStaticTable(raw)
}

// Len returns the number of known stores.
func (t *StaticTable) Len() int {
	return len(t.byName)
}

func (t *StaticTable) Locate(_ context.Context, store domain.Store) (domain.Coordinates, bool, error) {
	c, ok := t.byName[normalize(store.Name)]
	return c, ok, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
