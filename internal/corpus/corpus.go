// Package corpus holds the curated Bangkok attraction records the guide
// answers from, and the text representation used to index them.
package corpus

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Content renders the deterministic text blob that is embedded and indexed
// for a.
func Content(a Attraction) string {
	return fmt.Sprintf("%s. %s. Category: %s. Location: %s. Rating: %s/5. Price range: %s. Tags: %s.",
		a.Title,
		a.Description,
		a.Category,
		a.Location.Address,
		strconv.FormatFloat(a.Rating, 'f', -1, 64),
		a.PriceRange,
		strings.Join(a.Tags, ", "),
	)
}

// Validate checks corpus invariants: ids are present and unique, ratings are
// within [0,5], coordinates are valid and price ranges are known. All
// violations are reported together.
func Validate(attractions []Attraction) error {
	var errs []error
	seen := make(map[string]int, len(attractions))
	for i, a := range attractions {
		if strings.TrimSpace(a.ID) == "" {
			errs = append(errs, fmt.Errorf("attraction %d: id is required", i))
		} else if prev, ok := seen[a.ID]; ok {
			errs = append(errs, fmt.Errorf("attraction %d: duplicate id %q (first seen at %d)", i, a.ID, prev))
		} else {
			seen[a.ID] = i
		}
		if a.Rating < 0 || a.Rating > 5 {
			errs = append(errs, fmt.Errorf("attraction %q: rating %v out of range [0,5]", a.ID, a.Rating))
		}
		if a.Location.Lat < -90 || a.Location.Lat > 90 {
			errs = append(errs, fmt.Errorf("attraction %q: latitude %v out of range", a.ID, a.Location.Lat))
		}
		if a.Location.Lng < -180 || a.Location.Lng > 180 {
			errs = append(errs, fmt.Errorf("attraction %q: longitude %v out of range", a.ID, a.Location.Lng))
		}
		if !a.PriceRange.Valid() {
			errs = append(errs, fmt.Errorf("attraction %q: unknown price range %q", a.ID, a.PriceRange))
		}
	}
	return errors.Join(errs...)
}

// fileCorpus is the on-disk YAML layout.
type fileCorpus struct {
	Attractions []Attraction `yaml:"attractions"`
}

// LoadFile reads attractions from a YAML file of the form
//
//	attractions:
//	  - id: wat-pho
//	    title: ...
//
// The result is validated before it is returned.
func LoadFile(path string) ([]Attraction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus file: %w", err)
	}
	var fc fileCorpus
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing corpus file %s: %w", path, err)
	}
	if len(fc.Attractions) == 0 {
		return nil, fmt.Errorf("corpus file %s contains no attractions", path)
	}
	if err := Validate(fc.Attractions); err != nil {
		return nil, fmt.Errorf("invalid corpus file %s: %w", path, err)
	}
	return fc.Attractions, nil
}

// Load returns the attractions from path, or the compiled-in Bangkok corpus
// when path is empty.
func Load(path string) ([]Attraction, error) {
	if path == "" {
		return Bangkok(), nil
	}
	return LoadFile(path)
}
