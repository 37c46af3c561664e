// Package manifest loads batch declaration files and builds their artifacts.
//
// A manifest lists named paths and the regions between them:
//
//	cache_id: chapter-2
//	paths:
//	  - name: lower
//	    bits: "0011"
//	  - name: upper
//	    bits: "0101"
//	regions:
//	  - lower: lower
//	    upper: upper
//
// Region endpoints name a path of the same manifest or carry bits inline.
package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/lpm/internal/emitter"
	"github.com/aretw0/lpm/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Document is a decoded manifest.
type Document struct {
	CacheID string        `json:"cache_id" mapstructure:"cache_id"`
	Paths   []PathEntry   `json:"paths" mapstructure:"paths"`
	Regions []RegionEntry `json:"regions" mapstructure:"regions"`
}

// PathEntry declares one named path.
type PathEntry struct {
	Name string `json:"name" mapstructure:"name"`
	Bits string `json:"bits" mapstructure:"bits"`
}

// RegionEntry declares the region between two paths.
// Lower and Upper hold either the name of a declared path or a bit-string.
type RegionEntry struct {
	Lower     string `json:"lower" mapstructure:"lower"`
	Upper     string `json:"upper" mapstructure:"upper"`
	LowerName string `json:"lname" mapstructure:"lname"`
	UpperName string `json:"uname" mapstructure:"uname"`
}

// Declarer emits path and region artifacts.
type Declarer interface {
	DeclarePath(ctx context.Context, bits, name, cacheID string) (*emitter.PathResult, error)
	DeclareBetween(ctx context.Context, lowerBits, upperBits, lowerName, upperName string) (*emitter.BetweenResult, error)
}

// Report collects the results of a build in manifest order.
type Report struct {
	Paths   []*emitter.PathResult
	Regions []*emitter.BetweenResult
}

// Macros returns every macro definition of the build, one declaration per block.
func (r *Report) Macros() string {
	var parts []string
	for _, p := range r.Paths {
		parts = append(parts, p.Macros())
	}
	for _, b := range r.Regions {
		parts = append(parts, b.Macros())
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n") + "\n"
}

// Load reads and decodes a manifest file. ".json" files are decoded as JSON,
// everything else as YAML.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes manifest content. ext selects the syntax like in Load.
func Parse(data []byte, ext string) (*Document, error) {
	var raw map[string]any
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, &domain.InputError{Field: "manifest", Reason: fmt.Sprintf("invalid JSON: %v", err)}
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, &domain.InputError{Field: "manifest", Reason: fmt.Sprintf("invalid YAML: %v", err)}
		}
	}

	var doc Document
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &doc,
		ErrorUnused: true,
		TagName:     "mapstructure",
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, &domain.InputError{Field: "manifest", Reason: err.Error()}
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks names and region references. Bits are checked at build time.
func (d *Document) Validate() error {
	seen := make(map[string]bool, len(d.Paths))
	for i, p := range d.Paths {
		if p.Name == "" {
			return &domain.InputError{Field: fmt.Sprintf("paths[%d].name", i), Reason: "is required"}
		}
		if seen[p.Name] {
			return &domain.InputError{Field: fmt.Sprintf("paths[%d].name", i), Reason: "is declared twice", Value: p.Name}
		}
		seen[p.Name] = true
	}
	for i, r := range d.Regions {
		if r.Lower == "" || r.Upper == "" {
			return &domain.InputError{Field: fmt.Sprintf("regions[%d]", i), Reason: "lower and upper are required"}
		}
	}
	return nil
}

// Build declares every path and then every region of doc.
// It stops at the first failing entry.
func Build(ctx context.Context, d Declarer, doc *Document) (*Report, error) {
	byName := make(map[string]string, len(doc.Paths))
	report := &Report{}

	for i, p := range doc.Paths {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res, err := d.DeclarePath(ctx, p.Bits, p.Name, doc.CacheID)
		if err != nil {
			return report, fmt.Errorf("paths[%d] %q: %w", i, p.Name, err)
		}
		byName[p.Name] = p.Bits
		report.Paths = append(report.Paths, res)
	}

	for i, r := range doc.Regions {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		lowerBits, lowerName := resolve(byName, r.Lower, r.LowerName, "L")
		upperBits, upperName := resolve(byName, r.Upper, r.UpperName, "U")
		res, err := d.DeclareBetween(ctx, lowerBits, upperBits, lowerName, upperName)
		if err != nil {
			return report, fmt.Errorf("regions[%d]: %w", i, err)
		}
		report.Regions = append(report.Regions, res)
	}
	return report, nil
}

// resolve maps a region endpoint to its bits and display name.
func resolve(byName map[string]string, ref, name, def string) (string, string) {
	bits, ok := byName[ref]
	if !ok {
		bits = ref
	}
	switch {
	case name != "":
		return bits, name
	case ok:
		return bits, ref
	default:
		return bits, def
	}
}
