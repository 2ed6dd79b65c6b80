package routes

import (
	"encoding/json"
	"fmt"
	"os"
)

// Manifest is the on-disk form of a route table.
type Manifest struct {
	// Converters declared here are registered before any pattern is
	// parsed, so routes in the same manifest can use them.
	Converters []ManifestConverter `json:"converters,omitempty"`
	Routes     []ManifestEntry     `json:"routes"`
}

// ManifestConverter declares a custom path converter.
type ManifestConverter struct {
	Name        string `json:"name"`
	Regex       string `json:"regex"`
	Placeholder any    `json:"placeholder,omitempty"`
}

// ManifestEntry is one route or include. Exactly one of Route, Regex, or
// Include must be set.
type ManifestEntry struct {
	Route   string           `json:"route,omitempty"`
	Regex   string           `json:"regex,omitempty"`
	Name    string           `json:"name,omitempty"`
	Default map[string]any   `json:"defaults,omitempty"`
	Include *ManifestInclude `json:"include,omitempty"`
}

// ManifestInclude mounts nested routes under a prefix.
type ManifestInclude struct {
	Prefix    string          `json:"prefix"`
	Namespace string          `json:"namespace,omitempty"`
	App       string          `json:"app,omitempty"`
	Routes    []ManifestEntry `json:"routes"`
}

// LoadManifest reads a route table from a JSON file.
func LoadManifest(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes a route table from JSON.
func ParseManifest(data []byte) ([]Entry, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	for _, c := range m.Converters {
		if err := RegisterConverter(&Converter{
			Name:        c.Name,
			Regex:       c.Regex,
			Placeholder: c.Placeholder,
		}); err != nil {
			return nil, fmt.Errorf("manifest converter %q: %w", c.Name, err)
		}
	}
	return buildEntries(m.Routes)
}

func buildEntries(specs []ManifestEntry) ([]Entry, error) {
	entries := make([]Entry, 0, len(specs))
	for _, s := range specs {
		e, err := buildEntry(s)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func buildEntry(s ManifestEntry) (Entry, error) {
	if s.Regex != "" && s.Include != nil || s.Route != "" && (s.Regex != "" || s.Include != nil) {
		return nil, fmt.Errorf("manifest entry %q: only one of route, regex, include may be set", s.Name)
	}
	// An empty route string is a valid pattern (the root url), so "route"
	// counts as set whenever neither of the others is. It just needs a
	// name to be addressable.
	if s.Route == "" && s.Regex == "" && s.Include == nil && s.Name == "" {
		return nil, fmt.Errorf("manifest entry with empty route must have a name")
	}

	if s.Include != nil {
		nested, err := buildEntries(s.Include.Routes)
		if err != nil {
			return nil, err
		}
		var prefix Pattern
		if s.Include.Prefix != "" {
			p, err := ParseRoute(s.Include.Prefix)
			if err != nil {
				return nil, err
			}
			prefix = p
		}
		app := s.Include.App
		if app == "" {
			app = s.Include.Namespace
		}
		return &Include{
			Prefix:    prefix,
			Namespace: s.Include.Namespace,
			AppName:   app,
			Patterns:  nested,
		}, nil
	}

	var p Pattern
	var err error
	if s.Regex != "" {
		p, err = ParseRegex(s.Regex)
	} else {
		p, err = ParseRoute(s.Route)
	}
	if err != nil {
		return nil, err
	}
	return &Route{Pattern: p, Name: s.Name, DefaultArgs: s.Default}, nil
}
