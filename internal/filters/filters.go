// Package filters loads the tag-exclusion list the loader applies to every
// fetched row.
package filters

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	friendlyerrors "github.com/wumbolauncher/wumbo/internal/errors"
	"gopkg.in/yaml.v3"
)

// Group is one entry of the filter file. Only groups with Filtered set
// contribute their tags to the exclusion set.
type Group struct {
	Name     string   `json:"name,omitempty" yaml:"name,omitempty"`
	Tags     []string `json:"tags" yaml:"tags"`
	Filtered bool     `json:"filtered" yaml:"filtered"`
}

// Set is an immutable set of excluded tags. The zero value excludes nothing.
type Set struct {
	tags map[string]struct{}
}

// New builds a set from the given tags.
func New(tags ...string) *Set {
	s := &Set{tags: make(map[string]struct{}, len(tags))}
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			s.tags[t] = struct{}{}
		}
	}
	return s
}

// FromGroups collects the tags of every filtered group.
func FromGroups(groups []Group) *Set {
	var tags []string
	for _, g := range groups {
		if g.Filtered {
			tags = append(tags, g.Tags...)
		}
	}
	return New(tags...)
}

// IsExcluded reports whether any of tags is in the set. Matching is exact.
func (s *Set) IsExcluded(tags []string) bool {
	if s == nil || len(s.tags) == 0 {
		return false
	}
	for _, t := range tags {
		if _, ok := s.tags[t]; ok {
			return true
		}
	}
	return false
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.tags)
}

// Tags returns the excluded tags sorted.
func (s *Set) Tags() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.tags))
	for t := range s.tags {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Load reads a filter file. JSON is the default format; .yml and .yaml files
// are decoded as YAML. A missing file yields an empty set together with an
// error wrapping ErrConfigMissing so the caller can warn and carry on.
func Load(path string) (*Set, error) {
	groups, err := ReadGroups(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), friendlyerrors.FiltersMissing(path)
		}
		return nil, err
	}
	return FromGroups(groups), nil
}

// ReadGroups decodes the raw groups of a filter file.
func ReadGroups(path string) ([]Group, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var groups []Group
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		err = yaml.Unmarshal(b, &groups)
	default:
		err = json.Unmarshal(b, &groups)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return groups, nil
}
