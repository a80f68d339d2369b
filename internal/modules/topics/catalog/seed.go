package catalog

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Topics []Seed `yaml:"topics"`
}

// LoadSeedFile reads a YAML catalog:
//
//	topics:
//	  - slug: frontend
//	    name: Frontend
//	    aliases: [react, next.js]
//
// File order becomes catalog order.
func LoadSeedFile(path string) ([]Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog seed: %w", err)
	}
	return ParseSeeds(raw)
}

func ParseSeeds(raw []byte) ([]Seed, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	var f seedFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse catalog seed: %w", err)
	}
	return ValidateSeeds(f.Topics)
}

// ValidateSeeds normalizes slugs, fills missing names and rejects empty or duplicate slugs.
func ValidateSeeds(in []Seed) ([]Seed, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("catalog seed has no topics")
	}
	out := make([]Seed, 0, len(in))
	seen := map[string]bool{}
	for i, s := range in {
		slug := strings.ToLower(strings.TrimSpace(s.Slug))
		if slug == "" {
			return nil, fmt.Errorf("catalog seed entry %d: empty slug", i)
		}
		if seen[slug] {
			return nil, fmt.Errorf("catalog seed: duplicate slug %q", slug)
		}
		seen[slug] = true
		name := strings.TrimSpace(s.Name)
		if name == "" {
			name = slug
		}
		aliases := make([]string, 0, len(s.Aliases))
		for _, a := range s.Aliases {
			if a = strings.TrimSpace(a); a != "" {
				aliases = append(aliases, a)
			}
		}
		out = append(out, Seed{Slug: slug, Name: name, Aliases: aliases})
	}
	return out, nil
}

// WithDefaultTopic appends the fallback topic when the seed lacks it.
func WithDefaultTopic(seeds []Seed, defaultSlug string) []Seed {
	defaultSlug = strings.ToLower(strings.TrimSpace(defaultSlug))
	for _, s := range seeds {
		if s.Slug == defaultSlug {
			return seeds
		}
	}
	return append(seeds, Seed{Slug: defaultSlug, Name: strings.ToUpper(defaultSlug[:1]) + defaultSlug[1:]})
}
