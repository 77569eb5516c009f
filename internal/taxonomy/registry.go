// Package taxonomy defines the closed set of category and subcategory pairs.
package taxonomy

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Veraticus/smart-categorizer/internal/common"
)

// TransfersCategory is the category every peer-to-peer transfer belongs to.
const TransfersCategory = "Transfers & Payments"

//go:embed data/taxonomy.yaml
var seedTaxonomy []byte

// Category is one top-level category of the taxonomy.
type Category struct {
	Name          string   `yaml:"name"`
	Subcategories []string `yaml:"subcategories"`
	Keywords      []string `yaml:"keywords"`
}

// Alias maps a free-form name to a canonical category, and optionally a subcategory.
type Alias struct {
	Alias       string `yaml:"alias"`
	Category    string `yaml:"category"`
	Subcategory string `yaml:"subcategory"`
}

// Pair is a valid category and subcategory combination.
type Pair struct {
	Category    string
	Subcategory string
}

// Registry answers taxonomy questions. It is immutable after construction.
type Registry struct {
	index      map[string]int
	pairs      map[Pair]struct{}
	aliases    map[string]Alias
	categories []Category
}

type fileYAML struct {
	Categories []Category `yaml:"categories"`
	Aliases    []Alias    `yaml:"aliases"`
}

// Default returns the registry built from the embedded taxonomy.
func Default() (*Registry, error) {
	return Load(bytes.NewReader(seedTaxonomy))
}

// Load builds a registry from YAML taxonomy data.
func Load(r io.Reader) (*Registry, error) {
	var file fileYAML
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode taxonomy: %w", err)
	}
	return New(file.Categories, file.Aliases)
}

// New validates and indexes categories and aliases.
func New(categories []Category, aliases []Alias) (*Registry, error) {
	reg := &Registry{
		categories: categories,
		index:      make(map[string]int, len(categories)),
		pairs:      make(map[Pair]struct{}),
		aliases:    make(map[string]Alias, len(aliases)),
	}

	for i, cat := range categories {
		if len(cat.Subcategories) == 0 {
			return nil, fmt.Errorf("%w: %q has no subcategories", common.ErrInvalidCategory, cat.Name)
		}
		if _, dup := reg.index[cat.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", common.ErrInvalidCategory, cat.Name)
		}
		reg.index[cat.Name] = i
		for _, sub := range cat.Subcategories {
			reg.pairs[Pair{Category: cat.Name, Subcategory: sub}] = struct{}{}
		}
	}

	for _, a := range aliases {
		if _, ok := reg.index[a.Category]; !ok {
			return nil, fmt.Errorf("%w: alias %q targets unknown category %q", common.ErrInvalidCategory, a.Alias, a.Category)
		}
		if a.Subcategory != "" && !reg.IsValid(a.Category, a.Subcategory) {
			return nil, fmt.Errorf("%w: alias %q targets unknown pair %s", common.ErrInvalidCategory, a.Alias, a.Category+" > "+a.Subcategory)
		}
		reg.aliases[strings.ToLower(strings.TrimSpace(a.Alias))] = a
	}

	return reg, nil
}

// Categories returns the category names in taxonomy order.
func (r *Registry) Categories() []string {
	names := make([]string, len(r.categories))
	for i, c := range r.categories {
		names[i] = c.Name
	}
	return names
}

// Subcategories returns the subcategories of a category, or nil if unknown.
func (r *Registry) Subcategories(category string) []string {
	i, ok := r.index[category]
	if !ok {
		return nil
	}
	return slices.Clone(r.categories[i].Subcategories)
}

// Pairs enumerates every valid pair in taxonomy order.
func (r *Registry) Pairs() []Pair {
	pairs := make([]Pair, 0, len(r.pairs))
	for _, c := range r.categories {
		for _, sub := range c.Subcategories {
			pairs = append(pairs, Pair{Category: c.Name, Subcategory: sub})
		}
	}
	return pairs
}

// IsValid reports whether the pair belongs to the taxonomy.
func (r *Registry) IsValid(category, subcategory string) bool {
	_, ok := r.pairs[Pair{Category: category, Subcategory: subcategory}]
	return ok
}

// Resolve maps an externally supplied category to a valid pair. Aliases are
// applied first; a known category with an unknown subcategory falls back to
// its first subcategory. Anything else is ErrInvalidCategory.
func (r *Registry) Resolve(category, subcategory string) (string, string, error) {
	category = strings.TrimSpace(category)
	subcategory = strings.TrimSpace(subcategory)

	if alias, ok := r.aliases[strings.ToLower(category)]; ok {
		category = alias.Category
		if alias.Subcategory != "" {
			subcategory = alias.Subcategory
		} else {
			subcategory = r.categories[r.index[category]].Subcategories[0]
		}
	}

	if r.IsValid(category, subcategory) {
		return category, subcategory, nil
	}

	if i, ok := r.index[category]; ok {
		return category, r.categories[i].Subcategories[0], nil
	}

	return "", "", fmt.Errorf("%w: %q > %q", common.ErrInvalidCategory, category, subcategory)
}

// Candidates ranks categories by how many of their keywords the description
// contains. Zero-score categories only fill the list up to three entries.
// Transfers & Payments and Shopping are always included.
func (r *Registry) Candidates(description string, limit int) []string {
	if limit <= 0 {
		return nil
	}
	desc := strings.ToLower(description)

	type scored struct {
		name  string
		score int
	}
	ranked := make([]scored, len(r.categories))
	for i, c := range r.categories {
		score := 0
		for _, kw := range c.Keywords {
			if kw != "" && strings.Contains(desc, strings.ToLower(kw)) {
				score++
			}
		}
		ranked[i] = scored{name: c.Name, score: score}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	var out []string
	for _, s := range ranked {
		if len(out) >= limit {
			break
		}
		if s.score > 0 || len(out) < 3 {
			out = append(out, s.name)
		}
	}

	for _, must := range []string{TransfersCategory, "Shopping"} {
		if _, known := r.index[must]; !known || slices.Contains(out, must) {
			continue
		}
		if len(out) >= limit {
			out = dropLastExcept(out, TransfersCategory, "Shopping")
		}
		if len(out) < limit {
			out = append(out, must)
		}
	}
	return out
}

// dropLastExcept removes the lowest-ranked entry that is not protected.
func dropLastExcept(list []string, protected ...string) []string {
	for i := len(list) - 1; i >= 0; i-- {
		if !slices.Contains(protected, list[i]) {
			return slices.Delete(slices.Clone(list), i, i+1)
		}
	}
	return list
}

// Keywords returns the keyword list of a category.
func (r *Registry) Keywords(category string) []string {
	i, ok := r.index[category]
	if !ok {
		return nil
	}
	return slices.Clone(r.categories[i].Keywords)
}
