// Package merchant holds the directory of known merchants and their aliases.
package merchant

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/yaml.v3"

	"github.com/Veraticus/smart-categorizer/internal/model"
)

//go:embed data/merchants.yaml
var seedMerchants []byte

// Directory resolves free-text descriptions to known merchants.
// It is immutable after construction and safe for concurrent use.
type Directory struct {
	lookup  map[string]int
	records []model.MerchantRecord
	// aliases holds lookup keys ordered longest first for partial matching.
	aliases []string
}

type recordYAML struct {
	IsIndian     *bool            `yaml:"is_indian"`
	IsOnline     *bool            `yaml:"is_online"`
	SplitHint    *model.SplitHint `yaml:"split_hint"`
	Name         string           `yaml:"name"`
	Category     string           `yaml:"category"`
	Subcategory  string           `yaml:"subcategory"`
	ChargeType   string           `yaml:"charge_type"`
	BusinessType string           `yaml:"business_type"`
	LogoURL      string           `yaml:"logo_url"`
	TypicalRange string           `yaml:"typical_range"`
	Notes        string           `yaml:"notes"`
	Aliases      []string         `yaml:"aliases"`
	SupportsEMI  bool             `yaml:"supports_emi"`
}

type fileYAML struct {
	Merchants []recordYAML `yaml:"merchants"`
}

// Default returns the directory built from the embedded seed data.
func Default() (*Directory, error) {
	return Load(bytes.NewReader(seedMerchants))
}

// LoadFile builds a directory from a YAML file on disk.
func LoadFile(path string) (*Directory, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from user configuration
	if err != nil {
		return nil, fmt.Errorf("failed to open merchant file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Load(f)
}

// Load builds a directory from YAML merchant data.
func Load(r io.Reader) (*Directory, error) {
	var file fileYAML
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode merchants: %w", err)
	}

	records := make([]model.MerchantRecord, 0, len(file.Merchants))
	for i, m := range file.Merchants {
		rec, err := m.toRecord()
		if err != nil {
			return nil, fmt.Errorf("merchant %d (%q): %w", i, m.Name, err)
		}
		records = append(records, rec)
	}
	return New(records), nil
}

func (m recordYAML) toRecord() (model.MerchantRecord, error) {
	if strings.TrimSpace(m.Name) == "" {
		return model.MerchantRecord{}, errors.New("missing name")
	}
	if m.Category == "" || m.Subcategory == "" {
		return model.MerchantRecord{}, errors.New("missing category")
	}
	charge := model.ChargeType(m.ChargeType)
	if !charge.Valid() {
		return model.MerchantRecord{}, fmt.Errorf("unknown charge type %q", m.ChargeType)
	}

	return model.MerchantRecord{
		Name:         m.Name,
		Aliases:      m.Aliases,
		Category:     m.Category,
		Subcategory:  m.Subcategory,
		ChargeType:   charge,
		BusinessType: m.BusinessType,
		LogoURL:      m.LogoURL,
		TypicalRange: m.TypicalRange,
		Notes:        m.Notes,
		SplitHint:    m.SplitHint,
		IsIndian:     m.IsIndian == nil || *m.IsIndian,
		IsOnline:     m.IsOnline == nil || *m.IsOnline,
		SupportsEMI:  m.SupportsEMI,
	}, nil
}

// New indexes records by lowercase alias and canonical name.
// When two records share a key the later record wins.
func New(records []model.MerchantRecord) *Directory {
	d := &Directory{
		records: records,
		lookup:  make(map[string]int),
	}

	for i, rec := range records {
		for _, alias := range rec.Aliases {
			d.index(alias, i)
		}
		d.index(rec.Name, i)
	}

	// Stable keeps insertion order among equal-length aliases.
	slices.SortStableFunc(d.aliases, func(a, b string) int {
		return len(b) - len(a)
	})
	return d
}

func (d *Directory) index(key string, i int) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return
	}
	if _, seen := d.lookup[key]; !seen {
		d.aliases = append(d.aliases, key)
	}
	d.lookup[key] = i
}

// Find returns the merchant whose alias equals the description, or else the
// merchant with the longest alias contained in it.
func (d *Directory) Find(description string) (*model.MerchantRecord, bool) {
	desc := strings.ToLower(strings.TrimSpace(description))
	if desc == "" {
		return nil, false
	}

	if i, ok := d.lookup[desc]; ok {
		return d.record(i), true
	}

	for _, alias := range d.aliases {
		if strings.Contains(desc, alias) {
			return d.record(d.lookup[alias]), true
		}
	}
	return nil, false
}

// HasKey reports whether text is exactly a known alias or canonical name.
func (d *Directory) HasKey(text string) bool {
	_, ok := d.lookup[strings.ToLower(strings.TrimSpace(text))]
	return ok
}

// FuzzyMatch compares the first four words of the description against every
// alias and returns the most similar merchant with its similarity ratio.
func (d *Directory) FuzzyMatch(description string) (*model.MerchantRecord, float64) {
	words := strings.Fields(strings.ToLower(description))
	if len(words) > 4 {
		words = words[:4]
	}
	if len(words) == 0 {
		return nil, 0
	}
	short := strings.Split(strings.Join(words, " "), "")

	best, bestScore := -1, 0.0
	for i, rec := range d.records {
		for _, alias := range rec.Aliases {
			score := Similarity(short, strings.Split(strings.ToLower(alias), ""))
			if score > bestScore {
				best, bestScore = i, score
			}
		}
	}
	if best < 0 {
		return nil, 0
	}
	return d.record(best), bestScore
}

// Similarity is the sequence-matcher ratio of two rune sequences, in [0,1].
func Similarity(a, b []string) float64 {
	return difflib.NewMatcher(a, b).Ratio()
}

// Records returns a copy of every merchant in the directory.
func (d *Directory) Records() []model.MerchantRecord {
	out := make([]model.MerchantRecord, len(d.records))
	for i := range d.records {
		out[i] = *d.record(i)
	}
	return out
}

// Len returns the number of merchants.
func (d *Directory) Len() int {
	return len(d.records)
}

func (d *Directory) record(i int) *model.MerchantRecord {
	rec := d.records[i]
	rec.Aliases = slices.Clone(rec.Aliases)
	if rec.SplitHint != nil {
		hint := *rec.SplitHint
		rec.SplitHint = &hint
	}
	return &rec
}
