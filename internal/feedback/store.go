// Package feedback remembers user corrections and replays them on future
// transactions that look the same.
package feedback

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/Veraticus/smart-categorizer/internal/common"
	"github.com/Veraticus/smart-categorizer/internal/model"
	"github.com/Veraticus/smart-categorizer/internal/service"
)

// DefaultRetrainThreshold is the number of distinct corrections after which
// the classifier is retrained.
const DefaultRetrainThreshold = 20

const (
	maxFingerprintTokens = 5
	maxSampleRunes       = 100
)

var (
	digits     = regexp.MustCompile(`\d+`)
	nonLetters = regexp.MustCompile(`[^a-z\s]`)
)

// Store holds corrections keyed by fingerprint and overrides keyed by
// lowercased merchant name. Writes go to the repository when one is set;
// a failed write leaves the in-memory state authoritative.
type Store struct {
	repo        service.FeedbackRepository
	now         func() time.Time
	corrections map[string]model.FeedbackCorrection
	merchants   map[string]model.MerchantOverride
	mu          sync.RWMutex
}

// NewStore creates an empty store. repo may be nil for a memory-only store.
func NewStore(repo service.FeedbackRepository, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		repo:        repo,
		now:         now,
		corrections: make(map[string]model.FeedbackCorrection),
		merchants:   make(map[string]model.MerchantOverride),
	}
}

// Fingerprint reduces a description to an order-independent key built from
// at most five of its sorted unique letter-only tokens.
func Fingerprint(description string) string {
	cleaned := digits.ReplaceAllString(strings.ToLower(description), "")
	cleaned = nonLetters.ReplaceAllString(cleaned, "")

	unique := make(map[string]struct{})
	for _, tok := range strings.Fields(cleaned) {
		unique[tok] = struct{}{}
	}
	tokens := make([]string, 0, len(unique))
	for tok := range unique {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)
	if len(tokens) > maxFingerprintTokens {
		tokens = tokens[:maxFingerprintTokens]
	}

	sum := sha256.Sum256([]byte(strings.Join(tokens, " ")))
	return hex.EncodeToString(sum[:])
}

// Load replaces the in-memory state with what the repository holds.
func (s *Store) Load(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	corrections, err := s.repo.LoadCorrections(ctx)
	if err != nil {
		return fmt.Errorf("failed to load corrections: %w", err)
	}
	overrides, err := s.repo.LoadMerchantOverrides(ctx)
	if err != nil {
		return fmt.Errorf("failed to load merchant overrides: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.corrections = make(map[string]model.FeedbackCorrection, len(corrections))
	for _, c := range corrections {
		s.corrections[c.Fingerprint] = c
	}
	s.merchants = make(map[string]model.MerchantOverride, len(overrides))
	for _, o := range overrides {
		s.merchants[strings.ToLower(o.Merchant)] = o
	}
	return nil
}

// RecordCorrection stores a correction for description and, when
// merchantName is set, a merchant-wide override.
func (s *Store) RecordCorrection(ctx context.Context, description, merchantName, category, subcategory string) model.FeedbackCorrection {
	now := s.now()
	fingerprint := Fingerprint(description)

	s.mu.Lock()
	correction := model.FeedbackCorrection{
		Fingerprint: fingerprint,
		SampleText:  truncate(description, maxSampleRunes),
		Category:    category,
		Subcategory: subcategory,
		CorrectedAt: now,
		Count:       s.corrections[fingerprint].Count + 1,
	}
	s.corrections[fingerprint] = correction

	var override *model.MerchantOverride
	if key := strings.ToLower(strings.TrimSpace(merchantName)); key != "" {
		o := model.MerchantOverride{Merchant: key, Category: category, Subcategory: subcategory, UpdatedAt: now}
		s.merchants[key] = o
		override = &o
	}
	s.mu.Unlock()

	if s.repo == nil {
		return correction
	}
	if err := s.repo.SaveCorrection(ctx, correction); err != nil {
		common.LogWarn(err, "correction kept in memory only", common.Fields{"fingerprint": fingerprint})
	}
	if override != nil {
		if err := s.repo.SaveMerchantOverride(ctx, *override); err != nil {
			common.LogWarn(err, "merchant override kept in memory only", common.Fields{"merchant": override.Merchant})
		}
	}
	return correction
}

// CheckOverride returns the remembered category for a transaction. A
// merchant override beats a fingerprint match.
func (s *Store) CheckOverride(description, merchantName string) (category, subcategory string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if key := strings.ToLower(strings.TrimSpace(merchantName)); key != "" {
		if o, found := s.merchants[key]; found {
			return o.Category, o.Subcategory, true
		}
	}
	if c, found := s.corrections[Fingerprint(description)]; found {
		return c.Category, c.Subcategory, true
	}
	return "", "", false
}

// RetrainNeeded reports whether at least threshold distinct corrections exist.
func (s *Store) RetrainNeeded(threshold int) bool {
	if threshold <= 0 {
		threshold = DefaultRetrainThreshold
	}
	return s.Len() >= threshold
}

// Len returns the number of distinct corrections.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.corrections)
}

// TrainingExamples returns the corrections as classifier examples, oldest first.
func (s *Store) TrainingExamples() []model.TrainingExample {
	s.mu.RLock()
	corrections := make([]model.FeedbackCorrection, 0, len(s.corrections))
	for _, c := range s.corrections {
		corrections = append(corrections, c)
	}
	s.mu.RUnlock()

	sort.Slice(corrections, func(i, j int) bool {
		if !corrections[i].CorrectedAt.Equal(corrections[j].CorrectedAt) {
			return corrections[i].CorrectedAt.Before(corrections[j].CorrectedAt)
		}
		return corrections[i].Fingerprint < corrections[j].Fingerprint
	})

	examples := make([]model.TrainingExample, len(corrections))
	for i, c := range corrections {
		examples[i] = model.TrainingExample{Text: c.SampleText, Category: c.Category, Subcategory: c.Subcategory}
	}
	return examples
}

// Prune drops corrections last made more than olderThan ago. A non-positive
// olderThan keeps everything. Merchant overrides are never pruned.
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) (int, error) {
	if olderThan <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-olderThan)

	s.mu.Lock()
	removed := 0
	for key, c := range s.corrections {
		if c.CorrectedAt.Before(cutoff) {
			delete(s.corrections, key)
			removed++
		}
	}
	s.mu.Unlock()

	if s.repo != nil {
		if _, err := s.repo.DeleteCorrectionsBefore(ctx, cutoff); err != nil {
			return removed, fmt.Errorf("failed to prune stored corrections: %w", err)
		}
	}
	return removed, nil
}

func truncate(s string, maxRunes int) string {
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxRunes])
}
