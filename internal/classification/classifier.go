// Package classification provides the statistical fallback classifier.
package classification

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jbrukh/bayesian"

	"github.com/Veraticus/smart-categorizer/internal/common"
	"github.com/Veraticus/smart-categorizer/internal/model"
	"github.com/Veraticus/smart-categorizer/internal/service"
)

// DefaultModelName is the key the trained model is stored under.
const DefaultModelName = "default"

const snapshotVersion = 1

// Fallback prediction returned whenever no model is available.
const (
	FallbackCategory    = "Shopping"
	FallbackSubcategory = "Electronics"
	FallbackConfidence  = 0.1
)

// Options configures feature extraction and persistence.
type Options struct {
	ModelName   string
	MaxFeatures int
	NGramMax    int
}

// Prediction is the classifier's decision for one description.
type Prediction struct {
	Category    string
	Subcategory string
	Confidence  float64
}

// Classifier is a retrainable n-gram naive-Bayes classifier. Predictions read
// the current model without locking; Train swaps in a new one atomically.
type Classifier struct {
	repo    service.ModelRepository
	current atomic.Pointer[trainedModel]
	opts    Options
	trainMu sync.Mutex
}

type trainedModel struct {
	bayes  *bayesian.Classifier
	vocab  map[string]struct{}
	labels []string
}

// snapshot is the persisted form: the fitted vocabulary and the vectorized
// training documents, which are replayed into a fresh bayesian model on load.
type snapshot struct {
	Labels     []string
	Vocabulary []string
	Documents  [][]string
	DocLabels  []int
	Version    int
	NGramMax   int
}

// New creates a classifier with no model loaded. repo may be nil, in which
// case trained models are kept in memory only.
func New(repo service.ModelRepository, opts Options) *Classifier {
	if opts.ModelName == "" {
		opts.ModelName = DefaultModelName
	}
	if opts.MaxFeatures <= 0 {
		opts.MaxFeatures = 5000
	}
	if opts.NGramMax <= 0 {
		opts.NGramMax = 3
	}
	return &Classifier{repo: repo, opts: opts}
}

// Ready reports whether a trained model is available.
func (c *Classifier) Ready() bool {
	return c.current.Load() != nil
}

// LoadOrTrain restores the persisted model, retraining on seed when it is
// absent, unreadable or built with different feature settings.
func (c *Classifier) LoadOrTrain(ctx context.Context, seed []model.TrainingExample) error {
	if c.repo != nil {
		m, err := c.load(ctx)
		if err == nil {
			c.current.Store(m)
			common.LogDebug("classifier model loaded", common.Fields{"model": c.opts.ModelName, "labels": len(m.labels)})
			return nil
		}
		if !errors.Is(err, common.ErrNotFound) {
			common.LogWarn(err, "stored classifier model unusable, retraining", common.Fields{"model": c.opts.ModelName})
		}
	}
	return c.Train(ctx, seed)
}

// Train fits a new model on examples and replaces the current one. A failure
// to persist the model is logged and does not fail training.
func (c *Classifier) Train(ctx context.Context, examples []model.TrainingExample) error {
	c.trainMu.Lock()
	defer c.trainMu.Unlock()

	snap, err := c.fit(examples)
	if err != nil {
		return err
	}
	m, err := build(snap)
	if err != nil {
		return err
	}
	c.current.Store(m)

	if c.repo == nil {
		return nil
	}
	blob, err := encodeSnapshot(snap)
	if err == nil {
		err = c.repo.SaveModel(ctx, c.opts.ModelName, blob)
	}
	if err != nil {
		common.LogWarn(err, "failed to persist classifier model", common.Fields{"model": c.opts.ModelName})
	}
	return nil
}

// Predict classifies description. Without a model it returns the fallback.
func (c *Classifier) Predict(description string) Prediction {
	m := c.current.Load()
	if m == nil {
		return fallback()
	}

	tokens := Tokenize(description)
	terms := filterVocabulary(NGrams(tokens, c.opts.NGramMax), m.vocab)

	scores, _, _ := m.bayes.LogScores(terms)
	probs := softmax(scores, len(terms))

	best := 0
	for i := range probs {
		if probs[i] > probs[best] {
			best = i
		}
	}

	cat, sub := splitLabel(m.labels[best])
	confidence := probs[best] * coverage(tokens, m.vocab)
	return Prediction{
		Category:    cat,
		Subcategory: sub,
		Confidence:  math.Round(confidence*10000) / 10000,
	}
}

func (c *Classifier) fit(examples []model.TrainingExample) (snapshot, error) {
	if len(examples) == 0 {
		return snapshot{}, common.ErrEmptyCorpus
	}

	labelSet := make(map[string]struct{})
	docs := make([][]string, len(examples))
	for i, ex := range examples {
		labelSet[model.Label(ex.Category, ex.Subcategory)] = struct{}{}
		docs[i] = NGrams(Tokenize(ex.Text), c.opts.NGramMax)
	}

	labels := make([]string, 0, len(labelSet))
	for label := range labelSet {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	if len(labels) < 2 {
		return snapshot{}, fmt.Errorf("%w: need at least two labels, have %d", common.ErrEmptyCorpus, len(labels))
	}

	vocab := buildVocabulary(docs, c.opts.MaxFeatures)
	vocabulary := make([]string, 0, len(vocab))
	for term := range vocab {
		vocabulary = append(vocabulary, term)
	}
	sort.Strings(vocabulary)

	index := make(map[string]int, len(labels))
	for i, label := range labels {
		index[label] = i
	}
	snap := snapshot{
		Version:    snapshotVersion,
		NGramMax:   c.opts.NGramMax,
		Labels:     labels,
		Vocabulary: vocabulary,
		Documents:  make([][]string, len(examples)),
		DocLabels:  make([]int, len(examples)),
	}
	for i, ex := range examples {
		snap.Documents[i] = filterVocabulary(docs[i], vocab)
		snap.DocLabels[i] = index[model.Label(ex.Category, ex.Subcategory)]
	}
	return snap, nil
}

func (c *Classifier) load(ctx context.Context) (*trainedModel, error) {
	blob, err := c.repo.LoadModel(ctx, c.opts.ModelName)
	if err != nil {
		return nil, err
	}

	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrModelUnavailable, err)
	}
	if snap.Version != snapshotVersion || snap.NGramMax != c.opts.NGramMax {
		return nil, fmt.Errorf("%w: model built with version %d, ngram max %d",
			common.ErrModelUnavailable, snap.Version, snap.NGramMax)
	}
	return build(snap)
}

func build(snap snapshot) (*trainedModel, error) {
	if len(snap.Labels) < 2 || len(snap.Documents) != len(snap.DocLabels) {
		return nil, fmt.Errorf("%w: malformed model snapshot", common.ErrModelUnavailable)
	}

	classes := make([]bayesian.Class, len(snap.Labels))
	for i, label := range snap.Labels {
		classes[i] = bayesian.Class(label)
	}
	bayes := bayesian.NewClassifier(classes...)

	for i, doc := range snap.Documents {
		idx := snap.DocLabels[i]
		if idx < 0 || idx >= len(classes) {
			return nil, fmt.Errorf("%w: label index %d out of range", common.ErrModelUnavailable, idx)
		}
		bayes.Learn(doc, classes[idx])
	}

	vocab := make(map[string]struct{}, len(snap.Vocabulary))
	for _, term := range snap.Vocabulary {
		vocab[term] = struct{}{}
	}
	return &trainedModel{bayes: bayes, vocab: vocab, labels: snap.Labels}, nil
}

func encodeSnapshot(snap snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, fmt.Errorf("failed to encode classifier model: %w", err)
	}
	return buf.Bytes(), nil
}

// softmax turns per-class log scores into probabilities. Scores are averaged
// over the number of terms so long descriptions do not saturate to 1.
func softmax(scores []float64, terms int) []float64 {
	scale := 1.0
	if terms > 1 {
		scale = 1 / float64(terms)
	}

	maxScore := math.Inf(-1)
	for _, s := range scores {
		maxScore = math.Max(maxScore, s*scale)
	}

	probs := make([]float64, len(scores))
	if math.IsInf(maxScore, -1) {
		for i := range probs {
			probs[i] = 1 / float64(len(probs))
		}
		return probs
	}

	var sum float64
	for i, s := range scores {
		probs[i] = math.Exp(s*scale - maxScore)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

// coverage is the share of unigram tokens the model has seen.
func coverage(tokens []string, vocab map[string]struct{}) float64 {
	if len(tokens) == 0 {
		return 0
	}
	known := 0
	for _, tok := range tokens {
		if _, ok := vocab[tok]; ok {
			known++
		}
	}
	return float64(known) / float64(len(tokens))
}

func splitLabel(label string) (string, string) {
	cat, sub, _ := strings.Cut(label, " > ")
	return cat, sub
}

func fallback() Prediction {
	return Prediction{Category: FallbackCategory, Subcategory: FallbackSubcategory, Confidence: FallbackConfidence}
}
