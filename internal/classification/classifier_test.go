package classification

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/smart-categorizer/internal/common"
	"github.com/Veraticus/smart-categorizer/internal/model"
)

type memoryModels struct {
	blobs   map[string][]byte
	saveErr error
	mu      sync.Mutex
	saves   int
}

func newMemoryModels() *memoryModels {
	return &memoryModels{blobs: make(map[string][]byte)}
}

func (m *memoryModels) LoadModel(_ context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	blob, ok := m.blobs[name]
	if !ok {
		return nil, common.ErrNotFound
	}
	return blob, nil
}

func (m *memoryModels) SaveModel(_ context.Context, name string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.blobs[name] = blob
	return nil
}

func seed(t *testing.T) []model.TrainingExample {
	t.Helper()
	examples, err := SeedCorpus()
	require.NoError(t, err)
	return examples
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{input: "ZOMATO Order #1234 - Food!", want: []string{"zomato", "order", "1234", "food"}},
		{input: "UPI payment txn ref gateway", want: []string{}},
		{input: "  spaced   out  ", want: []string{"spaced", "out"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.input))
		})
	}
}

func TestNGrams(t *testing.T) {
	got := NGrams([]string{"a", "b", "c"}, 3)
	assert.Equal(t, []string{"a", "b", "c", "a b", "b c", "a b c"}, got)
	assert.Equal(t, []string{"a"}, NGrams([]string{"a"}, 3))
	assert.Empty(t, NGrams(nil, 3))
}

func TestBuildVocabulary_CapsByDocumentFrequency(t *testing.T) {
	docs := [][]string{
		{"food", "zomato", "food"},
		{"food", "swiggy"},
		{"cab", "uber"},
	}

	vocab := buildVocabulary(docs, 2)
	assert.Len(t, vocab, 2)
	assert.Contains(t, vocab, "food")
	assert.Contains(t, vocab, "cab", "ties break alphabetically")
}

func TestSeedCorpus(t *testing.T) {
	examples := seed(t)
	assert.Len(t, examples, 61)
	assert.Equal(t, "zomato order food delivery", examples[0].Text)
}

func TestPredict_WithoutModel(t *testing.T) {
	c := New(nil, Options{})
	assert.False(t, c.Ready())
	assert.Equal(t, Prediction{Category: "Shopping", Subcategory: "Electronics", Confidence: 0.1}, c.Predict("anything"))
}

func TestTrain_Errors(t *testing.T) {
	c := New(nil, Options{})

	assert.ErrorIs(t, c.Train(context.Background(), nil), common.ErrEmptyCorpus)

	err := c.Train(context.Background(), []model.TrainingExample{
		{Text: "a", Category: "X", Subcategory: "Y"},
		{Text: "b", Category: "X", Subcategory: "Y"},
	})
	assert.ErrorIs(t, err, common.ErrEmptyCorpus)
	assert.False(t, c.Ready())
}

func TestPredict_Trained(t *testing.T) {
	c := New(nil, Options{})
	require.NoError(t, c.Train(context.Background(), seed(t)))
	require.True(t, c.Ready())

	tests := []struct {
		description string
		wantCat     string
		wantSub     string
	}{
		{description: "ZOMATO ORDER FOOD DELIVERY", wantCat: "Food & Dining", wantSub: "Restaurants"},
		{description: "netflix subscription monthly", wantCat: "Entertainment", wantSub: "OTT Subscriptions"},
		{description: "uber cab ride bangalore", wantCat: "Transportation", wantSub: "Cab & Taxi"},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			got := c.Predict(tt.description)
			assert.Equal(t, tt.wantCat, got.Category)
			assert.Equal(t, tt.wantSub, got.Subcategory)
			assert.Greater(t, got.Confidence, 0.6)
			assert.LessOrEqual(t, got.Confidence, 1.0)
		})
	}
}

func TestPredict_UnknownWordsAreLowConfidence(t *testing.T) {
	c := New(nil, Options{})
	require.NoError(t, c.Train(context.Background(), seed(t)))

	got := c.Predict("qwxyz plmnb")
	assert.Zero(t, got.Confidence)
	assert.NotEmpty(t, got.Category)

	assert.Equal(t, got, c.Predict("qwxyz plmnb"))
}

func TestTrain_IsDeterministic(t *testing.T) {
	first := New(nil, Options{})
	second := New(nil, Options{})
	require.NoError(t, first.Train(context.Background(), seed(t)))
	require.NoError(t, second.Train(context.Background(), seed(t)))

	for _, desc := range []string{"swiggy dinner", "random store", "apollo medicine order"} {
		assert.Equal(t, first.Predict(desc), second.Predict(desc), desc)
	}
}

func TestLoadOrTrain_Persistence(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryModels()

	trained := New(repo, Options{})
	require.NoError(t, trained.LoadOrTrain(ctx, seed(t)))
	assert.Equal(t, 1, repo.saves)

	restored := New(repo, Options{})
	require.NoError(t, restored.LoadOrTrain(ctx, nil))
	assert.True(t, restored.Ready())
	assert.Equal(t, 1, repo.saves, "loading does not retrain")
	assert.Equal(t, trained.Predict("zepto order groceries"), restored.Predict("zepto order groceries"))
}

func TestLoadOrTrain_CorruptModelRetrains(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryModels()
	repo.blobs[DefaultModelName] = []byte("not a gob stream")

	c := New(repo, Options{})
	require.NoError(t, c.LoadOrTrain(ctx, seed(t)))
	assert.True(t, c.Ready())
	assert.Equal(t, 1, repo.saves)
}

func TestLoadOrTrain_SettingsChangeRetrains(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryModels()

	require.NoError(t, New(repo, Options{NGramMax: 2}).LoadOrTrain(ctx, seed(t)))
	require.NoError(t, New(repo, Options{NGramMax: 3}).LoadOrTrain(ctx, seed(t)))
	assert.Equal(t, 2, repo.saves)
}

func TestTrain_PersistFailureIsNotFatal(t *testing.T) {
	repo := newMemoryModels()
	repo.saveErr = errors.New("disk full")

	c := New(repo, Options{})
	require.NoError(t, c.Train(context.Background(), seed(t)))
	assert.True(t, c.Ready())
}

func TestPredict_ConcurrentWithTrain(t *testing.T) {
	c := New(nil, Options{})
	examples := seed(t)
	require.NoError(t, c.Train(context.Background(), examples))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.Train(context.Background(), examples))
		}()
		go func() {
			defer wg.Done()
			assert.Equal(t, "Food & Dining", c.Predict("zomato order").Category)
		}()
	}
	wg.Wait()
}
