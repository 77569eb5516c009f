package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/smart-categorizer/internal/common"
	"github.com/Veraticus/smart-categorizer/internal/model"
	"github.com/Veraticus/smart-categorizer/internal/pattern"
	"github.com/Veraticus/smart-categorizer/internal/service"
	"github.com/Veraticus/smart-categorizer/internal/taxonomy"
	"github.com/Veraticus/smart-categorizer/internal/testutil"
)

var processedAt = time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

func newTestPipeline(t *testing.T, store service.Storage, mutate ...func(*Config)) *Pipeline {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Now = testutil.FixedClock(processedAt)
	for _, m := range mutate {
		m(&cfg)
	}

	p, err := New(context.Background(), cfg, store)
	require.NoError(t, err)
	return p
}

func txn(id, description string, amount float64) model.Transaction {
	return model.Transaction{ID: id, Date: "2024-03-01", Description: description, Amount: amount, Currency: "INR"}
}

func TestProcess_MerchantDirectory(t *testing.T) {
	p := newTestPipeline(t, nil)

	got := p.Process(txn("t1", "ZOMATO ORDER FOOD DELIVERY", 450))

	assert.Equal(t, "Food & Dining", got.Category)
	assert.Equal(t, "Restaurants", got.Subcategory)
	assert.Equal(t, model.MethodMerchantDB, got.Method)
	assert.InDelta(t, 0.95, got.Confidence, 1e-9)
	assert.Equal(t, "Zomato", got.MerchantName)
	assert.False(t, got.IsP2P)
	assert.False(t, got.IsSplit)
	assert.Empty(t, got.CustomCategoryID)
	assert.Equal(t, processedAt, got.ProcessedAt)
	assert.Equal(t, "t1", got.TransactionID)
}

func TestProcess_P2POverridesCategory(t *testing.T) {
	p := newTestPipeline(t, nil)

	got := p.Process(txn("t2", "UPI/9876543210@okaxis/RAHUL SHARMA/rent payment", 8000))

	assert.True(t, got.IsP2P)
	assert.Equal(t, taxonomy.TransfersCategory, got.Category)
	assert.Equal(t, model.MethodP2PDetector, got.Method)
	assert.Equal(t, model.TransferSent, got.P2PDirection)
	assert.InDelta(t, got.Confidence, got.P2PConfidence, 1e-9)
	assert.Subset(t, got.Tags, []string{"p2p", "p2p-sent"})
}

func TestProcess_P2PBeatsUserOverride(t *testing.T) {
	p := newTestPipeline(t, nil)
	ctx := context.Background()
	desc := "UPI/9876543210@okaxis/RAHUL SHARMA/rent payment"

	require.NoError(t, p.CorrectTransaction(ctx, "t2", desc, "", "Transfers & Payments", "Shopping", "Electronics"))

	got := p.Process(txn("t2", desc, 8000))
	assert.Equal(t, taxonomy.TransfersCategory, got.Category)
	assert.Equal(t, model.MethodP2PDetector, got.Method)
}

func TestProcess_SalaryCredit(t *testing.T) {
	p := newTestPipeline(t, nil)

	got := p.Process(txn("t3", "SALARY CREDIT ACME TECHNOLOGIES PVT LTD", -85000))

	assert.True(t, got.IsP2P)
	assert.Equal(t, model.TransferReceived, got.P2PDirection)
	assert.InDelta(t, 0.93, got.Confidence, 1e-9)
	assert.InDelta(t, -85000.0, got.Amount, 1e-9, "amount keeps its sign")
	assert.Subset(t, got.Tags, []string{"credit", "p2p", "p2p-received"})
}

func TestCorrectTransaction_AppliesToFutureTransactions(t *testing.T) {
	p := newTestPipeline(t, nil)
	ctx := context.Background()

	before := p.Process(txn("t4", "XYZ UNKNOWN STORE", 1200))
	assert.NotEqual(t, model.MethodUserOverride, before.Method)

	require.NoError(t, p.CorrectTransaction(ctx, "t4", "XYZ UNKNOWN STORE", "", before.Category, "Home & Maintenance", "Rent"))

	after := p.Process(txn("t5", "XYZ UNKNOWN STORE", 1200))
	assert.Equal(t, "Home & Maintenance", after.Category)
	assert.Equal(t, "Rent", after.Subcategory)
	assert.Equal(t, model.MethodUserOverride, after.Method)
	assert.InDelta(t, 1.0, after.Confidence, 1e-9)
}

func TestCorrectTransaction_ResolvesAliases(t *testing.T) {
	p := newTestPipeline(t, nil)
	ctx := context.Background()

	require.NoError(t, p.CorrectTransaction(ctx, "t6", "SHARMA GENERAL STORES", "", "Shopping", "groceries", ""))
	got := p.Process(txn("t7", "SHARMA GENERAL STORES", 640))
	assert.Equal(t, "Food & Dining", got.Category)
	assert.Equal(t, "Groceries", got.Subcategory)

	err := p.CorrectTransaction(ctx, "t8", "anything", "", "Shopping", "Space Travel", "Rockets")
	assert.ErrorIs(t, err, common.ErrInvalidCategory)
}

func TestProcess_SplitsMultiCategoryOrder(t *testing.T) {
	p := newTestPipeline(t, nil)

	got := p.Process(txn("t9", "AMAZON ORDER laptop and t-shirt", 5000))

	require.True(t, got.IsSplit)
	require.Len(t, got.SplitItems, 2)
	assert.Equal(t, "Electronics", got.SplitItems[0].Subcategory)
	assert.Equal(t, "Clothing & Apparel", got.SplitItems[1].Subcategory)
	assert.InDelta(t, 2500.0, got.SplitItems[0].Amount, 0.01)
	assert.InDelta(t, 2500.0, got.SplitItems[1].Amount, 0.01)
	assert.Contains(t, got.Tags, TagSplit)
	assert.Contains(t, got.Tags, TagEMI)
}

func TestProcess_LineItems(t *testing.T) {
	p := newTestPipeline(t, nil)

	in := txn("t10", "FLIPKART ORDER OD1234", 1500)
	in.LineItems = []model.LineItem{{Name: "Running shoes", Amount: 1200}, {Name: "Yoga mat", Amount: 300}}
	got := p.Process(in)

	require.True(t, got.IsSplit)
	require.Len(t, got.SplitItems, 2)
	assert.Equal(t, "Footwear", got.SplitItems[0].Subcategory)
	assert.Equal(t, "Sports & Fitness Equipment", got.SplitItems[1].Subcategory)
}

func TestProcess_CustomCategory(t *testing.T) {
	p := newTestPipeline(t, nil)

	got := p.Process(txn("t11", "MEHENDI ARTIST ADVANCE", 15000))

	assert.Equal(t, "Wedding Fund Expenses", got.CustomCategoryName)
	assert.Equal(t, "💍", got.CustomCategoryIcon)
	assert.NotEmpty(t, got.CustomCategoryID)
	assert.Subset(t, got.Tags, []string{"wedding", "one-time-event"})
}

func TestProcess_CustomCategoryCRUD(t *testing.T) {
	p := newTestPipeline(t, nil, func(c *Config) { c.SeedCustomCategories = false })
	ctx := context.Background()
	assert.Empty(t, p.ListCustomCategories())

	cat, err := p.CreateCustomCategory(ctx, pattern.CategorySpec{
		Name:  "Pets",
		Tags:  []string{"pets"},
		Rules: []pattern.RuleSpec{{Condition: model.KeywordCondition{Keyword: "vet"}}},
	})
	require.NoError(t, err)

	_, err = p.AddCustomCategoryRule(ctx, cat.ID, pattern.RuleSpec{Condition: model.KeywordCondition{Keyword: "kibble"}})
	require.NoError(t, err)
	limit := 2000.0
	require.NoError(t, p.UpdateCustomCategoryBudget(ctx, cat.ID, &limit))

	got := p.Process(txn("t12", "KIBBLE AND BITS", 900))
	assert.Equal(t, "Pets", got.CustomCategoryName)
	assert.Contains(t, got.Tags, "pets")

	list := p.ListCustomCategories()
	require.Len(t, list, 1)
	require.NotNil(t, list[0].BudgetLimit)

	require.NoError(t, p.DeleteCustomCategory(ctx, cat.ID))
	assert.Empty(t, p.Process(txn("t12", "KIBBLE AND BITS", 900)).CustomCategoryID)
}

func TestProcess_TagsAreSortedAndUnique(t *testing.T) {
	p := newTestPipeline(t, nil)

	got := p.Process(txn("t13", "NETFLIX SUBSCRIPTION", 649))

	assert.IsIncreasing(t, got.Tags)
	assert.Contains(t, got.Tags, TagSubscription)
	assert.True(t, got.MerchantIsSubscription)
}

func TestProcess_Defaults(t *testing.T) {
	p := newTestPipeline(t, nil)

	in := model.Transaction{Date: "2024-03-01", Description: "ZOMATO", Amount: 200}
	got := p.Process(in)

	assert.Equal(t, in.GenerateID(), got.TransactionID)
	assert.Equal(t, DefaultCurrency, got.Currency)
	assert.NotNil(t, got.Tags)
}

func TestProcess_Deterministic(t *testing.T) {
	p := newTestPipeline(t, nil)

	inputs := []model.Transaction{
		txn("a", "ZOMATO ORDER FOOD DELIVERY", 450),
		txn("b", "XYZ UNKNOWN STORE", 1200),
		txn("c", "AMAZON ORDER laptop and t-shirt", 5000),
		txn("d", "UPI/9876543210@okaxis/RAHUL SHARMA/rent payment", 8000),
	}

	for _, in := range inputs {
		first, err := json.Marshal(p.Process(in))
		require.NoError(t, err)
		second, err := json.Marshal(p.Process(in))
		require.NoError(t, err)
		assert.Equal(t, string(first), string(second), in.Description)
	}
}

func TestProcessWithCategory(t *testing.T) {
	p := newTestPipeline(t, nil)

	got := p.ProcessWithCategory(txn("t14", "SHARMA GENERAL STORES", 640), "groceries", "", 0.82, "llm")
	assert.Equal(t, "Food & Dining", got.Category)
	assert.Equal(t, "Groceries", got.Subcategory)
	assert.Equal(t, model.Method("llm"), got.Method)
	assert.InDelta(t, 0.82, got.Confidence, 1e-9)
	assert.False(t, got.IsP2P)

	fallback := p.ProcessWithCategory(txn("t15", "ZOMATO ORDER", 300), "Space Travel", "Rockets", 0.99, "llm")
	assert.Equal(t, model.MethodMerchantDB, fallback.Method, "unresolvable categories fall back to local processing")
	assert.Equal(t, "Food & Dining", fallback.Category)
}

func TestCandidateCategories(t *testing.T) {
	p := newTestPipeline(t, nil)

	got := p.CandidateCategories("pizza burger", 3)
	assert.Equal(t, []string{"Food & Dining", "Shopping", taxonomy.TransfersCategory}, got)
}

func TestProcessBatch(t *testing.T) {
	p := newTestPipeline(t, nil, func(c *Config) { c.Workers = 4 })

	inputs := make([]model.Transaction, 20)
	for i := range inputs {
		inputs[i] = txn(fmt.Sprintf("b%02d", i), "ZOMATO ORDER", float64(100+i))
	}

	var calls atomic.Int32
	results, err := p.ProcessBatch(context.Background(), inputs, func() { calls.Add(1) })
	require.NoError(t, err)
	require.Len(t, results, len(inputs))
	for i, r := range results {
		assert.Equal(t, inputs[i].ID, r.TransactionID)
	}
	assert.Equal(t, int32(len(inputs)), calls.Load())
}

func TestProcessBatch_Cancelled(t *testing.T) {
	p := newTestPipeline(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.ProcessBatch(ctx, []model.Transaction{txn("x", "ZOMATO", 1)}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipeline_PersistsAcrossRestarts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	first := newTestPipeline(t, db.Storage)
	require.NoError(t, first.CorrectTransaction(ctx, "t16", "XYZ UNKNOWN STORE", "", "Shopping", "Home & Maintenance", "Rent"))
	assert.Len(t, first.ListCustomCategories(), 3)

	second := newTestPipeline(t, db.Storage)
	got := second.Process(txn("t17", "XYZ UNKNOWN STORE", 1200))
	assert.Equal(t, model.MethodUserOverride, got.Method)
	assert.Len(t, second.ListCustomCategories(), 3, "seeding is skipped once categories exist")
	assert.Len(t, db.MustLoadCorrections(), 1)
}

func TestPipeline_WriteFailuresStayInMemory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	p := newTestPipeline(t, testutil.FailingStorage{Storage: db.Storage})
	require.NoError(t, p.CorrectTransaction(ctx, "t18", "XYZ UNKNOWN STORE", "", "Shopping", "Home & Maintenance", "Rent"))

	got := p.Process(txn("t19", "XYZ UNKNOWN STORE", 1200))
	assert.Equal(t, model.MethodUserOverride, got.Method)
	assert.Empty(t, db.MustLoadCorrections())
	assert.Len(t, p.ListCustomCategories(), 3)
}

func TestSummarize(t *testing.T) {
	results := []model.ProcessedTransaction{
		{TransactionID: "1", Category: "Food & Dining", Subcategory: "Restaurants", Amount: 450.10},
		{TransactionID: "2", Category: "Food & Dining", Subcategory: "Restaurants", Amount: 200.20, NeedsReview: true},
		{TransactionID: "3", Category: "Entertainment", Subcategory: "OTT Subscriptions", Amount: 649, MerchantName: "Netflix", MerchantIsSubscription: true},
		{TransactionID: "4", Category: "Transfers & Payments", Subcategory: "Salary", Amount: -85000},
		{TransactionID: "5", Category: "Shopping", Subcategory: "Electronics", Amount: 5000, IsSplit: true, NeedsReview: true},
	}

	report := Summarize(results)

	assert.Equal(t, 5, report.TotalTransactions)
	assert.InDelta(t, 6299.30, report.TotalSpend, 1e-9)
	assert.InDelta(t, 650.30, report.Categories["Food & Dining > Restaurants"].Total, 1e-9)
	assert.Equal(t, 2, report.Categories["Food & Dining > Restaurants"].Count)
	assert.InDelta(t, 85000.0, report.Categories["Transfers & Payments > Salary"].Total, 1e-9)
	assert.Equal(t, []model.SubscriptionEntry{{Merchant: "Netflix", Amount: 649}}, report.Subscriptions)
	assert.Equal(t, []string{"2", "5"}, report.NeedsReviewIDs)
	assert.Equal(t, 2, report.NeedsReviewCount)
	assert.Equal(t, 1, report.SplitTransactions)

	empty := Summarize(nil)
	assert.Zero(t, empty.TotalTransactions)
	assert.NotNil(t, empty.Subscriptions)
}
