// Package pipeline wires categorization, P2P detection, enrichment, splitting
// and custom categories into a single transaction processor.
package pipeline

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/Veraticus/smart-categorizer/internal/classification"
	"github.com/Veraticus/smart-categorizer/internal/common"
	"github.com/Veraticus/smart-categorizer/internal/engine"
	"github.com/Veraticus/smart-categorizer/internal/enrichment"
	"github.com/Veraticus/smart-categorizer/internal/feedback"
	"github.com/Veraticus/smart-categorizer/internal/merchant"
	"github.com/Veraticus/smart-categorizer/internal/model"
	"github.com/Veraticus/smart-categorizer/internal/p2p"
	"github.com/Veraticus/smart-categorizer/internal/pattern"
	"github.com/Veraticus/smart-categorizer/internal/service"
	"github.com/Veraticus/smart-categorizer/internal/split"
	"github.com/Veraticus/smart-categorizer/internal/taxonomy"
)

// DefaultCurrency is assumed for transactions that do not name one.
const DefaultCurrency = "INR"

// Tags added by the pipeline itself.
const (
	TagSplit        = "split-transaction"
	TagP2P          = "p2p"
	TagEMI          = "emi-eligible"
	TagSubscription = "subscription"
	TagCredit       = "credit"
)

// Config holds configuration options for the pipeline. Now stamps
// ProcessedAt and defaults to time.Now. MerchantsFile, when set, replaces the
// embedded merchant directory.
type Config struct {
	Now                  func() time.Time
	MerchantsFile        string
	Classifier           classification.Options
	Engine               engine.Config
	Workers              int
	SeedCustomCategories bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Classifier:           classification.Options{},
		Engine:               engine.DefaultConfig(),
		Workers:              1,
		SeedCustomCategories: true,
	}
}

// Pipeline processes transactions. It is safe for concurrent use.
type Pipeline struct {
	now        func() time.Time
	directory  *merchant.Directory
	taxonomy   *taxonomy.Registry
	feedback   *feedback.Store
	classifier *classification.Classifier
	engine     *engine.Engine
	p2p        *p2p.Detector
	enricher   *enrichment.Enricher
	splitter   *split.Handler
	custom     *pattern.Manager
	workers    int
}

// New builds a pipeline over store. A nil store keeps all state in memory.
// Unreadable persisted state is logged and rebuilt rather than returned.
func New(ctx context.Context, cfg Config, store service.Storage) (*Pipeline, error) {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	directory, err := loadDirectory(cfg.MerchantsFile)
	if err != nil {
		return nil, err
	}
	registry, err := taxonomy.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load taxonomy: %w", err)
	}
	seed, err := classification.SeedCorpus()
	if err != nil {
		return nil, fmt.Errorf("failed to load seed corpus: %w", err)
	}

	var (
		feedbackRepo service.FeedbackRepository
		modelRepo    service.ModelRepository
		customRepo   service.CustomCategoryRepository
	)
	if store != nil {
		feedbackRepo, modelRepo, customRepo = store, store, store
	}

	fb := feedback.NewStore(feedbackRepo, cfg.Now)
	if err := fb.Load(ctx); err != nil {
		common.LogWarn(err, "starting with empty feedback store", nil)
	}

	classifier := classification.New(modelRepo, cfg.Classifier)
	if err := classifier.LoadOrTrain(ctx, slices.Concat(seed, fb.TrainingExamples())); err != nil {
		common.LogWarn(err, "classifier unavailable, using fallback predictions", nil)
	}

	custom := pattern.NewManager(customRepo, cfg.Now)
	if err := custom.Load(ctx); err != nil {
		common.LogWarn(err, "starting with no custom categories", nil)
	}
	if cfg.SeedCustomCategories {
		if err := custom.SeedExamples(ctx); err != nil {
			common.LogWarn(err, "failed to seed example custom categories", nil)
		}
	}

	return &Pipeline{
		now:        cfg.Now,
		directory:  directory,
		taxonomy:   registry,
		feedback:   fb,
		classifier: classifier,
		engine:     engine.New(directory, fb, classifier, seed, cfg.Engine),
		p2p:        p2p.NewDetector(directory),
		enricher:   enrichment.New(directory),
		splitter:   split.New(),
		custom:     custom,
		workers:    cfg.Workers,
	}, nil
}

func loadDirectory(path string) (*merchant.Directory, error) {
	if path == "" {
		dir, err := merchant.Default()
		if err != nil {
			return nil, fmt.Errorf("failed to load merchant directory: %w", err)
		}
		return dir, nil
	}
	return merchant.LoadFile(path)
}

// decision is the category a transaction carries into the later stages.
type decision struct {
	category    string
	subcategory string
	method      model.Method
	tags        []string
	confidence  float64
	needsReview bool
}

// Process runs a transaction through every stage. It never fails; the worst
// outcome is a low-confidence result flagged for review.
func (p *Pipeline) Process(txn model.Transaction) model.ProcessedTransaction {
	amount := txn.AbsAmount()

	base := p.engine.Categorize(txn.Description, amount)
	d := decision{
		category:    base.Category,
		subcategory: base.Subcategory,
		method:      base.Method,
		confidence:  base.Confidence,
		tags:        base.Tags,
		needsReview: base.NeedsReview,
	}

	transfer := p.p2p.Detect(txn.Description, amount, txn.Direction())
	if transfer.IsP2P {
		// A detected transfer replaces every earlier decision, user overrides included.
		d.category = taxonomy.TransfersCategory
		d.subcategory = transfer.Subcategory
		d.method = model.MethodP2PDetector
		d.confidence = transfer.Confidence
		d.needsReview = transfer.NeedsReview
	} else if transfer.NeedsReview {
		d.needsReview = true
	}

	common.LogDebug("p2p screening", common.Fields{
		"is_p2p": transfer.IsP2P,
		"reason": transfer.Reason,
	})

	return p.assemble(txn, d, transfer)
}

// ProcessWithCategory skips categorization and P2P detection and uses a
// category decided elsewhere. Aliases are resolved against the taxonomy; an
// unresolvable category falls back to local processing.
func (p *Pipeline) ProcessWithCategory(txn model.Transaction, category, subcategory string,
	confidence float64, method model.Method,
) model.ProcessedTransaction {
	cat, sub, err := p.taxonomy.Resolve(category, subcategory)
	if err != nil {
		common.LogWarn(err, "discarding external category", common.Fields{
			"transaction": txn.ID,
			"category":    category,
		})
		return p.Process(txn)
	}

	return p.assemble(txn, decision{
		category:    cat,
		subcategory: sub,
		method:      method,
		confidence:  confidence,
	}, model.P2PResult{})
}

// assemble runs enrichment, splitting, custom categories and tag compilation.
func (p *Pipeline) assemble(txn model.Transaction, d decision, transfer model.P2PResult) model.ProcessedTransaction {
	amount := txn.AbsAmount()
	enriched := p.enricher.Enrich(txn.Description, d.category, d.subcategory, amount)

	out := model.ProcessedTransaction{
		TransactionID:          txn.ID,
		Date:                   txn.Date,
		Description:            txn.Description,
		Amount:                 txn.Amount,
		Currency:               txn.Currency,
		Category:               d.category,
		Subcategory:            d.subcategory,
		Confidence:             d.confidence,
		Method:                 d.method,
		MerchantName:           enriched.Name,
		MerchantLogo:           enriched.LogoURL,
		BusinessType:           enriched.BusinessTypeDisplay,
		ChargeType:             enriched.ChargeType,
		ChargeDescription:      enriched.ChargeDescription,
		MerchantSupportsEMI:    enriched.SupportsEMI,
		MerchantIsSubscription: enriched.ChargeType == model.ChargeSubscription,
		IsP2P:                  transfer.IsP2P,
		P2PConfidence:          transfer.Confidence,
		NeedsReview:            d.needsReview,
		ProcessedAt:            p.now(),
	}
	if out.TransactionID == "" {
		out.TransactionID = txn.GenerateID()
	}
	if out.Currency == "" {
		out.Currency = DefaultCurrency
	}
	if transfer.IsP2P {
		out.Counterparty = transfer.CounterpartyName
		out.P2PDirection = transfer.Direction
	}

	if p.splitter.ShouldSplit(txn.Description, enriched.Name) || p.splitHinted(txn.Description) {
		result := p.splitter.Split(txn.Description, amount, txn.LineItems)
		if result.WasSplit {
			out.IsSplit = true
			out.SplitItems = result.Items
		}
	}

	custom := p.custom.Match(model.RuleInput{
		Date:             txn.ParsedDate(),
		Description:      txn.Description,
		MerchantName:     enriched.Name,
		OriginalCategory: d.category,
		Amount:           amount,
	})
	if custom != nil {
		out.CustomCategoryID = custom.ID
		out.CustomCategoryName = custom.Name
		out.CustomCategoryIcon = custom.Icon
	}

	out.Tags = compileTags(d.tags, custom, out, txn.Amount < 0)
	return out
}

func (p *Pipeline) splitHinted(description string) bool {
	rec, ok := p.directory.Find(description)
	return ok && rec.SplitHint != nil && rec.SplitHint.Enabled
}

func compileTags(base []string, custom *model.CustomCategory, out model.ProcessedTransaction, credit bool) []string {
	tags := slices.Clone(base)
	if custom != nil {
		tags = append(tags, custom.Tags...)
	}
	if out.IsSplit {
		tags = append(tags, TagSplit)
	}
	if out.IsP2P {
		tags = append(tags, TagP2P, TagP2P+"-"+string(out.P2PDirection))
	}
	if out.MerchantSupportsEMI {
		tags = append(tags, TagEMI)
	}
	if out.MerchantIsSubscription {
		tags = append(tags, TagSubscription)
	}
	if credit {
		tags = append(tags, TagCredit)
	}

	slices.Sort(tags)
	tags = slices.Compact(tags)
	if tags == nil {
		tags = []string{}
	}
	return tags
}

// CorrectTransaction records a user's correction so similar transactions are
// categorized the same way from now on. The new category may be an alias.
func (p *Pipeline) CorrectTransaction(ctx context.Context, transactionID, description, merchantName,
	oldCategory, newCategory, newSubcategory string,
) error {
	cat, sub, err := p.taxonomy.Resolve(newCategory, newSubcategory)
	if err != nil {
		return fmt.Errorf("cannot correct %s: %w", transactionID, err)
	}
	p.engine.ApplyCorrection(ctx, description, merchantName, oldCategory, cat, sub)
	return nil
}

// Retrain fits the classifier on the seed corpus plus every correction.
func (p *Pipeline) Retrain(ctx context.Context) error {
	return p.engine.Retrain(ctx)
}

// PruneFeedback drops corrections not updated within olderThan.
func (p *Pipeline) PruneFeedback(ctx context.Context, olderThan time.Duration) (int, error) {
	return p.feedback.Prune(ctx, olderThan)
}

// CandidateCategories ranks taxonomy categories for an external classifier prompt.
func (p *Pipeline) CandidateCategories(description string, limit int) []string {
	return p.taxonomy.Candidates(description, limit)
}

// Taxonomy returns the category registry.
func (p *Pipeline) Taxonomy() *taxonomy.Registry {
	return p.taxonomy
}

// CreateCustomCategory adds a user-defined category.
func (p *Pipeline) CreateCustomCategory(ctx context.Context, spec pattern.CategorySpec) (*model.CustomCategory, error) {
	return p.custom.Create(ctx, spec)
}

// ListCustomCategories returns custom categories in creation order.
func (p *Pipeline) ListCustomCategories() []model.CustomCategory {
	return p.custom.List()
}

// DeleteCustomCategory removes a custom category.
func (p *Pipeline) DeleteCustomCategory(ctx context.Context, id string) error {
	return p.custom.Delete(ctx, id)
}

// UpdateCustomCategoryBudget sets or clears a custom category's budget.
func (p *Pipeline) UpdateCustomCategoryBudget(ctx context.Context, id string, limit *float64) error {
	return p.custom.UpdateBudget(ctx, id, limit)
}

// AddCustomCategoryRule appends a rule to a custom category.
func (p *Pipeline) AddCustomCategoryRule(ctx context.Context, id string, rule pattern.RuleSpec) (*model.CustomCategory, error) {
	return p.custom.AddRule(ctx, id, rule)
}
