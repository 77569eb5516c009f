package pattern

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/smart-categorizer/internal/common"
	"github.com/Veraticus/smart-categorizer/internal/model"
	"github.com/Veraticus/smart-categorizer/internal/service"
)

// Defaults applied to categories created without a color or icon.
const (
	DefaultColor = "#6366F1"
	DefaultIcon  = "folder"
)

// CategorySpec describes a custom category to create.
type CategorySpec struct {
	BudgetLimit    *float64
	Name           string
	Description    string
	Color          string
	Icon           string
	ParentCategory string
	Tags           []string
	Rules          []RuleSpec
}

// RuleSpec describes one rule of a custom category. A zero Priority means
// model.DefaultRulePriority.
type RuleSpec struct {
	Condition model.Condition
	Priority  int
	Exclusive bool
}

// Manager owns the custom categories and keeps a matcher snapshot in sync
// with every change. Reads never block on writes.
type Manager struct {
	repo    service.CustomCategoryRepository
	now     func() time.Time
	newID   func() string
	matcher atomic.Pointer[Matcher]

	categories []model.CustomCategory
	mu         sync.Mutex
}

// NewManager creates an empty manager. repo may be nil, in which case
// categories live in memory only.
func NewManager(repo service.CustomCategoryRepository, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	m := &Manager{
		repo:  repo,
		now:   now,
		newID: uuid.NewString,
	}
	m.matcher.Store(NewMatcher(nil))
	return m
}

// Load replaces the in-memory categories with the stored ones.
func (m *Manager) Load(ctx context.Context) error {
	if m.repo == nil {
		return nil
	}
	categories, err := m.repo.ListCustomCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to load custom categories: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories = categories
	m.rebuild()
	return nil
}

// SeedExamples creates the example categories when none exist yet.
func (m *Manager) SeedExamples(ctx context.Context) error {
	m.mu.Lock()
	empty := len(m.categories) == 0
	m.mu.Unlock()
	if !empty {
		return nil
	}

	for _, spec := range exampleCategories() {
		if _, err := m.Create(ctx, spec); err != nil {
			return fmt.Errorf("failed to seed %q: %w", spec.Name, err)
		}
	}
	return nil
}

// Create builds, validates, and stores a new active category.
func (m *Manager) Create(ctx context.Context, spec CategorySpec) (*model.CustomCategory, error) {
	now := m.now()
	cat := model.CustomCategory{
		ID:             m.newID(),
		Name:           strings.TrimSpace(spec.Name),
		Description:    spec.Description,
		Color:          spec.Color,
		Icon:           spec.Icon,
		ParentCategory: spec.ParentCategory,
		BudgetLimit:    spec.BudgetLimit,
		Tags:           slices.Clone(spec.Tags),
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if cat.Color == "" {
		cat.Color = DefaultColor
	}
	if cat.Icon == "" {
		cat.Icon = DefaultIcon
	}
	if cat.Tags == nil {
		cat.Tags = []string{}
	}
	for _, rs := range spec.Rules {
		cat.Rules = append(cat.Rules, newRule(cat.ID, len(cat.Rules), rs))
	}
	if err := ValidateCategory(&cat); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cat.Position = m.nextPosition()
	m.categories = append(m.categories, cat)
	m.persist(ctx, &m.categories[len(m.categories)-1])
	m.rebuild()

	return cloneCategory(cat), nil
}

// AddRule appends a rule to an existing category.
func (m *Manager) AddRule(ctx context.Context, id string, rs RuleSpec) (*model.CustomCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, err := m.index(id)
	if err != nil {
		return nil, err
	}

	cat := *cloneCategory(m.categories[i])
	rule := newRule(cat.ID, len(cat.Rules), rs)
	if err := rule.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidRule, err)
	}
	cat.Rules = append(cat.Rules, rule)
	cat.UpdatedAt = m.now()

	m.categories[i] = cat
	m.persist(ctx, &m.categories[i])
	m.rebuild()
	return cloneCategory(cat), nil
}

// UpdateBudget sets or clears (nil) a category's budget limit.
func (m *Manager) UpdateBudget(ctx context.Context, id string, limit *float64) error {
	if limit != nil && *limit < 0 {
		return fmt.Errorf("%w: budget %.2f is negative", common.ErrInvalidRule, *limit)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i, err := m.index(id)
	if err != nil {
		return err
	}
	if limit != nil {
		v := *limit
		limit = &v
	}
	m.categories[i].BudgetLimit = limit
	m.categories[i].UpdatedAt = m.now()
	m.persist(ctx, &m.categories[i])
	m.rebuild()
	return nil
}

// Delete removes a category.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, err := m.index(id)
	if err != nil {
		return err
	}
	m.categories = slices.Delete(m.categories, i, i+1)
	if m.repo != nil {
		if err := m.repo.DeleteCustomCategory(ctx, id); err != nil {
			common.LogWarn(err, "failed to delete custom category, continuing in memory", common.Fields{"category": id})
		}
	}
	m.rebuild()
	return nil
}

// Get returns a copy of one category.
func (m *Manager) Get(id string) (*model.CustomCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, err := m.index(id)
	if err != nil {
		return nil, err
	}
	return cloneCategory(m.categories[i]), nil
}

// List returns copies of all categories in creation order.
func (m *Manager) List() []model.CustomCategory {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.CustomCategory, len(m.categories))
	for i := range m.categories {
		out[i] = *cloneCategory(m.categories[i])
	}
	return out
}

// Match implements CategoryMatcher against the current snapshot.
func (m *Manager) Match(in model.RuleInput) *model.CustomCategory {
	return m.matcher.Load().Match(in)
}

func (m *Manager) index(id string) (int, error) {
	for i := range m.categories {
		if m.categories[i].ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("custom category %q: %w", id, common.ErrNotFound)
}

func (m *Manager) nextPosition() int64 {
	var highest int64
	for _, cat := range m.categories {
		highest = max(highest, cat.Position)
	}
	return highest + 1
}

// persist writes cat through the repository. Failures leave the change in memory.
func (m *Manager) persist(ctx context.Context, cat *model.CustomCategory) {
	if m.repo == nil {
		return
	}
	if err := m.repo.SaveCustomCategory(ctx, cat); err != nil {
		common.LogWarn(err, "failed to save custom category, continuing in memory", common.Fields{"category": cat.ID})
	}
}

func (m *Manager) rebuild() {
	m.matcher.Store(NewMatcher(m.categories))
}

func newRule(categoryID string, ordinal int, rs RuleSpec) model.TagRule {
	priority := rs.Priority
	if priority == 0 {
		priority = model.DefaultRulePriority
	}
	return model.TagRule{
		ID:        fmt.Sprintf("%s_rule_%d", categoryID, ordinal),
		Condition: rs.Condition,
		Priority:  priority,
		Exclusive: rs.Exclusive,
	}
}

func cloneCategory(cat model.CustomCategory) *model.CustomCategory {
	cat.Rules = slices.Clone(cat.Rules)
	cat.Tags = slices.Clone(cat.Tags)
	if cat.BudgetLimit != nil {
		v := *cat.BudgetLimit
		cat.BudgetLimit = &v
	}
	return &cat
}
