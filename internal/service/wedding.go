package service

import (
	"context"
	"fmt"

	"github.com/webeat/weve/internal/model"
)

// WeddingInfoService manages the couple's single wedding info row
type WeddingInfoService struct {
	store  ScopedStore[model.WeddingInfo]
	events Publisher
}

// NewWeddingInfoService creates a new wedding info service
func NewWeddingInfoService(store ScopedStore[model.WeddingInfo], events Publisher) *WeddingInfoService {
	return &WeddingInfoService{store: store, events: events}
}

// Get returns the couple's wedding info, or nil when none has been saved.
// When both partners saved one before linking, the most recently updated wins.
func (s *WeddingInfoService) Get(ctx context.Context, scope model.Scope) (*model.WeddingInfo, error) {
	rows, err := s.store.ListByOwners(ctx, scope.UserIDs, scope.Mode)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Put creates or updates the couple's wedding info
func (s *WeddingInfoService) Put(ctx context.Context, scope model.Scope, req *model.PutWeddingInfoRequest) (*model.WeddingInfo, error) {
	current, err := s.Get(ctx, scope)
	if err != nil {
		return nil, err
	}

	var saved *model.WeddingInfo
	if current == nil {
		info := &model.WeddingInfo{Base: model.Base{UserID: scope.UserID, Mode: scope.Mode}}
		req.Apply(info)
		saved, err = s.store.Create(ctx, info)
	} else {
		req.Apply(current)
		saved, err = s.store.Update(ctx, current)
	}
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.SendToUsers(scope.UserIDs, Event{Type: ResourceEvent("wedding_info", "updated"), Data: saved})
	}
	return saved, nil
}

// ExpenseService manages the wedding budget ledger
type ExpenseService struct {
	*Resource[model.Expense, *model.Expense]
	info *WeddingInfoService
}

// NewExpenseService creates a new expense service
func NewExpenseService(store ScopedStore[model.Expense], info *WeddingInfoService, events Publisher) *ExpenseService {
	return &ExpenseService{Resource: NewResource[model.Expense]("expense", store, events), info: info}
}

// Summary totals the couple's expenses against the wedding budget
func (s *ExpenseService) Summary(ctx context.Context, scope model.Scope) (*model.ExpenseSummary, error) {
	expenses, err := s.List(ctx, scope)
	if err != nil {
		return nil, err
	}

	var budget *int64
	if s.info != nil {
		info, err := s.info.Get(ctx, scope)
		if err != nil {
			return nil, err
		}
		if info != nil {
			budget = info.TotalBudget
		}
	}
	return model.SummarizeExpenses(expenses, budget), nil
}

// ChecklistService manages the wedding preparation checklist
type ChecklistService struct {
	*Resource[model.ChecklistItem, *model.ChecklistItem]
	store ScopedStore[model.ChecklistItem]
}

// NewChecklistService creates a new checklist service
func NewChecklistService(store ScopedStore[model.ChecklistItem], events Publisher) *ChecklistService {
	return &ChecklistService{Resource: NewResource[model.ChecklistItem]("checklist", store, events), store: store}
}

// SeedDefaults fills an empty checklist with the default wedding steps
func (s *ChecklistService) SeedDefaults(ctx context.Context, scope model.Scope) ([]*model.ChecklistItem, error) {
	existing, err := s.List(ctx, scope)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, ErrChecklistSeeded
	}

	items := make([]*model.ChecklistItem, 0, len(model.DefaultChecklist))
	for i, d := range model.DefaultChecklist {
		category, period := d.Category, d.DuePeriod
		item := &model.ChecklistItem{
			Base:      model.Base{UserID: scope.UserID, Mode: scope.Mode},
			Title:     d.Title,
			Category:  &category,
			DuePeriod: &period,
			SortOrder: (i + 1) * 10,
		}
		created, err := s.store.Create(ctx, item)
		if err != nil {
			return items, fmt.Errorf("seeding checklist: %w", err)
		}
		items = append(items, created)
	}

	s.publish(scope, "seeded", map[string]int{"count": len(items)})
	return items, nil
}

// GuestService manages the guest list
type GuestService struct {
	*Resource[model.Guest, *model.Guest]
}

// NewGuestService creates a new guest service
func NewGuestService(store ScopedStore[model.Guest], events Publisher) *GuestService {
	return &GuestService{Resource: NewResource[model.Guest]("guest", store, events)}
}

// Summary counts the guest list
func (s *GuestService) Summary(ctx context.Context, scope model.Scope) (*model.GuestSummary, error) {
	guests, err := s.List(ctx, scope)
	if err != nil {
		return nil, err
	}
	return model.SummarizeGuests(guests), nil
}

// VendorService manages wedding vendors
type VendorService struct {
	*Resource[model.WeddingVendor, *model.WeddingVendor]
}

// NewVendorService creates a new vendor service
func NewVendorService(store ScopedStore[model.WeddingVendor], events Publisher) *VendorService {
	r := NewResource[model.WeddingVendor]("vendor", store, events)
	r.check = func(_ context.Context, _ model.Scope, v *model.WeddingVendor) error {
		if v.DepositExceedsPrice() {
			return invalid("deposit", "deposit must not exceed price")
		}
		return nil
	}
	return &VendorService{Resource: r}
}
