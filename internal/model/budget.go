package model

import "sort"

// Expense is a wedding (or household) spend, in whole currency units
type Expense struct {
	Base
	Title    string  `json:"title"`
	Amount   int64   `json:"amount"`
	Category string  `json:"category"`
	Date     *string `json:"date,omitempty"`
	PaidBy   *string `json:"paid_by,omitempty"`
	Memo     *string `json:"memo,omitempty"`
}

// CreateExpenseRequest records a payment. Amount is in won and required.
type CreateExpenseRequest struct {
	Title    string  `json:"title"`
	Amount   *int64  `json:"amount"`
	Category string  `json:"category"`
	Date     *string `json:"date,omitempty"`
	PaidBy   *string `json:"paid_by,omitempty"`
	Memo     *string `json:"memo,omitempty"`
}

// Validate requires title, amount and category.
func (r *CreateExpenseRequest) Validate() []FieldError {
	var f fieldErrors
	f.required("title", r.Title)
	f.maxLen("title", &r.Title, MaxTitleLength)
	if r.Amount == nil {
		f.add("amount", "amount is required")
	}
	f.amount("amount", r.Amount)
	f.required("category", r.Category)
	f.maxLen("category", &r.Category, MaxShortLength)
	f.date("date", r.Date)
	f.maxLen("paid_by", r.PaidBy, MaxShortLength)
	f.maxLen("memo", r.Memo, MaxMemoLength)
	return f.result()
}

// Build returns an unsaved Expense; the service sets the owner and scope.
func (r *CreateExpenseRequest) Build() *Expense {
	e := &Expense{
		Title:    r.Title,
		Category: r.Category,
		Date:     emptyToNil(r.Date),
		PaidBy:   r.PaidBy,
		Memo:     r.Memo,
	}
	if r.Amount != nil {
		e.Amount = *r.Amount
	}
	return e
}

// UpdateExpenseRequest patches an expense. Nil fields are left alone.
type UpdateExpenseRequest struct {
	Title    *string `json:"title,omitempty"`
	Amount   *int64  `json:"amount,omitempty"`
	Category *string `json:"category,omitempty"`
	Date     *string `json:"date,omitempty"`
	PaidBy   *string `json:"paid_by,omitempty"`
	Memo     *string `json:"memo,omitempty"`
}

// Validate rejects blanking required fields and out-of-range amounts.
func (r *UpdateExpenseRequest) Validate() []FieldError {
	var f fieldErrors
	if r.Title != nil {
		f.required("title", *r.Title)
		f.maxLen("title", r.Title, MaxTitleLength)
	}
	f.amount("amount", r.Amount)
	if r.Category != nil {
		f.required("category", *r.Category)
	}
	f.date("date", r.Date)
	f.maxLen("memo", r.Memo, MaxMemoLength)
	return f.result()
}

// Apply copies the set fields onto e.
func (r *UpdateExpenseRequest) Apply(e *Expense) {
	if r.Title != nil {
		e.Title = *r.Title
	}
	if r.Amount != nil {
		e.Amount = *r.Amount
	}
	if r.Category != nil {
		e.Category = *r.Category
	}
	if r.Date != nil {
		e.Date = emptyToNil(r.Date)
	}
	if r.PaidBy != nil {
		e.PaidBy = emptyToNil(r.PaidBy)
	}
	if r.Memo != nil {
		e.Memo = emptyToNil(r.Memo)
	}
}

// CategoryTotal is one line of an expense summary
type CategoryTotal struct {
	Category string `json:"category"`
	Total    int64  `json:"total"`
	Count    int    `json:"count"`
}

// ExpenseSummary aggregates a couple's expenses against the wedding budget
type ExpenseSummary struct {
	Total        int64           `json:"total"`
	ByCategory   []CategoryTotal `json:"by_category"`
	Budget       *int64          `json:"budget,omitempty"`
	Remaining    *int64          `json:"remaining,omitempty"`
	ExpenseCount int             `json:"expense_count"`
}

// SummarizeExpenses totals expenses by category, largest first. Budget
// may be nil when no wedding info has been saved.
func SummarizeExpenses(expenses []*Expense, budget *int64) *ExpenseSummary {
	byCat := make(map[string]*CategoryTotal)
	s := &ExpenseSummary{ByCategory: []CategoryTotal{}, ExpenseCount: len(expenses)}
	for _, e := range expenses {
		s.Total = addAmount(s.Total, e.Amount)
		ct, ok := byCat[e.Category]
		if !ok {
			ct = &CategoryTotal{Category: e.Category}
			byCat[e.Category] = ct
		}
		ct.Total = addAmount(ct.Total, e.Amount)
		ct.Count++
	}
	for _, ct := range byCat {
		s.ByCategory = append(s.ByCategory, *ct)
	}
	sort.Slice(s.ByCategory, func(i, j int) bool {
		if s.ByCategory[i].Total != s.ByCategory[j].Total {
			return s.ByCategory[i].Total > s.ByCategory[j].Total
		}
		return s.ByCategory[i].Category < s.ByCategory[j].Category
	})
	if budget != nil {
		b := *budget
		remaining := b - s.Total
		s.Budget = &b
		s.Remaining = &remaining
	}
	return s
}

// ChecklistItem is one step of the wedding preparation checklist
type ChecklistItem struct {
	Base
	Title     string  `json:"title"`
	Category  *string `json:"category,omitempty"`
	DuePeriod *string `json:"due_period,omitempty"`
	Completed bool    `json:"completed"`
	SortOrder int     `json:"sort_order"`
	Memo      *string `json:"memo,omitempty"`
}

// CreateChecklistItemRequest adds a wedding preparation step
type CreateChecklistItemRequest struct {
	Title     string  `json:"title"`
	Category  *string `json:"category,omitempty"`
	DuePeriod *string `json:"due_period,omitempty"`
	SortOrder *int    `json:"sort_order,omitempty"`
	Memo      *string `json:"memo,omitempty"`
}

// Validate only insists on a title; the rest is free text.
func (r *CreateChecklistItemRequest) Validate() []FieldError {
	var f fieldErrors
	f.required("title", r.Title)
	f.maxLen("title", &r.Title, MaxTitleLength)
	f.maxLen("category", r.Category, MaxShortLength)
	f.maxLen("due_period", r.DuePeriod, MaxShortLength)
	f.maxLen("memo", r.Memo, MaxMemoLength)
	return f.result()
}

// Build starts the item uncompleted.
func (r *CreateChecklistItemRequest) Build() *ChecklistItem {
	c := &ChecklistItem{Title: r.Title, Category: r.Category, DuePeriod: r.DuePeriod, Memo: r.Memo}
	if r.SortOrder != nil {
		c.SortOrder = *r.SortOrder
	}
	return c
}

// UpdateChecklistItemRequest toggles or edits a checklist item
type UpdateChecklistItemRequest struct {
	Title     *string `json:"title,omitempty"`
	Category  *string `json:"category,omitempty"`
	DuePeriod *string `json:"due_period,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
	SortOrder *int    `json:"sort_order,omitempty"`
	Memo      *string `json:"memo,omitempty"`
}

// Validate checks the title when it is being changed.
func (r *UpdateChecklistItemRequest) Validate() []FieldError {
	var f fieldErrors
	if r.Title != nil {
		f.required("title", *r.Title)
		f.maxLen("title", r.Title, MaxTitleLength)
	}
	f.maxLen("memo", r.Memo, MaxMemoLength)
	return f.result()
}

// Apply copies the set fields onto c. Empty category or due period clears it.
func (r *UpdateChecklistItemRequest) Apply(c *ChecklistItem) {
	if r.Title != nil {
		c.Title = *r.Title
	}
	if r.Category != nil {
		c.Category = emptyToNil(r.Category)
	}
	if r.DuePeriod != nil {
		c.DuePeriod = emptyToNil(r.DuePeriod)
	}
	if r.Completed != nil {
		c.Completed = *r.Completed
	}
	if r.SortOrder != nil {
		c.SortOrder = *r.SortOrder
	}
	if r.Memo != nil {
		c.Memo = emptyToNil(r.Memo)
	}
}

// DefaultChecklist is seeded for couples entering wedding mode
var DefaultChecklist = []struct {
	Title     string
	Category  string
	DuePeriod string
}{
	{"양가 상견례", "family", "D-365"},
	{"예산 계획 세우기", "budget", "D-300"},
	{"웨딩홀 투어 및 계약", "venue", "D-300"},
	{"스드메 업체 상담", "studio", "D-240"},
	{"신혼여행지 결정", "honeymoon", "D-200"},
	{"웨딩 촬영", "studio", "D-150"},
	{"예물 예단 준비", "family", "D-120"},
	{"청첩장 제작", "invitation", "D-90"},
	{"하객 명단 정리", "guest", "D-60"},
	{"청첩장 발송", "invitation", "D-45"},
	{"드레스 최종 피팅", "studio", "D-30"},
	{"식순 및 사회자 확정", "ceremony", "D-14"},
	{"최종 인원 확인", "guest", "D-7"},
	{"신혼여행 짐 싸기", "honeymoon", "D-1"},
}
