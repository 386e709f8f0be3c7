package model

import "time"

// Priority of a to-do item
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Todo is a shared to-do item
type Todo struct {
	Base
	Title       string     `json:"title"`
	Memo        *string    `json:"memo,omitempty"`
	Completed   bool       `json:"completed"`
	CompletedOn *time.Time `json:"completed_on,omitempty"`
	DueDate     *string    `json:"due_date,omitempty"`
	Priority    Priority   `json:"priority"`
	Category    *string    `json:"category,omitempty"`
}

// CreateTodoRequest is the body of POST /api/todos
type CreateTodoRequest struct {
	Title    string  `json:"title"`
	Memo     *string `json:"memo,omitempty"`
	DueDate  *string `json:"due_date,omitempty"`
	Priority *string `json:"priority,omitempty"`
	Category *string `json:"category,omitempty"`
}

// Validate requires a title. Priority is low, normal or high.
func (r *CreateTodoRequest) Validate() []FieldError {
	var f fieldErrors
	f.required("title", r.Title)
	f.maxLen("title", &r.Title, MaxTitleLength)
	f.maxLen("memo", r.Memo, MaxMemoLength)
	f.date("due_date", r.DueDate)
	f.oneOf("priority", r.Priority, "low", "normal", "high")
	f.maxLen("category", r.Category, MaxShortLength)
	return f.result()
}

// Build returns an unsaved Todo with normal priority unless one was given.
func (r *CreateTodoRequest) Build() *Todo {
	t := &Todo{
		Title:    r.Title,
		Memo:     r.Memo,
		DueDate:  emptyToNil(r.DueDate),
		Priority: PriorityNormal,
		Category: r.Category,
	}
	if r.Priority != nil {
		t.Priority = Priority(*r.Priority)
	}
	return t
}

// UpdateTodoRequest patches a todo
type UpdateTodoRequest struct {
	Title     *string `json:"title,omitempty"`
	Memo      *string `json:"memo,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
	DueDate   *string `json:"due_date,omitempty"`
	Priority  *string `json:"priority,omitempty"`
	Category  *string `json:"category,omitempty"`
}

// Validate applies the create rules to the fields being set.
func (r *UpdateTodoRequest) Validate() []FieldError {
	var f fieldErrors
	if r.Title != nil {
		f.required("title", *r.Title)
		f.maxLen("title", r.Title, MaxTitleLength)
	}
	f.maxLen("memo", r.Memo, MaxMemoLength)
	f.date("due_date", r.DueDate)
	f.oneOf("priority", r.Priority, "low", "normal", "high")
	f.maxLen("category", r.Category, MaxShortLength)
	return f.result()
}

// Apply patches t. CompletedOn is stamped when Completed flips to true
// and cleared when it flips back.
func (r *UpdateTodoRequest) Apply(t *Todo) {
	if r.Title != nil {
		t.Title = *r.Title
	}
	if r.Memo != nil {
		t.Memo = emptyToNil(r.Memo)
	}
	if r.Completed != nil && *r.Completed != t.Completed {
		t.Completed = *r.Completed
		if t.Completed {
			now := time.Now().UTC()
			t.CompletedOn = &now
		} else {
			t.CompletedOn = nil
		}
	}
	if r.DueDate != nil {
		t.DueDate = emptyToNil(r.DueDate)
	}
	if r.Priority != nil {
		t.Priority = Priority(*r.Priority)
	}
	if r.Category != nil {
		t.Category = emptyToNil(r.Category)
	}
}
