package model

// Repeat is the recurrence rule of a calendar event
type Repeat string

const (
	RepeatNone    Repeat = "none"
	RepeatDaily   Repeat = "daily"
	RepeatWeekly  Repeat = "weekly"
	RepeatMonthly Repeat = "monthly"
	RepeatYearly  Repeat = "yearly"
)

var repeatValues = []string{"none", "daily", "weekly", "monthly", "yearly"}

const (
	MaxTitleLength = 100
	MaxMemoLength  = 2000
	MaxShortLength = 100
)

// Event is a shared calendar entry
type Event struct {
	Base
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Date        string  `json:"date"`
	EndDate     *string `json:"end_date,omitempty"`
	StartTime   *string `json:"start_time,omitempty"`
	EndTime     *string `json:"end_time,omitempty"`
	AllDay      bool    `json:"all_day"`
	Color       *string `json:"color,omitempty"`
	Location    *string `json:"location,omitempty"`
	Category    *string `json:"category,omitempty"`
	Repeat      Repeat  `json:"repeat"`
}

// CreateEventRequest represents the request to create an event
type CreateEventRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Date        string  `json:"date"`
	EndDate     *string `json:"end_date,omitempty"`
	StartTime   *string `json:"start_time,omitempty"`
	EndTime     *string `json:"end_time,omitempty"`
	AllDay      *bool   `json:"all_day,omitempty"`
	Color       *string `json:"color,omitempty"`
	Location    *string `json:"location,omitempty"`
	Category    *string `json:"category,omitempty"`
	Repeat      *string `json:"repeat,omitempty"`
}

// Validate requires title and date and checks the optional time range.
func (r *CreateEventRequest) Validate() []FieldError {
	var f fieldErrors
	f.required("title", r.Title)
	f.maxLen("title", &r.Title, MaxTitleLength)
	if f.required("date", r.Date) {
		f.date("date", &r.Date)
	}
	validateEventFields(&f, r.Description, r.EndDate, r.StartTime, r.EndTime, r.Location, r.Repeat)
	return f.result()
}

// Build returns an unsaved Event. Repeat defaults to none.
func (r *CreateEventRequest) Build() *Event {
	e := &Event{
		Title:       r.Title,
		Description: r.Description,
		Date:        r.Date,
		EndDate:     emptyToNil(r.EndDate),
		StartTime:   emptyToNil(r.StartTime),
		EndTime:     emptyToNil(r.EndTime),
		AllDay:      r.AllDay != nil && *r.AllDay,
		Color:       r.Color,
		Location:    r.Location,
		Category:    r.Category,
		Repeat:      RepeatNone,
	}
	if r.Repeat != nil {
		e.Repeat = Repeat(*r.Repeat)
	}
	return e
}

// UpdateEventRequest represents a partial event update
type UpdateEventRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Date        *string `json:"date,omitempty"`
	EndDate     *string `json:"end_date,omitempty"`
	StartTime   *string `json:"start_time,omitempty"`
	EndTime     *string `json:"end_time,omitempty"`
	AllDay      *bool   `json:"all_day,omitempty"`
	Color       *string `json:"color,omitempty"`
	Location    *string `json:"location,omitempty"`
	Category    *string `json:"category,omitempty"`
	Repeat      *string `json:"repeat,omitempty"`
}

// Validate mirrors CreateEventRequest.Validate for the fields being set.
func (r *UpdateEventRequest) Validate() []FieldError {
	var f fieldErrors
	if r.Title != nil {
		f.required("title", *r.Title)
		f.maxLen("title", r.Title, MaxTitleLength)
	}
	if r.Date != nil && f.required("date", *r.Date) {
		f.date("date", r.Date)
	}
	validateEventFields(&f, r.Description, r.EndDate, r.StartTime, r.EndTime, r.Location, r.Repeat)
	return f.result()
}

// Apply copies the set fields onto e. Empty strings clear optional fields.
func (r *UpdateEventRequest) Apply(e *Event) {
	if r.Title != nil {
		e.Title = *r.Title
	}
	if r.Description != nil {
		e.Description = emptyToNil(r.Description)
	}
	if r.Date != nil {
		e.Date = *r.Date
	}
	if r.EndDate != nil {
		e.EndDate = emptyToNil(r.EndDate)
	}
	if r.StartTime != nil {
		e.StartTime = emptyToNil(r.StartTime)
	}
	if r.EndTime != nil {
		e.EndTime = emptyToNil(r.EndTime)
	}
	if r.AllDay != nil {
		e.AllDay = *r.AllDay
	}
	if r.Color != nil {
		e.Color = emptyToNil(r.Color)
	}
	if r.Location != nil {
		e.Location = emptyToNil(r.Location)
	}
	if r.Category != nil {
		e.Category = emptyToNil(r.Category)
	}
	if r.Repeat != nil {
		e.Repeat = Repeat(*r.Repeat)
	}
}

func validateEventFields(f *fieldErrors, description, endDate, startTime, endTime, location, repeat *string) {
	f.maxLen("description", description, MaxMemoLength)
	f.date("end_date", endDate)
	f.clock("start_time", startTime)
	f.clock("end_time", endTime)
	f.maxLen("location", location, MaxShortLength*2)
	f.oneOf("repeat", repeat, repeatValues...)
}

// EndsBeforeStart reports an end date earlier than the start date
func (e *Event) EndsBeforeStart() bool {
	return e.EndDate != nil && *e.EndDate < e.Date
}

// EventFilter narrows an event listing to a date window (inclusive)
type EventFilter struct {
	From string
	To   string
}
