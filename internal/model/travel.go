package model

// TravelStatus of a trip
type TravelStatus string

const (
	TravelPlanned TravelStatus = "planned"
	TravelOngoing TravelStatus = "ongoing"
	TravelDone    TravelStatus = "done"
)

// Travel is a trip the couple planned or took
type Travel struct {
	Base
	Destination string       `json:"destination"`
	StartDate   string       `json:"start_date"`
	EndDate     *string      `json:"end_date,omitempty"`
	Memo        *string      `json:"memo,omitempty"`
	Budget      *int64       `json:"budget,omitempty"`
	Status      TravelStatus `json:"status"`
}

// EndsBeforeStart reports an end date earlier than the start date
func (t *Travel) EndsBeforeStart() bool {
	return t.EndDate != nil && *t.EndDate < t.StartDate
}

// CreateTravelRequest plans a trip
type CreateTravelRequest struct {
	Destination string  `json:"destination"`
	StartDate   string  `json:"start_date"`
	EndDate     *string `json:"end_date,omitempty"`
	Memo        *string `json:"memo,omitempty"`
	Budget      *int64  `json:"budget,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// Validate requires destination and start date. Budget is bounded like any amount.
func (r *CreateTravelRequest) Validate() []FieldError {
	var f fieldErrors
	f.required("destination", r.Destination)
	f.maxLen("destination", &r.Destination, MaxShortLength)
	if f.required("start_date", r.StartDate) {
		f.date("start_date", &r.StartDate)
	}
	f.date("end_date", r.EndDate)
	f.maxLen("memo", r.Memo, MaxMemoLength)
	f.amount("budget", r.Budget)
	f.oneOf("status", r.Status, "planned", "ongoing", "done")
	return f.result()
}

// Build returns an unsaved Travel, planned unless a status was given.
func (r *CreateTravelRequest) Build() *Travel {
	t := &Travel{
		Destination: r.Destination,
		StartDate:   r.StartDate,
		EndDate:     emptyToNil(r.EndDate),
		Memo:        r.Memo,
		Budget:      r.Budget,
		Status:      TravelPlanned,
	}
	if r.Status != nil {
		t.Status = TravelStatus(*r.Status)
	}
	return t
}

// UpdateTravelRequest patches a trip
type UpdateTravelRequest struct {
	Destination *string `json:"destination,omitempty"`
	StartDate   *string `json:"start_date,omitempty"`
	EndDate     *string `json:"end_date,omitempty"`
	Memo        *string `json:"memo,omitempty"`
	Budget      *int64  `json:"budget,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// Validate applies the create rules to the fields being set. The
// end-before-start check runs in the service against the merged trip.
func (r *UpdateTravelRequest) Validate() []FieldError {
	var f fieldErrors
	if r.Destination != nil {
		f.required("destination", *r.Destination)
		f.maxLen("destination", r.Destination, MaxShortLength)
	}
	if r.StartDate != nil && f.required("start_date", *r.StartDate) {
		f.date("start_date", r.StartDate)
	}
	f.date("end_date", r.EndDate)
	f.maxLen("memo", r.Memo, MaxMemoLength)
	f.amount("budget", r.Budget)
	f.oneOf("status", r.Status, "planned", "ongoing", "done")
	return f.result()
}

// Apply copies the set fields onto t.
func (r *UpdateTravelRequest) Apply(t *Travel) {
	if r.Destination != nil {
		t.Destination = *r.Destination
	}
	if r.StartDate != nil {
		t.StartDate = *r.StartDate
	}
	if r.EndDate != nil {
		t.EndDate = emptyToNil(r.EndDate)
	}
	if r.Memo != nil {
		t.Memo = emptyToNil(r.Memo)
	}
	if r.Budget != nil {
		t.Budget = r.Budget
	}
	if r.Status != nil {
		t.Status = TravelStatus(*r.Status)
	}
}
