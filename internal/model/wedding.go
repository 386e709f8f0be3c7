package model

// WeddingInfo holds the couple's wedding-day details. There is at most
// one row per couple in wedding mode.
type WeddingInfo struct {
	Base
	WeddingDate  *string `json:"wedding_date,omitempty"`
	Venue        *string `json:"venue,omitempty"`
	CeremonyTime *string `json:"ceremony_time,omitempty"`
	TotalBudget  *int64  `json:"total_budget,omitempty"`
	GroomName    *string `json:"groom_name,omitempty"`
	BrideName    *string `json:"bride_name,omitempty"`
	Memo         *string `json:"memo,omitempty"`
}

// PutWeddingInfoRequest replaces the wedding info. Omitted fields are kept.
type PutWeddingInfoRequest struct {
	WeddingDate  *string `json:"wedding_date,omitempty"`
	Venue        *string `json:"venue,omitempty"`
	CeremonyTime *string `json:"ceremony_time,omitempty"`
	TotalBudget  *int64  `json:"total_budget,omitempty"`
	GroomName    *string `json:"groom_name,omitempty"`
	BrideName    *string `json:"bride_name,omitempty"`
	Memo         *string `json:"memo,omitempty"`
}

// Validate checks formats and bounds on whichever fields are present.
func (r *PutWeddingInfoRequest) Validate() []FieldError {
	var f fieldErrors
	f.date("wedding_date", r.WeddingDate)
	f.maxLen("venue", r.Venue, MaxShortLength*2)
	f.clock("ceremony_time", r.CeremonyTime)
	f.amount("total_budget", r.TotalBudget)
	f.maxLen("groom_name", r.GroomName, MaxNameLength)
	f.maxLen("bride_name", r.BrideName, MaxNameLength)
	f.maxLen("memo", r.Memo, MaxMemoLength)
	return f.result()
}

// Apply copies the set fields onto w. Empty strings clear them.
func (r *PutWeddingInfoRequest) Apply(w *WeddingInfo) {
	if r.WeddingDate != nil {
		w.WeddingDate = emptyToNil(r.WeddingDate)
	}
	if r.Venue != nil {
		w.Venue = emptyToNil(r.Venue)
	}
	if r.CeremonyTime != nil {
		w.CeremonyTime = emptyToNil(r.CeremonyTime)
	}
	if r.TotalBudget != nil {
		w.TotalBudget = r.TotalBudget
	}
	if r.GroomName != nil {
		w.GroomName = emptyToNil(r.GroomName)
	}
	if r.BrideName != nil {
		w.BrideName = emptyToNil(r.BrideName)
	}
	if r.Memo != nil {
		w.Memo = emptyToNil(r.Memo)
	}
}

// GuestSide is which family invited the guest
type GuestSide string

const (
	SideGroom GuestSide = "groom"
	SideBride GuestSide = "bride"
	SideBoth  GuestSide = "both"
)

// Attendance is a guest's RSVP state
type Attendance string

const (
	AttendancePending   Attendance = "pending"
	AttendanceAttending Attendance = "attending"
	AttendanceDeclined  Attendance = "declined"
)

// Guest is a wedding guest list entry
type Guest struct {
	Base
	Name           string     `json:"name"`
	Side           GuestSide  `json:"side"`
	Relation       *string    `json:"relation,omitempty"`
	Phone          *string    `json:"phone,omitempty"`
	Attendance     Attendance `json:"attendance"`
	Companions     int        `json:"companions"`
	GiftAmount     *int64     `json:"gift_amount,omitempty"`
	InvitationSent bool       `json:"invitation_sent"`
	Memo           *string    `json:"memo,omitempty"`
}

const MaxCompanions = 20

// CreateGuestRequest adds someone to the guest list
type CreateGuestRequest struct {
	Name           string  `json:"name"`
	Side           string  `json:"side"`
	Relation       *string `json:"relation,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Attendance     *string `json:"attendance,omitempty"`
	Companions     *int    `json:"companions,omitempty"`
	GiftAmount     *int64  `json:"gift_amount,omitempty"`
	InvitationSent *bool   `json:"invitation_sent,omitempty"`
	Memo           *string `json:"memo,omitempty"`
}

// Validate requires a name and a side.
func (r *CreateGuestRequest) Validate() []FieldError {
	var f fieldErrors
	f.required("name", r.Name)
	f.maxLen("name", &r.Name, MaxNameLength)
	if f.required("side", r.Side) {
		f.oneOf("side", &r.Side, "groom", "bride", "both")
	}
	validateGuestFields(&f, r.Relation, r.Phone, r.Attendance, r.Companions, r.GiftAmount, r.Memo)
	return f.result()
}

// Build returns an unsaved Guest whose attendance is pending unless given.
func (r *CreateGuestRequest) Build() *Guest {
	g := &Guest{
		Name:       r.Name,
		Side:       GuestSide(r.Side),
		Relation:   r.Relation,
		Phone:      r.Phone,
		Attendance: AttendancePending,
		GiftAmount: r.GiftAmount,
		Memo:       r.Memo,
	}
	if r.Attendance != nil {
		g.Attendance = Attendance(*r.Attendance)
	}
	if r.Companions != nil {
		g.Companions = *r.Companions
	}
	if r.InvitationSent != nil {
		g.InvitationSent = *r.InvitationSent
	}
	return g
}

// UpdateGuestRequest patches a guest, typically to record an RSVP or gift
type UpdateGuestRequest struct {
	Name           *string `json:"name,omitempty"`
	Side           *string `json:"side,omitempty"`
	Relation       *string `json:"relation,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Attendance     *string `json:"attendance,omitempty"`
	Companions     *int    `json:"companions,omitempty"`
	GiftAmount     *int64  `json:"gift_amount,omitempty"`
	InvitationSent *bool   `json:"invitation_sent,omitempty"`
	Memo           *string `json:"memo,omitempty"`
}

// Validate rejects an empty name and an unknown side.
func (r *UpdateGuestRequest) Validate() []FieldError {
	var f fieldErrors
	if r.Name != nil {
		f.required("name", *r.Name)
		f.maxLen("name", r.Name, MaxNameLength)
	}
	f.oneOf("side", r.Side, "groom", "bride", "both")
	validateGuestFields(&f, r.Relation, r.Phone, r.Attendance, r.Companions, r.GiftAmount, r.Memo)
	return f.result()
}

// Apply copies the set fields onto g.
func (r *UpdateGuestRequest) Apply(g *Guest) {
	if r.Name != nil {
		g.Name = *r.Name
	}
	if r.Side != nil {
		g.Side = GuestSide(*r.Side)
	}
	if r.Relation != nil {
		g.Relation = emptyToNil(r.Relation)
	}
	if r.Phone != nil {
		g.Phone = emptyToNil(r.Phone)
	}
	if r.Attendance != nil {
		g.Attendance = Attendance(*r.Attendance)
	}
	if r.Companions != nil {
		g.Companions = *r.Companions
	}
	if r.GiftAmount != nil {
		g.GiftAmount = r.GiftAmount
	}
	if r.InvitationSent != nil {
		g.InvitationSent = *r.InvitationSent
	}
	if r.Memo != nil {
		g.Memo = emptyToNil(r.Memo)
	}
}

func validateGuestFields(f *fieldErrors, relation, phone, attendance *string, companions *int, gift *int64, memo *string) {
	f.maxLen("relation", relation, MaxShortLength)
	f.maxLen("phone", phone, 30)
	f.oneOf("attendance", attendance, "pending", "attending", "declined")
	if companions != nil && (*companions < 0 || *companions > MaxCompanions) {
		f.add("companions", "companions must be between 0 and 20")
	}
	f.amount("gift_amount", gift)
	f.maxLen("memo", memo, MaxMemoLength)
}

// GuestSummary counts the guest list
type GuestSummary struct {
	Total        int                `json:"total"`
	BySide       map[GuestSide]int  `json:"by_side"`
	ByAttendance map[Attendance]int `json:"by_attendance"`
	// Headcount is attending guests plus their companions
	Headcount       int   `json:"headcount"`
	InvitationsSent int   `json:"invitations_sent"`
	GiftTotal       int64 `json:"gift_total"`
}

// SummarizeGuests builds a GuestSummary
func SummarizeGuests(guests []*Guest) *GuestSummary {
	s := &GuestSummary{
		Total:        len(guests),
		BySide:       map[GuestSide]int{SideGroom: 0, SideBride: 0, SideBoth: 0},
		ByAttendance: map[Attendance]int{AttendancePending: 0, AttendanceAttending: 0, AttendanceDeclined: 0},
	}
	for _, g := range guests {
		s.BySide[g.Side]++
		s.ByAttendance[g.Attendance]++
		if g.Attendance == AttendanceAttending {
			s.Headcount += 1 + g.Companions
		}
		if g.InvitationSent {
			s.InvitationsSent++
		}
		if g.GiftAmount != nil {
			s.GiftTotal = addAmount(s.GiftTotal, *g.GiftAmount)
		}
	}
	return s
}

// VendorStatus of a wedding vendor
type VendorStatus string

const (
	VendorConsidering VendorStatus = "considering"
	VendorContracted  VendorStatus = "contracted"
	VendorCancelled   VendorStatus = "cancelled"
)

// WeddingVendor is a hall, studio, dress shop, etc. the couple is dealing with
type WeddingVendor struct {
	Base
	Category string       `json:"category"`
	Name     string       `json:"name"`
	Contact  *string      `json:"contact,omitempty"`
	Price    *int64       `json:"price,omitempty"`
	Deposit  *int64       `json:"deposit,omitempty"`
	Status   VendorStatus `json:"status"`
	Memo     *string      `json:"memo,omitempty"`
}

// DepositExceedsPrice reports a deposit larger than the agreed price
func (v *WeddingVendor) DepositExceedsPrice() bool {
	return v.Price != nil && v.Deposit != nil && *v.Deposit > *v.Price
}

// CreateVendorRequest tracks a venue, studio or other vendor under consideration
type CreateVendorRequest struct {
	Category string  `json:"category"`
	Name     string  `json:"name"`
	Contact  *string `json:"contact,omitempty"`
	Price    *int64  `json:"price,omitempty"`
	Deposit  *int64  `json:"deposit,omitempty"`
	Status   *string `json:"status,omitempty"`
	Memo     *string `json:"memo,omitempty"`
}

// Validate requires category and name. Price and deposit are checked
// against each other only after Build.
func (r *CreateVendorRequest) Validate() []FieldError {
	var f fieldErrors
	f.required("category", r.Category)
	f.maxLen("category", &r.Category, MaxShortLength)
	f.required("name", r.Name)
	f.maxLen("name", &r.Name, MaxShortLength)
	f.maxLen("contact", r.Contact, MaxShortLength)
	f.amount("price", r.Price)
	f.amount("deposit", r.Deposit)
	f.oneOf("status", r.Status, "considering", "contracted", "cancelled")
	f.maxLen("memo", r.Memo, MaxMemoLength)
	return f.result()
}

// Build returns an unsaved vendor in the considering state unless a status was given.
func (r *CreateVendorRequest) Build() *WeddingVendor {
	v := &WeddingVendor{
		Category: r.Category,
		Name:     r.Name,
		Contact:  r.Contact,
		Price:    r.Price,
		Deposit:  r.Deposit,
		Status:   VendorConsidering,
		Memo:     r.Memo,
	}
	if r.Status != nil {
		v.Status = VendorStatus(*r.Status)
	}
	return v
}

// UpdateVendorRequest patches a vendor. The service rejects a deposit above
// the resulting price.
type UpdateVendorRequest struct {
	Category *string `json:"category,omitempty"`
	Name     *string `json:"name,omitempty"`
	Contact  *string `json:"contact,omitempty"`
	Price    *int64  `json:"price,omitempty"`
	Deposit  *int64  `json:"deposit,omitempty"`
	Status   *string `json:"status,omitempty"`
	Memo     *string `json:"memo,omitempty"`
}

// Validate checks the fields present in the patch.
func (r *UpdateVendorRequest) Validate() []FieldError {
	var f fieldErrors
	if r.Category != nil {
		f.required("category", *r.Category)
	}
	if r.Name != nil {
		f.required("name", *r.Name)
		f.maxLen("name", r.Name, MaxShortLength)
	}
	f.amount("price", r.Price)
	f.amount("deposit", r.Deposit)
	f.oneOf("status", r.Status, "considering", "contracted", "cancelled")
	f.maxLen("memo", r.Memo, MaxMemoLength)
	return f.result()
}

// Apply copies the set fields onto v.
func (r *UpdateVendorRequest) Apply(v *WeddingVendor) {
	if r.Category != nil {
		v.Category = *r.Category
	}
	if r.Name != nil {
		v.Name = *r.Name
	}
	if r.Contact != nil {
		v.Contact = emptyToNil(r.Contact)
	}
	if r.Price != nil {
		v.Price = r.Price
	}
	if r.Deposit != nil {
		v.Deposit = r.Deposit
	}
	if r.Status != nil {
		v.Status = VendorStatus(*r.Status)
	}
	if r.Memo != nil {
		v.Memo = emptyToNil(r.Memo)
	}
}
