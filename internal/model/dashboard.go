package model

// DDay counts days relative to the couple's key date. Since is set in
// dating and family modes (days since the anniversary, day one included);
// Until is set in wedding mode.
type DDay struct {
	Label string `json:"label"`
	Date  string `json:"date"`
	Since *int   `json:"since,omitempty"`
	Until *int   `json:"until,omitempty"`
}

// Dashboard is the home screen payload
type Dashboard struct {
	Mode           Mode            `json:"mode"`
	Partner        *PartnerSummary `json:"partner,omitempty"`
	DDay           *DDay           `json:"dday,omitempty"`
	UpcomingEvents []*Event        `json:"upcoming_events"`
	OpenTodos      int             `json:"open_todos"`
	RecentPhotos   []*Photo        `json:"recent_photos"`
	Budget         *ExpenseSummary `json:"budget,omitempty"`
}
