package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// MaxAmount bounds every money field (whole currency units). Stored
// numbers stay exact below 2^53 and sums of them stay far from overflow.
const MaxAmount int64 = 1_000_000_000_000_000

// Mode is the relationship stage a row belongs to
type Mode string

const (
	ModeDating  Mode = "dating"
	ModeWedding Mode = "wedding"
	ModeFamily  Mode = "family"
)

// ParseMode validates a mode string. Empty input is an error; callers
// apply their own default first.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeDating, ModeWedding, ModeFamily:
		return m, nil
	}
	return "", fmt.Errorf("mode must be dating, wedding, or family")
}

// Valid reports whether m is one of the three modes
func (m Mode) Valid() bool {
	_, err := ParseMode(string(m))
	return err == nil
}

// Base carries the columns shared by every couple-scoped row
type Base struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Mode      Mode      `json:"mode"`
	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// Meta returns the shared columns
func (b *Base) Meta() *Base { return b }

// Owned is implemented by every entity embedding Base
type Owned interface {
	Meta() *Base
}

// Scope is the tenant context of a request: the caller, the user ids
// whose rows the caller may see (self plus partner), and the active mode.
type Scope struct {
	UserID  string
	UserIDs []string
	Mode    Mode
}

// Includes reports whether rows owned by userID are visible in the scope
func (s Scope) Includes(userID string) bool {
	for _, id := range s.UserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Partner returns the partner's user id, or "" when not linked
func (s Scope) Partner() string {
	for _, id := range s.UserIDs {
		if id != s.UserID {
			return id
		}
	}
	return ""
}

// Date and clock layouts used for calendar-style fields
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// ValidDate reports whether s is a YYYY-MM-DD calendar date
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ValidClock reports whether s is an HH:MM wall-clock time
func ValidClock(s string) bool {
	_, err := time.Parse(ClockLayout, s)
	return err == nil
}

// fieldErrors accumulates validation failures for request types
type fieldErrors []FieldError

func (f *fieldErrors) add(field, msg string) {
	*f = append(*f, FieldError{Field: field, Message: msg})
}

func (f *fieldErrors) required(field, value string) bool {
	if strings.TrimSpace(value) == "" {
		f.add(field, field+" is required")
		return false
	}
	return true
}

func (f *fieldErrors) maxLen(field string, value *string, max int) {
	if value != nil && len([]rune(*value)) > max {
		f.add(field, fmt.Sprintf("%s must be %d characters or less", field, max))
	}
}

func (f *fieldErrors) date(field string, value *string) {
	if value != nil && *value != "" && !ValidDate(*value) {
		f.add(field, field+" must be a YYYY-MM-DD date")
	}
}

func (f *fieldErrors) clock(field string, value *string) {
	if value != nil && *value != "" && !ValidClock(*value) {
		f.add(field, field+" must be an HH:MM time")
	}
}

func (f *fieldErrors) amount(field string, value *int64) {
	switch {
	case value == nil:
	case *value < 0:
		f.add(field, field+" must not be negative")
	case *value > MaxAmount:
		f.add(field, fmt.Sprintf("%s must be at most %d", field, MaxAmount))
	}
}

// addAmount sums money, saturating instead of wrapping
func addAmount(a, b int64) int64 {
	if b > 0 && a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

func (f *fieldErrors) oneOf(field string, value *string, allowed ...string) {
	if value == nil {
		return
	}
	for _, a := range allowed {
		if *value == a {
			return
		}
	}
	f.add(field, fmt.Sprintf("%s must be one of %s", field, strings.Join(allowed, ", ")))
}

func (f *fieldErrors) mode(value *Mode) {
	if value != nil && !value.Valid() {
		f.add("mode", "mode must be dating, wedding, or family")
	}
}

func (f fieldErrors) result() []FieldError {
	if len(f) == 0 {
		return nil
	}
	return f
}
