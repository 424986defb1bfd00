// Package reportwindow resolves a month and optional year into the calendar
// window used to filter commit history.
package reportwindow

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLayoutConstant            = "2006-01-02"
	invalidMonthErrorTemplate     = "invalid month %q"
	windowStringTemplateConstant  = "%s..%s"
	dayBeforeFirstOfMonthConstant = 0
	unsetYearConstant             = 0
	shortMonthTokenLengthConstant = 3
)

// canonicalMonths maps the twelve canonical short forms to calendar months.
var canonicalMonths = map[string]time.Month{
	"jan": time.January,
	"feb": time.February,
	"mar": time.March,
	"apr": time.April,
	"may": time.May,
	"jun": time.June,
	"jul": time.July,
	"aug": time.August,
	"sep": time.September,
	"oct": time.October,
	"nov": time.November,
	"dec": time.December,
}

// Clock abstracts time acquisition for deterministic testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system time source.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// InvalidMonthError reports a month token that matches no calendar month.
type InvalidMonthError struct {
	Token string
}

// Error describes the unresolvable month token.
func (monthError InvalidMonthError) Error() string {
	return fmt.Sprintf(invalidMonthErrorTemplate, monthError.Token)
}

// Window is the reporting interval. Both bounds are calendar days at midnight UTC.
type Window struct {
	After time.Time
	Until time.Time
}

// AfterDate renders the lower bound the way git date filters expect it.
func (window Window) AfterDate() string {
	return window.After.Format(dateLayoutConstant)
}

// UntilDate renders the upper bound the way git date filters expect it.
func (window Window) UntilDate() string {
	return window.Until.Format(dateLayoutConstant)
}

// String renders the window as after..until.
func (window Window) String() string {
	return fmt.Sprintf(windowStringTemplateConstant, window.AfterDate(), window.UntilDate())
}

// Request names the month to report on. A zero Year selects the current calendar year.
type Request struct {
	Month string
	Year  int
}

// Resolver computes reporting windows.
type Resolver struct {
	clock Clock
}

// NewResolver constructs a Resolver; a nil clock falls back to the system clock.
func NewResolver(clock Clock) *Resolver {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Resolver{clock: clock}
}

// Resolve returns the window spanning from the last day of the preceding month
// to the last day of the requested month.
func (resolver *Resolver) Resolve(request Request) (Window, error) {
	month, monthError := ParseMonth(request.Month)
	if monthError != nil {
		return Window{}, monthError
	}

	year := request.Year
	if year == unsetYearConstant {
		year = resolver.clock.Now().Year()
	}

	return Window{
		After: lastDayOfPrecedingMonth(year, month),
		Until: lastDayOfMonth(year, month),
	}, nil
}

// ParseMonth accepts a full or abbreviated month name in any letter case.
func ParseMonth(token string) (time.Month, error) {
	normalizedToken := strings.ToLower(strings.TrimSpace(token))
	if len(normalizedToken) < shortMonthTokenLengthConstant {
		return 0, InvalidMonthError{Token: token}
	}

	if month, exists := canonicalMonths[normalizedToken]; exists {
		return month, nil
	}

	shortForm := normalizedToken[:shortMonthTokenLengthConstant]
	month, exists := canonicalMonths[shortForm]
	if !exists || strings.ToLower(month.String()) != normalizedToken {
		return 0, InvalidMonthError{Token: token}
	}
	return month, nil
}

// CanonicalMonthToken returns the short lookup form of a month, for example "jan".
func CanonicalMonthToken(month time.Month) string {
	return strings.ToLower(month.String())[:shortMonthTokenLengthConstant]
}

func lastDayOfMonth(year int, month time.Month) time.Time {
	return time.Date(year, month+1, dayBeforeFirstOfMonthConstant, 0, 0, 0, 0, time.UTC)
}

func lastDayOfPrecedingMonth(year int, month time.Month) time.Time {
	return time.Date(year, month, dayBeforeFirstOfMonthConstant, 0, 0, 0, 0, time.UTC)
}
