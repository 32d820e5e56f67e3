// Package biztime provides utilities for business timezone calculations.
// All storage uses UTC. The business timezone is only used where the remote
// provider expects a local calendar date, such as transaction id prefixes.
package biztime

import (
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultTimezone is the timezone the payment provider settles in.
	DefaultTimezone = "Asia/Ho_Chi_Minh"

	// datePrefixLayout renders yymmdd.
	datePrefixLayout = "060102"
)

var (
	bizLocation     *time.Location
	bizLocationOnce sync.Once
	initErr         error

	nowFunc = time.Now
)

// Init initializes the business timezone. Should be called once at startup.
// If tz is empty, defaults to Asia/Ho_Chi_Minh.
func Init(tz string) error {
	bizLocationOnce.Do(func() {
		if tz == "" {
			tz = DefaultTimezone
		}
		bizLocation, initErr = time.LoadLocation(tz)
	})
	return initErr
}

// MustInit initializes the business timezone and panics on error.
func MustInit(tz string) {
	if err := Init(tz); err != nil {
		panic(fmt.Sprintf("failed to initialize business timezone %q: %v", tz, err))
	}
}

// Location returns the business timezone location, initializing the default
// on first use.
func Location() *time.Location {
	if bizLocation == nil {
		if err := Init(""); err != nil {
			panic(fmt.Sprintf("biztime: failed to auto-initialize with default timezone: %v", err))
		}
	}
	return bizLocation
}

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return nowFunc().UTC()
}

// NowMillis returns the current unix time in milliseconds.
func NowMillis() int64 {
	return nowFunc().UnixMilli()
}

// DatePrefix formats t as yymmdd in the business timezone.
func DatePrefix(t time.Time) string {
	return t.In(Location()).Format(datePrefixLayout)
}

// StartOfDayUTC returns the start of the business day containing t, in UTC.
func StartOfDayUTC(t time.Time) time.Time {
	bizTime := t.In(Location())
	startOfDay := time.Date(bizTime.Year(), bizTime.Month(), bizTime.Day(), 0, 0, 0, 0, Location())
	return startOfDay.UTC()
}

// ToBizTimezone converts a UTC time to business timezone for display.
func ToBizTimezone(t time.Time) time.Time {
	return t.In(Location())
}

// SetNowFunc overrides the clock. Tests only.
func SetNowFunc(fn func() time.Time) (restore func()) {
	prev := nowFunc
	nowFunc = fn
	return func() { nowFunc = prev }
}
