package scheduler

import "time"

// MarketHours is the regular session of a US exchange.
type MarketHours struct {
	Location            *time.Location
	OpenHour, OpenMin   int
	CloseHour, CloseMin int
}

// NYSEHours returns the 09:30-16:00 session in loc, or in America/New_York
// when loc is nil.
func NYSEHours(loc *time.Location) MarketHours {
	if loc == nil {
		var err error
		loc, err = time.LoadLocation("America/New_York")
		if err != nil {
			loc = time.FixedZone("EST", -5*60*60)
		}
	}
	return MarketHours{Location: loc, OpenHour: 9, OpenMin: 30, CloseHour: 16, CloseMin: 0}
}

// Status reports whether the market is open at t, with a one-word reason:
// "open", "weekend", "pre-market" or "after-hours". Holidays are not known.
func (m MarketHours) Status(t time.Time) (bool, string) {
	now := t.In(m.Location)
	if wd := now.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false, "weekend"
	}
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, m.Location)
	open := day.Add(time.Duration(m.OpenHour)*time.Hour + time.Duration(m.OpenMin)*time.Minute)
	closing := day.Add(time.Duration(m.CloseHour)*time.Hour + time.Duration(m.CloseMin)*time.Minute)
	switch {
	case now.Before(open):
		return false, "pre-market"
	case now.After(closing):
		return false, "after-hours"
	default:
		return true, "open"
	}
}

// Open reports whether the market is open at t.
func (m MarketHours) Open(t time.Time) bool {
	ok, _ := m.Status(t)
	return ok
}
