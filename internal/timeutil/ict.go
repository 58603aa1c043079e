package timeutil

import "time"

// ICT is the Indochina Time location (UTC+7). The shop operates in Ho Chi
// Minh City; all timestamps shown to staff and printed on documents use it.
var ICT *time.Location

func init() {
	var err error
	ICT, err = time.LoadLocation("Asia/Ho_Chi_Minh")
	if err != nil {
		// Fallback: create fixed zone if the tz database is not available
		ICT = time.FixedZone("ICT", 7*60*60)
	}
}

// Now returns the current time in ICT
func Now() time.Time {
	return time.Now().In(ICT)
}

// ToICT converts any time to ICT
func ToICT(t time.Time) time.Time {
	return t.In(ICT)
}

// StartOfDay returns the start of day (00:00:00) in ICT for the given time
func StartOfDay(t time.Time) time.Time {
	l := t.In(ICT)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, ICT)
}

// EndOfDay returns the end of day (23:59:59.999999999) in ICT for the given time
func EndOfDay(t time.Time) time.Time {
	l := t.In(ICT)
	return time.Date(l.Year(), l.Month(), l.Day(), 23, 59, 59, 999999999, ICT)
}

// Common layouts
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
	DisplayLayout  = "02/01/2006 15:04"
)
