package timeutil

import "time"

// IST is the Indian Standard Time location (UTC+5:30).
var IST *time.Location

func init() {
	var err error
	IST, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		IST = time.FixedZone("IST", 5*60*60+30*60)
	}
}

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
	DisplayLayout  = "02 Jan 2006, 03:04 PM"
)

// Clock lets tests pin the current time.
var Clock = time.Now

// Now returns the current time in IST.
func Now() time.Time {
	return Clock().In(IST)
}

// Stamp is the persisted form of the current time.
func Stamp() string {
	return Now().Format(DateTimeLayout)
}

// Today is the current IST date as YYYY-MM-DD.
func Today() string {
	return Now().Format(DateLayout)
}

// ParseDate validates a YYYY-MM-DD date.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, IST)
}

// DayRange turns inclusive YYYY-MM-DD bounds into persisted timestamp bounds.
// Empty bounds stay empty.
func DayRange(from, to string) (string, string) {
	if from != "" {
		from += " 00:00:00"
	}
	if to != "" {
		to += " 23:59:59"
	}
	return from, to
}

// Display formats a persisted timestamp for printing; unparsable input is returned as-is.
func Display(stamp string) string {
	t, err := time.ParseInLocation(DateTimeLayout, stamp, IST)
	if err != nil {
		return stamp
	}
	return t.Format(DisplayLayout)
}
