package utils

import "time"

// beijing is the fixed UTC+8 zone used for every day boundary and
// display timestamp, regardless of the host timezone.
var beijing = time.FixedZone("CST", 8*60*60)

// BeijingDateString returns the YYYY-MM-DD calendar date of t in UTC+8.
func BeijingDateString(t time.Time) string {
	return t.In(beijing).Format("2006-01-02")
}

// BeijingTimeString returns a 24-hour display timestamp of t in UTC+8.
func BeijingTimeString(t time.Time) string {
	return t.In(beijing).Format("2006-01-02 15:04:05")
}
