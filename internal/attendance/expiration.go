package attendance

import "time"

// closedInstant is the expiration of a session without a computable end.
var closedInstant = time.Unix(0, 0).UTC()

// Expiration returns the instant after which attendance for session can no
// longer change. The date and end time are read as wall-clock values in loc.
// Sessions without a date or end time expire at the Unix epoch.
func Expiration(session Session, loc *time.Location) time.Time {
	if session.Date == nil || session.End == nil {
		return closedInstant
	}
	if loc == nil {
		loc = time.UTC
	}
	d, e := session.Date, session.End
	return time.Date(d.Year, d.Month, d.Day, e.Hour, e.Minute, e.Second, 0, loc)
}

// IsExpired reports whether now is strictly after the session's expiration.
// A session is still open at the exact expiration instant. The session's wall
// clock is interpreted in now's location.
func IsExpired(session Session, now time.Time) bool {
	if session.Date == nil || session.End == nil {
		return true
	}
	return now.After(Expiration(session, now.Location()))
}
