package attendance

import "encoding/json"

// Status is the resolved attendance state of one user for one session.
type Status struct {
	Kind   Kind
	Reason string
}

// NoResponse is the status of a user who has not acted yet.
func NoResponse() Status {
	return Status{Kind: KindNoResponse}
}

// SignedUp is the status of a user who will attend.
func SignedUp() Status {
	return Status{Kind: KindSignedUp}
}

// Withdrawn is the status of a user who dropped out.
func Withdrawn(reason string) Status {
	return Status{Kind: KindWithdrawn, Reason: reason}
}

func (s Status) String() string {
	return s.Kind.String()
}

// Map is a session's attendance map keyed by user id. Values are kept as the
// raw stored bytes and decoded on read.
type Map map[string]json.RawMessage

// Clone returns a deep copy of m.
func (m Map) Clone() Map {
	if m == nil {
		return Map{}
	}
	out := make(Map, len(m))
	for key, raw := range m {
		out[key] = append(json.RawMessage(nil), raw...)
	}
	return out
}

// Session is the attendance-relevant view of a training session.
type Session struct {
	ID          string
	Title       string
	Description string
	Date        *Date
	Start       *TimeOfDay
	End         *TimeOfDay
	Venue       string
	Team        Team
	Attendance  Map
}

// Resolve returns the status of userID in session. It never fails: a missing
// entry and an unrecognized stored shape both resolve to NoResponse.
func Resolve(session Session, userID string) Status {
	raw, ok := session.Attendance[userID]
	if !ok {
		return NoResponse()
	}
	value, ok := DecodeValue(raw)
	if !ok {
		return NoResponse()
	}
	return value.Status()
}
