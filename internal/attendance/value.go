package attendance

import (
	"bytes"
	"encoding/json"
)

// Kind enumerates the resolved attendance states.
type Kind int

const (
	// KindNoResponse is the implicit state of a user without an entry.
	KindNoResponse Kind = iota
	// KindSignedUp means the user will attend.
	KindSignedUp
	// KindWithdrawn means the user dropped out, optionally with a reason.
	KindWithdrawn
)

func (k Kind) String() string {
	switch k {
	case KindSignedUp:
		return "signed_up"
	case KindWithdrawn:
		return "withdrawn"
	default:
		return "no_response"
	}
}

// Value is a stored attendance entry. Only the signed-up and withdrawn
// variants exist; no-response is represented by the absence of an entry.
type Value struct {
	withdrawn bool
	reason    string
}

// SignedUpValue builds the signed-up variant.
func SignedUpValue() Value {
	return Value{}
}

// WithdrawnValue builds the withdrawn variant carrying reason verbatim.
func WithdrawnValue(reason string) Value {
	return Value{withdrawn: true, reason: reason}
}

// Withdrawn reports whether v is the withdrawn variant.
func (v Value) Withdrawn() bool {
	return v.withdrawn
}

// Reason returns the withdrawal reason, empty for the signed-up variant.
func (v Value) Reason() string {
	return v.reason
}

// Status converts the stored value to its resolved status.
func (v Value) Status() Status {
	if v.withdrawn {
		return Withdrawn(v.reason)
	}
	return SignedUp()
}

const (
	tagSignedUp  = "signed-up"
	tagWithdrawn = "withdrawn"

	legacyTagSignedUp  = "anotada"
	legacyTagWithdrawn = "baja"
)

type withdrawnDocument struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

type legacyWithdrawnDocument struct {
	Estado *string `json:"estado"`
	Motivo *string `json:"motivo"`
	Status *string `json:"status"`
	Reason *string `json:"reason"`
}

// MarshalJSON writes the canonical encoding: the string "signed-up" or an
// object {"status":"withdrawn","reason":...}.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.withdrawn {
		return json.Marshal(tagSignedUp)
	}
	return json.Marshal(withdrawnDocument{Status: tagWithdrawn, Reason: v.reason})
}

// DecodeValue reads a stored entry. The second result is false when the raw
// bytes do not match any known shape, in which case the caller must treat the
// entry as absent.
func DecodeValue(raw []byte) (Value, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Value{}, false
	}

	switch trimmed[0] {
	case '"':
		var tag string
		if err := json.Unmarshal(trimmed, &tag); err != nil {
			return Value{}, false
		}
		if tag == tagSignedUp || tag == legacyTagSignedUp {
			return SignedUpValue(), true
		}
		return Value{}, false
	case '{':
		var doc legacyWithdrawnDocument
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return Value{}, false
		}
		switch {
		case doc.Status != nil && *doc.Status == tagWithdrawn:
			return WithdrawnValue(deref(doc.Reason)), true
		case doc.Status != nil && *doc.Status == tagSignedUp:
			return SignedUpValue(), true
		case doc.Estado != nil && *doc.Estado == legacyTagWithdrawn:
			return WithdrawnValue(deref(doc.Motivo)), true
		}
		return Value{}, false
	}
	return Value{}, false
}

// EncodeValue returns the canonical bytes for v.
func EncodeValue(v Value) (json.RawMessage, error) {
	return v.MarshalJSON()
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
