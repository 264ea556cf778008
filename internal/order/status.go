package order

import "strings"

type Status string

const (
	StatusPending Status = "PENDING"
	StatusPaid    Status = "PAID"
	StatusFailed  Status = "FAILED"
	StatusExpired Status = "EXPIRED"
)

// FromUpstream maps the issuer's status vocabulary to ours. An expired
// invoice is a failed order; anything unrecognised passes through
// upper-cased.
func FromUpstream(raw string) Status {
	switch raw {
	case "PAID":
		return StatusPaid
	case "EXPIRED":
		return StatusFailed
	default:
		return Status(strings.ToUpper(raw))
	}
}

// Terminal reports whether no further transition is modeled from s.
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusFailed || s == StatusExpired
}
