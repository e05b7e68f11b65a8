package model

import (
	"fmt"
	"strings"
)

// Status is the moderation state of a team-finder registration.
// Any transition between the three values is allowed.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Statuses lists every status in display order
var Statuses = []Status{StatusPending, StatusAccepted, StatusRejected}

// ParseStatus parses a status name, ignoring case and surrounding space
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusAccepted, StatusRejected:
		return st, nil
	default:
		return "", fmt.Errorf("unknown status %q (want pending, accepted or rejected)", s)
	}
}

// Rank orders statuses for sorting: pending, accepted, rejected, then unknown
func (s Status) Rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusAccepted:
		return 1
	case StatusRejected:
		return 2
	default:
		return 3
	}
}

// Label returns the display text
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusAccepted:
		return "Accepted"
	case StatusRejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}
