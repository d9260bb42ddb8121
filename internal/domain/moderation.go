// Package domain holds the state machines, catalog and error taxonomy shared
// by the visibility, quota, payment and entitlement services.
package domain

import (
	"fmt"
	"strings"
)

// ProfileStatus is the approval lifecycle state of a member profile.
type ProfileStatus string

const (
	ProfilePending    ProfileStatus = "pending"
	ProfileApproved   ProfileStatus = "approved"
	ProfileRejected   ProfileStatus = "rejected"
	ProfileTerminated ProfileStatus = "terminated"
	// ProfileFlagged is reserved. No transition leads into or out of it.
	ProfileFlagged ProfileStatus = "flagged"
)

// profileTransitions lists the targets reachable from each state.
// Re-applying the current state is always allowed and handled separately.
var profileTransitions = map[ProfileStatus][]ProfileStatus{
	ProfilePending:    {ProfileApproved, ProfileRejected, ProfileTerminated},
	ProfileApproved:   {ProfileTerminated, ProfileRejected, ProfilePending},
	ProfileRejected:   {ProfileApproved, ProfileTerminated, ProfilePending},
	ProfileTerminated: {ProfileApproved, ProfileRejected, ProfilePending},
}

// ParseProfileStatus normalizes s and rejects unknown states.
func ParseProfileStatus(s string) (ProfileStatus, error) {
	st := ProfileStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case ProfilePending, ProfileApproved, ProfileRejected, ProfileTerminated, ProfileFlagged:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown profile status %q", ErrInvalidArgument, s)
}

// CheckProfileTransition reports whether from -> to is allowed.
// Same-state transitions are no-op successes.
func CheckProfileTransition(from, to ProfileStatus) error {
	if from == to {
		return nil
	}
	for _, next := range profileTransitions[from] {
		if next == to {
			return nil
		}
	}
	return &TransitionError{Kind: "profile", From: string(from), To: string(to)}
}

// Visible reports whether profiles in this state may appear in any listing.
func (s ProfileStatus) Visible() bool { return s == ProfileApproved }
