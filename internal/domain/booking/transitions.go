package booking

import "homestay/internal/domain/user"

type Transition string

const (
	TransitionApprove  Transition = "approve"
	TransitionComplete Transition = "complete"
	TransitionCancel   Transition = "cancel"
)

type party int

const (
	partyHost party = 1 << iota
	partyTraveler
)

type rule struct {
	allowed party
	from    []Status
	to      Status
}

var rules = map[Transition]rule{
	TransitionApprove:  {allowed: partyHost, from: []Status{StatusPending}, to: StatusConfirmed},
	TransitionComplete: {allowed: partyHost, from: []Status{StatusConfirmed}, to: StatusCompleted},
	TransitionCancel:   {allowed: partyHost | partyTraveler, from: []Status{StatusPending, StatusConfirmed}, to: StatusCancelled},
}

// CanTransition is the single authority on who may move a booking: approve and
// complete belong to the property host, cancel to the host or the traveler.
// Administrators have no override.
func CanTransition(actor user.ID, b *Booking, t Transition) bool {
	if b == nil || actor == "" {
		return false
	}
	r, ok := rules[t]
	if !ok {
		return false
	}
	var roles party
	if actor == b.HostID {
		roles |= partyHost
	}
	if actor == b.TravelerID {
		roles |= partyTraveler
	}
	return roles&r.allowed != 0
}

func nextStatus(current Status, t Transition) (Status, bool) {
	r, ok := rules[t]
	if !ok {
		return "", false
	}
	for _, from := range r.from {
		if from == current {
			return r.to, true
		}
	}
	return "", false
}

func ParseTransition(raw string) (Transition, bool) {
	t := Transition(raw)
	_, ok := rules[t]
	return t, ok
}
