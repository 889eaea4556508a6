package pipelines

import "sort"

type RequestStatus string

const (
	StatusNew        RequestStatus = "new"
	StatusInProgress RequestStatus = "in_progress"
	StatusCompleted  RequestStatus = "completed"
	StatusRejected   RequestStatus = "rejected"
	StatusConverted  RequestStatus = "converted"
)

var transitions = map[RequestStatus][]RequestStatus{
	StatusNew:        {StatusInProgress, StatusRejected, StatusCompleted},
	StatusInProgress: {StatusCompleted, StatusRejected, StatusConverted},
	StatusCompleted:  {},
	StatusRejected:   {},
	StatusConverted:  {},
}

func (s RequestStatus) Known() bool {
	_, ok := transitions[s]
	return ok
}

// AllowedTransitions lists the statuses reachable from s; nil for unknown
// statuses.
func AllowedTransitions(s RequestStatus) []RequestStatus {
	next, ok := transitions[s]
	if !ok {
		return nil
	}
	out := make([]RequestStatus, len(next))
	copy(out, next)
	return out
}

// IsValidTransition allows staying on the same status.
func IsValidTransition(from, to RequestStatus) bool {
	if from == to {
		return true
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func IsTerminal(s RequestStatus) bool {
	return len(transitions[s]) == 0
}

// Statuses returns every known status, sorted.
func Statuses() []RequestStatus {
	out := make([]RequestStatus, 0, len(transitions))
	for s := range transitions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
