package models

import "fmt"

// JobStatus is the lifecycle state of a job posted by a client.
//
//	open ──► in_progress ──► completed
//	 │  ▲         │
//	 │  └─ closed │
//	 └────────────┴──► cancelled
//
// completed and cancelled are terminal.
type JobStatus string

const (
	JobStatusOpen       JobStatus = "open"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusClosed     JobStatus = "closed"
	JobStatusCancelled  JobStatus = "cancelled"
)

var jobTransitions = map[JobStatus][]JobStatus{
	JobStatusOpen:       {JobStatusInProgress, JobStatusClosed, JobStatusCancelled},
	JobStatusInProgress: {JobStatusCompleted, JobStatusCancelled},
	JobStatusClosed:     {JobStatusOpen},
}

// ParseJobStatus converts a raw string to a JobStatus.
func ParseJobStatus(s string) (JobStatus, error) {
	st := JobStatus(s)
	switch st {
	case JobStatusOpen, JobStatusInProgress, JobStatusCompleted, JobStatusClosed, JobStatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown job status %q", s)
}

// IsJobTransitionAllowed reports whether from → to is a legal move.
func IsJobTransitionAllowed(from, to JobStatus) bool {
	for _, s := range jobTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// JobSourcesFor returns every status from which to can be reached.
func JobSourcesFor(to JobStatus) []JobStatus {
	var from []JobStatus
	for _, src := range []JobStatus{JobStatusOpen, JobStatusInProgress, JobStatusCompleted, JobStatusClosed, JobStatusCancelled} {
		if IsJobTransitionAllowed(src, to) {
			from = append(from, src)
		}
	}
	return from
}
