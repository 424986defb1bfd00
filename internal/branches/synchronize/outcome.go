package synchronize

import "github.com/temirov/gitlog/internal/gitrepo"

// OutcomeKind classifies how a single remote branch fared during synchronization.
type OutcomeKind int

// Supported outcome kinds.
const (
	OutcomeSynced OutcomeKind = iota
	OutcomeCreatedAndSynced
	OutcomeSkippedNotFound
	OutcomeFailedTimeout
	OutcomeFailedOther
)

var outcomeKindNames = map[OutcomeKind]string{
	OutcomeSynced:           "synced",
	OutcomeCreatedAndSynced: "created_and_synced",
	OutcomeSkippedNotFound:  "skipped_not_found",
	OutcomeFailedTimeout:    "failed_timeout",
	OutcomeFailedOther:      "failed_other",
}

// String renders the outcome kind for logs.
func (kind OutcomeKind) String() string {
	if name, known := outcomeKindNames[kind]; known {
		return name
	}
	return "unknown"
}

// Failed reports whether the kind represents a failure.
func (kind OutcomeKind) Failed() bool {
	return kind == OutcomeFailedTimeout || kind == OutcomeFailedOther
}

// BranchOutcome records the result for one remote branch. Reason is set for failed outcomes.
type BranchOutcome struct {
	Branch gitrepo.RemoteBranch
	Kind   OutcomeKind
	Reason error
}
