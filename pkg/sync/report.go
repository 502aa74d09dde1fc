package sync

// Op identifies the action applied to one path during a run.
type Op string

const (
	// OpCreate is the creation of an entry that didn't exist in the
	// destination.
	OpCreate Op = "create"

	// OpUpdate is the recopy of a file whose size or modification time
	// changed.
	OpUpdate Op = "update"

	// OpDelete is the removal of a destination entry that doesn't exist in
	// the source.
	OpDelete Op = "delete"

	// OpConflict marks a path that is a directory on one side and a plain
	// file on the other. The conflict is surfaced rather than reconciled.
	OpConflict Op = "conflict"
)

// An Outcome records what happened to a single path during a run. Entries
// that were identical on both sides don't get an outcome at all.
type Outcome struct {
	RelPath string
	Op      Op
	Err     error
}

// Failed returns whether the operation failed.
func (outcome Outcome) Failed() bool {
	return outcome.Err != nil
}

// A Report collects the per-entry outcomes of one reconciliation run, in the
// order the operations were attempted.
type Report struct {
	Outcomes []Outcome
}

func (report *Report) record(relPath string, op Op, err error) {
	report.Outcomes = append(report.Outcomes, Outcome{
		RelPath: relPath,
		Op:      op,
		Err:     err,
	})
}

// Count returns the number of outcomes with the given op, whether or not
// they succeeded.
func (report *Report) Count(op Op) int {
	count := 0
	for _, outcome := range report.Outcomes {
		if outcome.Op == op {
			count++
		}
	}
	return count
}

// Failures returns the outcomes that failed.
func (report *Report) Failures() (failed []Outcome) {
	for _, outcome := range report.Outcomes {
		if outcome.Failed() {
			failed = append(failed, outcome)
		}
	}
	return failed
}
