package card

import "github.com/google/uuid"

// Result is what a command reports back to its caller.
type Result struct {
	Command  string
	EntryID  uuid.UUID
	PageID   uuid.UUID
	CardID   *uuid.UUID
	AssetKey string
	Batch    *BatchResult
}

// EntryState is the lifecycle of one entry in a batch:
// Pending -> Loading -> Inserted | RolledBack, or Pending -> Skipped.
type EntryState string

const (
	EntryPending    EntryState = "pending"
	EntryLoading    EntryState = "loading"
	EntryInserted   EntryState = "inserted"
	EntryRolledBack EntryState = "rolled_back"
	EntrySkipped    EntryState = "skipped"
)

// BatchResult contains the result of a page batch.
type BatchResult struct {
	Total     int
	Processed int
	Skipped   int
	Failed    int
	Entries   []EntryReport
}

// EntryReport describes what happened to a single entry in a batch.
type EntryReport struct {
	EntryID uuid.UUID
	Text    string
	State   EntryState
	CardID  *uuid.UUID
	Error   string
}

// Summary is the single notification sent after a batch.
func (r *BatchResult) Summary() string {
	return formatSummary(r.Processed, r.Skipped, r.Failed)
}

func (r *BatchResult) record(rep EntryReport) {
	r.Entries = append(r.Entries, rep)
	switch rep.State {
	case EntryInserted:
		r.Processed++
	case EntrySkipped:
		r.Skipped++
	case EntryRolledBack:
		r.Failed++
	}
}

