package dashboard

import (
	"time"

	"github.com/moolen/faultline/internal/analysis"
)

// analysisDoneMsg carries the outcome of a run started from the dashboard.
type analysisDoneMsg struct {
	snap *analysis.Snapshot
	err  error
}

// refreshMsg polls for snapshots published by background runs.
type refreshMsg time.Time
