package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	FetchCollection Phase = iota
	WriteCollection
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case FetchCollection:
		return "fetch_collection"
	case WriteCollection:
		return "write_collection"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func fetchingUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchCollection,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Loading %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, res CollectionResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteCollection,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d songs)", step, total, res.Name, res.Tracks),
		Data:    res,
	}
}

func exportFailedUpdate(step, total int, res CollectionResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteCollection,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, res.Name, res.Error),
		Data:    res,
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Manifest written to %s", path),
	}
}
