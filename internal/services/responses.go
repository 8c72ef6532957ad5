package services

import "dirscope/internal/domain"

// ScanResult is delivered once per completed scan, as soon as
// aggregation finishes and before background indexing starts.
type ScanResult struct {
	RootPath  string          `json:"rootPath"`
	Tree      domain.TreeNode `json:"tree"`
	ElapsedMS int64           `json:"scanTimeMs"`
}

// SpaceInfo describes the volume containing a queried path.
type SpaceInfo struct {
	Total     uint64 `json:"total"`
	Available uint64 `json:"available"`
	Used      uint64 `json:"used"`
}

// EventKind discriminates engine events.
type EventKind int

const (
	// EventProgress carries running entry/byte counters mid-scan.
	EventProgress EventKind = iota
	// EventScanResult carries the initial depth-1 tree.
	EventScanResult
	// EventScanComplete is emitted unconditionally after every scan,
	// errored or not, so the front end can drop its loading state.
	EventScanComplete
)

// Event is the engine's asynchronous notification to the front end.
type Event struct {
	Kind    EventKind
	Result  *ScanResult // EventScanResult only
	Entries int64       // EventProgress only
	Bytes   int64       // EventProgress only
	Err     error       // EventScanComplete, when the scan failed
}
