// Package events records what happened to each document during ingestion.
// The log is append-only; the loader feeds a channel-backed worker so
// persistence never blocks document processing.
package events

import "time"

// Type classifies an ingestion event.
type Type string

const (
	TypeProcessed Type = "processed"
	TypeSkipped   Type = "skipped"
	TypeFailed    Type = "failed"
)

// Event is emitted once per document the loader touches. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID          string
	Type        Type
	FilePath    string
	FolderID    string
	ContentHash string
	Detail      string
	Timestamp   time.Time
}
