package watcher

import "time"

// EventType classifies a file system change.
type EventType int

const (
	// EventAdded fires when a new file appears and settles.
	EventAdded EventType = iota
	// EventModified fires when an existing file changes and settles.
	EventModified
	// EventRemoved fires when a file is deleted.
	EventRemoved
)

func (t EventType) String() string {
	switch t {
	case EventAdded:
		return "added"
	case EventModified:
		return "modified"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event is one settled file system change.
type Event struct {
	Type    EventType
	Path    string
	Size    int64
	ModTime time.Time
}
