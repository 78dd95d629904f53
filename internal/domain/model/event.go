package model

import "fmt"

// EventKind はファイルシステム通知の種類です
type EventKind int

const (
	EventOther EventKind = iota
	EventCreated
	EventModified
	EventRemoved
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventCreated:
		return "created"
	case EventModified:
		return "modified"
	case EventRemoved:
		return "removed"
	case EventError:
		return "error"
	default:
		return "other"
	}
}

// Event はデバウンス後のファイルシステム通知です。
// Kind が EventError の場合は Err のみが意味を持ちます
type Event struct {
	Kind EventKind
	Path string
	Err  error
}

func Created(path string) Event  { return Event{Kind: EventCreated, Path: path} }
func Modified(path string) Event { return Event{Kind: EventModified, Path: path} }
func Removed(path string) Event  { return Event{Kind: EventRemoved, Path: path} }
func Other(path string) Event    { return Event{Kind: EventOther, Path: path} }
func Failed(err error) Event     { return Event{Kind: EventError, Err: err} }

func (e Event) String() string {
	if e.Kind == EventError {
		return fmt.Sprintf("%s(%v)", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s(%s)", e.Kind, e.Path)
}
