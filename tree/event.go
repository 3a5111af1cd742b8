package tree

import "github.com/rs/zerolog"

// ChangeReason tells observers which mutation produced a [ChangeEvent]
type ChangeReason string

const (
	Added   ChangeReason = "added"
	Removed ChangeReason = "removed"
	Renamed ChangeReason = "renamed"
)

func (r ChangeReason) String() string {
	return string(r)
}

// ChangeEvent describes one completed mutation with enough positional detail
// for a list view to apply it as a single row insert, delete or move.
//
// PreviousIndex is set for Removed and Renamed, CurrentIndex for Added and
// Renamed. Both are positions within Parent's contents.
type ChangeEvent struct {
	Subject       Item
	Reason        ChangeReason
	PreviousIndex *int
	CurrentIndex  *int
	Parent        *Folder
}

// MarshalZerologObject lets events be logged with zerolog's Object()
func (ev ChangeEvent) MarshalZerologObject(e *zerolog.Event) {
	e.Str("reason", ev.Reason.String())
	if ev.Subject != nil {
		e.Str("subject", ev.Subject.ID().String())
	}
	if ev.Parent != nil {
		e.Str("parent", ev.Parent.ID().String())
	}
	if ev.PreviousIndex != nil {
		e.Int("prev", *ev.PreviousIndex)
	}
	if ev.CurrentIndex != nil {
		e.Int("cur", *ev.CurrentIndex)
	}
}

// Observer receives change events from a [Repository]
type Observer interface {
	OnChange(ev ChangeEvent)
}

// ObserverFunc adapts a plain function to [Observer]
type ObserverFunc func(ev ChangeEvent)

func (fn ObserverFunc) OnChange(ev ChangeEvent) {
	fn(ev)
}

// Subscription is the handle returned by [Repository.Subscribe].
// Its identity is what [Repository.Unsubscribe] matches on.
type Subscription struct {
	observer Observer
}
