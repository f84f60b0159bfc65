// Package runtime owns the application model and drives the deterministic
// update/view loop: event dispatch, command execution, subscription
// reconciliation, resize debouncing, and the render pipeline.
package runtime

import "github.com/phoenix-tui/phoenix/cell"

// Msg is the marker interface for application messages. Any concrete type
// implements it automatically; the runtime never inspects a Msg's
// structure, only routes it to Update.
type Msg any

// Model is the capability set the runtime requires of an application: Init
// for startup commands, Update for the Elm-architecture state transition,
// View to paint a Frame, and Subscriptions to declare the set of running
// message sources. T is the concrete model type so Update can return it by
// value without an interface round-trip.
type Model[T any] interface {
	Init() Cmd
	Update(msg Msg) (T, Cmd)
	View(frame *cell.Frame)
	Subscriptions() []Subscription
}

// Subscription is a message source identified by a stable id, started and
// stopped by the runtime based on the model's declared set each
// reconciliation pass. Implementations must not hold a back-reference to
// the runtime or the model: they communicate only through the send function
// passed to Start.
type Subscription interface {
	ID() string
	Start(send func(Msg)) (stop func())
}
