package marker

import (
	"fmt"

	"pack-manager/src/geo"
)

// Kind distinguishes the two tracked markers.
type Kind int

const (
	Position Kind = iota
	Destination
)

func (k Kind) String() string {
	switch k {
	case Position:
		return "position"
	case Destination:
		return "destination"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Handle identifies one rendered marker on the drawing surface. Handles are
// never reused within a State.
type Handle uint64

// Marker is a tracked annotation.
type Marker struct {
	Handle Handle
	Coord  geo.World
	Kind   Kind
}

// Connector is the line from the position marker to the destination marker.
type Connector struct {
	From geo.World
	To   geo.World
}

// Op is a drawing surface operation.
type Op int

const (
	AddMarker Op = iota
	RemoveMarker
	SetConnector
	RemoveConnector
)

func (o Op) String() string {
	switch o {
	case AddMarker:
		return "add-marker"
	case RemoveMarker:
		return "remove-marker"
	case SetConnector:
		return "set-connector"
	case RemoveConnector:
		return "remove-connector"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Instruction tells the drawing surface what to add or remove. At is set for
// AddMarker; From and To are set for SetConnector.
type Instruction struct {
	Op     Op
	Handle Handle
	Kind   Kind
	At     geo.Point
	From   geo.Point
	To     geo.Point
}

// Sink receives instruction batches in mutation order. Apply is called with
// the State lock held and must not call back into the State.
type Sink interface {
	Apply([]Instruction)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func([]Instruction)

func (f SinkFunc) Apply(instrs []Instruction) { f(instrs) }
