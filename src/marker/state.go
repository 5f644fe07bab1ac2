package marker

import (
	"sync"

	"pack-manager/src/geo"
)

// Fields is a consistent copy of the text shown to the user and sent out in
// notifications.
type Fields struct {
	Position    string
	Destination string
	Activity    string
	Entity      string
	Server      string
}

// State owns the position and destination markers, the derived connector and
// the selection fields. All methods are safe for concurrent use.
type State struct {
	mu        sync.Mutex
	tr        *geo.Transform
	sink      Sink
	observers []func(Fields)

	nextHandle  Handle
	position    *Marker
	destination *Marker
	connector   bool
	armed       bool
	fields      Fields
}

// New returns an empty State. sink may be nil.
func New(tr *geo.Transform, sink Sink) *State {
	return &State{tr: tr, sink: sink}
}

// OnChange registers fn to be called after every mutation. fn runs with the
// State lock held and must not block or call back into the State.
func (s *State) OnChange(fn func(Fields)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// SetPosition replaces the position marker.
func (s *State) SetPosition(w geo.World) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var batch []Instruction
	batch = s.release(batch, s.position)
	s.position = s.place(Position, w)
	batch = append(batch, s.addInstruction(s.position))
	s.fields.Position = geo.Format(w)
	batch = s.recomputeConnector(batch)
	s.commit(batch)
}

// ArmDestinationCapture makes the next pointer selection set the destination.
func (s *State) ArmDestinationCapture() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.armed = true
}

// HandlePointer consumes a pointer selection on the surface. It reports
// whether the selection was used to set the destination.
func (s *State) HandlePointer(p geo.Point) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.armed {
		return false
	}
	s.armed = false
	s.setDestinationLocked(p)
	return true
}

// SetDestinationFromSurfacePoint replaces the destination marker with one at
// the world position under p.
func (s *State) SetDestinationFromSurfacePoint(p geo.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setDestinationLocked(p)
}

func (s *State) setDestinationLocked(p geo.Point) {
	w := s.tr.ToWorld(p)

	var batch []Instruction
	batch = s.release(batch, s.destination)
	s.destination = s.place(Destination, w)
	batch = append(batch, s.addInstruction(s.destination))
	s.fields.Destination = geo.Format(w)
	batch = s.recomputeConnector(batch)
	s.commit(batch)
}

// DeleteDestination removes the destination marker and the connector. It is
// a no-op when there is no destination.
func (s *State) DeleteDestination() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destination == nil {
		return
	}

	var batch []Instruction
	batch = s.release(batch, s.destination)
	s.destination = nil
	s.fields.Destination = ""
	batch = s.recomputeConnector(batch)
	s.commit(batch)
}

// Clear releases every marker. Used at shutdown.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var batch []Instruction
	batch = s.release(batch, s.position)
	batch = s.release(batch, s.destination)
	s.position, s.destination = nil, nil
	s.armed = false
	s.fields.Position, s.fields.Destination = "", ""
	batch = s.recomputeConnector(batch)
	s.commit(batch)
}

func (s *State) SetActivity(v string) { s.setField(&s.fields.Activity, v) }
func (s *State) SetEntity(v string)   { s.setField(&s.fields.Entity, v) }
func (s *State) SetServer(v string)   { s.setField(&s.fields.Server, v) }

func (s *State) setField(dst *string, v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	*dst = v
	s.commit(nil)
}

// Snapshot returns the current fields.
func (s *State) Snapshot() Fields {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fields
}

// SnapshotWith returns the current fields together with the result of
// capture, taken without any mutation in between.
func (s *State) SnapshotWith(capture func() ([]byte, error)) (Fields, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	img, err := capture()
	if err != nil {
		return Fields{}, nil, err
	}
	return s.fields, img, nil
}

func (s *State) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armed
}

func (s *State) Position() (Marker, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.position == nil {
		return Marker{}, false
	}
	return *s.position, true
}

func (s *State) Destination() (Marker, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destination == nil {
		return Marker{}, false
	}
	return *s.destination, true
}

// Connector returns the derived connector, present only when both markers are.
func (s *State) Connector() (Connector, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.position == nil || s.destination == nil {
		return Connector{}, false
	}
	return Connector{From: s.position.Coord, To: s.destination.Coord}, true
}

func (s *State) place(kind Kind, w geo.World) *Marker {
	s.nextHandle++
	return &Marker{Handle: s.nextHandle, Coord: w, Kind: kind}
}

func (s *State) release(batch []Instruction, m *Marker) []Instruction {
	if m == nil {
		return batch
	}
	return append(batch, Instruction{Op: RemoveMarker, Handle: m.Handle, Kind: m.Kind})
}

func (s *State) addInstruction(m *Marker) Instruction {
	return Instruction{Op: AddMarker, Handle: m.Handle, Kind: m.Kind, At: s.tr.ToSurface(m.Coord)}
}

// recomputeConnector drops any previous connector and draws a fresh one when
// both markers exist.
func (s *State) recomputeConnector(batch []Instruction) []Instruction {
	if s.connector {
		batch = append(batch, Instruction{Op: RemoveConnector})
		s.connector = false
	}
	if s.position != nil && s.destination != nil {
		batch = append(batch, Instruction{
			Op:   SetConnector,
			From: s.tr.ToSurface(s.position.Coord),
			To:   s.tr.ToSurface(s.destination.Coord),
		})
		s.connector = true
	}
	return batch
}

func (s *State) commit(batch []Instruction) {
	if len(batch) > 0 && s.sink != nil {
		s.sink.Apply(batch)
	}
	for _, fn := range s.observers {
		fn(s.fields)
	}
}
