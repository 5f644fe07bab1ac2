package notify

import (
	"fmt"

	"pack-manager/src/marker"
)

// Snapshotter hands out the current fields together with a captured image.
type Snapshotter interface {
	SnapshotWith(capture func() ([]byte, error)) (marker.Fields, []byte, error)
}

// Composer builds payloads from the shared state.
type Composer struct {
	src   Snapshotter
	ready *Readiness
}

func NewComposer(src Snapshotter, ready *Readiness) *Composer {
	return &Composer{src: src, ready: ready}
}

// Compose returns ErrNotReady without capturing anything if the messaging
// client is not ready.
func (c *Composer) Compose(capture func() ([]byte, error)) (Payload, error) {
	if !c.ready.Ready() {
		return Payload{}, ErrNotReady
	}
	fields, img, err := c.src.SnapshotWith(capture)
	if err != nil {
		return Payload{}, fmt.Errorf("failed to capture map snapshot: %w", err)
	}
	return Payload{
		CurrentPosition: fields.Position,
		NextDestination: fields.Destination,
		Activity:        fields.Activity,
		Entity:          fields.Entity,
		Server:          fields.Server,
		Snapshot:        img,
	}, nil
}
