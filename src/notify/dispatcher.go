package notify

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Group is a named container of channels (a Discord server).
type Group struct {
	ID   string
	Name string
}

// Channel is a text channel inside a Group.
type Channel struct {
	ID   string
	Name string
}

// Client is the messaging platform as seen by the dispatcher. FindGroup,
// FindChannel and Send may only be called from a job passed to Schedule.
type Client interface {
	FindGroup(name string) (Group, bool)
	FindChannel(g Group, name string) (Channel, bool)
	Send(ctx context.Context, ch Channel, msg Message) error
	// Schedule posts fn onto the client's own goroutine. It returns false if
	// the job was not accepted.
	Schedule(fn func(ctx context.Context)) bool
}

// Dispatcher resolves the target channel and sends payloads. Failed sends
// are logged and dropped; nothing is retried.
type Dispatcher struct {
	client  Client
	mention string
	log     *zap.SugaredLogger
	stats   counters
}

func NewDispatcher(client Client, mention string, log *zap.SugaredLogger) *Dispatcher {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Dispatcher{client: client, mention: mention, log: log}
}

// Dispatch resolves containerName and then destinationName on the client's
// goroutine and reports the lookup outcome. The send itself continues on the
// client's goroutine after Dispatch returns.
func (d *Dispatcher) Dispatch(ctx context.Context, p Payload, destinationName, containerName string) error {
	resolved := make(chan error, 1)
	msg := Render(p, d.mention)

	accepted := d.client.Schedule(func(loopCtx context.Context) {
		reported := false
		defer func() {
			if !reported {
				resolved <- ErrDispatchAborted
			}
		}()
		ch, err := d.resolve(destinationName, containerName)
		resolved <- err
		reported = true
		if err != nil {
			return
		}
		if err := d.client.Send(loopCtx, ch, msg); err != nil {
			d.stats.failed.Add(1)
			d.log.Errorw("notification send failed, payload dropped",
				"server", containerName, "channel", destinationName, "error", err)
			return
		}
		d.stats.sent.Add(1)
		d.log.Infow("notification sent", "server", containerName, "channel", destinationName,
			"position", p.CurrentPosition, "destination", p.NextDestination)
	})
	if !accepted {
		d.stats.rejected.Add(1)
		d.log.Warnw("notification dropped, client loop unavailable", "server", containerName)
		return ErrLoopUnavailable
	}
	d.stats.dispatched.Add(1)

	select {
	case err := <-resolved:
		if errors.Is(err, ErrDispatchAborted) {
			d.log.Errorw("notification aborted during lookup", "server", containerName, "channel", destinationName)
			return err
		}
		if err != nil {
			d.stats.notFound.Add(1)
			d.log.Warnw("notification target not found, payload dropped", "error", err)
		}
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) resolve(destinationName, containerName string) (Channel, error) {
	g, ok := d.client.FindGroup(containerName)
	if !ok {
		return Channel{}, &DestinationNotFoundError{Name: containerName}
	}
	ch, ok := d.client.FindChannel(g, destinationName)
	if !ok {
		return Channel{}, &ChannelNotFoundError{Container: containerName, Name: destinationName}
	}
	return ch, nil
}

// Stats returns the dispatch counters.
func (d *Dispatcher) Stats() Stats { return d.stats.snapshot() }

// IsNotFound reports whether err is a lookup failure.
func IsNotFound(err error) bool {
	var dst *DestinationNotFoundError
	var ch *ChannelNotFoundError
	return errors.As(err, &dst) || errors.As(err, &ch)
}
