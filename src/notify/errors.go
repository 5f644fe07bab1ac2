package notify

import (
	"errors"
	"fmt"
)

// ErrNotReady is returned when a notification is attempted before the
// messaging connection has completed its handshake.
var ErrNotReady = errors.New("messaging client is not ready yet")

// ErrLoopUnavailable is returned when the client could not accept the job.
var ErrLoopUnavailable = errors.New("messaging client cannot accept work")

// ErrDispatchAborted is returned when the lookup job stopped without a
// result, for example because it panicked.
var ErrDispatchAborted = errors.New("notification lookup aborted")

// DestinationNotFoundError reports a missing group (Discord server).
type DestinationNotFoundError struct {
	Name string
}

func (e *DestinationNotFoundError) Error() string {
	return fmt.Sprintf("server %q not found", e.Name)
}

// ChannelNotFoundError reports a missing channel inside a resolved group.
type ChannelNotFoundError struct {
	Container string
	Name      string
}

func (e *ChannelNotFoundError) Error() string {
	return fmt.Sprintf("channel %q not found in server %q", e.Name, e.Container)
}
