// Package bus carries detection events between the ingest workers and every
// server instance's websocket hub.
package bus

import (
	"context"
	"errors"

	"ecocare/internal/dto"
)

// ErrClosed is returned after Close.
var ErrClosed = errors.New("bus closed")

type Bus interface {
	Publish(ctx context.Context, event dto.DetectionEvent) error
	// Subscribe delivers events to onMsg until ctx is cancelled or the
	// subscription fails. It blocks.
	Subscribe(ctx context.Context, onMsg func(dto.DetectionEvent)) error
	Close() error
}
