package internal

import "context"

// Worker is a background processor tied to the server lifecycle.
// *job.Manager satisfies it.
type Worker interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
