package error_notificator

import "context"

type Notificator interface {
	// Notify reports a collaborator failure for the given pipeline stage
	Notify(ctx context.Context, stage string, err error, details string) error
}
