package domain

import (
	"context"

	notificator "github.com/Vovarama1992/medassist/internal/error_notificator"
)

func notify(ctx context.Context, n notificator.Notificator, stage string, err error, details string) {
	if n == nil {
		return
	}
	_ = n.Notify(ctx, stage, err, details)
}
