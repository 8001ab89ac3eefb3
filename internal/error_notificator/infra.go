package error_notificator

import (
	"context"
	"fmt"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/medassist/internal/metrics"
)

const serviceName = "medassist"

// Infra writes failures to the structured log and the failure counter.
type Infra struct {
	log     *logger.ZapLogger
	metrics *metrics.Metrics
}

func NewInfra(log *logger.ZapLogger, m *metrics.Metrics) *Infra {
	return &Infra{log: log, metrics: m}
}

func (i *Infra) Notify(ctx context.Context, stage string, err error, details string) error {
	if i.metrics != nil {
		i.metrics.CollaboratorFailures.WithLabelValues(stage).Inc()
	}
	if i.log == nil {
		return nil
	}

	i.log.Log(logger.LogEntry{
		Level:   "error",
		Message: fmt.Sprintf("[%s] collaborator failure: %s", stage, details),
		Service: serviceName,
		Error:   err,
	})
	return nil
}
