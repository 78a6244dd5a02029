package runner

import (
	"context"

	"go.uber.org/zap"

	"github.com/torosent/rench/internal/metrics"
)

// loggingIssuer wraps an Issuer with failure logging.
type loggingIssuer struct {
	inner  Issuer
	logger *zap.Logger
}

// WithLogging wraps an Issuer to log failed requests.
func WithLogging(issuer Issuer, logger *zap.Logger) Issuer {
	if logger == nil {
		return issuer
	}
	return &loggingIssuer{inner: issuer, logger: logger}
}

func (l *loggingIssuer) Issue(ctx context.Context, target, method string) metrics.Outcome {
	o := l.inner.Issue(ctx, target, method)
	if o.Failed() {
		kind := o.Kind
		if kind == "" {
			kind = metrics.ClassifyError(o.Err)
		}
		l.logger.Warn("request failed",
			zap.String("method", method),
			zap.String("target", target),
			zap.String("kind", string(kind)),
			zap.Error(o.Err),
		)
	}
	return o
}
