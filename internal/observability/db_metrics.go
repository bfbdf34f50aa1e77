package observability

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

func (p *Prom) ObserveDB(op string, fn func() error) error {
	start := time.Now()
	err := fn()

	status := "ok"

	if err != nil {
		status = "error"
		p.DbErrorsTotal.WithLabelValues(op, classifyDBErr(err)).Inc()
	}
	p.DbQueryDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
	return err
}

func classifyDBErr(err error) string {
	switch {
	case mongo.IsDuplicateKeyError(err):
		return "duplicate_key"
	case errors.Is(err, mongo.ErrNoDocuments):
		return "no_documents"
	case errors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err):
		return "timeout"
	case mongo.IsNetworkError(err):
		return "connection"
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return "timeout"
	case strings.Contains(msg, "connection"):
		return "connection"
	default:
		return "unknown"
	}
}
