package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/So-lol/ace-website-sub001/internal/apperr"
	"github.com/So-lol/ace-website-sub001/internal/audit"
	"github.com/So-lol/ace-website-sub001/internal/auth"
	"github.com/So-lol/ace-website-sub001/internal/docstore"
	"github.com/So-lol/ace-website-sub001/internal/logging"
	"github.com/So-lol/ace-website-sub001/internal/metrics"
)

// clock is embedded by services that stamp times.
type clock struct {
	now func() time.Time
}

func (c clock) Now() time.Time {
	if c.now == nil {
		return time.Now().UTC()
	}
	return c.now().UTC()
}

func actorOf(id *auth.Identity) audit.Actor {
	return audit.Actor{ID: id.ID, Email: id.Email, Name: id.DisplayName()}
}

// docErr classifies a document store error; a missing document becomes
// "<what> not found".
func docErr(op, what string, err error) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return apperr.NotFound(what)
	}
	return apperr.Store(op, err)
}

// bestEffort logs a failed secondary step without failing the operation.
func bestEffort(m *metrics.MetricsRegistry, step string, err error, fields ...any) {
	if err == nil {
		return
	}
	m.CountBestEffortFailure(step)
	logging.Warn("Secondary step failed", append([]any{"step", step, "error", err.Error()}, fields...)...)
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
