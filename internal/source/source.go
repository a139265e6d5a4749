// Package source supplies the raw subjects an analysis run scores.
package source

import (
	"context"
	"errors"
	"time"

	"github.com/moolen/faultline/internal/subject"
)

// ErrVariantMismatch is returned when a source yields subjects for another
// variant than the one being analyzed.
var ErrVariantMismatch = errors.New("source variant mismatch")

// Source fetches the ordered subject list for one run. The returned slice is
// owned by the caller.
type Source interface {
	Fetch(ctx context.Context, topic string) ([]subject.Subject, error)
	Variant() subject.Variant
	Name() string
}

// WithLatency delays every Fetch of src by d. The delay honours ctx.
func WithLatency(src Source, d time.Duration) Source {
	if d <= 0 {
		return src
	}
	return &latencySource{Source: src, delay: d}
}

type latencySource struct {
	Source
	delay time.Duration
}

func (l *latencySource) Fetch(ctx context.Context, topic string) ([]subject.Subject, error) {
	timer := time.NewTimer(l.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}
	return l.Source.Fetch(ctx, topic)
}
