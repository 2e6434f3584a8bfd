// Package notify alerts operators when a scheduled stage fails. The
// automation runner fires one notification per failed stage; delivery
// problems are the caller's to log, never to fail the run over.
package notify

import (
	"context"

	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/domain"
)

// Notifier delivers a failure alert for one stage of one period's run.
type Notifier interface {
	NotifyFailure(ctx context.Context, stage string, period domain.Period, failure error) error
}

// Nop discards notifications. It stands in when no mail transport is
// configured so the runner never needs a nil check.
type Nop struct{}

var _ Notifier = Nop{}

func (Nop) NotifyFailure(context.Context, string, domain.Period, error) error {
	return nil
}
