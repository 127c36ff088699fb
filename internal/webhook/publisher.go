// Package webhook fans submission status changes out to tenant-facing
// notification infrastructure.
package webhook

import (
	"context"
	"sync"
	"time"

	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/submission/models"
	id "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain"
)

// Event is one submission status change. Consumers deliver these to tenant
// webhook endpoints; this service only guarantees the event reaches the
// broker.
type Event struct {
	SubmissionID id.SubmissionID `json:"submission_id"`
	TenantID     id.TenantID     `json:"tenant_id"`
	EndUserID    id.EndUserID    `json:"end_user_id"`
	Status       models.Status   `json:"status"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Nop drops events. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Recorder captures events for assertions in tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
