package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/academy-shift-go/internal/domain/offline"
	"github.com/cmlabs-hris/academy-shift-go/internal/domain/shift"
	"github.com/cmlabs-hris/academy-shift-go/internal/pkg/sse"
)

// TopicViews is the local broadcast channel every open view listens on
const TopicViews = "views"

// Submitter sends one batch to the sync endpoint
type Submitter interface {
	SubmitBatch(ctx context.Context, actions []shift.ActionRequest) ([]shift.ActionResult, error)
}

// Publisher delivers notifications to open views
type Publisher interface {
	Publish(topic string, event sse.Event)
}

type OutcomeKind string

const (
	OutcomeSynced     OutcomeKind = "synced"
	OutcomeAuthNeeded OutcomeKind = "auth_needed"
	OutcomeDeferred   OutcomeKind = "deferred"
)

// Outcome summarizes one sync pass
type Outcome struct {
	Kind      OutcomeKind
	Expired   []string // dropped locally, never sent
	Processed []string // removed after the server answered for them
	Submitted []string // batch order; Results[i] answers Submitted[i]
	Results   []shift.ActionResult
	Remaining int // still queued after this pass
	Status    int // HTTP status for deferred passes
}

type Dispatcher struct {
	queue     offline.Queue
	submitter Submitter
	publisher Publisher
	window    time.Duration
	location  *time.Location
	now       func() time.Time

	mu sync.Mutex
}

func NewDispatcher(queue offline.Queue, submitter Submitter, publisher Publisher, window time.Duration, location *time.Location) *Dispatcher {
	if location == nil {
		location = time.UTC
	}
	return &Dispatcher{
		queue:     queue,
		submitter: submitter,
		publisher: publisher,
		window:    window,
		location:  location,
		now:       time.Now,
	}
}

// Sync flushes the queue once.
//
// Actions queued longer than the freshness window are dropped without being
// sent. The rest go out as one batch in clientTimestamp order and every action
// the server answered for is removed, whatever its status. An error is
// returned only when the server could not be reached or the queue failed, and
// means the caller should retry later.
func (d *Dispatcher) Sync(ctx context.Context) (Outcome, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	actions, err := d.queue.ListAll(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", offline.ErrQueueUnavailable, err)
	}

	now := d.now()
	valid := make([]offline.QueuedAction, 0, len(actions))
	expired := make([]string, 0)
	for _, a := range actions {
		if a.Age(now) > d.window {
			expired = append(expired, a.ID)
			continue
		}
		valid = append(valid, a)
	}

	for _, id := range expired {
		if err := d.queue.Remove(ctx, id); err != nil {
			return Outcome{}, fmt.Errorf("failed to drop expired action: %w", err)
		}
	}
	if len(expired) > 0 {
		slog.Info("Dropped expired queued actions", "count", len(expired))
	}

	if len(valid) == 0 {
		out := Outcome{Kind: OutcomeSynced, Expired: expired, Processed: []string{}}
		d.notify(offline.NotificationSynced, expired)
		return out, nil
	}

	d.sortChronologically(valid)

	batch := make([]shift.ActionRequest, len(valid))
	submitted := make([]string, len(valid))
	for i, a := range valid {
		batch[i] = a.Payload()
		submitted[i] = a.ID
	}

	results, err := d.submitter.SubmitBatch(ctx, batch)
	switch {
	case errors.Is(err, offline.ErrAuthRequired):
		slog.Warn("Sync needs re-authentication", "queued", len(valid))
		d.notify(offline.NotificationAuthNeeded, expired)
		return Outcome{Kind: OutcomeAuthNeeded, Expired: expired, Processed: []string{}, Remaining: len(valid)}, nil
	case errors.Is(err, offline.ErrServerRejected):
		out := Outcome{Kind: OutcomeDeferred, Expired: expired, Processed: []string{}, Remaining: len(valid)}
		var statusErr interface{ HTTPStatus() int }
		if errors.As(err, &statusErr) {
			out.Status = statusErr.HTTPStatus()
		}
		slog.Warn("Sync deferred by server", "error", err, "queued", len(valid))
		return out, nil
	case err != nil:
		return Outcome{Kind: OutcomeDeferred, Expired: expired, Processed: []string{}, Remaining: len(valid)}, fmt.Errorf("submit batch: %w", err)
	}

	processed := make([]string, 0, len(results))
	for i := range results {
		if i >= len(valid) {
			break
		}
		id := valid[i].ID
		if err := d.queue.Remove(ctx, id); err != nil {
			// Left queued; resubmitting yields a business rejection at worst
			slog.Error("Failed to remove synced action", "id", id, "error", err)
			continue
		}
		processed = append(processed, id)
	}

	slog.Info("Queued actions synced", "submitted", len(batch), "processed", len(processed))

	d.notify(offline.NotificationSynced, append(append([]string{}, expired...), processed...))
	return Outcome{
		Kind:      OutcomeSynced,
		Expired:   expired,
		Processed: processed,
		Submitted: submitted,
		Results:   results,
		Remaining: len(valid) - len(processed),
	}, nil
}

// sortChronologically orders by clientTimestamp; unparseable ones go last in queue order.
func (d *Dispatcher) sortChronologically(actions []offline.QueuedAction) {
	type keyed struct {
		at time.Time
		ok bool
	}
	keys := make(map[string]keyed, len(actions))
	for _, a := range actions {
		t, ok := shift.ParseClientTimestamp(a.ClientTimestamp, d.location)
		keys[a.ID] = keyed{at: t, ok: ok}
	}

	sort.SliceStable(actions, func(i, j int) bool {
		ki, kj := keys[actions[i].ID], keys[actions[j].ID]
		if ki.ok != kj.ok {
			return ki.ok
		}
		if !ki.ok {
			return actions[i].QueuedAt < actions[j].QueuedAt
		}
		return ki.at.Before(kj.at)
	})
}

func (d *Dispatcher) notify(kind offline.NotificationType, ids []string) {
	if d.publisher == nil {
		return
	}
	if ids == nil {
		ids = []string{}
	}
	d.publisher.Publish(TopicViews, sse.Event{
		Topic: TopicViews,
		Event: string(kind),
		Data:  offline.Notification{Type: kind, ProcessedIDs: ids},
	})
}
