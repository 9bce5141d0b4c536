package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	appoutbox "homestay/internal/app/outbox"
	"homestay/internal/app/uow"
	infraoutbox "homestay/internal/infra/outbox"
)

// Outbox stages records on the memory unit found in the context and makes
// them claimable once that unit commits.
type Outbox struct {
	mu   sync.Mutex
	docs []*infraoutbox.EventDocument
}

func newOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	if unit, ok := uow.FromContext(ctx); ok {
		if u, ok := unit.(*Unit); ok && !u.done {
			u.staged = append(u.staged, record)
			return nil
		}
	}
	o.publish(record)
	return nil
}

func (o *Outbox) Flush(context.Context) error {
	return nil
}

func (o *Outbox) publish(records ...appoutbox.EventRecord) {
	if len(records) == 0 {
		return
	}
	now := time.Now().UTC()
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, rec := range records {
		o.docs = append(o.docs, &infraoutbox.EventDocument{
			ID:          rec.ID,
			Name:        rec.Name,
			Payload:     rec.Payload,
			OccurredAt:  rec.OccurredAt,
			Aggregate:   rec.Aggregate,
			Headers:     maps.Clone(rec.Headers),
			State:       infraoutbox.StateNew,
			NextAttempt: now,
			CreatedAt:   now,
		})
	}
}

func (o *Outbox) Claim(_ context.Context, workerID string) (*infraoutbox.EventDocument, error) {
	now := time.Now().UTC()
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, doc := range o.docs {
		if doc.State != infraoutbox.StateNew && doc.State != infraoutbox.StateFailed {
			continue
		}
		if doc.NextAttempt.After(now) {
			continue
		}
		doc.State = infraoutbox.StateClaimed
		doc.ClaimedBy = workerID
		doc.ClaimedAt = now
		cp := *doc
		return &cp, nil
	}
	return nil, nil
}

func (o *Outbox) MarkSent(_ context.Context, id string) error {
	o.update(id, func(doc *infraoutbox.EventDocument) {
		doc.State = infraoutbox.StateSent
		doc.SentAt = time.Now().UTC()
	})
	return nil
}

func (o *Outbox) MarkFailed(_ context.Context, id string, next time.Time, errMsg string) error {
	o.update(id, func(doc *infraoutbox.EventDocument) {
		doc.State = infraoutbox.StateFailed
		doc.NextAttempt = next
		doc.LastError = errMsg
		doc.Attempts++
	})
	return nil
}

// Documents returns a snapshot of every record in insertion order.
func (o *Outbox) Documents() []infraoutbox.EventDocument {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]infraoutbox.EventDocument, 0, len(o.docs))
	for _, doc := range o.docs {
		out = append(out, *doc)
	}
	return out
}

func (o *Outbox) update(id string, fn func(*infraoutbox.EventDocument)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, doc := range o.docs {
		if doc.ID == id {
			fn(doc)
			return
		}
	}
}

var _ appoutbox.Outbox = (*Outbox)(nil)
var _ infraoutbox.Source = (*Outbox)(nil)
