package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/IBM/sarama"

	"homestay/internal/app/dto"
	reviewhandlers "homestay/internal/app/handlers/reviews"
	domainreviews "homestay/internal/domain/reviews"
	domainuser "homestay/internal/domain/user"
	"homestay/internal/infra/inbox"
)

type RatingRecomputer interface {
	Handle(ctx context.Context, cmd reviewhandlers.RecomputeRatingCommand) (*dto.RatingSummary, error)
}

// RatingReconciler recomputes a property's rating whenever a
// review.submitted event arrives. Recomputation is idempotent, so
// redeliveries that slip past the inbox are harmless.
type RatingReconciler struct {
	Recompute RatingRecomputer
	Inbox     inbox.Inbox
	Logger    *slog.Logger
}

type cloudEvent struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Subject string          `json:"subject"`
	Data    json.RawMessage `json:"data"`
}

func (r *RatingReconciler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var evt cloudEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		if r.Logger != nil {
			r.Logger.Warn("dropping malformed event", "topic", msg.Topic, "offset", msg.Offset, "error", err)
		}
		return nil
	}
	if strings.TrimSuffix(evt.Type, ".v1") != domainreviews.EventSubmitted {
		return nil
	}
	var data struct {
		PropertyID string `json:"property_id"`
	}
	if err := json.Unmarshal(evt.Data, &data); err != nil || data.PropertyID == "" {
		if r.Logger != nil {
			r.Logger.Warn("review event without property", "event_id", evt.ID)
		}
		return nil
	}

	if r.Inbox != nil && evt.ID != "" {
		seen, err := r.Inbox.Seen(ctx, evt.ID)
		if err != nil {
			return err
		}
		if seen {
			return nil
		}
	}
	summary, err := r.Recompute.Handle(ctx, reviewhandlers.RecomputeRatingCommand{
		PropertyID: data.PropertyID,
		Role:       domainuser.RoleAdmin,
	})
	if err != nil {
		if r.Inbox != nil && evt.ID != "" {
			_ = r.Inbox.Forget(ctx, evt.ID)
		}
		return fmt.Errorf("recompute rating for %s: %w", data.PropertyID, err)
	}
	if r.Logger != nil {
		r.Logger.Debug("rating reconciled", "property_id", summary.PropertyID, "average_rating", summary.AverageRating, "num_reviews", summary.NumReviews)
	}
	return nil
}

var _ MessageHandler = (*RatingReconciler)(nil)
