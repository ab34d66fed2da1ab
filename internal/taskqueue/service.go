package taskqueue

import (
	"context"

	"go.uber.org/zap"

	"github.com/azis003/tick-track/internal/auth"
	"github.com/azis003/tick-track/internal/domain"
	"github.com/azis003/tick-track/internal/events"
)

// TicketSource fetches queue slices from persistence.
type TicketSource interface {
	ListQueue(ctx context.Context, criteria Criteria, limit, offset int) ([]domain.Ticket, error)
	CountQueue(ctx context.Context, criteria Criteria) (int, error)
}

// Service answers "what needs my attention" for a user: the ordered work
// queue and the badge count shown next to it.
type Service struct {
	source TicketSource
	cache  *CountCache
	logger *zap.Logger
}

// Dependencies bundles service collaborators.
type Dependencies struct {
	Source     TicketSource
	Cache      *CountCache
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewService constructs the queue service. When a dispatcher is supplied the
// service invalidates the acting user's badge count on every ticket event, so
// their badge reflects their own actions immediately; everyone else's catches
// up when the TTL lapses.
func NewService(deps Dependencies) *Service {
	s := &Service{
		source: deps.Source,
		cache:  deps.Cache,
		logger: deps.Logger,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if deps.Dispatcher != nil {
		deps.Dispatcher.Subscribe(events.EventTicketTransitioned, s.onTicketEvent)
		deps.Dispatcher.Subscribe(events.EventTicketCreated, s.onTicketEvent)
	}
	return s
}

// List returns the actor's work queue in display order.
func (s *Service) List(ctx context.Context, actorID int64, caps auth.CapabilitySet, limit, offset int) ([]domain.Ticket, error) {
	return s.source.ListQueue(ctx, ForActor(actorID, caps), limit, offset)
}

// Count returns the actor's badge count, served from cache when fresh.
func (s *Service) Count(ctx context.Context, actorID int64, caps auth.CapabilitySet) (int, error) {
	if count, ok := s.cache.Get(ctx, actorID); ok {
		return count, nil
	}
	count, err := s.source.CountQueue(ctx, ForActor(actorID, caps))
	if err != nil {
		return 0, err
	}
	s.cache.Set(ctx, actorID, count)
	return count, nil
}

func (s *Service) onTicketEvent(ctx context.Context, event events.Event) error {
	if event.ActorID == nil {
		return nil
	}
	if err := s.cache.Invalidate(ctx, *event.ActorID); err != nil {
		s.logger.Warn("queue count invalidation failed",
			zap.Int64("user_id", *event.ActorID), zap.Error(err))
	}
	return nil
}
