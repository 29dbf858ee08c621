package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ticketmail/ticketmail/internal/database"
	"github.com/ticketmail/ticketmail/internal/logger"
	"github.com/ticketmail/ticketmail/internal/model"
	"github.com/ticketmail/ticketmail/internal/repository"
)

// subscriberStore is the persistence surface SubscriberService needs.
type subscriberStore interface {
	Upsert(ctx context.Context, email string, deviceID *string) (*model.Subscriber, bool, bool, error)
	GetByID(ctx context.Context, id int64, deviceID *string) (*model.Subscriber, error)
	GetByEmail(ctx context.Context, email string) (*model.Subscriber, error)
	ListActive(ctx context.Context, deviceID *string) ([]*model.Subscriber, error)
	Update(ctx context.Context, id int64, deviceID *string, upd repository.SubscriberUpdate) (*model.Subscriber, error)
	DeactivateByID(ctx context.Context, id int64, deviceID *string) (*model.Subscriber, error)
	DeactivateByEmail(ctx context.Context, email string) (*model.Subscriber, error)
}

// UpdateSubscriberRequest is the payload for a partial subscriber update.
type UpdateSubscriberRequest struct {
	Email    *string `json:"email"`
	IsActive *bool   `json:"is_active"`
}

const subscriberCacheTTL = 30 * time.Second

// SubscriberService manages the deduplicated subscriber list. The
// active listing is served through a best-effort Redis cache; cache
// failures are logged and otherwise invisible to callers.
type SubscriberService struct {
	subscribers subscriberStore
	cache       *database.Redis
	log         *logger.Logger
}

// NewSubscriberService creates a new SubscriberService. cache may be
// nil, in which case every listing hits the database.
func NewSubscriberService(subscribers subscriberStore, cache *database.Redis, log *logger.Logger) *SubscriberService {
	return &SubscriberService{
		subscribers: subscribers,
		cache:       cache,
		log:         log.WithComponent("subscriber"),
	}
}

// Upsert creates a subscriber, reactivates an inactive one, or returns
// the existing active row unchanged. created reports whether a new row
// was inserted.
func (s *SubscriberService) Upsert(ctx context.Context, email string, deviceID *string) (*model.Subscriber, bool, error) {
	if email == "" {
		return nil, false, fmt.Errorf("%w: email field is required", ErrValidation)
	}
	sub, created, reactivated, err := s.subscribers.Upsert(ctx, email, deviceID)
	if err != nil {
		return nil, false, err
	}
	if created || reactivated {
		s.invalidate(ctx, deviceID)
	}
	return sub, created, nil
}

// ListActive returns active subscribers, newest first.
func (s *SubscriberService) ListActive(ctx context.Context, deviceID *string) ([]*model.Subscriber, error) {
	key := cacheKey(deviceID)
	if s.cache != nil {
		if raw, err := s.cache.GetString(ctx, key); err == nil {
			var subs []*model.Subscriber
			if err := json.Unmarshal([]byte(raw), &subs); err == nil {
				return subs, nil
			}
		}
	}

	subs, err := s.subscribers.ListActive(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(subs); err == nil {
			if err := s.cache.SetWithTTL(ctx, key, raw, subscriberCacheTTL); err != nil {
				s.log.Debug().Err(err).Msg("subscriber cache write failed")
			}
		}
	}
	return subs, nil
}

// Get returns one subscriber by ID within the device scope.
func (s *SubscriberService) Get(ctx context.Context, id int64, deviceID *string) (*model.Subscriber, error) {
	return s.subscribers.GetByID(ctx, id, deviceID)
}

// GetByEmail returns one subscriber by address, ignoring device scope.
func (s *SubscriberService) GetByEmail(ctx context.Context, email string) (*model.Subscriber, error) {
	return s.subscribers.GetByEmail(ctx, email)
}

// Update applies a partial update to a subscriber.
func (s *SubscriberService) Update(ctx context.Context, id int64, deviceID *string, req UpdateSubscriberRequest) (*model.Subscriber, error) {
	if req.Email != nil && *req.Email == "" {
		return nil, fmt.Errorf("%w: email must not be empty", ErrValidation)
	}
	sub, err := s.subscribers.Update(ctx, id, deviceID, repository.SubscriberUpdate{
		Email:    req.Email,
		IsActive: req.IsActive,
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, sub.DeviceID)
	return sub, nil
}

// Deactivate soft-deletes a subscriber by ID within the device scope.
func (s *SubscriberService) Deactivate(ctx context.Context, id int64, deviceID *string) (*model.Subscriber, error) {
	sub, err := s.subscribers.DeactivateByID(ctx, id, deviceID)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, sub.DeviceID)
	return sub, nil
}

// Unsubscribe soft-deletes a subscriber by address. Any device may
// unsubscribe any address; this backs the public unsubscribe link.
func (s *SubscriberService) Unsubscribe(ctx context.Context, email string) (*model.Subscriber, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email field is required", ErrValidation)
	}
	sub, err := s.subscribers.DeactivateByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, sub.DeviceID)
	return sub, nil
}

// invalidate drops the cached listings touched by a mutation: the
// mutated device's scope plus the unscoped listing.
func (s *SubscriberService) invalidate(ctx context.Context, deviceID *string) {
	if s.cache == nil {
		return
	}
	keys := []string{cacheKey(nil)}
	if deviceID != nil {
		keys = append(keys, cacheKey(deviceID))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.Debug().Err(err).Msg("subscriber cache invalidation failed")
	}
}

func cacheKey(deviceID *string) string {
	if deviceID == nil {
		return "subscribers:active:all"
	}
	return "subscribers:active:" + *deviceID
}
