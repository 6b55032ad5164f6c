package membership

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/promptdeck/promptdeck/internal/model"
	"github.com/promptdeck/promptdeck/internal/repository"
)

const cacheKeyPrefix = "membership:user:"

// Service is the read path for entitlement gating. It answers "is this user
// pro" and nothing else. Fail-closed on entitlement, fail-safe on
// availability: a missing row, a storage error or a cache error all read as
// free, never as an error to the caller.
type Service struct {
	customers repository.CustomersRepository
	rds       *redis.Client // optional; nil disables caching
	ttl       time.Duration
	log       *zap.Logger
}

func New(customers repository.CustomersRepository, rds *redis.Client, ttl time.Duration, log *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{customers: customers, rds: rds, ttl: ttl, log: log}
}

// Get returns the user's membership, reading through the cache.
func (s *Service) Get(ctx context.Context, userID string) model.Membership {
	if userID == "" {
		return model.MembershipFree
	}

	if s.rds != nil {
		if cached, err := s.rds.Get(ctx, cacheKeyPrefix+userID).Result(); err == nil {
			if m, ok := model.ParseMembership(cached); ok {
				return m
			}
		}
	}

	cust, err := s.customers.GetByUserID(ctx, userID)
	if err != nil {
		s.log.Warn("membership read failed, defaulting to free",
			zap.String("user_id", userID), zap.Error(err))
		return model.MembershipFree
	}

	m := model.MembershipFree
	if cust != nil {
		m = cust.Membership
	}

	if s.rds != nil {
		if err := s.rds.Set(ctx, cacheKeyPrefix+userID, m.String(), s.ttl).Err(); err != nil {
			s.log.Debug("membership cache set failed", zap.Error(err))
		}
	}
	return m
}

func (s *Service) IsPro(ctx context.Context, userID string) bool {
	return s.Get(ctx, userID) == model.MembershipPro
}

// Invalidate drops the cached membership after reconciliation writes.
func (s *Service) Invalidate(ctx context.Context, userID string) {
	if s.rds == nil || userID == "" {
		return
	}
	if err := s.rds.Del(ctx, cacheKeyPrefix+userID).Err(); err != nil {
		s.log.Debug("membership cache invalidate failed", zap.Error(err))
	}
}
