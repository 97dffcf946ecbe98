package service

import (
	"context"

	"github.com/apexcreative/clientflow/internal/models"
	"github.com/apexcreative/clientflow/internal/repository"
)

type AnalyticsService interface {
	Tweets(ctx context.Context, userID int64, role models.Role, clientID int64) ([]*models.TweetAnalytics, error)
	Followers(ctx context.Context, userID int64, role models.Role, clientID int64) ([]*models.FollowerAnalytics, error)
}

type analyticsService struct {
	ar repository.AnalyticsRepository
	cs ClientService
}

func NewAnalyticsService(ar repository.AnalyticsRepository, cs ClientService) AnalyticsService {
	return &analyticsService{
		ar: ar,
		cs: cs,
	}
}

func (s *analyticsService) Tweets(ctx context.Context, userID int64, role models.Role, clientID int64) ([]*models.TweetAnalytics, error) {
	allowed, err := s.cs.CanAccess(ctx, userID, role, clientID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrClientNotFound
	}
	return s.ar.ListTweetsByClientID(ctx, clientID)
}

func (s *analyticsService) Followers(ctx context.Context, userID int64, role models.Role, clientID int64) ([]*models.FollowerAnalytics, error) {
	allowed, err := s.cs.CanAccess(ctx, userID, role, clientID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrClientNotFound
	}
	return s.ar.ListFollowersByClientID(ctx, clientID)
}
