package service

import (
	"context"

	"github.com/apexcreative/clientflow/internal/models"
	"github.com/apexcreative/clientflow/internal/repository"
)

// StatsService owns the denormalized per-client counters. Refresh must be
// called after every operation that creates, deletes or re-statuses posts;
// the undo path depends on it as an explicit postcondition.
type StatsService interface {
	Get(ctx context.Context, clientID int64) (*models.ClientStats, error)
	Refresh(ctx context.Context, clientID int64) error
}

type statsService struct {
	sr repository.StatsRepository
}

func NewStatsService(sr repository.StatsRepository) StatsService {
	return &statsService{sr: sr}
}

func (s *statsService) Get(ctx context.Context, clientID int64) (*models.ClientStats, error) {
	stats, isExist, err := s.sr.GetByClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if !isExist {
		if err := s.sr.Refresh(ctx, clientID); err != nil {
			return nil, err
		}
		stats, _, err = s.sr.GetByClientID(ctx, clientID)
		if err != nil {
			return nil, err
		}
	}

	return stats, nil
}

func (s *statsService) Refresh(ctx context.Context, clientID int64) error {
	return s.sr.Refresh(ctx, clientID)
}
