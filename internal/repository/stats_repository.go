package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/apexcreative/clientflow/internal/models"
)

type StatsRepository interface {
	GetByClientID(ctx context.Context, clientID int64) (*models.ClientStats, bool, error)
	Refresh(ctx context.Context, clientID int64) error
}

type statsRepository struct {
	db *sql.DB
}

func NewStatsRepository(db *sql.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) GetByClientID(ctx context.Context, clientID int64) (*models.ClientStats, bool, error) {
	var s models.ClientStats
	query := `
		SELECT client_id, total_posts, pending_posts, approved_posts, rejected_posts, published_posts, total_impressions, current_followers, updated_at
		FROM client_stats WHERE client_id = $1
	`
	err := r.db.QueryRowContext(ctx, query, clientID).
		Scan(&s.ClientID, &s.TotalPosts, &s.PendingPosts, &s.ApprovedPosts, &s.RejectedPosts, &s.PublishedPosts, &s.TotalImpressions, &s.CurrentFollowers, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return &s, true, nil
}

// Refresh recomputes the denormalized counters row for one client in a
// single aggregate query and upserts it.
func (r *statsRepository) Refresh(ctx context.Context, clientID int64) error {
	query := `
		INSERT INTO client_stats (client_id, total_posts, pending_posts, approved_posts, rejected_posts, published_posts, total_impressions, current_followers, updated_at)
		SELECT
			$1,
			(SELECT COUNT(*) FROM posts WHERE client_id = $1),
			(SELECT COUNT(*) FROM posts WHERE client_id = $1 AND status = 'PENDING'),
			(SELECT COUNT(*) FROM posts WHERE client_id = $1 AND status = 'APPROVED'),
			(SELECT COUNT(*) FROM posts WHERE client_id = $1 AND status = 'REJECTED'),
			(SELECT COUNT(*) FROM posts WHERE client_id = $1 AND status = 'PUBLISHED'),
			(SELECT COALESCE(SUM(impressions), 0) FROM tweet_analytics WHERE client_id = $1),
			COALESCE((SELECT followers FROM follower_analytics WHERE client_id = $1 ORDER BY date DESC LIMIT 1), 0),
			now()
		ON CONFLICT (client_id) DO UPDATE
		SET total_posts = EXCLUDED.total_posts,
			pending_posts = EXCLUDED.pending_posts,
			approved_posts = EXCLUDED.approved_posts,
			rejected_posts = EXCLUDED.rejected_posts,
			published_posts = EXCLUDED.published_posts,
			total_impressions = EXCLUDED.total_impressions,
			current_followers = EXCLUDED.current_followers,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query, clientID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
