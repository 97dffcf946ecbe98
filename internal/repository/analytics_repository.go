package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/apexcreative/clientflow/internal/models"
)

type AnalyticsRepository interface {
	UpsertTweet(ctx context.Context, row *models.TweetAnalytics) (created bool, err error)
	UpsertFollower(ctx context.Context, row *models.FollowerAnalytics) (created bool, err error)
	ListTweetsByClientID(ctx context.Context, clientID int64) ([]*models.TweetAnalytics, error)
	ListFollowersByClientID(ctx context.Context, clientID int64) ([]*models.FollowerAnalytics, error)
}

type analyticsRepository struct {
	db *sql.DB
}

func NewAnalyticsRepository(db *sql.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

// nullableTime maps the zero time to SQL NULL so exports without a date
// column fall back to the table default instead of 0001-01-01.
func nullableTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func (r *analyticsRepository) UpsertTweet(ctx context.Context, row *models.TweetAnalytics) (bool, error) {
	query := `
		INSERT INTO tweet_analytics (client_id, tweet_url, date, impressions, likes, retweets, replies, bookmarks, engagements)
		VALUES ($1, $2, COALESCE($3, now()), $4, $5, $6, $7, $8, $9)
		ON CONFLICT (client_id, tweet_url) DO UPDATE
		SET date = COALESCE($3, tweet_analytics.date),
			impressions = EXCLUDED.impressions,
			likes = EXCLUDED.likes,
			retweets = EXCLUDED.retweets,
			replies = EXCLUDED.replies,
			bookmarks = EXCLUDED.bookmarks,
			engagements = EXCLUDED.engagements,
			updated_at = now()
		RETURNING id, (created_at = updated_at)
	`

	var created bool
	err := r.db.QueryRowContext(ctx, query, row.ClientID, row.TweetURL, nullableTime(row.Date), row.Impressions, row.Likes, row.Retweets, row.Replies, row.Bookmarks, row.Engagements).
		Scan(&row.ID, &created)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return created, nil
}

func (r *analyticsRepository) UpsertFollower(ctx context.Context, row *models.FollowerAnalytics) (bool, error) {
	query := `
		INSERT INTO follower_analytics (client_id, date, followers, following)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (client_id, date) DO UPDATE
		SET followers = EXCLUDED.followers,
			following = EXCLUDED.following,
			updated_at = now()
		RETURNING id, (created_at = updated_at)
	`

	var created bool
	err := r.db.QueryRowContext(ctx, query, row.ClientID, row.Date, row.Followers, row.Following).
		Scan(&row.ID, &created)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return created, nil
}

func (r *analyticsRepository) ListTweetsByClientID(ctx context.Context, clientID int64) ([]*models.TweetAnalytics, error) {
	query := `
		SELECT id, client_id, tweet_url, date, impressions, likes, retweets, replies, bookmarks, engagements, created_at, updated_at
		FROM tweet_analytics WHERE client_id = $1 ORDER BY date DESC
	`
	rows, err := r.db.QueryContext(ctx, query, clientID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var result []*models.TweetAnalytics
	for rows.Next() {
		var t models.TweetAnalytics
		err := rows.Scan(&t.ID, &t.ClientID, &t.TweetURL, &t.Date, &t.Impressions, &t.Likes, &t.Retweets, &t.Replies, &t.Bookmarks, &t.Engagements, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		result = append(result, &t)
	}
	return result, rows.Err()
}

func (r *analyticsRepository) ListFollowersByClientID(ctx context.Context, clientID int64) ([]*models.FollowerAnalytics, error) {
	query := `
		SELECT id, client_id, date, followers, following, created_at, updated_at
		FROM follower_analytics WHERE client_id = $1 ORDER BY date DESC
	`
	rows, err := r.db.QueryContext(ctx, query, clientID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var result []*models.FollowerAnalytics
	for rows.Next() {
		var f models.FollowerAnalytics
		err := rows.Scan(&f.ID, &f.ClientID, &f.Date, &f.Followers, &f.Following, &f.CreatedAt, &f.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		result = append(result, &f)
	}
	return result, rows.Err()
}
