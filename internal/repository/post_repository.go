package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/apexcreative/clientflow/internal/models"
	"github.com/lib/pq"
)

type PostRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Post, bool, error)
	GetByTypefullyURL(ctx context.Context, clientID int64, url string) (*models.Post, bool, error)
	ListByClientID(ctx context.Context, tx *sql.Tx, clientID int64) ([]*models.Post, error)
	ListByClientIDAndStatus(ctx context.Context, clientID int64, status string) ([]*models.Post, error)
	ListOverdueApproved(ctx context.Context, before time.Time) ([]*models.Post, error)
	Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error)
	Update(ctx context.Context, post *models.Post) error
	UpdateStatus(ctx context.Context, status, feedback string, postID int64) error
	SetPublished(ctx context.Context, postID int64, publishedAt time.Time) error
	AppendMedia(ctx context.Context, postID int64, url string) error
	ReassignUpload(ctx context.Context, tx *sql.Tx, postID int64, uploadID *int64) error
	Remove(ctx context.Context, tx *sql.Tx, id int64) error
	RemoveByClientID(ctx context.Context, tx *sql.Tx, clientID int64) (int64, error)
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = "id, client_id, upload_id, typefully_url, content, status, feedback, media, scheduled_date, published_date, created_at, updated_at"

func scanPost(row interface{ Scan(dest ...any) error }) (*models.Post, error) {
	var p models.Post
	err := row.Scan(&p.ID, &p.ClientID, &p.UploadID, &p.TypefullyURL, &p.Content, &p.Status, &p.Feedback, pq.Array(&p.Media), &p.ScheduledDate, &p.PublishedDate, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*models.Post, bool, error) {
	query := "SELECT " + postColumns + " FROM posts WHERE id = $1"
	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return post, true, nil
}

func (r *postRepository) GetByTypefullyURL(ctx context.Context, clientID int64, url string) (*models.Post, bool, error) {
	query := "SELECT " + postColumns + " FROM posts WHERE client_id = $1 AND typefully_url = $2"
	post, err := scanPost(r.db.QueryRowContext(ctx, query, clientID, url))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return post, true, nil
}

func (r *postRepository) ListByClientID(ctx context.Context, tx *sql.Tx, clientID int64) ([]*models.Post, error) {
	query := "SELECT " + postColumns + " FROM posts WHERE client_id = $1 ORDER BY created_at DESC"
	if tx != nil {
		query += " FOR UPDATE"
	}
	return r.list(ctx, runner(r.db, tx), query, clientID)
}

func (r *postRepository) ListByClientIDAndStatus(ctx context.Context, clientID int64, status string) ([]*models.Post, error) {
	query := "SELECT " + postColumns + " FROM posts WHERE client_id = $1 AND status = $2 ORDER BY created_at DESC"
	return r.list(ctx, r.db, query, clientID, status)
}

func (r *postRepository) ListOverdueApproved(ctx context.Context, before time.Time) ([]*models.Post, error) {
	query := "SELECT " + postColumns + " FROM posts WHERE status = $1 AND scheduled_date IS NOT NULL AND scheduled_date <= $2"
	return r.list(ctx, r.db, query, models.PostStatusApproved, before)
}

func (r *postRepository) list(ctx context.Context, run dbtx, query string, args ...any) ([]*models.Post, error) {
	rows, err := run.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (r *postRepository) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	query := `
		INSERT INTO posts (client_id, upload_id, typefully_url, content, status, feedback, media, scheduled_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	var id int64
	err := runner(r.db, tx).QueryRowContext(ctx, query, post.ClientID, post.UploadID, post.TypefullyURL, post.Content, post.Status, post.Feedback, pq.Array(post.Media), post.ScheduledDate).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	query := `
		UPDATE posts
		SET upload_id = $1,
			content = $2,
			scheduled_date = $3,
			updated_at = $4
		WHERE id = $5
	`
	_, err := r.db.ExecContext(ctx, query, post.UploadID, post.Content, post.ScheduledDate, time.Now(), post.ID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) UpdateStatus(ctx context.Context, status, feedback string, postID int64) error {
	query := `
		UPDATE posts
		SET status = $1,
			feedback = $2,
			updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, status, feedback, time.Now(), postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) SetPublished(ctx context.Context, postID int64, publishedAt time.Time) error {
	query := `
		UPDATE posts
		SET status = $1,
			published_date = $2,
			updated_at = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, models.PostStatusPublished, publishedAt, postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) AppendMedia(ctx context.Context, postID int64, url string) error {
	query := `
		UPDATE posts
		SET media = array_append(media, $1),
			updated_at = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, url, time.Now(), postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) ReassignUpload(ctx context.Context, tx *sql.Tx, postID int64, uploadID *int64) error {
	query := `
		UPDATE posts
		SET upload_id = $1,
			updated_at = $2
		WHERE id = $3
	`
	_, err := runner(r.db, tx).ExecContext(ctx, query, uploadID, time.Now(), postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) Remove(ctx context.Context, tx *sql.Tx, id int64) error {
	query := `DELETE FROM posts WHERE id = $1`
	_, err := runner(r.db, tx).ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) RemoveByClientID(ctx context.Context, tx *sql.Tx, clientID int64) (int64, error) {
	query := `DELETE FROM posts WHERE client_id = $1`
	res, err := runner(r.db, tx).ExecContext(ctx, query, clientID)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return count, nil
}
