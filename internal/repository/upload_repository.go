package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/apexcreative/clientflow/internal/models"
)

type UploadRepository interface {
	GetByID(ctx context.Context, tx *sql.Tx, id int64) (*models.Upload, bool, error)
	GetPrevious(ctx context.Context, tx *sql.Tx, clientID, seq int64) (*models.Upload, bool, error)
	ListByClientID(ctx context.Context, clientID int64) ([]*models.Upload, error)
	Create(ctx context.Context, upload *models.Upload) (int64, error)
	MarkProcessed(ctx context.Context, id int64, postsCount int) error
	Remove(ctx context.Context, tx *sql.Tx, id int64) error
}

type uploadRepository struct {
	db *sql.DB
}

func NewUploadRepository(db *sql.DB) UploadRepository {
	return &uploadRepository{db: db}
}

const uploadColumns = "id, client_id, seq, filename, original_name, uploaded_by, upload_type, upload_date, processed, posts_count"

func scanUpload(row interface{ Scan(dest ...any) error }) (*models.Upload, error) {
	var u models.Upload
	err := row.Scan(&u.ID, &u.ClientID, &u.Seq, &u.Filename, &u.OriginalName, &u.UploadedByID, &u.UploadType, &u.UploadDate, &u.Processed, &u.PostsCount)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *uploadRepository) GetByID(ctx context.Context, tx *sql.Tx, id int64) (*models.Upload, bool, error) {
	query := "SELECT " + uploadColumns + " FROM uploads WHERE id = $1"
	if tx != nil {
		query += " FOR UPDATE"
	}
	upload, err := scanUpload(runner(r.db, tx).QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return upload, true, nil
}

// GetPrevious returns the upload for the same client with the greatest
// sequence number strictly below seq.
func (r *uploadRepository) GetPrevious(ctx context.Context, tx *sql.Tx, clientID, seq int64) (*models.Upload, bool, error) {
	query := "SELECT " + uploadColumns + " FROM uploads WHERE client_id = $1 AND seq < $2 ORDER BY seq DESC LIMIT 1"
	upload, err := scanUpload(runner(r.db, tx).QueryRowContext(ctx, query, clientID, seq))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return upload, true, nil
}

func (r *uploadRepository) ListByClientID(ctx context.Context, clientID int64) ([]*models.Upload, error) {
	query := "SELECT " + uploadColumns + " FROM uploads WHERE client_id = $1 ORDER BY seq DESC"
	rows, err := r.db.QueryContext(ctx, query, clientID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var uploads []*models.Upload
	for rows.Next() {
		upload, err := scanUpload(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		uploads = append(uploads, upload)
	}
	return uploads, rows.Err()
}

// Create inserts the upload and assigns the next per-client sequence number
// in the same statement, so two concurrent imports for one client can never
// claim the same position in the chain.
func (r *uploadRepository) Create(ctx context.Context, upload *models.Upload) (int64, error) {
	query := `
		INSERT INTO uploads (client_id, seq, filename, original_name, uploaded_by, upload_type)
		VALUES ($1, (SELECT COALESCE(MAX(seq), 0) + 1 FROM uploads WHERE client_id = $1), $2, $3, $4, $5)
		RETURNING id, seq, upload_date
	`

	err := r.db.QueryRowContext(ctx, query, upload.ClientID, upload.Filename, upload.OriginalName, upload.UploadedByID, upload.UploadType).
		Scan(&upload.ID, &upload.Seq, &upload.UploadDate)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return upload.ID, nil
}

func (r *uploadRepository) MarkProcessed(ctx context.Context, id int64, postsCount int) error {
	query := `
		UPDATE uploads
		SET processed = true,
			posts_count = $1
		WHERE id = $2
	`
	_, err := r.db.ExecContext(ctx, query, postsCount, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *uploadRepository) Remove(ctx context.Context, tx *sql.Tx, id int64) error {
	query := `DELETE FROM uploads WHERE id = $1`
	_, err := runner(r.db, tx).ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
