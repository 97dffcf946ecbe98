package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/apexcreative/clientflow/internal/models"
)

type DumpRepository interface {
	GetByID(ctx context.Context, id int64) (*models.ContentDump, bool, error)
	ListByClientID(ctx context.Context, clientID int64) ([]*models.ContentDump, error)
	Create(ctx context.Context, dump *models.ContentDump) (int64, error)
	MarkProcessed(ctx context.Context, id int64) error
}

type dumpRepository struct {
	db *sql.DB
}

func NewDumpRepository(db *sql.DB) DumpRepository {
	return &dumpRepository{db: db}
}

func (r *dumpRepository) GetByID(ctx context.Context, id int64) (*models.ContentDump, bool, error) {
	var d models.ContentDump
	query := "SELECT id, client_id, title, body, processed, created_at FROM content_dumps WHERE id = $1"
	err := r.db.QueryRowContext(ctx, query, id).Scan(&d.ID, &d.ClientID, &d.Title, &d.Body, &d.Processed, &d.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return &d, true, nil
}

func (r *dumpRepository) ListByClientID(ctx context.Context, clientID int64) ([]*models.ContentDump, error) {
	query := "SELECT id, client_id, title, body, processed, created_at FROM content_dumps WHERE client_id = $1 ORDER BY created_at DESC"
	rows, err := r.db.QueryContext(ctx, query, clientID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var dumps []*models.ContentDump
	for rows.Next() {
		var d models.ContentDump
		err := rows.Scan(&d.ID, &d.ClientID, &d.Title, &d.Body, &d.Processed, &d.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		dumps = append(dumps, &d)
	}
	return dumps, rows.Err()
}

func (r *dumpRepository) Create(ctx context.Context, dump *models.ContentDump) (int64, error) {
	query := "INSERT INTO content_dumps (client_id, title, body) VALUES ($1, $2, $3) RETURNING id"

	var id int64
	err := r.db.QueryRowContext(ctx, query, dump.ClientID, dump.Title, dump.Body).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *dumpRepository) MarkProcessed(ctx context.Context, id int64) error {
	query := "UPDATE content_dumps SET processed = true WHERE id = $1"
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
