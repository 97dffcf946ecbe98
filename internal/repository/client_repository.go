package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/apexcreative/clientflow/internal/models"
)

type ClientRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Client, bool, error)
	ListAll(ctx context.Context) ([]*models.Client, error)
	ListByAgencyID(ctx context.Context, agencyID int64) ([]*models.Client, error)
	CheckByAgencyID(ctx context.Context, clientID, agencyID int64) (bool, error)
	Create(ctx context.Context, client *models.Client) (int64, error)
	Update(ctx context.Context, client *models.Client) error
	Remove(ctx context.Context, id int64) error
}

type clientRepository struct {
	db *sql.DB
}

func NewClientRepository(db *sql.DB) ClientRepository {
	return &clientRepository{db: db}
}

const clientColumns = "id, agency_id, name, handle, timezone, created_at, updated_at"

func scanClient(row interface{ Scan(dest ...any) error }) (*models.Client, error) {
	var c models.Client
	err := row.Scan(&c.ID, &c.AgencyID, &c.Name, &c.Handle, &c.Timezone, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *clientRepository) GetByID(ctx context.Context, id int64) (*models.Client, bool, error) {
	query := "SELECT " + clientColumns + " FROM clients WHERE id = $1"
	client, err := scanClient(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return client, true, nil
}

func (r *clientRepository) ListAll(ctx context.Context) ([]*models.Client, error) {
	query := "SELECT " + clientColumns + " FROM clients ORDER BY name"
	return r.list(ctx, query)
}

func (r *clientRepository) ListByAgencyID(ctx context.Context, agencyID int64) ([]*models.Client, error) {
	query := "SELECT " + clientColumns + " FROM clients WHERE agency_id = $1 ORDER BY name"
	return r.list(ctx, query, agencyID)
}

func (r *clientRepository) list(ctx context.Context, query string, args ...any) ([]*models.Client, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		clients = append(clients, client)
	}
	return clients, rows.Err()
}

func (r *clientRepository) CheckByAgencyID(ctx context.Context, clientID, agencyID int64) (bool, error) {
	query := "SELECT 1 FROM clients WHERE id = $1 AND agency_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, clientID, agencyID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}
	return result == 1, nil
}

func (r *clientRepository) Create(ctx context.Context, client *models.Client) (int64, error) {
	query := "INSERT INTO clients (agency_id, name, handle, timezone) VALUES ($1, $2, $3, $4) RETURNING id"

	var id int64
	err := r.db.QueryRowContext(ctx, query, client.AgencyID, client.Name, client.Handle, client.Timezone).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *clientRepository) Update(ctx context.Context, client *models.Client) error {
	query := `
		UPDATE clients
		SET name = $1,
			handle = $2,
			timezone = $3,
			updated_at = $4
		WHERE id = $5
	`
	_, err := r.db.ExecContext(ctx, query, client.Name, client.Handle, client.Timezone, time.Now(), client.ID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *clientRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM clients WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
