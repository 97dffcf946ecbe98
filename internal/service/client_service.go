package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/apexcreative/clientflow/internal/models"
	"github.com/apexcreative/clientflow/internal/repository"
	"github.com/apexcreative/clientflow/internal/transfer"
)

var ErrClientNotFound = errors.New("client doesn't exist")

type ClientService interface {
	List(ctx context.Context, userID int64, role models.Role) ([]*models.Client, error)
	GetInfo(ctx context.Context, userID int64, role models.Role, clientID int64) (*models.Client, error)
	CanAccess(ctx context.Context, userID int64, role models.Role, clientID int64) (bool, error)
	Create(ctx context.Context, agencyID int64, cc *transfer.ClientCreation) (int64, error)
	Update(ctx context.Context, userID int64, role models.Role, clientID int64, cc *transfer.ClientCreation) error
	Remove(ctx context.Context, userID int64, role models.Role, clientID int64) error
	Stats(ctx context.Context, userID int64, role models.Role, clientID int64) (*models.ClientStats, error)
}

type clientService struct {
	cr repository.ClientRepository
	ur repository.UserRepository
	st StatsService
}

func NewClientService(cr repository.ClientRepository, ur repository.UserRepository, st StatsService) ClientService {
	return &clientService{
		cr: cr,
		ur: ur,
		st: st,
	}
}

func (s *clientService) List(ctx context.Context, userID int64, role models.Role) ([]*models.Client, error) {
	switch role {
	case models.RoleAdmin:
		return s.cr.ListAll(ctx)
	case models.RoleAgency:
		return s.cr.ListByAgencyID(ctx, userID)
	case models.RoleClient:
		user, isExist, err := s.ur.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if !isExist || user.ClientID == nil {
			return nil, nil
		}
		client, isExist, err := s.cr.GetByID(ctx, *user.ClientID)
		if err != nil {
			return nil, err
		}
		if !isExist {
			return nil, nil
		}
		return []*models.Client{client}, nil
	}
	return nil, nil
}

// CanAccess reports whether the caller may read data scoped to the client.
func (s *clientService) CanAccess(ctx context.Context, userID int64, role models.Role, clientID int64) (bool, error) {
	switch role {
	case models.RoleAdmin:
		return true, nil
	case models.RoleAgency:
		return s.cr.CheckByAgencyID(ctx, clientID, userID)
	case models.RoleClient:
		user, isExist, err := s.ur.GetByID(ctx, userID)
		if err != nil {
			return false, err
		}
		if !isExist || user.ClientID == nil {
			return false, nil
		}
		return *user.ClientID == clientID, nil
	}
	return false, nil
}

func (s *clientService) GetInfo(ctx context.Context, userID int64, role models.Role, clientID int64) (*models.Client, error) {
	allowed, err := s.CanAccess(ctx, userID, role, clientID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrClientNotFound
	}

	client, isExist, err := s.cr.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !isExist {
		return nil, ErrClientNotFound
	}
	return client, nil
}

func (s *clientService) Create(ctx context.Context, agencyID int64, cc *transfer.ClientCreation) (int64, error) {
	if cc.Name == "" {
		err := errors.New("client name cannot be empty")
		slog.Info(err.Error())
		return 0, err
	}

	client := models.Client{
		AgencyID: agencyID,
		Name:     cc.Name,
		Handle:   cc.Handle,
		Timezone: cc.Timezone,
	}

	id, err := s.cr.Create(ctx, &client)
	if err != nil {
		return 0, fmt.Errorf("error creating client: %w", err)
	}
	return id, nil
}

func (s *clientService) Update(ctx context.Context, userID int64, role models.Role, clientID int64, cc *transfer.ClientCreation) error {
	client, err := s.GetInfo(ctx, userID, role, clientID)
	if err != nil {
		return err
	}

	if cc.Name != "" {
		client.Name = cc.Name
	}
	if cc.Handle != "" {
		client.Handle = cc.Handle
	}
	if cc.Timezone != "" {
		client.Timezone = cc.Timezone
	}

	return s.cr.Update(ctx, client)
}

func (s *clientService) Remove(ctx context.Context, userID int64, role models.Role, clientID int64) error {
	if role == models.RoleClient {
		return ErrClientNotFound
	}
	if _, err := s.GetInfo(ctx, userID, role, clientID); err != nil {
		return err
	}
	return s.cr.Remove(ctx, clientID)
}

func (s *clientService) Stats(ctx context.Context, userID int64, role models.Role, clientID int64) (*models.ClientStats, error) {
	if _, err := s.GetInfo(ctx, userID, role, clientID); err != nil {
		return nil, err
	}
	return s.st.Get(ctx, clientID)
}
