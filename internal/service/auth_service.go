package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	config "github.com/apexcreative/clientflow/configs"
	"github.com/apexcreative/clientflow/internal/models"
	"github.com/apexcreative/clientflow/internal/repository"
	"github.com/apexcreative/clientflow/internal/transfer"
	"github.com/apexcreative/clientflow/pkg/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.User, error)
	GoogleLoginCallback(ctx context.Context, code string) (*models.User, error)
}

type authService struct {
	cfg config.Config
	u   repository.UserRepository
}

func NewAuthService(cfg config.Config, u repository.UserRepository) AuthService {
	return &authService{
		cfg: cfg,
		u:   u,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		err := errors.New("email and password are required")
		slog.Info(err.Error())
		return nil, err
	}

	user, isExist, err := s.u.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !isExist || user.PasswordHash == "" {
		return nil, errors.New("invalid credentials")
	}

	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, errors.New("invalid credentials")
	}

	return user, nil
}

func (s *authService) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.cfg.GoogleClientID,
		ClientSecret: s.cfg.GoogleClientSecret,
		RedirectURL:  s.cfg.GoogleRedirectURI,
		Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
		Endpoint:     google.Endpoint,
	}
}

// GoogleLoginCallback exchanges the authorization code and matches the Google
// account against an existing user by email. There is no self-signup: accounts
// are provisioned by the agency, so an unknown email is rejected.
func (s *authService) GoogleLoginCallback(ctx context.Context, code string) (*models.User, error) {
	if code == "" {
		err := errors.New("authorization code is empty")
		slog.Info(err.Error())
		return nil, err
	}

	oauth2Config := s.oauth2Config()
	if oauth2Config.ClientID == "" || oauth2Config.ClientSecret == "" {
		err := errors.New("OAuth2 configuration is incomplete")
		slog.Info(err.Error())
		return nil, err
	}

	token, err := oauth2Config.Exchange(ctx, code)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	client := oauth2Config.Client(ctx, token)
	userInfo, err := getGoogleUserInfo(client)
	if err != nil {
		return nil, err
	}

	user, isExist, err := s.u.GetByEmail(ctx, userInfo.Email)
	if err != nil {
		return nil, err
	}
	if !isExist {
		err = errors.New("no account exists for this Google email")
		slog.Info(err.Error())
		return nil, err
	}

	if user.GoogleID == "" {
		user.GoogleID = userInfo.ID
		if err := s.u.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	return user, nil
}

func getGoogleUserInfo(client *http.Client) (*transfer.GoogleUserInfo, error) {
	userInfoURL := "https://www.googleapis.com/oauth2/v1/userinfo"

	response, err := client.Get(userInfoURL)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("error fetching user info: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		slog.Info("Unexpected response status")
		return nil, fmt.Errorf("unexpected response status: %d", response.StatusCode)
	}

	var userInfo transfer.GoogleUserInfo
	if err := json.NewDecoder(response.Body).Decode(&userInfo); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("error decoding user info: %w", err)
	}

	return &userInfo, nil
}
