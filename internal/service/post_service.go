package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/apexcreative/clientflow/internal/models"
	"github.com/apexcreative/clientflow/internal/repository"
	"github.com/apexcreative/clientflow/internal/transfer"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	ErrPostNotFound      = errors.New("post doesn't exist")
	ErrInvalidTransition = errors.New("status transition is not allowed")
)

type PostService interface {
	List(ctx context.Context, userID int64, role models.Role, clientID int64, status string) ([]*models.Post, error)
	PostInfo(ctx context.Context, userID int64, role models.Role, postID int64) (*models.Post, error)
	Create(ctx context.Context, agencyID int64, pc *transfer.PostCreation) (int64, error)
	Update(ctx context.Context, agencyID int64, postID int64, pu *transfer.PostUpdate) error
	UpdateStatus(ctx context.Context, userID int64, role models.Role, postID int64, su *transfer.StatusUpdate) (*models.Post, time.Duration, error)
	AddMedia(ctx context.Context, agencyID int64, postID int64, file *multipart.FileHeader) (string, error)
	AddComment(ctx context.Context, userID int64, role models.Role, postID int64, body string) (int64, error)
	ListComments(ctx context.Context, userID int64, role models.Role, postID int64) ([]*models.Comment, error)
	Publish(ctx context.Context, postID int64) error
}

type postService struct {
	pr repository.PostRepository
	cm repository.CommentRepository
	cs ClientService
	st StatsService
	r2 ObjectStore
}

func NewPostService(
	pr repository.PostRepository,
	cm repository.CommentRepository,
	cs ClientService,
	st StatsService,
	r2 ObjectStore) PostService {
	return &postService{
		pr: pr,
		cm: cm,
		cs: cs,
		st: st,
		r2: r2,
	}
}

func (s *postService) List(ctx context.Context, userID int64, role models.Role, clientID int64, status string) ([]*models.Post, error) {
	allowed, err := s.cs.CanAccess(ctx, userID, role, clientID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrClientNotFound
	}

	if status != "" {
		return s.pr.ListByClientIDAndStatus(ctx, clientID, status)
	}
	return s.pr.ListByClientID(ctx, nil, clientID)
}

func (s *postService) PostInfo(ctx context.Context, userID int64, role models.Role, postID int64) (*models.Post, error) {
	post, isExist, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !isExist {
		return nil, ErrPostNotFound
	}

	allowed, err := s.cs.CanAccess(ctx, userID, role, post.ClientID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrPostNotFound
	}
	return post, nil
}

func (s *postService) Create(ctx context.Context, agencyID int64, pc *transfer.PostCreation) (int64, error) {
	if pc.Content == "" {
		err := errors.New("content cannot be empty")
		slog.Info(err.Error())
		return 0, err
	}

	allowed, err := s.cs.CanAccess(ctx, agencyID, models.RoleAgency, pc.ClientID)
	if err != nil {
		return 0, err
	}
	if !allowed {
		return 0, ErrClientNotFound
	}

	post := models.Post{
		ClientID:     pc.ClientID,
		TypefullyURL: pc.TypefullyURL,
		Content:      pc.Content,
		Status:       models.PostStatusPending,
	}

	if pc.ScheduledDate != "" {
		scheduled, err := time.Parse("2006-01-02T15:04", pc.ScheduledDate)
		if err != nil {
			err = fmt.Errorf("invalid scheduled date format: %w", err)
			slog.Info(err.Error())
			return 0, err
		}
		post.ScheduledDate = &scheduled
	}

	id, err := s.pr.Create(ctx, nil, &post)
	if err != nil {
		return 0, fmt.Errorf("error creating post: %w", err)
	}

	if err := s.st.Refresh(ctx, pc.ClientID); err != nil {
		slog.Info(err.Error())
	}

	return id, nil
}

func (s *postService) Update(ctx context.Context, agencyID int64, postID int64, pu *transfer.PostUpdate) error {
	post, err := s.PostInfo(ctx, agencyID, models.RoleAgency, postID)
	if err != nil {
		return err
	}

	if post.Status == models.PostStatusPublished {
		err = errors.New("published posts cannot be edited")
		slog.Info(err.Error())
		return err
	}

	if pu.Content != "" {
		post.Content = pu.Content
	}
	if pu.ScheduledDate != "" {
		scheduled, err := time.Parse("2006-01-02T15:04", pu.ScheduledDate)
		if err != nil {
			err = fmt.Errorf("invalid scheduled date format: %w", err)
			slog.Info(err.Error())
			return err
		}
		post.ScheduledDate = &scheduled
	}

	return s.pr.Update(ctx, post)
}

// UpdateStatus applies one review transition. When the result is APPROVED and
// the post carries a scheduled date, the returned delay tells the caller when
// to enqueue the publish task.
func (s *postService) UpdateStatus(ctx context.Context, userID int64, role models.Role, postID int64, su *transfer.StatusUpdate) (*models.Post, time.Duration, error) {
	post, err := s.PostInfo(ctx, userID, role, postID)
	if err != nil {
		return nil, 0, err
	}

	reviewing := su.Status == models.PostStatusApproved ||
		su.Status == models.PostStatusRejected ||
		su.Status == models.PostStatusSuggestChanges
	if reviewing && !role.Can(models.CapReviewPosts) {
		return nil, 0, ErrInvalidTransition
	}
	if su.Status == models.PostStatusPending && !role.Can(models.CapManagePosts) {
		return nil, 0, ErrInvalidTransition
	}

	if !models.ValidTransition(post.Status, su.Status) {
		slog.Info(fmt.Sprintf("rejected transition %s -> %s for post %d", post.Status, su.Status, post.ID))
		return nil, 0, ErrInvalidTransition
	}

	if err := s.pr.UpdateStatus(ctx, su.Status, su.Feedback, post.ID); err != nil {
		return nil, 0, fmt.Errorf("error updating post status: %w", err)
	}
	post.Status = su.Status
	post.Feedback = su.Feedback

	if err := s.st.Refresh(ctx, post.ClientID); err != nil {
		slog.Info(err.Error())
	}

	var delay time.Duration
	if su.Status == models.PostStatusApproved && post.ScheduledDate != nil {
		delay = time.Until(*post.ScheduledDate)
		if delay < 0 {
			delay = 0
		}
	}

	return post, delay, nil
}

func (s *postService) AddMedia(ctx context.Context, agencyID int64, postID int64, file *multipart.FileHeader) (string, error) {
	post, err := s.PostInfo(ctx, agencyID, models.RoleAgency, postID)
	if err != nil {
		return "", err
	}

	fileContent, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("error opening file: %w", err)
	}
	defer fileContent.Close()

	fileBytes, err := io.ReadAll(fileContent)
	if err != nil {
		return "", fmt.Errorf("error reading file content: %w", err)
	}

	allowedTypes := map[string]struct{}{
		"mp4": {}, "mov": {}, "jpeg": {}, "png": {}, "jpg": {},
	}

	fileType, err := filetype.Match(fileBytes)
	if err != nil || fileType == types.Unknown {
		return "", fmt.Errorf("unsupported file type: %w", err)
	}
	if _, ok := allowedTypes[fileType.Extension]; !ok {
		return "", fmt.Errorf("file type %s is not allowed", fileType.Extension)
	}

	key, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	if err := s.r2.Upload(ctx, key, fileBytes, fileType.MIME.Value); err != nil {
		return "", fmt.Errorf("error uploading file: %w", err)
	}

	url := s.r2.PublicURL(key)
	if err := s.pr.AppendMedia(ctx, post.ID, url); err != nil {
		return "", fmt.Errorf("error saving media file: %w", err)
	}

	return url, nil
}

func (s *postService) AddComment(ctx context.Context, userID int64, role models.Role, postID int64, body string) (int64, error) {
	if body == "" {
		err := errors.New("comment body cannot be empty")
		slog.Info(err.Error())
		return 0, err
	}

	post, err := s.PostInfo(ctx, userID, role, postID)
	if err != nil {
		return 0, err
	}

	comment := models.Comment{
		PostID:   post.ID,
		AuthorID: userID,
		Body:     body,
	}
	id, err := s.cm.Create(ctx, &comment)
	if err != nil {
		return 0, fmt.Errorf("error saving comment: %w", err)
	}
	return id, nil
}

func (s *postService) ListComments(ctx context.Context, userID int64, role models.Role, postID int64) ([]*models.Comment, error) {
	post, err := s.PostInfo(ctx, userID, role, postID)
	if err != nil {
		return nil, err
	}
	return s.cm.ListByPostID(ctx, post.ID)
}

// Publish marks an approved post as published. Posts that were deleted or
// moved out of APPROVED since scheduling are skipped without error.
func (s *postService) Publish(ctx context.Context, postID int64) error {
	post, isExist, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if !isExist || post.Status != models.PostStatusApproved {
		return nil
	}

	if err := s.pr.SetPublished(ctx, post.ID, time.Now()); err != nil {
		return err
	}

	if err := s.st.Refresh(ctx, post.ClientID); err != nil {
		slog.Info(err.Error())
	}
	return nil
}
