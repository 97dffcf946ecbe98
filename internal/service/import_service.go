package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"strings"
	"time"

	"github.com/apexcreative/clientflow/internal/models"
	"github.com/apexcreative/clientflow/internal/repository"
	"github.com/apexcreative/clientflow/internal/transfer"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ImportService turns one uploaded CSV/XLSX file into post and analytics
// rows for a client, recording the import as an Upload so it can later be
// reversed. Contract for the undo reconciliation: a row producing a new post
// gets created_at = now and upload_id = the new upload; a row matching an
// existing post (by its typefully URL) updates mutable fields and reassigns
// upload_id, leaving created_at untouched.
type ImportService interface {
	HandleUpload(ctx context.Context, agencyID, clientID int64, uploadType string, file *multipart.FileHeader) (*transfer.ImportResult, error)
}

type importService struct {
	ur repository.UploadRepository
	pr repository.PostRepository
	ar repository.AnalyticsRepository
	cr repository.ClientRepository
	st StatsService
	r2 ObjectStore
}

func NewImportService(
	ur repository.UploadRepository,
	pr repository.PostRepository,
	ar repository.AnalyticsRepository,
	cr repository.ClientRepository,
	st StatsService,
	r2 ObjectStore) ImportService {
	return &importService{
		ur: ur,
		pr: pr,
		ar: ar,
		cr: cr,
		st: st,
		r2: r2,
	}
}

func (s *importService) HandleUpload(ctx context.Context, agencyID, clientID int64, uploadType string, file *multipart.FileHeader) (*transfer.ImportResult, error) {
	if !models.ValidUploadType(uploadType) {
		err := fmt.Errorf("unknown upload type %q", uploadType)
		slog.Info(err.Error())
		return nil, err
	}

	owned, err := s.cr.CheckByAgencyID(ctx, clientID, agencyID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, ErrClientNotFound
	}

	fileContent, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer fileContent.Close()

	fileBytes, err := io.ReadAll(fileContent)
	if err != nil {
		return nil, fmt.Errorf("error reading file content: %w", err)
	}

	tbl, err := parseTabular(file.Filename, fileBytes)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	key, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	if err := s.r2.Upload(ctx, key, fileBytes, contentTypeFor(file.Filename)); err != nil {
		return nil, fmt.Errorf("error storing raw upload: %w", err)
	}

	upload := models.Upload{
		ClientID:     clientID,
		Filename:     key,
		OriginalName: file.Filename,
		UploadedByID: agencyID,
		UploadType:   uploadType,
	}
	if _, err := s.ur.Create(ctx, &upload); err != nil {
		if removeErr := s.r2.Remove(ctx, key); removeErr != nil {
			slog.Info(removeErr.Error())
		}
		return nil, fmt.Errorf("error recording upload: %w", err)
	}

	var result *transfer.ImportResult
	switch uploadType {
	case models.UploadTypeTweets:
		result, err = s.importTweets(ctx, &upload, tbl)
	case models.UploadTypeFollowers:
		result, err = s.importFollowers(ctx, &upload, tbl)
	case models.UploadTypePosts:
		result, err = s.importPosts(ctx, &upload, tbl)
	}
	if err != nil {
		// best-effort cleanup: drop the upload record and the retained file
		// so a failed import does not appear in the client's upload chain
		if removeErr := s.ur.Remove(ctx, nil, upload.ID); removeErr != nil {
			slog.Error(removeErr.Error())
		}
		if removeErr := s.r2.Remove(ctx, key); removeErr != nil {
			slog.Info(removeErr.Error())
		}
		return nil, err
	}

	if err := s.ur.MarkProcessed(ctx, upload.ID, result.ProcessedRecords); err != nil {
		return nil, err
	}
	if err := s.st.Refresh(ctx, clientID); err != nil {
		slog.Info(err.Error())
	}

	result.UploadID = upload.ID
	return result, nil
}

func (s *importService) importTweets(ctx context.Context, upload *models.Upload, tbl *table) (*transfer.ImportResult, error) {
	urlCol := tbl.columnIndex("tweet url", "url", "link", "tweet link")
	if urlCol < 0 {
		return nil, errors.New("missing tweet URL column")
	}
	dateCol := tbl.columnIndex("date", "created at")
	textCol := tbl.columnIndex("text", "content", "tweet text")
	impressionsCol := tbl.columnIndex("impressions")
	likesCol := tbl.columnIndex("likes")
	retweetsCol := tbl.columnIndex("retweets")
	repliesCol := tbl.columnIndex("replies")
	bookmarksCol := tbl.columnIndex("bookmarks")
	engagementsCol := tbl.columnIndex("engagements")

	var result transfer.ImportResult
	for _, row := range tbl.rows {
		url := cell(row, urlCol)
		if url == "" {
			continue
		}

		analytics := models.TweetAnalytics{
			ClientID:    upload.ClientID,
			TweetURL:    url,
			Impressions: parseCount(cell(row, impressionsCol)),
			Likes:       parseCount(cell(row, likesCol)),
			Retweets:    parseCount(cell(row, retweetsCol)),
			Replies:     parseCount(cell(row, repliesCol)),
			Bookmarks:   parseCount(cell(row, bookmarksCol)),
			Engagements: parseCount(cell(row, engagementsCol)),
		}
		if date := cell(row, dateCol); date != "" {
			parsed, err := parseDate(date)
			if err != nil {
				return nil, err
			}
			analytics.Date = parsed
		}
		if _, err := s.ar.UpsertTweet(ctx, &analytics); err != nil {
			return nil, fmt.Errorf("error saving analytics for %s: %w", url, err)
		}

		created, err := s.upsertPost(ctx, upload, url, cell(row, textCol), models.PostStatusPublished, nil)
		if err != nil {
			return nil, err
		}

		result.ProcessedRecords++
		if created {
			result.NewRecords++
		} else {
			result.UpdatedRecords++
		}
	}
	if result.ProcessedRecords == 0 {
		return nil, errEmptyFile
	}
	return &result, nil
}

func (s *importService) importFollowers(ctx context.Context, upload *models.Upload, tbl *table) (*transfer.ImportResult, error) {
	dateCol := tbl.columnIndex("date", "day")
	if dateCol < 0 {
		return nil, errors.New("missing date column")
	}
	followersCol := tbl.columnIndex("followers", "follower count")
	followingCol := tbl.columnIndex("following")

	var result transfer.ImportResult
	for _, row := range tbl.rows {
		rawDate := cell(row, dateCol)
		if rawDate == "" {
			continue
		}
		date, err := parseDate(rawDate)
		if err != nil {
			return nil, err
		}

		analytics := models.FollowerAnalytics{
			ClientID:  upload.ClientID,
			Date:      date,
			Followers: parseCount(cell(row, followersCol)),
			Following: parseCount(cell(row, followingCol)),
		}
		created, err := s.ar.UpsertFollower(ctx, &analytics)
		if err != nil {
			return nil, fmt.Errorf("error saving follower analytics for %s: %w", rawDate, err)
		}

		result.ProcessedRecords++
		if created {
			result.NewRecords++
		} else {
			result.UpdatedRecords++
		}
	}
	if result.ProcessedRecords == 0 {
		return nil, errEmptyFile
	}
	return &result, nil
}

func (s *importService) importPosts(ctx context.Context, upload *models.Upload, tbl *table) (*transfer.ImportResult, error) {
	urlCol := tbl.columnIndex("url", "typefully url", "link")
	if urlCol < 0 {
		return nil, errors.New("missing URL column")
	}
	contentCol := tbl.columnIndex("content", "text")
	if contentCol < 0 {
		return nil, errors.New("missing content column")
	}
	statusCol := tbl.columnIndex("status")
	scheduleCol := tbl.columnIndex("scheduled date", "scheduled_date", "schedule date")

	var result transfer.ImportResult
	for _, row := range tbl.rows {
		url := cell(row, urlCol)
		if url == "" {
			continue
		}

		status := models.PostStatusPending
		if raw := cell(row, statusCol); raw != "" {
			normalized := strings.ReplaceAll(strings.ToUpper(raw), " ", "_")
			if !models.ValidPostStatus(normalized) {
				return nil, fmt.Errorf("unknown post status %q", raw)
			}
			status = normalized
		}

		var scheduled *time.Time
		if raw := cell(row, scheduleCol); raw != "" {
			parsed, err := parseDate(raw)
			if err != nil {
				return nil, err
			}
			scheduled = &parsed
		}

		created, err := s.upsertPost(ctx, upload, url, cell(row, contentCol), status, scheduled)
		if err != nil {
			return nil, err
		}

		result.ProcessedRecords++
		if created {
			result.NewRecords++
		} else {
			result.UpdatedRecords++
		}
	}
	if result.ProcessedRecords == 0 {
		return nil, errEmptyFile
	}
	return &result, nil
}

// upsertPost matches by the client-scoped typefully URL. New URLs become new
// posts attributed to this upload; known URLs keep their created_at and only
// have mutable fields and the attribution reassigned. The file's status only
// applies to new posts: an existing post's review state belongs to the
// approval workflow, not the importer.
func (s *importService) upsertPost(ctx context.Context, upload *models.Upload, url, content, newStatus string, scheduled *time.Time) (created bool, err error) {
	existing, isExist, err := s.pr.GetByTypefullyURL(ctx, upload.ClientID, url)
	if err != nil {
		return false, err
	}

	if isExist {
		existing.UploadID = &upload.ID
		if content != "" {
			existing.Content = content
		}
		if scheduled != nil {
			existing.ScheduledDate = scheduled
		}
		if err := s.pr.Update(ctx, existing); err != nil {
			return false, fmt.Errorf("error updating post %s: %w", url, err)
		}
		return false, nil
	}

	post := models.Post{
		ClientID:      upload.ClientID,
		UploadID:      &upload.ID,
		TypefullyURL:  url,
		Content:       content,
		Status:        newStatus,
		ScheduledDate: scheduled,
	}
	if _, err := s.pr.Create(ctx, nil, &post); err != nil {
		return false, fmt.Errorf("error creating post %s: %w", url, err)
	}
	return true, nil
}
