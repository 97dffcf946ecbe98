package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/apexcreative/clientflow/internal/models"
	"github.com/apexcreative/clientflow/internal/repository"
	"github.com/apexcreative/clientflow/internal/transfer"
)

var ErrUploadNotFound = errors.New("upload doesn't exist")

// UploadService lists a client's import history and reverses single imports.
//
// Undo is a membership reversal, not a field-value reversal: posts the upload
// created are deleted, posts it merely touched get their attribution reverted
// to the previous upload. Content or status edits the upload applied to
// pre-existing posts are not rolled back.
type UploadService interface {
	List(ctx context.Context, clientID int64) ([]*models.Upload, error)
	Undo(ctx context.Context, uploadID int64) (*transfer.UndoResult, error)
}

type uploadService struct {
	db *sql.DB
	ur repository.UploadRepository
	pr repository.PostRepository
	cr repository.ClientRepository
	st StatsService
	r2 ObjectStore
}

func NewUploadService(
	db *sql.DB,
	ur repository.UploadRepository,
	pr repository.PostRepository,
	cr repository.ClientRepository,
	st StatsService,
	r2 ObjectStore) UploadService {
	return &uploadService{
		db: db,
		ur: ur,
		pr: pr,
		cr: cr,
		st: st,
		r2: r2,
	}
}

func (s *uploadService) List(ctx context.Context, clientID int64) ([]*models.Upload, error) {
	if clientID == 0 {
		err := errors.New("client_id is not valid")
		slog.Info(err.Error())
		return nil, err
	}
	return s.ur.ListByClientID(ctx, clientID)
}

// Undo reverses one upload inside a single serializable transaction, so a
// mid-reconciliation failure can never leave the client's posts half
// reverted. Two concurrent undos of overlapping chains serialize: the loser
// re-reads and finds the upload already gone.
func (s *uploadService) Undo(ctx context.Context, uploadID int64) (result *transfer.UndoResult, err error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		}
	}()

	target, isExist, err := s.ur.GetByID(ctx, tx, uploadID)
	if err != nil {
		return nil, err
	}
	if !isExist {
		return nil, ErrUploadNotFound
	}

	previous, hasPrevious, err := s.ur.GetPrevious(ctx, tx, target.ClientID, target.Seq)
	if err != nil {
		return nil, err
	}

	var restored, deleted int
	if hasPrevious {
		restored, deleted, err = s.reconcile(ctx, tx, target, previous)
		if err != nil {
			return nil, err
		}
	} else {
		// the client's first upload: there is no prior state to revert to,
		// so every post goes
		var count int64
		count, err = s.pr.RemoveByClientID(ctx, tx, target.ClientID)
		if err != nil {
			return nil, err
		}
		deleted = int(count)
	}

	if err = s.ur.Remove(ctx, tx, target.ID); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	// postconditions of a successful undo: the counters row must reflect the
	// removed posts, and the retained raw file has no import to belong to
	if err := s.st.Refresh(ctx, target.ClientID); err != nil {
		slog.Info(err.Error())
	}
	if err := s.r2.Remove(ctx, target.Filename); err != nil {
		slog.Info(err.Error())
	}

	clientName := ""
	if client, isExist, err := s.cr.GetByID(ctx, target.ClientID); err == nil && isExist {
		clientName = client.Name
	}

	return &transfer.UndoResult{
		RestoredCount: restored,
		DeletedCount:  deleted,
		ClientName:    clientName,
	}, nil
}

// reconcile classifies every post of the client against the undone upload.
// Anything created after the previous upload's timestamp must have been
// introduced by the target (the target is the next import in the chain), so
// it is deleted. Posts the target only touched are reattributed to the
// previous upload. Everything older stays as it is.
func (s *uploadService) reconcile(ctx context.Context, tx *sql.Tx, target, previous *models.Upload) (restored, deleted int, err error) {
	posts, err := s.pr.ListByClientID(ctx, tx, target.ClientID)
	if err != nil {
		return 0, 0, err
	}

	for _, post := range posts {
		switch classifyPost(post, target, previous) {
		case deletePost:
			if err := s.pr.Remove(ctx, tx, post.ID); err != nil {
				return 0, 0, err
			}
			deleted++
		case restorePost:
			if err := s.pr.ReassignUpload(ctx, tx, post.ID, &previous.ID); err != nil {
				return 0, 0, err
			}
			restored++
		}
	}
	return restored, deleted, nil
}

type undoAction int

const (
	keepPost undoAction = iota
	deletePost
	restorePost
)

func classifyPost(post *models.Post, target, previous *models.Upload) undoAction {
	switch {
	case post.CreatedAt.After(previous.UploadDate):
		return deletePost
	case post.UploadID != nil && *post.UploadID == target.ID:
		return restorePost
	}
	return keepPost
}
