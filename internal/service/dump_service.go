package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/apexcreative/clientflow/internal/models"
	"github.com/apexcreative/clientflow/internal/repository"
	"github.com/apexcreative/clientflow/internal/transfer"
)

var ErrDumpNotFound = errors.New("content dump doesn't exist")

// DumpService stores pasted raw content and later splits it into pending
// draft posts.
type DumpService interface {
	Create(ctx context.Context, agencyID int64, dc *transfer.DumpCreation) (int64, error)
	List(ctx context.Context, agencyID, clientID int64) ([]*models.ContentDump, error)
	Process(ctx context.Context, agencyID, dumpID int64) (int, error)
}

type dumpService struct {
	dr repository.DumpRepository
	pr repository.PostRepository
	cr repository.ClientRepository
	st StatsService
}

func NewDumpService(
	dr repository.DumpRepository,
	pr repository.PostRepository,
	cr repository.ClientRepository,
	st StatsService) DumpService {
	return &dumpService{
		dr: dr,
		pr: pr,
		cr: cr,
		st: st,
	}
}

func (s *dumpService) Create(ctx context.Context, agencyID int64, dc *transfer.DumpCreation) (int64, error) {
	if dc.Body == "" {
		err := errors.New("dump body cannot be empty")
		slog.Info(err.Error())
		return 0, err
	}

	owned, err := s.cr.CheckByAgencyID(ctx, dc.ClientID, agencyID)
	if err != nil {
		return 0, err
	}
	if !owned {
		return 0, ErrClientNotFound
	}

	dump := models.ContentDump{
		ClientID: dc.ClientID,
		Title:    dc.Title,
		Body:     dc.Body,
	}
	id, err := s.dr.Create(ctx, &dump)
	if err != nil {
		return 0, fmt.Errorf("error saving content dump: %w", err)
	}
	return id, nil
}

func (s *dumpService) List(ctx context.Context, agencyID, clientID int64) ([]*models.ContentDump, error) {
	owned, err := s.cr.CheckByAgencyID(ctx, clientID, agencyID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, ErrClientNotFound
	}
	return s.dr.ListByClientID(ctx, clientID)
}

// Process splits the dump body into draft posts. Blocks are separated by a
// line holding only "---" or by a blank line; each block becomes one PENDING
// post.
func (s *dumpService) Process(ctx context.Context, agencyID, dumpID int64) (int, error) {
	dump, isExist, err := s.dr.GetByID(ctx, dumpID)
	if err != nil {
		return 0, err
	}
	if !isExist {
		return 0, ErrDumpNotFound
	}

	owned, err := s.cr.CheckByAgencyID(ctx, dump.ClientID, agencyID)
	if err != nil {
		return 0, err
	}
	if !owned {
		return 0, ErrDumpNotFound
	}

	if dump.Processed {
		err = errors.New("dump has already been processed")
		slog.Info(err.Error())
		return 0, err
	}

	created := 0
	for _, block := range SplitDump(dump.Body) {
		post := models.Post{
			ClientID: dump.ClientID,
			Content:  block,
			Status:   models.PostStatusPending,
		}
		if _, err := s.pr.Create(ctx, nil, &post); err != nil {
			return created, fmt.Errorf("error creating post from dump: %w", err)
		}
		created++
	}

	if err := s.dr.MarkProcessed(ctx, dump.ID); err != nil {
		return created, err
	}
	if err := s.st.Refresh(ctx, dump.ClientID); err != nil {
		slog.Info(err.Error())
	}
	return created, nil
}

// SplitDump breaks raw pasted content into post-sized blocks.
func SplitDump(body string) []string {
	normalized := strings.ReplaceAll(body, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\n---\n", "\n\n")

	var blocks []string
	for _, block := range strings.Split(normalized, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" || block == "---" {
			continue
		}
		blocks = append(blocks, block)
	}
	return blocks
}
