package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/apexcreative/clientflow/internal/repository"
	"github.com/apexcreative/clientflow/internal/service"
)

// StatsReconcileJob is the periodic backstop: it recomputes every client's
// counters row and publishes approved posts whose scheduled date has passed
// without the queue picking them up.
type StatsReconcileJob struct {
	cr repository.ClientRepository
	pr repository.PostRepository
	st service.StatsService
	ps service.PostService
}

func NewStatsReconcileJob(
	cr repository.ClientRepository,
	pr repository.PostRepository,
	st service.StatsService,
	ps service.PostService) *StatsReconcileJob {
	return &StatsReconcileJob{
		cr: cr,
		pr: pr,
		st: st,
		ps: ps,
	}
}

func (j *StatsReconcileJob) Run() {
	ctx := context.Background()

	overdue, err := j.pr.ListOverdueApproved(ctx, time.Now())
	if err != nil {
		slog.Info(err.Error())
	}
	for _, post := range overdue {
		if err := j.ps.Publish(ctx, post.ID); err != nil {
			slog.Info(err.Error())
		}
	}

	clients, err := j.cr.ListAll(ctx)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, client := range clients {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(clientID int64) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if err := j.st.Refresh(ctx, clientID); err != nil {
				slog.Info(err.Error())
			}
		}(client.ID)
	}

	wg.Wait()
}
