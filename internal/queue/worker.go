package queue

import (
	"context"
	"encoding/json"
	"log"

	"github.com/apexcreative/clientflow/internal/service"
	"github.com/hibiken/asynq"
)

type Worker struct {
	ps service.PostService
}

func NewWorker(ps service.PostService) *Worker {
	return &Worker{ps: ps}
}

// HandlePublishPostTask fires when a scheduled post's publish time arrives.
// Posts that were deleted or pulled back out of APPROVED since scheduling are
// skipped quietly.
func (w *Worker) HandlePublishPostTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	if err := w.ps.Publish(ctx, payload.PostID); err != nil {
		log.Printf("Error publishing post %d: %v", payload.PostID, err)
		return err
	}
	return nil
}
