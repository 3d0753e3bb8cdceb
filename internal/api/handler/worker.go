package handler

import (
	"context"
	"net/http"

	"github.com/contentforge/contentforge/internal/api/response"
	"github.com/contentforge/contentforge/internal/job"
)

// BatchExecutor defines the interface the worker-trigger handler
// depends on.
type BatchExecutor interface {
	ExecuteBatch(ctx context.Context, limit int) ([]job.Result, error)
}

// NewWorkerHandler returns an http.HandlerFunc for
// POST /internal/v1/worker/run, the cron-invoked entrypoint that claims
// and executes up to batchSize pending jobs.
func NewWorkerHandler(machine BatchExecutor, batchSize int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results, err := machine.ExecuteBatch(r.Context(), batchSize)
		if err != nil {
			// A claim failure mid-batch still leaves completed results
			// worth reporting to the scheduler.
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Worker run failed", map[string]any{"results": results})
			return
		}

		if len(results) == 0 {
			response.JSON(w, map[string]any{
				"message": "No pending jobs",
				"results": []job.Result{},
			})
			return
		}

		response.JSON(w, map[string]any{
			"message": "Batch processed",
			"results": results,
		})
	}
}
