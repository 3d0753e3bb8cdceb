package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/contentforge/contentforge/internal/api/middleware"
	"github.com/contentforge/contentforge/internal/api/response"
	"github.com/contentforge/contentforge/internal/store"
	"github.com/contentforge/contentforge/pkg/models"
)

// JobReader defines the store interface the status handler depends on.
type JobReader interface {
	GetJob(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Job, error)
}

// StatusReader is the hot-cache lookup the status handler consults
// before the store. Keys are owner-scoped.
type StatusReader interface {
	GetJobStatus(ctx context.Context, userID, jobID uuid.UUID) (string, bool, error)
}

type statusResponse struct {
	ID           uuid.UUID              `json:"id"`
	Status       string                 `json:"status"`
	Outputs      *models.ContentOutputs `json:"outputs,omitempty"`
	ErrorMessage *string                `json:"error_message,omitempty"`
}

// NewStatusHandler returns an http.HandlerFunc for
// GET /api/v1/generations/{generationID}. Jobs are scoped to the
// authenticated user: another user's job id reads as not found.
//
// Non-terminal statuses are answered from the cache when present;
// terminal statuses always read through to the store, which holds the
// outputs and error message.
func NewStatusHandler(st JobReader, ca StatusReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "generationID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"generation id must be a UUID", nil)
			return
		}

		if status, found, err := ca.GetJobStatus(r.Context(), userID, id); err == nil && found {
			if status == models.JobStatusPending || status == models.JobStatusProcessing {
				response.JSON(w, statusResponse{ID: id, Status: status})
				return
			}
		}

		j, err := st.GetJob(r.Context(), id, userID)
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Generation not found", nil)
			return
		}
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		response.JSON(w, statusResponse{
			ID:           j.ID,
			Status:       j.Status,
			Outputs:      j.Outputs,
			ErrorMessage: j.ErrorMessage,
		})
	}
}
