package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/contentforge/contentforge/internal/api/middleware"
	"github.com/contentforge/contentforge/internal/api/response"
	"github.com/contentforge/contentforge/internal/job"
	"github.com/contentforge/contentforge/internal/store"
	"github.com/contentforge/contentforge/internal/transcript"
	"github.com/contentforge/contentforge/pkg/models"
)

// maxUploadBytes bounds the multipart form; slightly above the audio
// limit so oversized files reach the resolver and fail with a typed
// error instead of a generic parse failure.
const maxUploadBytes = 32 << 20

// Submitter defines the interface the submission handler depends on.
type Submitter interface {
	Submit(ctx context.Context, params job.SubmitParams) (*models.Job, error)
}

// NewSubmitHandler returns an http.HandlerFunc for POST /api/v1/generations.
// The body is multipart form data: input_type plus input_url, input_text,
// or file depending on the type.
func NewSubmitHandler(svc Submitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"Body must be multipart form data", nil)
			return
		}

		params := job.SubmitParams{
			UserID:    userID,
			InputType: r.FormValue("input_type"),
			InputURL:  r.FormValue("input_url"),
			InputText: r.FormValue("input_text"),
		}

		switch params.InputType {
		case models.InputTypeYouTube:
			if params.InputURL == "" {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"input_url is required for youtube input", nil)
				return
			}
		case models.InputTypeText:
			if params.InputText == "" {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"input_text is required for text input", nil)
				return
			}
		case models.InputTypeAudio:
			file, header, err := r.FormFile("file")
			if err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"file is required for audio input", nil)
				return
			}
			defer file.Close()

			data, err := io.ReadAll(file)
			if err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"Failed to read uploaded file", nil)
				return
			}
			params.FileData = data
			params.FileName = header.Filename
			params.FileMIME = header.Header.Get("Content-Type")
		default:
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"input_type must be one of youtube, audio, text", nil)
			return
		}

		j, err := svc.Submit(r.Context(), params)
		if err != nil {
			switch {
			case errors.Is(err, store.ErrInsufficientCredits):
				response.Error(w, http.StatusPaymentRequired, "INSUFFICIENT_CREDITS",
					"No credits remaining", nil)
			case errors.Is(err, transcript.ErrInputTooShort):
				response.Error(w, http.StatusBadRequest, "INPUT_TOO_SHORT",
					"input_text must be at least 100 characters", nil)
			case errors.Is(err, transcript.ErrInvalidYouTubeURL):
				response.Error(w, http.StatusBadRequest, "INVALID_YOUTUBE_URL",
					"input_url is not a recognizable YouTube URL", nil)
			case errors.Is(err, transcript.ErrUnsupportedFormat):
				response.Error(w, http.StatusBadRequest, "UNSUPPORTED_FORMAT",
					"Uploaded file is not a supported audio format", nil)
			case errors.Is(err, job.ErrUnsupportedInputType):
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"input_type must be one of youtube, audio, text", nil)
			default:
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"An unexpected error occurred", nil)
			}
			return
		}

		response.Accepted(w, map[string]string{
			"generation_id": j.ID.String(),
		})
	}
}
