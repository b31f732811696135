package v1

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/fieldops/task_distributor/internal/domain"
	"github.com/fieldops/task_distributor/internal/pipeline"
)

type UploadService interface {
	Preview(ctx context.Context, upload *domain.RawUpload, targetCount int, withPlan bool) (*pipeline.PreviewResult, error)
	Commit(ctx context.Context, upload *domain.RawUpload, uploadedBy string, targetCount int) (*pipeline.CommitResult, error)
}

type UploadsHandler struct {
	service UploadService
}

func NewUploadsHandler(service UploadService) *UploadsHandler {
	return &UploadsHandler{service: service}
}

// Validate runs the pipeline in preview mode: nothing is persisted.
func (h *UploadsHandler) Validate(w http.ResponseWriter, r *http.Request) {
	upload, err := h.readUpload(r)
	if err != nil {
		respondError(w, err)
		return
	}

	targetCount, err := parseTargetAgents(r)
	if err != nil {
		respondError(w, err)
		return
	}

	withPlan := r.FormValue("preview") == "true"

	result, err := h.service.Preview(r.Context(), upload, targetCount, withPlan)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Upload runs the full pipeline including task persistence.
func (h *UploadsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	upload, err := h.readUpload(r)
	if err != nil {
		respondError(w, err)
		return
	}

	targetCount, err := parseTargetAgents(r)
	if err != nil {
		respondError(w, err)
		return
	}

	result, err := h.service.Commit(r.Context(), upload, UploaderFromContext(r.Context()), targetCount)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

func (h *UploadsHandler) readUpload(r *http.Request) (*domain.RawUpload, error) {
	if err := r.ParseMultipartForm(pipeline.MaxUploadSize); err != nil {
		return nil, domain.WrapError(domain.CodeMalformedFile, "failed to parse multipart form", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, domain.NewError(domain.CodeEmptyFile, "no file was uploaded")
		}
		return nil, domain.WrapError(domain.CodeMalformedFile, "failed to read file field", err)
	}
	defer file.Close()

	// One byte past the limit is enough for the gate to reject oversized
	// content without buffering the whole payload.
	content, err := io.ReadAll(io.LimitReader(file, pipeline.MaxUploadSize+1))
	if err != nil {
		return nil, domain.WrapError(domain.CodeMalformedFile, "failed to read uploaded file", err)
	}

	return &domain.RawUpload{
		Content:     content,
		ContentType: header.Header.Get("Content-Type"),
		Filename:    header.Filename,
		Size:        int64(len(content)),
	}, nil
}

func parseTargetAgents(r *http.Request) (int, error) {
	raw := r.FormValue("target_agents")
	if raw == "" {
		return 0, nil
	}

	count, err := strconv.Atoi(raw)
	if err != nil || count < 1 || count > pipeline.MaxTargetAgents {
		return 0, domain.NewErrorf(domain.CodeInvalidTargetAgentCount,
			"target_agents must be an integer between 1 and %d", pipeline.MaxTargetAgents)
	}

	return count, nil
}
