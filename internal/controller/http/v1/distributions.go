package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/fieldops/task_distributor/internal/domain"
	"github.com/fieldops/task_distributor/internal/repository/postgresql"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type DistributionsRepository interface {
	DistributionByID(ctx context.Context, id uuid.UUID) (*domain.Distribution, error)
	Distributions(ctx context.Context, limit, offset uint64) ([]*domain.Distribution, int, error)
}

type TasksProvider interface {
	TasksByDistribution(ctx context.Context, distributionID uuid.UUID) ([]*domain.Task, error)
}

type AgentsProvider interface {
	ActiveAgents(ctx context.Context) ([]domain.Agent, error)
}

type ReportGenerator interface {
	CSV(d *domain.Distribution, agents []domain.Agent, tasks []*domain.Task) ([]byte, error)
	PDF(d *domain.Distribution, agents []domain.Agent, tasks []*domain.Task) ([]byte, error)
}

type DistributionsHandler struct {
	distributions   DistributionsRepository
	tasks           TasksProvider
	agents          AgentsProvider
	reportGenerator ReportGenerator
}

func NewDistributionsHandler(
	distributions DistributionsRepository,
	tasks TasksProvider,
	agents AgentsProvider,
	reportGenerator ReportGenerator,
) *DistributionsHandler {
	return &DistributionsHandler{
		distributions:   distributions,
		tasks:           tasks,
		agents:          agents,
		reportGenerator: reportGenerator,
	}
}

type ListDistributionsResponse struct {
	Distributions []*domain.Distribution `json:"distributions"`
	Pagination    Pagination             `json:"pagination"`
}

func (h *DistributionsHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, err := parsePagination(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	offset := (page - 1) * limit

	distributions, total, err := h.distributions.Distributions(r.Context(), limit, offset)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ListDistributionsResponse{
		Distributions: distributions,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: (total + int(limit) - 1) / int(limit),
		},
	})
}

func (h *DistributionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	distribution, err := h.distribution(r)
	if err != nil {
		h.respondLookupError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, distribution)
}

// Report renders the committed distribution as a downloadable CSV or PDF.
func (h *DistributionsHandler) Report(w http.ResponseWriter, r *http.Request) {
	distribution, err := h.distribution(r)
	if err != nil {
		h.respondLookupError(w, err)
		return
	}

	if distribution.Status != domain.StatusCompleted {
		http.Error(w, fmt.Sprintf("distribution is %s, no report available", distribution.Status), http.StatusConflict)
		return
	}

	tasks, err := h.tasks.TasksByDistribution(r.Context(), distribution.ID)
	if err != nil {
		respondError(w, err)
		return
	}

	agents, err := h.agents.ActiveAgents(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	var (
		data        []byte
		contentType string
	)

	switch format {
	case "csv":
		data, err = h.reportGenerator.CSV(distribution, agents, tasks)
		contentType = "text/csv"
	case "pdf":
		data, err = h.reportGenerator.PDF(distribution, agents, tasks)
		contentType = "application/pdf"
	default:
		http.Error(w, fmt.Sprintf("unknown report format %q", format), http.StatusBadRequest)
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", distribution.OriginalName+"-report."+format))
	w.Write(data)
}

var errInvalidDistributionID = errors.New("invalid distribution id")

func (h *DistributionsHandler) distribution(r *http.Request) (*domain.Distribution, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return nil, errInvalidDistributionID
	}

	return h.distributions.DistributionByID(r.Context(), id)
}

func (h *DistributionsHandler) respondLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errInvalidDistributionID):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, postgresql.ErrDistributionNotFound):
		http.Error(w, "distribution not found", http.StatusNotFound)
	default:
		respondError(w, err)
	}
}

func parsePagination(r *http.Request) (page uint64, limit uint64, err error) {
	page, limit = 1, 10

	if p := r.URL.Query().Get("page"); p != "" {
		page, err = strconv.ParseUint(p, 10, 64)
		if err != nil || page == 0 {
			return 0, 0, errors.New("invalid page")
		}
	}

	if l := r.URL.Query().Get("limit"); l != "" {
		limit, err = strconv.ParseUint(l, 10, 64)
		if err != nil || limit < 1 || limit > 100 {
			return 0, 0, errors.New("invalid limit, must be in [1;100]")
		}
	}

	return page, limit, nil
}
