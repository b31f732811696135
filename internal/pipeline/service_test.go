package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/fieldops/task_distributor/internal/domain"
	"github.com/fieldops/task_distributor/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(agents []domain.Agent, tasksSaver *fakeTasksSaver, store *fakeDistributionStore) *pipeline.Service {
	log := slog.New(slog.DiscardHandler)

	return pipeline.NewService(
		log,
		&fakeAgentsProvider{agents: agents},
		store,
		store,
		pipeline.NewOrchestrator(log, tasksSaver, store, fakeTransactor{}),
	)
}

func validCSV(rows int) *domain.RawUpload {
	var b strings.Builder
	b.WriteString("FirstName,Phone,Notes\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "Contact %d,555%07d,\n", i+1, i+1)
	}

	return rawCSVUpload("contacts.csv", b.String())
}

func TestService_Commit_HappyPath(t *testing.T) {
	t.Parallel()

	tasksSaver := &fakeTasksSaver{}
	store := newFakeDistributionStore()
	service := newTestService(makeAgents(5), tasksSaver, store)

	result, err := service.Commit(context.Background(), validCSV(10), "admin@example.com", 0)
	require.NoError(t, err)

	assert.Equal(t, 10, result.TotalItems)
	assert.Equal(t, 10, result.TasksCreated)
	assert.Equal(t, "contacts.csv", result.OriginalName)
	assert.Equal(t, domain.DistributionSummary{
		TotalAgents:    5,
		ItemsPerAgent:  2,
		RemainderItems: 0,
	}, result.Summary)

	require.Len(t, store.created, 1)
	created := store.created[0]
	assert.Equal(t, result.DistributionID, created.ID)
	assert.Equal(t, domain.StatusProcessing, created.Status)
	assert.Equal(t, "admin@example.com", created.UploadedBy)
	assert.Equal(t, "contacts.csv", created.OriginalName)
	assert.NotEqual(t, created.OriginalName, created.Filename)

	assert.Len(t, tasksSaver.saved, 10)
	assert.Contains(t, store.completed, created.ID)
}

func TestService_Commit_InvalidRowRejectsWholeFile(t *testing.T) {
	t.Parallel()

	tasksSaver := &fakeTasksSaver{}
	store := newFakeDistributionStore()
	service := newTestService(makeAgents(5), tasksSaver, store)

	upload := rawCSVUpload("contacts.csv",
		"FirstName,Phone,Notes\n"+
			"John,5551234567,\n"+
			",123,\n",
	)

	_, err := service.Commit(context.Background(), upload, "admin@example.com", 0)
	perr := pipelineError(t, err)
	assert.Equal(t, domain.CodeInvalidData, perr.Code)
	assert.Contains(t, perr.RowErrors, "Row 2: FirstName is required")

	// Atomic rejection: no distribution and no tasks exist.
	assert.Empty(t, store.created)
	assert.Empty(t, tasksSaver.saved)
}

func TestService_Commit_NoActiveAgents(t *testing.T) {
	t.Parallel()

	tasksSaver := &fakeTasksSaver{}
	store := newFakeDistributionStore()
	service := newTestService(nil, tasksSaver, store)

	_, err := service.Commit(context.Background(), validCSV(5), "admin@example.com", 0)
	assert.Equal(t, domain.CodeNoActiveAgents, pipelineError(t, err).Code)

	assert.Empty(t, store.created)
	assert.Empty(t, tasksSaver.saved)
}

func TestService_Commit_PersistenceFailureMarksDistributionFailed(t *testing.T) {
	t.Parallel()

	saveErr := errors.New("copy failed")
	tasksSaver := &fakeTasksSaver{saveErr: saveErr}
	store := newFakeDistributionStore()
	service := newTestService(makeAgents(3), tasksSaver, store)

	_, err := service.Commit(context.Background(), validCSV(6), "admin@example.com", 0)
	require.ErrorIs(t, err, saveErr)

	require.Len(t, store.created, 1)
	id := store.created[0].ID

	require.Contains(t, store.failed, id)
	assert.Contains(t, store.failed[id], "copy failed")
	assert.NotContains(t, store.completed, id)
}

func TestService_Commit_TooLarge(t *testing.T) {
	t.Parallel()

	store := newFakeDistributionStore()
	service := newTestService(makeAgents(3), &fakeTasksSaver{}, store)

	content := append([]byte("FirstName,Phone,Notes\n"), strings.Repeat("a", 6<<20)...)
	upload := &domain.RawUpload{
		Content:     content,
		ContentType: "text/csv",
		Filename:    "contacts.csv",
		Size:        int64(len(content)),
	}

	_, err := service.Commit(context.Background(), upload, "admin@example.com", 0)
	assert.Equal(t, domain.CodeTooLarge, pipelineError(t, err).Code)
	assert.Empty(t, store.created)
}

func TestService_Preview_NoPersistence(t *testing.T) {
	t.Parallel()

	tasksSaver := &fakeTasksSaver{}
	store := newFakeDistributionStore()
	service := newTestService(makeAgents(5), tasksSaver, store)

	result, err := service.Preview(context.Background(), validCSV(12), 0, true)
	require.NoError(t, err)

	assert.Equal(t, "contacts.csv", result.Filename)
	assert.Equal(t, 12, result.TotalRows)
	assert.Len(t, result.Preview, 5)
	assert.Equal(t, []string{"FirstName", "Phone", "Notes"}, result.Columns)

	require.NotNil(t, result.Distribution)
	assert.Equal(t, 12, result.Distribution.TotalItems)
	assert.Equal(t, 5, result.Distribution.TotalAgents)
	assert.Equal(t, 2, result.Distribution.ItemsPerAgent)
	assert.Equal(t, 2, result.Distribution.RemainderItems)

	counts := make([]int, 0, 5)
	for _, agent := range result.Distribution.AgentCounts {
		counts = append(counts, agent.Items)
	}
	assert.Equal(t, []int{3, 3, 2, 2, 2}, counts)

	assert.Empty(t, store.created)
	assert.Empty(t, tasksSaver.saved)
}

func TestService_Preview_WithoutPlan(t *testing.T) {
	t.Parallel()

	service := newTestService(nil, &fakeTasksSaver{}, newFakeDistributionStore())

	// Without a requested plan the roster is never read, so an empty
	// roster does not fail the preview.
	result, err := service.Preview(context.Background(), validCSV(3), 0, false)
	require.NoError(t, err)

	assert.Nil(t, result.Distribution)
	assert.Len(t, result.Preview, 3)
}

func TestService_NotesLimitDiffersBetweenPreviewAndCommit(t *testing.T) {
	t.Parallel()

	upload := func() *domain.RawUpload {
		return rawCSVUpload("contacts.csv",
			"FirstName,Phone,Notes\n"+
				"John,5551234567,"+strings.Repeat("n", 600)+"\n",
		)
	}

	service := newTestService(makeAgents(2), &fakeTasksSaver{}, newFakeDistributionStore())

	_, err := service.Preview(context.Background(), upload(), 0, false)
	assert.Equal(t, domain.CodeInvalidData, pipelineError(t, err).Code)

	_, err = service.Commit(context.Background(), upload(), "admin@example.com", 0)
	assert.NoError(t, err)
}
