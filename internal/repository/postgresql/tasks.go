package postgresql

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/fieldops/task_distributor/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const TableTasks = "tasks"

type TasksRepository struct {
	pool *pgxpool.Pool
	qb   sq.StatementBuilderType
}

func NewTasksRepository(pool *pgxpool.Pool) *TasksRepository {
	return &TasksRepository{
		pool: pool,
		qb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// SaveTasks bulk-inserts every task of one distribution in a single COPY.
// Run inside a transaction this is the all-or-nothing half of the upload
// guarantee: either every task lands or the copy fails as a unit.
func (r *TasksRepository) SaveTasks(ctx context.Context, tasks ...*domain.Task) error {
	db := extractDB(ctx, r.pool)

	copied, err := db.CopyFrom(ctx, pgx.Identifier{TableTasks}, []string{
		"id",
		"distribution_id",
		"agent_id",
		"first_name",
		"phone",
		"notes",
		"status",
		"assigned_at",
	}, pgx.CopyFromSlice(len(tasks), func(i int) ([]any, error) {
		return []any{
			tasks[i].ID,
			tasks[i].DistributionID,
			tasks[i].AgentID,
			tasks[i].FirstName,
			tasks[i].Phone,
			tasks[i].Notes,
			tasks[i].Status,
			tasks[i].AssignedAt,
		}, nil
	}))
	if err != nil {
		return fmt.Errorf("failed to save tasks: %w", err)
	}

	if copied != int64(len(tasks)) {
		return fmt.Errorf("failed to save tasks: copied %d rows, expected %d", copied, len(tasks))
	}

	return nil
}

// TasksByDistribution returns every task of a distribution in assignment
// order (agents oldest first, items in original file order within an agent).
func (r *TasksRepository) TasksByDistribution(ctx context.Context, distributionID uuid.UUID) ([]*domain.Task, error) {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Select(
			"t.id",
			"t.distribution_id",
			"t.agent_id",
			"t.first_name",
			"t.phone",
			"t.notes",
			"t.status",
			"t.assigned_at",
			"t.completed_at",
		).
		From(TableTasks+" t").
		Join(TableAgents+" a ON a.id = t.agent_id").
		Where(sq.Eq{"t.distribution_id": distributionID}).
		OrderBy("a.created_at ASC", "t.assigned_at ASC", "t.id ASC").
		ToSql()
	if err != nil {
		return nil, createQueryError(err)
	}

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, executeQueryError(err)
	}

	tasks, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByNameLax[domain.Task])
	if err != nil {
		return nil, collectRowsError(err)
	}

	return tasks, nil
}
