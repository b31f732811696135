package postgresql

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/fieldops/task_distributor/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const TableAgents = "agents"

// AgentsRepository is read-only to the distribution core: agent CRUD lives
// outside the pipeline, only the ordered roster snapshot is consumed here.
type AgentsRepository struct {
	pool *pgxpool.Pool
	qb   sq.StatementBuilderType
}

func NewAgentsRepository(pool *pgxpool.Pool) *AgentsRepository {
	return &AgentsRepository{
		pool: pool,
		qb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// ActiveAgents returns the roster snapshot the distribution engine consumes:
// active agents only, oldest created first. The ordering is the remainder
// tie-break, so it must stay stable.
func (r *AgentsRepository) ActiveAgents(ctx context.Context) ([]domain.Agent, error) {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Select(
			"id",
			"name",
			"email",
			"active",
			"created_at",
		).
		From(TableAgents).
		Where(sq.Eq{"active": true}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, createQueryError(err)
	}

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, executeQueryError(err)
	}

	agents, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[domain.Agent])
	if err != nil {
		return nil, collectRowsError(err)
	}

	return agents, nil
}
