package postgresql

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/fieldops/task_distributor/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const TableDistributions = "distributions"

// ErrDistributionNotFound is returned when the requested distribution does
// not exist.
var ErrDistributionNotFound = errors.New("distribution not found")

type DistributionsRepository struct {
	pool *pgxpool.Pool
	qb   sq.StatementBuilderType
}

func NewDistributionsRepository(pool *pgxpool.Pool) *DistributionsRepository {
	return &DistributionsRepository{
		pool: pool,
		qb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *DistributionsRepository) CreateDistribution(ctx context.Context, d *domain.Distribution) error {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Insert(TableDistributions).
		Columns(
			"id",
			"filename",
			"original_name",
			"total_items",
			"status",
			"uploaded_by",
			"created_at",
		).
		Values(
			d.ID,
			d.Filename,
			d.OriginalName,
			d.TotalItems,
			d.Status,
			d.UploadedBy,
			d.CreatedAt,
		).
		ToSql()
	if err != nil {
		return createQueryError(err)
	}

	if _, err := db.Exec(ctx, sql, args...); err != nil {
		return executeQueryError(err)
	}

	return nil
}

// SetCompleted transitions the distribution to its successful terminal state
// and writes the summary block in the same statement.
func (r *DistributionsRepository) SetCompleted(ctx context.Context, id uuid.UUID, summary domain.DistributionSummary) error {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Update(TableDistributions).
		Set("status", domain.StatusCompleted).
		Set("total_agents", summary.TotalAgents).
		Set("items_per_agent", summary.ItemsPerAgent).
		Set("remainder_items", summary.RemainderItems).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return createQueryError(err)
	}

	if _, err := db.Exec(ctx, sql, args...); err != nil {
		return executeQueryError(err)
	}

	return nil
}

// SetFailed records the failure terminal state with the captured message so
// the distribution never stays stuck in processing.
func (r *DistributionsRepository) SetFailed(ctx context.Context, id uuid.UUID, message string) error {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Update(TableDistributions).
		Set("status", domain.StatusFailed).
		Set("error_message", message).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return createQueryError(err)
	}

	if _, err := db.Exec(ctx, sql, args...); err != nil {
		return executeQueryError(err)
	}

	return nil
}

func (r *DistributionsRepository) DistributionByID(ctx context.Context, id uuid.UUID) (*domain.Distribution, error) {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.selectDistributions().
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, createQueryError(err)
	}

	d, err := scanDistribution(db.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDistributionNotFound
	}
	if err != nil {
		return nil, scanRowError(err)
	}

	return d, nil
}

func (r *DistributionsRepository) Distributions(ctx context.Context, limit, offset uint64) ([]*domain.Distribution, int, error) {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Select("COUNT(*)").
		From(TableDistributions).
		ToSql()
	if err != nil {
		return nil, -1, createQueryError(err)
	}

	var total int
	if err := db.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return nil, -1, scanRowError(err)
	}

	sql, args, err = r.selectDistributions().
		OrderBy("created_at DESC").
		Limit(limit).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, -1, createQueryError(err)
	}

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, -1, executeQueryError(err)
	}
	defer rows.Close()

	var distributions []*domain.Distribution
	for rows.Next() {
		d, err := scanDistribution(rows)
		if err != nil {
			return nil, -1, scanRowError(err)
		}
		distributions = append(distributions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, -1, collectRowsError(err)
	}

	return distributions, total, nil
}

func (r *DistributionsRepository) selectDistributions() sq.SelectBuilder {
	return r.qb.
		Select(
			"id",
			"filename",
			"original_name",
			"total_items",
			"status",
			"error_message",
			"uploaded_by",
			"created_at",
			"total_agents",
			"items_per_agent",
			"remainder_items",
		).
		From(TableDistributions)
}

// scanDistribution flattens the nullable summary columns into the aggregate:
// they are written only on successful completion.
func scanDistribution(row pgx.Row) (*domain.Distribution, error) {
	var (
		d                                         domain.Distribution
		errorMessage                              *string
		totalAgents, itemsPerAgent, remainderRows *int
	)

	err := row.Scan(
		&d.ID,
		&d.Filename,
		&d.OriginalName,
		&d.TotalItems,
		&d.Status,
		&errorMessage,
		&d.UploadedBy,
		&d.CreatedAt,
		&totalAgents,
		&itemsPerAgent,
		&remainderRows,
	)
	if err != nil {
		return nil, err
	}

	if errorMessage != nil {
		d.ErrorMessage = *errorMessage
	}

	if totalAgents != nil && itemsPerAgent != nil && remainderRows != nil {
		d.Summary = &domain.DistributionSummary{
			TotalAgents:    *totalAgents,
			ItemsPerAgent:  *itemsPerAgent,
			RemainderItems: *remainderRows,
		}
	}

	return &d, nil
}
