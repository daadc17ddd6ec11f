package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xavierca1/ligue-rateio/internal/entity"
)

type PlanRepository struct {
	DB DBTX
}

func NewPlanRepository(db DBTX) *PlanRepository {
	return &PlanRepository{DB: db}
}

func (r *PlanRepository) FindByID(ctx context.Context, id string) (*entity.Plan, error) {
	query := `SELECT id, nome, preco, limite_grupos FROM plans WHERE id = $1`

	var plan entity.Plan
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&plan.ID,
		&plan.Name,
		&plan.Price,
		&plan.GroupLimit,
	)
	if errors.Is(err, sql.ErrNoRows) || invalidText(err) {
		return nil, entity.ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}
