package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Valerdy/captive-portal-sub000/internal/repository"
)

// promotionRepo is the SQLite implementation over the promotions table.
type promotionRepo struct {
	db *sql.DB
}

const promotionSelectColumns = `id, code, name, year, profile_id, active, created_at, updated_at`

func promotionSelectBy(field string) string {
	return fmt.Sprintf("SELECT %s FROM promotions WHERE %s = ?", promotionSelectColumns, field)
}

func (r *promotionRepo) FindByID(ctx context.Context, id int64) (*repository.Promotion, error) {
	row := r.db.QueryRowContext(ctx, promotionSelectBy("id"), id)
	return scanPromotion(row)
}

func (r *promotionRepo) FindByCode(ctx context.Context, code string) (*repository.Promotion, error) {
	row := r.db.QueryRowContext(ctx, promotionSelectBy("code"), code)
	return scanPromotion(row)
}

func (r *promotionRepo) List(ctx context.Context) ([]*repository.Promotion, error) {
	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM promotions ORDER BY year DESC, code ASC", promotionSelectColumns))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPromotions(rows)
}

func (r *promotionRepo) ListByProfile(ctx context.Context, profileID int64) ([]*repository.Promotion, error) {
	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM promotions WHERE profile_id = ? ORDER BY code ASC", promotionSelectColumns),
		profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPromotions(rows)
}

func (r *promotionRepo) Create(ctx context.Context, promotion *repository.Promotion) (*repository.Promotion, error) {
	const stmt = `INSERT INTO promotions(code, name, year, profile_id, active, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?)`

	now := time.Now().Unix()
	promotion.CreatedAt = now
	promotion.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, stmt,
		promotion.Code,
		promotion.Name,
		promotion.Year,
		nullableInt(promotion.ProfileID),
		boolToInt(promotion.Active),
		promotion.CreatedAt,
		promotion.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, err
	}
	if id, err := res.LastInsertId(); err == nil {
		promotion.ID = id
	}
	return promotion, nil
}

func (r *promotionRepo) Update(ctx context.Context, promotion *repository.Promotion) error {
	const stmt = `UPDATE promotions SET
		code = ?,
		name = ?,
		year = ?,
		profile_id = ?,
		active = ?,
		updated_at = ?
		WHERE id = ?`

	promotion.UpdatedAt = time.Now().Unix()
	res, err := r.db.ExecContext(ctx, stmt,
		promotion.Code,
		promotion.Name,
		promotion.Year,
		nullableInt(promotion.ProfileID),
		boolToInt(promotion.Active),
		promotion.UpdatedAt,
		promotion.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *promotionRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM promotions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func collectPromotions(rows *sql.Rows) ([]*repository.Promotion, error) {
	var promotions []*repository.Promotion
	for rows.Next() {
		promotion, err := scanPromotion(rows)
		if err != nil {
			return nil, err
		}
		promotions = append(promotions, promotion)
	}
	return promotions, rows.Err()
}

func scanPromotion(row rowScanner) (*repository.Promotion, error) {
	var promotion repository.Promotion
	var profileID sql.NullInt64
	var active int

	if err := row.Scan(
		&promotion.ID,
		&promotion.Code,
		&promotion.Name,
		&promotion.Year,
		&profileID,
		&active,
		&promotion.CreatedAt,
		&promotion.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	promotion.ProfileID = nullableIntPtr(profileID)
	promotion.Active = active == 1
	return &promotion, nil
}
