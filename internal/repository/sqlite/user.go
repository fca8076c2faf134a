package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Valerdy/captive-portal-sub000/internal/repository"
)

// userRepo is the SQLite implementation over the users table.
type userRepo struct {
	db *sql.DB
}

const userSelectColumns = `id, username, email, first_name, last_name, matricule, promotion_id, password,
	is_admin, radius_activated, active, last_login_at, created_at, updated_at`

func userSelectBy(field string) string {
	return fmt.Sprintf("SELECT %s FROM users WHERE %s = ?", userSelectColumns, field)
}

func (r *userRepo) FindByID(ctx context.Context, id int64) (*repository.User, error) {
	row := r.db.QueryRowContext(ctx, userSelectBy("id"), id)
	return scanUser(row)
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*repository.User, error) {
	row := r.db.QueryRowContext(ctx, userSelectBy("username"), username)
	return scanUser(row)
}

func (r *userRepo) Create(ctx context.Context, user *repository.User) (*repository.User, error) {
	const stmt = `INSERT INTO users(
		username,
		email,
		first_name,
		last_name,
		matricule,
		promotion_id,
		password,
		is_admin,
		radius_activated,
		active,
		last_login_at,
		created_at,
		updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := time.Now().Unix()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, stmt,
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Matricule,
		nullableInt(user.PromotionID),
		user.Password,
		boolToInt(user.IsAdmin),
		boolToInt(user.RadiusActivated),
		boolToInt(user.Active),
		user.LastLoginAt,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, err
	}
	if id, err := res.LastInsertId(); err == nil {
		user.ID = id
	}
	return user, nil
}

func (r *userRepo) Update(ctx context.Context, user *repository.User) error {
	const stmt = `UPDATE users SET
		username = ?,
		email = ?,
		first_name = ?,
		last_name = ?,
		matricule = ?,
		promotion_id = ?,
		password = ?,
		is_admin = ?,
		radius_activated = ?,
		active = ?,
		last_login_at = ?,
		updated_at = ?
		WHERE id = ?`

	user.UpdatedAt = time.Now().Unix()
	res, err := r.db.ExecContext(ctx, stmt,
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Matricule,
		nullableInt(user.PromotionID),
		user.Password,
		boolToInt(user.IsAdmin),
		boolToInt(user.RadiusActivated),
		boolToInt(user.Active),
		user.LastLoginAt,
		user.UpdatedAt,
		user.ID,
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

func (r *userRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
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

func userFilterConds(filter repository.UserSearchFilter) ([]string, []any) {
	var conds []string
	var args []any

	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		conds = append(conds, "(username LIKE ? OR first_name LIKE ? OR last_name LIKE ? OR email LIKE ? OR matricule LIKE ?)")
		args = append(args, like, like, like, like, like)
	}
	if filter.PromotionID != nil {
		conds = append(conds, "promotion_id = ?")
		args = append(args, *filter.PromotionID)
	}
	if filter.Active != nil {
		conds = append(conds, "active = ?")
		args = append(args, boolToInt(*filter.Active))
	}
	if filter.RadiusActivated != nil {
		conds = append(conds, "radius_activated = ?")
		args = append(args, boolToInt(*filter.RadiusActivated))
	}
	return conds, args
}

func (r *userRepo) Search(ctx context.Context, filter repository.UserSearchFilter) ([]*repository.User, error) {
	query := "SELECT " + userSelectColumns + " FROM users"
	conds, args := userFilterConds(filter)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	limit := 20
	if filter.Limit > 0 {
		limit = filter.Limit
	}
	offset := 0
	if filter.Offset > 0 {
		offset = filter.Offset
	}
	query += " ORDER BY id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*repository.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *userRepo) CountFiltered(ctx context.Context, filter repository.UserSearchFilter) (int64, error) {
	query := "SELECT COUNT(*) FROM users"
	conds, args := userFilterConds(filter)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	var count int64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

func (r *userRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

func (r *userRepo) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE active = 1").Scan(&count)
	return count, err
}

func (r *userRepo) PromotionCounts(ctx context.Context, promotionIDs []int64) (map[int64]repository.PromotionUserCount, error) {
	if len(promotionIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(promotionIDs))
	args := make([]any, len(promotionIDs))
	for i, id := range promotionIDs {
		placeholders[i] = "?"
		args[i] = id
	}

	query := `SELECT promotion_id, COUNT(*), SUM(CASE WHEN active = 1 THEN 1 ELSE 0 END)
	          FROM users WHERE promotion_id IN (` + strings.Join(placeholders, ",") + `) GROUP BY promotion_id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64]repository.PromotionUserCount)
	for rows.Next() {
		var promotionID, total, active int64
		if err := rows.Scan(&promotionID, &total, &active); err != nil {
			return nil, err
		}
		result[promotionID] = repository.PromotionUserCount{Total: total, Active: active}
	}
	return result, rows.Err()
}

func (r *userRepo) SetRadiusActivated(ctx context.Context, id int64, activated bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET radius_activated = ?, updated_at = ? WHERE id = ?`,
		boolToInt(activated), time.Now().Unix(), id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepo) SetLastLogin(ctx context.Context, id int64, atUnix int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = ? WHERE id = ?`, atUnix, id)
	return err
}

func (r *userRepo) HasAdmin(ctx context.Context) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE is_admin = 1").Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*repository.User, error) {
	var user repository.User
	var promotionID sql.NullInt64
	var isAdmin, radiusActivated, active int

	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.Matricule,
		&promotionID,
		&user.Password,
		&isAdmin,
		&radiusActivated,
		&active,
		&user.LastLoginAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	user.PromotionID = nullableIntPtr(promotionID)
	user.IsAdmin = isAdmin == 1
	user.RadiusActivated = radiusActivated == 1
	user.Active = active == 1
	return &user, nil
}
