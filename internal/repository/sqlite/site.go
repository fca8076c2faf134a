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

// siteRepo is the SQLite implementation over the sites table.
type siteRepo struct {
	db *sql.DB
}

const siteSelectColumns = `id, url, list_type, reason, active, added_at, updated_at`

func (r *siteRepo) FindByID(ctx context.Context, id int64) (*repository.Site, error) {
	row := r.db.QueryRowContext(ctx, fmt.Sprintf("SELECT %s FROM sites WHERE id = ?", siteSelectColumns), id)
	return scanSite(row)
}

func (r *siteRepo) FindByURL(ctx context.Context, listType, url string) (*repository.Site, error) {
	row := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM sites WHERE list_type = ? AND url = ? COLLATE NOCASE", siteSelectColumns),
		listType, url)
	return scanSite(row)
}

func (r *siteRepo) Create(ctx context.Context, site *repository.Site) (*repository.Site, error) {
	const stmt = `INSERT INTO sites(url, list_type, reason, active, added_at, updated_at)
		VALUES(?, ?, ?, ?, ?, ?)`

	now := time.Now().Unix()
	if site.AddedAt == 0 {
		site.AddedAt = now
	}
	site.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, stmt,
		site.URL,
		site.ListType,
		site.Reason,
		boolToInt(site.Active),
		site.AddedAt,
		site.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, err
	}
	if id, err := res.LastInsertId(); err == nil {
		site.ID = id
	}
	return site, nil
}

func (r *siteRepo) Update(ctx context.Context, site *repository.Site) error {
	const stmt = `UPDATE sites SET url = ?, list_type = ?, reason = ?, active = ?, updated_at = ? WHERE id = ?`

	site.UpdatedAt = time.Now().Unix()
	res, err := r.db.ExecContext(ctx, stmt,
		site.URL,
		site.ListType,
		site.Reason,
		boolToInt(site.Active),
		site.UpdatedAt,
		site.ID,
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

func (r *siteRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sites WHERE id = ?`, id)
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

func siteFilterConds(filter repository.SiteSearchFilter) ([]string, []any) {
	var conds []string
	var args []any

	if filter.ListType != "" {
		conds = append(conds, "list_type = ?")
		args = append(args, filter.ListType)
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		conds = append(conds, "(url LIKE ? OR reason LIKE ?)")
		args = append(args, like, like)
	}
	if filter.Active != nil {
		conds = append(conds, "active = ?")
		args = append(args, boolToInt(*filter.Active))
	}
	return conds, args
}

func (r *siteRepo) Search(ctx context.Context, filter repository.SiteSearchFilter) ([]*repository.Site, error) {
	query := "SELECT " + siteSelectColumns + " FROM sites"
	conds, args := siteFilterConds(filter)
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
	query += " ORDER BY added_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sites []*repository.Site
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

func (r *siteRepo) CountFiltered(ctx context.Context, filter repository.SiteSearchFilter) (int64, error) {
	query := "SELECT COUNT(*) FROM sites"
	conds, args := siteFilterConds(filter)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	var count int64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

func (r *siteRepo) SetActive(ctx context.Context, id int64, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE sites SET active = ?, updated_at = ? WHERE id = ?`,
		boolToInt(active), time.Now().Unix(), id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanSite(row rowScanner) (*repository.Site, error) {
	var site repository.Site
	var active int

	if err := row.Scan(
		&site.ID,
		&site.URL,
		&site.ListType,
		&site.Reason,
		&active,
		&site.AddedAt,
		&site.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	site.Active = active == 1
	return &site, nil
}
