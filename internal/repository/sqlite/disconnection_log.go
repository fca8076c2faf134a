package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Valerdy/captive-portal-sub000/internal/repository"
)

// disconnectionLogRepo is the SQLite implementation over the disconnection_logs table.
type disconnectionLogRepo struct {
	db *sql.DB
}

const disconnectionLogSelectColumns = `id, user_id, username, reason, quota_used_bytes,
	disconnected_at, reconnected_at, reactivated_by`

func (r *disconnectionLogRepo) FindByID(ctx context.Context, id int64) (*repository.DisconnectionLog, error) {
	row := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM disconnection_logs WHERE id = ?", disconnectionLogSelectColumns), id)
	return scanDisconnectionLog(row)
}

func (r *disconnectionLogRepo) Create(ctx context.Context, log *repository.DisconnectionLog) (*repository.DisconnectionLog, error) {
	const stmt = `INSERT INTO disconnection_logs(
		user_id,
		username,
		reason,
		quota_used_bytes,
		disconnected_at,
		reconnected_at,
		reactivated_by)
		VALUES(?, ?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, stmt,
		log.UserID,
		log.Username,
		log.Reason,
		log.QuotaUsedBytes,
		log.DisconnectedAt,
		log.ReconnectedAt,
		log.ReactivatedBy,
	)
	if err != nil {
		return nil, err
	}
	if id, err := res.LastInsertId(); err == nil {
		log.ID = id
	}
	return log, nil
}

func disconnectionLogFilterConds(filter repository.DisconnectionLogFilter) ([]string, []any) {
	var conds []string
	var args []any

	if filter.UserID != nil {
		conds = append(conds, "user_id = ?")
		args = append(args, *filter.UserID)
	}
	if filter.Reason != "" {
		conds = append(conds, "reason = ?")
		args = append(args, filter.Reason)
	}
	if filter.ActiveOnly {
		conds = append(conds, "reconnected_at = 0")
	}
	if filter.Since > 0 {
		conds = append(conds, "disconnected_at >= ?")
		args = append(args, filter.Since)
	}
	return conds, args
}

func (r *disconnectionLogRepo) Search(ctx context.Context, filter repository.DisconnectionLogFilter) ([]*repository.DisconnectionLog, error) {
	query := "SELECT " + disconnectionLogSelectColumns + " FROM disconnection_logs"
	conds, args := disconnectionLogFilterConds(filter)
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
	query += " ORDER BY disconnected_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*repository.DisconnectionLog
	for rows.Next() {
		log, err := scanDisconnectionLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

func (r *disconnectionLogRepo) CountFiltered(ctx context.Context, filter repository.DisconnectionLogFilter) (int64, error) {
	query := "SELECT COUNT(*) FROM disconnection_logs"
	conds, args := disconnectionLogFilterConds(filter)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	var count int64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

func (r *disconnectionLogRepo) Stats(ctx context.Context, since int64) (repository.DisconnectionStats, error) {
	stats := repository.DisconnectionStats{ByReason: make(map[string]int64)}

	const query = `SELECT reason, COUNT(*), SUM(CASE WHEN reconnected_at = 0 THEN 1 ELSE 0 END)
		FROM disconnection_logs WHERE disconnected_at >= ? GROUP BY reason`

	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	for rows.Next() {
		var reason string
		var total, active int64
		if err := rows.Scan(&reason, &total, &active); err != nil {
			return stats, err
		}
		stats.ByReason[reason] = total
		stats.Total += total
		stats.Active += active
	}
	return stats, rows.Err()
}

func (r *disconnectionLogRepo) OpenForUser(ctx context.Context, userID int64) (*repository.DisconnectionLog, error) {
	row := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM disconnection_logs WHERE user_id = ? AND reconnected_at = 0 ORDER BY disconnected_at DESC LIMIT 1",
			disconnectionLogSelectColumns),
		userID)
	return scanDisconnectionLog(row)
}

func (r *disconnectionLogRepo) Reactivate(ctx context.Context, id int64, reconnectedAt int64, actor string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE disconnection_logs SET reconnected_at = ?, reactivated_by = ? WHERE id = ? AND reconnected_at = 0`,
		reconnectedAt, actor, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanDisconnectionLog(row rowScanner) (*repository.DisconnectionLog, error) {
	var log repository.DisconnectionLog

	if err := row.Scan(
		&log.ID,
		&log.UserID,
		&log.Username,
		&log.Reason,
		&log.QuotaUsedBytes,
		&log.DisconnectedAt,
		&log.ReconnectedAt,
		&log.ReactivatedBy,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &log, nil
}
