package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Valerdy/captive-portal-sub000/internal/repository"
)

// sessionRepo is the SQLite implementation over the sessions table.
type sessionRepo struct {
	db *sql.DB
}

const sessionSelectColumns = `id, acct_session_id, user_id, username, mac, nas_ip_address, framed_ip,
	started_at, stopped_at, input_octets, output_octets, terminate_cause, updated_at`

func sessionSelectBy(field string) string {
	return fmt.Sprintf("SELECT %s FROM sessions WHERE %s = ?", sessionSelectColumns, field)
}

func (r *sessionRepo) FindByID(ctx context.Context, id int64) (*repository.Session, error) {
	row := r.db.QueryRowContext(ctx, sessionSelectBy("id"), id)
	return scanSession(row)
}

func (r *sessionRepo) FindByAcctSessionID(ctx context.Context, acctSessionID string) (*repository.Session, error) {
	row := r.db.QueryRowContext(ctx, sessionSelectBy("acct_session_id"), acctSessionID)
	return scanSession(row)
}

func (r *sessionRepo) Create(ctx context.Context, session *repository.Session) (*repository.Session, error) {
	const stmt = `INSERT INTO sessions(
		acct_session_id,
		user_id,
		username,
		mac,
		nas_ip_address,
		framed_ip,
		started_at,
		stopped_at,
		input_octets,
		output_octets,
		terminate_cause,
		updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	if session.UpdatedAt == 0 {
		session.UpdatedAt = time.Now().Unix()
	}

	res, err := r.db.ExecContext(ctx, stmt,
		session.AcctSessionID,
		session.UserID,
		session.Username,
		session.MAC,
		session.NASIPAddress,
		session.FramedIP,
		session.StartedAt,
		session.StoppedAt,
		session.InputOctets,
		session.OutputOctets,
		session.TerminateCause,
		session.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, err
	}
	if id, err := res.LastInsertId(); err == nil {
		session.ID = id
	}
	return session, nil
}

func (r *sessionRepo) Update(ctx context.Context, session *repository.Session) error {
	const stmt = `UPDATE sessions SET
		framed_ip = ?,
		stopped_at = ?,
		input_octets = ?,
		output_octets = ?,
		terminate_cause = ?,
		updated_at = ?
		WHERE id = ?`

	session.UpdatedAt = time.Now().Unix()
	res, err := r.db.ExecContext(ctx, stmt,
		session.FramedIP,
		session.StoppedAt,
		session.InputOctets,
		session.OutputOctets,
		session.TerminateCause,
		session.UpdatedAt,
		session.ID,
	)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *sessionRepo) Close(ctx context.Context, id int64, stoppedAt int64, cause string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET stopped_at = ?, terminate_cause = ?, updated_at = ? WHERE id = ? AND stopped_at = 0`,
		stoppedAt, cause, time.Now().Unix(), id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *sessionRepo) ListActive(ctx context.Context, limit, offset int) ([]*repository.Session, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM sessions WHERE stopped_at = 0 ORDER BY started_at DESC LIMIT ? OFFSET ?", sessionSelectColumns),
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

func (r *sessionRepo) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*repository.Session, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM sessions WHERE user_id = ? ORDER BY started_at DESC LIMIT ? OFFSET ?", sessionSelectColumns),
		userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

func (r *sessionRepo) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions WHERE stopped_at = 0").Scan(&count)
	return count, err
}

func (r *sessionRepo) ActiveForUser(ctx context.Context, userID int64) ([]*repository.Session, error) {
	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM sessions WHERE user_id = ? AND stopped_at = 0 ORDER BY started_at DESC", sessionSelectColumns),
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

func (r *sessionRepo) StaleActive(ctx context.Context, updatedBefore int64) ([]*repository.Session, error) {
	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM sessions WHERE stopped_at = 0 AND updated_at < ? ORDER BY updated_at ASC", sessionSelectColumns),
		updatedBefore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

// UsageSince totals accounting usage over sessions that overlap the window.
// Open sessions count their elapsed time up to now.
func (r *sessionRepo) UsageSince(ctx context.Context, userID int64, sinceUnix int64) (repository.UsageTotals, error) {
	const query = `SELECT
		COALESCE(SUM(input_octets), 0),
		COALESCE(SUM(output_octets), 0),
		COALESCE(SUM(CASE WHEN stopped_at > 0 THEN stopped_at ELSE ? END - MAX(started_at, ?)), 0)
		FROM sessions
		WHERE user_id = ? AND (stopped_at = 0 OR stopped_at >= ?)`

	var totals repository.UsageTotals
	now := time.Now().Unix()
	err := r.db.QueryRowContext(ctx, query, now, sinceUnix, userID, sinceUnix).
		Scan(&totals.InputOctets, &totals.OutputOctets, &totals.Seconds)
	return totals, err
}

func collectSessions(rows *sql.Rows) ([]*repository.Session, error) {
	var sessions []*repository.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func scanSession(row rowScanner) (*repository.Session, error) {
	var session repository.Session

	if err := row.Scan(
		&session.ID,
		&session.AcctSessionID,
		&session.UserID,
		&session.Username,
		&session.MAC,
		&session.NASIPAddress,
		&session.FramedIP,
		&session.StartedAt,
		&session.StoppedAt,
		&session.InputOctets,
		&session.OutputOctets,
		&session.TerminateCause,
		&session.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}
