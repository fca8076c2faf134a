package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Valerdy/captive-portal-sub000/internal/repository"
)

// profileRepo is the SQLite implementation over the profiles table.
type profileRepo struct {
	db *sql.DB
}

const profileSelectColumns = `id, name, bandwidth_up_kbps, bandwidth_down_kbps, quota_type, quota_value,
	validity_days, session_timeout_secs, idle_timeout_secs, simultaneous_use, created_at, updated_at`

func (r *profileRepo) FindByID(ctx context.Context, id int64) (*repository.Profile, error) {
	row := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM profiles WHERE id = ?", profileSelectColumns), id)
	return scanProfile(row)
}

func (r *profileRepo) List(ctx context.Context) ([]*repository.Profile, error) {
	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM profiles ORDER BY name ASC", profileSelectColumns))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*repository.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

func (r *profileRepo) Create(ctx context.Context, profile *repository.Profile) (*repository.Profile, error) {
	const stmt = `INSERT INTO profiles(
		name,
		bandwidth_up_kbps,
		bandwidth_down_kbps,
		quota_type,
		quota_value,
		validity_days,
		session_timeout_secs,
		idle_timeout_secs,
		simultaneous_use,
		created_at,
		updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := time.Now().Unix()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, stmt,
		profile.Name,
		profile.BandwidthUpKbps,
		profile.BandwidthDownKbps,
		profile.QuotaType,
		profile.QuotaValue,
		profile.ValidityDays,
		profile.SessionTimeoutSecs,
		profile.IdleTimeoutSecs,
		profile.SimultaneousUse,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, err
	}
	if id, err := res.LastInsertId(); err == nil {
		profile.ID = id
	}
	return profile, nil
}

func (r *profileRepo) Update(ctx context.Context, profile *repository.Profile) error {
	const stmt = `UPDATE profiles SET
		name = ?,
		bandwidth_up_kbps = ?,
		bandwidth_down_kbps = ?,
		quota_type = ?,
		quota_value = ?,
		validity_days = ?,
		session_timeout_secs = ?,
		idle_timeout_secs = ?,
		simultaneous_use = ?,
		updated_at = ?
		WHERE id = ?`

	profile.UpdatedAt = time.Now().Unix()
	res, err := r.db.ExecContext(ctx, stmt,
		profile.Name,
		profile.BandwidthUpKbps,
		profile.BandwidthDownKbps,
		profile.QuotaType,
		profile.QuotaValue,
		profile.ValidityDays,
		profile.SessionTimeoutSecs,
		profile.IdleTimeoutSecs,
		profile.SimultaneousUse,
		profile.UpdatedAt,
		profile.ID,
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

func (r *profileRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
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

func scanProfile(row rowScanner) (*repository.Profile, error) {
	var profile repository.Profile

	if err := row.Scan(
		&profile.ID,
		&profile.Name,
		&profile.BandwidthUpKbps,
		&profile.BandwidthDownKbps,
		&profile.QuotaType,
		&profile.QuotaValue,
		&profile.ValidityDays,
		&profile.SessionTimeoutSecs,
		&profile.IdleTimeoutSecs,
		&profile.SimultaneousUse,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}
