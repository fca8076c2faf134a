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

// deviceRepo is the SQLite implementation over the devices table.
type deviceRepo struct {
	db *sql.DB
}

const deviceSelectColumns = `id, user_id, mac, hostname, device_type, first_seen_at, last_seen_at, active`

func deviceSelectBy(field string) string {
	return fmt.Sprintf("SELECT %s FROM devices WHERE %s = ?", deviceSelectColumns, field)
}

func (r *deviceRepo) FindByID(ctx context.Context, id int64) (*repository.Device, error) {
	row := r.db.QueryRowContext(ctx, deviceSelectBy("id"), id)
	return scanDevice(row)
}

func (r *deviceRepo) FindByMAC(ctx context.Context, mac string) (*repository.Device, error) {
	row := r.db.QueryRowContext(ctx, deviceSelectBy("mac"), mac)
	return scanDevice(row)
}

func (r *deviceRepo) Create(ctx context.Context, device *repository.Device) (*repository.Device, error) {
	const stmt = `INSERT INTO devices(user_id, mac, hostname, device_type, first_seen_at, last_seen_at, active)
		VALUES(?, ?, ?, ?, ?, ?, ?)`

	now := time.Now().Unix()
	if device.FirstSeenAt == 0 {
		device.FirstSeenAt = now
	}
	if device.LastSeenAt == 0 {
		device.LastSeenAt = device.FirstSeenAt
	}

	res, err := r.db.ExecContext(ctx, stmt,
		device.UserID,
		device.MAC,
		device.Hostname,
		device.DeviceType,
		device.FirstSeenAt,
		device.LastSeenAt,
		boolToInt(device.Active),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, err
	}
	if id, err := res.LastInsertId(); err == nil {
		device.ID = id
	}
	return device, nil
}

func (r *deviceRepo) Update(ctx context.Context, device *repository.Device) error {
	const stmt = `UPDATE devices SET
		user_id = ?,
		mac = ?,
		hostname = ?,
		device_type = ?,
		last_seen_at = ?,
		active = ?
		WHERE id = ?`

	res, err := r.db.ExecContext(ctx, stmt,
		device.UserID,
		device.MAC,
		device.Hostname,
		device.DeviceType,
		device.LastSeenAt,
		boolToInt(device.Active),
		device.ID,
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

func (r *deviceRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM devices WHERE id = ?`, id)
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

func deviceFilterConds(filter repository.DeviceSearchFilter) ([]string, []any) {
	var conds []string
	var args []any

	if filter.UserID != nil {
		conds = append(conds, "user_id = ?")
		args = append(args, *filter.UserID)
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		conds = append(conds, "(mac LIKE ? OR hostname LIKE ? OR device_type LIKE ?)")
		args = append(args, like, like, like)
	}
	if filter.Active != nil {
		conds = append(conds, "active = ?")
		args = append(args, boolToInt(*filter.Active))
	}
	return conds, args
}

func (r *deviceRepo) Search(ctx context.Context, filter repository.DeviceSearchFilter) ([]*repository.Device, error) {
	query := "SELECT " + deviceSelectColumns + " FROM devices"
	conds, args := deviceFilterConds(filter)
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
	query += " ORDER BY last_seen_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []*repository.Device
	for rows.Next() {
		device, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, device)
	}
	return devices, rows.Err()
}

func (r *deviceRepo) CountFiltered(ctx context.Context, filter repository.DeviceSearchFilter) (int64, error) {
	query := "SELECT COUNT(*) FROM devices"
	conds, args := deviceFilterConds(filter)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	var count int64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

func (r *deviceRepo) TouchSeen(ctx context.Context, mac string, atUnix int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE devices SET last_seen_at = ?, active = 1 WHERE mac = ?`, atUnix, mac)
	return err
}

func (r *deviceRepo) MarkInactiveBefore(ctx context.Context, lastSeenBefore int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE devices SET active = 0 WHERE active = 1 AND last_seen_at < ?`, lastSeenBefore)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanDevice(row rowScanner) (*repository.Device, error) {
	var device repository.Device
	var active int

	if err := row.Scan(
		&device.ID,
		&device.UserID,
		&device.MAC,
		&device.Hostname,
		&device.DeviceType,
		&device.FirstSeenAt,
		&device.LastSeenAt,
		&active,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	device.Active = active == 1
	return &device, nil
}
