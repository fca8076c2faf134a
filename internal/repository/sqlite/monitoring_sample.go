package sqlite

import (
	"context"
	"database/sql"

	"github.com/Valerdy/captive-portal-sub000/internal/repository"
)

// monitoringSampleRepo is the SQLite implementation over the monitoring_samples table.
type monitoringSampleRepo struct {
	db *sql.DB
}

func (r *monitoringSampleRepo) InsertBatch(ctx context.Context, samples []repository.MonitoringSample) error {
	if len(samples) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const stmt = `INSERT INTO monitoring_samples(
		taken_at, active_sessions, rx_bytes_per_sec, tx_bytes_per_sec, cpu_percent, mem_percent, nas_reachable)
		VALUES(?, ?, ?, ?, ?, ?, ?)`

	prepared, err := tx.PrepareContext(ctx, stmt)
	if err != nil {
		return err
	}
	defer prepared.Close()

	for _, sample := range samples {
		if _, err := prepared.ExecContext(ctx,
			sample.TakenAt,
			sample.ActiveSessions,
			sample.RxBytesPerSec,
			sample.TxBytesPerSec,
			sample.CPUPercent,
			sample.MemPercent,
			boolToInt(sample.NASReachable),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *monitoringSampleRepo) ListSince(ctx context.Context, sinceUnix int64) ([]repository.MonitoringSample, error) {
	const query = `SELECT id, taken_at, active_sessions, rx_bytes_per_sec, tx_bytes_per_sec,
		cpu_percent, mem_percent, nas_reachable
		FROM monitoring_samples WHERE taken_at >= ? ORDER BY taken_at ASC`

	rows, err := r.db.QueryContext(ctx, query, sinceUnix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []repository.MonitoringSample
	for rows.Next() {
		var sample repository.MonitoringSample
		var reachable int
		if err := rows.Scan(
			&sample.ID,
			&sample.TakenAt,
			&sample.ActiveSessions,
			&sample.RxBytesPerSec,
			&sample.TxBytesPerSec,
			&sample.CPUPercent,
			&sample.MemPercent,
			&reachable,
		); err != nil {
			return nil, err
		}
		sample.NASReachable = reachable == 1
		samples = append(samples, sample)
	}
	return samples, rows.Err()
}

func (r *monitoringSampleRepo) DeleteBefore(ctx context.Context, beforeUnix int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM monitoring_samples WHERE taken_at < ?`, beforeUnix)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
