package sqlite

import (
	"context"
	"database/sql"

	"github.com/Valerdy/captive-portal-sub000/internal/repository"
)

// radiusRepo maintains the attribute tables the FreeRADIUS sql module reads.
// User attributes live in radcheck/radreply, group attributes in
// radgroupcheck/radgroupreply, and membership in radusergroup.
type radiusRepo struct {
	db *sql.DB
}

func radiusTable(ownerType, scope string) string {
	switch {
	case ownerType == repository.RadiusOwnerGroup && scope == repository.RadiusScopeCheck:
		return "radgroupcheck"
	case ownerType == repository.RadiusOwnerGroup && scope == repository.RadiusScopeReply:
		return "radgroupreply"
	case scope == repository.RadiusScopeReply:
		return "radreply"
	default:
		return "radcheck"
	}
}

func radiusOwnerColumn(ownerType string) string {
	if ownerType == repository.RadiusOwnerGroup {
		return "groupname"
	}
	return "username"
}

// ReplaceForOwner swaps the owner's attribute rows for the given scope in one
// transaction so FreeRADIUS never observes a half-written set.
func (r *radiusRepo) ReplaceForOwner(ctx context.Context, ownerType, owner, scope string, attrs []repository.RadiusAttribute) error {
	table := radiusTable(ownerType, scope)
	column := radiusOwnerColumn(ownerType)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE "+column+" = ?", owner); err != nil {
		return err
	}
	for _, attr := range attrs {
		op := attr.Op
		if op == "" {
			op = ":="
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO "+table+"("+column+", attribute, op, value) VALUES(?, ?, ?, ?)",
			owner, attr.Attribute, op, attr.Value,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *radiusRepo) DeleteForOwner(ctx context.Context, ownerType, owner string) error {
	column := radiusOwnerColumn(ownerType)

	var tables []string
	if ownerType == repository.RadiusOwnerGroup {
		tables = []string{"radgroupcheck", "radgroupreply"}
	} else {
		tables = []string{"radcheck", "radreply"}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE "+column+" = ?", owner); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *radiusRepo) ListForOwner(ctx context.Context, ownerType, owner string) ([]repository.RadiusAttribute, error) {
	column := radiusOwnerColumn(ownerType)

	var attrs []repository.RadiusAttribute
	for _, scope := range []string{repository.RadiusScopeCheck, repository.RadiusScopeReply} {
		table := radiusTable(ownerType, scope)
		rows, err := r.db.QueryContext(ctx,
			"SELECT id, attribute, op, value FROM "+table+" WHERE "+column+" = ? ORDER BY id", owner)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			attr := repository.RadiusAttribute{OwnerType: ownerType, Owner: owner, Scope: scope}
			if err := rows.Scan(&attr.ID, &attr.Attribute, &attr.Op, &attr.Value); err != nil {
				rows.Close()
				return nil, err
			}
			attrs = append(attrs, attr)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return attrs, nil
}

// SetUserGroup keeps a single radusergroup row per user.
func (r *radiusRepo) SetUserGroup(ctx context.Context, username, groupName string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM radusergroup WHERE username = ?`, username); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO radusergroup(username, groupname, priority) VALUES(?, ?, 1)`,
		username, groupName); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *radiusRepo) RemoveUserGroup(ctx context.Context, username string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM radusergroup WHERE username = ?`, username)
	return err
}
