package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/rzyfront/vendix-core/internal/domain"
)

const userColumns = `id, organization_id, store_id, email, name, password_hash,
	roles, is_super_admin, status, created_at, updated_at`

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE lower(email) = lower($1)`, userColumns)
	u, err := scanUser(s.db.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Resource: "user", ID: email}
	}
	return u, err
}

func (s *Store) GetUser(ctx context.Context, orgID, userID int64) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1 AND organization_id = $2`, userColumns)
	u, err := scanUser(s.db.QueryRowContext(ctx, query, userID, orgID))
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Resource: "user", ID: strconv.FormatInt(userID, 10)}
	}
	return u, err
}

func (s *Store) ListUsers(ctx context.Context, orgID int64, f domain.UserFilter, page, limit int) ([]domain.User, int64, error) {
	where, args := userFilterClauses(orgID, f)

	var total int64
	countQuery := `SELECT COUNT(*) FROM users WHERE ` + strings.Join(where, " AND ")
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY id LIMIT $%d OFFSET $%d`,
		userColumns, strings.Join(where, " AND "), len(args)+1, len(args)+2)
	args = append(args, limit, (page-1)*limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user row: %w", err)
		}
		out = append(out, *u)
	}
	return out, total, rows.Err()
}

func (s *Store) CountUsers(ctx context.Context, orgID int64, f domain.UserFilter) (int64, error) {
	where, args := userFilterClauses(orgID, f)
	var total int64
	query := `SELECT COUNT(*) FROM users WHERE ` + strings.Join(where, " AND ")
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return total, nil
}

func (s *Store) CreateUser(ctx context.Context, orgID int64, u *domain.User) (*domain.User, error) {
	query := fmt.Sprintf(`INSERT INTO users
		(organization_id, store_id, email, name, password_hash, roles, is_super_admin, status)
		VALUES ($1, $2, lower($3), $4, $5, $6, $7, $8)
		RETURNING %s`, userColumns)

	out, err := scanUser(s.db.QueryRowContext(ctx, query,
		orgID, u.StoreID, u.Email, u.Name, u.PasswordHash,
		pq.Array(u.Roles), u.IsSuperAdmin, u.Status,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, &domain.ErrConflict{Message: "email already registered: " + u.Email}
		}
		return nil, err
	}
	return out, nil
}

func (s *Store) UpdateUser(ctx context.Context, orgID int64, u *domain.User) (*domain.User, error) {
	query := fmt.Sprintf(`UPDATE users SET
		store_id = $3, name = $4, password_hash = $5, roles = $6,
		is_super_admin = $7, status = $8, updated_at = now()
		WHERE id = $1 AND organization_id = $2
		RETURNING %s`, userColumns)

	out, err := scanUser(s.db.QueryRowContext(ctx, query,
		u.ID, orgID, u.StoreID, u.Name, u.PasswordHash,
		pq.Array(u.Roles), u.IsSuperAdmin, u.Status,
	))
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Resource: "user", ID: strconv.FormatInt(u.ID, 10)}
	}
	return out, err
}

func (s *Store) BulkUpdateUserStatus(ctx context.Context, orgID int64, userIDs []int64, status string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET status = $3, updated_at = now()
		 WHERE organization_id = $1 AND id = ANY($2)`,
		orgID, pq.Array(userIDs), status,
	)
	if err != nil {
		return 0, fmt.Errorf("bulk update user status: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) DeleteUser(ctx context.Context, orgID, userID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM users WHERE id = $1 AND organization_id = $2`,
		userID, orgID,
	)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &domain.ErrNotFound{Resource: "user", ID: strconv.FormatInt(userID, 10)}
	}
	return nil
}

func (s *Store) DeleteUsersByStore(ctx context.Context, orgID, storeID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM users WHERE organization_id = $1 AND store_id = $2`,
		orgID, storeID,
	)
	if err != nil {
		return 0, fmt.Errorf("delete users by store: %w", err)
	}
	return res.RowsAffected()
}

func userFilterClauses(orgID int64, f domain.UserFilter) ([]string, []any) {
	where := []string{"organization_id = $1"}
	args := []any{orgID}
	if f.StoreID != nil {
		args = append(args, *f.StoreID)
		where = append(where, fmt.Sprintf("store_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+strings.ToLower(f.Search)+"%")
		where = append(where, fmt.Sprintf("(lower(email) LIKE $%d OR lower(name) LIKE $%d)", len(args), len(args)))
	}
	return where, args
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	var roles pq.StringArray
	err := row.Scan(
		&u.ID, &u.OrganizationID, &u.StoreID, &u.Email, &u.Name,
		&u.PasswordHash, &roles, &u.IsSuperAdmin, &u.Status,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Roles = roles
	return &u, nil
}
