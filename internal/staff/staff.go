// Package staff is the directory of non-practitioner employees.
package staff

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrStaffNotFound = errors.New("staff member not found")

type Role string

const (
	RoleNurse        Role = "nurse"
	RoleReceptionist Role = "receptionist"
	RoleTechnician   Role = "technician"
	RoleAdmin        Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleNurse, RoleReceptionist, RoleTechnician, RoleAdmin:
		return true
	}
	return false
}

type Member struct {
	ID      uuid.UUID
	Name    string
	Role    Role
	Phone   *string
	Active  bool
	HiredAt time.Time
	LeftAt  *time.Time
}

type Repository interface {
	CreateMember(ctx context.Context, m *Member) error
	GetMemberByID(ctx context.Context, id uuid.UUID) (*Member, error)
	ListMembers(ctx context.Context, activeOnly bool) ([]Member, error)
	DeactivateMember(ctx context.Context, id uuid.UUID, leftAt time.Time) (*Member, error)
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanMember(row pgx.Row) (*Member, error) {
	var m Member
	err := row.Scan(&m.ID, &m.Name, &m.Role, &m.Phone, &m.Active, &m.HiredAt, &m.LeftAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStaffNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *PgRepository) CreateMember(ctx context.Context, m *Member) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO staff_members (id, name, role, phone, active, hired_at, left_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, m.ID, m.Name, m.Role, m.Phone, m.Active, m.HiredAt, m.LeftAt)
	if err != nil {
		return fmt.Errorf("insert staff member: %w", err)
	}
	return nil
}

func (r *PgRepository) GetMemberByID(ctx context.Context, id uuid.UUID) (*Member, error) {
	return scanMember(r.pool.QueryRow(ctx, `
		SELECT id, name, role, phone, active, hired_at, left_at
		FROM staff_members
		WHERE id = $1
	`, id))
}

func (r *PgRepository) ListMembers(ctx context.Context, activeOnly bool) ([]Member, error) {
	query := `
		SELECT id, name, role, phone, active, hired_at, left_at
		FROM staff_members
	`
	if activeOnly {
		query += " WHERE active"
	}
	query += " ORDER BY name"

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *m)
	}

	return result, rows.Err()
}

func (r *PgRepository) DeactivateMember(ctx context.Context, id uuid.UUID, leftAt time.Time) (*Member, error) {
	return scanMember(r.pool.QueryRow(ctx, `
		UPDATE staff_members
		SET active = false,
		    left_at = $2
		WHERE id = $1
		RETURNING id, name, role, phone, active, hired_at, left_at
	`, id, leftAt))
}
