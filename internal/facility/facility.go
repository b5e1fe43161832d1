// Package facility models the physical structure of the clinic: floors,
// blocs on a floor, and rooms in a bloc.
package facility

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrFloorNotFound = errors.New("floor not found")
	ErrBlocNotFound  = errors.New("bloc not found")
	ErrRoomNotFound  = errors.New("room not found")
)

type Floor struct {
	ID    uuid.UUID
	Label string
	Level int
}

type Bloc struct {
	ID      uuid.UUID
	FloorID uuid.UUID
	Label   string
}

type Room struct {
	ID        uuid.UUID
	BlocID    uuid.UUID
	Number    string
	Capacity  int
	Occupied  bool
	UpdatedAt time.Time
}

type Repository interface {
	CreateFloor(ctx context.Context, f *Floor) error
	ListFloors(ctx context.Context) ([]Floor, error)

	CreateBloc(ctx context.Context, b *Bloc) error
	ListBlocsByFloor(ctx context.Context, floorID uuid.UUID) ([]Bloc, error)

	CreateRoom(ctx context.Context, r *Room) error
	ListRoomsByBloc(ctx context.Context, blocID uuid.UUID) ([]Room, error)
	SetRoomOccupancy(ctx context.Context, roomID uuid.UUID, occupied bool) (*Room, error)
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) CreateFloor(ctx context.Context, f *Floor) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO floors (id, label, level)
		VALUES ($1, $2, $3)
	`, f.ID, f.Label, f.Level)
	if err != nil {
		return fmt.Errorf("insert floor: %w", err)
	}
	return nil
}

func (r *PgRepository) ListFloors(ctx context.Context) ([]Floor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, label, level
		FROM floors
		ORDER BY level
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Floor
	for rows.Next() {
		var f Floor
		if err := rows.Scan(&f.ID, &f.Label, &f.Level); err != nil {
			return nil, err
		}
		result = append(result, f)
	}

	return result, rows.Err()
}

func (r *PgRepository) CreateBloc(ctx context.Context, b *Bloc) error {
	// The floor must exist; the FK would catch it, but a sentinel reads
	// better at the API layer.
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM floors WHERE id = $1)`, b.FloorID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrFloorNotFound
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO blocs (id, floor_id, label)
		VALUES ($1, $2, $3)
	`, b.ID, b.FloorID, b.Label)
	if err != nil {
		return fmt.Errorf("insert bloc: %w", err)
	}
	return nil
}

func (r *PgRepository) ListBlocsByFloor(ctx context.Context, floorID uuid.UUID) ([]Bloc, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, floor_id, label
		FROM blocs
		WHERE floor_id = $1
		ORDER BY label
	`, floorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Bloc
	for rows.Next() {
		var b Bloc
		if err := rows.Scan(&b.ID, &b.FloorID, &b.Label); err != nil {
			return nil, err
		}
		result = append(result, b)
	}

	return result, rows.Err()
}

func (r *PgRepository) CreateRoom(ctx context.Context, room *Room) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM blocs WHERE id = $1)`, room.BlocID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrBlocNotFound
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO rooms (id, bloc_id, number, capacity, occupied, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, room.ID, room.BlocID, room.Number, room.Capacity, room.Occupied, room.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert room: %w", err)
	}
	return nil
}

func (r *PgRepository) ListRoomsByBloc(ctx context.Context, blocID uuid.UUID) ([]Room, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, bloc_id, number, capacity, occupied, updated_at
		FROM rooms
		WHERE bloc_id = $1
		ORDER BY number
	`, blocID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Room
	for rows.Next() {
		var room Room
		if err := rows.Scan(&room.ID, &room.BlocID, &room.Number, &room.Capacity, &room.Occupied, &room.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, room)
	}

	return result, rows.Err()
}

func (r *PgRepository) SetRoomOccupancy(ctx context.Context, roomID uuid.UUID, occupied bool) (*Room, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE rooms
		SET occupied = $2,
		    updated_at = now()
		WHERE id = $1
		RETURNING id, bloc_id, number, capacity, occupied, updated_at
	`, roomID, occupied)

	var room Room
	err := row.Scan(&room.ID, &room.BlocID, &room.Number, &room.Capacity, &room.Occupied, &room.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}
