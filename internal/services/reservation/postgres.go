package reservation

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"winter-feast/internal/database"
	"winter-feast/internal/models"
)

const uniqueViolationCode = "23505"

// PostgresRepository stores reservations in PostgreSQL.
type PostgresRepository struct {
	db *database.DB
}

func NewPostgresRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateReservation checks both invariants and inserts within one
// transaction. An advisory xact lock keyed by table type serializes
// competing requests for the same capacity pool, so the count-then-insert
// window is closed; the unique index on user_id backstops the
// one-reservation-per-user rule.
func (r *PostgresRepository) CreateReservation(ctx context.Context, res *models.Reservation, capacity int) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, database.AcquireTableTypeLockSQL, res.TableType); err != nil {
			return fmt.Errorf("failed to lock table type: %w", err)
		}

		var existing int
		if err := tx.QueryRow(ctx, database.CountReservationsByUserSQL, res.UserID).Scan(&existing); err != nil {
			return fmt.Errorf("failed to count user reservations: %w", err)
		}
		if existing > 0 {
			return models.ErrReservationExists
		}

		var taken int
		if err := tx.QueryRow(ctx, database.CountReservationsByTypeSQL, res.TableType).Scan(&taken); err != nil {
			return fmt.Errorf("failed to count reservations: %w", err)
		}
		if taken >= capacity {
			return models.ErrNoCapacity
		}

		err := tx.QueryRow(ctx, database.InsertReservationSQL,
			res.TableType, res.TimeStart, res.GuestName, res.GuestPhone,
			res.GuestEmail, res.GuestNotes, res.GuestAddress, res.UserID,
		).Scan(&res.ID)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
				return models.ErrReservationExists
			}
			return fmt.Errorf("failed to insert reservation: %w", err)
		}
		return nil
	})
}

func (r *PostgresRepository) ListReservationsByUser(ctx context.Context, userID int) ([]models.Reservation, error) {
	rows, err := r.db.Query(ctx, database.ListReservationsByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer rows.Close()

	var reservations []models.Reservation
	for rows.Next() {
		var res models.Reservation
		err := rows.Scan(&res.ID, &res.TableType, &res.TimeStart, &res.GuestName,
			&res.GuestPhone, &res.GuestEmail, &res.GuestNotes, &res.GuestAddress, &res.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

func (r *PostgresRepository) ListAllReservations(ctx context.Context) ([]models.AdminReservation, error) {
	rows, err := r.db.Query(ctx, database.ListAllReservationsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list all reservations: %w", err)
	}
	defer rows.Close()

	var reservations []models.AdminReservation
	for rows.Next() {
		var res models.AdminReservation
		err := rows.Scan(&res.ID, &res.TableType, &res.TimeStart, &res.GuestName,
			&res.GuestPhone, &res.GuestEmail, &res.GuestNotes, &res.GuestAddress,
			&res.UserID, &res.OwnerNickname)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

func (r *PostgresRepository) GetReservationByID(ctx context.Context, id int) (*models.Reservation, error) {
	var res models.Reservation
	err := r.db.QueryRow(ctx,
		`SELECT id, table_type, time_start, guest_name, guest_phone, guest_email,
			guest_notes, guest_address, user_id
		FROM reservation WHERE id = $1`, id,
	).Scan(&res.ID, &res.TableType, &res.TimeStart, &res.GuestName,
		&res.GuestPhone, &res.GuestEmail, &res.GuestNotes, &res.GuestAddress, &res.UserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return &res, nil
}

func (r *PostgresRepository) DeleteReservation(ctx context.Context, id int) error {
	tag, err := r.db.Pool.Exec(ctx, database.DeleteReservationSQL, id)
	if err != nil {
		return fmt.Errorf("failed to delete reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrReservationNotFound
	}
	return nil
}
