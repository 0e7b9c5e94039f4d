package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"winter-feast/internal/database"
	"winter-feast/internal/models"
)

// PostgresRepository stores orders in PostgreSQL. The line-item map is
// kept as JSONB and the total as NUMERIC travelling as text.
type PostgresRepository struct {
	db *database.DB
}

func NewPostgresRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) InsertOrder(ctx context.Context, order *models.Order) error {
	orderList, err := json.Marshal(order.OrderList)
	if err != nil {
		return fmt.Errorf("failed to encode order list: %w", err)
	}

	// Single-statement insert inside an explicit transaction keeps the
	// commit point in one place with the rest of the mutations.
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, database.InsertOrderSQL,
			orderList, order.OrderTime, order.TotalCost.StringFixed(2),
			order.CustomerName, order.CustomerPhone, order.CustomerAddress,
			order.PaymentMethod, order.DeliveryNotes, order.UserID,
		).Scan(&order.ID)
		if err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}
		return nil
	})
}

func (r *PostgresRepository) GetOrderByID(ctx context.Context, id int) (*models.Order, error) {
	order, err := scanOrder(r.db.QueryRow(ctx, database.GetOrderByIDSQL, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrOrderNotFound
	}
	return order, err
}

func (r *PostgresRepository) ListOrdersByUser(ctx context.Context, userID int) ([]models.Order, error) {
	rows, err := r.db.Query(ctx, database.ListOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

func (r *PostgresRepository) ListAllOrders(ctx context.Context) ([]models.AdminOrder, error) {
	rows, err := r.db.Query(ctx, database.ListAllOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list all orders: %w", err)
	}
	defer rows.Close()

	var orders []models.AdminOrder
	for rows.Next() {
		var (
			o         models.AdminOrder
			orderList []byte
			totalText string
		)
		err := rows.Scan(&o.ID, &orderList, &o.OrderTime, &totalText,
			&o.CustomerName, &o.CustomerPhone, &o.CustomerAddress,
			&o.PaymentMethod, &o.DeliveryNotes, &o.UserID, &o.OwnerNickname)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		if err := json.Unmarshal(orderList, &o.OrderList); err != nil {
			return nil, fmt.Errorf("failed to decode order list: %w", err)
		}
		if o.TotalCost, err = decimal.NewFromString(totalText); err != nil {
			return nil, fmt.Errorf("failed to parse order total %q: %w", totalText, err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *PostgresRepository) DeleteOrder(ctx context.Context, id int) error {
	tag, err := r.db.Pool.Exec(ctx, database.DeleteOrderSQL, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrOrderNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var (
		o         models.Order
		orderList []byte
		totalText string
	)
	err := row.Scan(&o.ID, &orderList, &o.OrderTime, &totalText,
		&o.CustomerName, &o.CustomerPhone, &o.CustomerAddress,
		&o.PaymentMethod, &o.DeliveryNotes, &o.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}
	if err := json.Unmarshal(orderList, &o.OrderList); err != nil {
		return nil, fmt.Errorf("failed to decode order list: %w", err)
	}
	if o.TotalCost, err = decimal.NewFromString(totalText); err != nil {
		return nil, fmt.Errorf("failed to parse order total %q: %w", totalText, err)
	}
	return &o, nil
}
