package menu

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"winter-feast/internal/database"
	"winter-feast/internal/models"
)

const uniqueViolationCode = "23505"

// PostgresRepository stores the menu in PostgreSQL. Prices travel as text
// so NUMERIC values survive the round trip without float conversion.
type PostgresRepository struct {
	db *database.DB
}

func NewPostgresRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	err := r.db.QueryRow(ctx, database.InsertMenuItemSQL,
		item.Name, item.Weight, item.Ingredients, item.Description,
		item.Price.StringFixed(2), item.Active, item.FileName,
	).Scan(&item.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return models.ErrDuplicateMenuItem
		}
		return fmt.Errorf("failed to create menu item: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListActive(ctx context.Context) ([]models.MenuItem, error) {
	return r.list(ctx, database.ListActiveMenuSQL)
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]models.MenuItem, error) {
	return r.list(ctx, database.ListAllMenuSQL)
}

func (r *PostgresRepository) ListHighlights(ctx context.Context, limit int) ([]models.MenuItem, error) {
	return r.list(ctx, database.ListHighlightsSQL, limit)
}

func (r *PostgresRepository) list(ctx context.Context, sql string, args ...interface{}) ([]models.MenuItem, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu: %w", err)
	}
	defer rows.Close()

	var items []models.MenuItem
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *PostgresRepository) GetActiveByName(ctx context.Context, name string) (*models.MenuItem, error) {
	return r.get(ctx, database.GetActiveMenuItemByNameSQL, name)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (*models.MenuItem, error) {
	return r.get(ctx, database.GetMenuItemByIDSQL, id)
}

func (r *PostgresRepository) get(ctx context.Context, sql string, arg interface{}) (*models.MenuItem, error) {
	item, err := scanMenuItem(r.db.QueryRow(ctx, sql, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrMenuItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *PostgresRepository) GetPricesByNames(ctx context.Context, names []string) (map[string]decimal.Decimal, error) {
	rows, err := r.db.Query(ctx, database.GetMenuPricesByNamesSQL, names)
	if err != nil {
		return nil, fmt.Errorf("failed to get menu prices: %w", err)
	}
	defer rows.Close()

	prices := make(map[string]decimal.Decimal, len(names))
	for rows.Next() {
		var name, priceText string
		if err := rows.Scan(&name, &priceText); err != nil {
			return nil, fmt.Errorf("failed to scan menu price: %w", err)
		}
		price, err := decimal.NewFromString(priceText)
		if err != nil {
			return nil, fmt.Errorf("failed to parse menu price %q: %w", priceText, err)
		}
		prices[name] = price
	}
	return prices, rows.Err()
}

func (r *PostgresRepository) ToggleActive(ctx context.Context, id int) error {
	return r.db.Exec(ctx, database.ToggleMenuItemActiveSQL, id)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	return r.db.Exec(ctx, database.DeleteMenuItemSQL, id)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMenuItem(row rowScanner) (*models.MenuItem, error) {
	var (
		item      models.MenuItem
		priceText string
	)
	err := row.Scan(&item.ID, &item.Name, &item.Weight, &item.Ingredients,
		&item.Description, &priceText, &item.Active, &item.FileName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan menu item: %w", err)
	}
	item.Price, err = decimal.NewFromString(priceText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse menu price %q: %w", priceText, err)
	}
	return &item, nil
}
