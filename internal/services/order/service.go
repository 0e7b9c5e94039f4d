package order

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"winter-feast/internal/logger"
	"winter-feast/internal/models"
)

// DefaultPaymentMethod is used when the checkout form leaves the payment
// method blank.
const DefaultPaymentMethod = "card"

// Repository is the order storage needed by the service.
type Repository interface {
	InsertOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id int) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID int) ([]models.Order, error)
	ListAllOrders(ctx context.Context) ([]models.AdminOrder, error)
	DeleteOrder(ctx context.Context, id int) error
}

// PriceLookup resolves current menu prices for basket item names.
type PriceLookup interface {
	GetPricesByNames(ctx context.Context, names []string) (map[string]decimal.Decimal, error)
}

// Service converts session baskets into persisted, priced orders.
type Service struct {
	repo   Repository
	prices PriceLookup
	log    *logger.Logger
}

func NewService(repo Repository, prices PriceLookup, log *logger.Logger) *Service {
	return &Service{repo: repo, prices: prices, log: log}
}

// CheckoutRequest carries the checkout form fields. Name, phone and
// address are required; the payment method defaults to card.
type CheckoutRequest struct {
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	PaymentMethod   string
	DeliveryNotes   string
}

// TotalCost computes the snapshot total for a basket against the given
// price table: sum of unit price times quantity, quantized to two
// fractional digits. Basket keys without a price row contribute zero;
// a removed or deactivated item is priced at 0, not rejected.
func TotalCost(prices map[string]decimal.Decimal, basket map[string]int) decimal.Decimal {
	total := decimal.Zero
	for name, qty := range basket {
		price, ok := prices[name]
		if !ok {
			continue
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(qty))))
	}
	return total.Round(2)
}

// Checkout validates the basket and contact fields, prices the basket
// against the current menu and persists the order atomically. The caller
// must clear the session basket only after Checkout returns nil, so no
// partial state survives a failed commit.
func (s *Service) Checkout(ctx context.Context, userID int, basket map[string]int, req CheckoutRequest) (*models.Order, error) {
	if len(basket) == 0 {
		return nil, models.ErrEmptyBasket
	}

	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerPhone = strings.TrimSpace(req.CustomerPhone)
	req.CustomerAddress = strings.TrimSpace(req.CustomerAddress)
	req.DeliveryNotes = strings.TrimSpace(req.DeliveryNotes)
	if req.CustomerName == "" || req.CustomerPhone == "" || req.CustomerAddress == "" {
		return nil, models.ErrMissingFields
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = DefaultPaymentMethod
	}

	names := make([]string, 0, len(basket))
	snapshot := make(map[string]int, len(basket))
	for name, qty := range basket {
		names = append(names, name)
		snapshot[name] = qty
	}

	prices, err := s.prices.GetPricesByNames(ctx, names)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		OrderList:       snapshot,
		OrderTime:       time.Now().UTC(),
		TotalCost:       TotalCost(prices, snapshot),
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		PaymentMethod:   req.PaymentMethod,
		UserID:          userID,
	}
	if req.DeliveryNotes != "" {
		order.DeliveryNotes = &req.DeliveryNotes
	}

	if err := s.repo.InsertOrder(ctx, order); err != nil {
		return nil, err
	}

	s.log.Info("order_created", "Order created", "", map[string]interface{}{
		"order_id":   order.ID,
		"user_id":    userID,
		"total_cost": order.TotalCost.StringFixed(2),
	})
	return order, nil
}

// GetOrder returns an order visible to the given user: owners see their
// own orders, administrators see any. Foreign orders surface as not found.
func (s *Service) GetOrder(ctx context.Context, id int, user *models.User) (*models.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() && order.UserID != user.ID {
		return nil, models.ErrOrderNotFound
	}
	return order, nil
}

// CurrentTotal re-prices an order's line items against today's menu. The
// stored snapshot total is never touched; this is display-only.
func (s *Service) CurrentTotal(ctx context.Context, orderList map[string]int) (decimal.Decimal, error) {
	names := make([]string, 0, len(orderList))
	for name := range orderList {
		names = append(names, name)
	}
	prices, err := s.prices.GetPricesByNames(ctx, names)
	if err != nil {
		return decimal.Zero, err
	}
	return TotalCost(prices, orderList), nil
}

// ListMine returns the user's orders, newest first.
func (s *Service) ListMine(ctx context.Context, userID int) ([]models.Order, error) {
	return s.repo.ListOrdersByUser(ctx, userID)
}

// ListAll returns every order with its owner's nickname, for the
// administrator view.
func (s *Service) ListAll(ctx context.Context) ([]models.AdminOrder, error) {
	return s.repo.ListAllOrders(ctx)
}

// Cancel deletes an order. Owners may cancel their own orders,
// administrators any.
func (s *Service) Cancel(ctx context.Context, id int, user *models.User) error {
	order, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return err
	}
	if !user.IsAdmin() && order.UserID != user.ID {
		return models.ErrOrderNotFound
	}

	if err := s.repo.DeleteOrder(ctx, id); err != nil {
		return err
	}

	s.log.Info("order_cancelled", "Order cancelled", "", map[string]interface{}{
		"order_id": id,
		"by_user":  user.ID,
	})
	return nil
}
