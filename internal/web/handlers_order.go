package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"winter-feast/internal/basket"
	"winter-feast/internal/models"
	"winter-feast/internal/services/order"
)

type createOrderData struct {
	Basket map[string]int
	Form   order.CheckoutRequest
}

// CreateOrder shows the checkout page and commits the basket on POST.
// The basket is cleared only after the order is persisted.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	user := userFrom(r.Context())
	data := createOrderData{Basket: basket.View(sess)}

	if r.Method == http.MethodPost {
		data.Form = order.CheckoutRequest{
			CustomerName:    r.PostFormValue("customer_name"),
			CustomerPhone:   r.PostFormValue("customer_phone"),
			CustomerAddress: r.PostFormValue("customer_address"),
			PaymentMethod:   r.PostFormValue("payment_method"),
			DeliveryNotes:   r.PostFormValue("delivery_notes"),
		}

		placed, err := h.orders.Checkout(r.Context(), user.ID, sess.Basket, data.Form)
		switch {
		case errors.Is(err, models.ErrEmptyBasket):
			sess.AddFlash("warning", "Your basket is empty. Pick something from the menu first.")
			h.redirect(w, r, "/menu")
			return
		case errors.Is(err, models.ErrMissingFields):
			sess.AddFlash("danger", "Please fill in your name, phone and address.")
		case err != nil:
			h.serverError(w, r, "checkout_failed", err)
			return
		default:
			basket.Clear(sess)
			sess.AddFlash("success", "Your order has been placed!")
			h.redirect(w, r, "/my_order/"+strconv.Itoa(placed.ID))
			return
		}
	}

	h.render(w, r, http.StatusOK, "create_order", data)
}

// MyOrders lists the orders of the logged-in user.
func (h *Handler) MyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListMine(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		h.serverError(w, r, "my_orders_failed", err)
		return
	}
	h.render(w, r, http.StatusOK, "my_orders", struct {
		Orders []models.Order
	}{orders})
}

// MyOrder shows one order with both its snapshot total and what the same
// basket would cost at today's prices. POST with action=cancel removes it.
func (h *Handler) MyOrder(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	user := userFrom(r.Context())
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	if r.Method == http.MethodPost && r.PostFormValue("action") == "cancel" {
		h.cancelOrder(w, r, id)
		return
	}

	ord, err := h.orders.GetOrder(r.Context(), id, user)
	if errors.Is(err, models.ErrOrderNotFound) {
		sess.AddFlash("danger", "Order not found.")
		h.redirect(w, r, "/my_orders")
		return
	}
	if err != nil {
		h.serverError(w, r, "my_order_failed", err)
		return
	}

	current, err := h.orders.CurrentTotal(r.Context(), ord.OrderList)
	if err != nil {
		h.serverError(w, r, "my_order_failed", err)
		return
	}

	h.render(w, r, http.StatusOK, "my_order", struct {
		Order        *models.Order
		CurrentTotal decimal.Decimal
	}{ord, current})
}

// CancelOrder removes an order owned by the user (or any order, for the
// administrator).
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	h.cancelOrder(w, r, id)
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request, id int) {
	sess := sessionFrom(r.Context())

	err := h.orders.Cancel(r.Context(), id, userFrom(r.Context()))
	if errors.Is(err, models.ErrOrderNotFound) {
		sess.AddFlash("danger", "Order not found.")
		h.redirect(w, r, "/my_orders")
		return
	}
	if err != nil {
		h.serverError(w, r, "cancel_order_failed", err)
		return
	}

	sess.AddFlash("info", "Order cancelled.")
	h.redirect(w, r, "/my_orders")
}
