package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"winter-feast/internal/config"
	"winter-feast/internal/logger"
	"winter-feast/internal/models"
	"winter-feast/internal/services/auth"
	"winter-feast/internal/services/menu"
	"winter-feast/internal/services/order"
	"winter-feast/internal/services/reservation"
	"winter-feast/internal/session"
)

const testSecret = "test-secret"

type fakeUserRepo struct {
	users  map[string]*models.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User), nextID: 1}
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *models.User) error {
	if _, ok := f.users[user.Nickname]; ok {
		return models.ErrDuplicateUser
	}
	user.ID = f.nextID
	f.nextID++
	f.users[user.Nickname] = user
	return nil
}

func (f *fakeUserRepo) GetUserByNickname(ctx context.Context, nickname string) (*models.User, error) {
	user, ok := f.users[nickname]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	for _, user := range f.users {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (f *fakeUserRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	out := make([]models.User, 0, len(f.users))
	for _, user := range f.users {
		out = append(out, *user)
	}
	return out, nil
}

type fakeMenuRepo struct {
	items  map[string]*models.MenuItem
	nextID int
}

func newFakeMenuRepo() *fakeMenuRepo {
	return &fakeMenuRepo{items: make(map[string]*models.MenuItem), nextID: 1}
}

func (f *fakeMenuRepo) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	if _, ok := f.items[item.Name]; ok {
		return models.ErrDuplicateMenuItem
	}
	item.ID = f.nextID
	f.nextID++
	f.items[item.Name] = item
	return nil
}

func (f *fakeMenuRepo) ListActive(ctx context.Context) ([]models.MenuItem, error) {
	out := []models.MenuItem{}
	for _, item := range f.items {
		if item.Active {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (f *fakeMenuRepo) ListAll(ctx context.Context) ([]models.MenuItem, error) {
	out := []models.MenuItem{}
	for _, item := range f.items {
		out = append(out, *item)
	}
	return out, nil
}

func (f *fakeMenuRepo) ListHighlights(ctx context.Context, limit int) ([]models.MenuItem, error) {
	items, _ := f.ListActive(ctx)
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (f *fakeMenuRepo) GetActiveByName(ctx context.Context, name string) (*models.MenuItem, error) {
	item, ok := f.items[name]
	if !ok || !item.Active {
		return nil, models.ErrMenuItemNotFound
	}
	copied := *item
	return &copied, nil
}

func (f *fakeMenuRepo) GetByID(ctx context.Context, id int) (*models.MenuItem, error) {
	for _, item := range f.items {
		if item.ID == id {
			copied := *item
			return &copied, nil
		}
	}
	return nil, models.ErrMenuItemNotFound
}

func (f *fakeMenuRepo) GetPricesByNames(ctx context.Context, names []string) (map[string]decimal.Decimal, error) {
	prices := make(map[string]decimal.Decimal)
	for _, name := range names {
		if item, ok := f.items[name]; ok && item.Active {
			prices[name] = item.Price
		}
	}
	return prices, nil
}

func (f *fakeMenuRepo) ToggleActive(ctx context.Context, id int) error {
	for _, item := range f.items {
		if item.ID == id {
			item.Active = !item.Active
			return nil
		}
	}
	return models.ErrMenuItemNotFound
}

func (f *fakeMenuRepo) Delete(ctx context.Context, id int) error {
	for name, item := range f.items {
		if item.ID == id {
			delete(f.items, name)
			return nil
		}
	}
	return models.ErrMenuItemNotFound
}

type fakeOrderRepo struct {
	orders map[int]*models.Order
	nextID int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[int]*models.Order), nextID: 1}
}

func (f *fakeOrderRepo) InsertOrder(ctx context.Context, ord *models.Order) error {
	ord.ID = f.nextID
	f.nextID++
	copied := *ord
	f.orders[ord.ID] = &copied
	return nil
}

func (f *fakeOrderRepo) GetOrderByID(ctx context.Context, id int) (*models.Order, error) {
	ord, ok := f.orders[id]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	copied := *ord
	return &copied, nil
}

func (f *fakeOrderRepo) ListOrdersByUser(ctx context.Context, userID int) ([]models.Order, error) {
	out := []models.Order{}
	for _, ord := range f.orders {
		if ord.UserID == userID {
			out = append(out, *ord)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) ListAllOrders(ctx context.Context) ([]models.AdminOrder, error) {
	out := []models.AdminOrder{}
	for _, ord := range f.orders {
		out = append(out, models.AdminOrder{Order: *ord})
	}
	return out, nil
}

func (f *fakeOrderRepo) DeleteOrder(ctx context.Context, id int) error {
	if _, ok := f.orders[id]; !ok {
		return models.ErrOrderNotFound
	}
	delete(f.orders, id)
	return nil
}

type fakeReservationRepo struct {
	reservations map[int]*models.Reservation
	nextID       int
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{reservations: make(map[int]*models.Reservation), nextID: 1}
}

func (f *fakeReservationRepo) CreateReservation(ctx context.Context, r *models.Reservation, capacity int) error {
	taken := 0
	for _, existing := range f.reservations {
		if existing.UserID == r.UserID {
			return models.ErrReservationExists
		}
		if existing.TableType == r.TableType {
			taken++
		}
	}
	if taken >= capacity {
		return models.ErrNoCapacity
	}
	r.ID = f.nextID
	f.nextID++
	copied := *r
	f.reservations[r.ID] = &copied
	return nil
}

func (f *fakeReservationRepo) ListReservationsByUser(ctx context.Context, userID int) ([]models.Reservation, error) {
	out := []models.Reservation{}
	for _, r := range f.reservations {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReservationRepo) ListAllReservations(ctx context.Context) ([]models.AdminReservation, error) {
	out := []models.AdminReservation{}
	for _, r := range f.reservations {
		out = append(out, models.AdminReservation{Reservation: *r})
	}
	return out, nil
}

func (f *fakeReservationRepo) GetReservationByID(ctx context.Context, id int) (*models.Reservation, error) {
	r, ok := f.reservations[id]
	if !ok {
		return nil, models.ErrReservationNotFound
	}
	copied := *r
	return &copied, nil
}

func (f *fakeReservationRepo) DeleteReservation(ctx context.Context, id int) error {
	if _, ok := f.reservations[id]; !ok {
		return models.ErrReservationNotFound
	}
	delete(f.reservations, id)
	return nil
}

type testEnv struct {
	handler  http.Handler
	sessions *session.MemoryStore
	users    *fakeUserRepo
	menu     *fakeMenuRepo
	orders   *fakeOrderRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Session: config.SessionConfig{Secret: testSecret},
		Admin:   config.AdminConfig{Nickname: "Admin"},
		Uploads: config.UploadsConfig{Dir: t.TempDir(), MaxSizeBytes: 16 << 20},
	}
	log := logger.New("web-test")
	sessions := session.NewMemoryStore()

	users := newFakeUserRepo()
	menuRepo := newFakeMenuRepo()
	orders := newFakeOrderRepo()
	reservations := newFakeReservationRepo()

	authSvc := auth.NewService(users, log)
	menuSvc := menu.NewService(menuRepo, cfg.Uploads.Dir, log)
	orderSvc := order.NewService(orders, menuSvc, log)
	reservationSvc := reservation.NewService(reservations, log)

	h, err := NewHandler(cfg, authSvc, menuSvc, orderSvc, reservationSvc, sessions, log)
	require.NoError(t, err)

	return &testEnv{
		handler:  h.SetupRoutes(),
		sessions: sessions,
		users:    users,
		menu:     menuRepo,
		orders:   orders,
	}
}

func (e *testEnv) addUser(t *testing.T, nickname string, role models.Role) *models.User {
	t.Helper()
	hash, err := auth.HashPassword("long-password")
	require.NoError(t, err)
	user := &models.User{
		Nickname:     nickname,
		Email:        nickname + "@example.com",
		PasswordHash: hash,
		Role:         role,
	}
	require.NoError(t, e.users.CreateUser(context.Background(), user))
	return user
}

func (e *testEnv) addDish(t *testing.T, name, price string) {
	t.Helper()
	require.NoError(t, e.menu.CreateMenuItem(context.Background(), &models.MenuItem{
		Name:   name,
		Price:  decimal.RequireFromString(price),
		Active: true,
	}))
}

// newSession stores a session directly and returns its signed cookie.
func (e *testEnv) newSession(t *testing.T, userID int) (*session.Session, *http.Cookie) {
	t.Helper()
	sess := session.NewSession()
	sess.UserID = userID
	require.NoError(t, e.sessions.Save(context.Background(), sess))
	return sess, &http.Cookie{
		Name:  SessionCookieName,
		Value: session.SignID(testSecret, sess.ID),
	}
}

func (e *testEnv) postForm(t *testing.T, path string, cookie *http.Cookie, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func TestFirstVisitSetsSessionCookie(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var found bool
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == SessionCookieName {
			found = true
			assert.True(t, cookie.HttpOnly)
			_, ok := session.VerifyID(testSecret, cookie.Value)
			assert.True(t, ok, "cookie value must verify against the signing secret")
		}
	}
	assert.True(t, found, "session cookie must be set on first visit")
}

func TestSecurityHeaders(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/menu", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestPostWithoutCSRFTokenIsBlocked(t *testing.T) {
	env := newTestEnv(t)
	env.addDish(t, "Elixir", "89.00")
	sess, cookie := env.newSession(t, 0)

	rec := env.postForm(t, "/position/Elixir", cookie, url.Values{"num": {"2"}})

	assert.Equal(t, http.StatusForbidden, rec.Code)

	stored, err := env.sessions.Load(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Basket, "a blocked request must not mutate the basket")
}

func TestPostWithCSRFTokenAddsToBasket(t *testing.T) {
	env := newTestEnv(t)
	env.addDish(t, "Elixir", "89.00")
	sess, cookie := env.newSession(t, 0)

	rec := env.postForm(t, "/position/Elixir", cookie, url.Values{
		"csrf_token": {sess.CSRFToken},
		"num":        {"2"},
	})

	assert.Equal(t, http.StatusSeeOther, rec.Code)

	stored, err := env.sessions.Load(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Basket["Elixir"])
}

func TestAnonymousVisitorRedirectedToLogin(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/my_orders", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestGuestCannotOpenAdminPages(t *testing.T) {
	env := newTestEnv(t)
	guest := env.addUser(t, "ron", models.RoleGuest)
	_, cookie := env.newSession(t, guest.ID)

	req := httptest.NewRequest(http.MethodGet, "/all_users", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestAdminOpensAdminPages(t *testing.T) {
	env := newTestEnv(t)
	admin := env.addUser(t, "Admin", models.RoleAdmin)
	_, cookie := env.newSession(t, admin.ID)

	req := httptest.NewRequest(http.MethodGet, "/all_users", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Admin")
}

func TestGuestPersonaRefusesAdminNickname(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "Admin", models.RoleAdmin)
	sess, cookie := env.newSession(t, 0)

	rec := env.postForm(t, "/login", cookie, url.Values{
		"csrf_token": {sess.CSRFToken},
		"nickname":   {"Admin"},
		"password":   {"long-password"},
		"persona":    {"guest"},
	})

	assert.Equal(t, http.StatusOK, rec.Code, "refusal renders the login page again")

	stored, err := env.sessions.Load(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.UserID, "the admin account must not log in through the guest persona")
}

func TestLoginBindsUserToSession(t *testing.T) {
	env := newTestEnv(t)
	user := env.addUser(t, "hermione", models.RoleGuest)
	sess, cookie := env.newSession(t, 0)

	rec := env.postForm(t, "/login", cookie, url.Values{
		"csrf_token": {sess.CSRFToken},
		"nickname":   {"hermione"},
		"password":   {"long-password"},
	})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	stored, err := env.sessions.Load(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.UserID)
}

func TestLogoutKeepsBasket(t *testing.T) {
	env := newTestEnv(t)
	user := env.addUser(t, "harry", models.RoleGuest)
	sess, cookie := env.newSession(t, user.ID)
	sess.Basket["Pumpkin Elixir"] = 3
	require.NoError(t, env.sessions.Save(context.Background(), sess))

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)

	stored, err := env.sessions.Load(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.UserID)
	assert.Equal(t, 3, stored.Basket["Pumpkin Elixir"], "logout must not drop the basket")
}

func TestCheckoutClearsBasketAfterCommit(t *testing.T) {
	env := newTestEnv(t)
	user := env.addUser(t, "luna", models.RoleGuest)
	env.addDish(t, "Snowy Owl Pie", "74.00")
	sess, cookie := env.newSession(t, user.ID)
	sess.Basket["Snowy Owl Pie"] = 2
	require.NoError(t, env.sessions.Save(context.Background(), sess))

	rec := env.postForm(t, "/create_order", cookie, url.Values{
		"csrf_token":       {sess.CSRFToken},
		"customer_name":    {"Luna"},
		"customer_phone":   {"+7 777 000 00 00"},
		"customer_address": {"Ravenclaw tower"},
	})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/my_order/1", rec.Header().Get("Location"))

	stored, err := env.sessions.Load(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Basket, "the basket is cleared once the order is persisted")

	ord, err := env.orders.GetOrderByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "148.00", ord.TotalCost.StringFixed(2))
}

func TestCheckoutMissingContactKeepsBasket(t *testing.T) {
	env := newTestEnv(t)
	user := env.addUser(t, "neville", models.RoleGuest)
	env.addDish(t, "Snowy Owl Pie", "74.00")
	sess, cookie := env.newSession(t, user.ID)
	sess.Basket["Snowy Owl Pie"] = 1
	require.NoError(t, env.sessions.Save(context.Background(), sess))

	rec := env.postForm(t, "/create_order", cookie, url.Values{
		"csrf_token":    {sess.CSRFToken},
		"customer_name": {"Neville"},
	})

	assert.Equal(t, http.StatusOK, rec.Code, "validation failure re-renders the form")

	stored, err := env.sessions.Load(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Basket["Snowy Owl Pie"], "a failed checkout must keep the basket")
}

func TestUnknownPageRendersNotFound(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/no_such_page", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
