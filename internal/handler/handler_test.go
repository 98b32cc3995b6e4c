package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/alhussam/store-api/internal/assistant"
	"github.com/alhussam/store-api/internal/domain/cart"
	"github.com/alhussam/store-api/internal/domain/checkout"
	"github.com/alhussam/store-api/internal/domain/coupon"
	"github.com/alhussam/store-api/internal/domain/currency"
	"github.com/alhussam/store-api/internal/domain/favorites"
	"github.com/alhussam/store-api/internal/domain/order"
	"github.com/alhussam/store-api/internal/domain/product"
	"github.com/alhussam/store-api/internal/domain/shipping"
	"github.com/alhussam/store-api/internal/domain/user"
	"github.com/alhussam/store-api/internal/events"
	"github.com/alhussam/store-api/internal/session"
)

// In-memory fakes backing the full router under test.

type memProducts struct{ m map[string]product.Product }

func newMemProducts() *memProducts { return &memProducts{m: map[string]product.Product{}} }

func (s *memProducts) List(context.Context) ([]product.Product, error) {
	out := make([]product.Product, 0, len(s.m))
	for _, p := range s.m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memProducts) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := s.m[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (s *memProducts) GetByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	var out []product.Product
	for _, id := range ids {
		if p, ok := s.m[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memProducts) Create(_ context.Context, p *product.Product) error {
	s.m[p.ID] = *p
	return nil
}

func (s *memProducts) Update(_ context.Context, p *product.Product) error {
	if _, ok := s.m[p.ID]; !ok {
		return product.ErrNotFound
	}
	s.m[p.ID] = *p
	return nil
}

func (s *memProducts) Delete(_ context.Context, id string) error {
	if _, ok := s.m[id]; !ok {
		return product.ErrNotFound
	}
	delete(s.m, id)
	return nil
}

func (s *memProducts) DecrementStock(_ context.Context, id string, qty int) error {
	p, ok := s.m[id]
	if !ok {
		return nil
	}
	p.Stock -= qty
	if p.Stock < 0 {
		p.Stock = 0
	}
	s.m[id] = p
	return nil
}

// memReviews mirrors the transactional aggregate refresh against memProducts.
type memReviews struct {
	products *memProducts
	m        map[string][]product.Review
}

func newMemReviews(products *memProducts) *memReviews {
	return &memReviews{products: products, m: map[string][]product.Review{}}
}

func (s *memReviews) ListByProduct(_ context.Context, productID string) ([]product.Review, error) {
	return append([]product.Review(nil), s.m[productID]...), nil
}

func (s *memReviews) Add(_ context.Context, rev product.Review) error {
	if err := rev.Validate(); err != nil {
		return err
	}
	p, ok := s.products.m[rev.ProductID]
	if !ok {
		return product.ErrNotFound
	}

	s.m[rev.ProductID] = append([]product.Review{rev}, s.m[rev.ProductID]...)

	total := 0
	for _, r := range s.m[rev.ProductID] {
		total += r.Rating
	}
	n := len(s.m[rev.ProductID])
	p.ReviewsCount = n
	p.Rating = decimal.NewFromInt(int64(total)).Div(decimal.NewFromInt(int64(n))).Round(1)
	s.products.m[rev.ProductID] = p
	return nil
}

type memCarts struct{ m map[string][]cart.Line }

func newMemCarts() *memCarts { return &memCarts{m: map[string][]cart.Line{}} }

func (s *memCarts) Get(_ context.Context, userID string) ([]cart.Line, error) {
	return append([]cart.Line(nil), s.m[userID]...), nil
}

func (s *memCarts) AddLine(_ context.Context, userID string, line cart.Line) error {
	if line.Quantity < 1 {
		return cart.ErrInvalidQuantity
	}
	for i, l := range s.m[userID] {
		if l.ProductID == line.ProductID {
			s.m[userID][i].Quantity += line.Quantity
			return nil
		}
	}
	s.m[userID] = append(s.m[userID], line)
	return nil
}

func (s *memCarts) UpdateQuantity(_ context.Context, userID, productID string, quantity int) error {
	if quantity < 1 {
		return cart.ErrInvalidQuantity
	}
	for i, l := range s.m[userID] {
		if l.ProductID == productID {
			s.m[userID][i].Quantity = quantity
			return nil
		}
	}
	return cart.ErrLineNotFound
}

func (s *memCarts) RemoveLine(_ context.Context, userID, productID string) error {
	lines := s.m[userID]
	for i, l := range lines {
		if l.ProductID == productID {
			s.m[userID] = append(lines[:i], lines[i+1:]...)
			return nil
		}
	}
	return cart.ErrLineNotFound
}

func (s *memCarts) Clear(_ context.Context, userID string) error {
	delete(s.m, userID)
	return nil
}

type memFavorites struct{ m map[string][]string }

func newMemFavorites() *memFavorites { return &memFavorites{m: map[string][]string{}} }

func (s *memFavorites) List(_ context.Context, userID string) ([]string, error) {
	return append([]string(nil), s.m[userID]...), nil
}

func (s *memFavorites) Add(_ context.Context, userID, productID string) error {
	for _, id := range s.m[userID] {
		if id == productID {
			return nil
		}
	}
	s.m[userID] = append(s.m[userID], productID)
	return nil
}

func (s *memFavorites) Remove(_ context.Context, userID, productID string) error {
	ids := s.m[userID]
	for i, id := range ids {
		if id == productID {
			s.m[userID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return favorites.ErrNotFavorite
}

type memShippings struct{ opts []shipping.Option }

func (s *memShippings) List(context.Context) ([]shipping.Option, error) {
	return append([]shipping.Option(nil), s.opts...), nil
}

func (s *memShippings) GetByID(_ context.Context, id string) (*shipping.Option, error) {
	for _, o := range s.opts {
		if o.ID == id {
			opt := o
			return &opt, nil
		}
	}
	return nil, shipping.ErrNotFound
}

type memCoupons struct{ m map[string]coupon.Coupon } // keyed by id

func newMemCoupons() *memCoupons { return &memCoupons{m: map[string]coupon.Coupon{}} }

func (s *memCoupons) FindByCode(_ context.Context, code string) (*coupon.Coupon, error) {
	for _, c := range s.m {
		if c.Code == code {
			out := c
			return &out, nil
		}
	}
	return nil, coupon.ErrInvalidCode
}

func (s *memCoupons) List(context.Context) ([]coupon.Coupon, error) {
	out := make([]coupon.Coupon, 0, len(s.m))
	for _, c := range s.m {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s *memCoupons) Create(_ context.Context, c *coupon.Coupon) error {
	if _, err := s.FindByCode(context.Background(), c.Code); err == nil {
		return coupon.ErrDuplicateCode
	}
	s.m[c.ID] = *c
	return nil
}

func (s *memCoupons) Update(_ context.Context, c *coupon.Coupon) error {
	prev, ok := s.m[c.ID]
	if !ok {
		return coupon.ErrNotFound
	}
	// Usage count and creation time are not updatable columns.
	next := *c
	next.UsageCount = prev.UsageCount
	next.CreatedAt = prev.CreatedAt
	s.m[c.ID] = next
	return nil
}

func (s *memCoupons) Delete(_ context.Context, id string) error {
	if _, ok := s.m[id]; !ok {
		return coupon.ErrNotFound
	}
	delete(s.m, id)
	return nil
}

func (s *memCoupons) IncrementUsage(_ context.Context, code string) error {
	for id, c := range s.m {
		if c.Code == code {
			c.UsageCount++
			s.m[id] = c
		}
	}
	return nil
}

type memRates struct{ rates currency.Rates }

func (s *memRates) Get(context.Context) (currency.Rates, error) { return s.rates, nil }

func (s *memRates) Update(_ context.Context, rates currency.Rates) error {
	if err := rates.Validate(); err != nil {
		return err
	}
	s.rates = rates
	return nil
}

type memUsers struct{ m map[string]user.User }

func newMemUsers() *memUsers { return &memUsers{m: map[string]user.User{}} }

func (s *memUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := s.m[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return &u, nil
}

func (s *memUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range s.m {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *memUsers) List(context.Context) ([]user.User, error) {
	out := make([]user.User, 0, len(s.m))
	for _, u := range s.m {
		out = append(out, u)
	}
	return out, nil
}

func (s *memUsers) Create(_ context.Context, u *user.User) error {
	if _, err := s.GetByEmail(context.Background(), u.Email); err == nil {
		return user.ErrEmailTaken
	}
	s.m[u.ID] = *u
	return nil
}

func (s *memUsers) Update(_ context.Context, u *user.User) error {
	if _, ok := s.m[u.ID]; !ok {
		return user.ErrNotFound
	}
	s.m[u.ID] = *u
	return nil
}

func (s *memUsers) Delete(_ context.Context, id string) error {
	delete(s.m, id)
	return nil
}

type memOrders struct{ orders []order.Order }

func (s *memOrders) Create(_ context.Context, o *order.Order) error {
	s.orders = append(s.orders, *o)
	return nil
}

func (s *memOrders) GetByID(_ context.Context, id string) (*order.Order, error) {
	for _, o := range s.orders {
		if o.ID == id {
			out := o
			return &out, nil
		}
	}
	return nil, order.ErrNotFound
}

func (s *memOrders) ListByBuyer(_ context.Context, buyerID string) ([]order.Order, error) {
	var out []order.Order
	for _, o := range s.orders {
		if o.BuyerID == buyerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *memOrders) ListAll(context.Context) ([]order.Order, error) {
	return append([]order.Order(nil), s.orders...), nil
}

func (s *memOrders) UpdateStatus(_ context.Context, id string, status order.Status) error {
	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders[i].Status = status
			return nil
		}
	}
	return order.ErrNotFound
}

func (s *memOrders) Delete(_ context.Context, id string) error {
	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders = append(s.orders[:i], s.orders[i+1:]...)
			return nil
		}
	}
	return order.ErrNotFound
}

// memStore mirrors the transactional checkout commit against the fakes.
type memStore struct {
	orders   *memOrders
	carts    *memCarts
	products *memProducts
	coupons  *memCoupons
}

func (s *memStore) CommitOrder(ctx context.Context, o *order.Order) error {
	if err := s.orders.Create(ctx, o); err != nil {
		return err
	}
	if err := s.carts.Clear(ctx, o.BuyerID); err != nil {
		return err
	}
	for _, item := range o.Items {
		if err := s.products.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}
	if o.CouponCode != "" {
		return s.coupons.IncrementUsage(ctx, o.CouponCode)
	}
	return nil
}

// env is a fully wired router over in-memory stores, seeded with the demo
// catalog subset the tests rely on.
type env struct {
	router    http.Handler
	products  *memProducts
	carts     *memCarts
	coupons   *memCoupons
	orders    *memOrders
	rates     *memRates
	usersRepo *memUsers
	users     *user.Service
}

func newEnv(t *testing.T) *env {
	t.Helper()
	lg := zaptest.NewLogger(t)

	products := newMemProducts()
	products.m["p-oud"] = product.Product{
		ID: "p-oud", Name: "عود ملكي", Price: decimal.NewFromInt(100),
		Category: "perfume", Stock: 10,
	}
	products.m["p-musk"] = product.Product{
		ID: "p-musk", Name: "مسك أبيض", Price: decimal.NewFromInt(50),
		Category: "perfume", Stock: 3,
	}

	shippings := &memShippings{opts: []shipping.Option{
		{ID: "standard", Name: "Standard", FlatFee: decimal.NewFromInt(25)},
		{ID: "express", Name: "Express", FlatFee: decimal.NewFromInt(50)},
		{ID: "pickup", Name: "Pickup", FlatFee: decimal.Zero},
	}}

	coupons := newMemCoupons()
	coupons.m["c-welcome"] = coupon.Coupon{
		ID: "c-welcome", Code: "WELCOME20",
		DiscountPercent: decimal.NewFromInt(20), Active: true,
	}
	coupons.m["c-summer"] = coupon.Coupon{
		ID: "c-summer", Code: "SUMMER",
		DiscountPercent: decimal.NewFromInt(15), Active: false,
	}

	reviews := newMemReviews(products)
	carts := newMemCarts()
	favs := newMemFavorites()
	orders := &memOrders{}
	rates := &memRates{rates: currency.DefaultRates()}
	users := newMemUsers()

	userSvc := user.NewService(users, session.NewMemory(), []byte("test-pepper"))
	orderSvc := order.NewService(orders, events.Noop{}, lg)
	store := &memStore{orders: orders, carts: carts, products: products, coupons: coupons}
	checkoutSvc := checkout.NewService(
		products, carts, shippings,
		coupon.NewRepoEvaluator(coupons),
		store, events.Noop{}, lg,
	)

	h := New(Deps{
		Products:  products,
		Reviews:   reviews,
		Carts:     carts,
		Favorites: favs,
		Shippings: shippings,
		Coupons:   coupons,
		Evaluator: coupon.NewRepoEvaluator(coupons),
		Rates:     rates,
		Users:     userSvc,
		Orders:    orderSvc,
		Checkout:  checkoutSvc,
		Assistant: assistant.NewClient("", ""),
	})

	return &env{
		router:    h.Routes(),
		products:  products,
		carts:     carts,
		coupons:   coupons,
		orders:    orders,
		rates:     rates,
		usersRepo: users,
		users:     userSvc,
	}
}

func (e *env) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

// registerCustomer creates an account through the API and returns its token.
func (e *env) registerCustomer(t *testing.T, email string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/auth/register", "", credentialsRequest{
		Name: "Test Customer", Email: email, Password: "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeBody[authResponse](t, w).Token
}

// adminToken registers an account and promotes it to administrator in the
// backing store; the existing token keeps working because roles are resolved
// per request.
func (e *env) adminToken(t *testing.T) string {
	t.Helper()
	token := e.registerCustomer(t, "admin@alhussam.store")

	u, err := e.users.Authenticate(context.Background(), token)
	require.NoError(t, err)

	stored := e.usersRepo.m[u.ID]
	stored.Role = user.RoleAdmin
	e.usersRepo.m[u.ID] = stored

	return token
}
