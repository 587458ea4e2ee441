package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront-engine/internal/cart"
	"storefront-engine/internal/checkout"
	"storefront-engine/internal/client"
	"storefront-engine/internal/domain"
	"storefront-engine/internal/session"
	"storefront-engine/internal/storage"
)

type stubAuth struct {
	result *client.LoginResult
	err    error
}

func (s *stubAuth) Login(_ context.Context, _, _ string) (*client.LoginResult, error) {
	return s.result, s.err
}

type stubDirectory struct {
	found *domain.UserRecord
}

func (s *stubDirectory) FindByEmail(_ context.Context, _ string) (*domain.UserRecord, error) {
	if s.found == nil {
		return nil, domain.E(domain.KindNotFound, "no user")
	}
	return s.found, nil
}

func (s *stubDirectory) Create(_ context.Context, draft domain.UserDraft) (*domain.UserRecord, error) {
	return &domain.UserRecord{ID: 99, Email: draft.Email, FirstName: draft.FirstName, LastName: draft.LastName, Role: draft.Role}, nil
}

type stubCatalog struct {
	products []domain.Product
}

func (s *stubCatalog) ListAll(_ context.Context) ([]domain.Product, error) {
	return s.products, nil
}

func (s *stubCatalog) GetByID(_ context.Context, id int) (*domain.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, domain.E(domain.KindNotFound, "no product")
}

type stubOrders struct {
	created *domain.Order
	err     error
	listed  []domain.Order
}

func (s *stubOrders) Create(_ context.Context, draft domain.Order, _ string) (*domain.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := draft
	out.ID = 42
	s.created = &out
	return &out, nil
}

func (s *stubOrders) ListByCustomer(_ context.Context, _ int) ([]domain.Order, error) {
	return s.listed, nil
}

type testEnv struct {
	router  http.Handler
	kv      *storage.MemoryStore
	orders  *stubOrders
	session *session.Store
}

func newTestEnv(t *testing.T, auth *stubAuth, dir *stubDirectory) *testEnv {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	kv := storage.NewMemory()
	cartStore := cart.NewStore(kv, logger, nil)
	sessionStore := session.NewStore(kv, auth, dir, logger)
	orders := &stubOrders{}
	orchestrator := checkout.New(cartStore, sessionStore, orders, logger)
	catalog := &stubCatalog{products: []domain.Product{
		{ID: 1, Name: "Mug", Price: 12.5},
		{ID: 2, Name: "Tee", Price: 19.99},
	}}

	router := buildRouter(logger, Deps{
		Cart:     cartStore,
		Session:  sessionStore,
		Checkout: orchestrator,
		Catalog:  catalog,
		Orders:   orders,
	}, []string{"http://localhost:4200"})

	return &testEnv{router: router, kv: kv, orders: orders, session: sessionStore}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t, &stubAuth{}, &stubDirectory{})
	w := env.do(t, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestCartFlow(t *testing.T) {
	env := newTestEnv(t, &stubAuth{}, &stubDirectory{})

	w := env.do(t, http.MethodPost, "/api/cart/items", map[string]any{"productId": 1, "quantity": 2})
	if w.Code != http.StatusOK {
		t.Fatalf("add item: expected 200, got %d: %s", w.Code, w.Body)
	}

	var resp struct {
		Items   []domain.CartItem  `json:"items"`
		Summary domain.CartSummary `json:"summary"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items: %+v", resp.Items)
	}
	if resp.Summary.Subtotal != 25 {
		t.Fatalf("expected subtotal 25, got %v", resp.Summary.Subtotal)
	}

	w = env.do(t, http.MethodPut, "/api/cart/items/quantity", map[string]any{"productId": 1, "quantity": 5})
	if w.Code != http.StatusOK {
		t.Fatalf("set quantity: expected 200, got %d", w.Code)
	}

	w = env.do(t, http.MethodDelete, "/api/cart/items", map[string]any{"productId": 1})
	if w.Code != http.StatusOK {
		t.Fatalf("remove: expected 200, got %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Items) != 0 {
		t.Fatalf("expected empty cart, got %+v", resp.Items)
	}
}

func TestCartAddUnknownProduct(t *testing.T) {
	env := newTestEnv(t, &stubAuth{}, &stubDirectory{})
	w := env.do(t, http.MethodPost, "/api/cart/items", map[string]any{"productId": 777})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown product, got %d", w.Code)
	}
}

func TestLoginAndSession(t *testing.T) {
	auth := &stubAuth{result: &client.LoginResult{
		Token: "tok-1",
		Role:  domain.RoleUser,
		User:  &domain.UserRecord{ID: 7, Email: "jane@example.com", FirstName: "Jane", LastName: "Doe", Role: domain.RoleUser},
	}}
	env := newTestEnv(t, auth, &stubDirectory{})

	w := env.do(t, http.MethodPost, "/api/session/login", map[string]string{"email": "jane@example.com", "password": "pw"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body)
	}

	w = env.do(t, http.MethodGet, "/api/session", nil)
	var sess struct {
		Authenticated bool                 `json:"authenticated"`
		State         domain.SessionState  `json:"state"`
		User          *domain.UserIdentity `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &sess); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !sess.Authenticated || sess.State != domain.SessionResolved || sess.User == nil || sess.User.ID != 7 {
		t.Fatalf("unexpected session: %+v", sess)
	}

	w = env.do(t, http.MethodPost, "/api/session/logout", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("logout: expected 204, got %d", w.Code)
	}
}

func TestLoginRejected(t *testing.T) {
	auth := &stubAuth{err: domain.E(domain.KindUnauthorized, "bad credentials")}
	env := newTestEnv(t, auth, &stubDirectory{})

	w := env.do(t, http.MethodPost, "/api/session/login", map[string]string{"email": "jane@example.com", "password": "nope"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestLoginFallsBackOfflineOnTransportFailure(t *testing.T) {
	auth := &stubAuth{err: domain.E(domain.KindTransport, "connection refused")}
	dir := &stubDirectory{found: &domain.UserRecord{ID: 5, Email: "admin@example.com", Role: domain.RoleAdmin}}
	env := newTestEnv(t, auth, dir)

	w := env.do(t, http.MethodPost, "/api/session/login", map[string]string{"email": "admin@example.com", "password": "pw"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected offline fallback 200, got %d: %s", w.Code, w.Body)
	}
	if env.session.Role() != domain.RoleAdmin {
		t.Fatalf("expected offline admin role, got %q", env.session.Role())
	}
}

func TestCheckoutRequiresItemsAndSession(t *testing.T) {
	env := newTestEnv(t, &stubAuth{}, &stubDirectory{})

	w := env.do(t, http.MethodPost, "/api/checkout", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty cart, got %d", w.Code)
	}

	env.do(t, http.MethodPost, "/api/cart/items", map[string]any{"productId": 1})
	w = env.do(t, http.MethodPost, "/api/checkout", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", w.Code)
	}
}

func TestCheckoutHappyPath(t *testing.T) {
	auth := &stubAuth{result: &client.LoginResult{
		Token: "tok-1",
		Role:  domain.RoleUser,
		User:  &domain.UserRecord{ID: 7, Email: "jane@example.com", Role: domain.RoleUser},
	}}
	env := newTestEnv(t, auth, &stubDirectory{})

	env.do(t, http.MethodPost, "/api/session/login", map[string]string{"email": "jane@example.com", "password": "pw"})
	env.do(t, http.MethodPost, "/api/cart/items", map[string]any{"productId": 2, "quantity": 1})

	w := env.do(t, http.MethodPost, "/api/checkout", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body)
	}
	var order domain.Order
	if err := json.Unmarshal(w.Body.Bytes(), &order); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if order.ID != 42 || order.CustomerID != 7 {
		t.Fatalf("unexpected order: %+v", order)
	}

	// Cart is cleared only after the confirmed order.
	w = env.do(t, http.MethodGet, "/api/cart", nil)
	var resp struct {
		Items []domain.CartItem `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Items) != 0 {
		t.Fatalf("expected cleared cart, got %+v", resp.Items)
	}

	w = env.do(t, http.MethodGet, "/api/checkout/status", nil)
	var status struct {
		State checkout.State `json:"state"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.State != checkout.StateSucceeded {
		t.Fatalf("expected succeeded, got %s", status.State)
	}

	w = env.do(t, http.MethodPost, "/api/checkout/reset", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("reset: expected 204, got %d", w.Code)
	}
}

func TestPromoEndpoint(t *testing.T) {
	env := newTestEnv(t, &stubAuth{}, &stubDirectory{})
	env.do(t, http.MethodPost, "/api/cart/items", map[string]any{"productId": 2, "quantity": 3})

	w := env.do(t, http.MethodPost, "/api/cart/promo", map[string]string{"code": "BULK5"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body)
	}
	var resp struct {
		Result  cart.PromoResult   `json:"result"`
		Summary domain.CartSummary `json:"summary"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Result.Success || resp.Summary.Discount != 5 {
		t.Fatalf("unexpected promo response: %+v", resp)
	}
}

func TestOrdersRequireSession(t *testing.T) {
	env := newTestEnv(t, &stubAuth{}, &stubDirectory{})
	w := env.do(t, http.MethodGet, "/api/orders", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}
