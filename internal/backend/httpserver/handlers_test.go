package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront-engine/internal/domain"
)

type stubAdherents struct {
	byEmail map[string]*domain.UserRecord
	nextID  int
	created []domain.UserRecord
}

func newStubAdherents() *stubAdherents {
	return &stubAdherents{byEmail: map[string]*domain.UserRecord{}, nextID: 1}
}

func (s *stubAdherents) Create(_ context.Context, u domain.UserRecord) (*domain.UserRecord, error) {
	if _, ok := s.byEmail[u.Email]; ok {
		return nil, domain.ErrAlreadyExists
	}
	u.ID = s.nextID
	s.nextID++
	s.byEmail[u.Email] = &u
	s.created = append(s.created, u)
	return &u, nil
}

func (s *stubAdherents) GetByEmail(_ context.Context, email string) (*domain.UserRecord, error) {
	if u, ok := s.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubAdherents) GetByID(_ context.Context, id int) (*domain.UserRecord, error) {
	for _, u := range s.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubAdherents) List(_ context.Context) ([]domain.UserRecord, error) {
	var out []domain.UserRecord
	for _, u := range s.byEmail {
		out = append(out, *u)
	}
	return out, nil
}

type stubProduits struct {
	products []domain.Product
}

func (s *stubProduits) List(_ context.Context) ([]domain.Product, error) {
	return s.products, nil
}

func (s *stubProduits) GetByID(_ context.Context, id int) (*domain.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubProduits) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	if p.ID == 0 {
		p.ID = len(s.products) + 1
	}
	s.products = append(s.products, p)
	return &p, nil
}

type stubCommandes struct {
	orders []domain.Order
}

func (s *stubCommandes) Create(_ context.Context, o domain.Order) (*domain.Order, error) {
	o.ID = len(s.orders) + 1
	s.orders = append(s.orders, o)
	return &o, nil
}

func (s *stubCommandes) GetByID(_ context.Context, id int) (*domain.Order, error) {
	for _, o := range s.orders {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubCommandes) List(_ context.Context) ([]domain.Order, error) {
	return s.orders, nil
}

func (s *stubCommandes) ListByAdherent(_ context.Context, adherentID int) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range s.orders {
		if o.CustomerID == adherentID {
			out = append(out, o)
		}
	}
	return out, nil
}

func newTestRouter(adherents *stubAdherents, produits *stubProduits, commandes *stubCommandes) http.Handler {
	logger := log.New(io.Discard, "", 0)
	return buildRouter(logger, Deps{
		Adherents: adherents,
		Produits:  produits,
		Commandes: commandes,
	}, []string{"http://localhost:4200"})
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
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
	router.ServeHTTP(w, req)
	return w
}

func TestLoginCreatesMissingAdherent(t *testing.T) {
	adherents := newStubAdherents()
	router := newTestRouter(adherents, &stubProduits{}, &stubCommandes{})

	w := doJSON(t, router, http.MethodPost, "/api/auth/login", map[string]string{"email": "Jane.Doe@Example.com", "motDePasse": "pw"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body)
	}

	var resp struct {
		Token string `json:"token"`
		Role  string `json:"role"`
		User  struct {
			ID    int    `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(resp.Token, "tok-") {
		t.Fatalf("expected opaque token, got %q", resp.Token)
	}
	if resp.Role != domain.RoleUser {
		t.Fatalf("expected USER role, got %q", resp.Role)
	}
	if resp.User.ID == 0 || resp.User.Email != "jane.doe@example.com" {
		t.Fatalf("expected created adherent, got %+v", resp.User)
	}
	if len(adherents.created) != 1 || adherents.created[0].Password != "default-password" {
		t.Fatalf("expected find-or-create with placeholder password, got %+v", adherents.created)
	}

	// Second login resolves the existing row instead of creating another.
	w = doJSON(t, router, http.MethodPost, "/api/auth/login", map[string]string{"email": "jane.doe@example.com", "password": "pw"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(adherents.created) != 1 {
		t.Fatalf("expected no duplicate adherent, got %d", len(adherents.created))
	}
}

func TestLoginAdminRole(t *testing.T) {
	router := newTestRouter(newStubAdherents(), &stubProduits{}, &stubCommandes{})
	w := doJSON(t, router, http.MethodPost, "/api/auth/login", map[string]string{"email": "admin@example.com", "motDePasse": "pw"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Role string `json:"role"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Role != domain.RoleAdmin {
		t.Fatalf("expected ADMIN role, got %q", resp.Role)
	}
}

func TestAdherentEndpoints(t *testing.T) {
	adherents := newStubAdherents()
	router := newTestRouter(adherents, &stubProduits{}, &stubCommandes{})

	w := doJSON(t, router, http.MethodPost, "/api/adherents", map[string]string{"nom": "Doe", "prénom": "Jane", "email": "jane@example.com"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body)
	}

	w = doJSON(t, router, http.MethodPost, "/api/adherents", map[string]string{"nom": "Doe", "email": "jane@example.com"})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate: expected 409, got %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/api/adherents/email/jane@example.com", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("by email: expected 200, got %d", w.Code)
	}
	var rec map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec["nom"] != "Doe" || rec["prénom"] != "Jane" {
		t.Fatalf("expected native keys, got %v", rec)
	}
	if _, ok := rec["motDePasse"]; ok {
		t.Fatalf("password leaked: %v", rec)
	}

	w = doJSON(t, router, http.MethodGet, "/api/adherents?email=ghost@example.com", nil)
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("filtered list miss: expected empty array, got %d %s", w.Code, w.Body)
	}

	w = doJSON(t, router, http.MethodGet, "/api/adherents/email/ghost@example.com", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing: expected 404, got %d", w.Code)
	}
}

func TestProduitEndpoints(t *testing.T) {
	produits := &stubProduits{products: []domain.Product{{ID: 1, Name: "Mug", Price: 12.5, Stock: 3}}}
	router := newTestRouter(newStubAdherents(), produits, &stubCommandes{})

	w := doJSON(t, router, http.MethodGet, "/api/produits", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", w.Code)
	}
	var list []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 1 || list[0]["nom"] != "Mug" || list[0]["prix"] != 12.5 {
		t.Fatalf("expected native keys, got %v", list)
	}

	w = doJSON(t, router, http.MethodGet, "/api/produits/9", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing: expected 404, got %d", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/api/produits", map[string]any{"nom": "Tee", "prix": 19.99, "stock": 5})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body)
	}

	w = doJSON(t, router, http.MethodPost, "/api/produits", map[string]any{"prix": 5.0})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid: expected 400, got %d", w.Code)
	}
}

func TestCommandeEndpoints(t *testing.T) {
	adherents := newStubAdherents()
	if _, err := adherents.Create(context.Background(), domain.UserRecord{Email: "jane@example.com"}); err != nil {
		t.Fatalf("seed adherent: %v", err)
	}
	commandes := &stubCommandes{}
	router := newTestRouter(adherents, &stubProduits{}, commandes)

	w := doJSON(t, router, http.MethodPost, "/api/commandes", map[string]any{
		"adherentId":   1,
		"montantTotal": 61.74,
		"produitIds":   []int{1, 5},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body)
	}
	var rec map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec["statut"] != domain.StatusPending {
		t.Fatalf("expected default statut, got %v", rec["statut"])
	}
	if rec["dateCommande"] == nil {
		t.Fatalf("expected defaulted dateCommande, got %v", rec)
	}

	w = doJSON(t, router, http.MethodPost, "/api/commandes", map[string]any{"adherentId": 99, "montantTotal": 1.0})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown adherent: expected 400, got %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/api/commandes/user/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("by adherent: expected 200, got %d", w.Code)
	}
	var list []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 1 || list[0]["adherentId"] != float64(1) {
		t.Fatalf("expected one order for adherent 1, got %v", list)
	}

	w = doJSON(t, router, http.MethodGet, "/api/commandes/7", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing: expected 404, got %d", w.Code)
	}
}
