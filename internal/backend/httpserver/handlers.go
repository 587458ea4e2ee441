package httpserver

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront-engine/internal/domain"
	"storefront-engine/internal/wire"
)

type handlers struct {
	deps   Deps
	logger *log.Logger
}

type loginRequest struct {
	Email      string `json:"email"`
	MotDePasse string `json:"motDePasse"`
	Password   string `json:"password"`
}

// login issues a token for the given email. Unknown emails get an adherent
// record created on the fly so a storefront session always maps to a row.
// The ADMIN role is granted to addresses containing "admin".
func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email is required"})
		return
	}

	role := domain.RoleUser
	if strings.Contains(email, "admin") {
		role = domain.RoleAdmin
	}

	ctx := c.Request.Context()
	user, err := h.deps.Adherents.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		user, err = h.deps.Adherents.Create(ctx, domain.UserRecord{
			LastName: localPart(email),
			Email:    email,
			Password: "default-password",
			Role:     role,
		})
	}
	if err != nil {
		h.logger.Printf("auth: login email=%s error=%v", email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": "tok-" + uuid.NewString(),
		"role":  role,
		"user":  wire.UserRecordPayload(*user),
	})
}

func (h *handlers) listAdherents(c *gin.Context) {
	ctx := c.Request.Context()
	if email := c.Query("email"); email != "" {
		user, err := h.deps.Adherents.GetByEmail(ctx, strings.ToLower(email))
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusOK, []wire.UserRecord{})
			return
		}
		if err != nil {
			h.serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, []wire.UserRecord{wire.UserRecordPayload(*user)})
		return
	}

	users, err := h.deps.Adherents.List(ctx)
	if err != nil {
		h.serverError(c, err)
		return
	}
	out := make([]wire.UserRecord, 0, len(users))
	for _, u := range users {
		out = append(out, wire.UserRecordPayload(u))
	}
	c.JSON(http.StatusOK, out)
}

func (h *handlers) createAdherent(c *gin.Context) {
	var rec wire.UserRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	draft := wire.User(rec)
	if draft.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email is required"})
		return
	}
	if draft.Password == "" {
		draft.Password = "default-password"
	}

	created, err := h.deps.Adherents.Create(c.Request.Context(), draft)
	if errors.Is(err, domain.ErrAlreadyExists) {
		c.JSON(http.StatusConflict, gin.H{"message": "adherent already exists"})
		return
	}
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusCreated, wire.UserRecordPayload(*created))
}

func (h *handlers) getAdherent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	user, err := h.deps.Adherents.GetByID(c.Request.Context(), id)
	if err != nil {
		h.notFoundOrServerError(c, err)
		return
	}
	c.JSON(http.StatusOK, wire.UserRecordPayload(*user))
}

func (h *handlers) getAdherentByEmail(c *gin.Context) {
	email := strings.ToLower(c.Param("email"))
	user, err := h.deps.Adherents.GetByEmail(c.Request.Context(), email)
	if err != nil {
		h.notFoundOrServerError(c, err)
		return
	}
	c.JSON(http.StatusOK, wire.UserRecordPayload(*user))
}

func (h *handlers) listProduits(c *gin.Context) {
	products, err := h.deps.Produits.List(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	out := make([]wire.ProductRecord, 0, len(products))
	for _, p := range products {
		out = append(out, wire.ProductPayload(p))
	}
	c.JSON(http.StatusOK, out)
}

func (h *handlers) getProduit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	product, err := h.deps.Produits.GetByID(c.Request.Context(), id)
	if err != nil {
		h.notFoundOrServerError(c, err)
		return
	}
	c.JSON(http.StatusOK, wire.ProductPayload(*product))
}

func (h *handlers) createProduit(c *gin.Context) {
	var rec wire.ProductRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	product := wire.Product(rec)
	if product.Name == "" || product.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "nom and a non-negative prix are required"})
		return
	}

	created, err := h.deps.Produits.Upsert(c.Request.Context(), product)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusCreated, wire.ProductPayload(*created))
}

func (h *handlers) listCommandes(c *gin.Context) {
	orders, err := h.deps.Commandes.List(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderPayloads(orders))
}

func (h *handlers) createCommande(c *gin.Context) {
	var rec wire.OrderRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	order := wire.Order(rec)
	if order.CustomerID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "adherentId is required"})
		return
	}
	if order.Status == "" {
		order.Status = domain.StatusPending
	}
	if order.OrderDate.IsZero() {
		order.OrderDate = time.Now().UTC()
	}
	if reqID := c.GetHeader("X-Request-Id"); reqID != "" {
		h.logger.Printf("commande: create request_id=%s adherent_id=%d", reqID, order.CustomerID)
	}

	ctx := c.Request.Context()
	if _, err := h.deps.Adherents.GetByID(ctx, order.CustomerID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "unknown adherentId"})
			return
		}
		h.serverError(c, err)
		return
	}

	created, err := h.deps.Commandes.Create(ctx, order)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusCreated, wire.OrderPayload(*created))
}

func (h *handlers) getCommande(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	order, err := h.deps.Commandes.GetByID(c.Request.Context(), id)
	if err != nil {
		h.notFoundOrServerError(c, err)
		return
	}
	c.JSON(http.StatusOK, wire.OrderPayload(*order))
}

func (h *handlers) listCommandesByAdherent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	orders, err := h.deps.Commandes.ListByAdherent(c.Request.Context(), id)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderPayloads(orders))
}

func orderPayloads(orders []domain.Order) []wire.OrderRecord {
	out := make([]wire.OrderRecord, 0, len(orders))
	for _, o := range orders {
		out = append(out, wire.OrderPayload(o))
	}
	return out
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
		return 0, false
	}
	return id, true
}

func localPart(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

func (h *handlers) serverError(c *gin.Context, err error) {
	h.logger.Printf("backend: %s %s error=%v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
}

func (h *handlers) notFoundOrServerError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
		return
	}
	h.serverError(c, err)
}
