package httpserver

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-engine/internal/checkout"
	"storefront-engine/internal/domain"
)

type handlers struct {
	deps   Deps
	logger *log.Logger
}

type cartItemRequest struct {
	ProductID int    `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
	Color     string `json:"color"`
	Size      string `json:"size"`
}

type promoRequest struct {
	Code string `json:"code" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *handlers) listProducts(c *gin.Context) {
	products, err := h.deps.Catalog.ListAll(c.Request.Context())
	if err != nil {
		abortClassified(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *handlers) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"items":   h.deps.Cart.Items(),
		"summary": h.deps.Cart.Summary(),
	})
}

func (h *handlers) addCartItem(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	product, err := h.deps.Catalog.GetByID(c.Request.Context(), req.ProductID)
	if err != nil {
		abortClassified(c, err)
		return
	}
	h.deps.Cart.Add(*product, req.Quantity, domain.Variant{Color: req.Color, Size: req.Size})
	h.getCart(c)
}

func (h *handlers) removeCartItem(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	h.deps.Cart.Remove(req.ProductID, domain.Variant{Color: req.Color, Size: req.Size})
	h.getCart(c)
}

func (h *handlers) setCartQuantity(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	h.deps.Cart.SetQuantity(req.ProductID, req.Quantity, domain.Variant{Color: req.Color, Size: req.Size})
	h.getCart(c)
}

func (h *handlers) clearCart(c *gin.Context) {
	h.deps.Cart.Clear()
	h.getCart(c)
}

func (h *handlers) applyPromo(c *gin.Context) {
	var req promoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	result, err := h.deps.Cart.ApplyPromoCode(c.Request.Context(), req.Code)
	if err != nil {
		abortClassified(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result, "summary": h.deps.Cart.Summary()})
}

func (h *handlers) getSession(c *gin.Context) {
	resp := gin.H{
		"authenticated": h.deps.Session.IsAuthenticated(),
		"state":         h.deps.Session.State(),
		"role":          h.deps.Session.Role(),
	}
	if u := h.deps.Session.CurrentUser(); u != nil {
		resp["user"] = u
	}
	c.JSON(http.StatusOK, resp)
}

// login tries the auth endpoint first and falls back to offline login when
// the endpoint is unreachable, mirroring the storefront's degraded mode.
func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	ctx := c.Request.Context()
	ok, err := h.deps.Session.Login(ctx, req.Email, req.Password)
	if err != nil && !ok && domain.IsKind(err, domain.KindTransport) {
		h.logger.Printf("facade: auth unreachable, falling back to offline login: %v", err)
		ok, err = h.deps.Session.LoginOffline(ctx, req.Email, req.Password)
	}
	if err != nil {
		if !ok {
			abortClassified(c, err)
			return
		}
		// Authenticated but unresolved; recovery runs again at checkout.
		h.logger.Printf("facade: identity unresolved after login: %v", err)
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid email or password"})
		return
	}
	h.getSession(c)
}

func (h *handlers) logout(c *gin.Context) {
	if err := h.deps.Session.Logout(); err != nil {
		h.logger.Printf("facade: logout: %v", err)
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) submitCheckout(c *gin.Context) {
	order, err := h.deps.Checkout.Checkout(c.Request.Context())
	if err != nil {
		if errors.Is(err, checkout.ErrSubmissionInFlight) {
			c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
			return
		}
		abortClassified(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *handlers) checkoutStatus(c *gin.Context) {
	state, err := h.deps.Checkout.Status()
	resp := gin.H{"state": state}
	if err != nil {
		resp["error"] = err.Error()
		resp["kind"] = domain.KindOf(err)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handlers) resetCheckout(c *gin.Context) {
	h.deps.Checkout.Reset()
	c.Status(http.StatusNoContent)
}

func (h *handlers) listOrders(c *gin.Context) {
	user := h.deps.Session.CurrentUser()
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "login required"})
		return
	}
	orders, err := h.deps.Orders.ListByCustomer(c.Request.Context(), user.ID)
	if err != nil {
		abortClassified(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// abortClassified maps the error taxonomy onto facade status codes.
func abortClassified(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch domain.KindOf(err) {
	case domain.KindEmptyCart, domain.KindValidationRejected:
		status = http.StatusBadRequest
	case domain.KindNotAuthenticated, domain.KindUnauthorized, domain.KindIdentityUnresolved:
		status = http.StatusUnauthorized
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindServerError:
		status = http.StatusBadGateway
	case domain.KindTransport:
		status = http.StatusGatewayTimeout
	}
	c.JSON(status, gin.H{"message": err.Error(), "kind": domain.KindOf(err)})
}
