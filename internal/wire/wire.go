// Package wire is the single place that speaks the backend's two field
// naming conventions: the native set (nom, prénom, prix, idCommande,
// dateCommande, statut, adherentId, montantTotal, produitIds, motDePasse)
// and the transliterated set (name, prenom, price, id, orderDate, status,
// customerId, totalAmount, productIds, password). Which set a payload uses
// depends on which backend endpoint answered, so every inbound record is
// normalized here before it reaches cart/session/order logic, and every
// outbound record is denormalized here into the convention the target
// endpoint requires. Dual-named fields must not leak past this package.
package wire

import (
	"time"

	"storefront-engine/internal/domain"
)

// ProductRecord carries a catalog payload in either convention.
type ProductRecord struct {
	ID          int     `json:"id,omitempty"`
	IDProduit   int     `json:"idProduit,omitempty"`
	Nom         string  `json:"nom,omitempty"`
	Name        string  `json:"name,omitempty"`
	Description string  `json:"description,omitempty"`
	Prix        float64 `json:"prix,omitempty"`
	Price       float64 `json:"price,omitempty"`
	Stock       int     `json:"stock,omitempty"`
	Image       string  `json:"image,omitempty"`
	CategoryID  int     `json:"categorieId,omitempty"`
}

// Product normalizes a catalog payload into the canonical shape.
func Product(r ProductRecord) domain.Product {
	return domain.Product{
		ID:          firstInt(r.IDProduit, r.ID),
		Name:        firstString(r.Nom, r.Name),
		Description: r.Description,
		Price:       firstFloat(r.Prix, r.Price),
		Stock:       r.Stock,
		Image:       r.Image,
		CategoryID:  r.CategoryID,
	}
}

// ProductPayload denormalizes a canonical product into the native
// convention the catalog endpoint stores.
func ProductPayload(p domain.Product) ProductRecord {
	return ProductRecord{
		IDProduit:   p.ID,
		Nom:         p.Name,
		Description: p.Description,
		Prix:        p.Price,
		Stock:       p.Stock,
		Image:       p.Image,
		CategoryID:  p.CategoryID,
	}
}

// UserRecord carries a directory payload in either convention. The accented
// native key and its transliteration coexist in the wild.
type UserRecord struct {
	ID            int    `json:"id,omitempty"`
	Nom           string `json:"nom,omitempty"`
	Name          string `json:"name,omitempty"`
	PrenomNative  string `json:"prénom,omitempty"`
	Prenom        string `json:"prenom,omitempty"`
	Email         string `json:"email,omitempty"`
	MotDePasse    string `json:"motDePasse,omitempty"`
	Password      string `json:"password,omitempty"`
	Role          string `json:"role,omitempty"`
}

// User normalizes a directory payload into the canonical record.
func User(r UserRecord) domain.UserRecord {
	return domain.UserRecord{
		ID:        r.ID,
		LastName:  firstString(r.Nom, r.Name),
		FirstName: firstString(r.PrenomNative, r.Prenom),
		Email:     r.Email,
		Password:  firstString(r.MotDePasse, r.Password),
		Role:      r.Role,
	}
}

// UserPayload denormalizes a user draft into the native convention the
// directory's create endpoint expects.
func UserPayload(d domain.UserDraft) UserRecord {
	return UserRecord{
		Nom:          d.LastName,
		PrenomNative: d.FirstName,
		Email:        d.Email,
		MotDePasse:   d.Password,
		Role:         d.Role,
	}
}

// UserRecordPayload denormalizes a stored user record, id included, into
// the native convention. The password is never echoed back.
func UserRecordPayload(u domain.UserRecord) UserRecord {
	return UserRecord{
		ID:           u.ID,
		Nom:          u.LastName,
		PrenomNative: u.FirstName,
		Email:        u.Email,
		Role:         u.Role,
	}
}

// OrderRecord carries an order payload in either convention.
type OrderRecord struct {
	IDCommande   int     `json:"idCommande,omitempty"`
	ID           int     `json:"id,omitempty"`
	DateCommande string  `json:"dateCommande,omitempty"`
	OrderDate    string  `json:"orderDate,omitempty"`
	Statut       string  `json:"statut,omitempty"`
	Status       string  `json:"status,omitempty"`
	AdherentID   int     `json:"adherentId,omitempty"`
	CustomerID   int     `json:"customerId,omitempty"`
	MontantTotal float64 `json:"montantTotal,omitempty"`
	TotalAmount  float64 `json:"totalAmount,omitempty"`
	ProduitIDs   []int   `json:"produitIds,omitempty"`
	ProductIDs   []int   `json:"productIds,omitempty"`
}

// Order normalizes an order payload into the canonical shape.
func Order(r OrderRecord) domain.Order {
	return domain.Order{
		ID:          firstInt(r.IDCommande, r.ID),
		CustomerID:  firstInt(r.AdherentID, r.CustomerID),
		TotalAmount: firstFloat(r.MontantTotal, r.TotalAmount),
		Status:      firstString(r.Statut, r.Status),
		OrderDate:   parseDate(firstString(r.DateCommande, r.OrderDate)),
		LineItemIDs: firstInts(r.ProduitIDs, r.ProductIDs),
	}
}

// OrderPayload denormalizes an order draft into the native convention the
// order ledger expects.
func OrderPayload(o domain.Order) OrderRecord {
	date := ""
	if !o.OrderDate.IsZero() {
		date = o.OrderDate.UTC().Format(time.RFC3339)
	}
	return OrderRecord{
		IDCommande:   o.ID,
		DateCommande: date,
		Statut:       o.Status,
		AdherentID:   o.CustomerID,
		MontantTotal: o.TotalAmount,
		ProduitIDs:   o.LineItemIDs,
	}
}

// parseDate accepts the RFC-3339 timestamps both backends emit, with and
// without fractional seconds or zone.
func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func firstString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstInt(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func firstFloat(values ...float64) float64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func firstInts(values ...[]int) []int {
	for _, v := range values {
		if len(v) > 0 {
			return v
		}
	}
	return nil
}
