package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/expr-lang/expr"

	"storefront-engine/internal/domain"
)

// Promo is a configured promo code. Rule is an expression over the current
// cart (`subtotal`, `totalItems`) gating eligibility; an empty rule always
// matches. Amount is a flat discount; Percent applies to the subtotal when
// Amount is zero.
type Promo struct {
	Code    string
	Rule    string
	Amount  float64
	Percent float64
	Message string
}

// PromoResult is the outcome of applying a code. Failure to qualify is a
// result, not an error; errors are reserved for evaluation faults.
type PromoResult struct {
	Success  bool    `json:"success"`
	Message  string  `json:"message"`
	Discount float64 `json:"discount,omitempty"`
}

// DefaultPromos returns the built-in promo table.
func DefaultPromos() []Promo {
	return []Promo{
		{Code: "WELCOME10", Rule: "subtotal >= 50", Amount: 10, Message: "10 off orders of 50 or more"},
		{Code: "BULK5", Rule: "totalItems >= 3", Amount: 5, Message: "5 off when buying 3+ items"},
		{Code: "VIP15", Rule: "subtotal >= 150", Percent: 15, Message: "15% off orders of 150 or more"},
	}
}

// ApplyPromoCode validates the code against the current cart and, when
// eligible, sets the discount and republishes the summary. The discount is
// volatile: the next item mutation clears it.
func (s *Store) ApplyPromoCode(ctx context.Context, code string) (PromoResult, error) {
	if err := ctx.Err(); err != nil {
		return PromoResult{}, err
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return PromoResult{Message: "promo code required"}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var promo *Promo
	for i := range s.promos {
		if s.promos[i].Code == code {
			promo = &s.promos[i]
			break
		}
	}
	if promo == nil {
		return PromoResult{Message: fmt.Sprintf("unknown promo code %s", code)}, nil
	}

	summary := domain.Summarize(s.items, 0)
	eligible, err := evalRule(promo.Rule, summary)
	if err != nil {
		return PromoResult{}, fmt.Errorf("promo %s: %w", code, err)
	}
	if !eligible {
		return PromoResult{Message: fmt.Sprintf("cart does not qualify for %s", code)}, nil
	}

	discount := promo.Amount
	if discount == 0 && promo.Percent > 0 {
		discount = summary.Subtotal * promo.Percent / 100
	}
	if discount > summary.Subtotal {
		discount = summary.Subtotal
	}
	s.discount = discount
	s.promo = code
	s.publishLocked()

	msg := promo.Message
	if msg == "" {
		msg = "promo applied"
	}
	return PromoResult{Success: true, Message: msg, Discount: discount}, nil
}

// AppliedPromo returns the currently applied code, or empty.
func (s *Store) AppliedPromo() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.promo
}

func evalRule(rule string, summary domain.CartSummary) (bool, error) {
	if strings.TrimSpace(rule) == "" {
		return true, nil
	}
	env := map[string]any{
		"subtotal":   summary.Subtotal,
		"totalItems": summary.TotalItems,
	}
	program, err := expr.Compile(rule, expr.Env(env), expr.AsBool())
	if err != nil {
		return false, fmt.Errorf("compile rule: %w", err)
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("evaluate rule: %w", err)
	}
	ok, _ := out.(bool)
	return ok, nil
}
