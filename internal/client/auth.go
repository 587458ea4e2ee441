package client

import (
	"context"
	"net/http"

	"storefront-engine/internal/domain"
	"storefront-engine/internal/wire"
)

// AuthClient wraps the remote authentication endpoint.
type AuthClient struct {
	c *Client
}

func NewAuth(c *Client) *AuthClient { return &AuthClient{c: c} }

// LoginResult is the normalized auth response. User is nil when the
// endpoint answered with token and role only.
type LoginResult struct {
	Token string
	Role  string
	User  *domain.UserRecord
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string           `json:"token"`
	Role  string           `json:"role"`
	User  *wire.UserRecord `json:"user,omitempty"`
}

// Login exchanges credentials for a token. Rejected credentials surface as
// an Unauthorized classified error; network failures as Transport.
func (a *AuthClient) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var resp loginResponse
	err := a.c.do(ctx, http.MethodPost, "/api/auth/login", nil, loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	res := &LoginResult{Token: resp.Token, Role: resp.Role}
	if resp.User != nil {
		u := wire.User(*resp.User)
		if u.Role == "" {
			u.Role = resp.Role
		}
		res.User = &u
	}
	return res, nil
}
