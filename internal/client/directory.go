package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"storefront-engine/internal/domain"
	"storefront-engine/internal/wire"
)

// DirectoryClient wraps the remote user directory.
type DirectoryClient struct {
	c *Client
}

func NewDirectory(c *Client) *DirectoryClient { return &DirectoryClient{c: c} }

// FindByEmail looks a user up by email. It tries the dedicated endpoint
// first and falls back to the filtered list that older backends expose.
// A user that exists under neither returns a NotFound classified error.
func (d *DirectoryClient) FindByEmail(ctx context.Context, email string) (*domain.UserRecord, error) {
	var rec wire.UserRecord
	err := d.c.do(ctx, http.MethodGet, "/api/adherents/email/"+url.PathEscape(email), nil, nil, &rec)
	if err == nil {
		u := wire.User(rec)
		return &u, nil
	}
	if !domain.IsKind(err, domain.KindNotFound) {
		return nil, err
	}

	var list []wire.UserRecord
	q := url.Values{"email": []string{email}}
	if err := d.c.do(ctx, http.MethodGet, "/api/adherents?"+q.Encode(), nil, nil, &list); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, domain.E(domain.KindNotFound, fmt.Sprintf("no user for %s", email))
	}
	u := wire.User(list[0])
	return &u, nil
}

// Create registers a new directory record and returns it normalized.
func (d *DirectoryClient) Create(ctx context.Context, draft domain.UserDraft) (*domain.UserRecord, error) {
	var rec wire.UserRecord
	if err := d.c.do(ctx, http.MethodPost, "/api/adherents", nil, wire.UserPayload(draft), &rec); err != nil {
		return nil, err
	}
	u := wire.User(rec)
	if u.Role == "" {
		u.Role = draft.Role
	}
	return &u, nil
}
