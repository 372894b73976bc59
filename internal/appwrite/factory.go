package appwrite

import (
	"context"
	"net/http"

	"github.com/kaushikshivam970/storeit/internal/config"
)

// Factory builds provider handles. Each handle carries exactly one credential
// flavor; the admin key never leaks into a session-scoped handle.
type Factory struct {
	endpoint   string
	project    string
	key        string
	httpClient *http.Client
}

// NewFactory constructs a handle factory from service configuration.
func NewFactory(cfg config.Config, httpClient *http.Client) *Factory {
	return &Factory{
		endpoint:   cfg.Endpoint,
		project:    cfg.ProjectID,
		key:        cfg.APIKey,
		httpClient: httpClient,
	}
}

// AdminClient is the service-key scoped handle. It is only ever constructed
// from server-side configuration, never derived from request input.
type AdminClient struct {
	client    *Client
	Accounts  *AccountService
	Databases *DatabaseService
	Storage   *StorageService
	Avatars   *AvatarService
}

// SessionClient is the user-scoped handle. It exposes only the acting user's
// own account and read-only document queries.
type SessionClient struct {
	Account   *SelfService
	Databases *DatabaseReader
}

// Admin returns a handle authorized with the service key.
func (f *Factory) Admin() *AdminClient {
	c := newClient(f.endpoint, f.project, f.httpClient)
	c.key = f.key
	return &AdminClient{
		client:    c,
		Accounts:  &AccountService{c: c},
		Databases: &DatabaseService{DatabaseReader: DatabaseReader{c: c}},
		Storage:   &StorageService{c: c},
		Avatars:   &AvatarService{c: c},
	}
}

// Session returns a handle scoped to the given session token, or nil when the
// token is empty. A nil handle means "unauthenticated", not a failure.
func (f *Factory) Session(token string) *SessionClient {
	if token == "" {
		return nil
	}
	c := newClient(f.endpoint, f.project, f.httpClient)
	c.session = token
	return &SessionClient{
		Account:   &SelfService{c: c},
		Databases: &DatabaseReader{c: c},
	}
}

// Health verifies the provider is reachable and the project is resolvable.
func (a *AdminClient) Health(ctx context.Context) error {
	return a.client.call(ctx, http.MethodGet, "/health", nil, nil, nil)
}
