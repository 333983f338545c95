// Package keycloak configures the reference identity provider through its
// admin HTTP API: realm, OAuth client, and demo users. Every ensure call is
// idempotent; a resource that already exists (HTTP 409) is treated as
// success.
package keycloak

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// RealmName is the realm the platform authenticates against.
	RealmName = "llamastack-demo"
	// ClientID is the OAuth client the distribution uses.
	ClientID = "llamastack"
)

// Configurator drives the Keycloak admin API.
type Configurator struct {
	AdminUser     string
	AdminPassword string
	ClientSecret  string

	// HTTPClient is replaceable for tests; nil means a default client with
	// a 30s timeout.
	HTTPClient *http.Client
}

func (c *Configurator) client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

// EnsureRealm makes sure the realm, OAuth client, and demo users exist on
// the server at baseURL. Partial state from an earlier attempt is absorbed:
// each step tolerates the resource already being present.
func (c *Configurator) EnsureRealm(ctx context.Context, baseURL string) error {
	base := strings.TrimRight(baseURL, "/")

	token, err := c.adminToken(ctx, base)
	if err != nil {
		return fmt.Errorf("failed to obtain admin token: %w", err)
	}

	if err := c.ensureCreated(ctx, token, base+"/admin/realms", map[string]interface{}{
		"realm":   RealmName,
		"enabled": true,
	}); err != nil {
		return fmt.Errorf("failed to ensure realm: %w", err)
	}

	if err := c.ensureCreated(ctx, token, base+"/admin/realms/"+RealmName+"/clients", map[string]interface{}{
		"clientId":                  ClientID,
		"secret":                    c.ClientSecret,
		"enabled":                   true,
		"protocol":                  "openid-connect",
		"publicClient":              false,
		"serviceAccountsEnabled":    true,
		"directAccessGrantsEnabled": true,
	}); err != nil {
		return fmt.Errorf("failed to ensure client: %w", err)
	}

	for _, user := range demoUsers() {
		if err := c.ensureCreated(ctx, token, base+"/admin/realms/"+RealmName+"/users", user); err != nil {
			return fmt.Errorf("failed to ensure user: %w", err)
		}
	}

	return nil
}

// demoUsers are the seed accounts for the reference deployment: one
// administrator and one unprivileged user.
func demoUsers() []map[string]interface{} {
	newUser := func(name, role string) map[string]interface{} {
		return map[string]interface{}{
			"username":      name,
			"enabled":       true,
			"emailVerified": true,
			"email":         name + "@llamastack.local",
			"attributes":    map[string]interface{}{"role": []string{role}},
			"credentials": []map[string]interface{}{
				{"type": "password", "value": name + "-password", "temporary": true},
			},
		}
	}
	return []map[string]interface{}{
		newUser("demo-admin", "admin"),
		newUser("demo-user", "user"),
	}
}

// adminToken obtains an access token via the password grant against the
// master realm, the way the admin CLI does.
func (c *Configurator) adminToken(ctx context.Context, base string) (string, error) {
	form := url.Values{
		"grant_type": {"password"},
		"client_id":  {"admin-cli"},
		"username":   {c.AdminUser},
		"password":   {c.AdminPassword},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		base+"/realms/master/protocol/openid-connect/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client().Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned an empty access token")
	}
	return payload.AccessToken, nil
}

// ensureCreated POSTs the representation and treats 409 Conflict as the
// resource already existing.
func (c *Configurator) ensureCreated(ctx context.Context, token, endpoint string, body map[string]interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusConflict:
		return nil
	default:
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s returned %d: %s", endpoint, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
}
