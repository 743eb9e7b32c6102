// Package platform is the e-commerce platform API collaborator: abandoned
// checkouts, customer listings and OAuth'd access tokens.
package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	appconfig "github.com/ignite/storemailer/internal/config"
	"github.com/ignite/storemailer/internal/domain"
	"github.com/ignite/storemailer/internal/pkg/httpretry"
	"github.com/ignite/storemailer/internal/pkg/logger"
)

// tokenSkew is how early a cached token is considered expired. Refreshing
// five minutes ahead keeps a long page walk from straddling an expiry.
const tokenSkew = 5 * time.Minute

// Customer is a customer record from the platform API.
type Customer struct {
	ID        int64               `json:"id"`
	Email     string              `json:"email"`
	FirstName string              `json:"first_name"`
	Consent   domain.ConsentState `json:"consent"`
}

// Client talks to the platform Admin API for one store.
type Client struct {
	http        httpretry.HTTPDoer
	baseURL     string
	storeDomain string
	pageSize    int

	oauth clientcredentials.Config

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// New builds a platform client from configuration. Requests retry on 429
// and 5xx with backoff.
func New(cfg appconfig.PlatformConfig) *Client {
	return &Client{
		http:        httpretry.New(&http.Client{Timeout: cfg.Timeout()}, 3),
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		storeDomain: cfg.StoreDomain,
		pageSize:    cfg.PageSize,
		oauth: clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		},
	}
}

// accessToken returns a cached token, fetching a fresh one when the cached
// token is missing or inside the refresh skew.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry.Add(-tokenSkew)) {
		return c.token, nil
	}

	tok, err := c.oauth.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("platform: fetching access token: %w", err)
	}

	c.token = tok.AccessToken
	c.tokenExpiry = tok.Expiry
	logger.Debug("platform token refreshed", "expiry", tok.Expiry.Format(time.RFC3339))
	return c.token, nil
}

// ListAbandonedCheckouts returns every abandoned checkout the platform
// reports for the store, walking all pages.
func (c *Client) ListAbandonedCheckouts(ctx context.Context) ([]domain.AbandonedCheckout, error) {
	var all []domain.AbandonedCheckout

	for page := 1; ; page++ {
		var body struct {
			Checkouts []domain.AbandonedCheckout `json:"checkouts"`
		}
		q := url.Values{}
		q.Set("page", fmt.Sprint(page))
		q.Set("limit", fmt.Sprint(c.pageSize))
		if err := c.getJSON(ctx, "/checkouts/abandoned", q, &body); err != nil {
			return nil, err
		}

		all = append(all, body.Checkouts...)
		if len(body.Checkouts) < c.pageSize {
			return all, nil
		}
	}
}

// ListConsentingCustomers returns every customer whose marketing consent is
// subscribed, walking all pages. The consent filter is applied again
// client-side so a lagging platform index cannot leak a recipient.
func (c *Client) ListConsentingCustomers(ctx context.Context) ([]Customer, error) {
	var all []Customer

	for page := 1; ; page++ {
		var body struct {
			Customers []Customer `json:"customers"`
		}
		q := url.Values{}
		q.Set("consent", string(domain.ConsentSubscribed))
		q.Set("page", fmt.Sprint(page))
		q.Set("limit", fmt.Sprint(c.pageSize))
		if err := c.getJSON(ctx, "/customers", q, &body); err != nil {
			return nil, err
		}

		for _, cust := range body.Customers {
			if cust.Consent == domain.ConsentSubscribed {
				all = append(all, cust)
			}
		}
		if len(body.Customers) < c.pageSize {
			return all, nil
		}
	}
}

// GetCustomersByIDs returns the customer records for the given ids. Unknown
// ids are simply absent from the result.
func (c *Client) GetCustomersByIDs(ctx context.Context, ids []string) ([]Customer, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var all []Customer
	// The platform caps the ids parameter per request, so chunk.
	const chunk = 100
	for start := 0; start < len(ids); start += chunk {
		end := start + chunk
		if end > len(ids) {
			end = len(ids)
		}

		var body struct {
			Customers []Customer `json:"customers"`
		}
		q := url.Values{}
		q.Set("ids", strings.Join(ids[start:end], ","))
		if err := c.getJSON(ctx, "/customers", q, &body); err != nil {
			return nil, err
		}
		all = append(all, body.Customers...)
	}
	return all, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	u := fmt.Sprintf("%s/stores/%s%s", c.baseURL, c.storeDomain, path)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("platform: building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("platform: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("platform: GET %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("platform: decoding %s response: %w", path, err)
	}
	return nil
}
