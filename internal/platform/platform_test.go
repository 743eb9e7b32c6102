package platform_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/ignite/storemailer/internal/config"
	"github.com/ignite/storemailer/internal/domain"
	"github.com/ignite/storemailer/internal/platform"
)

type fakePlatform struct {
	tokenRequests atomic.Int64
	apiRequests   atomic.Int64

	checkoutPages [][]domain.AbandonedCheckout
	customerPages [][]platform.Customer
}

func (f *fakePlatform) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenRequests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"test-token","token_type":"bearer","expires_in":3600}`)
	})

	mux.HandleFunc("/stores/test-store.example.com/checkouts/abandoned", func(w http.ResponseWriter, r *http.Request) {
		f.apiRequests.Add(1)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		page := pageParam(r)
		var checkouts []domain.AbandonedCheckout
		if page <= len(f.checkoutPages) {
			checkouts = f.checkoutPages[page-1]
		}
		json.NewEncoder(w).Encode(map[string]any{"checkouts": checkouts})
	})

	mux.HandleFunc("/stores/test-store.example.com/customers", func(w http.ResponseWriter, r *http.Request) {
		f.apiRequests.Add(1)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		if ids := r.URL.Query().Get("ids"); ids != "" {
			var matched []platform.Customer
			for _, pageCustomers := range f.customerPages {
				for _, c := range pageCustomers {
					if ids == fmt.Sprint(c.ID) {
						matched = append(matched, c)
					}
				}
			}
			json.NewEncoder(w).Encode(map[string]any{"customers": matched})
			return
		}

		page := pageParam(r)
		var customers []platform.Customer
		if page <= len(f.customerPages) {
			customers = f.customerPages[page-1]
		}
		json.NewEncoder(w).Encode(map[string]any{"customers": customers})
	})

	return mux
}

func pageParam(r *http.Request) int {
	page := 1
	fmt.Sscan(r.URL.Query().Get("page"), &page)
	return page
}

func newClient(serverURL string, pageSize int) *platform.Client {
	return platform.New(appconfig.PlatformConfig{
		BaseURL:        serverURL,
		StoreDomain:    "test-store.example.com",
		ClientID:       "client",
		ClientSecret:   "secret",
		TokenURL:       serverURL + "/oauth/token",
		TimeoutSeconds: 5,
		PageSize:       pageSize,
	})
}

func TestListAbandonedCheckoutsWalksPages(t *testing.T) {
	fake := &fakePlatform{
		checkoutPages: [][]domain.AbandonedCheckout{
			{{ID: "ck-1", Email: "a@example.com"}, {ID: "ck-2", Email: "b@example.com"}},
			{{ID: "ck-3", Email: "c@example.com"}},
		},
	}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	client := newClient(srv.URL, 2)
	checkouts, err := client.ListAbandonedCheckouts(context.Background())
	require.NoError(t, err)

	require.Len(t, checkouts, 3)
	assert.Equal(t, "ck-1", checkouts[0].ID)
	assert.Equal(t, "ck-3", checkouts[2].ID)
}

func TestTokenFetchedOnceAcrossRequests(t *testing.T) {
	fake := &fakePlatform{
		checkoutPages: [][]domain.AbandonedCheckout{
			{{ID: "ck-1"}, {ID: "ck-2"}},
			{{ID: "ck-3"}, {ID: "ck-4"}},
			{{ID: "ck-5"}},
		},
	}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	client := newClient(srv.URL, 2)
	_, err := client.ListAbandonedCheckouts(context.Background())
	require.NoError(t, err)

	// Three page requests share the one cached token.
	assert.Equal(t, int64(1), fake.tokenRequests.Load())
	assert.Equal(t, int64(3), fake.apiRequests.Load())
}

func TestListConsentingCustomersFiltersClientSide(t *testing.T) {
	fake := &fakePlatform{
		customerPages: [][]platform.Customer{{
			{ID: 1, Email: "in@example.com", Consent: domain.ConsentSubscribed},
			{ID: 2, Email: "out@example.com", Consent: domain.ConsentUnsubscribed},
		}},
	}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	client := newClient(srv.URL, 10)
	customers, err := client.ListConsentingCustomers(context.Background())
	require.NoError(t, err)

	require.Len(t, customers, 1)
	assert.Equal(t, "in@example.com", customers[0].Email)
}

func TestGetCustomersByIDs(t *testing.T) {
	fake := &fakePlatform{
		customerPages: [][]platform.Customer{{
			{ID: 7, Email: "seven@example.com", Consent: domain.ConsentSubscribed},
		}},
	}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	client := newClient(srv.URL, 10)

	customers, err := client.GetCustomersByIDs(context.Background(), []string{"7"})
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, int64(7), customers[0].ID)

	// No ids, no request.
	none, err := client.GetCustomersByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestErrorStatusSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth/token" {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"test-token","token_type":"bearer","expires_in":3600}`)
			return
		}
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	client := newClient(srv.URL, 10)
	_, err := client.ListAbandonedCheckouts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}
