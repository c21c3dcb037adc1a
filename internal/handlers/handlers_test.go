package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/whitelabel/internal"
	"github.com/dmitrymomot/whitelabel/internal/handlers"
	"github.com/dmitrymomot/whitelabel/internal/models"
	"github.com/dmitrymomot/whitelabel/internal/store"
	"github.com/dmitrymomot/whitelabel/internal/tasks"
	"github.com/dmitrymomot/whitelabel/internal/verifier"
	"github.com/dmitrymomot/whitelabel/middlewares"
	"github.com/dmitrymomot/whitelabel/pkg/job"
)

type fakeDomains struct {
	report    *models.VerificationReport
	cfg       *models.WhitelabelConfig
	err       error
	verified  bool
	setDomain string
}

func (f *fakeDomains) Verify(context.Context, uuid.UUID) (bool, error) {
	return f.verified, f.err
}

func (f *fakeDomains) Details(context.Context, uuid.UUID) (*models.VerificationReport, error) {
	return f.report, f.err
}

func (f *fakeDomains) SetDomain(_ context.Context, orgID uuid.UUID, domain string) (*models.WhitelabelConfig, error) {
	f.setDomain = domain
	if f.err != nil {
		return nil, f.err
	}
	cfg := *f.cfg
	cfg.OrganizationID = orgID
	cfg.CustomDomain = domain
	return &cfg, nil
}

type fakeStore struct {
	cfg    *models.WhitelabelConfig
	err    error
	domain string
}

func (f *fakeStore) GetConfig(context.Context, uuid.UUID) (*models.WhitelabelConfig, error) {
	return f.cfg, f.err
}

func (f *fakeStore) Deactivate(context.Context, uuid.UUID) (string, error) {
	return f.domain, f.err
}

type fakeInvalidator struct {
	mu      sync.Mutex
	domains []string
}

func (f *fakeInvalidator) Invalidate(_ context.Context, _ uuid.UUID, domains ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.domains = append(f.domains, domains...)
}

type fakeEnqueuer struct {
	names []string
	err   error
}

func (f *fakeEnqueuer) Enqueue(_ context.Context, name string, _ any, _ ...job.EnqueueOption) error {
	f.names = append(f.names, name)
	return f.err
}

func do(t *testing.T, h internal.Handler, method, target, body string, mw ...internal.Middleware) *httptest.ResponseRecorder {
	t.Helper()

	app := internal.New(
		internal.WithErrorHandler(middlewares.ErrorHandler),
		internal.WithMiddleware(mw...),
		internal.WithHandlers(h),
	)

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp middlewares.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Code
}

func TestAdminDetails(t *testing.T) {
	t.Parallel()

	orgID := uuid.New()

	tests := []struct {
		name   string
		target string
		svc    *fakeDomains
		status int
		code   string
	}{
		{
			name:   "report",
			target: "/orgs/" + orgID.String() + "/domain/verification",
			svc:    &fakeDomains{report: &models.VerificationReport{Domain: "app.acme.com", Overall: true}},
			status: http.StatusOK,
		},
		{
			name:   "bad org id",
			target: "/orgs/nope/domain/verification",
			svc:    &fakeDomains{},
			status: http.StatusBadRequest,
			code:   "invalid_orgID",
		},
		{
			name:   "no domain",
			target: "/orgs/" + orgID.String() + "/domain/verification",
			svc:    &fakeDomains{err: verifier.ErrNoCustomDomain},
			status: http.StatusNotFound,
			code:   "no_custom_domain",
		},
		{
			name:   "store failure",
			target: "/orgs/" + orgID.String() + "/domain/verification",
			svc:    &fakeDomains{err: errors.Join(verifier.ErrStore, errors.New("conn refused"))},
			status: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := do(t, handlers.NewAdmin(tt.svc, &fakeStore{}), http.MethodGet, tt.target, "")
			require.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				var report models.VerificationReport
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
				require.True(t, report.Overall)
				return
			}
			require.Equal(t, tt.code, errorCode(t, rec))
			require.NotContains(t, rec.Body.String(), "conn refused")
		})
	}
}

func TestAdminVerify(t *testing.T) {
	t.Parallel()

	orgID := uuid.New()
	target := "/orgs/" + orgID.String() + "/domain/verify"

	rec := do(t, handlers.NewAdmin(&fakeDomains{verified: true}, &fakeStore{}), http.MethodPost, target, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got handlers.VerifyResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, handlers.VerifyResult{OrganizationID: orgID, Verified: true}, got)

	rec = do(t, handlers.NewAdmin(&fakeDomains{err: errors.Join(verifier.ErrStore, store.ErrDomainChanged)}, &fakeStore{}),
		http.MethodPost, target, "")
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "domain_changed", errorCode(t, rec))
}

func TestAdminVerifyMiddleware(t *testing.T) {
	t.Parallel()

	blocked := func(internal.HandlerFunc) internal.HandlerFunc {
		return func(internal.Context) error {
			return internal.ErrTooManyRequests("slow down")
		}
	}
	h := handlers.NewAdmin(&fakeDomains{}, &fakeStore{err: store.ErrNotFound}, handlers.WithVerifyMiddleware(blocked))
	orgID := uuid.NewString()

	require.Equal(t, http.StatusTooManyRequests, do(t, h, http.MethodPost, "/orgs/"+orgID+"/domain/verify", "").Code)
	require.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/orgs/"+orgID+"/domain/setup", "").Code)
}

func TestAdminSetDomain(t *testing.T) {
	t.Parallel()

	orgID := uuid.New()
	target := "/orgs/" + orgID.String() + "/domain"
	records := []models.DNSRecord{
		{Type: models.RecordCNAME, Name: "app.acme.com", Value: "cname.platform.io"},
		{Type: models.RecordTXT, Name: "_platform-verify.app.acme.com", Value: "tok"},
	}

	t.Run("saves and enqueues", func(t *testing.T) {
		t.Parallel()

		svc := &fakeDomains{cfg: &models.WhitelabelConfig{CustomDomainDNS: records, Active: true}}
		jobs := &fakeEnqueuer{}
		rec := do(t, handlers.NewAdmin(svc, &fakeStore{}, handlers.WithEnqueuer(jobs)),
			http.MethodPut, target, `{"domain":"App.Acme.com"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "App.Acme.com", svc.setDomain)
		require.Equal(t, []string{tasks.VerifyDomainTask}, jobs.names)

		var setup handlers.DomainSetup
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &setup))
		require.Equal(t, orgID, setup.OrganizationID)
		require.False(t, setup.Verified)
		require.Equal(t, records, setup.Records)
	})

	t.Run("clearing does not enqueue", func(t *testing.T) {
		t.Parallel()

		jobs := &fakeEnqueuer{}
		rec := do(t, handlers.NewAdmin(&fakeDomains{cfg: &models.WhitelabelConfig{}}, &fakeStore{}, handlers.WithEnqueuer(jobs)),
			http.MethodPut, target, `{"domain":""}`)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, jobs.names)
		require.Contains(t, rec.Body.String(), `"records":[]`)
	})

	t.Run("enqueue failure still saves", func(t *testing.T) {
		t.Parallel()

		jobs := &fakeEnqueuer{err: errors.New("queue down")}
		rec := do(t, handlers.NewAdmin(&fakeDomains{cfg: &models.WhitelabelConfig{}}, &fakeStore{}, handlers.WithEnqueuer(jobs)),
			http.MethodPut, target, `{"domain":"app.acme.com"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	errs := []struct {
		name   string
		body   string
		err    error
		status int
		code   string
	}{
		{name: "malformed body", body: `{"domain":`, status: http.StatusBadRequest, code: "invalid_body"},
		{name: "unknown field", body: `{"host":"x"}`, status: http.StatusBadRequest, code: "invalid_body"},
		{name: "invalid domain", body: `{"domain":"localhost"}`, err: verifier.ErrInvalidDomain, status: http.StatusUnprocessableEntity, code: "invalid_domain"},
		{name: "taken", body: `{"domain":"app.acme.com"}`, err: store.ErrDomainTaken, status: http.StatusConflict, code: "domain_taken"},
	}
	for _, tt := range errs {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := do(t, handlers.NewAdmin(&fakeDomains{err: tt.err}, &fakeStore{}), http.MethodPut, target, tt.body)
			require.Equal(t, tt.status, rec.Code)
			require.Equal(t, tt.code, errorCode(t, rec))
		})
	}
}

func TestAdminSetup(t *testing.T) {
	t.Parallel()

	orgID := uuid.New()
	target := "/orgs/" + orgID.String() + "/domain/setup"
	cfg := &models.WhitelabelConfig{
		OrganizationID:        orgID,
		CustomDomain:          "app.acme.com",
		LastVerificationError: "txt: no matching TXT record",
		CustomDomainDNS:       []models.DNSRecord{{Type: models.RecordTXT, Name: "_p-verify.app.acme.com", Value: "tok"}},
	}

	rec := do(t, handlers.NewAdmin(&fakeDomains{}, &fakeStore{cfg: cfg}), http.MethodGet, target, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var setup handlers.DomainSetup
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &setup))
	require.Equal(t, "app.acme.com", setup.Domain)
	require.Equal(t, "txt: no matching TXT record", setup.LastVerificationError)
	require.Len(t, setup.Records, 1)

	rec = do(t, handlers.NewAdmin(&fakeDomains{}, &fakeStore{err: store.ErrNotFound}), http.MethodGet, target, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "not_found", errorCode(t, rec))
}

func TestAdminDeactivate(t *testing.T) {
	t.Parallel()

	orgID := uuid.New()
	inv := &fakeInvalidator{}
	h := handlers.NewAdmin(&fakeDomains{}, &fakeStore{domain: "app.acme.com"}, handlers.WithInvalidator(inv))

	rec := do(t, h, http.MethodDelete, "/orgs/"+orgID.String(), "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, []string{"app.acme.com"}, inv.domains)

	rec = do(t, handlers.NewAdmin(&fakeDomains{}, &fakeStore{err: store.ErrNotFound}), http.MethodDelete, "/orgs/"+orgID.String(), "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

type staticResolver struct {
	rb *models.ResolvedBranding
}

func (s staticResolver) Resolve(context.Context, string, uuid.UUID) *models.ResolvedBranding {
	return s.rb.Clone()
}

func TestTenantBranding(t *testing.T) {
	t.Parallel()

	orgID := uuid.New()
	rb := &models.ResolvedBranding{
		OrganizationID:  orgID,
		Source:          models.SourceDomain,
		CanonicalDomain: "app.acme.com",
		Branding: models.Branding{
			PrimaryColor: "#ff0000",
			ProductName:  "Acme",
			CustomCSS:    "body{}",
			CustomJS:     "alert(1)",
		},
	}

	rec := do(t, handlers.NewTenant(), http.MethodGet, "/branding", "",
		middlewares.Branding(staticResolver{rb: rb}), middlewares.Inject())
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), "alert(1)")
	require.NotContains(t, rec.Body.String(), "body{}")
	require.Equal(t, 1, strings.Count(rec.Body.String(), `"_branding"`))

	var got handlers.BrandingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, orgID, got.OrganizationID)
	require.Equal(t, "app.acme.com", got.CanonicalDomain)
	require.Equal(t, rb.Branding.Public(), got.Branding)

	rec = do(t, handlers.NewTenant(), http.MethodGet, "/branding", "", middlewares.Branding(staticResolver{}))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "no_branding", errorCode(t, rec))
}

func TestAdminMiddlewareGuardsRoutes(t *testing.T) {
	t.Parallel()

	h := handlers.NewAdmin(&fakeDomains{}, &fakeStore{}, handlers.WithAdminMiddleware(middlewares.BearerAuth("s3cret")))
	rec := do(t, h, http.MethodGet, "/orgs/"+uuid.NewString()+"/domain/setup", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTenantBrandingPreflight(t *testing.T) {
	t.Parallel()

	app := internal.New(
		internal.WithErrorHandler(middlewares.ErrorHandler),
		internal.WithHandlers(handlers.NewTenant(handlers.WithBrandingMiddleware(middlewares.CORS()))),
		internal.WithMount("/", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})),
	)

	req := httptest.NewRequest(http.MethodOptions, "/branding", nil)
	req.Header.Set("Origin", "https://app.acme.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/anything", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)
}
