package httpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/dedup"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/payments"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/pkg/logging"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const (
	testWebhookSecret = "whsec_test"
	testCheckoutURL   = "https://checkout.stripe.com/c/pay/cs_test"
)

var testJWTSecret = []byte("test-jwt-secret")

type testEnv struct {
	E    *echo.Echo
	DB   *gorm.DB
	Proc *payments.Recorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	r := &repo.GormRepo{DB: db}
	proc := &payments.Recorder{Secret: testWebhookSecret, URL: testCheckoutURL}

	e := echo.New()
	e.Use(loggingmw.RequestLogger(logging.NewWithWriter(io.Discard, "error")))
	Register(e, &Deps{
		CatalogHandler: &CatalogHTTP{Svc: &service.CatalogService{Repo: r}},
		CartHandler:    &CartHTTP{Svc: &service.CartService{Repo: r}},
		CheckoutHandler: &CheckoutHTTP{
			Svc:           &service.CheckoutService{Repo: r, Payments: proc},
			Webhooks:      &service.WebhookService{Repo: r, Payments: proc, Dedup: dedup.NewMemory()},
			PublicBaseURL: "http://shop.local",
		},
		AccountHandler: &AccountHTTP{Svc: &service.AccountService{Repo: r, JWTSecret: testJWTSecret}},
		JWTSecret:      testJWTSecret,
	})

	return &testEnv{E: e, DB: db, Proc: proc}
}

func (env *testEnv) cookieFor(t *testing.T, u *models.Shopper) *http.Cookie {
	t.Helper()
	token, err := tokens.NewAccessToken(u.ID.String(), u.Role, time.Now().Add(time.Hour), testJWTSecret)
	require.NoError(t, err)
	return &http.Cookie{Name: tokens.AccessCookie, Value: token}
}

func (env *testEnv) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		rd = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, rd)
	if rd != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) doWithHeaders(t *testing.T, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}
