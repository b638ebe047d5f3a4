package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"testing"

	apikeyrepo "merchant-client/internal/repository/apikey"
	custrepo "merchant-client/internal/repository/customer"
	merchantrepo "merchant-client/internal/repository/merchant"
	orderrepo "merchant-client/internal/repository/order"
	accountsvc "merchant-client/internal/service/account"
	customersvc "merchant-client/internal/service/customer"
	ordersvc "merchant-client/internal/service/order"

	"github.com/gin-gonic/gin"
)

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type testEnv struct {
	router  *gin.Engine
	account *accountsvc.Service
	key     string
}

// newTestEnv builds the full router over in-memory storage with one
// merchant whose API key is "sk_test".
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	account := accountsvc.New(merchantrepo.NewMemory(), apikeyrepo.NewMemory())
	m, err := account.EnsureMerchant(ctx, "demo", "Demo", false)
	if err != nil {
		t.Fatalf("ensure merchant: %v", err)
	}
	if err := account.RegisterKey(ctx, m.ID, "sk_test"); err != nil {
		t.Fatalf("register key: %v", err)
	}

	customers := custrepo.NewMemory()
	router, err := buildRouter(logDiscard(), nil, Deps{
		Auth:        account,
		CustomerSvc: customersvc.New(customers),
		OrderSvc:    ordersvc.New(orderrepo.NewMemory(), customers, logDiscard()),
	}, nil)
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return &testEnv{router: router, account: account, key: "sk_test"}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	return e.doAs(t, e.key, method, path, body)
}

func (e *testEnv) doAs(t *testing.T, key, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, APIPrefix+path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d body=%s", want, rec.Code, rec.Body.String())
	}
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("unmarshal %s: %v", rec.Body.String(), err)
	}
}

func expectErrorID(t *testing.T, rec *httptest.ResponseRecorder, status int, errorID string) {
	t.Helper()
	expectStatus(t, rec, status)
	var body errorBody
	decodeJSON(t, rec, &body)
	if body.ErrorID != errorID {
		t.Fatalf("expected errorId %q, got %+v", errorID, body)
	}
}

