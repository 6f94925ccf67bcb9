package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"product-catalog/internal/auth"
	"product-catalog/internal/config"
	"product-catalog/internal/credential"
	"product-catalog/internal/infrastructure/memory"
	"product-catalog/internal/notify"
	"product-catalog/internal/storage"
	"product-catalog/internal/usecase/product"
	"product-catalog/internal/usecase/user"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelopeBody struct {
	Message string          `json:"message"`
	Payload json.RawMessage `json:"payload"`
	Status  int             `json:"status"`
}

type outbox struct {
	sent []notify.ResetMessage
}

func (o *outbox) SendPasswordReset(_ context.Context, msg notify.ResetMessage) error {
	o.sent = append(o.sent, msg)
	return nil
}

type failingDB struct{ err error }

func (d failingDB) Health() error { return d.err }

type app struct {
	router *gin.Engine
	clock  *clockwork.FakeClock
	outbox *outbox
}

func testConfig() *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Environment: "test", MaxRequestSize: 1 << 20},
		JWT:       config.JWTConfig{Secret: "test-secret", TTL: time.Hour, RefreshTTL: 24 * time.Hour},
		Notifier:  config.NotifierConfig{ResetURL: "https://app.example/reset-password"},
		RateLimit: config.RateLimitConfig{AuthPerMinute: 1000},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"*"}, AllowedMethods: []string{"GET", "POST", "DELETE"}},
	}
}

func newApp(t *testing.T, cfg *config.Config, db func(Services) Services) *app {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	box := &outbox{}
	gate := auth.NewGate(cfg.JWT, clock)

	svc := Services{
		Users: user.NewService(
			memory.NewUserRepository(),
			credential.NewBcryptHasher(bcrypt.MinCost),
			credential.NewResetTokens(memory.NewResetTokenRepository(), clock),
			gate,
			box,
			cfg,
		),
		Products: product.NewService(
			memory.NewProductRepository(clock),
			storage.NewLocalStore(t.TempDir()),
			clock,
		),
		Verifier: gate,
	}
	if db != nil {
		svc = db(svc)
	}

	done := make(chan struct{})
	t.Cleanup(func() { close(done) })

	return &app{router: SetupRoutes(cfg, svc, done), clock: clock, outbox: box}
}

func (a *app) do(t *testing.T, req *http.Request, token string) (*httptest.ResponseRecorder, envelopeBody) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var body envelopeBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	require.Equal(t, w.Code, body.Status, "status field mirrors the HTTP status")
	return w, body
}

func (a *app) postJSON(t *testing.T, path string, payload any, token string) envelopeBody {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	_, body := a.do(t, req, token)
	return body
}

func (a *app) get(t *testing.T, path, token string) envelopeBody {
	t.Helper()
	_, body := a.do(t, httptest.NewRequest(http.MethodGet, path, nil), token)
	return body
}

type authPayload struct {
	User struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
	Token auth.TokenInfo `json:"token"`
}

func (a *app) register(t *testing.T, email string) authPayload {
	t.Helper()
	body := a.postJSON(t, "/v1/registration", map[string]string{
		"name": "A", "email": email, "password": "secret", "password_confirmation": "secret",
	}, "")
	require.Equal(t, http.StatusOK, body.Status, body.Message)

	var p authPayload
	require.NoError(t, json.Unmarshal(body.Payload, &p))
	return p
}

func multipartRequest(t *testing.T, path string, fields map[string]string, fileField string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, "upload.png")
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func (a *app) storeProduct(t *testing.T, token, title string) product.ProductResponse {
	t.Helper()
	req := multipartRequest(t, "/v1/product", map[string]string{
		"title": title, "description": title + " description", "price": "9.99",
	}, "image", []byte("png"))
	_, body := a.do(t, req, token)
	require.Equal(t, http.StatusOK, body.Status, body.Message)

	var p product.ProductResponse
	require.NoError(t, json.Unmarshal(body.Payload, &p))
	a.clock.Advance(time.Minute)
	return p
}

func TestRegistration(t *testing.T) {
	t.Parallel()
	a := newApp(t, testConfig(), nil)

	p := a.register(t, "a@x.com")
	assert.Equal(t, "bearer", p.Token.TokenType)
	assert.NotEmpty(t, p.Token.AccessToken)
	assert.Equal(t, "a@x.com", p.User.Email)

	dup := a.postJSON(t, "/v1/signup", map[string]string{
		"name": "B", "email": "a@x.com", "password": "secret", "password_confirmation": "secret",
	}, "")
	assert.Equal(t, http.StatusBadRequest, dup.Status)
	assert.Equal(t, "Validation Error", dup.Message)
	assert.JSONEq(t, `{"email":["The email has already been taken."]}`, string(dup.Payload))
}

func TestLogin(t *testing.T) {
	t.Parallel()
	a := newApp(t, testConfig(), nil)
	a.register(t, "a@x.com")

	wrong := a.postJSON(t, "/v1/login", map[string]string{"email": "a@x.com", "password": "nope!"}, "")
	assert.Equal(t, http.StatusUnauthorized, wrong.Status)
	assert.Equal(t, user.MsgIncorrectLogin, wrong.Message)
	assert.Equal(t, "null", string(wrong.Payload))

	ok := a.postJSON(t, "/v1/login", map[string]string{"email": "a@x.com", "password": "secret"}, "")
	assert.Equal(t, http.StatusOK, ok.Status)
	assert.Equal(t, user.MsgLoggedIn, ok.Message)

	empty := httptest.NewRequest(http.MethodPost, "/v1/login", nil)
	_, body := a.do(t, empty, "")
	assert.Equal(t, http.StatusBadRequest, body.Status)
	assert.JSONEq(t, `{"email":["The email field is required."],"password":["The password field is required."]}`, string(body.Payload))
}

func TestProductListing(t *testing.T) {
	t.Parallel()
	a := newApp(t, testConfig(), nil)
	owner := a.register(t, "owner@x.com")
	other := a.register(t, "other@x.com")

	a.storeProduct(t, owner.Token.AccessToken, "t1")
	a.storeProduct(t, other.Token.AccessToken, "foreign")
	a.storeProduct(t, owner.Token.AccessToken, "t2")
	a.storeProduct(t, owner.Token.AccessToken, "t3")

	body := a.get(t, "/v1/products", owner.Token.AccessToken)
	require.Equal(t, http.StatusOK, body.Status)
	assert.Equal(t, product.MsgFetched, body.Message)

	var page product.PageResponse
	require.NoError(t, json.Unmarshal(body.Payload, &page))
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, 10, page.PerPage)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Data, 3)
	for i, title := range []string{"t3", "t2", "t1"} {
		assert.Equal(t, title, page.Data[i].Title)
		assert.Equal(t, owner.User.ID, strconv.FormatInt(page.Data[i].UserID, 10))
	}

	q := url.Values{}
	q.Set("params", `{"keyword":"T2","pageSize":5}`)
	q.Add("columns[]", `{"dataIndex":"title","search":true}`)
	body = a.get(t, "/v1/products?"+q.Encode(), owner.Token.AccessToken)
	require.NoError(t, json.Unmarshal(body.Payload, &page))
	require.Len(t, page.Data, 1)
	assert.Equal(t, "t2", page.Data[0].Title)
	assert.Equal(t, 5, page.PerPage)
}

func TestProductStoreGetDelete(t *testing.T) {
	t.Parallel()
	a := newApp(t, testConfig(), nil)
	owner := a.register(t, "owner@x.com")
	intruder := a.register(t, "intruder@x.com")
	token := owner.Token.AccessToken

	req := multipartRequest(t, "/v1/product", map[string]string{
		"title": "Lamp", "description": "Desk lamp", "price": "9.99",
	}, "image", []byte("png"))
	_, body := a.do(t, req, token)
	require.Equal(t, http.StatusOK, body.Status)
	assert.Equal(t, product.MsgSaved, body.Message)

	var created product.ProductResponse
	require.NoError(t, json.Unmarshal(body.Payload, &created))
	assert.Equal(t, owner.User.ID, strconv.FormatInt(created.UserID, 10))
	assert.Equal(t, 9.99, created.Price)
	assert.FileExists(t, created.Image)

	id := strconv.FormatInt(created.ID, 10)
	got := a.get(t, "/v1/product?id="+id, token)
	assert.Equal(t, http.StatusOK, got.Status)
	foreign := a.get(t, "/v1/product?id="+id, intruder.Token.AccessToken)
	assert.Equal(t, http.StatusNotFound, foreign.Status)
	assert.Equal(t, product.MsgNoResult, foreign.Message)

	hijack := multipartRequest(t, "/v1/product", map[string]string{
		"id": id, "title": "Mine", "description": "x", "price": "1",
	}, "image", []byte("png"))
	_, body = a.do(t, hijack, intruder.Token.AccessToken)
	assert.Equal(t, http.StatusNotFound, body.Status)

	noImage := multipartRequest(t, "/v1/product", map[string]string{"title": "x", "description": "y", "price": "1"}, "", nil)
	_, body = a.do(t, noImage, token)
	assert.Equal(t, http.StatusBadRequest, body.Status)
	assert.JSONEq(t, `{"image":["The image field is required."]}`, string(body.Payload))

	del := httptest.NewRequest(http.MethodDelete, "/v1/product", strings.NewReader(`{"ids":["`+id+`"]}`))
	del.Header.Set("Content-Type", "application/json")
	_, body = a.do(t, del, token)
	assert.Equal(t, http.StatusOK, body.Status)
	assert.Equal(t, product.MsgDeletedOne, body.Message)
	assert.JSONEq(t, `{"totalDeleted":1}`, string(body.Payload))
	assert.NoFileExists(t, created.Image)

	_, body = a.do(t, httptest.NewRequest(http.MethodDelete, "/v1/product?ids="+id, nil), token)
	assert.Equal(t, http.StatusNotFound, body.Status)
	assert.Equal(t, product.MsgNothingToDelete, body.Message)

	_, body = a.do(t, httptest.NewRequest(http.MethodDelete, "/v1/product?ids=abc", nil), token)
	assert.Equal(t, http.StatusBadRequest, body.Status)
}

func TestExpiredTokenCanOnlyRefresh(t *testing.T) {
	t.Parallel()
	a := newApp(t, testConfig(), nil)
	p := a.register(t, "a@x.com")

	a.clock.Advance(2 * time.Hour)

	expired := a.get(t, "/v1/products", p.Token.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, expired.Status)
	assert.Equal(t, "Token is Expired", expired.Message)

	refreshed := a.postJSON(t, "/v1/refresh-token", nil, p.Token.AccessToken)
	require.Equal(t, http.StatusOK, refreshed.Status)
	assert.Equal(t, user.MsgTokenRefreshed, refreshed.Message)

	var info auth.TokenInfo
	require.NoError(t, json.Unmarshal(refreshed.Payload, &info))
	assert.NotEqual(t, p.Token.AccessToken, info.AccessToken)

	me := a.get(t, "/v1/me", info.AccessToken)
	assert.Equal(t, http.StatusOK, me.Status)
	assert.Equal(t, user.MsgUserFound, me.Message)
}

func TestAuthRejections(t *testing.T) {
	t.Parallel()
	a := newApp(t, testConfig(), nil)

	missing := a.get(t, "/v1/me", "")
	assert.Equal(t, http.StatusBadRequest, missing.Status)
	assert.Equal(t, "Authorization token not found", missing.Message)

	invalid := a.get(t, "/v1/stats", "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, invalid.Status)
	assert.Equal(t, "Token is Invalid", invalid.Message)
}

func TestPasswordResetFlow(t *testing.T) {
	t.Parallel()
	a := newApp(t, testConfig(), nil)
	a.register(t, "a@x.com")

	unknown := a.postJSON(t, "/v1/forget-password", map[string]string{"email": "b@x.com"}, "")
	assert.Equal(t, http.StatusNotFound, unknown.Status)
	assert.Equal(t, user.MsgNoUserWithEmail, unknown.Message)

	sent := a.postJSON(t, "/v1/forget-password", map[string]string{"email": "a@x.com"}, "")
	require.Equal(t, http.StatusOK, sent.Status)
	require.Len(t, a.outbox.sent, 1)
	token := a.outbox.sent[0].Token

	reset := map[string]string{
		"email": "a@x.com", "token": token, "password": "newsecret", "password_confirmation": "newsecret",
	}
	done := a.postJSON(t, "/v1/reset-password", reset, "")
	assert.Equal(t, http.StatusOK, done.Status)
	assert.Equal(t, user.MsgPasswordReset, done.Message)

	again := a.postJSON(t, "/v1/reset-password", reset, "")
	assert.Equal(t, http.StatusNotFound, again.Status)
	assert.Equal(t, user.MsgResetTokenInvalid, again.Message)

	login := a.postJSON(t, "/v1/login", map[string]string{"email": "a@x.com", "password": "newsecret"}, "")
	assert.Equal(t, http.StatusOK, login.Status)
}

func TestStats(t *testing.T) {
	t.Parallel()
	a := newApp(t, testConfig(), nil)
	p := a.register(t, "a@x.com")
	a.storeProduct(t, p.Token.AccessToken, "x")

	body := a.get(t, "/v1/stats", p.Token.AccessToken)
	require.Equal(t, http.StatusOK, body.Status)
	assert.Equal(t, product.MsgStatsFetched, body.Message)
	assert.JSONEq(t, `{"product":{"total":1,"totalToday":1,"totalThisWeek":1,"totalThisMonth":1}}`, string(body.Payload))

	bad := a.get(t, "/v1/stats?month_start=soon", p.Token.AccessToken)
	assert.Equal(t, http.StatusBadRequest, bad.Status)
}

func TestStatusAndFallbacks(t *testing.T) {
	t.Parallel()
	a := newApp(t, testConfig(), nil)

	status := a.get(t, "/v1/status", "")
	assert.Equal(t, http.StatusOK, status.Status)
	assert.Equal(t, "Running", status.Message)
	assert.Equal(t, "null", string(status.Payload))

	health := a.get(t, "/health", "")
	assert.Equal(t, http.StatusOK, health.Status)

	missing := a.get(t, "/v1/nothing-here", "")
	assert.Equal(t, http.StatusNotFound, missing.Status)
	assert.Equal(t, MsgRouteNotFound, missing.Message)

	_, body := a.do(t, httptest.NewRequest(http.MethodPut, "/v1/product", nil), "")
	assert.Equal(t, http.StatusMethodNotAllowed, body.Status)
	assert.Equal(t, MsgMethodNotAllowed, body.Message)
}

func TestHealth_DatabaseDown(t *testing.T) {
	t.Parallel()
	a := newApp(t, testConfig(), func(s Services) Services {
		s.DB = failingDB{err: errors.New("connection refused")}
		return s
	})

	health := a.get(t, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, health.Status)
}

func TestAuthRoutesAreRateLimited(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.RateLimit.AuthPerMinute = 2
	a := newApp(t, cfg, nil)

	creds := map[string]string{"email": "a@x.com", "password": "secret"}
	for range 2 {
		assert.Equal(t, http.StatusUnauthorized, a.postJSON(t, "/v1/login", creds, "").Status)
	}
	limited := a.postJSON(t, "/v1/login", creds, "")
	assert.Equal(t, http.StatusTooManyRequests, limited.Status)
	assert.Equal(t, "Too Many Attempts.", limited.Message)

	assert.Equal(t, http.StatusOK, a.get(t, "/v1/status", "").Status)
}
