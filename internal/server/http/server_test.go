package http

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tentech-me/tentech-api/internal/common"
	"github.com/tentech-me/tentech-api/internal/cryptox"
	"github.com/tentech-me/tentech-api/internal/logging"
	"github.com/tentech-me/tentech-api/internal/server/auth"
	"github.com/tentech-me/tentech-api/internal/server/models"
	"github.com/tentech-me/tentech-api/internal/server/services"
)

func init() { gin.SetMode(gin.TestMode) }

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// --- fakes ---

type fakeUsers struct {
	UserService
	register func(in services.Registration) (*models.User, error)
	activate func(token string) (*models.User, error)
	login    func(email, password string) (string, error)
	get      func(ctx context.Context, id int64) (*models.User, error)
	update   func(actorID, id int64, upd models.UserUpdate) (*models.User, error)
}

func (f *fakeUsers) Register(_ context.Context, in services.Registration) (*models.User, error) {
	return f.register(in)
}
func (f *fakeUsers) Activate(_ context.Context, token string) (*models.User, error) {
	return f.activate(token)
}
func (f *fakeUsers) Login(_ context.Context, email, password string) (string, error) {
	return f.login(email, password)
}
func (f *fakeUsers) Get(ctx context.Context, id int64) (*models.User, error) { return f.get(ctx, id) }
func (f *fakeUsers) Update(_ context.Context, actorID, id int64, upd models.UserUpdate) (*models.User, error) {
	return f.update(actorID, id, upd)
}

type fakeProducts struct {
	ProductService
	create func(userID int64, in models.ProductInput) (*models.ProductDetail, error)
	update func(userID int64, id uuid.UUID, in models.ProductInput) (*models.ProductDetail, error)
	delete func(userID int64, id uuid.UUID) error
	get    func(id uuid.UUID) (*models.ProductDetail, error)
	list   func() ([]models.ProductDetail, error)
}

func (f *fakeProducts) Create(_ context.Context, userID int64, in models.ProductInput) (*models.ProductDetail, error) {
	return f.create(userID, in)
}
func (f *fakeProducts) Update(_ context.Context, userID int64, id uuid.UUID, in models.ProductInput) (*models.ProductDetail, error) {
	return f.update(userID, id, in)
}
func (f *fakeProducts) Delete(_ context.Context, userID int64, id uuid.UUID) error {
	return f.delete(userID, id)
}
func (f *fakeProducts) Get(_ context.Context, id uuid.UUID) (*models.ProductDetail, error) {
	return f.get(id)
}
func (f *fakeProducts) Recent(context.Context) ([]models.ProductDetail, error)  { return f.list() }
func (f *fakeProducts) Popular(context.Context) ([]models.ProductDetail, error) { return f.list() }
func (f *fakeProducts) ByUser(context.Context, int64) ([]models.ProductDetail, error) {
	return f.list()
}

type fakeReactions struct {
	ReactionService
	add    func(userID, productID int64, kind string) error
	sub    func(userID, productID int64, kind string) error
	recent func(ownerID int64) ([]models.ReactionActivity, error)
}

func (f *fakeReactions) Add(_ context.Context, userID, productID int64, kind string) (*models.Reaction, error) {
	if err := f.add(userID, productID, kind); err != nil {
		return nil, err
	}
	return &models.Reaction{ID: 1, ProductID: productID, UserID: userID, Kind: kind}, nil
}
func (f *fakeReactions) Sub(_ context.Context, userID, productID int64, kind string) error {
	return f.sub(userID, productID, kind)
}
func (f *fakeReactions) RecentOnUserProducts(_ context.Context, ownerID int64) ([]models.ReactionActivity, error) {
	return f.recent(ownerID)
}

type fakeTags struct{ tags []models.Tag }

func (f *fakeTags) List(context.Context) ([]models.Tag, error) { return f.tags, nil }

type fakeAssets struct {
	upload  func(userID int64, key, attachment string) (string, error)
	presign func(userID int64) (string, string, error)
}

func (f *fakeAssets) Upload(_ context.Context, userID int64, key, attachment string) (string, error) {
	return f.upload(userID, key, attachment)
}
func (f *fakeAssets) PresignPut(_ context.Context, userID int64) (string, string, error) {
	return f.presign(userID)
}

type fakeSuggestions struct{ lang string }

func (f *fakeSuggestions) Suggest(_ context.Context, lang string) (*models.Suggestion, error) {
	f.lang = lang
	return &models.Suggestion{Title: lang, LearningURL: []string{"https://go.dev/tour"}}, nil
}

// --- harness ---

type harness struct {
	srv       *Server
	authority *auth.Authority
	clock     *fakeClock
	users     *fakeUsers
	products  *fakeProducts
	reactions *fakeReactions
	assets    *fakeAssets
	suggest   *fakeSuggestions
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	key, err := cryptox.ParseKey(cryptox.GenerateKey())
	require.NoError(t, err)
	c, err := cryptox.NewCipher(key)
	require.NoError(t, err)

	h := &harness{
		clock:     &fakeClock{now: t0},
		users:     &fakeUsers{},
		products:  &fakeProducts{},
		reactions: &fakeReactions{},
		assets:    &fakeAssets{},
		suggest:   &fakeSuggestions{},
	}
	h.authority = auth.NewAuthority(c, 0, h.clock.Now)
	h.srv = NewServer("127.0.0.1:0", Services{
		Users:       h.users,
		Products:    h.products,
		Reactions:   h.reactions,
		Tags:        &fakeTags{tags: []models.Tag{{ID: 1, Name: "Go", Kind: "lang"}}},
		Assets:      h.assets,
		Suggestions: h.suggest,
	}, auth.NewGuard(h.authority), time.Second, logging.Nop{})
	return h
}

func (h *harness) token(t *testing.T, id int64) string {
	t.Helper()
	tok, err := h.authority.Issue(auth.Identity{ID: id, Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	return tok
}

func (h *harness) do(method, target, body string, tokens ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for _, tok := range tokens {
		req.Header.Add(common.APIKeyHeaderName, tok)
	}
	rec := httptest.NewRecorder()
	h.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func assertError(t *testing.T, rec *httptest.ResponseRecorder, status int, errType string) map[string]any {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, errType, body["type"])
	assert.NotEmpty(t, body["message"])
	return body
}

// --- tests ---

func TestPing(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodGet, "/ping", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"OK"}`, rec.Body.String())

	assertError(t, h.do(http.MethodGet, "/nope", ""), http.StatusNotFound, "NotFound")
}

func TestGuard(t *testing.T) {
	h := newHarness(t)
	h.users.get = func(ctx context.Context, id int64) (*models.User, error) {
		caller, ok := auth.IdentityFromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, int64(7), caller.ID)
		return &models.User{ID: id, Username: "alice"}, nil
	}
	valid := h.token(t, 7)

	assertError(t, h.do(http.MethodGet, "/users/1", ""), http.StatusUnauthorized, "TokenMissing")
	assertError(t, h.do(http.MethodGet, "/users/1", "", valid, valid), http.StatusUnauthorized, "TokenBadCount")
	assertError(t, h.do(http.MethodGet, "/users/1", "", "garbage"), http.StatusUnauthorized, "CannotDecryptToken")

	tampered := []byte(valid)
	if tampered[10] == 'A' {
		tampered[10] = 'B'
	} else {
		tampered[10] = 'A'
	}
	assertError(t, h.do(http.MethodGet, "/users/1", "", string(tampered)), http.StatusUnauthorized, "CannotDecryptToken")

	rec := h.do(http.MethodGet, "/users/1", "", valid)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "alice", decode(t, rec)["user"].(map[string]any)["username"])

	h.clock.Advance(24 * time.Hour)
	assertError(t, h.do(http.MethodGet, "/users/1", "", valid), http.StatusUnauthorized, "TokenExpired")
}

func TestRegisterUser(t *testing.T) {
	h := newHarness(t)
	var got services.Registration
	h.users.register = func(in services.Registration) (*models.User, error) {
		got = in
		return &models.User{ID: 1, Username: in.Username, Nickname: in.Nickname, Email: in.Email, PasswordHash: "secret-hash"}, nil
	}

	rec := h.do(http.MethodPost, "/users",
		`{"user":{"username":"alice","nickname":"Alice","email":"alice@example.com","password":"password1"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "password1", got.Password)
	assert.NotContains(t, rec.Body.String(), "secret-hash")
	user := decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, "alice@example.com", user["email"])
	assert.Equal(t, false, user["activated"])
}

func TestRegisterUser_Errors(t *testing.T) {
	h := newHarness(t)
	const valid = `{"user":{"username":"alice","nickname":"Alice","email":"alice@example.com","password":"password1"}}`

	body := assertError(t, h.do(http.MethodPost, "/users",
		`{"user":{"username":"alice","nickname":"Alice","email":"alice@example.com","password":"short"}}`),
		http.StatusBadRequest, "ValidationFailed")
	assert.Equal(t, "password must be at least 8 characters", body["message"])

	body = assertError(t, h.do(http.MethodPost, "/users",
		`{"user":{"username":"alice","nickname":"Alice","email":"not-an-email","password":"password1"}}`),
		http.StatusBadRequest, "ValidationFailed")
	assert.Equal(t, "email must be a valid email", body["message"])

	assertError(t, h.do(http.MethodPost, "/users", `{"user":`), http.StatusBadRequest, "ValidationFailed")
	assertError(t, h.do(http.MethodPost, "/users", ""), http.StatusBadRequest, "ValidationFailed")

	h.users.register = func(services.Registration) (*models.User, error) {
		return nil, &common.FieldError{Field: "username", Err: common.ErrorAlreadyExists}
	}
	body = assertError(t, h.do(http.MethodPost, "/users", valid), http.StatusConflict, "AlreadyExists")
	assert.Equal(t, "username has already been taken", body["message"])

	h.users.register = func(services.Registration) (*models.User, error) { return nil, services.ErrCannotSendEmail }
	assertError(t, h.do(http.MethodPost, "/users", valid), http.StatusUnprocessableEntity, "CannotSendEmail")
}

func TestActivateUser(t *testing.T) {
	h := newHarness(t)
	var got string
	h.users.activate = func(token string) (*models.User, error) {
		got = token
		return &models.User{ID: 1, Activated: true}, nil
	}

	rec := h.do(http.MethodGet, "/users/activate?token=ab%2Bc-d_e", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "ab+c-d_e", got)

	assertError(t, h.do(http.MethodGet, "/users/activate", ""), http.StatusBadRequest, "ValidationFailed")

	h.users.activate = func(string) (*models.User, error) { return nil, auth.ErrExpired }
	assertError(t, h.do(http.MethodGet, "/users/activate?token=x", ""), http.StatusUnauthorized, "TokenExpired")

	h.users.activate = func(string) (*models.User, error) { return nil, auth.ErrMalformed }
	assertError(t, h.do(http.MethodGet, "/users/activate?token=x", ""), http.StatusUnauthorized, "CannotDecryptToken")

	h.users.activate = func(string) (*models.User, error) { return nil, common.ErrorAlreadyActivated }
	assertError(t, h.do(http.MethodGet, "/users/activate?token=x", ""), http.StatusConflict, "AlreadyActivated")

	h.users.activate = func(string) (*models.User, error) { return nil, common.ErrorNotFound }
	assertError(t, h.do(http.MethodGet, "/users/activate?token=x", ""), http.StatusNotFound, "NotFound")
}

func TestLogin(t *testing.T) {
	h := newHarness(t)
	h.users.login = func(email, password string) (string, error) {
		if password != "password1" {
			return "", services.ErrCannotVerifyPassword
		}
		return "session-token", nil
	}

	rec := h.do(http.MethodPost, "/users/login", `{"email":"alice@example.com","password":"password1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"token":"session-token"}`, rec.Body.String())

	assertError(t, h.do(http.MethodPost, "/users/login", `{"email":"alice@example.com","password":"nope"}`),
		http.StatusUnauthorized, "CannotVerifyPassword")
	assertError(t, h.do(http.MethodPost, "/users/login", `{"email":"alice@example.com"}`),
		http.StatusBadRequest, "ValidationFailed")
}

func TestUpdateUser(t *testing.T) {
	h := newHarness(t)
	h.users.update = func(actorID, id int64, upd models.UserUpdate) (*models.User, error) {
		if actorID != id {
			return nil, common.ErrorForbidden
		}
		assert.Nil(t, upd.Username)
		require.NotNil(t, upd.Nickname)
		return &models.User{ID: id, Nickname: *upd.Nickname}, nil
	}
	tok := h.token(t, 7)

	rec := h.do(http.MethodPatch, "/users/7", `{"user":{"nickname":"Ally"}}`, tok)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Ally", decode(t, rec)["user"].(map[string]any)["nickname"])

	assertError(t, h.do(http.MethodPatch, "/users/8", `{"user":{"nickname":"Ally"}}`, tok), http.StatusForbidden, "Forbidden")
	assertError(t, h.do(http.MethodPatch, "/users/x", `{"user":{}}`, tok), http.StatusBadRequest, "ValidationFailed")
	assertError(t, h.do(http.MethodPatch, "/users/7", `{"user":{"nickname":""}}`, tok), http.StatusBadRequest, "ValidationFailed")
}

func TestUserListings(t *testing.T) {
	h := newHarness(t)
	h.products.list = func() ([]models.ProductDetail, error) {
		return []models.ProductDetail{{Product: models.Product{ID: 1}, TagIDs: []int64{2}, Reactions: []models.Reaction{}}}, nil
	}
	var owner int64
	h.reactions.recent = func(ownerID int64) ([]models.ReactionActivity, error) {
		owner = ownerID
		return []models.ReactionActivity{}, nil
	}

	rec := h.do(http.MethodGet, "/users/3/products", "")
	require.Equal(t, http.StatusOK, rec.Code)
	products := decode(t, rec)["products"].([]any)
	require.Len(t, products, 1)
	assert.Equal(t, []any{float64(2)}, products[0].(map[string]any)["tag_ids"])

	rec = h.do(http.MethodGet, "/users/3/reactions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"reactions":[]}`, rec.Body.String())
	assert.Equal(t, int64(3), owner)
}

const productBody = `{"product":{"title":"tentech","body":"b","simple":"s","img":"https://example.com/a.png","duration":3,"kind":"web","status":"done","tags":[1,4]}}`

func TestProducts(t *testing.T) {
	h := newHarness(t)
	tok := h.token(t, 7)
	id := uuid.New()

	h.products.create = func(userID int64, in models.ProductInput) (*models.ProductDetail, error) {
		assert.Equal(t, int64(7), userID)
		assert.Equal(t, []int64{1, 4}, in.TagIDs)
		return &models.ProductDetail{Product: models.Product{ID: 1, UUID: id, Title: in.Title, UserID: userID}, TagIDs: in.TagIDs}, nil
	}
	rec := h.do(http.MethodPost, "/products", productBody, tok)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "tentech", decode(t, rec)["product"].(map[string]any)["title"])

	assertError(t, h.do(http.MethodPost, "/products", productBody), http.StatusUnauthorized, "TokenMissing")

	long := strings.Replace(productBody, `"tentech"`, `"`+strings.Repeat("x", 34)+`"`, 1)
	body := assertError(t, h.do(http.MethodPost, "/products", long, tok), http.StatusBadRequest, "ValidationFailed")
	assert.Equal(t, "title must be at most 33 characters", body["message"])

	h.products.get = func(got uuid.UUID) (*models.ProductDetail, error) {
		if got != id {
			return nil, common.ErrorNotFound
		}
		return &models.ProductDetail{
			Product:   models.Product{ID: 1, UUID: id, UserID: 7},
			TagIDs:    []int64{1},
			Reactions: []models.Reaction{{ID: 5, Kind: "like"}},
			User:      &models.User{ID: 7, Username: "alice"},
		}, nil
	}
	rec = h.do(http.MethodGet, "/products/"+id.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode(t, rec)
	for _, k := range []string{"product", "user", "tag_ids", "reactions"} {
		assert.Contains(t, got, k)
	}
	assertError(t, h.do(http.MethodGet, "/products/"+uuid.NewString(), ""), http.StatusNotFound, "NotFound")
	assertError(t, h.do(http.MethodGet, "/products/not-a-uuid", ""), http.StatusBadRequest, "ValidationFailed")

	h.products.update = func(userID int64, _ uuid.UUID, _ models.ProductInput) (*models.ProductDetail, error) {
		return nil, common.ErrorForbidden
	}
	assertError(t, h.do(http.MethodPatch, "/products/"+id.String(), productBody, tok), http.StatusForbidden, "Forbidden")

	h.products.update = func(_ int64, _ uuid.UUID, _ models.ProductInput) (*models.ProductDetail, error) {
		return nil, &common.FieldError{Field: "tags", Err: common.ErrorNotFound}
	}
	assertError(t, h.do(http.MethodPatch, "/products/"+id.String(), productBody, tok), http.StatusBadRequest, "ValidationFailed")

	h.products.delete = func(userID int64, got uuid.UUID) error {
		assert.Equal(t, id, got)
		return nil
	}
	rec = h.do(http.MethodDelete, "/products/"+id.String(), "", tok)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())

	h.products.list = func() ([]models.ProductDetail, error) { return []models.ProductDetail{}, nil }
	for _, path := range []string{"/products/recent", "/products/popular"} {
		rec = h.do(http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.JSONEq(t, `{"products":[]}`, rec.Body.String())
	}
}

func TestReactions(t *testing.T) {
	h := newHarness(t)
	tok := h.token(t, 7)

	count := 0
	h.reactions.add = func(userID, productID int64, kind string) error {
		assert.Equal(t, int64(7), userID)
		assert.Equal(t, int64(3), productID)
		assert.Equal(t, "like", kind)
		if count == common.MaxReactionsPerKind {
			return services.ErrTooMany
		}
		count++
		return nil
	}
	for i := 0; i < common.MaxReactionsPerKind; i++ {
		rec := h.do(http.MethodPost, "/products/3/reaction/add", `{"kind":"like"}`, tok)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.JSONEq(t, `{}`, rec.Body.String())
	}
	assertError(t, h.do(http.MethodPost, "/products/3/reaction/add", `{"kind":"like"}`, tok), http.StatusConflict, "TooManyReactions")

	h.reactions.sub = func(int64, int64, string) error { return services.ErrTooFew }
	assertError(t, h.do(http.MethodPost, "/products/3/reaction/sub", `{"kind":"like"}`, tok), http.StatusUnprocessableEntity, "TooFewReactions")

	assertError(t, h.do(http.MethodPost, "/products/x/reaction/add", `{"kind":"like"}`, tok), http.StatusBadRequest, "ValidationFailed")
	assertError(t, h.do(http.MethodPost, "/products/3/reaction/add", `{}`, tok), http.StatusBadRequest, "ValidationFailed")
	assertError(t, h.do(http.MethodPost, "/products/3/reaction/add", `{"kind":"like"}`), http.StatusUnauthorized, "TokenMissing")
}

func TestTagsAndSuggestion(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodGet, "/tags", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Go", decode(t, rec)["tags"].([]any)[0].(map[string]any)["name"])

	rec = h.do(http.MethodPost, "/suggestion", `{"long":1,"lang":"Go","kind":"web"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Go", h.suggest.lang)
	assert.Equal(t, "Go", decode(t, rec)["suggestion"].(map[string]any)["title"])

	assertError(t, h.do(http.MethodPost, "/suggestion", `{"long":1}`), http.StatusBadRequest, "ValidationFailed")
}

func TestUpload(t *testing.T) {
	h := newHarness(t)
	tok := h.token(t, 7)

	h.assets.upload = func(userID int64, key, attachment string) (string, error) {
		assert.Equal(t, int64(7), userID)
		assert.Equal(t, "a.png", key)
		return "https://cdn.tentech.me/users/7/a.png", nil
	}
	rec := h.do(http.MethodPost, "/upload", `{"asset":{"key":"a.png","attachment":"aGk="}}`, tok)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"asset":{"url":"https://cdn.tentech.me/users/7/a.png"}}`, rec.Body.String())

	h.assets.upload = func(int64, string, string) (string, error) { return "", services.ErrCannotDecodeBase64 }
	assertError(t, h.do(http.MethodPost, "/upload", `{"asset":{"key":"a","attachment":"%%"}}`, tok), http.StatusBadRequest, "CannotDecodeBase64")

	h.assets.upload = func(int64, string, string) (string, error) {
		return "", errors.Join(services.ErrCannotPutObject, errors.New("access denied"))
	}
	assertError(t, h.do(http.MethodPost, "/upload", `{"asset":{"key":"a","attachment":"aGk="}}`, tok), http.StatusBadGateway, "CannotPutS3Object")

	h.assets.presign = func(userID int64) (string, string, error) { return "users/7/k", "https://s3/presigned", nil }
	rec = h.do(http.MethodPost, "/upload/presign", "", tok)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"key":"users/7/k","url":"https://s3/presigned"}`, rec.Body.String())
}

func TestInternalErrorsAreOpaque(t *testing.T) {
	h := newHarness(t)
	h.users.get = func(context.Context, int64) (*models.User, error) {
		return nil, errors.New("db error: connection refused on 10.0.0.5")
	}
	body := assertError(t, h.do(http.MethodGet, "/users/1", "", h.token(t, 1)), http.StatusInternalServerError, "InternalError")
	assert.Equal(t, "internal error", body["message"])
}

func TestRequestTimeout(t *testing.T) {
	h := newHarness(t)
	h.srv.requestTimeout = 20 * time.Millisecond
	h.users.get = func(ctx context.Context, _ int64) (*models.User, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	assertError(t, h.do(http.MethodGet, "/users/1", "", h.token(t, 1)), http.StatusGatewayTimeout, "Timeout")
}

func TestRun_ServesAndStops(t *testing.T) {
	h := newHarness(t)
	addrs := make(chan net.Addr, 1)
	h.srv.OnListen = func(a net.Addr) { addrs <- a }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- h.srv.Run(ctx) }()

	var addr net.Addr
	select {
	case addr = <-addrs:
	case err := <-done:
		t.Fatalf("server exited early: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not start")
	}

	resp, err := http.Get("http://" + addr.String() + "/ping")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

func TestRun_BadAddress(t *testing.T) {
	h := newHarness(t)
	h.srv.address = "127.0.0.1:99999"
	assert.Error(t, h.srv.Run(context.Background()))
}
