package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ahammedsa/server-site-fitenss/internal/config"
	"github.com/Ahammedsa/server-site-fitenss/internal/domain"
	httpHandler "github.com/Ahammedsa/server-site-fitenss/internal/http/handler"
	"github.com/Ahammedsa/server-site-fitenss/internal/jwt"
	"github.com/Ahammedsa/server-site-fitenss/internal/repository"
	"github.com/Ahammedsa/server-site-fitenss/internal/service"
	"github.com/Ahammedsa/server-site-fitenss/internal/service/lifecycle"
)

type fixture struct {
	stores    repository.Stores
	lifecycle *httpHandler.LifecycleHandler
	users     *httpHandler.UserHandler
	catalog   *httpHandler.CatalogHandler
	sessions  *httpHandler.SessionHandler
}

func newFixture(t *testing.T, cfg config.Config) fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	logger := zap.NewNop()
	stores := repository.NewMemoryStores()

	manager := lifecycle.NewManager(stores.Users, node, logger)
	sessions := service.NewSessionService(jwt.NewGenerator("test-secret", time.Hour, "the-fitness"), repository.NewMemoryDenylist(), logger)

	return fixture{
		stores:    stores,
		lifecycle: httpHandler.NewLifecycleHandler(manager, cfg),
		users:     httpHandler.NewUserHandler(service.NewUserService(stores.Users, logger)),
		catalog:   httpHandler.NewCatalogHandler(service.NewCatalogService(stores.Trainers, stores.Classes, node, logger)),
		sessions:  httpHandler.NewSessionHandler(sessions, cfg),
	}
}

// serve runs h on a test context built from method, target and body.
func serve(t *testing.T, h gin.HandlerFunc, method, target, body string, params ...gin.Param) (int, []byte, *http.Response) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = params

	h(c)

	res := w.Result()
	out, _ := io.ReadAll(res.Body)
	_ = res.Body.Close()
	return res.StatusCode, out, res
}

func decode(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestNewUserRequiresEmail(t *testing.T) {
	f := newFixture(t, config.Config{})

	status, body, _ := serve(t, f.lifecycle.NewUser, http.MethodPut, "/new-user", `{"name":"A"}`)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "Email is required", decode(t, body)["error"])

	status, _, _ = serve(t, f.lifecycle.NewUser, http.MethodPut, "/new-user", "")
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, 0, f.stores.Users.(*repository.MemoryUserRepo).Writes())
}

func TestNewUserRejectsMalformedBody(t *testing.T) {
	f := newFixture(t, config.Config{})

	status, body, _ := serve(t, f.lifecycle.NewUser, http.MethodPut, "/new-user", `{"email":`)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "Invalid payload", decode(t, body)["error"])
}

func TestNewUserIsIdempotent(t *testing.T) {
	f := newFixture(t, config.Config{})

	status, body, _ := serve(t, f.lifecycle.NewUser, http.MethodPut, "/new-user", `{"email":"a@x.com","name":"A"}`)
	require.Equal(t, http.StatusOK, status)
	first := decode(t, body)
	require.EqualValues(t, 1, first["upsertedCount"])

	status, body, _ = serve(t, f.lifecycle.NewUser, http.MethodPut, "/new-user", `{"email":"a@x.com","name":"B"}`)
	require.Equal(t, http.StatusOK, status)
	second := decode(t, body)
	require.Equal(t, "a@x.com", second["email"])
	require.Equal(t, "A", second["name"])
	require.Equal(t, "Verified", second["status"])
	require.Equal(t, 1, f.stores.Users.(*repository.MemoryUserRepo).Len())
}

func TestPromoteFlow(t *testing.T) {
	f := newFixture(t, config.Config{})

	status, _, _ := serve(t, f.lifecycle.RequestStatus, http.MethodPut, "/user", `{"email":"b@x.com","status":"Requested"}`)
	require.Equal(t, http.StatusOK, status)

	status, body, _ := serve(t, f.lifecycle.Promote, http.MethodPut, "/random", `{"email":"b@x.com"}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "User updated", decode(t, body)["message"])

	status, body, _ = serve(t, f.users.Lookup, http.MethodGet, "/test?email=b@x.com", "")
	require.Equal(t, http.StatusOK, status)
	user := decode(t, body)
	require.Equal(t, "trainer", user["role"])
	require.Equal(t, "Verified", user["status"])

	status, body, _ = serve(t, f.lifecycle.Promote, http.MethodPut, "/random", `{"email":"b@x.com"}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "User unchanged", decode(t, body)["message"])
}

func TestPromoteCreatesMissingUser(t *testing.T) {
	f := newFixture(t, config.Config{})

	status, body, _ := serve(t, f.lifecycle.Promote, http.MethodPut, "/random", `{"email":"c@x.com"}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "New user created", decode(t, body)["message"])

	user, err := f.stores.Users.GetByEmail(context.Background(), "c@x.com")
	require.NoError(t, err)
	require.Equal(t, domain.RoleTrainer, user.Role)
	require.Equal(t, domain.StatusVerified, user.Status)
}

func TestRequestStatusHonorsPolicy(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t, config.Config{StatusChangePolicy: config.PolicyOneDirectional})
	_, err := f.stores.Users.Upsert(ctx, "d@x.com", "1", domain.Document{"status": "Verified"})
	require.NoError(t, err)
	status, _, _ := serve(t, f.lifecycle.RequestStatus, http.MethodPut, "/user", `{"email":"d@x.com","status":"Requested"}`)
	require.Equal(t, http.StatusOK, status)
	user, err := f.stores.Users.GetByEmail(ctx, "d@x.com")
	require.NoError(t, err)
	require.Equal(t, domain.StatusVerified, user.Status)

	f = newFixture(t, config.Config{StatusChangePolicy: config.PolicyOverwrite})
	_, err = f.stores.Users.Upsert(ctx, "d@x.com", "1", domain.Document{"status": "Verified"})
	require.NoError(t, err)
	status, _, _ = serve(t, f.lifecycle.RequestStatus, http.MethodPut, "/user", `{"email":"d@x.com","status":"Requested"}`)
	require.Equal(t, http.StatusOK, status)
	user, err = f.stores.Users.GetByEmail(ctx, "d@x.com")
	require.NoError(t, err)
	require.Equal(t, domain.StatusRequested, user.Status)
}

func TestSaveUserUsesPathEmail(t *testing.T) {
	f := newFixture(t, config.Config{})

	status, _, _ := serve(t, f.lifecycle.SaveUser, http.MethodPut, "/users/e@x.com", `{"email":"other@x.com","name":"E"}`,
		gin.Param{Key: "email", Value: "e@x.com"})
	require.Equal(t, http.StatusOK, status)

	_, err := f.stores.Users.GetByEmail(context.Background(), "e@x.com")
	require.NoError(t, err)
	_, err = f.stores.Users.GetByEmail(context.Background(), "other@x.com")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserReads(t *testing.T) {
	f := newFixture(t, config.Config{})
	ctx := context.Background()
	_, err := f.stores.Users.Upsert(ctx, "f@x.com", "f1", domain.Document{"status": "Requested"})
	require.NoError(t, err)
	_, err = f.stores.Users.Upsert(ctx, "g@x.com", "g1", domain.Document{"status": "Verified"})
	require.NoError(t, err)

	status, body, _ := serve(t, f.users.ListRequested, http.MethodGet, "/requested-users", "")
	require.Equal(t, http.StatusOK, status)
	var requested []map[string]any
	require.NoError(t, json.Unmarshal(body, &requested))
	require.Len(t, requested, 1)
	require.Equal(t, "f@x.com", requested[0]["email"])

	status, body, _ = serve(t, f.users.Get, http.MethodGet, "/users/g1", "", gin.Param{Key: "id", Value: "g1"})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "g@x.com", decode(t, body)["email"])

	status, _, _ = serve(t, f.users.Get, http.MethodGet, "/users/missing", "", gin.Param{Key: "id", Value: "missing"})
	require.Equal(t, http.StatusNotFound, status)

	status, _, _ = serve(t, f.users.Lookup, http.MethodGet, "/test", "")
	require.Equal(t, http.StatusBadRequest, status)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t, config.Config{})
	ctx := context.Background()
	_, err := f.stores.Users.Upsert(ctx, "h@x.com", "h1", domain.Document{"name": "H"})
	require.NoError(t, err)

	status, body, _ := serve(t, f.users.UpdateProfile, http.MethodPatch, "/changes/update/h@x.com", `{"name":"Helen","email":"x@x.com"}`,
		gin.Param{Key: "email", Value: "h@x.com"})
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 1, decode(t, body)["matchedCount"])

	user, err := f.stores.Users.GetByEmail(ctx, "h@x.com")
	require.NoError(t, err)
	require.Equal(t, "Helen", user.Profile["name"])
}

func TestClassPaging(t *testing.T) {
	f := newFixture(t, config.Config{})
	for i := 0; i < 5; i++ {
		status, _, _ := serve(t, f.catalog.AddClass, http.MethodPost, "/class", `{"name":"yoga"}`)
		require.Equal(t, http.StatusOK, status)
	}

	status, body, _ := serve(t, f.catalog.ListClasses, http.MethodGet, "/class?page=2&size=2", "")
	require.Equal(t, http.StatusOK, status)
	var page []map[string]any
	require.NoError(t, json.Unmarshal(body, &page))
	require.Len(t, page, 1)

	status, body, _ = serve(t, f.catalog.ListClasses, http.MethodGet, "/class?page=0", "")
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &page))
	require.Len(t, page, 5)

	status, _, _ = serve(t, f.catalog.ListClasses, http.MethodGet, "/class?page=a&size=2", "")
	require.Equal(t, http.StatusBadRequest, status)

	status, body, _ = serve(t, f.catalog.CountClasses, http.MethodGet, "/classCount", "")
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 5, decode(t, body)["count"])
}

func TestTrainerLookup(t *testing.T) {
	f := newFixture(t, config.Config{})

	status, body, _ := serve(t, f.catalog.AddTrainer, http.MethodPost, "/trainners", `{"name":"Sam"}`)
	require.Equal(t, http.StatusOK, status)
	id, _ := decode(t, body)["insertedId"].(string)
	require.NotEmpty(t, id)

	status, body, _ = serve(t, f.catalog.GetTrainer, http.MethodGet, "/trainnerDetails/"+id, "", gin.Param{Key: "id", Value: id})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Sam", decode(t, body)["name"])

	status, _, _ = serve(t, f.catalog.GetTrainer, http.MethodGet, "/paymentPage/nope", "", gin.Param{Key: "id", Value: "nope"})
	require.Equal(t, http.StatusNotFound, status)
}

func TestSessionCookie(t *testing.T) {
	f := newFixture(t, config.Config{Environment: "production"})

	status, body, res := serve(t, f.sessions.Issue, http.MethodPost, "/jwt", `{"email":"a@x.com","name":"A"}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, decode(t, body)["success"])

	cookies := res.Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "token", cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)
	require.True(t, cookies[0].Secure)
	require.Equal(t, http.SameSiteNoneMode, cookies[0].SameSite)
	require.Equal(t, int(time.Hour.Seconds()), cookies[0].MaxAge)

	status, _, _ = serve(t, f.sessions.Issue, http.MethodPost, "/jwt", `{"name":"A"}`)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestLogoutClearsCookie(t *testing.T) {
	f := newFixture(t, config.Config{})

	status, _, res := serve(t, f.sessions.Logout, http.MethodGet, "/logout", "")
	require.Equal(t, http.StatusOK, status)
	cookies := res.Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "", cookies[0].Value)
	require.Equal(t, http.SameSiteStrictMode, cookies[0].SameSite)
	require.False(t, cookies[0].Secure)
}

type brokenDenylist struct{}

func (brokenDenylist) Revoke(context.Context, string, time.Duration) error {
	return errors.New("redis unavailable")
}

func (brokenDenylist) IsRevoked(context.Context, string) (bool, error) { return false, nil }

func TestLogoutClearsCookieWhenRevocationFails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sessions := service.NewSessionService(jwt.NewGenerator("test-secret", time.Hour, "the-fitness"), brokenDenylist{}, zap.NewNop())
	h := httpHandler.NewSessionHandler(sessions, config.Config{})

	token, _, err := sessions.Issue(context.Background(), "a@x.com", "A")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.Logout(c)

	res := w.Result()
	_ = res.Body.Close()
	require.Equal(t, http.StatusInternalServerError, res.StatusCode)
	cookies := res.Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "token", cookies[0].Name)
	require.Equal(t, "", cookies[0].Value)
	require.Negative(t, cookies[0].MaxAge)
}
