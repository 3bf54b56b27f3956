package server

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Hoossayn/hottakes-backend/internal/app"
	"github.com/Hoossayn/hottakes-backend/internal/cache"
	"github.com/Hoossayn/hottakes-backend/internal/config"
	"github.com/Hoossayn/hottakes-backend/internal/db"
	svcErr "github.com/Hoossayn/hottakes-backend/internal/errors"
	"github.com/Hoossayn/hottakes-backend/internal/notify"
)

func setupServer(t *testing.T) (*Server, *gorm.DB) {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, gdb.AutoMigrate(&db.User{}, &db.Take{}, &db.Reaction{}))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appCtx := app.New(gdb, cache.NewRedisCache(cfg), notify.NopNotifier{}, logger)
	return New(cfg, appCtx), gdb
}

func seedUser(t *testing.T, gdb *gorm.DB, username string) {
	t.Helper()
	require.NoError(t, gdb.Create(&db.User{
		Username:     username,
		Email:        username + "@test.com",
		PasswordHash: "x",
		Active:       true,
	}).Error)
}

func doJSON(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func TestCreateTakeEndpoint(t *testing.T) {
	s, gdb := setupServer(t)
	seedUser(t, gdb, "bob")

	rec := doJSON(s, http.MethodPost, "/hottakes",
		`{"to":"bob","sender":"ghost","content":"hi","category":"Sport","isPublic":true}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"anonymous"`)
	assert.Contains(t, rec.Body.String(), "HotTake Created")
}

func TestCreateTakeUnknownRecipientIs404(t *testing.T) {
	s, _ := setupServer(t)

	rec := doJSON(s, http.MethodPost, "/hottakes", `{"to":"ghost","content":"hi"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestCreateTakeMissingRecipientIs400(t *testing.T) {
	s, _ := setupServer(t)

	rec := doJSON(s, http.MethodPost, "/hottakes", `{"content":"hi"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReactEndpointValidation(t *testing.T) {
	s, gdb := setupServer(t)
	seedUser(t, gdb, "alice")
	seedUser(t, gdb, "bob")

	rec := doJSON(s, http.MethodPost, "/hottakes/post", `{"sender":"alice","content":"hot"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var take db.Take
	require.NoError(t, gdb.First(&take).Error)

	rec = doJSON(s, http.MethodPost, "/hottakes/"+take.ID+"/react",
		`{"reaction":"lukewarm","username":"bob"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(s, http.MethodPost, "/hottakes/"+take.ID+"/react",
		`{"reaction":"spicy","username":"bob"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "spicy added")

	rec = doJSON(s, http.MethodPost, "/hottakes/"+take.ID+"/react",
		`{"reaction":"spicy","username":"bob"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "spicy removed")
}

func TestFeedEndpointPaginates(t *testing.T) {
	s, gdb := setupServer(t)
	seedUser(t, gdb, "alice")

	for i := 0; i < 12; i++ {
		rec := doJSON(s, http.MethodPost, "/hottakes/post",
			fmt.Sprintf(`{"sender":"alice","content":"take %d"}`, i))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(s, http.MethodGet, "/feed/alice?page=2&limit=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalCount":12`)

	rec = doJSON(s, http.MethodGet, "/feed/ghost", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteEndpoint(t *testing.T) {
	s, gdb := setupServer(t)
	seedUser(t, gdb, "alice")

	rec := doJSON(s, http.MethodPost, "/hottakes/post", `{"sender":"alice","content":"bye"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var take db.Take
	require.NoError(t, gdb.First(&take).Error)

	rec = doJSON(s, http.MethodDelete, "/hottakes/"+take.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(s, http.MethodDelete, "/hottakes/"+take.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleErrorMapsServiceCodes(t *testing.T) {
	s, _ := setupServer(t)

	cases := []struct {
		err  error
		code int
	}{
		{svcErr.NotFound("take not found"), http.StatusNotFound},
		{svcErr.InvalidArgument("bad reaction"), http.StatusBadRequest},
		{svcErr.Conflict("reaction changed"), http.StatusConflict},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		s.handleError(tc.err, s.echo.NewContext(req, rec))

		assert.Equal(t, tc.code, rec.Code)
		assert.NotContains(t, rec.Body.String(), "rpc error")
	}
}

func TestStatsEndpoint(t *testing.T) {
	s, gdb := setupServer(t)
	seedUser(t, gdb, "alice")

	rec := doJSON(s, http.MethodPost, "/hottakes/post", `{"sender":"alice","content":"x"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(s, http.MethodGet, "/users/alice/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"takesPosted":1`)
}
