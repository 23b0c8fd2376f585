package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/canteen-orders/config"
	"github.com/kendall-kelly/canteen-orders/middleware"
	"github.com/kendall-kelly/canteen-orders/services"
	"github.com/kendall-kelly/canteen-orders/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	router   *gin.Engine
	db       *gorm.DB
	seed     *testutil.Seed
	store    *services.GormOrderStore
	sessions services.SessionStore
	events   *services.MockEventPublisher
	s3       *services.MockS3Service
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// setupEnv wires the controllers to a seeded SQLite database, in-memory
// events and S3, and an operator holding the export scope.
func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.SetupTestDB(t)
	config.SetDB(db)

	env := &testEnv{
		db:       db,
		seed:     testutil.SeedCanteen(t, db, time.Now()),
		store:    services.NewGormOrderStore(db),
		sessions: services.NewGormSessionStore(db),
		events:   services.NewMockEventPublisher(),
		s3:       services.NewMockS3Service(),
	}

	SetOrderService(services.NewOrderService(env.store, env.events, discardLogger, 3))
	SetSessionStore(env.sessions)
	SetExportService(services.NewExportService(env.store, env.s3, "exports", discardLogger))
	SetOperatorDirectory(nil)
	t.Cleanup(func() {
		SetOrderService(nil)
		SetSessionStore(nil)
		SetExportService(nil)
		SetOperatorDirectory(nil)
		config.SetDB(nil)
	})

	env.router = gin.New()
	RegisterRoutes(env.router, testutil.FakeOperatorAuth("auth0|ops", middleware.ScopeExportOrders))
	return env
}

func (e *testEnv) chat(handle int64, path string) string {
	return fmt.Sprintf("/api/v1/chats/%d%s", handle, path)
}

// do sends a JSON request and decodes the envelope
func (e *testEnv) do(t *testing.T, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return w.Code, response
}

func data(t *testing.T, response map[string]interface{}) map[string]interface{} {
	t.Helper()
	require.Equal(t, true, response["success"], response)
	d, ok := response["data"].(map[string]interface{})
	require.True(t, ok, "data should be an object: %v", response)
	return d
}

func errorCode(t *testing.T, response map[string]interface{}) string {
	t.Helper()
	require.Equal(t, false, response["success"], response)
	e, ok := response["error"].(map[string]interface{})
	require.True(t, ok, "error should be an object: %v", response)
	return e["code"].(string)
}

func assertAmount(t *testing.T, want string, got interface{}) {
	t.Helper()
	s, ok := got.(string)
	require.True(t, ok, "amount should be encoded as a string, got %v", got)
	assert.True(t, decimal.RequireFromString(want).Equal(decimal.RequireFromString(s)), "want %s, got %s", want, s)
}
