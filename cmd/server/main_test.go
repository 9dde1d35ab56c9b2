package main

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"net/http"
	"net/http/httptest"
	"testing"

	"pizzeria-be/internal/config"
	"pizzeria-be/internal/events"
	"pizzeria-be/internal/middleware"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock Driver for Testing ---
type mockDriver struct{}

func (m *mockDriver) Open(name string) (driver.Conn, error)         { return &mockConn{}, nil }
func (c *mockConn) Prepare(query string) (driver.Stmt, error)       { return &mockStmt{}, nil }
func (c *mockConn) Close() error                                    { return nil }
func (c *mockConn) Begin() (driver.Tx, error)                       { return nil, nil }
func (s *mockStmt) Close() error                                    { return nil }
func (s *mockStmt) NumInput() int                                   { return 0 }
func (s *mockStmt) Exec(args []driver.Value) (driver.Result, error) { return nil, nil }
func (s *mockStmt) Query(args []driver.Value) (driver.Rows, error)  { return nil, nil }

type mockConn struct{}
type mockStmt struct{}

func init() {
	sql.Register("mock_driver_main", &mockDriver{})
}

func TestNewServer(t *testing.T) {
	db, err := sql.Open("mock_driver_main", "")
	require.NoError(t, err)
	defer db.Close()

	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer rdb.Close()

	cfg := &config.Config{
		AppPort:      "8080",
		AppEnv:       "test",
		CORSOrigin:   "*",
		DeliveryFee:  decimal.NewFromInt(8),
		CashbackRate: decimal.NewFromInt(5),
		JWTSecret:    "test-secret",
	}

	router := newServer(cfg, db, rdb, events.NopPublisher{}, middleware.NewRateLimiter(""))
	require.NotNil(t, router)

	t.Run("Health Check", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "ok")
	})

	t.Run("Admin requires token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/orders", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Metrics behind auth", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/metrics", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func setEnv(t *testing.T) {
	t.Setenv("APP_PORT", "8080")
	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_USER", "user")
	t.Setenv("DB_PASSWORD", "pass")
	t.Setenv("DB_NAME", "db")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("KAFKA_BROKERS", "")
}

func TestRun(t *testing.T) {
	origOpenDB := openDBFunc
	origStartServer := startServerFunc
	defer func() {
		openDBFunc = origOpenDB
		startServerFunc = origStartServer
	}()

	openDBFunc = func(cfg *config.Config) (*sql.DB, error) {
		return sql.Open("mock_driver_main", "")
	}

	t.Run("Server exits cleanly", func(t *testing.T) {
		setEnv(t)
		startServerFunc = func(srv *http.Server) error { return http.ErrServerClosed }

		assert.NoError(t, run(context.Background()))
	})

	t.Run("Shutdown on cancel", func(t *testing.T) {
		setEnv(t)
		block := make(chan struct{})
		startServerFunc = func(srv *http.Server) error {
			<-block
			return nil
		}
		defer close(block)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.NoError(t, run(ctx))
	})

	t.Run("Missing config", func(t *testing.T) {
		setEnv(t)
		t.Setenv("DB_HOST", "")

		assert.Error(t, run(context.Background()))
	})
}
