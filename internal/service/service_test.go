package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/tripsplit/internal/auth"
	"github.com/mmynk/tripsplit/internal/calculator"
	"github.com/mmynk/tripsplit/internal/middleware"
	"github.com/mmynk/tripsplit/internal/storage/sqlite"
	"github.com/mmynk/tripsplit/pkg/api/apiconnect"
)

// testUserHeader lets a test pick the caller; requests without it act as Ana.
const testUserHeader = "X-Test-User"

// testAuthInterceptor returns a Connect interceptor that sets a test user ID in the context.
func testAuthInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			user := req.Header().Get(testUserHeader)
			if user == "" {
				user = "Ana"
			}
			return next(middleware.WithUser(ctx, user, ""), req)
		}
	}
}

type testServer struct {
	store    *sqlite.SQLiteStore
	jwt      *auth.JWTManager
	auth     apiconnect.AuthServiceClient
	trips    apiconnect.TripServiceClient
	expenses apiconnect.ExpenseServiceClient
}

// setupTestServer serves every service against a temp SQLite database.
// Trip and expense calls are authenticated by testAuthInterceptor, auth
// calls by real JWTs.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "failed to create store")

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	settings := Settings{
		DefaultCurrency: "EUR",
		Epsilon:         calculator.DefaultEpsilon,
	}

	testAuth := connect.WithInterceptors(testAuthInterceptor())
	tripPath, tripHandler := apiconnect.NewTripServiceHandler(NewTripService(store, settings), testAuth)
	expensePath, expenseHandler := apiconnect.NewExpenseServiceHandler(NewExpenseService(store, settings), testAuth)

	authSvc := NewAuthService(auth.NewPasswordAuthenticator(store, bcrypt.MinCost), jwtManager, store, nil)
	authPath, authHandler := apiconnect.NewAuthServiceHandler(authSvc,
		connect.WithInterceptors(middleware.OptionalAuth(jwtManager)))

	mux := http.NewServeMux()
	mux.Handle(tripPath, tripHandler)
	mux.Handle(expensePath, expenseHandler)
	mux.Handle(authPath, authHandler)

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testServer{
		store:    store,
		jwt:      jwtManager,
		auth:     apiconnect.NewAuthServiceClient(http.DefaultClient, server.URL),
		trips:    apiconnect.NewTripServiceClient(http.DefaultClient, server.URL),
		expenses: apiconnect.NewExpenseServiceClient(http.DefaultClient, server.URL),
	}
}

// as builds a request made by user.
func as[T any](user string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set(testUserHeader, user)
	return req
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertCode(t *testing.T, err error, code connect.Code) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, connect.CodeOf(err), "error: %v", err)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}
