//go:build integration

package accounts_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/scrimflow/accounts/internal/accounts/domain"
	httpapi "github.com/scrimflow/accounts/internal/accounts/http"
	"github.com/scrimflow/accounts/internal/accounts/notify"
	"github.com/scrimflow/accounts/internal/accounts/service"
	"github.com/scrimflow/accounts/internal/accounts/store"
	"github.com/scrimflow/accounts/internal/accounts/store/drivers/postgres"
	"github.com/scrimflow/accounts/pkg/accountsdk"
	"github.com/scrimflow/accounts/pkg/cryptox"
	"github.com/scrimflow/accounts/pkg/httpx"
	"github.com/scrimflow/accounts/pkg/slogx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * End-to-end tests run the accounts HTTP API in-process against a real
 * Postgres started with testcontainers. Run with: go test -tags integration ./test/e2e/...
 */

const (
	postgresImage    = "postgres:16-alpine"
	postgresUser     = "accounts"
	postgresPassword = "accounts"
	postgresDB       = "accounts"

	testPassword = "Sup3rSecret!"

	waitTimeout = 5 * time.Second
	waitTick    = 20 * time.Millisecond
)

// sharedStore is migrated once in TestMain and reused by every test. Tests
// keep apart by using unique usernames and emails.
var (
	sharedStore store.Store
	sharedDB    *sql.DB
)

var userSeq atomic.Int64

func TestMain(m *testing.M) {
	// Every flow in a test comes from the same client address.
	httpx.StrictLimit = httpx.LenientLimit

	ctx := context.Background()

	fmt.Fprintf(os.Stdout, "Starting Postgres container...")
	container, dsn, err := startPostgres(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to start postgres: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	st, err := postgres.NewStore(ctx, dsn, postgres.Options{MaxOpenConns: 10})
	if err == nil {
		err = st.ApplyMigrations()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to prepare store: %v\n", err)
		_ = container.Terminate(ctx)
		os.Exit(1)
	}
	sharedStore = st
	sharedDB = st.DB()

	exitCode := m.Run()

	_ = st.Close()
	if err := container.Terminate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to terminate container: %v\n", err)
	}

	os.Exit(exitCode)
}

func startPostgres(ctx context.Context) (testcontainers.Container, string, error) {
	req := testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     postgresUser,
			"POSTGRES_PASSWORD": postgresPassword,
			"POSTGRES_DB":       postgresDB,
		},
		// The server logs readiness twice: once for the init run, once for real.
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, "", err
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, "", err
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, "", err
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		postgresUser, postgresPassword, host, port.Port(), postgresDB)
	return container, dsn, nil
}

// staticGeo places every address in Sydney.
type staticGeo struct{}

func (staticGeo) Lookup(context.Context, string) *domain.Location {
	return &domain.Location{City: "Sydney", Country: "Australia", CountryCode: "AU", Timezone: "Australia/Sydney"}
}

type testEnv struct {
	client *accountsdk.SDKClient
	mailer *notify.MemoryMailer
	store  store.Store
}

// setupServer serves the accounts API over httptest with mail captured in
// memory and delivered on a real dispatcher.
func setupServer(t *testing.T) *testEnv {
	t.Helper()

	mailer := &notify.MemoryMailer{}
	dispatcher := notify.NewDispatcher(notify.Config{Workers: 2, QueueSize: 64}, slogx.Discard())

	sessions := &service.SessionService{Store: sharedStore}
	auth := &service.AuthService{
		Store:  sharedStore,
		Hasher: cryptox.NewHasher("e2e-pepper"),
		Verification: &service.VerificationService{
			Store:  sharedStore,
			Mailer: mailer,
			Runner: dispatcher,
		},
		Sessions: sessions,
		Anomaly: &service.AnomalyNotifier{
			Sessions: sessions,
			Geo:      staticGeo{},
			Mailer:   mailer,
			Runner:   dispatcher,
		},
	}

	router := httpapi.NewRouter("e2e", sharedStore, auth, slogx.Discard())
	router.Geo = staticGeo{}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		dispatcher.Close()
	})

	return &testEnv{
		client: accountsdk.NewSDKClient(srv.URL),
		mailer: mailer,
		store:  sharedStore,
	}
}

type account struct {
	ID       string
	Username string
	Email    string
}

func newAccount() account {
	n := userSeq.Add(1)
	stamp := time.Now().UnixNano()
	return account{
		Username: fmt.Sprintf("player_%d_%d", stamp%1_000_000, n),
		Email:    fmt.Sprintf("player%d.%d@scrimflow.test", stamp, n),
	}
}

// waitForCode polls the mailer until a code for purpose reaches to.
func (e *testEnv) waitForCode(t *testing.T, to string, purpose domain.VerificationType) string {
	t.Helper()
	var code string
	require.Eventually(t, func() bool {
		var ok bool
		code, ok = e.mailer.LastCode(strings.ToLower(to), purpose)
		return ok
	}, waitTimeout, waitTick, "no %s code delivered to %s", purpose, to)
	return code
}

// signUp registers and verifies a new account.
func (e *testEnv) signUp(t *testing.T) account {
	t.Helper()
	acc := newAccount()

	resp, err := e.client.Register(t.Context(), accountsdk.RegisterRequest{
		Username:        acc.Username,
		Email:           acc.Email,
		Password:        testPassword,
		ConfirmPassword: testPassword,
	})
	require.NoError(t, err)
	acc.ID = resp.UserID

	code := e.waitForCode(t, acc.Email, domain.VerificationEmail)
	require.NoError(t, e.client.VerifyEmail(t.Context(), accountsdk.VerifyCodeRequest{Token: code, Email: acc.Email}))
	return acc
}

func (e *testEnv) login(t *testing.T, acc account) *accountsdk.Session {
	t.Helper()
	sess, err := e.client.Login(t.Context(), accountsdk.LoginRequest{Email: acc.Email, Password: testPassword})
	require.NoError(t, err)
	return sess
}

// promote grants the admin role. Roles have no API, so it goes straight to
// the database.
func promote(t *testing.T, userID string) {
	t.Helper()
	res, err := sharedDB.ExecContext(t.Context(), `UPDATE users SET global_role = 'admin' WHERE id = $1`, userID)
	require.NoError(t, err)
	n, err := res.RowsAffected()
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

// requireAPIError asserts err is an APIError carrying code.
func requireAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	require.Error(t, err)
	var apiErr *accountsdk.APIError
	require.True(t, errors.As(err, &apiErr), "expected APIError, got %T: %v", err, err)
	require.Equal(t, status, apiErr.StatusCode)
	require.Equal(t, code, apiErr.Code)
}
