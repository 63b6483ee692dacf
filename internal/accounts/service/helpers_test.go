package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/scrimflow/accounts/internal/accounts/cooldown"
	"github.com/scrimflow/accounts/internal/accounts/domain"
	"github.com/scrimflow/accounts/internal/accounts/notify"
	"github.com/scrimflow/accounts/internal/accounts/store"
	"github.com/scrimflow/accounts/internal/accounts/store/drivers/sqlite"
	"github.com/scrimflow/accounts/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// syncRunner runs tasks inline and records their names.
type syncRunner struct {
	mu    sync.Mutex
	names []string
}

func (r *syncRunner) Submit(ctx context.Context, name string, task func(ctx context.Context) error) bool {
	r.mu.Lock()
	r.names = append(r.names, name)
	r.mu.Unlock()
	_ = task(ctx)
	return true
}

func (r *syncRunner) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}

// allowFunc adapts a function to cooldown.Limiter.
type allowFunc func(ctx context.Context, key cooldown.Key) (bool, error)

func (f allowFunc) Allow(ctx context.Context, key cooldown.Key) (bool, error) { return f(ctx, key) }

type staticGeo struct{ loc *domain.Location }

func (g staticGeo) Lookup(context.Context, string) *domain.Location { return g.loc }

type fixture struct {
	store        store.Store
	mailer       *notify.MemoryMailer
	runner       *syncRunner
	clock        *testClock
	verification *VerificationService
	sessions     *SessionService
	anomaly      *AnomalyNotifier
	auth         *AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	f := &fixture{
		store:  st,
		mailer: &notify.MemoryMailer{},
		runner: &syncRunner{},
		clock:  &testClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
	f.verification = &VerificationService{
		Store:  st,
		Mailer: f.mailer,
		Runner: f.runner,
		Now:    f.clock.Now,
	}
	f.sessions = &SessionService{Store: st, Now: f.clock.Now}
	f.anomaly = &AnomalyNotifier{
		Sessions: f.sessions,
		Geo:      staticGeo{loc: &domain.Location{City: "Sydney", Country: "Australia"}},
		Mailer:   f.mailer,
		Runner:   f.runner,
		Now:      f.clock.Now,
	}
	f.auth = &AuthService{
		Store:        st,
		Hasher:       cryptox.NewHasher("test-pepper"),
		Verification: f.verification,
		Sessions:     f.sessions,
		Anomaly:      f.anomaly,
		Now:          f.clock.Now,
	}
	return f
}

func meta(ip string) domain.SessionMetadata {
	return domain.SessionMetadata{IPAddress: ip, UserAgent: "test-agent", Device: "desktop", Locale: "en"}
}

// register creates a user and returns its id and the verification code.
func (f *fixture) register(t *testing.T, username, email, password string) (string, string) {
	t.Helper()
	id, err := f.auth.Register(context.Background(), RegisterInput{Username: username, Email: email, Password: password}, meta("203.0.113.1"))
	require.NoError(t, err)
	code, ok := f.mailer.LastCode(domain.NormalizeEmail(email), domain.VerificationEmail)
	require.True(t, ok)
	return id, code
}

// verifiedUser registers and verifies a user.
func (f *fixture) verifiedUser(t *testing.T, username, email, password string) string {
	t.Helper()
	id, code := f.register(t, username, email, password)
	require.NoError(t, f.auth.VerifyEmail(context.Background(), code, email))
	return id
}

func (f *fixture) activeCodes(t *testing.T, userID string, typ domain.VerificationType) []domain.VerificationCode {
	t.Helper()
	codes, err := f.store.Verifications().ListUnconsumedForUser(context.Background(), userID, typ)
	require.NoError(t, err)
	return codes
}

type panicMailer struct{}

func (panicMailer) SendVerificationCode(context.Context, string, string, domain.VerificationType) error {
	panic("mailer exploded")
}

func (panicMailer) SendNewLoginAlert(context.Context, string, notify.LoginAlert) error {
	panic("mailer exploded")
}
