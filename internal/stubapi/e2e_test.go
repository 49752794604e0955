package stubapi_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"devmatch/internal/api"
	"devmatch/internal/config"
	"devmatch/internal/feed"
	"devmatch/internal/models"
	"devmatch/internal/notify"
	"devmatch/internal/observability"
	"devmatch/internal/requests"
	"devmatch/internal/session"
	"devmatch/internal/stubapi"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// startStub boots the stub on a real loopback listener and returns its
// base URL, so the production HTTP adapter is exercised end to end.
func startStub(t *testing.T) string {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&stubapi.Account{}, &stubapi.Edge{}))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	cfg := &config.Config{JWTSecret: "e2e-secret", DBDriver: "sqlite"}
	srv := stubapi.NewServerWithDeps(cfg, db, redisClient,
		observability.NewLogger(io.Discard, slog.LevelError))
	app := srv.App()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	return "http://" + ln.Addr().String()
}

func newClient(t *testing.T, baseURL string) *api.Client {
	t.Helper()
	client, err := api.New(baseURL, 5*time.Second,
		observability.NewLogger(io.Discard, slog.LevelError))
	require.NoError(t, err)
	return client
}

func e2eSignup(t *testing.T, client *api.Client, email, first string) *models.User {
	t.Helper()
	store := session.NewStore(client, client)
	user, err := store.Signup(context.Background(), models.SignupRequest{
		FirstName: first,
		LastName:  "Tester",
		EmailID:   email,
		Password:  "supersecret",
		Age:       30,
		Gender:    models.GenderOther,
	})
	require.NoError(t, err)
	require.True(t, client.HasToken())
	return user
}

func TestEndToEndMatchFlow(t *testing.T) {
	baseURL := startStub(t)
	ctx := context.Background()

	// Two members, each with their own cookie jar.
	alice := newClient(t, baseURL)
	bob := newClient(t, baseURL)
	aliceUser := e2eSignup(t, alice, "alice@example.com", "Alice")
	bobUser := e2eSignup(t, bob, "bob@example.com", "Bob")

	// Alice works through her feed one candidate at a time.
	toaster := notify.NewToaster(time.Minute)
	ctrl := feed.New(alice, toaster, nil)
	require.NoError(t, ctrl.Load(ctx))
	require.Equal(t, feed.PhaseReady, ctrl.Phase())

	current, ok := ctrl.Current()
	require.True(t, ok)
	require.Equal(t, bobUser.ID, current.ID)

	require.NoError(t, ctrl.Interested(ctx, bobUser.ID))
	assert.Equal(t, feed.PhaseExhausted, ctrl.Phase())
	toast := toaster.Current()
	require.NotNil(t, toast)
	assert.Equal(t, notify.LevelSuccess, toast.Level)

	// Bob sees the pending request and accepts it.
	pending := requests.NewList(bob, notify.NewToaster(time.Minute), nil)
	require.NoError(t, pending.Load(ctx))
	items := pending.Items()
	require.Len(t, items, 1)
	assert.Equal(t, aliceUser.ID, items[0].FromUser.ID)

	require.NoError(t, pending.Accept(ctx, items[0].ID))
	assert.True(t, pending.Empty())

	// Both now list each other as connections.
	for client, otherID := range map[*api.Client]string{alice: bobUser.ID, bob: aliceUser.ID} {
		conns := requests.NewConnections(client, nil)
		require.NoError(t, conns.Load(ctx))
		users := conns.Items()
		require.Len(t, users, 1)
		assert.Equal(t, otherID, users[0].ID)
	}
}

func TestEndToEndLogin(t *testing.T) {
	baseURL := startStub(t)
	ctx := context.Background()

	first := newClient(t, baseURL)
	e2eSignup(t, first, "erin@example.com", "Erin")

	// A fresh client with an empty jar logs in with the same credentials,
	// exactly as the login form does.
	second := newClient(t, baseURL)
	require.False(t, second.HasToken())

	store := session.NewStore(second, second)
	user, err := store.Login(ctx, "erin@example.com", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, "Erin", user.FirstName)
	assert.True(t, second.HasToken())
	assert.Equal(t, session.StateAuthenticated, store.State())

	// The captured cookie carries authenticated calls.
	reloaded, err := second.GetUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, user.ID, reloaded.ID)

	_, err = store.Login(ctx, "erin@example.com", "wrong-password")
	require.Error(t, err)
	assert.True(t, api.IsAuthFailure(err))
}

func TestEndToEndSessionLifecycle(t *testing.T) {
	baseURL := startStub(t)
	ctx := context.Background()

	client := newClient(t, baseURL)
	e2eSignup(t, client, "carol@example.com", "Carol")

	var authFailures int
	client.SetAuthFailureHook(func() { authFailures++ })

	// A fresh store over the same credential restores the session.
	store := session.NewStore(client, client)
	user, err := store.LoadSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Carol", user.FirstName)
	assert.Equal(t, session.StateAuthenticated, store.State())

	require.NoError(t, store.Logout(ctx))
	assert.Equal(t, session.StateAnonymous, store.State())

	// The revoked credential now fails closed and fires the 401 hook.
	_, err = client.GetFeed(ctx)
	require.Error(t, err)
	assert.True(t, api.IsAuthFailure(err))
	assert.Equal(t, 1, authFailures)
}

func TestEndToEndProfileEdit(t *testing.T) {
	baseURL := startStub(t)
	ctx := context.Background()

	client := newClient(t, baseURL)
	e2eSignup(t, client, "dave@example.com", "Dave")

	store := session.NewStore(client, client)
	_, err := store.LoadSession(ctx)
	require.NoError(t, err)

	about := "Shipping side projects"
	updated, err := store.UpdateProfile(ctx, models.ProfilePatch{About: &about})
	require.NoError(t, err)
	assert.Equal(t, about, updated.About)

	// The edit is durable, not just echoed.
	reloaded, err := client.GetUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, about, reloaded.About)
}
