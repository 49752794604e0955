package session

import (
	"context"
	"errors"
	"testing"

	"devmatch/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profileAPIStub struct {
	loginFn         func(context.Context, string, string) (*models.User, error)
	signupFn        func(context.Context, models.SignupRequest) (*models.User, error)
	logoutFn        func(context.Context) error
	getUserFn       func(context.Context) (*models.User, error)
	updateProfileFn func(context.Context, models.ProfilePatch) (*models.User, error)
}

func (s *profileAPIStub) Login(ctx context.Context, email, password string) (*models.User, error) {
	return s.loginFn(ctx, email, password)
}
func (s *profileAPIStub) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	return s.signupFn(ctx, req)
}
func (s *profileAPIStub) Logout(ctx context.Context) error { return s.logoutFn(ctx) }
func (s *profileAPIStub) GetUser(ctx context.Context) (*models.User, error) {
	return s.getUserFn(ctx)
}
func (s *profileAPIStub) UpdateProfile(ctx context.Context, patch models.ProfilePatch) (*models.User, error) {
	return s.updateProfileFn(ctx, patch)
}

type tokenSourceStub struct{ token bool }

func (s *tokenSourceStub) HasToken() bool { return s.token }

func noopProfileAPI() *profileAPIStub {
	user := &models.User{ID: "me", FirstName: "Ada", LastName: "Lovelace", Age: 30, Gender: models.GenderFemale}
	return &profileAPIStub{
		loginFn: func(context.Context, string, string) (*models.User, error) { return user, nil },
		signupFn: func(context.Context, models.SignupRequest) (*models.User, error) {
			return user, nil
		},
		logoutFn:        func(context.Context) error { return nil },
		getUserFn:       func(context.Context) (*models.User, error) { return user, nil },
		updateProfileFn: func(context.Context, models.ProfilePatch) (*models.User, error) { return user, nil },
	}
}

func TestStore_LifecycleLoginLogout(t *testing.T) {
	store := NewStore(noopProfileAPI(), &tokenSourceStub{})
	assert.Equal(t, StateInit, store.State())
	assert.Nil(t, store.CurrentUser())

	user, err := store.Login(context.Background(), "ada@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "me", user.ID)
	assert.Equal(t, StateAuthenticated, store.State())
	assert.NotNil(t, store.CurrentUser())

	require.NoError(t, store.Logout(context.Background()))
	assert.Equal(t, StateAnonymous, store.State())
	assert.Nil(t, store.CurrentUser())
}

func TestStore_LoadSessionFailureLeavesAnonymous(t *testing.T) {
	apiStub := noopProfileAPI()
	apiStub.getUserFn = func(context.Context) (*models.User, error) {
		return nil, errors.New("401")
	}
	store := NewStore(apiStub, &tokenSourceStub{token: true})

	_, err := store.LoadSession(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateAnonymous, store.State())
	assert.Nil(t, store.CurrentUser(), "failed fetch leaves the session empty")
}

func TestStore_LogoutFailureKeepsSession(t *testing.T) {
	apiStub := noopProfileAPI()
	apiStub.logoutFn = func(context.Context) error { return errors.New("503") }
	store := NewStore(apiStub, &tokenSourceStub{})

	_, err := store.Login(context.Background(), "a@b.c", "secret123")
	require.NoError(t, err)

	require.Error(t, store.Logout(context.Background()))
	assert.Equal(t, StateAuthenticated, store.State(), "state mutates only after success")
	assert.NotNil(t, store.CurrentUser())
}

func TestStore_SignupValidatesBeforeCalling(t *testing.T) {
	called := false
	apiStub := noopProfileAPI()
	apiStub.signupFn = func(context.Context, models.SignupRequest) (*models.User, error) {
		called = true
		return &models.User{}, nil
	}
	store := NewStore(apiStub, &tokenSourceStub{})

	_, err := store.Signup(context.Background(), models.SignupRequest{FirstName: "X"})
	require.Error(t, err)
	assert.False(t, called, "invalid payloads never reach the network")
}

func TestStore_UpdateProfileRequiresUser(t *testing.T) {
	store := NewStore(noopProfileAPI(), &tokenSourceStub{})

	_, err := store.UpdateProfile(context.Background(), models.ProfilePatch{})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestStore_UpdateProfileRefreshesUser(t *testing.T) {
	updated := &models.User{ID: "me", FirstName: "Ada", About: "new bio"}
	apiStub := noopProfileAPI()
	apiStub.updateProfileFn = func(context.Context, models.ProfilePatch) (*models.User, error) {
		return updated, nil
	}
	store := NewStore(apiStub, &tokenSourceStub{})

	_, err := store.Login(context.Background(), "a@b.c", "secret123")
	require.NoError(t, err)

	about := "new bio"
	_, err = store.UpdateProfile(context.Background(), models.ProfilePatch{About: &about})
	require.NoError(t, err)
	assert.Equal(t, "new bio", store.CurrentUser().About)
}

func TestStore_DisposedDropsEverything(t *testing.T) {
	store := NewStore(noopProfileAPI(), &tokenSourceStub{token: true})
	store.Dispose()

	assert.Equal(t, StateDisposed, store.State())
	assert.False(t, store.HasToken(), "disposed store reports no token")

	_, err := store.LoadSession(context.Background())
	assert.ErrorIs(t, err, ErrDisposed)
	_, err = store.Login(context.Background(), "a@b.c", "x")
	assert.ErrorIs(t, err, ErrDisposed)
	assert.ErrorIs(t, store.Logout(context.Background()), ErrDisposed)
}

func TestStore_HasTokenIndependentOfUser(t *testing.T) {
	store := NewStore(noopProfileAPI(), &tokenSourceStub{token: true})

	assert.True(t, store.HasToken(), "token presence alone, before any fetch")
	assert.Nil(t, store.CurrentUser())
}
