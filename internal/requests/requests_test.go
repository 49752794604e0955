package requests

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"devmatch/internal/models"
	"devmatch/internal/notify"
	"devmatch/internal/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reviewerStub struct {
	getRequestsFn   func(context.Context) ([]models.ConnectionRequest, error)
	acceptRequestFn func(context.Context, string) error
	rejectRequestFn func(context.Context, string) error
}

func (s *reviewerStub) GetRequests(ctx context.Context) ([]models.ConnectionRequest, error) {
	return s.getRequestsFn(ctx)
}
func (s *reviewerStub) AcceptRequest(ctx context.Context, id string) error {
	return s.acceptRequestFn(ctx, id)
}
func (s *reviewerStub) RejectRequest(ctx context.Context, id string) error {
	return s.rejectRequestFn(ctx, id)
}

func requestsOf(ids ...string) []models.ConnectionRequest {
	reqs := make([]models.ConnectionRequest, 0, len(ids))
	for _, id := range ids {
		reqs = append(reqs, models.ConnectionRequest{
			ID:       id,
			FromUser: models.User{ID: "sender-" + id, FirstName: "Sender", LastName: id},
		})
	}
	return reqs
}

func stubFor(reqs []models.ConnectionRequest) *reviewerStub {
	return &reviewerStub{
		getRequestsFn:   func(context.Context) ([]models.ConnectionRequest, error) { return reqs, nil },
		acceptRequestFn: func(context.Context, string) error { return nil },
		rejectRequestFn: func(context.Context, string) error { return nil },
	}
}

func loadedList(t *testing.T, stub *reviewerStub, toaster *notify.Toaster) *List {
	t.Helper()
	list := NewList(stub, toaster, nil)
	require.NoError(t, list.Load(context.Background()))
	return list
}

func TestList_LoadAndEmptyState(t *testing.T) {
	t.Run("Loaded list exposes entries", func(t *testing.T) {
		list := loadedList(t, stubFor(requestsOf("r1", "r2")), notify.NewToaster(time.Minute))
		assert.Len(t, list.Items(), 2)
		assert.False(t, list.Empty())
	})

	t.Run("Zero entries is the empty state", func(t *testing.T) {
		list := loadedList(t, stubFor(nil), notify.NewToaster(time.Minute))
		assert.True(t, list.Empty())
	})

	t.Run("Fetch failure notifies", func(t *testing.T) {
		stub := stubFor(nil)
		stub.getRequestsFn = func(context.Context) ([]models.ConnectionRequest, error) {
			return nil, errors.New("502")
		}
		toaster := notify.NewToaster(time.Minute)
		list := NewList(stub, toaster, nil)

		require.Error(t, list.Load(context.Background()))
		toast := toaster.Current()
		require.NotNil(t, toast)
		assert.Equal(t, notify.LevelError, toast.Level)
	})
}

func TestList_AcceptRemovesOnSuccess(t *testing.T) {
	var acceptedID string
	stub := stubFor(requestsOf("r1", "r2"))
	stub.acceptRequestFn = func(_ context.Context, id string) error {
		acceptedID = id
		return nil
	}
	toaster := notify.NewToaster(time.Minute)
	list := loadedList(t, stub, toaster)

	require.NoError(t, list.Accept(context.Background(), "r1"))
	assert.Equal(t, "r1", acceptedID)
	assert.Equal(t, requestsOf("r2"), list.Items(), "only the accepted entry is removed")

	toast := toaster.Current()
	require.NotNil(t, toast)
	assert.Equal(t, notify.LevelSuccess, toast.Level)
	assert.Equal(t, "Connection request accepted!", toast.Message)
}

func TestList_RejectRemovesOnSuccess(t *testing.T) {
	list := loadedList(t, stubFor(requestsOf("r1", "r2")), notify.NewToaster(time.Minute))

	require.NoError(t, list.Reject(context.Background(), "r2"))
	assert.Equal(t, requestsOf("r1"), list.Items())
}

func TestList_FailureKeepsEntry(t *testing.T) {
	stub := stubFor(requestsOf("r1"))
	stub.acceptRequestFn = func(context.Context, string) error { return errors.New("500") }
	toaster := notify.NewToaster(time.Minute)
	list := loadedList(t, stub, toaster)

	require.Error(t, list.Accept(context.Background(), "r1"))
	assert.Len(t, list.Items(), 1, "entry stays on failure, retry possible")

	toast := toaster.Current()
	require.NotNil(t, toast)
	assert.Equal(t, notify.LevelError, toast.Level)

	// The same entry can be retried once the server recovers.
	stub.acceptRequestFn = func(context.Context, string) error { return nil }
	require.NoError(t, list.Accept(context.Background(), "r1"))
	assert.True(t, list.Empty())
}

func TestList_PerIDInFlightGuard(t *testing.T) {
	var calls int
	stub := stubFor(requestsOf("r1", "r2"))
	list := NewList(stub, notify.NewToaster(time.Minute), nil)

	var nestedSameID, nestedOtherID error
	stub.acceptRequestFn = func(ctx context.Context, id string) error {
		calls++
		if id == "r1" {
			// A duplicate submit against the same entry is rejected,
			// while another entry's action proceeds independently.
			nestedSameID = list.Accept(ctx, id)
			nestedOtherID = list.Accept(ctx, "r2")
		}
		return nil
	}
	require.NoError(t, list.Load(context.Background()))

	require.NoError(t, list.Accept(context.Background(), "r1"))
	assert.ErrorIs(t, nestedSameID, ErrActionPending)
	assert.NoError(t, nestedOtherID)
	assert.Equal(t, 2, calls)
	assert.True(t, list.Empty())
}

func TestList_FailureLogsEndpointPath(t *testing.T) {
	var buf bytes.Buffer
	logger := observability.NewLogger(&buf, slog.LevelDebug)

	stub := stubFor(requestsOf("r1"))
	stub.acceptRequestFn = func(context.Context, string) error { return errors.New("500") }
	stub.rejectRequestFn = func(context.Context, string) error { return errors.New("500") }
	list := NewList(stub, notify.NewToaster(time.Minute), logger)
	require.NoError(t, list.Load(context.Background()))

	require.Error(t, list.Accept(context.Background(), "r1"))
	assert.Contains(t, buf.String(), "/request/review/accepted/r1")

	buf.Reset()
	require.Error(t, list.Reject(context.Background(), "r1"))
	assert.Contains(t, buf.String(), "/user/requests/r1/reject")
}

func TestList_RemoveIsIdempotent(t *testing.T) {
	list := loadedList(t, stubFor(requestsOf("r1", "r2")), notify.NewToaster(time.Minute))

	assert.True(t, list.Remove("r1"))
	assert.False(t, list.Remove("r1"), "duplicate removal is a no-op")
	assert.False(t, list.Remove("ghost"))
	assert.Equal(t, requestsOf("r2"), list.Items())
}

func TestList_CloseDropsLateResults(t *testing.T) {
	stub := stubFor(requestsOf("r1"))
	list := NewList(stub, notify.NewToaster(time.Minute), nil)

	stub.acceptRequestFn = func(context.Context, string) error {
		list.Close()
		return nil
	}
	require.NoError(t, list.Load(context.Background()))

	assert.NoError(t, list.Accept(context.Background(), "r1"), "late settlement is dropped silently")

	assert.ErrorIs(t, list.Load(context.Background()), ErrClosed)
	assert.ErrorIs(t, list.Reject(context.Background(), "r1"), ErrClosed)
}
