package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToaster_SingleSlotReplacement(t *testing.T) {
	toaster := NewToaster(time.Minute)
	defer toaster.Close()

	toaster.Error("first")
	toaster.Success("second")

	current := toaster.Current()
	require.NotNil(t, current)
	assert.Equal(t, "second", current.Message, "new toast replaces the pending one")
	assert.Equal(t, LevelSuccess, current.Level)
}

func TestToaster_AutoDismiss(t *testing.T) {
	toaster := NewToaster(20 * time.Millisecond)
	defer toaster.Close()

	toaster.Info("fleeting")
	require.NotNil(t, toaster.Current())

	assert.Eventually(t, func() bool {
		return toaster.Current() == nil
	}, time.Second, 5*time.Millisecond, "toast auto-dismisses after the fixed duration")
}

func TestToaster_ReplacementSurvivesOldTimer(t *testing.T) {
	toaster := NewToaster(30 * time.Millisecond)
	defer toaster.Close()

	toaster.Info("old")
	time.Sleep(15 * time.Millisecond)
	toaster.Info("new")

	// Past the old toast's deadline but within the new one's.
	time.Sleep(20 * time.Millisecond)
	current := toaster.Current()
	require.NotNil(t, current, "replacement restarts the dismiss timer")
	assert.Equal(t, "new", current.Message)
}

func TestToaster_OnShowCallback(t *testing.T) {
	toaster := NewToaster(time.Minute)
	defer toaster.Close()

	var seen []string
	toaster.OnShow(func(toast Toast) { seen = append(seen, toast.Message) })

	toaster.Success("a")
	toaster.Error("b")
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestToaster_NilSafe(t *testing.T) {
	var toaster *Toaster
	toaster.Show(Toast{Message: "ignored"})
	toaster.Info("ignored")
	toaster.Close()
	assert.Nil(t, toaster.Current())
}

func TestToaster_DefaultLevel(t *testing.T) {
	toaster := NewToaster(time.Minute)
	defer toaster.Close()

	toaster.Show(Toast{Message: "plain"})
	current := toaster.Current()
	require.NotNil(t, current)
	assert.Equal(t, LevelInfo, current.Level)
}
