package admin

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallet-refbot/internal/store"
)

func newControl(t *testing.T) *Control {
	t.Helper()
	c, err := NewControl(store.NewSettingsStore(t.TempDir()), 100, "welcome")
	require.NoError(t, err)
	return c
}

func TestBlockUnblock(t *testing.T) {
	c := newControl(t)

	assert.False(t, c.IsBlocked(1))
	require.NoError(t, c.Block(1))
	assert.True(t, c.IsBlocked(1))
	require.NoError(t, c.Block(1)) // idempotent
	require.NoError(t, c.Unblock(1))
	assert.False(t, c.IsBlocked(1))
}

func TestBlockListSurvivesReload(t *testing.T) {
	settings := store.NewSettingsStore(t.TempDir())

	c, err := NewControl(settings, 100, "welcome")
	require.NoError(t, err)
	require.NoError(t, c.Block(9))

	reloaded, err := NewControl(settings, 100, "welcome")
	require.NoError(t, err)
	assert.True(t, reloaded.IsBlocked(9))
}

func TestCancelFlagLifecycle(t *testing.T) {
	c := newControl(t)

	assert.False(t, c.IsCancelled(1))
	c.Cancel(1)
	assert.True(t, c.IsCancelled(1))

	// a fresh batch clears the stale flag
	c.ClearCancel(1)
	assert.False(t, c.IsCancelled(1))
}

func TestRememberRequester(t *testing.T) {
	c := newControl(t)

	first, err := c.RememberRequester(1)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := c.RememberRequester(1)
	require.NoError(t, err)
	assert.False(t, again)

	_, err = c.RememberRequester(2)
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2}, c.KnownRequesters())
	assert.Equal(t, 2, c.Stats().TotalUsers)
}

func TestQuotaAndTexts(t *testing.T) {
	c := newControl(t)

	assert.Equal(t, 100, c.MaxPerDay())
	require.NoError(t, c.SetMaxPerDay(25))
	assert.Equal(t, 25, c.MaxPerDay())

	assert.Equal(t, "welcome", c.Welcome())
	require.NoError(t, c.SetWelcome("hi there"))
	assert.Equal(t, "hi there", c.Welcome())
}

func TestDecorate(t *testing.T) {
	c := newControl(t)

	assert.Equal(t, "body", c.Decorate("body"))

	require.NoError(t, c.SetCaption("caption"))
	require.NoError(t, c.SetSuffix("suffix"))
	assert.Equal(t, "body\ncaption\nsuffix", c.Decorate("body"))

	require.NoError(t, c.SetSuffix(""))
	assert.Equal(t, "body\ncaption", c.Decorate("body"))
}

func TestBroadcastSwallowsIndividualFailures(t *testing.T) {
	c := newControl(t)
	for _, id := range []int64{1, 2, 3} {
		_, err := c.RememberRequester(id)
		require.NoError(t, err)
	}

	var reached []int64
	delivered := c.Broadcast(func(id int64) error {
		reached = append(reached, id)
		if id == 2 {
			return errors.New("unreachable")
		}
		return nil
	})

	assert.Equal(t, []int64{1, 2, 3}, reached)
	assert.Equal(t, 2, delivered)
}
