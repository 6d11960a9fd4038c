package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vv-events/dashboard/internal/domain/model"
	"github.com/vv-events/dashboard/internal/ports"
	"github.com/vv-events/dashboard/internal/testutil"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestSessionCache_UserLifecycle(t *testing.T) {
	clk := &clock{t: testutil.TestTime()}
	c := NewSessionCache(clk.now)
	ctx := context.Background()

	require.NoError(t, c.SaveUser(ctx, "k", &model.User{ID: 1, Role: "ADMIN"}, time.Minute))
	u, err := c.GetUser(ctx, "k")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, int64(1), u.ID)

	u.Role = "USER"
	again, _ := c.GetUser(ctx, "k")
	assert.Equal(t, "ADMIN", again.Role, "cache must hand out copies")

	clk.t = clk.t.Add(2 * time.Minute)
	u, err = c.GetUser(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestSessionCache_ClearRemovesEverything(t *testing.T) {
	c := NewSessionCache(nil)
	ctx := context.Background()

	require.NoError(t, c.SaveUser(ctx, "k", &model.User{ID: 1}, 0))
	require.NoError(t, c.SetPreference(ctx, "k", ports.PreferenceTheme, "dark", 0))
	require.NoError(t, c.SetPreference(ctx, "k", "lang", "fr", 0))

	require.NoError(t, c.Clear(ctx, "k"))

	u, _ := c.GetUser(ctx, "k")
	assert.Nil(t, u)
	_, ok, _ := c.GetPreference(ctx, "k", ports.PreferenceTheme)
	assert.False(t, ok)
	_, ok, _ = c.GetPreference(ctx, "k", "lang")
	assert.False(t, ok)
}

func TestSessionCache_ListAndClearAll(t *testing.T) {
	c := NewSessionCache(nil)
	ctx := context.Background()

	require.NoError(t, c.SaveUser(ctx, "b", &model.User{ID: 2}, time.Hour))
	require.NoError(t, c.SaveUser(ctx, "a", &model.User{ID: 1}, time.Hour))
	require.NoError(t, c.SetPreference(ctx, "user-1", ports.PreferenceTheme, "dark", time.Hour))

	sessions, err := c.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "a", sessions[0].Key)
	assert.Equal(t, time.Hour, sessions[0].TTL.Round(time.Minute))

	n, err := c.ClearAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	sessions, _ = c.ListSessions(ctx)
	assert.Empty(t, sessions)

	v, ok, _ := c.GetPreference(ctx, "user-1", ports.PreferenceTheme)
	assert.True(t, ok)
	assert.Equal(t, "dark", v)
}

func TestSessionCache_SaveValidation(t *testing.T) {
	c := NewSessionCache(nil)
	require.Error(t, c.SaveUser(context.Background(), "", &model.User{}, 0))
	require.Error(t, c.SaveUser(context.Background(), "k", nil, 0))
	require.Error(t, c.SetPreference(context.Background(), "k", "", "v", 0))
}

func TestTokenStore(t *testing.T) {
	s := NewTokenStore("")
	_, ok := s.Token()
	assert.False(t, ok)

	clk := &clock{t: testutil.TestTime()}
	s.now = clk.now
	s.SetToken("abc", time.Hour)
	tok, ok := s.Token()
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	clk.t = clk.t.Add(2 * time.Hour)
	_, ok = s.Token()
	assert.False(t, ok)

	s.SetToken("def", 0)
	s.ClearToken()
	_, ok = s.Token()
	assert.False(t, ok)
}
