package registry

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustUser(t *testing.T, s string) User {
	t.Helper()
	u, err := ParseUser(s)
	require.NoError(t, err)
	return u
}

func TestAddAndDuplicate(t *testing.T) {
	r := New()
	require.NoError(t, r.Add(mustUser(t, "alice:pw")))
	assert.ErrorIs(t, r.Add(mustUser(t, "alice:other")), ErrDuplicateUser)
}

func TestRemoveVariants(t *testing.T) {
	r := New()
	require.NoError(t, r.Add(mustUser(t, "bob:secret")))

	assert.ErrorIs(t, r.Remove(mustUser(t, "nobody:x")), ErrNoSuchUser)
	assert.ErrorIs(t, r.Remove(mustUser(t, "bob:wrong")), ErrWrongPassword)
	require.NoError(t, r.Remove(mustUser(t, "bob:secret")))
	assert.False(t, r.Exists("bob"))
}

func TestCheckPasswordAndExists(t *testing.T) {
	r := New()
	require.NoError(t, r.Add(mustUser(t, "carl:pw")))
	assert.True(t, r.CheckPassword("carl", "pw"))
	assert.False(t, r.CheckPassword("carl", "wrong"))
	assert.False(t, r.CheckPassword("ghost", "pw"))
	assert.True(t, r.Exists("carl"))
	assert.False(t, r.Exists("ghost"))
}

func TestStatusAndChannel(t *testing.T) {
	r := New()
	require.NoError(t, r.Add(mustUser(t, "dana:pw")))

	st, err := r.GetStatus("dana")
	require.NoError(t, err)
	assert.Equal(t, Disconnected, st)

	ch, err := r.GetChannel("dana")
	require.NoError(t, err)
	assert.Equal(t, NoChannel, ch)

	assert.True(t, r.SetStatus("dana", Waiting))
	assert.True(t, r.SetChannel("dana", 7))
	st, _ = r.GetStatus("dana")
	ch, _ = r.GetChannel("dana")
	assert.Equal(t, Waiting, st)
	assert.Equal(t, 7, ch)

	assert.False(t, r.SetStatus("ghost", Waiting))
	assert.False(t, r.SetChannel("ghost", 1))

	_, err = r.GetStatus("ghost")
	assert.ErrorIs(t, err, ErrNoSuchUser)

	assert.True(t, r.Reset("dana"))
	st, _ = r.GetStatus("dana")
	ch, _ = r.GetChannel("dana")
	assert.Equal(t, Disconnected, st)
	assert.Equal(t, NoChannel, ch)
}

func TestListByStatusOrderedAndSentinel(t *testing.T) {
	r := New()
	assert.Equal(t, NoUsersSentinel, r.ListByStatus(Waiting))

	names := []string{"zara", "anna", "mike", "bob"}
	for _, n := range names {
		require.NoError(t, r.Add(User{Name: n, Password: "pw"}))
		require.True(t, r.SetStatus(n, Waiting))
	}
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	assert.Equal(t, strings.Join(sorted, ":"), r.ListByStatus(Waiting))
}

func TestLoadStoreRoundTrip(t *testing.T) {
	r := New()
	for _, u := range []string{"zoe:aaa", "amy:bbb", "max:ccc"} {
		require.NoError(t, r.Add(mustUser(t, u)))
	}

	var buf strings.Builder
	n, err := r.Store(&buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	r2 := New()
	n2, err := r2.Load(strings.NewReader(buf.String()))
	require.NoError(t, err)
	assert.Equal(t, 3, n2)

	for _, name := range []string{"zoe", "amy", "max"} {
		assert.True(t, r2.Exists(name))
	}
}

func TestLoadRejectsLineWithoutTrailingNewline(t *testing.T) {
	r := New()
	_, err := r.Load(strings.NewReader("alice:pw\nbob:pw"))
	assert.Error(t, err)
}

func TestStoreOrderIsLexicographic(t *testing.T) {
	r := New()
	for _, u := range []string{"charlie:pw", "alice:pw", "bob:pw"} {
		require.NoError(t, r.Add(mustUser(t, u)))
	}
	var buf strings.Builder
	_, err := r.Store(&buf)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, []string{"alice:pw", "bob:pw", "charlie:pw"}, lines)
}
