package registry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUser(t *testing.T) {
	u, err := ParseUser("alice:pw")
	require.NoError(t, err)
	assert.Equal(t, User{Name: "alice", Password: "pw"}, u)
	assert.Equal(t, "alice:pw", u.String())
}

func TestParseUserRejectsMalformed(t *testing.T) {
	cases := []string{"", "noseparator", "alice:", ":pw", strings.Repeat("a", 21) + ":pw", "alice:" + strings.Repeat("p", 9)}
	for _, c := range cases {
		_, err := ParseUser(c)
		assert.ErrorIs(t, err, ErrMalformedUser, "input %q", c)
	}
}
