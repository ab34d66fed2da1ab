package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		name     string
		password string
		ok       bool
	}{
		{"valid", "helpdesk1", true},
		{"too short", "abc1", false},
		{"letters only", "justletters", false},
		{"digits only", "12345678", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePassword(tc.password)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestHashPasswordClampsCostAndRoundTrips(t *testing.T) {
	// cost 0 is below bcrypt's minimum and must fall back to the default
	hash, err := HashPassword("helpdesk1", 0)
	require.NoError(t, err)

	assert.NoError(t, ComparePassword(hash, "helpdesk1"))
	assert.Error(t, ComparePassword(hash, "wrong-password"))
}
