package session

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"ADMIN", RoleAdmin},
		{"admin", RoleAdmin},
		{" Hr ", RoleHR},
		{"DRIVER", RoleDriver},
		{"MANAGER", RoleUnknown},
		{"UNKNOWN", RoleUnknown},
		{"", RoleUnknown},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseRole(tc.in))
		})
	}
}

func TestRole_UnmarshalJSON(t *testing.T) {
	var p UserProfile
	require.NoError(t, json.Unmarshal([]byte(`{"email":"a@b.c","role":"driver"}`), &p))
	assert.Equal(t, RoleDriver, p.Role)

	require.NoError(t, json.Unmarshal([]byte(`{"email":"a@b.c","role":"superuser"}`), &p))
	assert.Equal(t, RoleUnknown, p.Role)
}

func TestDeriveUsername(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"alice@corp.com", "alice"},
		{"a@b@c", "a"},
		{"no-at-sign", "no-at-sign"},
		{"@corp.com", ""},
		{"", ""},
	}

	for _, tc := range tests {
		t.Run(tc.email, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveUsername(tc.email))
		})
	}
}

func TestInspectToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "ann@corp.com",
		"role": "ADMIN",
		"exp":  exp.Unix(),
	}).SignedString([]byte("any-key"))
	require.NoError(t, err)

	info, ok := InspectToken(signed)
	require.True(t, ok)
	assert.Equal(t, "ann@corp.com", info.Subject)
	assert.Equal(t, "ADMIN", info.Role)
	assert.True(t, info.ExpiresAt.Equal(exp))
	assert.False(t, info.Expired(time.Now()))
	assert.True(t, info.Expired(exp.Add(time.Second)))
}

func TestInspectToken_Opaque(t *testing.T) {
	_, ok := InspectToken("not-a-jwt")
	assert.False(t, ok)

	_, ok = InspectToken("")
	assert.False(t, ok)
}
