package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTokenID(t *testing.T) {
	tests := []struct {
		name    string
		jti     string
		want    TokenID
		wantErr bool
	}{
		{name: "otp stage", jti: "otp-42", want: TokenID{Kind: TokenKindOTP, SessionID: 42}},
		{name: "auth stage", jti: "auth-7", want: TokenID{Kind: TokenKindAuth, SessionID: 7}},
		{name: "empty", jti: "", wantErr: true},
		{name: "no separator", jti: "auth7", wantErr: true},
		{name: "unknown kind", jti: "refresh-7", wantErr: true},
		{name: "uppercase kind", jti: "AUTH-7", wantErr: true},
		{name: "missing id", jti: "otp-", wantErr: true},
		{name: "non numeric id", jti: "otp-abc", wantErr: true},
		{name: "signed id", jti: "otp-+5", wantErr: true},
		{name: "negative id", jti: "otp--5", wantErr: true},
		{name: "trailing garbage", jti: "auth-5x", wantErr: true},
		{name: "zero id", jti: "auth-0", wantErr: true},
		{name: "overflow", jti: "auth-99999999999999999999999", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTokenID(tt.jti)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrTokenIDInvalid))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenID_StringRoundTrip(t *testing.T) {
	for _, id := range []TokenID{
		{Kind: TokenKindOTP, SessionID: 1},
		{Kind: TokenKindAuth, SessionID: 123456},
	} {
		parsed, err := ParseTokenID(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
	}
}

func TestAccessClaims_UserID(t *testing.T) {
	c := &AccessClaims{Payload: TokenPayload{Sub: "15", Jti: "auth-3"}}
	id, err := c.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(15), id)

	tid, err := c.TokenID()
	require.NoError(t, err)
	assert.Equal(t, TokenKindAuth, tid.Kind)

	for _, sub := range []string{"", "0", "abc", "-1"} {
		_, err := (&AccessClaims{Payload: TokenPayload{Sub: sub}}).UserID()
		assert.ErrorIs(t, err, ErrTokenMalformed, sub)
	}
}
