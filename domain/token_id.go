package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// TokenKind is the stage a token was minted for.
type TokenKind string

const (
	TokenKindOTP  TokenKind = "otp"
	TokenKindAuth TokenKind = "auth"
)

// TokenID is the decoded jti claim: which stage a token belongs to and
// which session row backs it.
type TokenID struct {
	Kind      TokenKind
	SessionID uint
}

// String encodes the id as "<kind>-<sessionId>".
func (t TokenID) String() string {
	return fmt.Sprintf("%s-%d", t.Kind, t.SessionID)
}

// ParseTokenID decodes a jti. Anything other than "otp-<n>" or "auth-<n>"
// with n a positive decimal integer is rejected.
func ParseTokenID(jti string) (TokenID, error) {
	prefix, rawID, ok := strings.Cut(jti, "-")
	if !ok {
		return TokenID{}, fmt.Errorf("%w: missing separator", ErrTokenIDInvalid)
	}

	var kind TokenKind
	switch TokenKind(prefix) {
	case TokenKindOTP:
		kind = TokenKindOTP
	case TokenKindAuth:
		kind = TokenKindAuth
	default:
		return TokenID{}, fmt.Errorf("%w: unknown kind %q", ErrTokenIDInvalid, prefix)
	}

	if rawID == "" || rawID[0] < '0' || rawID[0] > '9' {
		return TokenID{}, fmt.Errorf("%w: session id not numeric", ErrTokenIDInvalid)
	}
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil || id == 0 {
		return TokenID{}, fmt.Errorf("%w: session id not valid", ErrTokenIDInvalid)
	}

	return TokenID{Kind: kind, SessionID: uint(id)}, nil
}
