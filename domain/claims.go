package domain

import (
	"fmt"
	"strconv"
)

// TokenHeader is the JOSE protected header of an access token.
type TokenHeader struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
	Kid string `json:"kid"`
}

// TokenPayload is the claim set of an access token. Times are unix seconds.
type TokenPayload struct {
	Iss string `json:"iss"`
	Sub string `json:"sub"`
	Aud string `json:"aud"`
	Exp int64  `json:"exp"`
	Nbf int64  `json:"nbf"`
	Iat int64  `json:"iat"`
	Jti string `json:"jti"`
}

// AccessClaims is a verified token: header and payload together.
type AccessClaims struct {
	Header  TokenHeader  `json:"protectedHeader"`
	Payload TokenPayload `json:"payload"`
}

// TokenID decodes the jti claim.
func (c *AccessClaims) TokenID() (TokenID, error) {
	return ParseTokenID(c.Payload.Jti)
}

// UserID decodes the sub claim.
func (c *AccessClaims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Payload.Sub, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: sub %q", ErrTokenMalformed, c.Payload.Sub)
	}
	return uint(id), nil
}
