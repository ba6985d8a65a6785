package auth

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/temptedwithouta/eazy-career-backend/domain"
)

const (
	authHeaderPath = "headers.authorization"
	headerPath     = authHeaderPath + ".protectedHeader"
	payloadPath    = authHeaderPath + ".payload"
)

var (
	headerFields  = []string{"alg", "typ", "kid"}
	payloadFields = []string{"iss", "sub", "aud", "exp", "nbf", "iat", "jti"}
)

// accessClaims adapts domain.TokenPayload to jwt.Claims.
type accessClaims struct {
	domain.TokenPayload
}

func numericDate(sec int64) *jwt.NumericDate {
	if sec == 0 {
		return nil
	}
	return jwt.NewNumericDate(time.Unix(sec, 0))
}

func (c *accessClaims) GetExpirationTime() (*jwt.NumericDate, error) { return numericDate(c.Exp), nil }
func (c *accessClaims) GetIssuedAt() (*jwt.NumericDate, error)       { return numericDate(c.Iat), nil }
func (c *accessClaims) GetNotBefore() (*jwt.NumericDate, error)      { return numericDate(c.Nbf), nil }
func (c *accessClaims) GetIssuer() (string, error)                   { return c.Iss, nil }
func (c *accessClaims) GetSubject() (string, error)                  { return c.Sub, nil }
func (c *accessClaims) GetAudience() (jwt.ClaimStrings, error) {
	return jwt.ClaimStrings{c.Aud}, nil
}

// TokenServiceImpl implements domain.TokenService with asymmetric keys
type TokenServiceImpl struct {
	keys     *KeyManager
	jwks     *JWKSStore
	alg      string
	method   jwt.SigningMethod
	issuer   string
	audience string
	now      func() time.Time
}

// NewTokenService creates a token service signing with the manager's key
func NewTokenService(keys *KeyManager, issuer, audience string) (*TokenServiceImpl, error) {
	method := jwt.GetSigningMethod(keys.Alg())
	if method == nil {
		return nil, fmt.Errorf("no signing method for %q", keys.Alg())
	}
	return &TokenServiceImpl{
		keys:     keys,
		jwks:     keys.JWKS(),
		alg:      keys.Alg(),
		method:   method,
		issuer:   issuer,
		audience: audience,
		now:      time.Now,
	}, nil
}

// WithClock overrides the time source. Used by tests.
func (s *TokenServiceImpl) WithClock(now func() time.Time) *TokenServiceImpl {
	s.now = now
	return s
}

// NewAccessPayload builds the claim set for a session-backed token. exp is
// the session expiry; nbf and iat are now.
func NewAccessPayload(issuer, audience string, userID uint, id domain.TokenID, expiredAt, now time.Time) domain.TokenPayload {
	return domain.TokenPayload{
		Iss: issuer,
		Sub: strconv.FormatUint(uint64(userID), 10),
		Aud: audience,
		Exp: expiredAt.Unix(),
		Nbf: now.Unix(),
		Iat: now.Unix(),
		Jti: id.String(),
	}
}

// Issue implements domain.TokenService
func (s *TokenServiceImpl) Issue(ctx context.Context, header domain.TokenHeader, payload domain.TokenPayload) (string, error) {
	if header.Alg != "" && header.Alg != s.alg {
		return "", domain.NewServerError("issue token", fmt.Errorf("header alg %q, configured %q", header.Alg, s.alg))
	}

	pair, err := s.keys.EnsureKeyPair(ctx)
	if err != nil {
		return "", err
	}
	jwk, err := PublicJWK(pair.Public, s.alg)
	if err != nil {
		return "", domain.NewServerError("derive jwk", err)
	}
	if _, err := s.jwks.Ensure(jwk); err != nil {
		return "", err
	}

	token := jwt.NewWithClaims(s.method, &accessClaims{TokenPayload: payload})
	token.Header["typ"] = "JWT"
	token.Header["kid"] = jwk.KeyID

	signed, err := token.SignedString(pair.Private)
	if err != nil {
		return "", domain.NewServerError("sign token", err)
	}
	return signed, nil
}

// IssueAccessToken implements domain.TokenService
func (s *TokenServiceImpl) IssueAccessToken(ctx context.Context, userID uint, id domain.TokenID, expiredAt time.Time) (string, error) {
	payload := NewAccessPayload(s.issuer, s.audience, userID, id, expiredAt, s.now())
	return s.Issue(ctx, domain.TokenHeader{Alg: s.alg, Typ: "JWT"}, payload)
}

// JWKS implements domain.TokenService
func (s *TokenServiceImpl) JWKS(ctx context.Context) (json.RawMessage, error) {
	if _, err := s.keys.EnsureKeyPair(ctx); err != nil {
		return nil, err
	}
	return s.jwks.Document()
}

// Verify implements domain.TokenService. It checks signature, shape,
// algorithm, published kid, issuer, audience and the time window.
func (s *TokenServiceImpl) Verify(ctx context.Context, raw string) (*domain.AccessClaims, error) {
	segments := strings.Split(raw, ".")
	if len(segments) != 3 {
		return nil, domain.Unauthorized(authHeaderPath, "Not valid", domain.ErrTokenMalformed)
	}

	rawHeader, err := decodeSegment(segments[0])
	if err != nil {
		return nil, domain.Unauthorized(headerPath, "Not valid", domain.ErrTokenMalformed)
	}
	var pre struct {
		Alg string `json:"alg"`
	}
	if err := json.Unmarshal(rawHeader, &pre); err != nil || pre.Alg != s.alg {
		return nil, domain.Unauthorized(headerPath+".alg", "Not valid", domain.ErrTokenInvalid)
	}

	pair, err := s.keys.EnsureKeyPair(ctx)
	if err != nil {
		return nil, err
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{s.alg}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	var lookupErr error
	_, err = parser.ParseWithClaims(raw, &accessClaims{}, func(t *jwt.Token) (interface{}, error) {
		if kid, ok := t.Header["kid"].(string); ok && kid != "" {
			jwk, found, err := s.jwks.Lookup(kid)
			if err != nil {
				lookupErr = err
				return nil, err
			}
			if found {
				return jwk.Key, nil
			}
		}
		return pair.Public, nil
	})
	if lookupErr != nil {
		return nil, lookupErr
	}
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.Unauthorized(payloadPath+".exp", "Expired", domain.ErrTokenExpired)
		}
		return nil, domain.Unauthorized(authHeaderPath, "Not valid", fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err))
	}

	claims, err := decodeStrict(rawHeader, segments[1])
	if err != nil {
		return nil, err
	}

	if claims.Header.Alg != s.alg {
		return nil, domain.Unauthorized(headerPath+".alg", "Not valid", domain.ErrTokenInvalid)
	}
	if claims.Header.Typ != "JWT" {
		return nil, domain.Unauthorized(headerPath+".typ", "Not valid", domain.ErrTokenInvalid)
	}

	if _, found, err := s.jwks.Lookup(claims.Header.Kid); err != nil {
		return nil, err
	} else if !found {
		return nil, domain.Unauthorized(headerPath+".kid", "Not valid", domain.ErrTokenInvalid)
	}

	if claims.Payload.Iss != s.issuer {
		return nil, domain.Unauthorized(payloadPath+".iss", "Not valid", domain.ErrTokenInvalid)
	}
	if claims.Payload.Aud != s.audience {
		return nil, domain.Unauthorized(payloadPath+".aud", "Not valid", domain.ErrTokenInvalid)
	}

	nowMillis := s.now().UnixMilli()
	if claims.Payload.Exp*1000 < nowMillis {
		return nil, domain.Unauthorized(payloadPath+".exp", "Expired", domain.ErrTokenExpired)
	}
	if claims.Payload.Nbf*1000 > nowMillis {
		return nil, domain.Unauthorized(payloadPath+".nbf", "Not valid", domain.ErrTokenInvalid)
	}

	return claims, nil
}

func decodeSegment(seg string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(seg)
}

// decodeStrict requires the header and payload to carry exactly the known
// members, each non-empty and of the expected JSON type.
func decodeStrict(rawHeader []byte, payloadSeg string) (*domain.AccessClaims, error) {
	rawPayload, err := decodeSegment(payloadSeg)
	if err != nil {
		return nil, domain.Unauthorized(payloadPath, "Not valid", domain.ErrTokenMalformed)
	}

	if path, ok := exactMembers(rawHeader, headerFields, headerPath); !ok {
		return nil, domain.Unauthorized(path, "Not valid", domain.ErrTokenMalformed)
	}
	if path, ok := exactMembers(rawPayload, payloadFields, payloadPath); !ok {
		return nil, domain.Unauthorized(path, "Not valid", domain.ErrTokenMalformed)
	}

	claims := &domain.AccessClaims{}
	if err := strictUnmarshal(rawHeader, &claims.Header); err != nil {
		return nil, domain.Unauthorized(headerPath, "Not valid", domain.ErrTokenMalformed)
	}
	if err := strictUnmarshal(rawPayload, &claims.Payload); err != nil {
		return nil, domain.Unauthorized(payloadPath, "Not valid", domain.ErrTokenMalformed)
	}

	h, p := claims.Header, claims.Payload
	checks := []struct {
		path  string
		empty bool
	}{
		{headerPath + ".alg", h.Alg == ""},
		{headerPath + ".typ", h.Typ == ""},
		{headerPath + ".kid", h.Kid == ""},
		{payloadPath + ".iss", p.Iss == ""},
		{payloadPath + ".sub", p.Sub == ""},
		{payloadPath + ".aud", p.Aud == ""},
		{payloadPath + ".exp", p.Exp <= 0},
		{payloadPath + ".nbf", p.Nbf <= 0},
		{payloadPath + ".iat", p.Iat <= 0},
		{payloadPath + ".jti", p.Jti == ""},
	}
	for _, c := range checks {
		if c.empty {
			return nil, domain.Unauthorized(c.path, "Not valid", domain.ErrTokenMalformed)
		}
	}
	return claims, nil
}

// exactMembers reports the first offending member path when raw does not
// hold exactly the names in want.
func exactMembers(raw []byte, want []string, prefix string) (string, bool) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(raw, &members); err != nil {
		return prefix, false
	}
	for _, name := range want {
		if _, ok := members[name]; !ok {
			return prefix + "." + name, false
		}
	}
	if len(members) != len(want) {
		return prefix, false
	}
	return "", true
}

func strictUnmarshal(raw []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
