package tokens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/scholarfolio/backend/pkg/middleware"
)

// Issuer is stamped into admin tokens and required on verification.
const Issuer = "scholarfolio"

// GenerateAccessToken creates an HS256-signed admin token for sub.
func GenerateAccessToken(secret, sub string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is empty")
	}
	if sub == "" {
		return "", errors.New("subject is empty")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": sub,
		"iss": Issuer,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(secret))
}

type mapToken struct {
	claims jwt.MapClaims
}

func (t *mapToken) Claims(v interface{}) error {
	b, err := json.Marshal(t.claims)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// HMACVerifier verifies tokens produced by GenerateAccessToken.
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

func (v *HMACVerifier) parse(raw string) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(Issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type %T", parsed.Claims)
	}
	return claims, nil
}

func (v *HMACVerifier) Verify(_ context.Context, raw string) (middleware.Token, error) {
	claims, err := v.parse(raw)
	if err != nil {
		return nil, err
	}
	return &mapToken{claims: claims}, nil
}

// ExpiresIn returns how long a valid token has left. Used to size the
// revocation entry.
func (v *HMACVerifier) ExpiresIn(raw string) (time.Duration, error) {
	claims, err := v.parse(raw)
	if err != nil {
		return 0, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return 0, errors.New("token has no expiry")
	}
	return time.Until(exp.Time), nil
}
