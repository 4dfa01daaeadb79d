package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
)

// Claims holds the verified token payload issued by the identity provider.
// PreferredUsername identifies the user; Administrator drives role sync.
type Claims struct {
	PreferredUsername string `json:"preferred_username"`
	Administrator     bool   `json:"administrator"`
	jwt.RegisteredClaims
}

// Validator verifies tokens from the identity provider. A configurable
// leeway (clock skew tolerance) is applied symmetrically when checking the
// "exp" and "iat" claims; tokens missing either claim are always rejected.
type Validator struct {
	secret   []byte
	issuer   string
	audience string
	leeway   time.Duration
}

// NewValidator creates a token validator. Leeway is given in seconds.
func NewValidator(secret, issuer, audience string, leewaySeconds int) *Validator {
	return &Validator{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		leeway:   time.Duration(leewaySeconds) * time.Second,
	}
}

// Validate parses and verifies a token, returning its claims.
func (v *Validator) Validate(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	// WithIssuedAt only bounds iat when the claim is present; a token
	// without it must still be rejected, same as one without exp.
	if claims.IssuedAt == nil {
		return nil, fmt.Errorf("%w: missing iat claim", ErrInvalidToken)
	}
	return claims, nil
}
