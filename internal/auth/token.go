package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is the single error surfaced for every verification
// failure: bad signature, malformed structure, expired timestamp, unknown
// role.  Callers cannot (and must not) distinguish the sub-causes; the cause
// is still recorded on the wrapping error so splitting the kinds later is a
// non-breaking change.
var ErrInvalidToken = errors.New("invalid token")

// invalidToken tags a verification failure with its cause while unwrapping to
// ErrInvalidToken.
type invalidToken struct {
	cause string
	err   error
}

func (e *invalidToken) Error() string {
	if e.err != nil {
		return fmt.Sprintf("invalid token (%s): %v", e.cause, e.err)
	}
	return fmt.Sprintf("invalid token (%s)", e.cause)
}

func (e *invalidToken) Unwrap() error { return ErrInvalidToken }

// Claims are the JWT claims carried by a bearer token: the registered subject
// and timestamps plus a single role claim.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Token is a signed bearer token along with its expiry, returned to clients
// after registration or login.
type Token struct {
	Value string
	Exp   time.Time
}

// Codec issues and verifies HS256-signed bearer tokens.  It holds the signing
// secret and the expiry window; both come from configuration.  Issue never
// touches storage: the caller is responsible for having authenticated the
// credential first.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec builds a Codec from the signing secret and token lifetime.
func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for the given username and role.  The token carries
// sub, role, iat and exp.
func (c *Codec) Issue(username string, role Role) (Token, error) {
	now := time.Now().UTC()
	exp := now.Add(c.ttl)
	claims := Claims{
		Role: role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(c.secret)
	if err != nil {
		return Token{}, err
	}
	return Token{Value: signed, Exp: exp}, nil
}

// Verify parses and validates a token string and returns the principal it
// identifies.  Every failure mode collapses to ErrInvalidToken.
func (c *Codec) Verify(raw string) (Principal, error) {
	if raw == "" {
		return Principal{}, &invalidToken{cause: "empty"}
	}
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything but HMAC; an attacker must not
		// be able to downgrade the verification algorithm.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Principal{}, &invalidToken{cause: "expired", err: err}
		}
		return Principal{}, &invalidToken{cause: "parse", err: err}
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Principal{}, &invalidToken{cause: "claims"}
	}
	if claims.Subject == "" {
		return Principal{}, &invalidToken{cause: "subject missing"}
	}
	role, ok := ParseRole(claims.Role)
	if !ok {
		return Principal{}, &invalidToken{cause: "unknown role"}
	}
	return Principal{Username: claims.Subject, Role: role}, nil
}
