package auth

import (
	"errors"
	"fmt"
	"time"

	"storefront/internal/config"
	"storefront/internal/rbac"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload: exactly id and role plus expiry metadata.
type Claims struct {
	ID   string    `json:"id"`
	Role rbac.Role `json:"role"`
	jwt.RegisteredClaims
}

// Outcome classifies one attempt to read an identity from a carrier.
type Outcome string

const (
	OutcomeAbsent       Outcome = "absent"
	OutcomeInvalid      Outcome = "invalid"
	OutcomeExpired      Outcome = "expired"
	OutcomeRoleMismatch Outcome = "role_mismatch"
	OutcomeVerified     Outcome = "verified"
)

// Codec signs and verifies tokens for one scheme.
type Codec struct {
	scheme Scheme
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewCodec(scheme Scheme, secret string, ttl time.Duration) *Codec {
	return &Codec{
		scheme: scheme,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock replaces the time source used for issuing and validating.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	return c
}

func (c *Codec) Scheme() Scheme { return c.scheme }

func (c *Codec) TTL() time.Duration { return c.ttl }

// Sign issues a token for id carrying role. The role must belong to the
// codec's scheme.
func (c *Codec) Sign(id string, role rbac.Role) (string, error) {
	if id == "" {
		return "", errors.New(msgMissingSubject)
	}
	if !c.scheme.Admits(role) {
		return "", fmt.Errorf(msgRoleNotIssuable, role, c.scheme)
	}

	now := c.now()
	claims := Claims{
		ID:   id,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify checks signature, algorithm and expiry. Expired tokens are reported
// separately from other failures; callers treat both as no identity.
func (c *Codec) Verify(tokenString string) (*Claims, Outcome) {
	if tokenString == "" {
		return nil, OutcomeAbsent
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf(msgUnexpectedSigningMethod, token.Header["alg"])
		}
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, OutcomeExpired
		}
		return nil, OutcomeInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ID == "" || claims.Role == "" {
		return nil, OutcomeInvalid
	}

	return claims, OutcomeVerified
}

// Codecs holds one codec per scheme.
type Codecs struct {
	byScheme map[Scheme]*Codec
}

func NewCodecs(cfg config.AuthConfig) *Codecs {
	return &Codecs{byScheme: map[Scheme]*Codec{
		SchemeAdmin:   NewCodec(SchemeAdmin, cfg.AdminSecret, cfg.AdminTokenTTL),
		SchemeManager: NewCodec(SchemeManager, cfg.ManagerSecret, cfg.ManagerTokenTTL),
		SchemeUser:    NewCodec(SchemeUser, cfg.UserSecret, cfg.UserTokenTTL),
	}}
}

func (k *Codecs) For(s Scheme) (*Codec, error) {
	c, ok := k.byScheme[s]
	if !ok {
		return nil, fmt.Errorf(msgUnknownScheme, s)
	}
	return c, nil
}

// SignFor issues a token with the codec of the scheme that owns p's role.
func (k *Codecs) SignFor(p rbac.Principal) (string, *Codec, error) {
	s, ok := SchemeFor(p.Role)
	if !ok {
		return "", nil, fmt.Errorf(msgRoleNotIssuable, p.Role, "any")
	}
	c, err := k.For(s)
	if err != nil {
		return "", nil, err
	}
	token, err := c.Sign(p.ID, p.Role)
	return token, c, err
}
