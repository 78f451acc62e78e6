package state

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTTL bounds the authorization round trip
const DefaultTTL = 10 * time.Minute

const stateTokenType = "mailbox_link"

// Claim is the verified content of a state token
type Claim struct {
	UserID    string
	ID        string // jti, unique per issued token
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type stateClaims struct {
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

// Codec signs and verifies OAuth state tokens with HS256
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option configures a Codec
type Option func(*Codec)

// WithTTL overrides the token lifetime
func WithTTL(ttl time.Duration) Option {
	return func(c *Codec) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock sets the time source used to issue and verify tokens
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCodec creates a codec signing with secret
func NewCodec(secret string, opts ...Option) *Codec {
	c := &Codec{
		secret: []byte(secret),
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the lifetime of issued tokens
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue creates a signed state token bound to userID
func (c *Codec) Issue(userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("%w: empty user id", ErrInvalidClaim)
	}

	now := c.now()
	claims := stateClaims{
		Type: stateTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStateGeneration, err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and expiry and returns the embedded claim
func (c *Codec) Verify(tokenString string) (*Claim, error) {
	claims := &stateClaims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredClaim
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidClaim, err)
	}
	if !token.Valid {
		return nil, ErrInvalidClaim
	}

	if claims.Type != stateTokenType || claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidClaim
	}

	expiresAt := claims.ExpiresAt.Time
	// Expired at the boundary instant as well
	if !c.now().Before(expiresAt) {
		return nil, ErrExpiredClaim
	}

	var issuedAt time.Time
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time
	}

	return &Claim{
		UserID:    claims.Subject,
		ID:        claims.ID,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}
