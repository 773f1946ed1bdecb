package authsdk

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid session")
	ErrExpiredToken = errors.New("session expired")
	ErrNoToken      = errors.New("no session provided")
	ErrWeakSecret   = errors.New("session secret must be at least 32 bytes")
)

const (
	// MaxBlobSize bounds the cookie value accepted by Decode.
	MaxBlobSize = 4096
	// DefaultTTL is the session lifetime.
	DefaultTTL = 7 * 24 * time.Hour
	// MinSecretLength is the minimum HMAC key size.
	MinSecretLength = 32
)

// Identity is what a session asserts about its holder.
type Identity struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Claims session JWT claims
type Claims struct {
	UserID uint   `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Codec encodes and decodes signed session blobs.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type CodecOption func(*Codec)

func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) {
		c.now = now
	}
}

func WithTTL(ttl time.Duration) CodecOption {
	return func(c *Codec) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func NewCodec(secret string, opts ...CodecOption) (*Codec, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	c := &Codec{
		secret: []byte(secret),
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TTL is the lifetime given to newly encoded sessions.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Encode signs id into a blob that expires after the codec TTL.
func (c *Codec) Encode(id Identity) (string, time.Time, error) {
	now := c.now()
	expiresAt := now.Add(c.ttl)
	claims := Claims{
		UserID: id.ID,
		Email:  id.Email,
		Name:   id.Name,
		Role:   id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	blob, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return blob, expiresAt, nil
}

// Decode verifies blob and returns the identity it carries.
// Expired sessions yield ErrExpiredToken, anything else unusable ErrInvalidToken.
func (c *Codec) Decode(blob string) (*Identity, error) {
	if blob == "" {
		return nil, ErrNoToken
	}
	if len(blob) > MaxBlobSize || strings.Count(blob, ".") != 2 {
		return nil, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(blob, &Claims{}, func(token *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == 0 || claims.Email == "" {
		return nil, ErrInvalidToken
	}

	return &Identity{
		ID:    claims.UserID,
		Email: claims.Email,
		Name:  claims.Name,
		Role:  claims.Role,
	}, nil
}
