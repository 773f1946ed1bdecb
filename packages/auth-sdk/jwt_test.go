package authsdk

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNewCodec_WeakSecret(t *testing.T) {
	_, err := NewCodec("short")
	assert.ErrorIs(t, err, ErrWeakSecret)
}

func TestCodec_RoundTrip(t *testing.T) {
	now := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)
	codec, err := NewCodec(testSecret, WithClock(fixedClock(now)))
	require.NoError(t, err)

	id := Identity{ID: 42, Email: "ada@example.com", Name: "Ada", Role: "admin"}
	blob, expiresAt, err := codec.Encode(id)
	require.NoError(t, err)
	assert.Equal(t, now.Add(DefaultTTL), expiresAt)

	got, err := codec.Decode(blob)
	require.NoError(t, err)
	assert.Equal(t, id, *got)
}

func TestCodec_Decode(t *testing.T) {
	now := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)
	codec, err := NewCodec(testSecret, WithClock(fixedClock(now)))
	require.NoError(t, err)

	valid, _, err := codec.Encode(Identity{ID: 1, Email: "a@b.co", Role: "user"})
	require.NoError(t, err)

	other, err := NewCodec(strings.Repeat("z", 32), WithClock(fixedClock(now)))
	require.NoError(t, err)
	foreign, _, err := other.Encode(Identity{ID: 1, Email: "a@b.co", Role: "admin"})
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID:           1,
		Email:            "a@b.co",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: 1, Email: "a@b.co"}).
		SignedString([]byte(testSecret))
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	tests := []struct {
		name    string
		blob    string
		wantErr error
	}{
		{name: "empty", blob: "", wantErr: ErrNoToken},
		{name: "garbage", blob: "not-a-session", wantErr: ErrInvalidToken},
		{name: "oversized", blob: strings.Repeat("a.", MaxBlobSize), wantErr: ErrInvalidToken},
		{name: "signed with other secret", blob: foreign, wantErr: ErrInvalidToken},
		{name: "alg none", blob: none, wantErr: ErrInvalidToken},
		{name: "missing exp", blob: noExp, wantErr: ErrInvalidToken},
		{name: "tampered payload", blob: tampered, wantErr: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := codec.Decode(tt.blob)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCodec_Expired(t *testing.T) {
	issued := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)
	clock := issued
	codec, err := NewCodec(testSecret, WithTTL(time.Hour), WithClock(func() time.Time { return clock }))
	require.NoError(t, err)

	blob, expiresAt, err := codec.Encode(Identity{ID: 7, Email: "a@b.co", Role: "user"})
	require.NoError(t, err)

	clock = expiresAt.Add(-time.Second)
	_, err = codec.Decode(blob)
	assert.NoError(t, err)

	clock = expiresAt.Add(time.Second)
	_, err = codec.Decode(blob)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestIdentityContext(t *testing.T) {
	_, ok := IdentityFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), Identity{ID: 3, Email: "c@d.co"})
	id, ok := IdentityFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, uint(3), id.ID)
}
