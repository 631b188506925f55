package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/talkbase/chat-service/config"
	"github.com/talkbase/chat-service/internal/domain/model"
)

func newAuthService(ttl time.Duration) *AuthService {
	cfg := &config.Config{}
	cfg.Auth.Secret = "test-secret"
	cfg.Auth.TokenTTL = ttl
	return NewAuthService(cfg)
}

func TestAuthService_Token_Round_Trip(t *testing.T) {
	req := require.New(t)
	auth := newAuthService(time.Hour)

	token, err := auth.IssueToken(&model.User{ID: 42, Username: "alice"})
	req.NoError(err)
	req.NotEmpty(token)

	userID, err := auth.VerifyToken(token)
	req.NoError(err)
	req.EqualValues(42, userID)
}

func TestAuthService_Rejects_Expired_Token(t *testing.T) {
	req := require.New(t)
	auth := newAuthService(-time.Minute)

	token, err := auth.IssueToken(&model.User{ID: 42, Username: "alice"})
	req.NoError(err)

	_, err = auth.VerifyToken(token)
	req.ErrorIs(err, ErrAuthFailure)
}

func TestAuthService_Rejects_Foreign_Signature(t *testing.T) {
	req := require.New(t)
	auth := newAuthService(time.Hour)

	foreign := newAuthService(time.Hour)
	foreign.secret = []byte("other-secret")
	token, err := foreign.IssueToken(&model.User{ID: 42, Username: "alice"})
	req.NoError(err)

	_, err = auth.VerifyToken(token)
	req.ErrorIs(err, ErrAuthFailure)
}

func TestAuthService_Rejects_Garbage(t *testing.T) {
	req := require.New(t)
	auth := newAuthService(time.Hour)

	_, err := auth.VerifyToken("not-a-token")
	req.ErrorIs(err, ErrAuthFailure)
}

func TestPassword_Hash_And_Compare(t *testing.T) {
	req := require.New(t)

	hash, err := HashPassword("s3cret-Passw0rd!")
	req.NoError(err)
	req.NotEqual("s3cret-Passw0rd!", hash)

	ok, err := ComparePassword("s3cret-Passw0rd!", hash)
	req.NoError(err)
	req.True(ok)

	ok, err = ComparePassword("wrong", hash)
	req.NoError(err)
	req.False(ok)
}

func TestPassword_Hashes_Are_Salted(t *testing.T) {
	req := require.New(t)

	h1, err := HashPassword("same-input")
	req.NoError(err)
	h2, err := HashPassword("same-input")
	req.NoError(err)
	req.NotEqual(h1, h2)
}
