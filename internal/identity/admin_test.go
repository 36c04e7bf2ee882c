package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockAdminAuth is a mock type for adminAuth
type MockAdminAuth struct {
	mock.Mock
}

func (m *MockAdminAuth) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	args := m.Called(ctx, idToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Token), args.Error(1)
}

func (m *MockAdminAuth) GetUser(ctx context.Context, uid string) (*auth.UserRecord, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.UserRecord), args.Error(1)
}

func (m *MockAdminAuth) UpdateUser(ctx context.Context, uid string, user *auth.UserToUpdate) (*auth.UserRecord, error) {
	args := m.Called(ctx, uid, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.UserRecord), args.Error(1)
}

func (m *MockAdminAuth) RevokeRefreshTokens(ctx context.Context, uid string) error {
	return m.Called(ctx, uid).Error(0)
}

func annRecord() *auth.UserRecord {
	return &auth.UserRecord{
		UserInfo: &auth.UserInfo{UID: "u1", Email: "ann@example.com", DisplayName: "Ann", PhotoURL: "https://img/ann.png"},
		UserMetadata: &auth.UserMetadata{
			CreationTimestamp:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC).UnixMilli(),
			LastLogInTimestamp: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC).UnixMilli(),
		},
	}
}

func TestAdmin_VerifyIDTokenLoadsRecord(t *testing.T) {
	client := new(MockAdminAuth)
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	client.On("VerifyIDToken", mock.Anything, "tok").Return(&auth.Token{UID: "u1", Expires: exp.Unix()}, nil)
	client.On("GetUser", mock.Anything, "u1").Return(annRecord(), nil)

	verified, err := newAdmin(client, zap.NewNop()).VerifyIDToken(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", verified.Session.Email)
	assert.Equal(t, "Ann", verified.Session.DisplayName)
	assert.Equal(t, "tok", verified.Session.IDToken)
	assert.Equal(t, "Tue, 02 Jan 2024 03:04:05 GMT", verified.Session.Metadata.CreationTime)
	assert.True(t, verified.ExpiresAt.Equal(exp))
	assert.True(t, verified.Session.TokenExpiresAt.Equal(exp))
}

func TestAdmin_VerifyIDTokenFallsBackToClaims(t *testing.T) {
	client := new(MockAdminAuth)
	client.On("VerifyIDToken", mock.Anything, "tok").Return(&auth.Token{
		UID:    "u2",
		Claims: map[string]interface{}{"email": "bob@example.com", "name": "Bob"},
	}, nil)
	client.On("GetUser", mock.Anything, "u2").Return(nil, errors.New("unavailable"))

	verified, err := newAdmin(client, zap.NewNop()).VerifyIDToken(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", verified.Session.Email)
	assert.Equal(t, "Bob", verified.Session.DisplayName)
}

func TestAdmin_VerifyIDTokenRejects(t *testing.T) {
	client := new(MockAdminAuth)
	client.On("VerifyIDToken", mock.Anything, "bad").Return(nil, errors.New("signature invalid"))
	admin := newAdmin(client, zap.NewNop())

	_, err := admin.VerifyIDToken(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = admin.VerifyIDToken(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidToken)
	client.AssertNumberOfCalls(t, "VerifyIDToken", 1)
}

func TestAdmin_UpdateProfile(t *testing.T) {
	client := new(MockAdminAuth)
	client.On("UpdateUser", mock.Anything, "u1", mock.AnythingOfType("*auth.UserToUpdate")).Return(annRecord(), nil)

	session, err := newAdmin(client, zap.NewNop()).UpdateProfile(context.Background(), "u1", "Ann", "")
	require.NoError(t, err)
	assert.Equal(t, "Ann", session.DisplayName)
	client.AssertExpectations(t)
}
