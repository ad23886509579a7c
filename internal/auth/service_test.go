package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sharath018/invitation-rsvp-backend/config"
	"github.com/sharath018/invitation-rsvp-backend/internal/auditlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUsers struct {
	mu    sync.Mutex
	users map[uint]*User
}

func newMemUsers() *memUsers { return &memUsers{users: map[uint]*User{}} }

func (m *memUsers) Create(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return ErrEmailTaken
		}
	}
	u.ID = uint(len(m.users) + 1)
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *memUsers) FindByID(_ context.Context, id uint) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) Update(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

type memTokens map[string]string

func (m memTokens) SetToken(_ context.Context, k, v string, _ time.Duration) error {
	m[k] = v
	return nil
}

func (m memTokens) GetToken(_ context.Context, k string) (string, error) {
	v, ok := m[k]
	if !ok {
		return "", errors.New("missing")
	}
	return v, nil
}

func (m memTokens) DeleteToken(_ context.Context, k string) error {
	delete(m, k)
	return nil
}

type captureMailer struct{ links []string }

func (c *captureMailer) SendResetLink(_ context.Context, _, link string) error {
	c.links = append(c.links, link)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWTAccessSecret:    "access-secret",
		JWTRefreshSecret:   "refresh-secret",
		JWTAccessTTLHours:  1,
		JWTRefreshTTLHours: 24,
		PhoneRegion:        "US",
		FrontendURL:        "http://app.local",
	}
}

func newTestService() (Service, *memUsers, *captureMailer) {
	users := newMemUsers()
	mailer := &captureMailer{}
	svc := NewService(users, memTokens{}, mailer, auditlog.Nop{}, testConfig(), nil)
	return svc, users, mailer
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		FullName: "Maya Lopez",
		Email:    "Maya@Example.com",
		Password: "correct-horse",
		Phone:    "(650) 253-0000",
	}, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "maya@example.com", user.Email)
	assert.Equal(t, "+16502530000", user.Phone)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)

	tokens, logged, err := svc.Login(ctx, LoginInput{Email: "maya@example.com", Password: "correct-horse"}, "")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	uid, err := svc.ParseAccessToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, uid)

	// a refresh token is not an access token
	_, err = svc.ParseAccessToken(tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	access, err := svc.Refresh(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	uid, err = svc.ParseAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, user.ID, uid)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{FullName: "A", Email: "a@x.io", Password: "short"}, "")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = svc.Register(ctx, RegisterInput{FullName: "A", Email: "a@x.io", Password: "long-enough", Phone: "12345"}, "")
	assert.ErrorIs(t, err, ErrInvalidPhone)

	_, err = svc.Register(ctx, RegisterInput{FullName: "A", Email: "a@x.io", Password: "long-enough"}, "")
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{FullName: "B", Email: "A@x.io", Password: "long-enough"}, "")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{FullName: "A", Email: "a@x.io", Password: "long-enough"}, "")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, LoginInput{Email: "a@x.io", Password: "nope-nope"}, "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, LoginInput{Email: "ghost@x.io", Password: "nope-nope"}, "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestPasswordResetFlow(t *testing.T) {
	svc, _, mailer := newTestService()
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{FullName: "A", Email: "a@x.io", Password: "first-password"}, "")
	require.NoError(t, err)

	require.NoError(t, svc.RequestPasswordReset(ctx, "a@x.io"))
	require.Len(t, mailer.links, 1)
	token := mailer.links[0][strings.Index(mailer.links[0], "token=")+len("token="):]

	require.NoError(t, svc.ResetPassword(ctx, token, "second-password", ""))

	_, _, err = svc.Login(ctx, LoginInput{Email: "a@x.io", Password: "second-password"}, "")
	require.NoError(t, err)

	// tokens are single use
	assert.ErrorIs(t, svc.ResetPassword(ctx, token, "third-password", ""), ErrInvalidToken)
}
