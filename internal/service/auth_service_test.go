package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"achivo/internal/domain/apperror"
	"achivo/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memorySessions struct {
	mu       sync.Mutex
	sessions map[string]*entity.Session
}

func newMemorySessions() *memorySessions {
	return &memorySessions{sessions: make(map[string]*entity.Session)}
}

func (m *memorySessions) Create(ctx context.Context, s *entity.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *s
	m.sessions[s.ID.String()] = &copied
	return nil
}

func (m *memorySessions) GetByID(ctx context.Context, id string) (*entity.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (m *memorySessions) Update(ctx context.Context, s *entity.Session) error {
	return m.Create(ctx, s)
}

func (m *memorySessions) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memorySessions) DeleteAllByUserID(ctx context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, id)
		}
	}
	return nil
}

type memoryStates struct {
	mu        sync.Mutex
	verifiers map[string]string
	next      int
}

func (m *memoryStates) GenerateState() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	return "state-" + string(rune('0'+m.next)), nil
}

func (m *memoryStates) StoreVerifier(ctx context.Context, state, verifier string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.verifiers == nil {
		m.verifiers = make(map[string]string)
	}
	m.verifiers[state] = verifier
	return nil
}

func (m *memoryStates) ConsumeVerifier(ctx context.Context, state string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.verifiers[state]
	if !ok {
		return "", apperror.ErrNotFound
	}
	delete(m.verifiers, state)
	return v, nil
}

type fakeAuthServer struct {
	mu          sync.Mutex
	tokens      *entity.AuthTokens
	exchangeErr error
	refreshErr  error
	refreshes   int
	logouts     []string
	lastCode    string
	lastVerify  string
}

func (f *fakeAuthServer) AuthorizeURL(provider, redirectTo, challenge string) string {
	q := url.Values{}
	q.Set("provider", provider)
	q.Set("redirect_to", redirectTo)
	q.Set("code_challenge", challenge)
	return "https://auth.example.com/authorize?" + q.Encode()
}

func (f *fakeAuthServer) ExchangeCode(ctx context.Context, code, verifier string) (*entity.AuthTokens, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCode, f.lastVerify = code, verifier
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return f.tokens, nil
}

func (f *fakeAuthServer) Refresh(ctx context.Context, refreshToken string) (*entity.AuthTokens, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return &entity.AuthTokens{AccessToken: "access-2", RefreshToken: "refresh-2"}, nil
}

func (f *fakeAuthServer) Logout(ctx context.Context, accessToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts = append(f.logouts, accessToken)
	return nil
}

type authFixture struct {
	svc      *authService
	server   *fakeAuthServer
	sessions *memorySessions
	states   *memoryStates
	store    *memoryStore
	user     *entity.AuthUser
}

func newAuthFixture() *authFixture {
	user := &entity.AuthUser{ID: uuid.New(), Email: "ann@example.com"}
	f := &authFixture{
		server: &fakeAuthServer{tokens: &entity.AuthTokens{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			User:         user,
		}},
		sessions: newMemorySessions(),
		states:   &memoryStates{},
		store:    newMemoryStore(),
		user:     user,
	}
	f.svc = NewAuthService(f.server, f.sessions, f.states, &memoryScoper{store: f.store}, AuthConfig{
		SiteURL:    "https://app.example.com/",
		SessionTTL: time.Hour,
		StateTTL:   time.Minute,
	}, zap.NewNop()).(*authService)
	return f
}

func TestAuthService_LoginFlow(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	redirect, err := f.svc.BeginLogin(ctx, "google")
	require.NoError(t, err)

	u, err := url.Parse(redirect.URL)
	require.NoError(t, err)
	assert.Equal(t, "https://app.example.com/api/auth/callback?state="+redirect.State, u.Query().Get("redirect_to"))
	assert.NotEmpty(t, u.Query().Get("code_challenge"))

	session, err := f.svc.CompleteLogin(ctx, "code-1", redirect.State)
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, session.UserID)
	assert.Equal(t, "code-1", f.server.lastCode)
	assert.NotEmpty(t, f.server.lastVerify)

	profile, ok := f.store.profiles[f.user.ID]
	require.True(t, ok)
	assert.Equal(t, "ann", profile.Name)
	assert.True(t, profile.IsActive)

	principal, err := f.svc.ResolveSession(ctx, session.ID.String())
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, principal.UserID)
	assert.Equal(t, "access-1", principal.AccessToken)

	_, err = f.svc.CompleteLogin(ctx, "code-1", redirect.State)
	assert.ErrorIs(t, err, apperror.ErrAuthExchange, "state is single use")
}

func TestAuthService_ExistingProfileKept(t *testing.T) {
	f := newAuthFixture()
	f.store.profiles[f.user.ID] = &entity.UserProfile{ID: f.user.ID, Name: "Existing"}

	redirect, err := f.svc.BeginLogin(context.Background(), "github")
	require.NoError(t, err)
	_, err = f.svc.CompleteLogin(context.Background(), "code", redirect.State)
	require.NoError(t, err)

	assert.Equal(t, "Existing", f.store.profiles[f.user.ID].Name)
}

func TestAuthService_ProvisioningFailureDoesNotBlockLogin(t *testing.T) {
	f := newAuthFixture()
	f.store.fail("Create", errors.New("permission denied"))

	redirect, err := f.svc.BeginLogin(context.Background(), "google")
	require.NoError(t, err)
	_, err = f.svc.CompleteLogin(context.Background(), "code", redirect.State)

	require.NoError(t, err)
	assert.Empty(t, f.store.profiles)
}

func TestAuthService_ProfileLookupFailureSkipsCreate(t *testing.T) {
	f := newAuthFixture()
	f.store.fail("Exists", errors.New("connection reset"))

	redirect, err := f.svc.BeginLogin(context.Background(), "google")
	require.NoError(t, err)
	_, err = f.svc.CompleteLogin(context.Background(), "code", redirect.State)

	require.NoError(t, err)
	assert.Empty(t, f.store.profiles)
}

func TestAuthService_CompleteLoginErrors(t *testing.T) {
	t.Run("rejected code", func(t *testing.T) {
		f := newAuthFixture()
		f.server.exchangeErr = &apperror.UpstreamError{StatusCode: 400, Message: "invalid flow state"}
		redirect, err := f.svc.BeginLogin(context.Background(), "google")
		require.NoError(t, err)

		_, err = f.svc.CompleteLogin(context.Background(), "code", redirect.State)
		assert.ErrorIs(t, err, apperror.ErrAuthExchange)
	})

	t.Run("unreachable", func(t *testing.T) {
		f := newAuthFixture()
		f.server.exchangeErr = errors.New("dial tcp: connection refused")
		redirect, err := f.svc.BeginLogin(context.Background(), "google")
		require.NoError(t, err)

		_, err = f.svc.CompleteLogin(context.Background(), "code", redirect.State)
		assert.ErrorIs(t, err, apperror.ErrAuthUnavailable)
	})

	t.Run("no user", func(t *testing.T) {
		f := newAuthFixture()
		f.server.tokens.User = nil
		redirect, err := f.svc.BeginLogin(context.Background(), "google")
		require.NoError(t, err)

		_, err = f.svc.CompleteLogin(context.Background(), "code", redirect.State)
		assert.ErrorIs(t, err, apperror.ErrNoUser)
	})

	t.Run("missing provider", func(t *testing.T) {
		f := newAuthFixture()
		_, err := f.svc.BeginLogin(context.Background(), " ")

		var validationErr *apperror.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})
}

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	redirect, err := f.svc.BeginLogin(ctx, "google")
	require.NoError(t, err)
	session, err := f.svc.CompleteLogin(ctx, "code", redirect.State)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, session.ID.String()))
	assert.Equal(t, []string{"access-1"}, f.server.logouts)

	_, err = f.svc.ResolveSession(ctx, session.ID.String())
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)

	assert.NoError(t, f.svc.Logout(ctx, session.ID.String()), "second logout is a no-op")
}

func TestSessionRefresher(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	redirect, err := f.svc.BeginLogin(ctx, "google")
	require.NoError(t, err)
	session, err := f.svc.CompleteLogin(ctx, "code", redirect.State)
	require.NoError(t, err)

	refresher := NewSessionRefresher(f.sessions, f.server)
	token, err := refresher.RefreshSession(ctx, session.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "access-2", token)

	stored, err := f.sessions.GetByID(ctx, session.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "access-2", stored.AccessToken)
	assert.Equal(t, "refresh-2", stored.RefreshToken)
}

func TestSessionRefresher_Failures(t *testing.T) {
	f := newAuthFixture()
	refresher := NewSessionRefresher(f.sessions, f.server)

	_, err := refresher.RefreshSession(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	now := time.Now()
	session := &entity.Session{ID: uuid.New(), UserID: uuid.New(), RefreshToken: "r", ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, f.sessions.Create(context.Background(), session))
	f.server.refreshErr = &apperror.UpstreamError{StatusCode: 400, Message: "Invalid Refresh Token"}

	_, err = refresher.RefreshSession(context.Background(), session.ID.String())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "Invalid Refresh Token"))
}

func TestSessionRefresher_RejectedRefreshRevokesUserSessions(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	refresher := NewSessionRefresher(f.sessions, f.server)

	userID, otherID := uuid.New(), uuid.New()
	expires := time.Now().Add(time.Hour)
	first := &entity.Session{ID: uuid.New(), UserID: userID, RefreshToken: "r1", ExpiresAt: expires}
	second := &entity.Session{ID: uuid.New(), UserID: userID, RefreshToken: "r2", ExpiresAt: expires}
	other := &entity.Session{ID: uuid.New(), UserID: otherID, RefreshToken: "r3", ExpiresAt: expires}
	for _, session := range []*entity.Session{first, second, other} {
		require.NoError(t, f.sessions.Create(ctx, session))
	}
	f.server.refreshErr = &apperror.UpstreamError{StatusCode: 400, Message: "Invalid Refresh Token: Already Used"}

	_, err := refresher.RefreshSession(ctx, first.ID.String())
	require.Error(t, err)

	_, err = f.sessions.GetByID(ctx, first.ID.String())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = f.sessions.GetByID(ctx, second.ID.String())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = f.sessions.GetByID(ctx, other.ID.String())
	assert.NoError(t, err)
}

func TestSessionRefresher_UnavailableAuthServerKeepsSessions(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	refresher := NewSessionRefresher(f.sessions, f.server)

	session := &entity.Session{ID: uuid.New(), UserID: uuid.New(), RefreshToken: "r", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, f.sessions.Create(ctx, session))
	f.server.refreshErr = &apperror.UpstreamError{StatusCode: 503, Message: "Service Unavailable"}

	_, err := refresher.RefreshSession(ctx, session.ID.String())
	require.Error(t, err)

	_, err = f.sessions.GetByID(ctx, session.ID.String())
	assert.NoError(t, err)
}

func TestSessionRefresher_DetachedFromCallerCancellation(t *testing.T) {
	f := newAuthFixture()
	refresher := NewSessionRefresher(f.sessions, f.server)

	session := &entity.Session{ID: uuid.New(), UserID: uuid.New(), RefreshToken: "r", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, f.sessions.Create(context.Background(), session))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	token, err := refresher.RefreshSession(ctx, session.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "access-2", token)
}
