package user

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"product-catalog/internal/auth"
	"product-catalog/internal/config"
	"product-catalog/internal/credential"
	domainUser "product-catalog/internal/domain/user"
	"product-catalog/internal/domain/user/mocks"
	"product-catalog/internal/infrastructure/memory"
	"product-catalog/internal/logger"
	"product-catalog/internal/notify"
	"product-catalog/pkg/envelope"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"
)

type recordingNotifier struct {
	sent []notify.ResetMessage
	err  error
}

func (n *recordingNotifier) SendPasswordReset(_ context.Context, msg notify.ResetMessage) error {
	n.sent = append(n.sent, msg)
	return n.err
}

type fixture struct {
	svc      *Service
	users    *memory.UserRepository
	resets   *memory.ResetTokenRepository
	clock    *clockwork.FakeClock
	gate     *auth.Gate
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := &config.Config{
		JWT:      config.JWTConfig{Secret: "test-secret", TTL: time.Hour, RefreshTTL: 24 * time.Hour},
		Notifier: config.NotifierConfig{ResetURL: "https://app.example/reset-password"},
	}
	f := &fixture{
		users:    memory.NewUserRepository(),
		resets:   memory.NewResetTokenRepository(),
		clock:    clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)),
		notifier: &recordingNotifier{},
	}
	f.gate = auth.NewGate(cfg.JWT, f.clock)
	f.svc = NewService(
		f.users,
		credential.NewBcryptHasher(bcrypt.MinCost),
		credential.NewResetTokens(f.resets, f.clock),
		f.gate,
		f.notifier,
		cfg,
	)
	return f
}

func (f *fixture) register(t *testing.T, email, password string) *AuthPayload {
	t.Helper()
	res := f.svc.Register(context.Background(), &RegisterRequest{
		Name: "A", Email: email, Password: password, PasswordConfirmation: password,
	})
	require.Equal(t, http.StatusOK, res.HTTPStatus(), res.Message)
	return res.Data
}

func TestRegister_IssuesBearerToken(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	payload := f.register(t, "a@x.com", "secret")

	assert.Equal(t, "a@x.com", payload.User.Email)
	assert.Equal(t, "bearer", payload.Token.TokenType)
	assert.Equal(t, int64(3600), payload.Token.ExpiresIn)

	identity, outcome := f.gate.Verify(payload.Token.AccessToken)
	require.Equal(t, auth.Valid, outcome)
	assert.Equal(t, payload.User.ID, identity.UserID)

	stored, err := f.users.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", stored.PasswordHash)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.register(t, "a@x.com", "secret")

	res := f.svc.Register(context.Background(), &RegisterRequest{
		Name: "B", Email: " A@X.com ", Password: "secret", PasswordConfirmation: "secret",
	})

	assert.Equal(t, http.StatusBadRequest, res.HTTPStatus())
	assert.Equal(t, envelope.MsgValidationError, res.Message)
	assert.Equal(t, []string{"The email has already been taken."}, res.Fields["email"])
}

func TestRegister_InsertRaceReportsEmailTaken(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	f := newFixture(t)
	f.svc.userRepo = repo

	repo.EXPECT().ExistsByEmail(gomock.Any(), "a@x.com").Return(false, nil)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(domainUser.ErrUserAlreadyExists)

	res := f.svc.Register(context.Background(), &RegisterRequest{
		Name: "A", Email: "a@x.com", Password: "secret", PasswordConfirmation: "secret",
	})

	assert.Equal(t, http.StatusBadRequest, res.HTTPStatus())
	assert.Equal(t, envelope.FieldErrors{"email": {"The email has already been taken."}}, res.Fields)
}

func TestRegister_ValidationErrors(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	res := f.svc.Register(context.Background(), &RegisterRequest{
		Email: "not-an-email", Password: "abc", PasswordConfirmation: "abd",
	})

	require.Equal(t, http.StatusBadRequest, res.HTTPStatus())
	assert.Equal(t, []string{"The name field is required."}, res.Fields["name"])
	assert.Equal(t, []string{"The email must be a valid email address."}, res.Fields["email"])
	assert.Equal(t, []string{
		"The password must be at least 5 characters.",
		"The password confirmation does not match.",
	}, res.Fields["password"])
}

func TestRegister_StoreFailureIsInternal(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	f := newFixture(t)
	f.svc.userRepo = repo

	repo.EXPECT().ExistsByEmail(gomock.Any(), "a@x.com").Return(false, errors.New("connection refused"))

	res := f.svc.Register(context.Background(), &RegisterRequest{
		Name: "A", Email: "a@x.com", Password: "secret", PasswordConfirmation: "secret",
	})

	assert.Equal(t, http.StatusInternalServerError, res.HTTPStatus())
	assert.Equal(t, envelope.MsgInternalError, res.Message)
	assert.Contains(t, res.Detail, "connection refused")
}

func TestLogin(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	registered := f.register(t, "a@x.com", "secret")

	res := f.svc.Login(context.Background(), &LoginRequest{Email: "a@x.com", Password: "secret"})
	require.Equal(t, http.StatusOK, res.HTTPStatus())
	assert.Equal(t, MsgLoggedIn, res.Message)
	assert.Equal(t, registered.User.ID, res.Data.User.ID)
	assert.NotEmpty(t, res.Data.Token.AccessToken)
}

func TestLogin_WrongCredentials(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.register(t, "a@x.com", "secret")

	for _, req := range []*LoginRequest{
		{Email: "a@x.com", Password: "wrong"},
		{Email: "nobody@x.com", Password: "secret"},
	} {
		res := f.svc.Login(context.Background(), req)
		assert.Equal(t, http.StatusUnauthorized, res.HTTPStatus())
		assert.Equal(t, MsgIncorrectLogin, res.Message)
		assert.Nil(t, res.Payload())
	}
}

func TestForgotPassword_SendsResetLink(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.register(t, "a@x.com", "secret")

	res := f.svc.ForgotPassword(context.Background(), &ForgotPasswordRequest{Email: "a@x.com"})

	require.Equal(t, http.StatusOK, res.HTTPStatus())
	assert.Equal(t, MsgResetLinkSent, res.Message)
	assert.Nil(t, res.Payload())
	require.Len(t, f.notifier.sent, 1)

	msg := f.notifier.sent[0]
	assert.Len(t, msg.Token, credential.ResetTokenLength)
	link, err := url.Parse(msg.Link)
	require.NoError(t, err)
	assert.Equal(t, msg.Token, link.Query().Get("token"))
	assert.Equal(t, 1, f.resets.Len())
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	res := f.svc.ForgotPassword(context.Background(), &ForgotPasswordRequest{Email: "a@x.com"})

	assert.Equal(t, http.StatusNotFound, res.HTTPStatus())
	assert.Equal(t, MsgNoUserWithEmail, res.Message)
	assert.Empty(t, f.notifier.sent)
}

func TestForgotPassword_NotifierFailureIsAdvisory(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	defer logger.Replace(zap.New(core))()

	f := newFixture(t)
	f.register(t, "a@x.com", "secret")
	f.notifier.err = errors.New("smtp down")

	res := f.svc.ForgotPassword(context.Background(), &ForgotPasswordRequest{Email: "a@x.com"})

	assert.Equal(t, http.StatusOK, res.HTTPStatus())
	assert.Equal(t, 1, logs.FilterField(zap.String("event", "reset_notification_failed")).Len())
}

func TestResetPassword_RoundTrip(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.register(t, "a@x.com", "secret")
	f.svc.ForgotPassword(context.Background(), &ForgotPasswordRequest{Email: "a@x.com"})
	token := f.notifier.sent[0].Token

	req := &ResetPasswordRequest{Email: "a@x.com", Token: token, Password: "newpass", PasswordConfirmation: "newpass"}
	res := f.svc.ResetPassword(context.Background(), req)
	require.Equal(t, http.StatusOK, res.HTTPStatus(), res.Message)
	assert.Equal(t, MsgPasswordReset, res.Message)
	assert.Equal(t, "a@x.com", res.Data.Email)

	login := f.svc.Login(context.Background(), &LoginRequest{Email: "a@x.com", Password: "newpass"})
	assert.Equal(t, http.StatusOK, login.HTTPStatus())

	again := f.svc.ResetPassword(context.Background(), req)
	assert.Equal(t, http.StatusNotFound, again.HTTPStatus())
	assert.Equal(t, MsgResetTokenInvalid, again.Message)
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.register(t, "a@x.com", "secret")
	f.svc.ForgotPassword(context.Background(), &ForgotPasswordRequest{Email: "a@x.com"})
	token := f.notifier.sent[0].Token

	f.clock.Advance(time.Hour + time.Second)

	res := f.svc.ResetPassword(context.Background(), &ResetPasswordRequest{
		Email: "a@x.com", Token: token, Password: "newpass", PasswordConfirmation: "newpass",
	})
	assert.Equal(t, http.StatusNotFound, res.HTTPStatus())
	assert.Equal(t, MsgResetTokenInvalid, res.Message)
}

func TestResetPassword_ReissueSupersedes(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.register(t, "a@x.com", "secret")
	f.svc.ForgotPassword(context.Background(), &ForgotPasswordRequest{Email: "a@x.com"})
	f.svc.ForgotPassword(context.Background(), &ForgotPasswordRequest{Email: "a@x.com"})
	first := f.notifier.sent[0].Token

	res := f.svc.ResetPassword(context.Background(), &ResetPasswordRequest{
		Email: "a@x.com", Token: first, Password: "newpass", PasswordConfirmation: "newpass",
	})
	assert.Equal(t, http.StatusNotFound, res.HTTPStatus())
	assert.Equal(t, 1, f.resets.Len())
}

func TestResetPassword_UnknownUser(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	res := f.svc.ResetPassword(context.Background(), &ResetPasswordRequest{
		Email: "a@x.com", Token: "t", Password: "newpass", PasswordConfirmation: "newpass",
	})
	assert.Equal(t, http.StatusNotFound, res.HTTPStatus())
	assert.Equal(t, MsgNoUserWithEmail, res.Message)
}

func TestMe(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	registered := f.register(t, "a@x.com", "secret")

	res := f.svc.Me(context.Background(), registered.User.ID)
	require.Equal(t, http.StatusOK, res.HTTPStatus())
	assert.Equal(t, MsgUserFound, res.Message)
	assert.Equal(t, "a@x.com", res.Data.Email)

	missing := f.svc.Me(context.Background(), 999)
	assert.Equal(t, http.StatusNotFound, missing.HTTPStatus())
	assert.Equal(t, MsgUserNotFound, missing.Message)
}

func TestRefreshToken(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	registered := f.register(t, "a@x.com", "secret")

	f.clock.Advance(2 * time.Hour)
	res := f.svc.RefreshToken(context.Background(), registered.Token.AccessToken)
	require.Equal(t, http.StatusOK, res.HTTPStatus())
	assert.Equal(t, MsgTokenRefreshed, res.Message)
	assert.NotEqual(t, registered.Token.AccessToken, res.Data.AccessToken)

	bad := f.svc.RefreshToken(context.Background(), "garbage")
	assert.Equal(t, http.StatusUnauthorized, bad.HTTPStatus())
	assert.Equal(t, MsgTokenInvalid, bad.Message)

	f.clock.Advance(24 * time.Hour)
	stale := f.svc.RefreshToken(context.Background(), registered.Token.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, stale.HTTPStatus())
}
