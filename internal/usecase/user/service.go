package user

import (
	"context"
	"errors"

	"product-catalog/internal/auth"
	"product-catalog/internal/config"
	"product-catalog/internal/credential"
	domainUser "product-catalog/internal/domain/user"
	"product-catalog/internal/logger"
	"product-catalog/internal/notify"
	"product-catalog/internal/validation"
	"product-catalog/pkg/envelope"
	appErrors "product-catalog/pkg/errors"
	"product-catalog/pkg/utils"

	"go.uber.org/zap"
)

const (
	MsgLoggedIn          = "Successfully logged in"
	MsgIncorrectLogin    = "Incorrect credentials"
	MsgSignedUp          = "Signup is successful"
	MsgNoUserWithEmail   = "Found no user with that email address."
	MsgResetLinkSent     = "We have emailed your password reset link!"
	MsgResetTokenInvalid = "Invalid password reset token. Please try again"
	MsgPasswordReset     = "Your password has been reset!"
	MsgUserFound         = "User found"
	MsgUserNotFound      = "User not found"
	MsgTokenRefreshed    = "Token refreshed"
	MsgTokenInvalid      = "Token is Invalid"
	msgEmailAlreadyTaken = "The email has already been taken."
)

// Tokens issues and rotates access tokens.
type Tokens interface {
	Issue(u *domainUser.User) (*auth.TokenInfo, error)
	Refresh(token string) (*auth.TokenInfo, error)
}

// ResetTokens manages the password reset token lifecycle.
type ResetTokens interface {
	Issue(ctx context.Context, email string) (string, error)
	Validate(ctx context.Context, token, email string) error
	Consume(ctx context.Context, email string) error
}

// Service implements user use cases
type Service struct {
	userRepo domainUser.Repository
	hasher   credential.Hasher
	resets   ResetTokens
	tokens   Tokens
	notifier notify.Notifier
	config   *config.Config
}

// NewService creates a new user service
func NewService(
	userRepo domainUser.Repository,
	hasher credential.Hasher,
	resets ResetTokens,
	tokens Tokens,
	notifier notify.Notifier,
	cfg *config.Config,
) *Service {
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
		resets:   resets,
		tokens:   tokens,
		notifier: notifier,
		config:   cfg,
	}
}

func (s *Service) Login(ctx context.Context, req *LoginRequest) *envelope.Envelope[AuthPayload] {
	req.Email = utils.SanitizeEmail(req.Email)

	if res, ok := check[AuthPayload](ctx, "login", loginRules(), req); !ok {
		return res
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if errors.Is(err, domainUser.ErrUserNotFound) {
		logger.Warn("Login attempt with non-existent email",
			zap.String("email", req.Email),
			zap.String("event", "user_not_found"),
			zap.Error(appErrors.ErrInvalidCredentials),
		)
		return envelope.Unauthorized[AuthPayload](MsgIncorrectLogin)
	}
	if err != nil {
		return fail[AuthPayload]("login", err)
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		logger.Warn("Login attempt with invalid password",
			zap.Int64("user_id", user.ID),
			zap.String("event", "login_failed_invalid_password"),
			zap.Error(appErrors.ErrInvalidCredentials),
		)
		return envelope.Unauthorized[AuthPayload](MsgIncorrectLogin)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return fail[AuthPayload]("login", err)
	}

	logger.Info("User logged in successfully",
		zap.Int64("user_id", user.ID),
		zap.String("event", "login_success"),
	)

	return envelope.OK(MsgLoggedIn, &AuthPayload{User: ToUserResponse(user), Token: token})
}

func (s *Service) Register(ctx context.Context, req *RegisterRequest) *envelope.Envelope[AuthPayload] {
	req.Name = utils.SanitizeString(req.Name)
	req.Email = utils.SanitizeEmail(req.Email)

	if res, ok := check[AuthPayload](ctx, "register", registerRules(s.userRepo.ExistsByEmail), req); !ok {
		return res
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return fail[AuthPayload]("register", err)
	}

	user := &domainUser.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domainUser.ErrUserAlreadyExists) {
			logger.Warn("Registration attempt with existing email",
				zap.String("email", req.Email),
				zap.String("event", "registration_failed_duplicate_email"),
			)
			return envelope.Invalid[AuthPayload](envelope.FieldErrors{"email": {msgEmailAlreadyTaken}})
		}
		return fail[AuthPayload]("register", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return fail[AuthPayload]("register", err)
	}

	logger.Info("User registered successfully",
		zap.Int64("user_id", user.ID),
		zap.String("event", "user_registered"),
	)

	return envelope.OK(MsgSignedUp, &AuthPayload{User: ToUserResponse(user), Token: token})
}

func (s *Service) ForgotPassword(ctx context.Context, req *ForgotPasswordRequest) *envelope.Envelope[envelope.None] {
	req.Email = utils.SanitizeEmail(req.Email)

	if res, ok := check[envelope.None](ctx, "forgot_password", forgotPasswordRules(), req); !ok {
		return res
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if errors.Is(err, domainUser.ErrUserNotFound) {
		return envelope.NotFound[envelope.None](MsgNoUserWithEmail)
	}
	if err != nil {
		return fail[envelope.None]("forgot_password", err)
	}

	token, err := s.resets.Issue(ctx, user.Email)
	if err != nil {
		return fail[envelope.None]("forgot_password", err)
	}

	msg := notify.ResetMessage{
		Name:  user.Name,
		Email: user.Email,
		Token: token,
		Link:  notify.ResetLink(s.config.Notifier.ResetURL, token, user.Email),
	}
	if err := s.notifier.SendPasswordReset(ctx, msg); err != nil {
		logger.Warn("Failed to send password reset notification",
			zap.Int64("user_id", user.ID),
			zap.String("event", "reset_notification_failed"),
			zap.Error(err),
		)
	}

	logger.Info("Password reset requested",
		zap.Int64("user_id", user.ID),
		zap.String("event", "password_reset_requested"),
	)

	return envelope.OK[envelope.None](MsgResetLinkSent, nil)
}

func (s *Service) ResetPassword(ctx context.Context, req *ResetPasswordRequest) *envelope.Envelope[UserResponse] {
	req.Email = utils.SanitizeEmail(req.Email)

	if res, ok := check[UserResponse](ctx, "reset_password", resetPasswordRules(), req); !ok {
		return res
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if errors.Is(err, domainUser.ErrUserNotFound) {
		return envelope.NotFound[UserResponse](MsgNoUserWithEmail)
	}
	if err != nil {
		return fail[UserResponse]("reset_password", err)
	}

	if err := s.resets.Validate(ctx, req.Token, user.Email); err != nil {
		if errors.Is(err, appErrors.ErrResetTokenInvalid) {
			logger.Warn("Password reset with invalid token",
				zap.Int64("user_id", user.ID),
				zap.String("event", "reset_token_invalid"),
			)
			return envelope.NotFound[UserResponse](MsgResetTokenInvalid)
		}
		return fail[UserResponse]("reset_password", err)
	}

	if err := s.resets.Consume(ctx, user.Email); err != nil {
		return fail[UserResponse]("reset_password", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return fail[UserResponse]("reset_password", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fail[UserResponse]("reset_password", err)
	}

	updated, err := s.userRepo.GetByID(ctx, user.ID)
	if err != nil {
		return fail[UserResponse]("reset_password", err)
	}

	logger.Info("Password reset successfully",
		zap.Int64("user_id", user.ID),
		zap.String("event", "password_reset"),
	)

	return envelope.OK(MsgPasswordReset, ToUserResponse(updated))
}

func (s *Service) Me(ctx context.Context, userID int64) *envelope.Envelope[UserResponse] {
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, domainUser.ErrUserNotFound) {
		return envelope.NotFound[UserResponse](MsgUserNotFound)
	}
	if err != nil {
		return fail[UserResponse]("me", err)
	}

	return envelope.OK(MsgUserFound, ToUserResponse(user))
}

func (s *Service) RefreshToken(_ context.Context, token string) *envelope.Envelope[auth.TokenInfo] {
	info, err := s.tokens.Refresh(token)
	if errors.Is(err, appErrors.ErrTokenInvalid) || errors.Is(err, appErrors.ErrTokenExpired) {
		logger.Warn("Token refresh refused",
			zap.String("event", "token_refresh_refused"),
			zap.Error(err),
		)
		return envelope.Unauthorized[auth.TokenInfo](MsgTokenInvalid)
	}
	if err != nil {
		return fail[auth.TokenInfo]("refresh_token", err)
	}

	return envelope.OK(MsgTokenRefreshed, info)
}

// check runs table over in. ok is false when res must be returned as is.
func check[T any](ctx context.Context, op string, table validation.Table, in validation.Source) (res *envelope.Envelope[T], ok bool) {
	fields, err := table.Validate(ctx, in)
	if err != nil {
		return fail[T](op, err), false
	}
	if fields != nil {
		return envelope.Invalid[T](fields), false
	}
	return nil, true
}

func fail[T any](op string, err error) *envelope.Envelope[T] {
	logger.Error("Operation failed",
		zap.String("operation", op),
		zap.Error(err),
	)
	return envelope.Internal[T](err)
}
