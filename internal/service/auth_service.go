package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/kaushikshivam970/storeit/internal/config"
	"github.com/kaushikshivam970/storeit/internal/domain"
	"github.com/kaushikshivam970/storeit/internal/repository"
)

// OTPIssuer covers the provider's one-time code lifecycle: issue a code to an
// address, redeem an (accountID, code) pair for a session.
type OTPIssuer interface {
	CreateEmailToken(ctx context.Context, userID, email string) (string, error)
	CreateSession(ctx context.Context, accountID, code string) (domain.Session, error)
}

// SessionHandle is the restricted, user-scoped view over the provider: the
// acting user's own account and nothing else.
type SessionHandle interface {
	Get(ctx context.Context) (domain.Account, error)
	DeleteCurrentSession(ctx context.Context) error
}

// HandleFactory builds session-scoped handles from cookie tokens. A nil
// handle means the caller is unauthenticated, not that something failed.
type HandleFactory interface {
	Session(token string) SessionHandle
}

// OTPThrottle caps code issuance per address.
type OTPThrottle interface {
	Allow(ctx context.Context, email string) (bool, error)
}

// AvatarSource builds the fallback avatar for new identity records.
type AvatarSource interface {
	InitialsURL(name string) string
}

// SignInResult is the structured outcome of a sign-in attempt. An unknown
// email is an expected, user-correctable condition and is reported here
// rather than as an error.
type SignInResult struct {
	AccountID string
	Found     bool
}

// AuthService orchestrates the passwordless sign-up, sign-in, verification
// and sign-out flows.
type AuthService struct {
	users    repository.UserRepository
	otp      OTPIssuer
	sessions HandleFactory
	throttle OTPThrottle
	avatars  AvatarSource
	ids      *snowflake.Node
	cfg      config.Config
	logger   *zap.Logger
	tracer   trace.Tracer
}

// NewAuthService wires dependencies.
func NewAuthService(users repository.UserRepository, otp OTPIssuer, sessions HandleFactory, throttle OTPThrottle, avatars AvatarSource, node *snowflake.Node, cfg config.Config, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:    users,
		otp:      otp,
		sessions: sessions,
		throttle: throttle,
		avatars:  avatars,
		ids:      node,
		cfg:      cfg,
		logger:   logger,
		tracer:   otel.Tracer("github.com/kaushikshivam970/storeit/internal/service"),
	}
}

// Register signs an email up for OTP authentication. The OTP goes out whether
// or not an identity record already exists, so "new account" and "existing
// account" collapse into one flow; the record is only inserted when absent.
// Returns the provider account ID the caller must verify against.
func (s *AuthService) Register(ctx context.Context, fullName, email string) (string, error) {
	ctx, span := s.startSpan(ctx, "AuthService.Register")
	defer span.End()

	email = strings.TrimSpace(email)
	fullName = strings.TrimSpace(fullName)

	existing, lookupErr := s.users.GetByEmail(ctx, email)
	if lookupErr != nil && !errors.Is(lookupErr, domain.ErrUserNotFound) {
		span.RecordError(lookupErr)
		s.log().Error("look up user by email failed", zap.Error(lookupErr))
		return "", fmt.Errorf("look up user by email: %w", lookupErr)
	}

	if err := s.allowOTP(ctx, email); err != nil {
		return "", err
	}

	accountID, err := s.otp.CreateEmailToken(ctx, s.ids.Generate().String(), email)
	if err != nil {
		span.RecordError(err)
		s.log().Error("issue otp failed", zap.Error(err))
		return "", fmt.Errorf("issue otp: %w", err)
	}

	if errors.Is(lookupErr, domain.ErrUserNotFound) {
		user := domain.User{
			AccountID: accountID,
			FullName:  fullName,
			Email:     email,
			Avatar:    s.placeholderAvatar(fullName),
		}
		if _, err := s.users.Create(ctx, user); err != nil {
			span.RecordError(err)
			s.log().Error("create identity record failed", zap.Error(err))
			return "", fmt.Errorf("create identity record: %w", err)
		}
		s.audit("account.registered", "account_id", accountID)
	} else {
		s.audit("account.reregistered", "account_id", existing.AccountID)
	}

	return accountID, nil
}

// SignIn issues a fresh OTP for a registered email. An unknown email yields a
// not-found result with no OTP sent and no error raised.
func (s *AuthService) SignIn(ctx context.Context, email string) (SignInResult, error) {
	ctx, span := s.startSpan(ctx, "AuthService.SignIn")
	defer span.End()

	email = strings.TrimSpace(email)

	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return SignInResult{}, nil
		}
		span.RecordError(err)
		s.log().Error("look up user by email failed", zap.Error(err))
		return SignInResult{}, fmt.Errorf("look up user by email: %w", err)
	}

	if err := s.allowOTP(ctx, email); err != nil {
		return SignInResult{}, err
	}

	accountID, err := s.otp.CreateEmailToken(ctx, s.ids.Generate().String(), email)
	if err != nil {
		span.RecordError(err)
		s.log().Error("issue otp failed", zap.Error(err))
		return SignInResult{}, fmt.Errorf("issue otp: %w", err)
	}

	s.audit("otp.issued", "account_id", accountID)
	return SignInResult{AccountID: accountID, Found: true}, nil
}

// Verify redeems the OTP for a session. The returned session's secret is what
// the caller seals into the cookie; on any failure no session exists and no
// cookie must be touched.
func (s *AuthService) Verify(ctx context.Context, accountID, code string) (domain.Session, error) {
	ctx, span := s.startSpan(ctx, "AuthService.Verify")
	defer span.End()

	sess, err := s.otp.CreateSession(ctx, accountID, code)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, domain.ErrVerificationFailed) {
			s.log().Warn("otp verification failed", zap.String("account_id", accountID))
			return domain.Session{}, err
		}
		s.log().Error("redeem otp failed", zap.Error(err))
		return domain.Session{}, fmt.Errorf("redeem otp: %w", err)
	}

	s.audit("session.created", "account_id", accountID, "session_id", sess.ID)
	return sess, nil
}

// CurrentUser resolves the session token to the caller's identity record, or
// nil when the request is anonymous. A stale, forged or otherwise broken
// session degrades to anonymous with a logged warning; this read never fails
// loud and never fails open to authenticated.
func (s *AuthService) CurrentUser(ctx context.Context, token string) *domain.User {
	ctx, span := s.startSpan(ctx, "AuthService.CurrentUser")
	defer span.End()

	handle := s.sessions.Session(token)
	if handle == nil {
		return nil
	}

	account, err := handle.Get(ctx)
	if err != nil {
		s.log().Warn("resolve session account failed", zap.Error(err))
		return nil
	}

	user, err := s.users.GetByAccountID(ctx, account.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			s.log().Warn("load user for session failed", zap.Error(err))
		}
		// A provider-valid session with no identity record is orphaned;
		// treat it as unauthenticated.
		return nil
	}
	return &user
}

// SignOut revokes the session server-side, best effort. Failures are logged
// and swallowed: the caller clears the cookie and redirects regardless.
func (s *AuthService) SignOut(ctx context.Context, token string) {
	ctx, span := s.startSpan(ctx, "AuthService.SignOut")
	defer span.End()

	handle := s.sessions.Session(token)
	if handle == nil {
		return
	}
	if err := handle.DeleteCurrentSession(ctx); err != nil {
		s.log().Warn("revoke session failed", zap.Error(err))
		return
	}
	s.audit("session.revoked")
}

func (s *AuthService) allowOTP(ctx context.Context, email string) error {
	if s.throttle == nil {
		return nil
	}
	ok, err := s.throttle.Allow(ctx, email)
	if err != nil {
		// Throttle store errors fail open.
		s.log().Warn("otp throttle unavailable", zap.Error(err))
		return nil
	}
	if !ok {
		return domain.ErrOTPThrottled
	}
	return nil
}

func (s *AuthService) placeholderAvatar(fullName string) string {
	if s.cfg.AvatarPlaceholderURL != "" {
		return s.cfg.AvatarPlaceholderURL
	}
	if s.avatars != nil {
		return s.avatars.InitialsURL(fullName)
	}
	return ""
}

func (s *AuthService) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if s == nil || s.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return s.tracer.Start(ctx, name)
}

func (s *AuthService) audit(event string, attrs ...any) {
	logger := s.log()
	if logger == nil {
		return
	}
	fields := make([]zap.Field, 0, len(attrs)/2+2)
	fields = append(fields, zap.String("event", event), zap.Time("timestamp", time.Now().UTC()))
	for i := 0; i+1 < len(attrs); i += 2 {
		key, ok := attrs[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, attrs[i+1]))
	}
	logger.Info("audit", fields...)
}

func (s *AuthService) log() *zap.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return zap.L()
}
