package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/journal/internal/api"
	"github.com/dmitrijs2005/journal/internal/common"
	"github.com/dmitrijs2005/journal/internal/logging"
)

// MinPasswordLength is the shortest password accepted at sign up.
const MinPasswordLength = 6

// AuthClient is the part of the backend client used for signing in and out.
type AuthClient interface {
	Register(ctx context.Context, email, displayName string, password []byte) error
	Login(ctx context.Context, email string, password []byte) error
	Logout(ctx context.Context) error
	Restore(ctx context.Context) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token string, password []byte) error
	StartGitHubLogin(ctx context.Context) (*api.StartGitHubLoginResponse, error)
	CompleteGitHubLogin(ctx context.Context, deviceCode string) error
}

// SessionLifecycle is the reconciler as seen by the auth service.
type SessionLifecycle interface {
	Start(ctx context.Context)
	Logout(ctx context.Context)
}

type AuthService struct {
	client   AuthClient
	sessions SessionLifecycle
	log      logging.Logger
	inFlight
}

func NewAuthService(client AuthClient, sessions SessionLifecycle, l logging.Logger) *AuthService {
	return &AuthService{client: client, sessions: sessions, log: l.With("module", "auth")}
}

// Start adopts the mirrored session, then asks the backend for the
// authoritative answer. Failing to reach the backend is not an error: the
// mirror stays in effect until it expires.
func (s *AuthService) Start(ctx context.Context) {
	s.sessions.Start(ctx)
	if err := s.client.Restore(ctx); err != nil {
		s.log.Info(ctx, "session not restored", "err", err)
	}
}

func (s *AuthService) SignUp(ctx context.Context, email, displayName string, password, confirm []byte) error {
	done, err := s.begin()
	if err != nil {
		return err
	}
	defer done()

	email, err = checkEmail(email)
	if err != nil {
		return err
	}
	if len(password) < MinPasswordLength {
		return common.WithReason(fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, MinPasswordLength), common.ReasonWeakPassword)
	}
	if string(password) != string(confirm) {
		return fmt.Errorf("%w: passwords do not match", common.ErrorValidation)
	}

	if err := s.client.Register(ctx, email, strings.TrimSpace(displayName), password); err != nil {
		return err
	}
	return s.client.Login(ctx, email, password)
}

func (s *AuthService) Login(ctx context.Context, email string, password []byte) error {
	done, err := s.begin()
	if err != nil {
		return err
	}
	defer done()

	email, err = checkEmail(email)
	if err != nil {
		return err
	}
	if len(password) == 0 {
		return common.WithReason(fmt.Errorf("%w: password is required", common.ErrorValidation), common.ReasonWrongPassword)
	}
	return s.client.Login(ctx, email, password)
}

// Logout signs out remotely and always tears the local session down.
func (s *AuthService) Logout(ctx context.Context) error {
	err := s.client.Logout(ctx)
	s.sessions.Logout(ctx)
	return err
}

func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	done, err := s.begin()
	if err != nil {
		return err
	}
	defer done()

	email, err = checkEmail(email)
	if err != nil {
		return err
	}
	return s.client.RequestPasswordReset(ctx, email)
}

func (s *AuthService) ResetPassword(ctx context.Context, token string, password, confirm []byte) error {
	done, err := s.begin()
	if err != nil {
		return err
	}
	defer done()

	if strings.TrimSpace(token) == "" {
		return common.WithReason(fmt.Errorf("%w: reset code is required", common.ErrorValidation), common.ReasonInvalidActionCode)
	}
	if len(password) < MinPasswordLength {
		return common.WithReason(fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, MinPasswordLength), common.ReasonWeakPassword)
	}
	if string(password) != string(confirm) {
		return fmt.Errorf("%w: passwords do not match", common.ErrorValidation)
	}
	return s.client.ResetPassword(ctx, token, password)
}

// GitHubLogin runs the device flow: prompt is called with the code the user
// has to enter at the verification page, then the call blocks until the
// user has answered on GitHub or the code expires.
func (s *AuthService) GitHubLogin(ctx context.Context, prompt func(userCode, verificationURI string)) error {
	done, err := s.begin()
	if err != nil {
		return err
	}
	defer done()

	code, err := s.client.StartGitHubLogin(ctx)
	if err != nil {
		return err
	}
	prompt(code.UserCode, code.VerificationURI)

	deadline := code.ExpiresAt
	if deadline.IsZero() {
		deadline = time.Now().Add(15 * time.Minute)
	}
	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	return s.client.CompleteGitHubLogin(ctx, code.DeviceCode)
}

func checkEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", common.WithReason(fmt.Errorf("%w: email is required", common.ErrorValidation), common.ReasonMissingEmail)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", common.WithReason(fmt.Errorf("%w: %q is not an email address", common.ErrorValidation, email), common.ReasonInvalidEmail)
	}
	return email, nil
}
