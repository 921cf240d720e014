package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/journal/internal/common"
	"github.com/dmitrijs2005/journal/internal/cryptox"
	"github.com/dmitrijs2005/journal/internal/dbx"
	"github.com/dmitrijs2005/journal/internal/server/auth"
	"github.com/dmitrijs2005/journal/internal/server/blob"
	"github.com/dmitrijs2005/journal/internal/server/config"
	"github.com/dmitrijs2005/journal/internal/server/mailer"
	"github.com/dmitrijs2005/journal/internal/server/models"
	"github.com/dmitrijs2005/journal/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Session is the result of every successful sign in.
type Session struct {
	TokenPair
	User *models.User
}

// UserService handles accounts: password and GitHub sign in, token
// rotation, password reset and the profile of the signed-in user.
type UserService struct {
	base
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	blobs                        blob.Store
	mail                         mailer.Mailer
	github                       auth.DeviceFlow
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	resetTokenValidityDuration   time.Duration
}

// NewUserService wires a UserService. A nil github disables GitHub sign in.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, blobs blob.Store, sender mailer.Mailer, github auth.DeviceFlow, cfg *config.Config, opts ...Option) *UserService {
	return &UserService{
		base:                         newBase("users", opts),
		db:                           db,
		repomanager:                  m,
		blobs:                        blobs,
		mail:                         sender,
		github:                       github,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		resetTokenValidityDuration:   cfg.ResetTokenValidityDuration,
	}
}

// Register creates a password account.
func (s *UserService) Register(ctx context.Context, email, displayName string, salt, verifier []byte) (*models.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(salt) == 0 || len(verifier) == 0 {
		return nil, common.WithReason(fmt.Errorf("missing credentials: %w", common.ErrorValidation), common.ReasonInvalidCredential)
	}

	user := &models.User{
		Email:       email,
		DisplayName: strings.TrimSpace(displayName),
		Salt:        salt,
		Verifier:    verifier,
	}
	u, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.WithReason(fmt.Errorf("error creating user: %w", err), common.ReasonEmailAlreadyInUse)
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	s.log.Info(ctx, "user registered", "user_id", u.ID)
	return u, nil
}

// GetSalt returns the user's stored salt or a random salt if the user is
// absent, so the answer does not reveal whether the account exists.
func (s *UserService) GetSalt(ctx context.Context, email string) ([]byte, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return s.getRandomSalt(), nil
		}
		return nil, common.ErrorInternal
	}
	if !user.HasPassword() {
		return s.getRandomSalt(), nil
	}
	return user.Salt, nil
}

// Login checks verifierCandidate against the stored verifier. Every kind of
// mismatch yields the same invalid-credential error.
func (s *UserService) Login(ctx context.Context, email string, verifierCandidate []byte) (*Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, invalidCredential()
		}
		return nil, common.ErrorInternal
	}
	if !user.HasPassword() || !cryptox.Equal(user.Verifier, verifierCandidate) {
		return nil, invalidCredential()
	}
	return s.startSession(ctx, user)
}

// RefreshToken validates a refresh token, rotates it transactionally and
// returns a fresh session. Expired tokens yield ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*Session, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.WithReason(fmt.Errorf("refresh token: %w", common.ErrorUnauthorized), common.ReasonInvalidToken)
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expired(s.now()) {
		return nil, common.WithReason(common.ErrRefreshTokenExpired, common.ReasonTokenExpired)
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.RefreshTokens(tx)
		if err := repoTx.Delete(ctx, refreshToken); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.WithReason(fmt.Errorf("refresh token: %w", common.ErrorUnauthorized), common.ReasonInvalidToken)
			}
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, token.UserID, tx)
		return genErr
	}); err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, token.UserID)
	if err != nil {
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return &Session{TokenPair: *pair, User: user}, nil
}

// Logout revokes refreshToken. Unknown tokens are not an error.
func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	err := s.repomanager.RefreshTokens(s.db).Delete(ctx, refreshToken)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("error deleting refresh token: %w", err)
	}
	return nil
}

// RequestPasswordReset stores a one-time code for the account and mails it.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.WithReason(fmt.Errorf("user %s: %w", email, err), common.ReasonUserNotFound)
		}
		return fmt.Errorf("error loading user: %w", err)
	}

	resets := s.repomanager.ResetTokens(s.db)
	if n, err := resets.DeleteExpired(ctx, s.now()); err != nil {
		s.log.Warn(ctx, "purging expired reset tokens", "err", err)
	} else if n > 0 {
		s.log.Debug(ctx, "purged expired reset tokens", "count", n)
	}

	token := common.RandomHex(common.ResetCodeBytes)
	if err := resets.Create(ctx, user.ID, token, s.now().Add(s.resetTokenValidityDuration)); err != nil {
		return fmt.Errorf("error storing reset token: %w", err)
	}

	body := fmt.Sprintf("Use this code to choose a new password:\n\n    %s\n\nThe code expires in %s. If you did not ask for it, ignore this message.\n",
		token, s.resetTokenValidityDuration)
	if err := s.mail.Send(ctx, user.Email, "Reset your journal password", body); err != nil {
		return fmt.Errorf("error sending reset mail: %w", err)
	}
	s.log.Info(ctx, "password reset requested", "user_id", user.ID)
	return nil
}

// ResetPassword redeems a reset code, replaces the credentials and signs the
// account out everywhere.
func (s *UserService) ResetPassword(ctx context.Context, token string, salt, verifier []byte) error {
	if len(salt) == 0 || len(verifier) == 0 {
		return common.WithReason(fmt.Errorf("missing credentials: %w", common.ErrorValidation), common.ReasonInvalidCredential)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		rt, err := s.repomanager.ResetTokens(tx).Consume(ctx, token)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.WithReason(fmt.Errorf("reset code: %w", common.ErrorValidation), common.ReasonInvalidActionCode)
			}
			return fmt.Errorf("error consuming reset token: %w", err)
		}
		if rt.Expires.Before(s.now()) {
			return common.WithReason(common.ErrResetTokenExpired, common.ReasonExpiredActionCode)
		}
		if err := s.repomanager.Users(tx).UpdateCredentials(ctx, rt.UserID, salt, verifier); err != nil {
			return fmt.Errorf("error updating credentials: %w", err)
		}
		if err := s.repomanager.RefreshTokens(tx).DeleteByUser(ctx, rt.UserID); err != nil {
			return fmt.Errorf("error revoking refresh tokens: %w", err)
		}
		return nil
	})
}

// StartGitHubLogin begins a device sign in.
func (s *UserService) StartGitHubLogin(ctx context.Context) (*auth.DeviceCode, error) {
	if s.github == nil {
		return nil, githubDisabled()
	}
	code, err := s.github.Start(ctx)
	if err != nil {
		return nil, common.WithReason(err, common.ReasonNetworkRequestFailed)
	}
	return code, nil
}

// CompleteGitHubLogin waits for the device code to be authorized and signs
// the GitHub account in. A password account with the same email is linked
// only when GitHub has verified that email.
func (s *UserService) CompleteGitHubLogin(ctx context.Context, deviceCode string) (*Session, error) {
	if s.github == nil {
		return nil, githubDisabled()
	}
	id, err := s.github.Complete(ctx, deviceCode)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return nil, common.WithReason(err, common.ReasonInvalidDeviceCode)
	case errors.Is(err, common.ErrorUnauthorized):
		return nil, common.WithReason(err, common.ReasonAccessDenied)
	case err != nil:
		return nil, common.WithReason(err, common.ReasonNetworkRequestFailed)
	}

	users := s.repomanager.Users(s.db)

	user, err := users.GetByGitHubID(ctx, id.ID)
	if err == nil {
		return s.startSession(ctx, user)
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	email := strings.ToLower(id.Email)
	user, err = users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if !id.EmailVerified {
			return nil, common.WithReason(fmt.Errorf("github account %d: %w", id.ID, common.ErrorAlreadyExists), common.ReasonAccountExists)
		}
		if err := users.LinkGitHub(ctx, user.ID, id.ID); err != nil {
			return nil, fmt.Errorf("error linking github account: %w", err)
		}
		user.GitHubID = id.ID
		user.EmailVerified = true
		s.log.Info(ctx, "github account linked", "user_id", user.ID)
	case errors.Is(err, common.ErrorNotFound):
		user, err = users.Create(ctx, &models.User{
			Email:         email,
			DisplayName:   id.DisplayName(),
			EmailVerified: id.EmailVerified,
			GitHubID:      id.ID,
		})
		if err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return nil, common.WithReason(fmt.Errorf("error creating user: %w", err), common.ReasonAccountExists)
			}
			return nil, fmt.Errorf("error creating user: %w", err)
		}
		s.log.Info(ctx, "user registered via github", "user_id", user.ID)
	default:
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	return s.startSession(ctx, user)
}

// GetMe loads the account of the signed-in user.
func (s *UserService) GetMe(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.WithReason(fmt.Errorf("user %s: %w", userID, err), common.ReasonUserNotFound)
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return user, nil
}

// PhotoURL returns a download link for the user's photo, or "" when there
// is none or it cannot be signed.
func (s *UserService) PhotoURL(ctx context.Context, user *models.User) string {
	if user.PhotoKey == "" {
		return ""
	}
	url, err := s.blobs.PresignGet(ctx, user.PhotoKey)
	if err != nil {
		s.log.Warn(ctx, "presigning profile photo", "user_id", user.ID, "err", err)
		return ""
	}
	return url
}

// RequestProfilePhotoUpload returns the key and a presigned PUT for a new
// profile photo. The photo takes effect with UpdateProfile.
func (s *UserService) RequestProfilePhotoUpload(ctx context.Context, userID, fileName, contentType string, size int64) (key, url string, err error) {
	if err := validateImage(contentType, size); err != nil {
		return "", "", err
	}
	name := path.Base(strings.TrimSpace(fileName))
	if name == "." || name == "/" {
		return "", "", common.WithReason(fmt.Errorf("file name %q: %w", fileName, common.ErrorValidation), common.ReasonProfileInvalidArgument)
	}
	key = blob.ProfilePhotoKey(userID, name)
	url, err = s.blobs.PresignPut(ctx, key, contentType, size)
	if err != nil {
		return "", "", fmt.Errorf("error presigning upload: %w", err)
	}
	return key, url, nil
}

// UpdateProfile sets the display name and, when photoKey is not empty, the
// profile photo. A replaced photo is deleted best-effort.
func (s *UserService) UpdateProfile(ctx context.Context, userID, displayName, photoKey string) (*models.User, error) {
	users := s.repomanager.Users(s.db)
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	oldKey := user.PhotoKey
	newKey := oldKey
	if photoKey != "" {
		if !blob.IsProfilePhotoKey(userID, photoKey) {
			return nil, common.WithReason(fmt.Errorf("photo key %q: %w", photoKey, common.ErrorValidation), common.ReasonProfileInvalidArgument)
		}
		newKey = photoKey
	}

	name := strings.TrimSpace(displayName)
	if err := users.UpdateProfile(ctx, userID, name, newKey); err != nil {
		return nil, fmt.Errorf("error updating profile: %w", err)
	}
	user.DisplayName = name
	user.PhotoKey = newKey

	if oldKey != "" && oldKey != newKey {
		s.deleteBlob(ctx, oldKey, cleanupProfilePhoto)
	}
	return user, nil
}

// DeleteAccount removes the account together with its posts and tokens.
// Stored images are deleted best-effort afterwards.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("error loading user: %w", err)
	}
	posts, err := s.repomanager.Posts(s.db).ListByAuthor(ctx, userID)
	if err != nil {
		return fmt.Errorf("error listing posts: %w", err)
	}

	if err := s.repomanager.Users(s.db).Delete(ctx, userID); err != nil {
		return fmt.Errorf("error deleting user: %w", err)
	}
	s.log.Info(ctx, "account deleted", "user_id", userID, "posts", len(posts))

	if user.PhotoKey != "" {
		s.deleteBlob(ctx, user.PhotoKey, cleanupProfilePhoto)
	}
	for _, p := range posts {
		if p.HasImage() {
			s.deleteBlob(ctx, p.ImageKey, cleanupPostImage)
		}
	}
	return nil
}

// --- helpers below ---

func (s *UserService) startSession(ctx context.Context, user *models.User) (*Session, error) {
	now := s.now()
	if err := s.repomanager.Users(s.db).TouchLastSignIn(ctx, user.ID, now); err != nil {
		s.log.Warn(ctx, "recording sign in", "user_id", user.ID, "err", err)
	} else {
		user.LastSignInAt = now
	}

	pair, err := s.generateTokenPair(ctx, user.ID, s.db)
	if err != nil {
		return nil, err
	}
	return &Session{TokenPair: *pair, User: user}, nil
}

func (s *UserService) deleteBlob(ctx context.Context, key, kind string) {
	if err := s.blobs.Delete(ctx, key); err != nil {
		s.log.Warn(ctx, "blob cleanup failed", "key", key, "kind", kind, "err", err)
		s.observer.BlobCleanupFailed(kind)
	}
}

func (s *UserService) getRandomSalt() []byte { return common.RandomBytes(cryptox.SaltSize) }

func (s *UserService) generateAccessToken(userID string) (string, error) {
	return auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *UserService) generateTokenPair(ctx context.Context, userID string, tx dbx.DBTX) (*TokenPair, error) {
	access, err := s.generateAccessToken(userID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh := common.RandomHex(common.RefreshTokenBytes)
	refreshRepo := s.repomanager.RefreshTokens(tx)
	now := s.now()
	if n, err := refreshRepo.DeleteExpired(ctx, userID, now); err != nil {
		s.log.Warn(ctx, "pruning refresh tokens failed", "err", err)
	} else if n > 0 {
		s.log.Debug(ctx, "pruned refresh tokens", "count", n)
	}
	if err := refreshRepo.Create(ctx, userID, refresh, now.Add(s.refreshTokenValidityDuration)); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", common.WithReason(fmt.Errorf("email: %w", common.ErrorValidation), common.ReasonMissingEmail)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", common.WithReason(fmt.Errorf("email %q: %w", email, common.ErrorValidation), common.ReasonInvalidEmail)
	}
	return email, nil
}

func invalidCredential() error {
	return common.WithReason(common.ErrorUnauthorized, common.ReasonInvalidCredential)
}

func githubDisabled() error {
	return common.WithReason(fmt.Errorf("github sign in: %w", common.ErrorForbidden), common.ReasonProviderDisabled)
}
