package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vidtube-accounts/internal/domain/entity"
	repo "github.com/oksasatya/vidtube-accounts/internal/domain/repository"
	"github.com/oksasatya/vidtube-accounts/pkg/apperror"
	"github.com/oksasatya/vidtube-accounts/pkg/helpers"
)

const (
	avatarFolder = "avatars"
	coverFolder  = "covers"

	defaultSearchSize = 10
	maxSearchSize     = 50
)

// Service orchestrates registration and the session lifecycle:
// Anonymous -> Authenticated (login) -> Authenticated (refresh) -> Anonymous (logout).
type Service struct {
	Repo   repo.UserRepository
	JWT    *helpers.JWTManager
	Media  MediaStorage
	Index  UserIndexer // optional
	Notify Notifier    // optional
	Logger *logrus.Logger
}

func NewService(users repo.UserRepository, jwt *helpers.JWTManager, media MediaStorage, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = helpers.NewNopLogger()
	}
	return &Service{Repo: users, JWT: jwt, Media: media, Logger: logger}
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

type RegisterInput struct {
	FullName string
	UserName string
	Email    string
	Password string
	// AvatarPath and CoverImagePath point at staged uploads; the service
	// removes them once the flow ends.
	AvatarPath     string
	CoverImagePath string
}

type LoginInput struct {
	UserName string
	Email    string
	Password string
}

type LoginResult struct {
	User   *entity.User
	Tokens TokenPair
}

func blank(vals ...string) bool {
	for _, v := range vals {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

// Register creates an account after the uniqueness check and avatar upload succeed.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	defer s.discardStaged(in.AvatarPath, in.CoverImagePath)

	if blank(in.FullName, in.UserName, in.Email, in.Password) {
		return nil, apperror.Validation("All fields are required")
	}
	userName := entity.NormalizeHandle(in.UserName)
	email := entity.NormalizeEmail(in.Email)

	existing, err := s.Repo.FindByUserNameOrEmail(ctx, userName, email)
	switch {
	case err == nil && existing != nil:
		return nil, apperror.Conflict("User with email or username already exists")
	case err != nil && !errors.Is(err, repo.ErrNotFound):
		return nil, apperror.Internal("Failed to check existing users", err)
	}

	if strings.TrimSpace(in.AvatarPath) == "" {
		return nil, apperror.Validation("Avatar file is required")
	}
	avatarURL, err := s.upload(ctx, in.AvatarPath, avatarFolder)
	if err != nil {
		return nil, apperror.Upstream("Failed to upload avatar", err)
	}
	var coverURL string
	if strings.TrimSpace(in.CoverImagePath) != "" {
		if coverURL, err = s.upload(ctx, in.CoverImagePath, coverFolder); err != nil {
			s.Logger.WithError(err).WithField("user_name", userName).Warn("cover image upload failed; continuing without it")
			coverURL = ""
		}
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, apperror.Internal("Failed to secure password", err)
	}
	u := &entity.User{
		UserName:   userName,
		Email:      email,
		FullName:   strings.TrimSpace(in.FullName),
		Avatar:     avatarURL,
		CoverImage: coverURL,
		Password:   hash,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, apperror.Conflict("User with email or username already exists")
		}
		return nil, apperror.Internal("Failed to create user", err)
	}

	created, err := s.Repo.GetByID(ctx, u.ID)
	if err != nil || created == nil {
		return nil, apperror.Internal("Something went wrong while registering the user", err)
	}
	counters.Add(metricRegistered, 1)
	s.Logger.WithField("user_id", created.ID).Info("user registered")

	s.index(ctx, created)
	if s.Notify != nil {
		if nErr := s.Notify.UserRegistered(ctx, created); nErr != nil {
			s.Logger.WithError(nErr).WithField("user_id", created.ID).Warn("welcome email not queued")
		}
	}
	return created.Sanitized(), nil
}

// Login verifies credentials by user name or email and opens a session.
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	userName := entity.NormalizeHandle(in.UserName)
	email := entity.NormalizeEmail(in.Email)
	if userName == "" && email == "" {
		return nil, apperror.Validation("Username or email is required")
	}

	u, err := s.Repo.FindByUserNameOrEmail(ctx, userName, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.NotFound("User does not exist")
		}
		return nil, apperror.Internal("Failed to look up user", err)
	}
	if !helpers.CompareHashAndPassword(u.Password, in.Password) {
		counters.Add(metricLoginFailures, 1)
		return nil, apperror.Unauthorized("Invalid user credentials")
	}

	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, err
	}
	counters.Add(metricLogins, 1)
	return &LoginResult{User: u.Sanitized(), Tokens: pair}, nil
}

// IssueTokens mints a new pair and stores the refresh token, superseding any previous one.
func (s *Service) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(helpers.AccessIdentity{
		UserID:   u.ID,
		UserName: u.UserName,
		Email:    u.Email,
		FullName: u.FullName,
	})
	if err != nil {
		return TokenPair{}, s.tokenError(u.ID, "generate access token failed", err)
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID)
	if err != nil {
		return TokenPair{}, s.tokenError(u.ID, "generate refresh token failed", err)
	}
	if err := s.Repo.UpdateRefreshToken(ctx, u.ID, refresh); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("persist refresh token failed")
		return TokenPair{}, apperror.Internal("Failed to generate tokens", err)
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

func (s *Service) tokenError(userID, msg string, err error) error {
	s.Logger.WithError(err).WithField("user_id", userID).Error(msg)
	if errors.Is(err, helpers.ErrTokenConfig) {
		return apperror.Configuration("Failed to generate tokens", err)
	}
	return apperror.Internal("Failed to generate tokens", err)
}

// Logout forgets the stored refresh token. Outstanding access tokens stay
// valid until they expire.
func (s *Service) Logout(ctx context.Context, userID string) error {
	if err := s.Repo.UpdateRefreshToken(ctx, userID, ""); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperror.Unauthorized("Unauthorized request")
		}
		return apperror.Internal("Failed to log out", err)
	}
	counters.Add(metricLogouts, 1)
	return nil
}

// Refresh exchanges the currently stored refresh token for a new pair.
// Any other token for the user, even if signed and unexpired, is rejected.
func (s *Service) Refresh(ctx context.Context, token string) (TokenPair, error) {
	if token == "" {
		return TokenPair{}, apperror.Unauthorized("Unauthorized request")
	}
	claims, err := s.JWT.ParseRefreshToken(token)
	if err != nil {
		counters.Add(metricRefreshRejects, 1)
		return TokenPair{}, apperror.Wrap(apperror.KindUnauthorized, "Invalid refresh token", err)
	}
	u, err := s.Repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			counters.Add(metricRefreshRejects, 1)
			return TokenPair{}, apperror.Unauthorized("Invalid refresh token")
		}
		return TokenPair{}, apperror.Internal("Failed to look up user", err)
	}
	if u.RefreshToken == "" || subtle.ConstantTimeCompare([]byte(u.RefreshToken), []byte(token)) != 1 {
		counters.Add(metricRefreshRejects, 1)
		return TokenPair{}, apperror.Unauthorized("Refresh token is expired or used")
	}

	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return TokenPair{}, err
	}
	counters.Add(metricRefreshes, 1)
	return pair, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if blank(oldPassword, newPassword) {
		return apperror.Validation("Old and new password are required")
	}
	u, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if !helpers.CompareHashAndPassword(u.Password, oldPassword) {
		return apperror.Unauthorized("Invalid old password")
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return apperror.Internal("Failed to secure password", err)
	}
	if err := s.Repo.UpdatePassword(ctx, u.ID, hash); err != nil {
		return apperror.Internal("Failed to change password", err)
	}
	if s.Notify != nil {
		if nErr := s.Notify.PasswordChanged(ctx, u); nErr != nil {
			s.Logger.WithError(nErr).WithField("user_id", u.ID).Warn("password change email not queued")
		}
	}
	return nil
}

func (s *Service) CurrentUser(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.Sanitized(), nil
}

// UpdateAccountDetails changes display name and email; the email must not belong to another user.
func (s *Service) UpdateAccountDetails(ctx context.Context, userID, fullName, email string) (*entity.User, error) {
	if blank(fullName, email) {
		return nil, apperror.Validation("Full name and email are required")
	}
	email = entity.NormalizeEmail(email)

	other, err := s.Repo.GetByEmail(ctx, email)
	switch {
	case err == nil && other != nil && other.ID != userID:
		return nil, apperror.Conflict("Email is already in use")
	case err != nil && !errors.Is(err, repo.ErrNotFound):
		return nil, apperror.Internal("Failed to check email", err)
	}

	if err := s.Repo.UpdateAccount(ctx, userID, strings.TrimSpace(fullName), email); err != nil {
		return nil, s.updateError(err)
	}
	return s.reload(ctx, userID)
}

func (s *Service) UpdateAvatar(ctx context.Context, userID, stagedPath string) (*entity.User, error) {
	defer s.discardStaged(stagedPath)
	if strings.TrimSpace(stagedPath) == "" {
		return nil, apperror.Validation("Avatar file is missing")
	}
	url, err := s.upload(ctx, stagedPath, avatarFolder)
	if err != nil {
		return nil, apperror.Upstream("Error while uploading avatar", err)
	}
	if err := s.Repo.UpdateAvatar(ctx, userID, url); err != nil {
		return nil, s.updateError(err)
	}
	return s.reload(ctx, userID)
}

func (s *Service) UpdateCoverImage(ctx context.Context, userID, stagedPath string) (*entity.User, error) {
	defer s.discardStaged(stagedPath)
	if strings.TrimSpace(stagedPath) == "" {
		return nil, apperror.Validation("Cover image file is missing")
	}
	url, err := s.upload(ctx, stagedPath, coverFolder)
	if err != nil {
		return nil, apperror.Upstream("Error while uploading cover image", err)
	}
	if err := s.Repo.UpdateCoverImage(ctx, userID, url); err != nil {
		return nil, s.updateError(err)
	}
	return s.reload(ctx, userID)
}

// SearchUsers queries the profile index; without one it returns no results.
func (s *Service) SearchUsers(ctx context.Context, q string, size int) ([]map[string]any, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperror.Validation("Search query is required")
	}
	if size <= 0 || size > maxSearchSize {
		size = defaultSearchSize
	}
	if s.Index == nil {
		return []map[string]any{}, nil
	}
	out, err := s.Index.SearchUsers(ctx, q, size)
	if err != nil {
		return nil, apperror.Internal("Search failed", err)
	}
	return out, nil
}

func (s *Service) getUser(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.NotFound("User does not exist")
		}
		return nil, apperror.Internal("Failed to look up user", err)
	}
	return u, nil
}

func (s *Service) reload(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.index(ctx, u)
	return u.Sanitized(), nil
}

func (s *Service) updateError(err error) error {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return apperror.NotFound("User does not exist")
	case errors.Is(err, repo.ErrDuplicate):
		return apperror.Conflict("Email is already in use")
	default:
		return apperror.Internal("Failed to update user", err)
	}
}

// upload treats an empty URL as a failed upload.
func (s *Service) upload(ctx context.Context, path, folder string) (string, error) {
	if s.Media == nil {
		return "", errors.New("media storage not configured")
	}
	url, err := s.Media.Upload(ctx, path, folder)
	if err == nil && url == "" {
		err = errors.New("media storage returned no url")
	}
	if err != nil {
		counters.Add(metricUploadFailures, 1)
		s.Logger.WithError(err).WithField("folder", folder).Warn("media upload failed")
		return "", err
	}
	return url, nil
}

func (s *Service) index(ctx context.Context, u *entity.User) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexUser(ctx, u); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
	}
}

// discardStaged removes staged upload files whatever the outcome of the flow.
func (s *Service) discardStaged(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.Logger.WithError(err).WithField("path", p).Warn("remove staged upload failed")
		}
	}
}
