package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/vidtube-accounts/internal/application"
	"github.com/oksasatya/vidtube-accounts/internal/domain/entity"
	"github.com/oksasatya/vidtube-accounts/internal/interface/middleware"
	"github.com/oksasatya/vidtube-accounts/pkg/apperror"
	"github.com/oksasatya/vidtube-accounts/pkg/helpers"
	"github.com/oksasatya/vidtube-accounts/pkg/response"
	"github.com/oksasatya/vidtube-accounts/pkg/validation"
)

// maxUploadBytes caps a multipart body (avatar plus cover).
const maxUploadBytes = 16 << 20

type UserHandler struct {
	Svc       *userapp.Service
	Logger    *logrus.Logger
	Cookies   *helpers.Manager
	UploadDir string
}

func NewUserHandler(svc *userapp.Service, logger *logrus.Logger, cookies *helpers.Manager, uploadDir string) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger, Cookies: cookies, UploadDir: uploadDir}
}

type registerRequest struct {
	FullName string `form:"fullName"`
	UserName string `form:"userName"`
	Email    string `form:"email" binding:"omitempty,email"`
	Password string `form:"password" binding:"omitempty,max=72"`
}

type loginRequest struct {
	UserName string `json:"userName" form:"userName"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password" binding:"required"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" form:"oldPassword"`
	NewPassword string `json:"newPassword" form:"newPassword" binding:"omitempty,pwd"`
}

type updateAccountRequest struct {
	FullName string `json:"fullName" form:"fullName"`
	Email    string `json:"email" form:"email" binding:"omitempty,email"`
}

type searchRequest struct {
	Q    string `form:"q"`
	Size int    `form:"size" binding:"omitempty,min=1,max=50"`
}

func invalidPayload(err error) error {
	return apperror.Validation("Invalid payload").WithDetails(validation.ToDetails(err))
}

// Register accepts multipart form fields plus avatar (required) and coverImage (optional) files.
func (h *UserHandler) Register(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		_ = c.Error(invalidPayload(err))
		return
	}
	avatar, err := h.stage(c, "avatar")
	if err != nil {
		_ = c.Error(err)
		return
	}
	cover, err := h.stage(c, "coverImage")
	if err != nil {
		h.discard(avatar)
		_ = c.Error(err)
		return
	}

	u, err := h.Svc.Register(c.Request.Context(), userapp.RegisterInput{
		FullName:       req.FullName,
		UserName:       req.UserName,
		Email:          req.Email,
		Password:       req.Password,
		AvatarPath:     avatar,
		CoverImagePath: cover,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, u, "User registered successfully")
}

func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		_ = c.Error(invalidPayload(err))
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), userapp.LoginInput{
		UserName: req.UserName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	pair := res.Tokens
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{
		"user":         res.User,
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "User logged in successfully")
}

func (h *UserHandler) Logout(c *gin.Context) {
	if err := h.Svc.Logout(c.Request.Context(), c.GetString(middleware.CtxUserIDKey)); err != nil {
		_ = c.Error(err)
		return
	}
	h.Cookies.Clear(c)
	response.Success(c, http.StatusOK, gin.H{}, "User logged out")
}

// Refresh reads the refresh token from its cookie, then from the request body.
func (h *UserHandler) Refresh(c *gin.Context) {
	token := helpers.ExtractToken(c, helpers.RefreshTokenSources)
	pair, err := h.Svc.Refresh(c.Request.Context(), token)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "Access token refreshed")
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		_ = c.Error(invalidPayload(err))
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.ChangePassword(c.Request.Context(), uid, req.OldPassword, req.NewPassword); err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{}, "Password changed successfully")
}

func (h *UserHandler) CurrentUser(c *gin.Context) {
	u, err := h.Svc.CurrentUser(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, u, "User fetched successfully")
}

func (h *UserHandler) UpdateAccount(c *gin.Context) {
	var req updateAccountRequest
	if err := c.ShouldBind(&req); err != nil {
		_ = c.Error(invalidPayload(err))
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	u, err := h.Svc.UpdateAccountDetails(c.Request.Context(), uid, req.FullName, req.Email)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, u, "Account details updated successfully")
}

func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	h.replaceImage(c, "avatar", h.Svc.UpdateAvatar, "Avatar image updated successfully")
}

func (h *UserHandler) UpdateCoverImage(c *gin.Context) {
	h.replaceImage(c, "coverImage", h.Svc.UpdateCoverImage, "Cover image updated successfully")
}

type imageUpdater func(ctx context.Context, userID, stagedPath string) (*entity.User, error)

func (h *UserHandler) replaceImage(c *gin.Context, field string, update imageUpdater, message string) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	path, err := h.stage(c, field)
	if err != nil {
		_ = c.Error(err)
		return
	}
	u, err := update(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), path)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, u, message)
}

func (h *UserHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		_ = c.Error(invalidPayload(err))
		return
	}
	out, err := h.Svc.SearchUsers(c.Request.Context(), req.Q, req.Size)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, out, "Users fetched successfully")
}

// stage saves the named multipart file under UploadDir and returns its path.
// A missing file yields "" so the service can decide whether it was required.
func (h *UserHandler) stage(c *gin.Context, field string) (string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || errors.Is(err, multipart.ErrMessageTooLarge) {
			return "", apperror.Validation("Upload is too large")
		}
		return "", apperror.Wrap(apperror.KindValidation, "Invalid "+field+" upload", err)
	}
	dst := filepath.Join(h.UploadDir, uuid.NewString()+strings.ToLower(filepath.Ext(fh.Filename)))
	if err := c.SaveUploadedFile(fh, dst); err != nil {
		return "", apperror.Internal("Failed to stage upload", err)
	}
	return dst, nil
}

func (h *UserHandler) discard(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		h.Logger.WithError(err).WithField("path", path).Warn("remove staged upload failed")
	}
}
