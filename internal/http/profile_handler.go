package http

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blogit/internal/service"
)

const photoField = "profilePhoto"

// multipart agrega cabeceras y boundaries alrededor del archivo.
const multipartOverhead = 64 << 10

var allowedPhotoExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true}

// ProfileHandler agrupa operaciones del usuario autenticado sobre su cuenta.
type ProfileHandler struct {
	logger         *zap.Logger
	userServ       *service.UserService
	maxUploadBytes int64
}

func NewProfileHandler(logger *zap.Logger, userServ *service.UserService, maxUploadBytes int64) *ProfileHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 2 << 20
	}
	return &ProfileHandler{
		logger:         logger,
		userServ:       userServ,
		maxUploadBytes: maxUploadBytes,
	}
}

// ChangePassword maneja PUT /profile/password.
func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	claims, ok := GetSessionClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid change password request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := h.userServ.ChangePassword(c.Request.Context(), claims.UserID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Current password is incorrect"})
			return
		}
		writeServiceError(c, h.logger, "change password failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

// UpdatePhoto maneja PUT /profile/photo (multipart, campo profilePhoto).
func (h *ProfileHandler) UpdatePhoto(c *gin.Context) {
	claims, ok := GetSessionClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)
	header, err := c.FormFile(photoField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "profilePhoto file is required"})
		return
	}
	if header.Size > h.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}
	if !allowedPhotoExt[strings.ToLower(filepath.Ext(header.Filename))] {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "Only images (JPEG, JPG, PNG, GIF) are allowed"})
		return
	}

	f, err := header.Open()
	if err != nil {
		h.logger.Error("open upload failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgGenericFailure})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.maxUploadBytes+1))
	if err != nil {
		h.logger.Error("read upload failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgGenericFailure})
		return
	}
	if int64(len(data)) > h.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "application/octet-stream" {
		contentType = ""
	}
	user, err := h.userServ.UpdateProfilePhoto(c.Request.Context(), claims.UserID, data, contentType)
	if err != nil {
		writeServiceError(c, h.logger, "update profile photo failed", err)
		return
	}
	c.JSON(http.StatusOK, user.Profile())
}
