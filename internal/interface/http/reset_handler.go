package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/textmorph/auth-service/internal/application"
	"github.com/textmorph/auth-service/pkg/response"
	"github.com/textmorph/auth-service/pkg/validation"
)

// ResetHandler serves the password reset flow. Init never reveals whether
// an email is registered.
type ResetHandler struct {
	Svc    *userapp.Service
	Logger *logrus.Logger
}

func NewResetHandler(svc *userapp.Service, logger *logrus.Logger) *ResetHandler {
	return &ResetHandler{Svc: svc, Logger: logger}
}

// Init POST /api/password/reset/init {email}
func (h *ResetHandler) Init(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.InitPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.Logger.WithError(err).Error("reset init failed")
		response.Error[any](c, http.StatusInternalServerError, "reset unavailable", nil)
		return
	}
	// Same answer whether or not the email exists.
	response.Success[any](c, http.StatusOK, nil, "If the email exists, a reset link has been sent.", nil)
}

// Confirm POST /api/password/reset/confirm {token, new_password}
func (h *ResetHandler) Confirm(c *gin.Context) {
	var req struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,pwd"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.ConfirmPasswordReset(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, userapp.ErrResetTokenInvalid) || errors.Is(err, userapp.ErrValidation) {
			response.Error[any](c, http.StatusBadRequest, "invalid or expired reset token", nil)
			return
		}
		h.Logger.WithError(err).Error("reset confirm failed")
		response.Error[any](c, http.StatusInternalServerError, "reset failed", nil)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Password has been reset successfully", nil)
}
