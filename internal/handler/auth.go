package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/orablu/space-adoption/internal/config"
	"github.com/orablu/space-adoption/internal/logger"
	"github.com/orablu/space-adoption/internal/model"
	"github.com/orablu/space-adoption/internal/utils"
)

// AuthHandler issues admin access tokens.  The single admin account comes
// from configuration.
type AuthHandler struct {
	Cfg config.Config
}

func NewAuthHandler(cfg config.Config) *AuthHandler {
	return &AuthHandler{Cfg: cfg}
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResp struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// Login handles POST /api/admin/login.  It answers 404 when admin auth is
// disabled, since there is nothing to log in to.
func (h *AuthHandler) Login(c echo.Context) error {
	if !h.Cfg.AdminAuthEnabled {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "admin login disabled"})
	}
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}

	admin := model.Admin{Username: h.Cfg.AdminUsername, PasswordHash: h.Cfg.AdminPasswordHash, Role: model.RoleAdmin}
	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(admin.Username)) == 1
	// Always run bcrypt so a wrong username costs the same as a wrong password.
	passOK := utils.VerifyPassword(admin.PasswordHash, req.Password)
	if !userOK || !passOK {
		logger.WarnCtx(c.Request().Context(), "admin login rejected", zap.String("username", req.Username), zap.String("ip", c.RealIP()))
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, admin.Username, admin.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, loginResp{Token: access.Token, Expires: access.Exp})
}
