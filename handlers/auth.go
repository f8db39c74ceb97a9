package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	mw "github.com/padraicbc/juniortour/middleware"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HashPasswordForUser validates username/password input and returns a bcrypt hash for storage.
func HashPasswordForUser(username, password string) (string, error) {
	if strings.TrimSpace(username) == "" {
		return "", errors.New("username is required")
	}
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password is required")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedPassword), nil
}

// Signin validates admin credentials and returns a JWT valid for 30 days.
func (h *Handler) Signin(c echo.Context) error {
	var creds credentials
	if err := bindStrict(c, &creds); err != nil {
		return err
	}
	user, err := h.svc.Signin(c.Request().Context(), creds.Username, creds.Password)
	if err != nil {
		return err
	}

	token, expiresAt, err := mw.IssueToken(user.Username, h.JWTKey, time.Now())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "sign token").SetInternal(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"ok":        true,
		"token":     token,
		"expiresAt": expiresAt,
	})
}
