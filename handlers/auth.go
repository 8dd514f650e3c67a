package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/padraicbc/f1picks/apperr"
	"github.com/padraicbc/f1picks/logger"
	mw "github.com/padraicbc/f1picks/middleware"
	"github.com/padraicbc/f1picks/models"
)

type credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Username    string `json:"username" validate:"required,max=32"`
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"displayName" validate:"max=64"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
}

type tokenResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
	Admin bool         `json:"admin"`
}

// HashPassword returns a bcrypt hash for storage.
func HashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password is required")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hashedPassword), nil
}

// Register creates an account and signs the new user in.
func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user := &models.User{
		Username:    req.Username,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Password:    hash,
	}
	if err := h.store.CreateUser(c.Request().Context(), user); err != nil {
		return httpError(err)
	}
	h.log.Info("user registered", logger.User(user.ID), zap.String("username", user.Username))

	return h.respondWithToken(c, http.StatusCreated, user)
}

// Signin validates credentials and returns a JWT token valid for 30 days.
func (h *Handler) Signin(c echo.Context) error {
	var creds credentials
	if err := bind(c, &creds); err != nil {
		return err
	}
	creds.Username = strings.TrimSpace(creds.Username)

	user, err := h.store.GetUserByUsername(c.Request().Context(), creds.Username)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "incorrect username or password")
		}
		return httpError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "incorrect username or password")
	}

	return h.respondWithToken(c, http.StatusOK, user)
}

func (h *Handler) respondWithToken(c echo.Context, status int, user *models.User) error {
	admin := h.isAdmin(user.Username)
	token, err := mw.IssueToken(h.JWTKey, user.ID, user.Username, admin, tokenTTL)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(status, tokenResponse{Token: token, User: user, Admin: admin})
}
