package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-profile-service/internal/application"
	"github.com/oksasatya/go-profile-service/pkg/response"
	"github.com/oksasatya/go-profile-service/pkg/validation"
)

const (
	msgEmailTaken         = "Email already registered"
	msgInvalidCredentials = "Incorrect email or password"
	msgValidation         = "invalid payload"
)

type AuthHandler struct {
	Auth   *application.AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(auth *application.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, Logger: logger}
}

type signupRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required"`
	Name     *string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// loginForm is the OAuth2 password grant shape; username carries the email.
type loginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Signup POST /auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusUnprocessableEntity, msgValidation, validation.ToDetails(err))
		return
	}

	u, err := h.Auth.Signup(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, application.ErrEmailTaken) {
			count(statSignupEmailTaken)
			response.Error(c, http.StatusBadRequest, msgEmailTaken, nil)
			return
		}
		h.Logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error("signup failed")
		response.Internal(c)
		return
	}
	count(statSignupOK)
	c.JSON(http.StatusCreated, u.Profile())
}

// Login POST /auth/login, JSON or form encoded
func (h *AuthHandler) Login(c *gin.Context) {
	email, password, ok := h.bindLogin(c)
	if !ok {
		return
	}

	tok, err := h.Auth.Login(c.Request.Context(), email, password)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			count(statLoginFailed)
			response.Error(c, http.StatusBadRequest, msgInvalidCredentials, nil)
			return
		}
		h.Logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error("login failed")
		response.Internal(c)
		return
	}
	count(statLoginOK)
	c.JSON(http.StatusOK, tokenResponse{AccessToken: tok.Token, TokenType: tok.Type})
}

func (h *AuthHandler) bindLogin(c *gin.Context) (email, password string, ok bool) {
	if c.ContentType() == binding.MIMEPOSTForm || c.ContentType() == binding.MIMEMultipartPOSTForm {
		var f loginForm
		if err := c.ShouldBind(&f); err != nil {
			response.Error(c, http.StatusUnprocessableEntity, msgValidation, validation.ToDetails(err))
			return "", "", false
		}
		return f.Username, f.Password, true
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusUnprocessableEntity, msgValidation, validation.ToDetails(err))
		return "", "", false
	}
	return req.Email, req.Password, true
}
