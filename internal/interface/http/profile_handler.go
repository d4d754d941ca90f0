package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-profile-service/internal/application"
	"github.com/oksasatya/go-profile-service/internal/domain/entity"
	"github.com/oksasatya/go-profile-service/internal/interface/middleware"
	"github.com/oksasatya/go-profile-service/pkg/response"
	"github.com/oksasatya/go-profile-service/pkg/validation"
)

const msgUnauthorized = "Could not validate credentials."

type ProfileHandler struct {
	Sessions *application.SessionResolver
	Profiles *application.ProfileService
	Logger   *logrus.Logger
}

func NewProfileHandler(sessions *application.SessionResolver, profiles *application.ProfileService, logger *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{Sessions: sessions, Profiles: profiles, Logger: logger}
}

// updateProfileRequest: an absent or null field is left unchanged.
type updateProfileRequest struct {
	Name *string `json:"name"`
	Bio  *string `json:"bio"`
}

// currentUser resolves the bearer token. On failure it has already written the response.
func (h *ProfileHandler) currentUser(c *gin.Context) (*entity.User, bool) {
	u, err := h.Sessions.Resolve(c.Request.Context(), middleware.BearerToken(c))
	if err == nil {
		return u, true
	}
	if errors.Is(err, application.ErrUnauthorized) {
		count(statUnauthorized)
		response.Unauthorized(c, msgUnauthorized)
		return nil, false
	}
	h.Logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error("resolve session failed")
	response.Internal(c)
	return nil, false
}

// Me GET /profile/me
func (h *ProfileHandler) Me(c *gin.Context) {
	u, ok := h.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.Profiles.Read(u))
}

// UpdateMe PUT /profile/me
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	u, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusUnprocessableEntity, msgValidation, validation.ToDetails(err))
		return
	}

	view, err := h.Profiles.Update(c.Request.Context(), u, application.UpdateProfileInput{Name: req.Name, Bio: req.Bio})
	if err != nil {
		if errors.Is(err, application.ErrUnauthorized) {
			count(statUnauthorized)
			response.Unauthorized(c, msgUnauthorized)
			return
		}
		h.Logger.WithError(err).WithFields(logrus.Fields{"user_id": u.ID, "request_id": c.GetString("request_id")}).Error("update profile failed")
		response.Internal(c)
		return
	}
	c.JSON(http.StatusOK, view)
}
