package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-profile-service/internal/interface/http"
)

// ProfileModule routes authenticate inside the handler, so no auth middleware is mounted.
type ProfileModule struct {
	Handler *handlers.ProfileHandler
}

func NewProfileModule(h *handlers.ProfileHandler) *ProfileModule {
	return &ProfileModule{Handler: h}
}

func (m *ProfileModule) Register(rg *gin.RouterGroup) {
	rg.GET("/profile/me", m.Handler.Me)
	rg.PUT("/profile/me", m.Handler.UpdateMe)
}
