package router

import (
	"github.com/oksasatya/go-profile-service/internal/container"
	"github.com/oksasatya/go-profile-service/internal/router/modules"
)

// InitModules adds every feature module to the registry.
// Call once during startup, before RegisterAll.
func InitModules(r *Registry, c *container.Container) {
	r.Add(modules.NewAuthModule(c.AuthHandler))
	r.Add(modules.NewProfileModule(c.ProfileHandler))
	if c.Config.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
