package router

import (
	"github.com/sirupsen/logrus"

	userapp "github.com/textmorph/auth-service/internal/application"
	handlers "github.com/textmorph/auth-service/internal/interface/http"
	"github.com/textmorph/auth-service/internal/router/modules"
)

// Deps holds the constructed collaborators the route modules need.
// Everything is built in main and passed down; no package-level state.
type Deps struct {
	Service      *userapp.Service
	Logger       *logrus.Logger
	DebugMetrics bool
}

// InitModules registers all application modules with the router registry.
// Call once during startup.
func InitModules(r *Registry, d Deps) {
	userHandler := handlers.NewUserHandler(d.Service, d.Logger)
	resetHandler := handlers.NewResetHandler(d.Service, d.Logger)

	r.Add(modules.NewUserModule(userHandler))
	r.Add(modules.NewResetModule(resetHandler))
	if d.DebugMetrics {
		r.Add(modules.NewDebugModule())
	}
}
