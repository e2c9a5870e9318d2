package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/textmorph/auth-service/internal/interface/http"
)

// ResetModule wires the password reset flow.
type ResetModule struct {
	Handler *handlers.ResetHandler
}

func NewResetModule(h *handlers.ResetHandler) *ResetModule {
	return &ResetModule{Handler: h}
}

func (m *ResetModule) Register(rg *gin.RouterGroup) {
	rg.POST("/password/reset/init", m.Handler.Init)
	rg.POST("/password/reset/confirm", m.Handler.Confirm)
}
