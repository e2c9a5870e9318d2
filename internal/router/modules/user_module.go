package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/textmorph/auth-service/internal/interface/http"
)

// UserModule wires the credential endpoints.
// Public: GET /api/ping, POST /api/register, POST /api/login,
// GET/PUT /api/users/:id, GET /api/users/search
type UserModule struct {
	Handler *handlers.UserHandler
}

func NewUserModule(h *handlers.UserHandler) *UserModule {
	return &UserModule{Handler: h}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rg.GET("/ping", m.Handler.Ping)
	rg.POST("/register", m.Handler.Register)
	rg.POST("/login", m.Handler.Login)

	// Static route before the :id param so Gin routes /users/search here
	rg.GET("/users/search", m.Handler.Search)
	rg.GET("/users/:id", m.Handler.GetProfile)
	rg.PUT("/users/:id", m.Handler.UpdateProfile)
}
