package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/vidcrunch/vidcrunch/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates API route registration.
type Routes struct {
	handlers *handlers.Provider
}

func NewRoutes(provider *handlers.Provider) *Routes {
	return &Routes{handlers: provider}
}

// Register attaches the API routes. The browser client calls these at the
// root, so there is no version prefix.
func (r *Routes) Register(router gin.IRouter) {
	router.GET("/history", r.handlers.History.List)
	router.POST("/history", r.handlers.History.Create)
	router.DELETE("/history", r.handlers.History.Delete)
	router.POST("/sign-upload", r.handlers.Sign.SignUpload)
}
