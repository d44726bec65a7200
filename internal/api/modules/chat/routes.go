package chat

import (
	"github.com/ethanbaker/ytchat/internal/orchestrator"
	"github.com/ethanbaker/ytchat/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Controller holds the chat module's collaborators. Dependencies are passed
// in explicitly rather than held in package-level state, so all per-user
// data stays on the session objects flowing through each handler.
type Controller struct {
	orch  *orchestrator.Orchestrator
	store *session.Store
	log   *logrus.Logger
}

// NewController creates the chat controller
func NewController(orch *orchestrator.Orchestrator, store *session.Store, log *logrus.Logger) *Controller {
	return &Controller{orch: orch, store: store, log: log}
}

// RegisterRoutes registers the routes for the chat module
func RegisterRoutes(g *gin.RouterGroup, ctrl *Controller) {
	group := g.Group("/chat")

	// Session management routes
	group.POST("/sessions", ctrl.CreateSession)                  // Create a new session
	group.GET("/sessions/:uuid", ctrl.GetSession)                // Get an existing session by UUID
	group.DELETE("/sessions/:uuid", ctrl.DeleteSession)          // Delete an existing session
	group.PUT("/sessions/:uuid/credential", ctrl.SetCredential)  // Set the model API key
	group.POST("/sessions/:uuid/video", ctrl.SetVideo)           // Load a video transcript
	group.POST("/sessions/:uuid/messages", ctrl.Ask)             // Ask a question (SSE stream)
	group.POST("/sessions/:uuid/clear", ctrl.ClearHistory)       // Clear the conversation history
}
