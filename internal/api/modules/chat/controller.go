package chat

import (
	"errors"
	"io"
	"net/http"

	"github.com/ethanbaker/ytchat/internal/orchestrator"
	"github.com/ethanbaker/ytchat/internal/session"
	"github.com/ethanbaker/ytchat/internal/transcript"
	"github.com/ethanbaker/ytchat/pkg/sdk"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreateSession handles POST requests to create a new session
func (ct *Controller) CreateSession(c *gin.Context) {
	// Body is optional; it may carry the API key up front
	var req sdk.CreateSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Could not parse request body", err).AsGinResponse())
			return
		}
	}

	sess, err := ct.store.Create(c.Request.Context())
	if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to create session", err).AsGinResponse())
		return
	}

	if req.APIKey != "" {
		sess.SetCredential(req.APIKey)
	}

	c.JSON(sdk.NewSuccessResponse("Session created successfully", toSDKSession(sess)).AsGinResponse())
}

// GetSession handles GET requests to retrieve an existing session by UUID
func (ct *Controller) GetSession(c *gin.Context) {
	sess, ok := ct.findSession(c)
	if !ok {
		return
	}

	c.JSON(sdk.NewSuccessResponse("Session retrieved successfully", toSDKSession(sess)).AsGinResponse())
}

// DeleteSession handles DELETE requests to remove an existing session
func (ct *Controller) DeleteSession(c *gin.Context) {
	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Invalid session id", err).AsGinResponse())
		return
	}

	if err := ct.store.Delete(c.Request.Context(), id); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusNotFound, "Session not found", err).AsGinResponse())
		return
	}

	c.JSON(sdk.NewSuccessResponse[any]("Session deleted successfully", nil).AsGinResponse())
}

// SetCredential handles PUT requests to set the session's model API key
func (ct *Controller) SetCredential(c *gin.Context) {
	var req sdk.SetCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Could not parse request body", err).AsGinResponse())
		return
	}

	sess, ok := ct.findSession(c)
	if !ok {
		return
	}

	if err := ct.orch.SetCredential(sess, req.APIKey); err != nil {
		c.JSON(sdk.NewErrorResponse(errorStatus(err), "Failed to set credential", err).AsGinResponse())
		return
	}

	c.JSON(sdk.NewSuccessResponse("Credential set successfully", toSDKSession(sess)).AsGinResponse())
}

// SetVideo handles POST requests to load a video's transcript into the session
func (ct *Controller) SetVideo(c *gin.Context) {
	var req sdk.SetVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Could not parse request body", err).AsGinResponse())
		return
	}

	sess, ok := ct.findSession(c)
	if !ok {
		return
	}

	summary, err := ct.orch.SetVideo(c.Request.Context(), sess, req.URL)
	if err != nil {
		c.JSON(sdk.NewErrorResponse(errorStatus(err), "Failed to load video transcript", err).AsGinResponse())
		return
	}

	c.JSON(sdk.NewSuccessResponse("Transcript loaded successfully", toSDKSummary(summary)).AsGinResponse())
}

// Ask handles POST requests to ask a question, streaming the answer back as
// server-sent events. Precondition failures are reported as JSON before any
// streaming starts; once streaming has begun, failures arrive as an error
// event on the stream itself.
func (ct *Controller) Ask(c *gin.Context) {
	var req sdk.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Could not parse request body", err).AsGinResponse())
		return
	}

	sess, ok := ct.findSession(c)
	if !ok {
		return
	}

	stream, err := ct.orch.Ask(c.Request.Context(), sess, req.Question)
	if err != nil {
		c.JSON(sdk.NewErrorResponse(errorStatus(err), "Failed to ask question", err).AsGinResponse())
		return
	}
	defer stream.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		if stream.Next() {
			c.SSEvent("chunk", stream.Text())
			return true
		}

		if err := stream.Err(); err != nil {
			ct.log.WithError(err).WithField("session_id", sess.ID).Warn("answer stream failed")
			c.SSEvent("error", err.Error())
		} else {
			c.SSEvent("done", "")
		}
		return false
	})
}

// ClearHistory handles POST requests to discard the conversation history
func (ct *Controller) ClearHistory(c *gin.Context) {
	sess, ok := ct.findSession(c)
	if !ok {
		return
	}

	ct.orch.ClearHistory(sess)
	c.JSON(sdk.NewSuccessResponse("Chat history cleared", toSDKSession(sess)).AsGinResponse())
}

// findSession resolves the :uuid path parameter to a live session, writing
// the error response itself when that fails
func (ct *Controller) findSession(c *gin.Context) (*session.Session, bool) {
	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Invalid session id", err).AsGinResponse())
		return nil, false
	}

	sess, err := ct.store.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusNotFound, "Session not found", err).AsGinResponse())
		return nil, false
	}

	return sess, true
}

// errorStatus maps the error taxonomy onto HTTP status codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, transcript.ErrInvalidURL):
		return http.StatusBadRequest
	case errors.Is(err, transcript.ErrUnavailable):
		return http.StatusNotFound
	case errors.Is(err, orchestrator.ErrNotConfigured):
		return http.StatusConflict
	case errors.Is(err, transcript.ErrProvider), errors.Is(err, orchestrator.ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, orchestrator.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Helper method to convert internal session to sdk session. All mutable
// fields are read through the session's locked accessors; another request
// may be mutating the session concurrently.
func toSDKSession(sess *session.Session) sdk.Session {
	videoID, videoURL, createdAt, updatedAt := sess.Snapshot()

	resp := sdk.Session{
		ID:               sess.ID.String(),
		CreatedAt:        createdAt,
		UpdatedAt:        updatedAt,
		VideoID:          videoID,
		VideoURL:         videoURL,
		HasCredential:    sess.Credential() != "",
		TranscriptLoaded: sess.Transcript() != nil,
	}

	for _, m := range sess.Messages() {
		resp.Messages = append(resp.Messages, sdk.Message{
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}

	return resp
}

// Helper method to convert internal transcript summary to sdk summary
func toSDKSummary(s *transcript.Summary) sdk.TranscriptSummary {
	return sdk.TranscriptSummary{
		VideoID:      s.VideoID,
		URL:          s.URL,
		Title:        s.Title,
		Channel:      s.Channel,
		Duration:     s.Duration,
		Language:     s.Language,
		SegmentCount: s.SegmentCount,
		CharCount:    s.CharCount,
		Cached:       s.Cached,
		Preview:      s.Preview,
	}
}
