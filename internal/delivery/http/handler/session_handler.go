package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stocktake-scan-service/internal/middleware"
	usecaseSession "stocktake-scan-service/internal/usecase/session"
	appErrors "stocktake-scan-service/pkg/errors"
	"stocktake-scan-service/pkg/utils"
)

type SessionHandler struct {
	service *usecaseSession.Service
}

func NewSessionHandler(service *usecaseSession.Service) *SessionHandler {
	return &SessionHandler{service: service}
}

func (h *SessionHandler) RegisterRoutes(router *gin.RouterGroup) {
	sessions := router.Group("/sessions")
	{
		sessions.POST("/start", h.StartSession)
		sessions.POST("/end", h.EndSession)
		sessions.GET("/active", h.GetActiveSession)
		sessions.GET("", h.ListSessions)
		sessions.GET("/:id", h.GetSession)
	}
}

func (h *SessionHandler) StartSession(c *gin.Context) {
	var req usecaseSession.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	result, err := h.service.Start(c.Request.Context(), &req, userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	if result.Conflict != nil {
		c.JSON(http.StatusConflict, gin.H{
			"success":               false,
			"error":                 "A stocktake session is already in progress for this device",
			"conflict_session_id":   result.Conflict.SessionID,
			"conflict_session_name": result.Conflict.SessionName,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"session": result.Session,
	})
}

func (h *SessionHandler) EndSession(c *gin.Context) {
	var req usecaseSession.EndSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.SessionID == uuid.Nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "session_id is required")
		return
	}

	if err := h.service.End(c.Request.Context(), req.SessionID); err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Session ended", nil)
}

func (h *SessionHandler) GetActiveSession(c *gin.Context) {
	deviceID := c.Query("device_id")
	if deviceID == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "device_id query parameter is required")
		return
	}

	session, err := h.service.GetActive(c.Request.Context(), deviceID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	// A missing active session is a normal answer, not an error: the
	// client uses it to decide whether to offer "start session".
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": session,
	})
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid session ID")
		return
	}

	session, err := h.service.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": session,
	})
}

func (h *SessionHandler) ListSessions(c *gin.Context) {
	var filter usecaseSession.SessionFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	sessions, err := h.service.ListSessions(c.Request.Context(), &filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Sessions retrieved", sessions)
}

// writeServiceError maps application error codes onto HTTP statuses.
func writeServiceError(c *gin.Context, err error) {
	var appErr *appErrors.AppError
	if !errors.As(err, &appErr) {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	switch appErr.Code {
	case appErrors.CodeValidation:
		utils.ErrorResponse(c, http.StatusBadRequest, appErr.Message)
	case appErrors.CodeAuthorization:
		utils.ErrorResponse(c, http.StatusUnauthorized, appErr.Message)
	case appErrors.CodeNotFound:
		utils.ErrorResponse(c, http.StatusNotFound, appErr.Message)
	case appErrors.CodeConflict:
		utils.ErrorResponse(c, http.StatusConflict, appErr.Message)
	default:
		utils.ErrorResponse(c, http.StatusInternalServerError, appErr.Message)
	}
}
