package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stocktake-scan-service/internal/middleware"
	usecaseScan "stocktake-scan-service/internal/usecase/scan"
	"stocktake-scan-service/pkg/utils"
)

type ScanHandler struct {
	service *usecaseScan.Service
}

func NewScanHandler(service *usecaseScan.Service) *ScanHandler {
	return &ScanHandler{service: service}
}

func (h *ScanHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/scan", h.SubmitScan)
	router.GET("/scans/recent", h.RecentScans)
	router.GET("/sessions/:id/scans", h.SessionScans)
}

func (h *ScanHandler) SubmitScan(c *gin.Context) {
	var req usecaseScan.SubmitScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	// The submitting user comes from the verified token, never from the
	// request body.
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	result, err := h.service.Submit(c.Request.Context(), &req, userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	// Unresolved barcodes are still HTTP 200: the scan row exists and
	// result.Status tells the client what happened.
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"scan_id":       result.ScanID,
		"status":        result.Status,
		"kind":          result.Kind,
		"resolved_name": result.ResolvedName,
		"message":       result.Message,
	})
}

func (h *ScanHandler) RecentScans(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			utils.ErrorResponse(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	scans, err := h.service.Recent(c.Request.Context(), limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Recent scans retrieved", gin.H{"scans": scans})
}

func (h *ScanHandler) SessionScans(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid session ID")
		return
	}

	scans, err := h.service.ListBySession(c.Request.Context(), sessionID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Session scans retrieved", gin.H{"scans": scans})
}
