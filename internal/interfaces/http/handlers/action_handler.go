package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trackops/riskregistry/internal/application/dto"
	"github.com/trackops/riskregistry/internal/application/service"
	apperrors "github.com/trackops/riskregistry/pkg/errors"
)

// ActionHandler 处理整改行动的 HTTP 请求
type ActionHandler struct {
	actionService *service.ActionAppService
}

// NewActionHandler 创建行动处理器
func NewActionHandler(actionService *service.ActionAppService) *ActionHandler {
	return &ActionHandler{actionService: actionService}
}

// Create 创建整改行动
func (h *ActionHandler) Create(c *gin.Context) {
	var req dto.ActionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, apperrors.ErrValidation(err.Error()))
		return
	}

	result, err := h.actionService.Create(c.Request.Context(), c.Param("risk_id"), &req)
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusCreated, result)
}

// Update 更新整改行动
func (h *ActionHandler) Update(c *gin.Context) {
	var req dto.ActionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, apperrors.ErrValidation(err.Error()))
		return
	}

	result, err := h.actionService.Update(c.Request.Context(), c.Param("action_id"), &req)
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, result)
}

// Delete 删除整改行动
func (h *ActionHandler) Delete(c *gin.Context) {
	if err := h.actionService.Delete(c.Request.Context(), c.Param("action_id")); err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}

// Get 查询单个整改行动
func (h *ActionHandler) Get(c *gin.Context) {
	result, err := h.actionService.Get(c.Request.Context(), c.Param("action_id"))
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, result)
}

// ListByRisk 查询风险下的整改行动列表
func (h *ActionHandler) ListByRisk(c *gin.Context) {
	result, err := h.actionService.ListByRisk(c.Request.Context(), c.Param("risk_id"))
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, result)
}
