package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trackops/riskregistry/internal/application/dto"
	"github.com/trackops/riskregistry/internal/application/service"
	apperrors "github.com/trackops/riskregistry/pkg/errors"
)

// ControlHandler 处理控制库与风险/控制配对的 HTTP 请求
type ControlHandler struct {
	controlService *service.ControlAppService
}

// NewControlHandler 创建控制处理器
func NewControlHandler(controlService *service.ControlAppService) *ControlHandler {
	return &ControlHandler{controlService: controlService}
}

// CreateEntry 创建控制库条目
func (h *ControlHandler) CreateEntry(c *gin.Context) {
	var req dto.ControlCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, apperrors.ErrValidation(err.Error()))
		return
	}

	result, err := h.controlService.CreateEntry(c.Request.Context(), &req)
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusCreated, result)
}

// UpdateEntry 更新控制库条目
func (h *ControlHandler) UpdateEntry(c *gin.Context) {
	var req dto.ControlUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, apperrors.ErrValidation(err.Error()))
		return
	}

	result, err := h.controlService.UpdateEntry(c.Request.Context(), c.Param("control_id"), &req)
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, result)
}

// DeleteEntry 删除控制库条目
func (h *ControlHandler) DeleteEntry(c *gin.Context) {
	if err := h.controlService.DeleteEntry(c.Request.Context(), c.Param("control_id")); err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}

// GetEntry 查询单个控制库条目
func (h *ControlHandler) GetEntry(c *gin.Context) {
	result, err := h.controlService.GetEntry(c.Request.Context(), c.Param("control_id"))
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, result)
}

// ListEntries 查询控制库列表
func (h *ControlHandler) ListEntries(c *gin.Context) {
	result, err := h.controlService.ListEntries(c.Request.Context())
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, result)
}

// Attach 将控制措施附加到风险
func (h *ControlHandler) Attach(c *gin.Context) {
	var req dto.AttachControlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, apperrors.ErrValidation(err.Error()))
		return
	}

	result, err := h.controlService.Attach(c.Request.Context(), c.Param("risk_id"), &req)
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusCreated, result)
}

// UpdateAttachment 更新风险/控制配对
func (h *ControlHandler) UpdateAttachment(c *gin.Context) {
	var req dto.AttachmentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, apperrors.ErrValidation(err.Error()))
		return
	}

	result, err := h.controlService.UpdateAttachment(c.Request.Context(), c.Param("attachment_id"), &req)
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, result)
}

// Detach 解除风险/控制配对
func (h *ControlHandler) Detach(c *gin.Context) {
	result, err := h.controlService.Detach(c.Request.Context(), c.Param("attachment_id"))
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, result)
}

// ListAttachments 查询风险的控制配对列表
func (h *ControlHandler) ListAttachments(c *gin.Context) {
	result, err := h.controlService.ListAttachments(c.Request.Context(), c.Param("risk_id"))
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, result)
}
