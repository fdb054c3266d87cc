package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trackops/riskregistry/internal/application/dto"
	"github.com/trackops/riskregistry/internal/application/service"
	apperrors "github.com/trackops/riskregistry/pkg/errors"
)

// RiskHandler 处理风险相关的 HTTP 请求
type RiskHandler struct {
	riskService *service.RiskAppService
}

// NewRiskHandler 创建风险处理器
func NewRiskHandler(riskService *service.RiskAppService) *RiskHandler {
	return &RiskHandler{riskService: riskService}
}

// Create 创建风险
func (h *RiskHandler) Create(c *gin.Context) {
	var req dto.RiskCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, apperrors.ErrValidation(err.Error()))
		return
	}

	result, err := h.riskService.Create(c.Request.Context(), &req)
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusCreated, result)
}

// Update 更新风险
func (h *RiskHandler) Update(c *gin.Context) {
	var req dto.RiskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, apperrors.ErrValidation(err.Error()))
		return
	}

	result, err := h.riskService.Update(c.Request.Context(), c.Param("risk_id"), &req)
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, result)
}

// Get 查询单个风险
func (h *RiskHandler) Get(c *gin.Context) {
	result, err := h.riskService.Get(c.Request.Context(), c.Param("risk_id"))
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, result)
}

// List 分页查询风险列表
func (h *RiskHandler) List(c *gin.Context) {
	var query dto.RiskListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		sendError(c, apperrors.ErrValidation(err.Error()))
		return
	}

	result, err := h.riskService.List(c.Request.Context(), &query)
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, result)
}

// Delete 删除风险
func (h *RiskHandler) Delete(c *gin.Context) {
	if err := h.riskService.Delete(c.Request.Context(), c.Param("risk_id")); err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}

// Recalculate 批量重算所有风险评分
func (h *RiskHandler) Recalculate(c *gin.Context) {
	result, err := h.riskService.RecalculateAll(c.Request.Context())
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, result)
}

// Heatmap 查询 5x5 热力图
func (h *RiskHandler) Heatmap(c *gin.Context) {
	result, err := h.riskService.GetHeatmap(c.Request.Context(), c.Query("theme_id"))
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, result)
}
