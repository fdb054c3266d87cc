package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trackops/riskregistry/internal/application/dto"
	"github.com/trackops/riskregistry/internal/application/service"
	apperrors "github.com/trackops/riskregistry/pkg/errors"
)

// TaxonomyHandler 处理风险主题与类别的 HTTP 请求
type TaxonomyHandler struct {
	taxonomyService *service.TaxonomyAppService
}

// NewTaxonomyHandler 创建分类处理器
func NewTaxonomyHandler(taxonomyService *service.TaxonomyAppService) *TaxonomyHandler {
	return &TaxonomyHandler{taxonomyService: taxonomyService}
}

// CreateTheme 创建主题
func (h *TaxonomyHandler) CreateTheme(c *gin.Context) {
	var req dto.ThemeCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, apperrors.ErrValidation(err.Error()))
		return
	}

	result, err := h.taxonomyService.CreateTheme(c.Request.Context(), &req)
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusCreated, result)
}

// UpdateTheme 更新主题；风险偏好变化会同步重算其下风险
func (h *TaxonomyHandler) UpdateTheme(c *gin.Context) {
	var req dto.ThemeUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, apperrors.ErrValidation(err.Error()))
		return
	}

	result, err := h.taxonomyService.UpdateTheme(c.Request.Context(), c.Param("theme_id"), &req)
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, result)
}

// DeleteTheme 删除主题
func (h *TaxonomyHandler) DeleteTheme(c *gin.Context) {
	if err := h.taxonomyService.DeleteTheme(c.Request.Context(), c.Param("theme_id")); err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}

// GetTheme 查询单个主题
func (h *TaxonomyHandler) GetTheme(c *gin.Context) {
	result, err := h.taxonomyService.GetTheme(c.Request.Context(), c.Param("theme_id"))
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, result)
}

// ListThemes 查询主题列表
func (h *TaxonomyHandler) ListThemes(c *gin.Context) {
	result, err := h.taxonomyService.ListThemes(c.Request.Context())
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, result)
}

// CreateCategory 创建类别
func (h *TaxonomyHandler) CreateCategory(c *gin.Context) {
	var req dto.CategoryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, apperrors.ErrValidation(err.Error()))
		return
	}
	req.ThemeID = c.Param("theme_id")

	result, err := h.taxonomyService.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusCreated, result)
}

// UpdateCategory 更新类别
func (h *TaxonomyHandler) UpdateCategory(c *gin.Context) {
	var req dto.CategoryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, apperrors.ErrValidation(err.Error()))
		return
	}

	result, err := h.taxonomyService.UpdateCategory(c.Request.Context(), c.Param("category_id"), &req)
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, result)
}

// DeleteCategory 删除类别
func (h *TaxonomyHandler) DeleteCategory(c *gin.Context) {
	if err := h.taxonomyService.DeleteCategory(c.Request.Context(), c.Param("category_id")); err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}

// GetCategory 查询单个类别
func (h *TaxonomyHandler) GetCategory(c *gin.Context) {
	result, err := h.taxonomyService.GetCategory(c.Request.Context(), c.Param("category_id"))
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, result)
}

// ListCategories 查询主题下的类别列表
func (h *TaxonomyHandler) ListCategories(c *gin.Context) {
	result, err := h.taxonomyService.ListCategories(c.Request.Context(), c.Param("theme_id"))
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, result)
}
