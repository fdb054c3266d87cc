package dto

import (
	"time"

	"github.com/trackops/riskregistry/internal/domain/models"
)

// ThemeCreateRequest 创建风险主题请求
type ThemeCreateRequest struct {
	Code          string `json:"code" validate:"required,max=32"`
	Name          string `json:"name" validate:"required,max=255"`
	BoardAppetite int    `json:"board_appetite" validate:"required,gte=1,lte=5"`
	Order         *int   `json:"order" validate:"omitempty,gte=1"`
}

// ThemeUpdateRequest 更新风险主题请求
type ThemeUpdateRequest struct {
	Name          string `json:"name" validate:"required,max=255"`
	BoardAppetite int    `json:"board_appetite" validate:"required,gte=1,lte=5"`
	Order         *int   `json:"order" validate:"omitempty,gte=1"`
	IsActive      *bool  `json:"is_active"`
}

// ThemeResponse 风险主题响应
type ThemeResponse struct {
	ID            string    `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	BoardAppetite int       `json:"board_appetite"`
	Order         int       `json:"order"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// FromTheme 将主题模型转换为响应 DTO
func FromTheme(t *models.RiskTheme) *ThemeResponse {
	return &ThemeResponse{
		ID:            t.ID,
		Code:          t.Code,
		Name:          t.Name,
		BoardAppetite: t.BoardAppetite,
		Order:         t.DisplayOrder,
		IsActive:      t.IsActive,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

// CategoryCreateRequest 创建风险类别请求
type CategoryCreateRequest struct {
	ThemeID string `json:"theme_id" validate:"required"`
	Code    string `json:"code" validate:"required,max=32"`
	Name    string `json:"name" validate:"required,max=255"`
	Order   *int   `json:"order" validate:"omitempty,gte=1"`
}

// CategoryUpdateRequest 更新风险类别请求
type CategoryUpdateRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Order    *int   `json:"order" validate:"omitempty,gte=1"`
	IsActive *bool  `json:"is_active"`
}

// CategoryResponse 风险类别响应
type CategoryResponse struct {
	ID        string    `json:"id"`
	ThemeID   string    `json:"theme_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Order     int       `json:"order"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromCategory 将类别模型转换为响应 DTO
func FromCategory(c *models.RiskCategory) *CategoryResponse {
	return &CategoryResponse{
		ID:        c.ID,
		ThemeID:   c.ThemeID,
		Code:      c.Code,
		Name:      c.Name,
		Order:     c.DisplayOrder,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
