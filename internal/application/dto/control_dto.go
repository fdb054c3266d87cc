package dto

import (
	"time"

	"github.com/trackops/riskregistry/internal/domain/models"
	"github.com/trackops/riskregistry/pkg/constants"
)

// ControlCreateRequest 创建控制库条目请求
type ControlCreateRequest struct {
	Code        string `json:"code" validate:"required,max=32"`
	Name        string `json:"name" validate:"required,max=255"`
	ControlType string `json:"control_type" validate:"max=64"`
	Frequency   string `json:"frequency" validate:"max=64"`
}

// ControlUpdateRequest 更新控制库条目请求
type ControlUpdateRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	ControlType string `json:"control_type" validate:"max=64"`
	Frequency   string `json:"frequency" validate:"max=64"`
	IsActive    *bool  `json:"is_active"`
}

// ControlResponse 控制库条目响应
type ControlResponse struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	ControlType string    `json:"control_type"`
	Frequency   string    `json:"frequency"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FromControl 将控制库模型转换为响应 DTO
func FromControl(c *models.ControlLibrary) *ControlResponse {
	return &ControlResponse{
		ID:          c.ID,
		Code:        c.Code,
		Name:        c.Name,
		ControlType: c.ControlType,
		Frequency:   c.Frequency,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// AttachControlRequest 将控制措施附加到风险的请求
type AttachControlRequest struct {
	ControlID            string     `json:"control_id" validate:"required"`
	ImplementationStatus string     `json:"implementation_status" validate:"required,oneof=PLANNED IN_PROGRESS IMPLEMENTED"`
	EffectivenessScore   *int       `json:"effectiveness_score" validate:"omitempty,gte=0,lte=100"`
	LastTestedDate       *time.Time `json:"last_tested_date"`
	NextTestDate         *time.Time `json:"next_test_date"`
}

// AttachmentUpdateRequest 更新风险/控制配对的请求
type AttachmentUpdateRequest struct {
	ImplementationStatus string     `json:"implementation_status" validate:"required,oneof=PLANNED IN_PROGRESS IMPLEMENTED"`
	EffectivenessScore   *int       `json:"effectiveness_score" validate:"omitempty,gte=0,lte=100"`
	LastTestedDate       *time.Time `json:"last_tested_date"`
	NextTestDate         *time.Time `json:"next_test_date"`
}

// AttachmentResponse 风险/控制配对响应，附带重算后的风险评分。
type AttachmentResponse struct {
	ID                   string                         `json:"id"`
	RiskID               string                         `json:"risk_id"`
	ControlID            string                         `json:"control_id"`
	ImplementationStatus constants.ImplementationStatus `json:"implementation_status"`
	EffectivenessScore   *int                           `json:"effectiveness_score"`
	LastTestedDate       *time.Time                     `json:"last_tested_date"`
	NextTestDate         *time.Time                     `json:"next_test_date"`
	CreatedAt            time.Time                      `json:"created_at"`
	UpdatedAt            time.Time                      `json:"updated_at"`
	Risk                 *RiskResponse                  `json:"risk,omitempty"`
}

// FromAttachment 将配对模型转换为响应 DTO
func FromAttachment(a *models.RiskControl, risk *models.Risk) *AttachmentResponse {
	resp := &AttachmentResponse{
		ID:                   a.ID,
		RiskID:               a.RiskID,
		ControlID:            a.ControlID,
		ImplementationStatus: a.ImplementationStatus,
		EffectivenessScore:   a.EffectivenessScore,
		LastTestedDate:       a.LastTestedDate,
		NextTestDate:         a.NextTestDate,
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
	if risk != nil {
		resp.Risk = FromRisk(risk)
	}
	return resp
}
