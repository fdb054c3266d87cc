package dto

import (
	"time"

	"github.com/trackops/riskregistry/internal/domain/models"
	"github.com/trackops/riskregistry/pkg/constants"
)

// RiskCreateRequest 创建风险请求
type RiskCreateRequest struct {
	RefNo               string `json:"ref_no" validate:"required,max=32"`
	CategoryID          string `json:"category_id" validate:"required"`
	Name                string `json:"name" validate:"required,max=255"`
	Description         string `json:"description"`
	FinancialImpact     *int   `json:"financial_impact" validate:"omitempty,gte=1,lte=5"`
	RegulatoryImpact    *int   `json:"regulatory_impact" validate:"omitempty,gte=1,lte=5"`
	ReputationalImpact  *int   `json:"reputational_impact" validate:"omitempty,gte=1,lte=5"`
	InherentProbability *int   `json:"inherent_probability" validate:"omitempty,gte=1,lte=5"`
	OwnerID             string `json:"owner_id"`
	ResponsiblePartyID  string `json:"responsible_party_id"`
	Tier                string `json:"tier" validate:"omitempty,oneof=TIER_1 TIER_2 TIER_3"`
}

// RiskUpdateRequest 更新风险请求。字段为完整替换语义；ref_no 不可变。
type RiskUpdateRequest struct {
	CategoryID          string `json:"category_id" validate:"required"`
	Name                string `json:"name" validate:"required,max=255"`
	Description         string `json:"description"`
	FinancialImpact     *int   `json:"financial_impact" validate:"omitempty,gte=1,lte=5"`
	RegulatoryImpact    *int   `json:"regulatory_impact" validate:"omitempty,gte=1,lte=5"`
	ReputationalImpact  *int   `json:"reputational_impact" validate:"omitempty,gte=1,lte=5"`
	InherentProbability *int   `json:"inherent_probability" validate:"omitempty,gte=1,lte=5"`
	OwnerID             string `json:"owner_id"`
	ResponsiblePartyID  string `json:"responsible_party_id"`
	Tier                string `json:"tier" validate:"omitempty,oneof=TIER_1 TIER_2 TIER_3"`
	IsActive            *bool  `json:"is_active"`
}

// RiskListQuery 风险列表过滤与分页参数
type RiskListQuery struct {
	CategoryID  string `form:"category_id"`
	ThemeID     string `form:"theme_id"`
	ResidualRAG string `form:"residual_rag"`
	ActiveOnly  bool   `form:"active_only"`
	Page        int    `form:"page"`
	PageSize    int    `form:"page_size"`
}

// RiskResponse 风险响应
type RiskResponse struct {
	ID                  string                   `json:"id"`
	RefNo               string                   `json:"ref_no"`
	CategoryID          string                   `json:"category_id"`
	Name                string                   `json:"name"`
	Description         string                   `json:"description"`
	FinancialImpact     *int                     `json:"financial_impact"`
	RegulatoryImpact    *int                     `json:"regulatory_impact"`
	ReputationalImpact  *int                     `json:"reputational_impact"`
	InherentProbability *int                     `json:"inherent_probability"`
	InherentRiskScore   float64                  `json:"inherent_risk_score"`
	InherentRAG         constants.RAGStatus      `json:"inherent_rag"`
	ResidualRiskScore   float64                  `json:"residual_risk_score"`
	ResidualRAG         constants.RAGStatus      `json:"residual_rag"`
	AppetiteStatus      constants.AppetiteStatus `json:"appetite_status"`
	OwnerID             string                   `json:"owner_id"`
	ResponsiblePartyID  string                   `json:"responsible_party_id"`
	Tier                constants.RiskTier       `json:"tier"`
	IsActive            bool                     `json:"is_active"`
	CreatedAt           time.Time                `json:"created_at"`
	UpdatedAt           time.Time                `json:"updated_at"`
}

// FromRisk 将领域模型转换为响应 DTO
func FromRisk(r *models.Risk) *RiskResponse {
	return &RiskResponse{
		ID:                  r.ID,
		RefNo:               r.RefNo,
		CategoryID:          r.CategoryID,
		Name:                r.Name,
		Description:         r.Description,
		FinancialImpact:     r.FinancialImpact,
		RegulatoryImpact:    r.RegulatoryImpact,
		ReputationalImpact:  r.ReputationalImpact,
		InherentProbability: r.InherentProbability,
		InherentRiskScore:   r.InherentRiskScore,
		InherentRAG:         r.InherentRAG,
		ResidualRiskScore:   r.ResidualRiskScore,
		ResidualRAG:         r.ResidualRAG,
		AppetiteStatus:      r.AppetiteStatus,
		OwnerID:             r.OwnerID,
		ResponsiblePartyID:  r.ResponsiblePartyID,
		Tier:                r.Tier,
		IsActive:            r.IsActive,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

// RiskListResponse 风险分页列表响应
type RiskListResponse struct {
	Items      []RiskResponse     `json:"items"`
	Pagination PaginationResponse `json:"pagination"`
}

// RecalculateResponse 批量重算结果
type RecalculateResponse struct {
	Processed int `json:"processed"`
}
