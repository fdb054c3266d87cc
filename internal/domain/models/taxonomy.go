// Package models defines the domain models for the risk registry service.
// This file contains the two-level risk taxonomy: themes and categories.
package models

import "time"

// RiskTheme is the top level of the risk taxonomy. Each theme carries the board
// risk appetite applied to every risk filed under it.
// RiskTheme 是风险分类的顶层，每个主题承载董事会为其下风险设定的风险偏好。
type RiskTheme struct {
	// ID is the unique identifier of the theme.
	ID string `json:"id" gorm:"primaryKey;size:36"`

	// Code is a unique short identifier assigned by administrators.
	Code string `json:"code" gorm:"uniqueIndex;size:32;not null"`

	// Name is the display name of the theme.
	Name string `json:"name" gorm:"size:255;not null"`

	// BoardAppetite is the maximum tolerable residual score (1-5) the board
	// accepts for risks in this theme.
	BoardAppetite int `json:"board_appetite" gorm:"not null"`

	// DisplayOrder controls sequencing of themes in listings.
	DisplayOrder int `json:"order" gorm:"column:display_order;not null"`

	// IsActive is a soft lifecycle flag, independent of the risks underneath.
	IsActive bool `json:"is_active" gorm:"not null;default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name for RiskTheme.
func (RiskTheme) TableName() string { return "risk_themes" }

// RiskCategory is the second taxonomy level, owned by a theme. Category codes
// are unique only within their owning theme.
// RiskCategory 是分类的第二层，由主题拥有；编码仅在所属主题内唯一。
type RiskCategory struct {
	// ID is the unique identifier of the category.
	ID string `json:"id" gorm:"primaryKey;size:36"`

	// ThemeID references the owning theme.
	ThemeID string `json:"theme_id" gorm:"size:36;not null;uniqueIndex:ux_category_theme_code"`

	// Code is unique within the owning theme; two themes may reuse a code.
	Code string `json:"code" gorm:"size:32;not null;uniqueIndex:ux_category_theme_code"`

	// Name is the display name of the category.
	Name string `json:"name" gorm:"size:255;not null"`

	// DisplayOrder controls sequencing of categories within their theme.
	DisplayOrder int `json:"order" gorm:"column:display_order;not null"`

	// IsActive is a soft lifecycle flag.
	IsActive bool `json:"is_active" gorm:"not null;default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name for RiskCategory.
func (RiskCategory) TableName() string { return "risk_categories" }
