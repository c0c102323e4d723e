// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"tender-collab-api/internal/domain/entity"
)

// CreateTemplateRequest 创建模板请求
type CreateTemplateRequest struct {
	Name            string  `json:"name" binding:"required,max=200"`
	Description     string  `json:"description" binding:"max=2000"`
	SourceProjectID *string `json:"source_project_id" binding:"omitempty,uuid"`
}

// UpdateTemplateRequest 更新模板请求，缺省字段保持原值
type UpdateTemplateRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=200"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
}

// CreateProjectFromTemplateRequest 按模板创建项目请求
type CreateProjectFromTemplateRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description" binding:"max=2000"`
}

// TemplateSummaryResponse 模板列表项响应（不含目录数据）
type TemplateSummaryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// TemplateResponse 模板详情响应
type TemplateResponse struct {
	TemplateSummaryResponse
	OutlineData     []entity.OutlineNode `json:"outline_data,omitempty"`
	SourceProjectID *string              `json:"source_project_id,omitempty"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// NewTemplateSummaryResponse 构建模板列表项响应
func NewTemplateSummaryResponse(t *entity.Template) TemplateSummaryResponse {
	return TemplateSummaryResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
	}
}

// NewTemplateResponse 构建模板详情响应
func NewTemplateResponse(t *entity.Template) TemplateResponse {
	return TemplateResponse{
		TemplateSummaryResponse: NewTemplateSummaryResponse(t),
		OutlineData:             t.OutlineData,
		SourceProjectID:         t.SourceProjectID,
		UpdatedAt:               t.UpdatedAt,
	}
}

// NewTemplateSummaryResponses 构建模板列表响应
func NewTemplateSummaryResponses(templates []*entity.Template) []TemplateSummaryResponse {
	out := make([]TemplateSummaryResponse, 0, len(templates))
	for _, t := range templates {
		out = append(out, NewTemplateSummaryResponse(t))
	}
	return out
}
