package handler

import (
	"github.com/gin-gonic/gin"

	"tender-collab-api/internal/application/template"
	"tender-collab-api/internal/interfaces/http/dto"
)

// TemplateHandler 模板接口
type TemplateHandler struct {
	templateService *template.Service
}

// NewTemplateHandler 创建模板接口
func NewTemplateHandler(templateService *template.Service) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// Create 创建模板
// POST /v1/templates
func (h *TemplateHandler) Create(c *gin.Context) {
	var req dto.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	t, err := h.templateService.Create(c.Request.Context(), currentActor(c), template.CreateInput{
		Name:            req.Name,
		Description:     req.Description,
		SourceProjectID: req.SourceProjectID,
	})
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Created(c, dto.NewTemplateResponse(t))
}

// List 模板列表
// GET /v1/templates
func (h *TemplateHandler) List(c *gin.Context) {
	result, err := h.templateService.List(c.Request.Context(), parsePagination(c))
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.SuccessWithPage(c, dto.NewTemplateSummaryResponses(result.Items), pageMeta(result))
}

// Get 模板详情
// GET /v1/templates/:templateId
func (h *TemplateHandler) Get(c *gin.Context) {
	t, err := h.templateService.Get(c.Request.Context(), c.Param("templateId"))
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Success(c, dto.NewTemplateResponse(t))
}

// Update 更新模板
// PUT /v1/templates/:templateId
func (h *TemplateHandler) Update(c *gin.Context) {
	var req dto.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	t, err := h.templateService.Update(c.Request.Context(), c.Param("templateId"), currentActor(c), template.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Success(c, dto.NewTemplateResponse(t))
}

// Delete 删除模板
// DELETE /v1/templates/:templateId
func (h *TemplateHandler) Delete(c *gin.Context) {
	if err := h.templateService.Delete(c.Request.Context(), c.Param("templateId"), currentActor(c)); err != nil {
		dto.Fail(c, err)
		return
	}
	dto.NoContent(c)
}

// CreateProject 基于模板创建项目
// POST /v1/templates/:templateId/create-project
func (h *TemplateHandler) CreateProject(c *gin.Context) {
	var req dto.CreateProjectFromTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	p, err := h.templateService.CreateProject(c.Request.Context(), c.Param("templateId"), currentActor(c), template.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Created(c, dto.NewProjectResponse(p))
}
