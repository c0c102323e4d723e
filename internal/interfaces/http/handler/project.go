package handler

import (
	"github.com/gin-gonic/gin"

	"tender-collab-api/internal/application/editing"
	"tender-collab-api/internal/application/project"
	"tender-collab-api/internal/domain/entity"
	"tender-collab-api/internal/interfaces/http/dto"
)

// ProjectHandler 项目接口
type ProjectHandler struct {
	projectService *project.Service
	editingService *editing.Service
}

// NewProjectHandler 创建项目接口
func NewProjectHandler(projectService *project.Service, editingService *editing.Service) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		editingService: editingService,
	}
}

// Create 创建项目
// POST /v1/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	p, err := h.projectService.Create(c.Request.Context(), currentActor(c), project.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Tags:        req.Tags,
	})
	if err != nil {
		dto.Fail(c, err)
		return
	}

	dto.Created(c, dto.NewProjectResponse(p))
}

// Get 获取项目详情
// GET /v1/projects/:projectId
func (h *ProjectHandler) Get(c *gin.Context) {
	p, err := h.projectService.Get(c.Request.Context(), c.Param("projectId"), currentActor(c))
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Success(c, dto.NewProjectResponse(p))
}

// List 列出当前用户参与的项目
// GET /v1/projects
func (h *ProjectHandler) List(c *gin.Context) {
	result, err := h.projectService.List(c.Request.Context(), currentActor(c), parsePagination(c))
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.SuccessWithPage(c, dto.NewProjectResponses(result.Items), pageMeta(result))
}

// Delete 删除项目
// DELETE /v1/projects/:projectId
func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.projectService.Delete(c.Request.Context(), c.Param("projectId"), currentActor(c)); err != nil {
		dto.Fail(c, err)
		return
	}
	dto.NoContent(c)
}

// GetProgress 项目进度
// GET /v1/projects/:projectId/progress
func (h *ProjectHandler) GetProgress(c *gin.Context) {
	progress, err := h.editingService.GetProgress(c.Request.Context(), c.Param("projectId"), currentActor(c))
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Success(c, dto.NewProgressResponse(progress))
}

// AddMember 添加成员
// POST /v1/projects/:projectId/members
func (h *ProjectHandler) AddMember(c *gin.Context) {
	var req dto.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	member, err := h.projectService.AddMember(c.Request.Context(), c.Param("projectId"),
		currentActor(c), req.UserID, entity.MemberRole(req.Role))
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Created(c, dto.NewMemberResponse(member))
}

// RemoveMember 移除成员
// DELETE /v1/projects/:projectId/members/:userId
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	err := h.projectService.RemoveMember(c.Request.Context(), c.Param("projectId"),
		currentActor(c), c.Param("userId"))
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.NoContent(c)
}

// ListMembers 成员列表
// GET /v1/projects/:projectId/members
func (h *ProjectHandler) ListMembers(c *gin.Context) {
	members, err := h.projectService.ListMembers(c.Request.Context(), c.Param("projectId"), currentActor(c))
	if err != nil {
		dto.Fail(c, err)
		return
	}

	out := make([]dto.MemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, dto.NewMemberResponse(m))
	}
	dto.Success(c, out)
}
