package handler

import (
	"github.com/gin-gonic/gin"

	"tender-collab-api/internal/application/history"
	"tender-collab-api/internal/domain/entity"
	"tender-collab-api/internal/domain/repository"
	"tender-collab-api/internal/interfaces/http/dto"
)

// VersionHandler 版本接口：快照、浏览、差异与回滚
type VersionHandler struct {
	historyService *history.Service
}

// NewVersionHandler 创建版本接口
func NewVersionHandler(historyService *history.Service) *VersionHandler {
	return &VersionHandler{historyService: historyService}
}

// CreateSnapshot 为项目当前内容创建全项目版本
// POST /v1/projects/:projectId/versions
func (h *VersionHandler) CreateSnapshot(c *gin.Context) {
	var req dto.CreateSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	version, err := h.historyService.CreateSnapshot(c.Request.Context(), c.Param("projectId"),
		currentActor(c), entity.ChangeType(req.ChangeType), req.Summary)
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Created(c, dto.NewVersionResponse(version))
}

// List 版本列表
// GET /v1/projects/:projectId/versions
func (h *VersionHandler) List(c *gin.Context) {
	filter := &repository.VersionFilter{
		ChangeType: entity.ChangeType(c.Query("change_type")),
	}
	if chapterID := c.Query("chapter_id"); chapterID != "" {
		filter.ChapterID = &chapterID
	}

	result, err := h.historyService.ListVersions(c.Request.Context(), c.Param("projectId"),
		currentActor(c), filter, parsePagination(c))
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.SuccessWithPage(c, dto.NewVersionResponses(result.Items), pageMeta(result))
}

// Get 版本详情（含快照负载）
// GET /v1/projects/:projectId/versions/:versionId
func (h *VersionHandler) Get(c *gin.Context) {
	version, err := h.historyService.GetVersion(c.Request.Context(), c.Param("projectId"),
		c.Param("versionId"), currentActor(c))
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Success(c, dto.NewVersionDetailResponse(version))
}

// Compare 对比两个全项目版本
// GET /v1/projects/:projectId/diff?from=...&to=...
func (h *VersionHandler) Compare(c *gin.Context) {
	fromID := c.Query("from")
	toID := c.Query("to")
	if fromID == "" || toID == "" {
		dto.BadRequest(c, "query parameters from and to are required")
		return
	}

	diff, err := h.historyService.CompareVersions(c.Request.Context(), c.Param("projectId"),
		fromID, toID, currentActor(c))
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Success(c, diff)
}

// Rollback 回滚项目内容到指定版本
// POST /v1/projects/:projectId/rollback
func (h *VersionHandler) Rollback(c *gin.Context) {
	var req dto.RollbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	result, err := h.historyService.Rollback(c.Request.Context(), c.Param("projectId"),
		req.VersionID, currentActor(c), history.RollbackOptions{
			CreateBackup: req.CreateBackup,
			Summary:      req.Summary,
		})
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Success(c, result)
}
