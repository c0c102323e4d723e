package handler

import (
	"github.com/gin-gonic/gin"

	"tender-collab-api/internal/application/editing"
	"tender-collab-api/internal/domain/entity"
	"tender-collab-api/internal/interfaces/http/dto"
)

// ChapterHandler 章节接口：目录树、内容写入、编辑锁与状态流转
type ChapterHandler struct {
	editingService *editing.Service
}

// NewChapterHandler 创建章节接口
func NewChapterHandler(editingService *editing.Service) *ChapterHandler {
	return &ChapterHandler{editingService: editingService}
}

// Create 创建章节
// POST /v1/projects/:projectId/chapters
func (h *ChapterHandler) Create(c *gin.Context) {
	var req dto.CreateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	chapter, err := h.editingService.CreateChapter(c.Request.Context(), c.Param("projectId"),
		currentActor(c), editing.CreateChapterInput{
			ParentID:      req.ParentID,
			ChapterNumber: req.ChapterNumber,
			Title:         req.Title,
			OrderIndex:    req.OrderIndex,
		})
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Created(c, dto.NewChapterResponse(chapter, nil))
}

// GetTree 获取章节树
// GET /v1/projects/:projectId/chapters
func (h *ChapterHandler) GetTree(c *gin.Context) {
	tree, err := h.editingService.GetChapterTree(c.Request.Context(), c.Param("projectId"), currentActor(c))
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Success(c, tree)
}

// Get 章节详情（含锁状态）
// GET /v1/projects/:projectId/chapters/:chapterId
func (h *ChapterHandler) Get(c *gin.Context) {
	chapter, lock, err := h.editingService.GetChapter(c.Request.Context(),
		c.Param("projectId"), c.Param("chapterId"), currentActor(c))
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Success(c, dto.NewChapterResponse(chapter, lock))
}

// Delete 删除章节及其子树
// DELETE /v1/projects/:projectId/chapters/:chapterId
func (h *ChapterHandler) Delete(c *gin.Context) {
	err := h.editingService.DeleteChapter(c.Request.Context(),
		c.Param("projectId"), c.Param("chapterId"), currentActor(c))
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.NoContent(c)
}

// UpdateContent 写入章节内容（隐式获锁，同事务落版本）
// PUT /v1/projects/:projectId/chapters/:chapterId/content
func (h *ChapterHandler) UpdateContent(c *gin.Context) {
	var req dto.UpdateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	chapter, version, err := h.editingService.UpdateContent(c.Request.Context(),
		c.Param("projectId"), c.Param("chapterId"), currentActor(c),
		editing.UpdateContentInput{
			Title:   req.Title,
			Content: req.Content,
			Summary: req.Summary,
		})
	if err != nil {
		dto.Fail(c, err)
		return
	}

	dto.Success(c, dto.UpdateContentResponse{
		Chapter:       dto.NewChapterResponse(chapter, nil),
		VersionNumber: version.VersionNumber,
		VersionID:     version.ID,
	})
}

// TransitionStatus 章节状态流转
// PUT /v1/projects/:projectId/chapters/:chapterId/status
func (h *ChapterHandler) TransitionStatus(c *gin.Context) {
	var req dto.TransitionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	chapter, err := h.editingService.TransitionStatus(c.Request.Context(),
		c.Param("projectId"), c.Param("chapterId"),
		entity.ChapterStatus(req.Status), currentActor(c))
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Success(c, dto.NewChapterResponse(chapter, nil))
}

// AcquireLock 获取编辑锁
// POST /v1/projects/:projectId/chapters/:chapterId/lock
func (h *ChapterHandler) AcquireLock(c *gin.Context) {
	status, err := h.editingService.AcquireLock(c.Request.Context(),
		c.Param("projectId"), c.Param("chapterId"), currentActor(c))
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Success(c, dto.NewLockStatusResponse(status))
}

// ReleaseLock 释放编辑锁
// DELETE /v1/projects/:projectId/chapters/:chapterId/lock
func (h *ChapterHandler) ReleaseLock(c *gin.Context) {
	err := h.editingService.ReleaseLock(c.Request.Context(),
		c.Param("projectId"), c.Param("chapterId"), currentActor(c))
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.NoContent(c)
}

// InspectLock 查询锁状态
// GET /v1/projects/:projectId/chapters/:chapterId/lock
func (h *ChapterHandler) InspectLock(c *gin.Context) {
	status, err := h.editingService.InspectLock(c.Request.Context(),
		c.Param("projectId"), c.Param("chapterId"), currentActor(c))
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Success(c, dto.NewLockStatusResponse(status))
}
