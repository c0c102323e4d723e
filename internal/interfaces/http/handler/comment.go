package handler

import (
	"github.com/gin-gonic/gin"

	"tender-collab-api/internal/application/comment"
	"tender-collab-api/internal/interfaces/http/dto"
)

// CommentHandler 批注接口
type CommentHandler struct {
	commentService *comment.Service
}

// NewCommentHandler 创建批注接口
func NewCommentHandler(commentService *comment.Service) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// Create 添加章节批注
// POST /v1/projects/:projectId/chapters/:chapterId/comments
func (h *CommentHandler) Create(c *gin.Context) {
	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	view, err := h.commentService.Create(c.Request.Context(),
		c.Param("projectId"), c.Param("chapterId"), currentActor(c), comment.CreateInput{
			Content:       req.Content,
			PositionStart: req.PositionStart,
			PositionEnd:   req.PositionEnd,
		})
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Created(c, dto.NewCommentResponse(view))
}

// List 章节批注列表
// GET /v1/projects/:projectId/chapters/:chapterId/comments?include_resolved=
func (h *CommentHandler) List(c *gin.Context) {
	includeResolved := c.Query("include_resolved") == "true"

	views, err := h.commentService.List(c.Request.Context(),
		c.Param("projectId"), c.Param("chapterId"), currentActor(c), includeResolved)
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Success(c, dto.NewCommentListResponse(views))
}

// Resolve 标记批注为已解决
// PUT /v1/comments/:commentId/resolve
func (h *CommentHandler) Resolve(c *gin.Context) {
	view, err := h.commentService.Resolve(c.Request.Context(), c.Param("commentId"), currentActor(c))
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Success(c, dto.NewCommentResponse(view))
}

// Delete 删除批注
// DELETE /v1/comments/:commentId
func (h *CommentHandler) Delete(c *gin.Context) {
	if err := h.commentService.Delete(c.Request.Context(), c.Param("commentId"), currentActor(c)); err != nil {
		dto.Fail(c, err)
		return
	}
	dto.NoContent(c)
}
