package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"tender-collab-api/internal/domain/entity"
	"tender-collab-api/internal/domain/repository"
	"tender-collab-api/internal/interfaces/http/dto"
)

// currentActor 从 Gin Context 取出认证中间件注入的操作者身份
func currentActor(c *gin.Context) entity.Actor {
	return entity.Actor{
		UserID:   c.GetString("user_id"),
		Username: c.GetString("username"),
		Role:     entity.UserRole(c.GetString("role")),
	}
}

// parsePagination 解析分页查询参数
func parsePagination(c *gin.Context) repository.Pagination {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return repository.NewPagination(page, pageSize)
}

// pageMeta 分页结果转分页元数据
func pageMeta[T any](result *repository.PagedResult[T]) *dto.PageMeta {
	return dto.NewPageMeta(result.Page, result.PageSize, result.Total, result.TotalPages)
}
