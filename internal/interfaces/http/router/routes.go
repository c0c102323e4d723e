// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRoutes 配置路由
func (r *Router) setupRoutes() {
	h := r.handlers

	// 系统端点
	r.engine.GET("/health", h.Health.Health)
	r.engine.GET("/ready", h.Health.Ready)
	r.engine.GET("/live", h.Health.Live)

	// Prometheus 指标端点
	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.cfg.Observability.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// API v1 路由组
	v1 := r.engine.Group("/v1")
	{
		// 认证
		auth := v1.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// 项目与成员
		projects := v1.Group("/projects")
		{
			projects.POST("", h.Project.Create)
			projects.GET("", h.Project.List)
			projects.GET("/:projectId", h.Project.Get)
			projects.DELETE("/:projectId", h.Project.Delete)
			projects.GET("/:projectId/progress", h.Project.GetProgress)

			projects.GET("/:projectId/members", h.Project.ListMembers)
			projects.POST("/:projectId/members", h.Project.AddMember)
			projects.DELETE("/:projectId/members/:userId", h.Project.RemoveMember)

			// 章节树与协同编辑
			projects.GET("/:projectId/chapters", h.Chapter.GetTree)
			projects.POST("/:projectId/chapters", h.Chapter.Create)
			projects.GET("/:projectId/chapters/:chapterId", h.Chapter.Get)
			projects.DELETE("/:projectId/chapters/:chapterId", h.Chapter.Delete)
			projects.PUT("/:projectId/chapters/:chapterId/content", h.Chapter.UpdateContent)
			projects.PUT("/:projectId/chapters/:chapterId/status", h.Chapter.TransitionStatus)
			projects.POST("/:projectId/chapters/:chapterId/lock", h.Chapter.AcquireLock)
			projects.GET("/:projectId/chapters/:chapterId/lock", h.Chapter.InspectLock)
			projects.DELETE("/:projectId/chapters/:chapterId/lock", h.Chapter.ReleaseLock)

			// 章节批注
			projects.POST("/:projectId/chapters/:chapterId/comments", h.Comment.Create)
			projects.GET("/:projectId/chapters/:chapterId/comments", h.Comment.List)

			// 版本历史
			projects.POST("/:projectId/versions", h.Version.CreateSnapshot)
			projects.GET("/:projectId/versions", h.Version.List)
			projects.GET("/:projectId/versions/:versionId", h.Version.Get)
			projects.GET("/:projectId/diff", h.Version.Compare)
			projects.POST("/:projectId/rollback", h.Version.Rollback)
		}

		// 批注解决与删除按批注 ID 操作，项目归属由批注所在章节推导
		comments := v1.Group("/comments")
		{
			comments.PUT("/:commentId/resolve", h.Comment.Resolve)
			comments.DELETE("/:commentId", h.Comment.Delete)
		}

		// 目录模板
		templates := v1.Group("/templates")
		{
			templates.POST("", h.Template.Create)
			templates.GET("", h.Template.List)
			templates.GET("/:templateId", h.Template.Get)
			templates.PUT("/:templateId", h.Template.Update)
			templates.DELETE("/:templateId", h.Template.Delete)
			templates.POST("/:templateId/create-project", h.Template.CreateProject)
		}
	}
}
