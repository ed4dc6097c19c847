package router

import (
	"vidhub-go/internal/api/handler"
	"vidhub-go/internal/api/middleware"

	"github.com/gin-gonic/gin"
)

// Handlers 路由依赖的全部 handler
type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Subscription *handler.SubscriptionHandler
	Video        *handler.VideoHandler
	Like         *handler.LikeHandler
	Comment      *handler.CommentHandler
	WatchHistory *handler.WatchHistoryHandler
	Search       *handler.SearchHandler
}

// Setup 注册所有业务路由
func Setup(r *gin.Engine, h Handlers, resolver middleware.TokenResolver) {
	required := middleware.AuthRequired(resolver)
	optional := middleware.AuthOptional(resolver)

	// --- 认证模块 ---
	r.POST("/token", h.Auth.Token)
	r.POST("/register", h.Auth.Register)

	// --- 用户模块 ---
	users := r.Group("/users")
	{
		users.GET("/me", required, h.User.GetMe)
		users.PUT("/me", required, h.User.UpdateMe)
		users.POST("/me/profile-picture", required, h.User.UploadProfilePicture)
		users.POST("/me/banner", required, h.User.UploadBanner)
		users.GET("/me/subscriptions", required, h.Subscription.ListMySubscriptions)

		users.GET("/files/profile-picture/:filename", h.User.ServeProfilePicture)
		users.GET("/files/banner/:filename", h.User.ServeBanner)

		users.GET("/:username", optional, h.User.GetUser)
		users.GET("/:username/videos", optional, h.User.ListVideos)
		users.GET("/:username/subscribers", h.Subscription.ListSubscribers)
		users.POST("/:username/subscribe", required, h.Subscription.Subscribe)
		users.POST("/:username/unsubscribe", required, h.Subscription.Unsubscribe)
	}

	// --- 视频模块 ---
	videos := r.Group("/videos")
	{
		videos.POST("", required, h.Video.Upload)
		videos.POST("/", required, h.Video.Upload)
		videos.GET("", h.Video.List)
		videos.GET("/", h.Video.List)

		// 文件流
		videos.GET("/file/:filename", h.Video.ServeFile)
		videos.GET("/thumbnail/:filename", h.Video.ServeThumbnail)

		videos.GET("/watch-history", required, h.WatchHistory.List)

		videos.GET("/:id", optional, h.Video.Get)
		videos.PUT("/:id", required, h.Video.Update)
		videos.DELETE("/:id", required, h.Video.Delete)
		videos.POST("/:id/thumbnail", required, h.Video.UpdateThumbnail)

		videos.GET("/:id/like", required, h.Like.LikeStatus)
		videos.POST("/:id/like", required, h.Like.LikeVideo)
		videos.DELETE("/:id/like", required, h.Like.UnlikeVideo)
		videos.POST("/:id/unlike", required, h.Like.UnlikeVideo)
		videos.GET("/:id/likes", optional, h.Like.ListLikers)

		videos.POST("/:id/watch-history", required, h.WatchHistory.Record)

		videos.POST("/:id/comments", required, h.Comment.Create)
		videos.GET("/:id/comments", optional, h.Comment.ListByVideo)
	}

	// --- 评论模块 ---
	comments := videos.Group("/comments")
	{
		comments.GET("/:id/replies", optional, h.Comment.ListReplies)
		comments.PUT("/:id", required, h.Comment.Update)
		comments.DELETE("/:id", required, h.Comment.Delete)
		comments.POST("/:id/like", required, h.Like.LikeComment)
		comments.POST("/:id/unlike", required, h.Like.UnlikeComment)
	}

	// --- 搜索模块 ---
	search := r.Group("/search")
	{
		search.GET("/videos", h.Search.SearchVideos)
		search.GET("/trending", h.Search.Trending)
		search.GET("/latest", h.Search.Latest)
	}
}
