package dto

// SearchVideoRequest 搜索请求参数
type SearchVideoRequest struct {
	Query       string `form:"query" binding:"omitempty,max=200"`
	Uploader    string `form:"uploader" binding:"omitempty,max=50"`
	MinDuration *int   `form:"min_duration" binding:"omitempty,min=0"`
	MaxDuration *int   `form:"max_duration" binding:"omitempty,min=0"`
	SortBy      string `form:"sort_by" binding:"omitempty,oneof=created_at views duration"`
	SortOrder   string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
	Limit       int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset      int    `form:"offset" binding:"omitempty,min=0"`
}

// TopListRequest 榜单参数
type TopListRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}
