package dto

import "Mosaic/internal/model"

// FullPostDTO 附带聚合字段的完整帖子
type FullPostDTO struct {
	DocumentID string      `json:"documentId"`
	Post       *model.Post `json:"post"`
}

type PostPageDTO struct {
	Posts      []*model.Post `json:"posts"`
	Total      int64         `json:"total"`
	NextCursor string        `json:"nextCursor,omitempty"`
	HasMore    bool          `json:"hasMore"`
}

type PostPageQueryDTO struct {
	UserName string `form:"user_name"`
	Cursor   string `form:"cursor"`
	Size     int    `form:"size" validate:"omitempty,min=1,max=100"`
}

type EntryURLUpdateDTO struct {
	URL      *string `json:"url" binding:"required" validate:"url"`
	MimeType *string `json:"mimeType" binding:"required" validate:"min=1,max=255"`
}

type AttachPostIDDTO struct {
	PostID *string `json:"postId" binding:"required" validate:"min=1"`
}
