package dto

// TokenDTO token 为空时由服务端生成
type TokenDTO struct {
	UserID    *string `json:"userId" binding:"required" validate:"min=1"`
	Token     *string `json:"token" validate:"omitempty,min=1,max=512"`
	Timestamp *int64  `json:"timestamp"`
}
