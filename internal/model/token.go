package model

// TokenKind 令牌顶点标签
type TokenKind string

const (
	ConfirmationToken TokenKind = "ConfirmationToken"
	ForgotToken       TokenKind = "ForgotToken"
)

// Token 仅存在于图数据库，不缓存
type Token struct {
	Kind      TokenKind `json:"kind"`
	UserID    string    `json:"userId"`
	Token     string    `json:"token"`
	Timestamp int64     `json:"timestamp"`
}
