package dto

// MediaEventDTO 媒体处理完成事件
type MediaEventDTO struct {
	Type       string `json:"type" validate:"oneof=entry_url post_linked"`
	DocumentID string `json:"documentId" validate:"required"`
	EntryID    string `json:"entryId" validate:"required_if=Type entry_url"`
	MimeType   string `json:"mimeType" validate:"required_if=Type entry_url"`
	URL        string `json:"url" validate:"required_if=Type entry_url"`
	PostID     string `json:"postId" validate:"required_if=Type post_linked"`
}
