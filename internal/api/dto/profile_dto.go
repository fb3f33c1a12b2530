package dto

import "Mosaic/internal/model"

type ProfileDTO struct {
	UserID    string `json:"userId"`
	ProfileID string `json:"profileId"`
	UserName  string `json:"userName"`
	Bio       string `json:"bio"`
	Pfp       string `json:"pfp"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Pronouns  string `json:"pronouns,omitempty"`
	Link      string `json:"link,omitempty"`
	Gender    string `json:"gender,omitempty"`
}

// SuggestionsDTO 补全结果，整体缓存
type SuggestionsDTO struct {
	PostSuggestions    []string                 `json:"postSuggestions"`
	ProfileSuggestions []string                 `json:"profileSuggestions"`
	UniqueProfiles     []*model.ProfileDocument `json:"uniqueProfiles"`
}

type SuggestionQueryDTO struct {
	Input string `form:"input" binding:"required"`
	Scope string `form:"scope" validate:"omitempty,oneof=both profiles"`
	Size  int    `form:"size" validate:"omitempty,min=1,max=50"`
}
