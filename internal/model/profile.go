package model

// Profile 用户资料投影
type Profile struct {
	UserID    string `json:"userId"`
	ProfileID string `json:"profileId"`
	UserName  string `json:"userName"`
	Bio       string `json:"bio"`
	Pfp       string `json:"pfp"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Pronouns  string `json:"pronouns"`
	Link      string `json:"link"`
	Gender    string `json:"gender"`
}

// ProfileDocument profiles 索引中的文档
type ProfileDocument struct {
	ProfileID string   `json:"profileId"`
	UserID    string   `json:"userId"`
	UserName  string   `json:"userName"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Pfp       string   `json:"pfp,omitempty"`
	Hashtags  []string `json:"hashtags,omitempty"`
}
