package model

import "time"

// Post 帖子聚合。PostID 来自图数据库，DocumentID 是索引中的文档 ID
type Post struct {
	PostID     string      `json:"postId,omitempty"`
	DocumentID string      `json:"documentId,omitempty"`
	User       PostUser    `json:"user"`
	Global     PostGlobal  `json:"global"`
	Media      []PostMedia `json:"media"`
	Hashtags   []string    `json:"hashtags,omitempty"`
}

// PostUser 作者快照
type PostUser struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Pfp      string `json:"pfp"`
}

// PostGlobal 帖子公共信息。CommentCount 和 Likes 读取时从图数据库计算
type PostGlobal struct {
	Caption          string                  `json:"caption"`
	Location         string                  `json:"location,omitempty"`
	DateTime         time.Time               `json:"dateTime"`
	CommentsDisabled bool                    `json:"commentsDisabled"`
	LikesDisabled    bool                    `json:"likesDisabled"`
	CommentCount     int64                   `json:"commentCount"`
	Likes            []LikeUser              `json:"likes"`
	Collaborators    map[string]Collaborator `json:"collaborators,omitempty"`
}

type Collaborator struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

// LikeUser 点赞用户
type LikeUser struct {
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
	ProfileID string `json:"profileId"`
}

// PostMedia 媒体条目，ID 在同一帖子内唯一
type PostMedia struct {
	ID        string `json:"id"`
	AltText   string `json:"altText,omitempty"`
	EntityTag string `json:"entityTag,omitempty"`
	URL       string `json:"url"`
	UserID    string `json:"userId"`
	PostID    string `json:"postId,omitempty"`
	MimeType  string `json:"mimeType"`
}

// ClearAggregates 清空派生字段，索引副本中的这些值不可信
func (p *Post) ClearAggregates() {
	p.Global.CommentCount = 0
	p.Global.Likes = []LikeUser{}
}
