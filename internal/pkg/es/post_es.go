package es

import "github.com/elastic/go-elasticsearch/v8/typedapi/types"

// 补全字段
const (
	HashtagSuggestField  = "hashtags.suggest"
	LocationSuggestField = "global.location.suggest"
	UserNameSuggestField = "userName.suggest"
)

// UpdateEntryURLScript 找到第一个 id 匹配的媒体条目，只改 url 和 mimeType；没有匹配时不写入
const UpdateEntryURLScript = `
boolean found = false;
if (ctx._source.media != null) {
  for (def m : ctx._source.media) {
    if (m.id == params.entryId) {
      m.url = params.url;
      m.mimeType = params.mimeType;
      found = true;
      break;
    }
  }
}
if (!found) { ctx.op = 'noop'; }
`

// AttachPostIDScript 为帖子及其所有媒体条目写入 postId；已一致时不写入
const AttachPostIDScript = `
boolean changed = ctx._source.postId != params.postId;
ctx._source.postId = params.postId;
if (ctx._source.media != null) {
  for (def m : ctx._source.media) {
    if (m.postId != params.postId) {
      m.postId = params.postId;
      changed = true;
    }
  }
}
if (!changed) { ctx.op = 'noop'; }
`

// ByDocumentID 按文档 ID 精确匹配
func ByDocumentID(documentID string) *types.Query {
	return &types.Query{
		Term: map[string]types.TermQuery{
			"_id": {Value: documentID},
		},
	}
}

// PostsByUserName 用户帖子列表；userName 为空时匹配全部
func PostsByUserName(userName string) *types.Query {
	if userName == "" {
		return &types.Query{MatchAll: &types.MatchAllQuery{}}
	}
	return &types.Query{
		Term: map[string]types.TermQuery{
			"user.userName": {Value: userName},
		},
	}
}
