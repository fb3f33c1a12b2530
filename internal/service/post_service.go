package service

import (
	"Mosaic/internal/api/dto"
	"Mosaic/internal/model"
	"Mosaic/internal/pkg/consts"
	"Mosaic/internal/pkg/es"
	"Mosaic/internal/pkg/graph"
	"Mosaic/internal/pkg/redis"
	"Mosaic/internal/pkg/util"
	"Mosaic/internal/repository"
	"context"
	"errors"
	"fmt"
	log "log/slog"

	"github.com/goccy/go-json"
	"github.com/spf13/cast"
)

// MaxPageSize 分页上限
const MaxPageSize = 100

// ParseFailurePolicy 缓存中的帖子无法解析时的处理方式
type ParseFailurePolicy func(ctx context.Context, cache redis.CacheStore, key, documentID string)

// LeaveStale 保留旧缓存，记录到 post:stale 等待 TTL 过期
func LeaveStale(ctx context.Context, cache redis.CacheStore, _ string, documentID string) {
	cache.SetAdd(ctx, consts.PostStaleKey, documentID)
}

// EvictOnParseFailure 直接删除缓存
func EvictOnParseFailure(ctx context.Context, cache redis.CacheStore, key string, _ string) {
	cache.Delete(ctx, key)
}

func ParseFailurePolicyFor(evict bool) ParseFailurePolicy {
	if evict {
		return EvictOnParseFailure
	}
	return LeaveStale
}

type PostService interface {
	ResolveDocumentID(ctx context.Context, postID string) (string, error)
	GetPost(ctx context.Context, documentID string) (*model.Post, error)
	GetFullPost(ctx context.Context, postID string) (*dto.FullPostDTO, error)
	UpdateEntryURL(ctx context.Context, documentID, entryID, mimeType, url string) error
	AttachPostID(ctx context.Context, documentID, postID string) error
	DeletePost(ctx context.Context, documentID string) error
	ListPosts(ctx context.Context, userName, cursor string, size int) (*dto.PostPageDTO, error)
}

type postServiceImpl struct {
	cache          redis.CacheStore
	index          es.DocumentIndex
	postRepo       repository.PostRepo
	onParseFailure ParseFailurePolicy
}

func NewPostService(cache redis.CacheStore, index es.DocumentIndex, postRepo repository.PostRepo, policy ParseFailurePolicy) PostService {
	if policy == nil {
		policy = LeaveStale
	}
	return &postServiceImpl{
		cache:          cache,
		index:          index,
		postRepo:       postRepo,
		onParseFailure: policy,
	}
}

func (s *postServiceImpl) ResolveDocumentID(ctx context.Context, postID string) (string, error) {
	if postID == "" {
		return "", ErrParamInvalid
	}

	key := consts.PostIDKey + postID
	if documentID, ok := s.cache.Get(ctx, key); ok && documentID != "" {
		return documentID, nil
	}

	documentID, err := s.postRepo.GetDocumentID(ctx, postID)
	if err != nil {
		return "", err
	}
	if documentID == "" {
		return "", ErrPostNotFound
	}

	s.cache.Set(ctx, key, documentID)
	return documentID, nil
}

// GetPost 先读缓存再查索引，索引中也没有时返回 nil。
// post:doc 只存索引投影，聚合字段在 post:full 中
func (s *postServiceImpl) GetPost(ctx context.Context, documentID string) (*model.Post, error) {
	if documentID == "" {
		return nil, ErrParamInvalid
	}

	key := consts.PostDocKey + documentID
	if raw, ok := s.cache.Get(ctx, key); ok {
		post := &model.Post{}
		err := json.Unmarshal([]byte(raw), post)
		if err == nil {
			normalize(post, documentID)
			return post, nil
		}
		log.WarnContext(ctx, "Cached post is unreadable, falling back to index", "documentId", documentID, "err", err)
	}

	hits, err := s.index.Search(ctx, es.Main, es.ByDocumentID(documentID), 1, nil)
	if err != nil {
		return nil, err
	}
	if len(hits.Hits) == 0 {
		return nil, nil
	}
	post, err := toPost(hits.Hits[0])
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(post); err == nil {
		s.cache.Set(ctx, key, string(b))
	}
	return post, nil
}

func (s *postServiceImpl) GetFullPost(ctx context.Context, postID string) (*dto.FullPostDTO, error) {
	fail := func(step string, err error) error {
		log.ErrorContext(ctx, "Get full post failed", "postId", postID, "step", step, "err", err)
		if errors.Is(err, ErrPostNotFound) || errors.Is(err, ErrParamInvalid) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrPostRetrievalFailed, err)
	}

	documentID, err := s.ResolveDocumentID(ctx, postID)
	if err != nil {
		return nil, fail("resolve", err)
	}

	post, err := s.GetPost(ctx, documentID)
	if err != nil {
		return nil, fail("get", err)
	}
	if post == nil {
		return nil, fail("get", ErrPostNotFound)
	}
	post.PostID = postID
	post.DocumentID = documentID

	commentCount, err := s.postRepo.CountComments(ctx, postID)
	if err != nil {
		return nil, fail("comments", err)
	}
	likes, err := s.postRepo.GetLikes(ctx, postID)
	if err != nil {
		return nil, fail("likes", err)
	}
	pfp, err := s.ownerPfp(ctx, postID, post)
	if err != nil {
		return nil, fail("owner", err)
	}

	post.Global.CommentCount = commentCount
	post.Global.Likes = likes
	if post.Global.Likes == nil {
		post.Global.Likes = []model.LikeUser{}
	}
	post.User.Pfp = pfp

	if b, err := json.Marshal(post); err == nil {
		s.cache.Set(ctx, consts.PostFullKey+documentID, string(b))
	}
	return &dto.FullPostDTO{DocumentID: documentID, Post: post}, nil
}

// ownerPfp 优先使用缓存中的作者资料
func (s *postServiceImpl) ownerPfp(ctx context.Context, postID string, post *model.Post) (string, error) {
	if post.User.UserID != "" {
		if raw, ok := s.cache.Get(ctx, consts.ProfileIDKey+post.User.UserID); ok {
			profile := &model.Profile{}
			if err := json.Unmarshal([]byte(raw), profile); err == nil && profile.Pfp != "" {
				return profile.Pfp, nil
			}
		}
	}

	owner, err := s.postRepo.GetOwner(ctx, postID)
	if errors.Is(err, graph.ErrNotFound) {
		return post.User.Pfp, nil
	}
	if err != nil {
		return "", err
	}
	return owner.Pfp, nil
}

func (s *postServiceImpl) UpdateEntryURL(ctx context.Context, documentID, entryID, mimeType, url string) error {
	if documentID == "" || entryID == "" || url == "" {
		return ErrParamInvalid
	}

	res, err := s.index.UpdateByScript(ctx, es.Main, documentID, es.UpdateEntryURLScript, map[string]any{
		"entryId":  entryID,
		"url":      url,
		"mimeType": mimeType,
	}, false)
	if err != nil {
		return err
	}
	if res.Outcome != es.Updated {
		log.WarnContext(ctx, "Entry url update rejected by index", "documentId", documentID, "entryId", entryID, "outcome", res.Outcome.String())
		return fmt.Errorf("%w: %s", ErrIndexUpdateFailed, res.Outcome)
	}

	for _, key := range postKeys(documentID) {
		s.patchCachedEntry(ctx, key, documentID, entryID, url, mimeType)
	}
	return nil
}

func (s *postServiceImpl) patchCachedEntry(ctx context.Context, key, documentID, entryID, url, mimeType string) {
	raw, ok := s.cache.Get(ctx, key)
	if !ok {
		return
	}

	patched, found, err := patchMediaEntry(raw, entryID, url, mimeType)
	if err != nil {
		log.WarnContext(ctx, "Cached post is unreadable after entry update", "key", key, "err", err)
		s.onParseFailure(ctx, s.cache, key, documentID)
		return
	}
	if !found {
		// 缓存与索引不一致，以索引为准
		s.cache.Delete(ctx, key)
		return
	}
	s.cache.Set(ctx, key, patched)
}

// AttachPostID 回填 postId；NoOp 表示已经写过
func (s *postServiceImpl) AttachPostID(ctx context.Context, documentID, postID string) error {
	if documentID == "" || postID == "" {
		return ErrParamInvalid
	}

	res, err := s.index.UpdateByScript(ctx, es.Main, documentID, es.AttachPostIDScript, map[string]any{
		"postId": postID,
	}, false)
	if err != nil {
		return err
	}
	if res.Outcome == es.NotFound {
		return fmt.Errorf("%w: %s", ErrIndexUpdateFailed, res.Outcome)
	}

	s.cache.Delete(ctx, postKeys(documentID)...)
	s.cache.Set(ctx, consts.PostIDKey+postID, documentID)
	return nil
}

func (s *postServiceImpl) DeletePost(ctx context.Context, documentID string) error {
	if documentID == "" {
		return ErrParamInvalid
	}

	keys := postKeys(documentID)
	for _, key := range postKeys(documentID) {
		raw, ok := s.cache.Get(ctx, key)
		if !ok {
			continue
		}
		var cached struct {
			PostID string `json:"postId"`
		}
		if json.Unmarshal([]byte(raw), &cached) == nil && cached.PostID != "" {
			keys = append(keys, consts.PostIDKey+cached.PostID)
			break
		}
	}

	outcome, err := s.index.Delete(ctx, es.Main, documentID)
	if err != nil {
		return err
	}
	if outcome == es.AlreadyAbsent {
		log.InfoContext(ctx, "Post already absent from index", "documentId", documentID)
	}

	s.cache.Delete(ctx, keys...)
	return nil
}

func (s *postServiceImpl) ListPosts(ctx context.Context, userName, cursor string, size int) (*dto.PostPageDTO, error) {
	if size <= 0 {
		size = es.DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	after, err := decodePostCursor(cursor)
	if err != nil {
		return nil, ErrParamInvalid
	}

	query := es.PostsByUserName(userName)
	hits, err := s.index.SearchWithPagination(ctx, es.Main, query, after, size)
	if err != nil {
		return nil, err
	}
	total, err := s.index.Count(ctx, es.Main, query)
	if err != nil {
		return nil, err
	}

	page := &dto.PostPageDTO{Posts: make([]*model.Post, 0, len(hits.Hits)), Total: total}
	for _, hit := range hits.Hits {
		post, err := toPost(hit)
		if err != nil {
			log.WarnContext(ctx, "Skipping unreadable post document", "documentId", hit.ID, "err", err)
			continue
		}
		page.Posts = append(page.Posts, post)
	}

	if n := len(hits.Hits); n == size {
		last := hits.Hits[n-1].Sort
		values := make([]interface{}, len(last))
		for i, v := range last {
			values[i] = v
		}
		page.NextCursor = util.EncodeCursor(values)
		page.HasMore = page.NextCursor != ""
	}
	return page, nil
}

func decodePostCursor(cursor string) (*es.Cursor, error) {
	values, err := util.DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}
	if values == nil {
		return nil, nil
	}
	if len(values) != 2 {
		return nil, fmt.Errorf("cursor has %d sort values", len(values))
	}
	id, err := cast.ToStringE(values[1])
	if err != nil {
		return nil, err
	}
	return &es.Cursor{DateTime: values[0], ID: id}, nil
}

func postKeys(documentID string) []string {
	return []string{consts.PostDocKey + documentID, consts.PostFullKey + documentID}
}

// toPost 索引副本不含可信的聚合字段
func toPost(hit es.Hit) (*model.Post, error) {
	post := &model.Post{}
	if err := json.Unmarshal(hit.Source, post); err != nil {
		return nil, err
	}
	normalize(post, hit.ID)
	return post, nil
}

func normalize(post *model.Post, documentID string) {
	if post.DocumentID == "" {
		post.DocumentID = documentID
	}
	if post.Media == nil {
		post.Media = []model.PostMedia{}
	}
	if len(post.Hashtags) == 0 {
		if tags := util.ExtractTags(post.Global.Caption); len(tags) > 0 {
			post.Hashtags = tags
		}
	}
	post.ClearAggregates()
}

// patchMediaEntry 只改写匹配的条目，其余条目保留原始字节
func patchMediaEntry(raw, entryID, url, mimeType string) (string, bool, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return "", false, err
	}
	rawMedia, ok := doc["media"]
	if !ok {
		return "", false, nil
	}

	var media []json.RawMessage
	if err := json.Unmarshal(rawMedia, &media); err != nil {
		return "", false, err
	}

	found := false
	for i, entry := range media {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(entry, &fields); err != nil {
			return "", false, err
		}
		var id string
		if rawID, ok := fields["id"]; !ok || json.Unmarshal(rawID, &id) != nil || id != entryID {
			continue
		}

		fields["url"], _ = json.Marshal(url)
		fields["mimeType"], _ = json.Marshal(mimeType)
		b, err := json.Marshal(fields)
		if err != nil {
			return "", false, err
		}
		media[i] = b
		found = true
		break
	}
	if !found {
		return "", false, nil
	}

	b, err := json.Marshal(media)
	if err != nil {
		return "", false, err
	}
	doc["media"] = b

	out, err := json.Marshal(doc)
	if err != nil {
		return "", false, err
	}
	return string(out), true, nil
}
