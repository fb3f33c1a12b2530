package service

import (
	"Mosaic/internal/model"
	"Mosaic/internal/pkg/consts"
	"Mosaic/internal/pkg/es"
	"Mosaic/internal/pkg/graph"
	"Mosaic/internal/pkg/redis"
	"Mosaic/internal/repository"
	"context"
	"errors"
	log "log/slog"

	"github.com/goccy/go-json"
)

// ProfileService 资料查询失败时返回 nil，不向调用方报错
type ProfileService interface {
	GetProfileByID(ctx context.Context, userID string) *model.Profile
	GetProfileByName(ctx context.Context, userName string) *model.Profile
	UpdateProfileInCache(ctx context.Context, profile *model.Profile, userID string)
	InvalidateProfile(ctx context.Context, userID string)
}

type profileServiceImpl struct {
	cache    redis.CacheStore
	index    es.DocumentIndex
	userRepo repository.UserRepo
}

func NewProfileService(cache redis.CacheStore, index es.DocumentIndex, userRepo repository.UserRepo) ProfileService {
	return &profileServiceImpl{
		cache:    cache,
		index:    index,
		userRepo: userRepo,
	}
}

func (s *profileServiceImpl) GetProfileByID(ctx context.Context, userID string) *model.Profile {
	if userID == "" {
		return nil
	}
	return s.getProfile(ctx, consts.ProfileIDKey+userID, "userId", userID, s.userRepo.GetUserByID)
}

func (s *profileServiceImpl) GetProfileByName(ctx context.Context, userName string) *model.Profile {
	if userName == "" {
		return nil
	}
	return s.getProfile(ctx, consts.ProfileNameKey+userName, "userName", userName, s.userRepo.GetUserByName)
}

func (s *profileServiceImpl) getProfile(
	ctx context.Context,
	key, field, value string,
	lookup func(ctx context.Context, v string) (graph.Record, error),
) *model.Profile {
	if raw, ok := s.cache.Get(ctx, key); ok {
		profile := &model.Profile{}
		err := json.Unmarshal([]byte(raw), profile)
		if err == nil {
			return profile
		}
		log.WarnContext(ctx, "Cached profile is unreadable, rebuilding", "key", key, "err", err)
	}

	profile, err := s.buildProfile(ctx, value, lookup)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			log.InfoContext(ctx, "Profile not found", field, value)
		} else {
			log.ErrorContext(ctx, "Get profile failed", field, value, "err", err)
		}
		return nil
	}

	s.UpdateProfileInCache(ctx, profile, profile.UserID)
	return profile
}

// buildProfile 图中的属性优先，索引文档只补充缺失的字段
func (s *profileServiceImpl) buildProfile(
	ctx context.Context,
	value string,
	lookup func(ctx context.Context, v string) (graph.Record, error),
) (*model.Profile, error) {
	props, err := lookup(ctx, value)
	if errors.Is(err, graph.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	profile := &model.Profile{
		UserID:    graph.GetVertexProperty(props, "userId", ""),
		ProfileID: graph.GetVertexProperty(props, "profileId", ""),
		UserName:  graph.GetVertexProperty(props, "userName", ""),
		Bio:       graph.GetVertexProperty(props, "bio", ""),
		Pfp:       graph.GetVertexProperty(props, "pfp", ""),
		FirstName: graph.GetVertexProperty(props, "firstName", ""),
		LastName:  graph.GetVertexProperty(props, "lastName", ""),
		Pronouns:  graph.GetVertexProperty(props, "pronouns", ""),
		Link:      graph.GetVertexProperty(props, "link", ""),
		Gender:    graph.GetVertexProperty(props, "gender", ""),
	}
	if profile.UserID == "" {
		return nil, graph.ErrUnexpectedResultFormat
	}
	if profile.ProfileID == "" {
		return profile, nil
	}

	hits, err := s.index.Search(ctx, es.Profiles, es.ByProfileID(profile.ProfileID), 1, nil)
	if err != nil {
		return nil, err
	}
	if len(hits.Hits) == 0 {
		return profile, nil
	}

	doc := &model.ProfileDocument{}
	if err = json.Unmarshal(hits.Hits[0].Source, doc); err != nil {
		return nil, err
	}
	if profile.FirstName == "" {
		profile.FirstName = doc.FirstName
	}
	if profile.LastName == "" {
		profile.LastName = doc.LastName
	}
	if profile.Pfp == "" {
		profile.Pfp = doc.Pfp
	}
	return profile, nil
}

// UpdateProfileInCache 同时覆盖 id 和 userName 两个键
func (s *profileServiceImpl) UpdateProfileInCache(ctx context.Context, profile *model.Profile, userID string) {
	if profile == nil || userID == "" {
		return
	}
	b, err := json.Marshal(profile)
	if err != nil {
		log.ErrorContext(ctx, "Marshal profile failed", "userId", userID, "err", err)
		return
	}

	s.cache.Set(ctx, consts.ProfileIDKey+userID, string(b))
	if profile.UserName != "" {
		s.cache.Set(ctx, consts.ProfileNameKey+profile.UserName, string(b))
		s.cache.SetAdd(ctx, consts.ProfileNamesKey+userID, profile.UserName)
	}
}

// InvalidateProfile 删除该用户所有历史 userName 对应的缓存
func (s *profileServiceImpl) InvalidateProfile(ctx context.Context, userID string) {
	if userID == "" {
		return
	}

	idKey := consts.ProfileIDKey + userID
	namesKey := consts.ProfileNamesKey + userID
	keys := []string{idKey, namesKey}

	for _, name := range s.cache.SetMembers(ctx, namesKey) {
		keys = append(keys, consts.ProfileNameKey+name)
	}
	if raw, ok := s.cache.Get(ctx, idKey); ok {
		var cached struct {
			UserName string `json:"userName"`
		}
		if json.Unmarshal([]byte(raw), &cached) == nil && cached.UserName != "" {
			keys = append(keys, consts.ProfileNameKey+cached.UserName)
		}
	}

	s.cache.Delete(ctx, keys...)
}
