package service

import (
	"Mosaic/internal/api/dto"
	"Mosaic/internal/model"
	"Mosaic/internal/pkg/consts"
	"Mosaic/internal/pkg/es"
	"Mosaic/internal/pkg/redis"
	"Mosaic/internal/pkg/util"
	"context"
	log "log/slog"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"
)

type SuggestionService interface {
	GetSuggestions(ctx context.Context, input, scope string, size int) (*dto.SuggestionsDTO, error)
	Flush(ctx context.Context) int
}

type suggestionServiceImpl struct {
	cache       redis.CacheStore
	index       es.DocumentIndex
	defaultSize int
}

func NewSuggestionService(cache redis.CacheStore, index es.DocumentIndex, defaultSize int) SuggestionService {
	if defaultSize <= 0 {
		defaultSize = 5
	}
	return &suggestionServiceImpl{
		cache:       cache,
		index:       index,
		defaultSize: defaultSize,
	}
}

func suggestionKey(input, scope string, size int) string {
	return consts.SuggestKey + input + ":" + scope + ":" + strconv.Itoa(size)
}

func (s *suggestionServiceImpl) GetSuggestions(ctx context.Context, input, scope string, size int) (*dto.SuggestionsDTO, error) {
	input = util.NormalizeInput(input)
	if input == "" || input == consts.HashtagPrefix {
		return nil, ErrParamInvalid
	}
	switch scope {
	case "":
		scope = consts.SuggestScopeBoth
	case consts.SuggestScopeBoth, consts.SuggestScopeProfiles:
	default:
		return nil, ErrParamInvalid
	}
	if size <= 0 {
		size = s.defaultSize
	}

	key := suggestionKey(input, scope, size)
	if raw, ok := s.cache.Get(ctx, key); ok {
		cached := &dto.SuggestionsDTO{}
		err := json.Unmarshal([]byte(raw), cached)
		if err == nil {
			return cached, nil
		}
		log.WarnContext(ctx, "Cached suggestions are unreadable", "key", key, "err", err)
	}

	postField, profileField := es.LocationSuggestField, es.UserNameSuggestField
	prefix := input
	if strings.HasPrefix(input, consts.HashtagPrefix) {
		prefix = strings.TrimPrefix(input, consts.HashtagPrefix)
		postField, profileField = es.HashtagSuggestField, es.HashtagSuggestField
	}

	var postOpts, profileOpts []es.SuggestOption
	g, gCtx := errgroup.WithContext(ctx)
	if scope == consts.SuggestScopeBoth {
		g.Go(func() error {
			var err error
			postOpts, err = s.index.Suggest(gCtx, es.Main, postField, prefix, size)
			return err
		})
	}
	g.Go(func() error {
		var err error
		profileOpts, err = s.index.Suggest(gCtx, es.Profiles, profileField, prefix, size)
		return err
	})
	if err := g.Wait(); err != nil {
		log.ErrorContext(ctx, "Suggest failed", "input", input, "scope", scope, "err", err)
		return nil, err
	}

	result := &dto.SuggestionsDTO{
		PostSuggestions:    util.DedupeCap(optionTexts(postOpts), size),
		ProfileSuggestions: util.DedupeCap(optionTexts(profileOpts), size),
		UniqueProfiles:     []*model.ProfileDocument{},
	}

	names := util.DedupeCap(profileNames(profileOpts), size)
	if len(names) > 0 {
		hits, err := s.index.Search(ctx, es.Profiles, es.ByUserNames(names), len(names), nil)
		if err != nil {
			return nil, err
		}
		seen := make(map[string]struct{}, len(hits.Hits))
		for _, hit := range hits.Hits {
			doc := &model.ProfileDocument{}
			if err = json.Unmarshal(hit.Source, doc); err != nil {
				log.WarnContext(ctx, "Skipping unreadable profile document", "profileId", hit.ID, "err", err)
				continue
			}
			if _, ok := seen[doc.UserName]; ok {
				continue
			}
			seen[doc.UserName] = struct{}{}
			result.UniqueProfiles = append(result.UniqueProfiles, doc)
		}
	}

	if b, err := json.Marshal(result); err == nil {
		s.cache.Set(ctx, key, string(b))
	}
	return result, nil
}

// Flush 清空所有补全缓存，返回删除的键数
func (s *suggestionServiceImpl) Flush(ctx context.Context) int {
	keys := s.cache.Scan(ctx, consts.SuggestKeyPrefix)
	if len(keys) > 0 {
		s.cache.Delete(ctx, keys...)
	}
	log.InfoContext(ctx, "Suggestion cache flushed", "keys", len(keys))
	return len(keys)
}

func optionTexts(opts []es.SuggestOption) []string {
	out := make([]string, 0, len(opts))
	for _, o := range opts {
		out = append(out, o.Text)
	}
	return out
}

// profileNames 优先取 _source.userName
func profileNames(opts []es.SuggestOption) []string {
	out := make([]string, 0, len(opts))
	for _, o := range opts {
		var src struct {
			UserName string `json:"userName"`
		}
		if len(o.Source) > 0 && json.Unmarshal(o.Source, &src) == nil && src.UserName != "" {
			out = append(out, src.UserName)
			continue
		}
		out = append(out, o.Text)
	}
	return out
}
