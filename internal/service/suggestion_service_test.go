package service

import (
	"Mosaic/internal/model"
	"Mosaic/internal/pkg/consts"
	"Mosaic/internal/pkg/es"
	"context"
	"testing"

	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func options(texts ...string) []es.SuggestOption {
	out := make([]es.SuggestOption, 0, len(texts))
	for _, s := range texts {
		out = append(out, es.SuggestOption{Text: s})
	}
	return out
}

func profileHits(t *testing.T, names ...string) *es.Hits {
	hits := &es.Hits{}
	for i, n := range names {
		src := mustJSON(t, &model.ProfileDocument{ProfileID: "pr" + string(rune('a'+i)), UserName: n})
		hits.Hits = append(hits.Hits, es.Hit{ID: "pr" + n, Source: json.RawMessage(src)})
	}
	return hits
}

func TestHashtagSuggestionsUseHashtagField(t *testing.T) {
	cache, _ := newTestCache(t)
	idx := &fakeIndex{
		suggestFn: func(c es.Collection, _, _ string) ([]es.SuggestOption, error) {
			if c == es.Main {
				return options("cat", "cats", "cat", "catnip", "cathedral", "catalog", "cattle"), nil
			}
			return []es.SuggestOption{
				{Text: "cat", Source: json.RawMessage(`{"userName":"catlover"}`)},
				{Text: "cat", Source: json.RawMessage(`{"userName":"catlover"}`)},
				{Text: "cats", Source: json.RawMessage(`{"userName":"kit"}`)},
			}, nil
		},
		searchFn: func(es.Collection, *types.Query, int) (*es.Hits, error) {
			return profileHits(t, "catlover", "kit", "kit"), nil
		},
	}
	svc := NewSuggestionService(cache, idx, 5)

	res, err := svc.GetSuggestions(context.Background(), "#Cat", consts.SuggestScopeBoth, 5)
	require.NoError(t, err)

	require.Len(t, idx.suggests, 2)
	for _, call := range idx.suggests {
		assert.Equal(t, es.HashtagSuggestField, call.Field)
		assert.Equal(t, "cat", call.Prefix)
		assert.Equal(t, 5, call.Size)
	}
	assert.Equal(t, []string{"cat", "cats", "catnip", "cathedral", "catalog"}, res.PostSuggestions)
	assert.Equal(t, []string{"cat", "cats"}, res.ProfileSuggestions)
	require.Len(t, res.UniqueProfiles, 2)
	assert.Equal(t, "catlover", res.UniqueProfiles[0].UserName)
	assert.Equal(t, "kit", res.UniqueProfiles[1].UserName)
}

func TestPlainSuggestionsUseLocationAndUserName(t *testing.T) {
	cache, _ := newTestCache(t)
	idx := &fakeIndex{}
	svc := NewSuggestionService(cache, idx, 5)

	res, err := svc.GetSuggestions(context.Background(), "  Lis ", "", 0)
	require.NoError(t, err)
	assert.Empty(t, res.UniqueProfiles)

	fields := map[es.Collection]string{}
	for _, call := range idx.suggests {
		fields[call.Collection] = call.Field
		assert.Equal(t, "lis", call.Prefix)
		assert.Equal(t, 5, call.Size)
	}
	assert.Equal(t, es.LocationSuggestField, fields[es.Main])
	assert.Equal(t, es.UserNameSuggestField, fields[es.Profiles])
	assert.Zero(t, idx.searchCount())
}

func TestProfileScopeSkipsPostCompletion(t *testing.T) {
	cache, _ := newTestCache(t)
	idx := &fakeIndex{suggestFn: func(es.Collection, string, string) ([]es.SuggestOption, error) {
		return options("ann"), nil
	}}
	svc := NewSuggestionService(cache, idx, 5)

	res, err := svc.GetSuggestions(context.Background(), "an", consts.SuggestScopeProfiles, 3)
	require.NoError(t, err)
	require.Len(t, idx.suggests, 1)
	assert.Equal(t, es.Profiles, idx.suggests[0].Collection)
	assert.Empty(t, res.PostSuggestions)
	assert.Equal(t, []string{"ann"}, res.ProfileSuggestions)
}

func TestSuggestionsAreCached(t *testing.T) {
	cache, mr := newTestCache(t)
	idx := &fakeIndex{suggestFn: func(es.Collection, string, string) ([]es.SuggestOption, error) {
		return options("porto"), nil
	}}
	svc := NewSuggestionService(cache, idx, 5)
	ctx := context.Background()

	first, err := svc.GetSuggestions(ctx, "Por", "", 4)
	require.NoError(t, err)
	assert.True(t, mr.Exists("suggest:por:both:4"))

	idx.suggestFn = func(es.Collection, string, string) ([]es.SuggestOption, error) { return nil, errBoom }
	second, err := svc.GetSuggestions(ctx, "por", consts.SuggestScopeBoth, 4)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, idx.suggests, 2)
}

func TestSuggestionErrorsPropagate(t *testing.T) {
	cache, mr := newTestCache(t)
	idx := &fakeIndex{suggestFn: func(c es.Collection, _, _ string) ([]es.SuggestOption, error) {
		if c == es.Main {
			return nil, errBoom
		}
		return options("x"), nil
	}}

	_, err := NewSuggestionService(cache, idx, 5).GetSuggestions(context.Background(), "x", "", 5)
	assert.ErrorIs(t, err, errBoom)
	assert.Empty(t, mr.Keys())
}

func TestSuggestionsRejectBadInput(t *testing.T) {
	cache, _ := newTestCache(t)
	svc := NewSuggestionService(cache, &fakeIndex{}, 5)
	ctx := context.Background()

	_, err := svc.GetSuggestions(ctx, "   ", "", 5)
	assert.ErrorIs(t, err, ErrParamInvalid)
	_, err = svc.GetSuggestions(ctx, "#", "", 5)
	assert.ErrorIs(t, err, ErrParamInvalid)
	_, err = svc.GetSuggestions(ctx, "cat", "posts", 5)
	assert.ErrorIs(t, err, ErrParamInvalid)
}

func TestFlushSuggestions(t *testing.T) {
	cache, mr := newTestCache(t)
	mr.Set("suggest:a:both:5", "{}")
	mr.Set("suggest:b:profiles:5", "{}")
	mr.Set(consts.PostDocKey+"d1", "{}")

	n := NewSuggestionService(cache, &fakeIndex{}, 5).Flush(context.Background())
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{consts.PostDocKey + "d1"}, mr.Keys())
}
