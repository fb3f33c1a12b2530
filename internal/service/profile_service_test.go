package service

import (
	"Mosaic/internal/model"
	"Mosaic/internal/pkg/consts"
	"Mosaic/internal/pkg/es"
	"Mosaic/internal/pkg/graph"
	"context"
	"testing"

	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func annVertex() graph.Record {
	return graph.Record{
		"userId":    "u1",
		"userName":  "ann",
		"profileId": "pr1",
		"bio":       "hello",
		"pfp":       "ann.png",
		"pronouns":  []any{"she/her"},
	}
}

func profileIndex(t *testing.T, doc *model.ProfileDocument) *fakeIndex {
	src := mustJSON(t, doc)
	return &fakeIndex{searchFn: func(c es.Collection, _ *types.Query, _ int) (*es.Hits, error) {
		if c != es.Profiles {
			return &es.Hits{}, nil
		}
		return &es.Hits{Total: 1, Hits: []es.Hit{{ID: doc.ProfileID, Source: json.RawMessage(src)}}}, nil
	}}
}

func TestGetProfileWritesBothKeys(t *testing.T) {
	cache, mr := newTestCache(t)
	users := &fakeUserRepo{byID: map[string]graph.Record{"u1": annVertex()}}
	idx := profileIndex(t, &model.ProfileDocument{ProfileID: "pr1", UserID: "u1", UserName: "ann", FirstName: "Ann", LastName: "Lee"})
	svc := NewProfileService(cache, idx, users)
	ctx := context.Background()

	byID := svc.GetProfileByID(ctx, "u1")
	require.NotNil(t, byID)
	assert.Equal(t, "Ann", byID.FirstName)
	assert.Equal(t, "Lee", byID.LastName)
	assert.Equal(t, "she/her", byID.Pronouns)
	assert.True(t, mr.Exists(consts.ProfileIDKey+"u1"))
	assert.True(t, mr.Exists(consts.ProfileNameKey+"ann"))

	// 第二次查询只能命中缓存
	users.err = errBoom
	idx.searchFn = func(es.Collection, *types.Query, int) (*es.Hits, error) { return nil, errBoom }
	calls := users.calls

	byName := svc.GetProfileByName(ctx, "ann")
	require.NotNil(t, byName)
	assert.Equal(t, byID, byName)
	assert.Equal(t, calls, users.calls)
}

func TestGetProfileGraphPropertiesWin(t *testing.T) {
	cache, _ := newTestCache(t)
	vertex := annVertex()
	vertex["firstName"] = "Annie"
	users := &fakeUserRepo{byName: map[string]graph.Record{"ann": vertex}}
	idx := profileIndex(t, &model.ProfileDocument{ProfileID: "pr1", FirstName: "Ann", LastName: "Lee", Pfp: "doc.png"})

	profile := NewProfileService(cache, idx, users).GetProfileByName(context.Background(), "ann")
	require.NotNil(t, profile)
	assert.Equal(t, "Annie", profile.FirstName)
	assert.Equal(t, "Lee", profile.LastName)
	assert.Equal(t, "ann.png", profile.Pfp)
}

func TestGetProfileFailsSoft(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	missing := NewProfileService(cache, &fakeIndex{}, &fakeUserRepo{})
	assert.Nil(t, missing.GetProfileByID(ctx, "u404"))

	broken := NewProfileService(cache, &fakeIndex{}, &fakeUserRepo{err: errBoom})
	assert.Nil(t, broken.GetProfileByName(ctx, "ann"))

	idx := &fakeIndex{searchFn: func(es.Collection, *types.Query, int) (*es.Hits, error) { return nil, errBoom }}
	indexDown := NewProfileService(cache, idx, &fakeUserRepo{byID: map[string]graph.Record{"u1": annVertex()}})
	assert.Nil(t, indexDown.GetProfileByID(ctx, "u1"))
	assert.False(t, mr.Exists(consts.ProfileIDKey+"u1"))
}

func TestGetProfileWithoutProfileDocument(t *testing.T) {
	cache, _ := newTestCache(t)
	vertex := annVertex()
	delete(vertex, "profileId")
	idx := &fakeIndex{}

	profile := NewProfileService(cache, idx, &fakeUserRepo{byID: map[string]graph.Record{"u1": vertex}}).GetProfileByID(context.Background(), "u1")
	require.NotNil(t, profile)
	assert.Equal(t, "ann", profile.UserName)
	assert.Zero(t, idx.searchCount())
}

func TestUpdateProfileInCacheOverwritesBothKeys(t *testing.T) {
	cache, mr := newTestCache(t)
	svc := NewProfileService(cache, &fakeIndex{}, &fakeUserRepo{})
	ctx := context.Background()

	svc.UpdateProfileInCache(ctx, &model.Profile{UserID: "u1", UserName: "ann", Bio: "v1"}, "u1")
	svc.UpdateProfileInCache(ctx, &model.Profile{UserID: "u1", UserName: "ann", Bio: "v2"}, "u1")

	byID, _ := mr.Get(consts.ProfileIDKey + "u1")
	byName, _ := mr.Get(consts.ProfileNameKey + "ann")
	assert.Equal(t, byID, byName)
	assert.Contains(t, byID, `"bio":"v2"`)
}

func TestInvalidateProfileRemovesEveryAlias(t *testing.T) {
	cache, mr := newTestCache(t)
	svc := NewProfileService(cache, &fakeIndex{}, &fakeUserRepo{})
	ctx := context.Background()

	svc.UpdateProfileInCache(ctx, &model.Profile{UserID: "u1", UserName: "ann"}, "u1")
	svc.UpdateProfileInCache(ctx, &model.Profile{UserID: "u1", UserName: "anna"}, "u1")
	mr.Set(consts.ProfileIDKey+"u2", "{}")

	svc.InvalidateProfile(ctx, "u1")

	for _, key := range []string{
		consts.ProfileIDKey + "u1",
		consts.ProfileNameKey + "ann",
		consts.ProfileNameKey + "anna",
		consts.ProfileNamesKey + "u1",
	} {
		assert.False(t, mr.Exists(key), key)
	}
	assert.True(t, mr.Exists(consts.ProfileIDKey+"u2"))
}
