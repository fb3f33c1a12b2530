package service

import (
	"Mosaic/internal/api/config"
	"Mosaic/internal/model"
	"Mosaic/internal/pkg/es"
	"Mosaic/internal/pkg/graph"
	"Mosaic/internal/pkg/redis"
	"Mosaic/internal/repository"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
)

var errBoom = errors.New("boom")

func newTestCache(t *testing.T) (*redis.Cache, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	c := redis.NewCache(config.RedisConfig{Addr: s.Addr(), PoolSize: 2, DefaultTTL: 3600}, nil)
	t.Cleanup(func() { _ = c.Close() })
	return c, s
}

type suggestCall struct {
	Collection es.Collection
	Field      string
	Prefix     string
	Size       int
}

type updateCall struct {
	ID     string
	Script string
	Params map[string]any
}

// fakeIndex 可按需替换各个方法的行为
type fakeIndex struct {
	mu sync.Mutex

	searchFn  func(c es.Collection, q *types.Query, size int) (*es.Hits, error)
	pageFn    func(after *es.Cursor, size int) (*es.Hits, error)
	countFn   func() (int64, error)
	updateFn  func(id, script string) (*es.UpdateResult, error)
	deleteFn  func(id string) (es.DeleteOutcome, error)
	suggestFn func(c es.Collection, field, prefix string) ([]es.SuggestOption, error)

	searches []es.Collection
	updates  []updateCall
	suggests []suggestCall
	afters   []*es.Cursor
}

var _ es.DocumentIndex = (*fakeIndex)(nil)

func (f *fakeIndex) Insert(context.Context, es.Collection, string, any) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeIndex) UpdateByScript(_ context.Context, _ es.Collection, id, script string, params map[string]any, _ bool) (*es.UpdateResult, error) {
	f.mu.Lock()
	f.updates = append(f.updates, updateCall{ID: id, Script: script, Params: params})
	f.mu.Unlock()
	if f.updateFn == nil {
		return &es.UpdateResult{Outcome: es.Updated}, nil
	}
	return f.updateFn(id, script)
}

func (f *fakeIndex) Delete(_ context.Context, _ es.Collection, id string) (es.DeleteOutcome, error) {
	if f.deleteFn == nil {
		return es.Deleted, nil
	}
	return f.deleteFn(id)
}

func (f *fakeIndex) Search(_ context.Context, c es.Collection, q *types.Query, size int, _ *types.SortOptions) (*es.Hits, error) {
	f.mu.Lock()
	f.searches = append(f.searches, c)
	f.mu.Unlock()
	if f.searchFn == nil {
		return &es.Hits{}, nil
	}
	return f.searchFn(c, q, size)
}

func (f *fakeIndex) SearchWithPagination(_ context.Context, _ es.Collection, _ *types.Query, after *es.Cursor, size int) (*es.Hits, error) {
	f.mu.Lock()
	f.afters = append(f.afters, after)
	f.mu.Unlock()
	if f.pageFn == nil {
		return &es.Hits{}, nil
	}
	return f.pageFn(after, size)
}

func (f *fakeIndex) Count(context.Context, es.Collection, *types.Query) (int64, error) {
	if f.countFn == nil {
		return 0, nil
	}
	return f.countFn()
}

func (f *fakeIndex) Suggest(_ context.Context, c es.Collection, field, prefix string, size int) ([]es.SuggestOption, error) {
	f.mu.Lock()
	f.suggests = append(f.suggests, suggestCall{Collection: c, Field: field, Prefix: prefix, Size: size})
	f.mu.Unlock()
	if f.suggestFn == nil {
		return nil, nil
	}
	return f.suggestFn(c, field, prefix)
}

func (f *fakeIndex) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.searches)
}

type fakePostRepo struct {
	documentIDs map[string]string
	comments    int64
	likes       []model.LikeUser
	owner       *repository.PostOwner
	err         error
	commentErr  error

	docCalls   int
	ownerCalls int
}

var _ repository.PostRepo = (*fakePostRepo)(nil)

func (f *fakePostRepo) GetDocumentID(_ context.Context, postID string) (string, error) {
	f.docCalls++
	if f.err != nil {
		return "", f.err
	}
	return f.documentIDs[postID], nil
}

func (f *fakePostRepo) CountComments(context.Context, string) (int64, error) {
	if f.commentErr != nil {
		return 0, f.commentErr
	}
	return f.comments, nil
}

func (f *fakePostRepo) GetLikes(context.Context, string) ([]model.LikeUser, error) {
	return f.likes, nil
}

func (f *fakePostRepo) GetOwner(context.Context, string) (*repository.PostOwner, error) {
	f.ownerCalls++
	if f.owner == nil {
		return nil, graph.ErrNotFound
	}
	return f.owner, nil
}

type fakeUserRepo struct {
	byID   map[string]graph.Record
	byName map[string]graph.Record
	err    error

	calls int
}

var _ repository.UserRepo = (*fakeUserRepo)(nil)

func (f *fakeUserRepo) GetUserByID(_ context.Context, userID string) (graph.Record, error) {
	return f.find(f.byID, userID)
}

func (f *fakeUserRepo) GetUserByName(_ context.Context, userName string) (graph.Record, error) {
	return f.find(f.byName, userName)
}

func (f *fakeUserRepo) find(m map[string]graph.Record, key string) (graph.Record, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	rec, ok := m[key]
	if !ok {
		return nil, graph.ErrNotFound
	}
	return rec, nil
}

type fakeTokenRepo struct {
	tokens []*model.Token
	err    error
}

func (f *fakeTokenRepo) UpsertToken(_ context.Context, token *model.Token) error {
	if f.err != nil {
		return f.err
	}
	f.tokens = append(f.tokens, token)
	return nil
}
