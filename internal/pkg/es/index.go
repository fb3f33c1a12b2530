package es

import (
	"Mosaic/internal/api/config"
	"Mosaic/internal/pkg/metrics"
	"Mosaic/internal/pkg/retry"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/result"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/sortorder"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Collection 逻辑集合
type Collection string

const (
	Main     Collection = "main"
	Profiles Collection = "profiles"
)

const (
	DefaultPageSize = 10

	// 分页排序键 (dateTime, documentId)
	SortDateField = "global.dateTime"
	SortIDField   = "documentId"
)

// UpdateOutcome 脚本更新结果，只有 Updated 表示成功
type UpdateOutcome int

const (
	Updated UpdateOutcome = iota + 1
	NoOp
	NotFound
)

func (o UpdateOutcome) String() string {
	switch o {
	case Updated:
		return "updated"
	case NoOp:
		return "noop"
	case NotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// DeleteOutcome 删除结果，文档不存在也视为成功
type DeleteOutcome int

const (
	Deleted DeleteOutcome = iota + 1
	AlreadyAbsent
)

type UpdateResult struct {
	Outcome UpdateOutcome
	Source  json.RawMessage
}

type Hit struct {
	ID     string
	Source json.RawMessage
	Sort   []types.FieldValue
}

type Hits struct {
	Total int64
	Hits  []Hit
}

// Cursor search_after 游标
type Cursor struct {
	DateTime types.FieldValue
	ID       string
}

type SuggestOption struct {
	Text   string
	ID     string
	Source json.RawMessage
}

// DocumentIndex 文档索引。所有调用都经过重试
type DocumentIndex interface {
	Insert(ctx context.Context, collection Collection, id string, document any) (string, error)
	UpdateByScript(ctx context.Context, collection Collection, id, script string, params map[string]any, returnSource bool) (*UpdateResult, error)
	Delete(ctx context.Context, collection Collection, id string) (DeleteOutcome, error)
	Search(ctx context.Context, collection Collection, query *types.Query, size int, sort *types.SortOptions) (*Hits, error)
	SearchWithPagination(ctx context.Context, collection Collection, query *types.Query, after *Cursor, size int) (*Hits, error)
	Count(ctx context.Context, collection Collection, query *types.Query) (int64, error)
	Suggest(ctx context.Context, collection Collection, field, prefix string, size int) ([]SuggestOption, error)
}

type Index struct {
	client  *elasticsearch.TypedClient
	retry   *retry.Executor
	metrics *metrics.Metrics
	indices map[Collection]string
}

var _ DocumentIndex = (*Index)(nil)

func NewIndex(client *elasticsearch.TypedClient, indices config.ElasticIndices, r *retry.Executor, m *metrics.Metrics) *Index {
	return &Index{
		client:  client,
		retry:   r,
		metrics: m,
		indices: map[Collection]string{
			Main:     indices.Main,
			Profiles: indices.Profiles,
		},
	}
}

func (s *Index) index(c Collection) (string, error) {
	name, ok := s.indices[c]
	if !ok || name == "" {
		return "", fmt.Errorf("unknown collection %q", c)
	}
	return name, nil
}

func isStatus(err error, status int) bool {
	var e *types.ElasticsearchError
	return errors.As(err, &e) && e.Status == status
}

// Insert id 为空时生成 UUID，重试时沿用同一个 ID
func (s *Index) Insert(ctx context.Context, collection Collection, id string, document any) (string, error) {
	idx, err := s.index(collection)
	if err != nil {
		return "", err
	}
	if id == "" {
		id = uuid.New().String()
	}

	defer s.metrics.ObserveStore("es", "insert", time.Now())
	return retry.Do(ctx, s.retry, "es.insert", func() (string, error) {
		res, err := s.client.Index(idx).Id(id).Document(document).Do(ctx)
		if err != nil {
			return "", err
		}
		return res.Id_, nil
	})
}

// UpdateByScript 执行脚本更新；文档不存在归一为 NotFound，不再重试
func (s *Index) UpdateByScript(ctx context.Context, collection Collection, id, script string, params map[string]any, returnSource bool) (*UpdateResult, error) {
	idx, err := s.index(collection)
	if err != nil {
		return nil, err
	}

	rawParams := make(map[string]json.RawMessage, len(params))
	for k, v := range params {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal script param %s: %w", k, err)
		}
		rawParams[k] = b
	}

	defer s.metrics.ObserveStore("es", "update", time.Now())
	outcome, err := retry.Do(ctx, s.retry, "es.update", func() (UpdateOutcome, error) {
		res, err := s.client.Update(idx, id).
			Script(&types.Script{
				Source: &script,
				Params: rawParams,
			}).
			Do(ctx)
		if err != nil {
			if isStatus(err, NotFoundCode) {
				return NotFound, nil
			}
			return 0, err
		}

		switch res.Result {
		case result.Updated:
			return Updated, nil
		case result.Noop:
			return NoOp, nil
		case result.Notfound:
			return NotFound, nil
		default:
			return 0, fmt.Errorf("unexpected update result %q", res.Result.String())
		}
	})
	if err != nil {
		return nil, err
	}

	out := &UpdateResult{Outcome: outcome}
	if returnSource && outcome == Updated {
		src, err := retry.Do(ctx, s.retry, "es.get", func() (json.RawMessage, error) {
			res, err := s.client.Get(idx, id).Do(ctx)
			if err != nil {
				return nil, err
			}
			return res.Source_, nil
		})
		if err != nil {
			return nil, err
		}
		out.Source = src
	}
	return out, nil
}

// Delete 幂等删除
func (s *Index) Delete(ctx context.Context, collection Collection, id string) (DeleteOutcome, error) {
	idx, err := s.index(collection)
	if err != nil {
		return 0, err
	}

	defer s.metrics.ObserveStore("es", "delete", time.Now())
	return retry.Do(ctx, s.retry, "es.delete", func() (DeleteOutcome, error) {
		res, err := s.client.Delete(idx, id).Do(ctx)
		if err != nil {
			if isStatus(err, NotFoundCode) {
				return AlreadyAbsent, nil
			}
			return 0, err
		}
		if res.Result == result.Notfound {
			return AlreadyAbsent, nil
		}
		return Deleted, nil
	})
}

func (s *Index) Search(ctx context.Context, collection Collection, query *types.Query, size int, sort *types.SortOptions) (*Hits, error) {
	idx, err := s.index(collection)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = DefaultPageSize
	}

	defer s.metrics.ObserveStore("es", "search", time.Now())
	return retry.Do(ctx, s.retry, "es.search", func() (*Hits, error) {
		req := s.client.Search().Index(idx).Query(query).Size(size)
		if sort != nil {
			req.Sort(*sort)
		}
		res, err := req.Do(ctx)
		if err != nil {
			return nil, err
		}
		return toHits(res.Hits), nil
	})
}

// SearchWithPagination 按 (dateTime desc, documentId desc) 做 keyset 分页
func (s *Index) SearchWithPagination(ctx context.Context, collection Collection, query *types.Query, after *Cursor, size int) (*Hits, error) {
	idx, err := s.index(collection)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = DefaultPageSize
	}

	defer s.metrics.ObserveStore("es", "search", time.Now())
	return retry.Do(ctx, s.retry, "es.search_page", func() (*Hits, error) {
		req := s.client.Search().
			Index(idx).
			Query(query).
			Sort(
				types.SortOptions{SortOptions: map[string]types.FieldSort{
					SortDateField: {Order: &sortorder.Desc},
				}},
				types.SortOptions{SortOptions: map[string]types.FieldSort{
					SortIDField: {Order: &sortorder.Desc},
				}},
			).
			Size(size)

		if after != nil && after.DateTime != nil {
			req.SearchAfter(after.DateTime, after.ID)
		}

		res, err := req.Do(ctx)
		if err != nil {
			return nil, err
		}
		return toHits(res.Hits), nil
	})
}

func (s *Index) Count(ctx context.Context, collection Collection, query *types.Query) (int64, error) {
	idx, err := s.index(collection)
	if err != nil {
		return 0, err
	}

	defer s.metrics.ObserveStore("es", "count", time.Now())
	return retry.Do(ctx, s.retry, "es.count", func() (int64, error) {
		res, err := s.client.Count().Index(idx).Query(query).Do(ctx)
		if err != nil {
			return 0, err
		}
		return res.Count, nil
	})
}

// Suggest completion suggester，field 为 completion 类型字段
func (s *Index) Suggest(ctx context.Context, collection Collection, field, prefix string, size int) ([]SuggestOption, error) {
	idx, err := s.index(collection)
	if err != nil {
		return nil, err
	}
	suggestKey := string(collection) + "-suggest"

	defer s.metrics.ObserveStore("es", "suggest", time.Now())
	return retry.Do(ctx, s.retry, "es.suggest", func() ([]SuggestOption, error) {
		suggester := types.NewSuggester()
		suggester.Suggesters[suggestKey] = types.FieldSuggester{
			Prefix: &prefix,
			Completion: &types.CompletionSuggester{
				Field:          field,
				Size:           &size,
				SkipDuplicates: &[]bool{true}[0],
			},
		}

		res, err := s.client.Search().
			Index(idx).
			Suggest(suggester).
			Size(0).
			Do(ctx)
		if err != nil {
			return nil, err
		}

		options := make([]SuggestOption, 0)
		for _, r := range res.Suggest[suggestKey] {
			cs, ok := r.(*types.CompletionSuggest)
			if !ok {
				continue
			}
			for _, opt := range cs.Options {
				o := SuggestOption{Text: opt.Text, Source: opt.Source_}
				if opt.Id_ != nil {
					o.ID = *opt.Id_
				}
				options = append(options, o)
			}
		}
		return options, nil
	})
}

func toHits(h types.HitsMetadata) *Hits {
	out := &Hits{Hits: make([]Hit, 0, len(h.Hits))}
	if h.Total != nil {
		out.Total = h.Total.Value
	}
	for _, hit := range h.Hits {
		item := Hit{Source: hit.Source_, Sort: hit.Sort}
		if hit.Id_ != nil {
			item.ID = *hit.Id_
		}
		out.Hits = append(out.Hits, item)
	}
	return out
}
