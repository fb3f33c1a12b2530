package repository

import (
	"Mosaic/internal/pkg/graph"
	"context"
	"fmt"

	"github.com/saulfrancisco-ruizacevedo/gocypher"
)

const userLabel = "User"

type UserRepo interface {
	GetUserByID(ctx context.Context, userID string) (graph.Record, error)
	GetUserByName(ctx context.Context, userName string) (graph.Record, error)
}

type UserRepoImpl struct {
	runner graph.Runner
}

func NewUserRepo(runner graph.Runner) UserRepo {
	return &UserRepoImpl{runner: runner}
}

func (s *UserRepoImpl) GetUserByID(ctx context.Context, userID string) (graph.Record, error) {
	return s.findUser(ctx, map[string]interface{}{"userId": userID})
}

// GetUserByName userName 在图中唯一
func (s *UserRepoImpl) GetUserByName(ctx context.Context, userName string) (graph.Record, error) {
	return s.findUser(ctx, map[string]interface{}{"userName": userName})
}

func (s *UserRepoImpl) findUser(ctx context.Context, props map[string]interface{}) (graph.Record, error) {
	query, params, err := gocypher.NewQueryBuilder().
		Match(gocypher.N("u", userLabel).WithProperties(props)).
		Return("u").
		Build()
	if err != nil {
		return nil, err
	}

	res, err := s.runner.Read(ctx, query, params)
	if err != nil {
		return nil, err
	}
	if len(res.Records) == 0 {
		return nil, graph.ErrNotFound
	}
	if len(res.Records) > 1 {
		return nil, fmt.Errorf("expected 1 user vertex but found %d", len(res.Records))
	}

	raw, ok := res.Records[0].Get("u")
	if !ok {
		return nil, fmt.Errorf("%w: missing column %q", graph.ErrUnexpectedResultFormat, "u")
	}
	return graph.Unwrap(raw)
}
