package repository

import (
	"Mosaic/internal/model"
	"Mosaic/internal/pkg/graph"
	"context"
	"fmt"

	"github.com/saulfrancisco-ruizacevedo/gocypher"
)

const postLabel = "Post"

const (
	countCommentsQuery = `MATCH (p:Post {postId: $postId})-[:HAS_COMMENT]->(c:Comment)
RETURN count(c) AS commentCount`

	likesQuery = `MATCH (u:User)-[:LIKES]->(p:Post {postId: $postId})
RETURN u {.userId, .userName, .profileId} AS liker`

	ownerQuery = `MATCH (u:User)-[:POSTED]->(p:Post {postId: $postId})
RETURN u {.userId, .pfp} AS owner
LIMIT 1`
)

// PostOwner 帖子作者
type PostOwner struct {
	UserID string `json:"userId"`
	Pfp    string `json:"pfp"`
}

type PostRepo interface {
	GetDocumentID(ctx context.Context, postID string) (string, error)
	CountComments(ctx context.Context, postID string) (int64, error)
	GetLikes(ctx context.Context, postID string) ([]model.LikeUser, error)
	GetOwner(ctx context.Context, postID string) (*PostOwner, error)
}

type PostRepoImpl struct {
	runner graph.Runner
}

func NewPostRepo(runner graph.Runner) PostRepo {
	return &PostRepoImpl{runner: runner}
}

// GetDocumentID 顶点不存在或没有 documentId 时返回空串
func (s *PostRepoImpl) GetDocumentID(ctx context.Context, postID string) (string, error) {
	query, params, err := gocypher.NewQueryBuilder().
		Match(gocypher.N("p", postLabel).WithProperties(map[string]interface{}{"postId": postID})).
		Return("p").
		Build()
	if err != nil {
		return "", err
	}

	res, err := s.runner.Read(ctx, query, params)
	if err != nil {
		return "", err
	}
	if len(res.Records) == 0 {
		return "", nil
	}

	raw, ok := res.Records[0].Get("p")
	if !ok {
		return "", fmt.Errorf("%w: missing column %q", graph.ErrUnexpectedResultFormat, "p")
	}
	props, err := graph.Unwrap(raw)
	if err != nil {
		return "", err
	}
	return graph.GetVertexProperty(props, "documentId", ""), nil
}

func (s *PostRepoImpl) CountComments(ctx context.Context, postID string) (int64, error) {
	res, err := s.runner.Read(ctx, countCommentsQuery, map[string]any{"postId": postID})
	if err != nil {
		return 0, err
	}
	if len(res.Records) == 0 {
		return 0, nil
	}

	rec, err := graph.Unwrap(res.Records[0])
	if err != nil {
		return 0, err
	}
	out, err := graph.Parse[struct {
		CommentCount int64 `json:"commentCount"`
	}](rec, "commentCount")
	if err != nil {
		return 0, err
	}
	return out.CommentCount, nil
}

func (s *PostRepoImpl) GetLikes(ctx context.Context, postID string) ([]model.LikeUser, error) {
	res, err := s.runner.Read(ctx, likesQuery, map[string]any{"postId": postID})
	if err != nil {
		return nil, err
	}
	return graph.ParseAll[model.LikeUser](res, "liker")
}

// GetOwner 没有 POSTED 边时返回 graph.ErrNotFound
func (s *PostRepoImpl) GetOwner(ctx context.Context, postID string) (*PostOwner, error) {
	res, err := s.runner.Read(ctx, ownerQuery, map[string]any{"postId": postID})
	if err != nil {
		return nil, err
	}
	owners, err := graph.ParseAll[PostOwner](res, "owner")
	if err != nil {
		return nil, err
	}
	if len(owners) == 0 {
		return nil, graph.ErrNotFound
	}
	return &owners[0], nil
}
