package repository

import (
	"Mosaic/internal/model"
	"Mosaic/internal/pkg/graph"
	"context"
	"fmt"
)

// 按 userId 匹配，创建与更新设置不同的属性
const upsertTokenQuery = `MERGE (t:%s {userId: $userId})
ON CREATE SET t.token = $token, t.timestamp = $timestamp, t.createdAt = $timestamp
ON MATCH SET t.token = $token, t.timestamp = $timestamp`

const linkTokenQuery = `MATCH (u:User {userId: $userId}), (t:%s {userId: $userId})
MERGE (u)-[:HAS_TOKEN]->(t)`

type TokenRepo interface {
	UpsertToken(ctx context.Context, token *model.Token) error
}

type TokenRepoImpl struct {
	runner graph.Runner
}

func NewTokenRepo(runner graph.Runner) TokenRepo {
	return &TokenRepoImpl{runner: runner}
}

func (s *TokenRepoImpl) UpsertToken(ctx context.Context, token *model.Token) error {
	switch token.Kind {
	case model.ConfirmationToken, model.ForgotToken:
	default:
		return fmt.Errorf("unknown token kind %q", token.Kind)
	}

	params := map[string]any{
		"userId":    token.UserID,
		"token":     token.Token,
		"timestamp": token.Timestamp,
	}
	return graph.InTx(ctx, s.runner, func(tx graph.Tx) error {
		if err := tx.Run(ctx, fmt.Sprintf(upsertTokenQuery, token.Kind), params); err != nil {
			return err
		}
		return tx.Run(ctx, fmt.Sprintf(linkTokenQuery, token.Kind), params)
	})
}
