package service

import (
	"Mosaic/internal/api/dto"
	"Mosaic/internal/model"
	"Mosaic/internal/repository"
	"context"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

// TokenService 令牌只写入图数据库
type TokenService interface {
	UpsertConfirmationToken(ctx context.Context, req *dto.TokenDTO) (*model.Token, error)
	UpsertForgotToken(ctx context.Context, req *dto.TokenDTO) (*model.Token, error)
}

type tokenServiceImpl struct {
	tokenRepo repository.TokenRepo
}

func NewTokenService(tokenRepo repository.TokenRepo) TokenService {
	return &tokenServiceImpl{tokenRepo: tokenRepo}
}

func (s *tokenServiceImpl) UpsertConfirmationToken(ctx context.Context, req *dto.TokenDTO) (*model.Token, error) {
	return s.upsert(ctx, model.ConfirmationToken, req)
}

func (s *tokenServiceImpl) UpsertForgotToken(ctx context.Context, req *dto.TokenDTO) (*model.Token, error) {
	return s.upsert(ctx, model.ForgotToken, req)
}

func (s *tokenServiceImpl) upsert(ctx context.Context, kind model.TokenKind, req *dto.TokenDTO) (*model.Token, error) {
	if req == nil || req.UserID == nil || *req.UserID == "" {
		return nil, ErrParamInvalid
	}

	token := &model.Token{
		Kind:      kind,
		UserID:    *req.UserID,
		Token:     uuid.NewString(),
		Timestamp: time.Now().UnixMilli(),
	}
	if req.Token != nil {
		if *req.Token == "" {
			return nil, ErrParamInvalid
		}
		token.Token = *req.Token
	}
	if req.Timestamp != nil {
		token.Timestamp = *req.Timestamp
	}

	if err := s.tokenRepo.UpsertToken(ctx, token); err != nil {
		log.ErrorContext(ctx, "Upsert token failed", "kind", kind, "userId", token.UserID, "err", err)
		return nil, err
	}
	return token, nil
}
