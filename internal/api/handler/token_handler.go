package handler

import (
	"Mosaic/internal/api/dto"
	"Mosaic/internal/model"
	"Mosaic/internal/pkg/response"
	"Mosaic/internal/pkg/util"
	"Mosaic/internal/service"
	"context"

	"github.com/gin-gonic/gin"
)

type TokenHandler struct {
	tokenSvc service.TokenService
}

func NewTokenHandler(tokenSvc service.TokenService) *TokenHandler {
	return &TokenHandler{
		tokenSvc: tokenSvc,
	}
}

func (s *TokenHandler) UpsertConfirmationToken(c *gin.Context) {
	s.upsert(c, s.tokenSvc.UpsertConfirmationToken)
}

func (s *TokenHandler) UpsertForgotToken(c *gin.Context) {
	s.upsert(c, s.tokenSvc.UpsertForgotToken)
}

func (s *TokenHandler) upsert(c *gin.Context, fn func(ctx context.Context, req *dto.TokenDTO) (*model.Token, error)) {
	var req dto.TokenDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Fail(c, response.BadRequest, err.Error())
		return
	}

	token, err := fn(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, token)
}
