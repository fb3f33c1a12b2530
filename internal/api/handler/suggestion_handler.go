package handler

import (
	"Mosaic/internal/api/dto"
	"Mosaic/internal/pkg/response"
	"Mosaic/internal/pkg/util"
	"Mosaic/internal/service"

	"github.com/gin-gonic/gin"
)

type SuggestionHandler struct {
	suggestionSvc service.SuggestionService
}

func NewSuggestionHandler(suggestionSvc service.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{
		suggestionSvc: suggestionSvc,
	}
}

func (s *SuggestionHandler) GetSuggestions(c *gin.Context) {
	var query dto.SuggestionQueryDTO
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&query); err != nil {
		response.Fail(c, response.BadRequest, err.Error())
		return
	}

	res, err := s.suggestionSvc.GetSuggestions(c.Request.Context(), query.Input, query.Scope, query.Size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *SuggestionHandler) FlushSuggestions(c *gin.Context) {
	n := s.suggestionSvc.Flush(c.Request.Context())
	response.Success(c, gin.H{"deleted": n})
}
