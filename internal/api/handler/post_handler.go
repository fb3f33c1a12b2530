package handler

import (
	"Mosaic/internal/api/dto"
	"Mosaic/internal/pkg/response"
	"Mosaic/internal/pkg/util"
	"Mosaic/internal/service"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postSvc service.PostService
}

func NewPostHandler(postSvc service.PostService) *PostHandler {
	return &PostHandler{
		postSvc: postSvc,
	}
}

// GetFullPost 按 postId 读取带聚合字段的帖子
func (s *PostHandler) GetFullPost(c *gin.Context) {
	post, err := s.postSvc.GetFullPost(c.Request.Context(), c.Param("post_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

func (s *PostHandler) GetPostByDocument(c *gin.Context) {
	post, err := s.postSvc.GetPost(c.Request.Context(), c.Param("document_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if post == nil {
		response.Error(c, service.ErrPostNotFound)
		return
	}
	response.Success(c, post)
}

func (s *PostHandler) ListPosts(c *gin.Context) {
	var query dto.PostPageQueryDTO
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&query); err != nil {
		response.Fail(c, response.BadRequest, err.Error())
		return
	}

	page, err := s.postSvc.ListPosts(c.Request.Context(), query.UserName, query.Cursor, query.Size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, page)
}

func (s *PostHandler) UpdateEntryURL(c *gin.Context) {
	var req dto.EntryURLUpdateDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Fail(c, response.BadRequest, err.Error())
		return
	}

	err := s.postSvc.UpdateEntryURL(c.Request.Context(), c.Param("document_id"), c.Param("entry_id"), *req.MimeType, *req.URL)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *PostHandler) AttachPostID(c *gin.Context) {
	var req dto.AttachPostIDDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Fail(c, response.BadRequest, err.Error())
		return
	}

	if err := s.postSvc.AttachPostID(c.Request.Context(), c.Param("document_id"), *req.PostID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *PostHandler) DeletePost(c *gin.Context) {
	if err := s.postSvc.DeletePost(c.Request.Context(), c.Param("document_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
