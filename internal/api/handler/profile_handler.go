package handler

import (
	"Mosaic/internal/api/dto"
	"Mosaic/internal/model"
	"Mosaic/internal/pkg/response"
	"Mosaic/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
)

const msgProfileUnavailable = "profile unavailable"

type ProfileHandler struct {
	profileSvc service.ProfileService
}

func NewProfileHandler(profileSvc service.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileSvc: profileSvc,
	}
}

func (s *ProfileHandler) GetProfileByID(c *gin.Context) {
	s.reply(c, s.profileSvc.GetProfileByID(c.Request.Context(), c.Param("user_id")))
}

func (s *ProfileHandler) GetProfileByName(c *gin.Context) {
	s.reply(c, s.profileSvc.GetProfileByName(c.Request.Context(), c.Param("user_name")))
}

// InvalidateProfile 资料修改后清理缓存
func (s *ProfileHandler) InvalidateProfile(c *gin.Context) {
	s.profileSvc.InvalidateProfile(c.Request.Context(), c.Param("user_id"))
	response.Success(c, nil)
}

func (s *ProfileHandler) reply(c *gin.Context, profile *model.Profile) {
	if profile == nil {
		response.Fail(c, response.NotFound, msgProfileUnavailable)
		return
	}

	out := &dto.ProfileDTO{}
	if err := copier.Copy(out, profile); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, out)
}
