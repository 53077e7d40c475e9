package handler

import (
	"Forwarder/internal/api/dto"
	"Forwarder/internal/model"
	"Forwarder/internal/pkg/consts"
	"Forwarder/internal/pkg/response"
	"Forwarder/internal/service"

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

func (s *PostHandler) CreatePost(c *gin.Context) {
	var req dto.CreatePostDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	post, err := s.postSvc.Ingest(c.Request.Context(), req.ToModel())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.IngestResultDTO{
		Success:   true,
		Message:   consts.IngestSuccessMessage,
		PostID:    post.ID,
		Forwarded: post.Forwarded,
	})
}

func (s *PostHandler) GetPost(c *gin.Context) {
	post, err := s.postSvc.GetPostById(c.Request.Context(), c.Param("post_id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	out, err := dto.ToPostDTO(post)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, out)
}

func (s *PostHandler) ListPosts(c *gin.Context) {
	s.list(c, s.postSvc.ListPosts(c.Request.Context()))
}

func (s *PostHandler) ListForwardedPosts(c *gin.Context) {
	s.list(c, s.postSvc.ListForwardedPosts(c.Request.Context()))
}

func (s *PostHandler) ListPendingPosts(c *gin.Context) {
	s.list(c, s.postSvc.ListPendingPosts(c.Request.Context()))
}

func (s *PostHandler) list(c *gin.Context, posts []*model.Post) {
	out, err := dto.ToPostDTOs(posts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, out)
}
