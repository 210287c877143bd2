package api

import (
	"context"
	"net/http"

	"github.com/T-Watch/T-Watch-Backend/internal/domain"
	"github.com/T-Watch/T-Watch-Backend/internal/repository"
	"github.com/T-Watch/T-Watch-Backend/internal/service"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type coachQuery struct {
	Fields   []string `form:"fields"`
	Province string   `form:"province"`
	Search   string   `form:"search"`
}

func bindCoachFilter(c *gin.Context) (repository.CoachFilter, error) {
	var q coachQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return repository.CoachFilter{}, err
	}
	return repository.CoachFilter{Fields: q.Fields, Province: q.Province, Search: q.Search}, nil
}

// bindUserPatch reads the patch body; the email always comes from the path.
func bindUserPatch(c *gin.Context) (domain.UserPatch, error) {
	patch, err := bindJSON[domain.UserPatch](c)
	patch.Email = c.Param("email")
	return patch, err
}

type PhotoUploadRequest struct {
	Email       string `json:"-"`
	ContentType string `json:"contentType" binding:"required"`
}

func bindPhotoUpload(c *gin.Context) (PhotoUploadRequest, error) {
	req, err := bindJSON[PhotoUploadRequest](c)
	req.Email = c.Param("email")
	return req, err
}

func (h *UserHandler) UpdateUser(ctx context.Context, patch domain.UserPatch) (*domain.User, error) {
	return h.userService.UpdateUser(ctx, patch)
}

func (h *UserHandler) PhotoUploadURL(ctx context.Context, req PhotoUploadRequest) (*service.PhotoLink, error) {
	return h.userService.PhotoUploadURL(ctx, req.Email, req.ContentType)
}

func (h *UserHandler) register(r gin.IRoutes, e endpoint) {
	r.GET("/users", serve(e, true, http.StatusOK, bindQuery("coach"), h.userService.Users))
	r.GET("/users/:email", serve(e, true, http.StatusOK, bindParam("email"), h.userService.User))
	r.PATCH("/users/:email", serve(e, true, http.StatusOK, bindUserPatch, h.UpdateUser))
	r.DELETE("/users/:email", serve(e, true, http.StatusOK, bindParam("email"), h.userService.DeleteUser))
	r.GET("/users/:email/photo", serve(e, true, http.StatusOK, bindParam("email"), h.userService.PhotoURL))
	r.POST("/users/:email/photo", serve(e, true, http.StatusOK, bindPhotoUpload, h.PhotoUploadURL))
	r.GET("/coaches", serve(e, true, http.StatusOK, bindCoachFilter, h.userService.Coaches))
}
