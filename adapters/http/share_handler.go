package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/khoahotran/skillpath/internal/application/usecase/share"
	"github.com/khoahotran/skillpath/internal/domain/course"
	"github.com/khoahotran/skillpath/pkg/apperror"
)

type ShareHandler struct {
	gateway *share.Gateway
}

func NewShareHandler(g *share.Gateway) *ShareHandler {
	return &ShareHandler{gateway: g}
}

func (h *ShareHandler) GetSharedProfile(c *gin.Context) {
	shareID := strings.TrimSpace(c.Param("shareId"))
	if shareID == "" {
		c.Error(apperror.NewInvalidInput("share id is required", nil))
		return
	}
	snap, err := h.gateway.Fetch(c.Request.Context(), shareID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func CourseSearchURL(c *gin.Context) {
	title := strings.TrimSpace(c.Query("title"))
	if title == "" {
		c.Error(apperror.NewInvalidInput("title is required", nil))
		return
	}
	platform := c.Query("platform")
	c.JSON(http.StatusOK, CourseURLResponse{
		Platform: string(course.ParsePlatform(platform)),
		URL:      course.SearchURL(platform, title),
	})
}
