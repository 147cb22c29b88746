package http

import (
	"net/http"

	"lunch-picker/internal/domain"
	"lunch-picker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// LunchHandler 封装了房间、目录、抽选与评分的 HTTP 处理逻辑
type LunchHandler struct {
	lunch *service.LunchService
}

// NewLunchHandler 创建 LunchHandler 实例
func NewLunchHandler(lunch *service.LunchService) *LunchHandler {
	if lunch == nil {
		panic("LunchService cannot be nil for LunchHandler")
	}
	return &LunchHandler{lunch: lunch}
}

// Register 挂载 /rooms 下的全部路由
func (h *LunchHandler) Register(api gin.IRouter) {
	rooms := api.Group("/rooms/:roomId")
	{
		rooms.GET("", h.GetRoom)
		rooms.PUT("/name", h.SetRoomName)

		rooms.POST("/places", h.AddPlace)
		rooms.PATCH("/places/:placeId", h.RenamePlace)
		rooms.POST("/places/:placeId/toggle", h.TogglePlace)
		rooms.DELETE("/places/:placeId", h.DeletePlace)
		rooms.POST("/places/:placeId/menus", h.AddMenu)

		rooms.PATCH("/menus/:menuId", h.RenameMenu)
		rooms.POST("/menus/:menuId/toggle", h.ToggleMenu)
		rooms.DELETE("/menus/:menuId", h.DeleteMenu)

		rooms.POST("/pick", h.Pick)
		rooms.POST("/ratings", h.SubmitRating)
		rooms.GET("/ratings", h.AverageRating)
	}
}

// NameRequest 用于房间、地点和菜单的命名请求
type NameRequest struct {
	Name string `json:"name" binding:"required"`
}

// RatingRequest 为当前抽选结果打分
type RatingRequest struct {
	Score int `json:"score"`
}

func bindName(c *gin.Context) (string, bool) {
	var req NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler: invalid name payload")
		CodedErrorResponse(c, http.StatusBadRequest, CodeInvalidInput, "Invalid input: name is required")
		return "", false
	}
	return req.Name, true
}

func (h *LunchHandler) GetRoom(c *gin.Context) {
	view, err := h.lunch.GetRoom(c.Request.Context(), c.Param("roomId"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, view)
}

func (h *LunchHandler) SetRoomName(c *gin.Context) {
	name, ok := bindName(c)
	if !ok {
		return
	}
	if err := h.lunch.SetRoomName(c.Request.Context(), c.Param("roomId"), name); err != nil {
		HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LunchHandler) AddPlace(c *gin.Context) {
	name, ok := bindName(c)
	if !ok {
		return
	}
	id, err := h.lunch.AddPlace(c.Request.Context(), c.Param("roomId"), name)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, gin.H{"place_id": id})
}

func (h *LunchHandler) RenamePlace(c *gin.Context) {
	name, ok := bindName(c)
	if !ok {
		return
	}
	if err := h.lunch.RenamePlace(c.Request.Context(), c.Param("roomId"), c.Param("placeId"), name); err != nil {
		HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LunchHandler) TogglePlace(c *gin.Context) {
	h.toggle(c, domain.KindPlace, c.Param("placeId"))
}

func (h *LunchHandler) ToggleMenu(c *gin.Context) {
	h.toggle(c, domain.KindMenu, c.Param("menuId"))
}

func (h *LunchHandler) toggle(c *gin.Context, kind domain.ItemKind, id string) {
	active, err := h.lunch.ToggleActive(c.Request.Context(), c.Param("roomId"), kind, id)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"is_active": active})
}

func (h *LunchHandler) DeletePlace(c *gin.Context) {
	if err := h.lunch.DeletePlace(c.Request.Context(), c.Param("roomId"), c.Param("placeId")); err != nil {
		HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LunchHandler) AddMenu(c *gin.Context) {
	name, ok := bindName(c)
	if !ok {
		return
	}
	id, err := h.lunch.AddMenu(c.Request.Context(), c.Param("roomId"), c.Param("placeId"), name)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, gin.H{"menu_id": id})
}

func (h *LunchHandler) RenameMenu(c *gin.Context) {
	name, ok := bindName(c)
	if !ok {
		return
	}
	if err := h.lunch.RenameMenu(c.Request.Context(), c.Param("roomId"), c.Param("menuId"), name); err != nil {
		HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LunchHandler) DeleteMenu(c *gin.Context) {
	if err := h.lunch.DeleteMenu(c.Request.Context(), c.Param("roomId"), c.Param("menuId")); err != nil {
		HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Pick 执行今天的一次抽选
func (h *LunchHandler) Pick(c *gin.Context) {
	sel, err := h.lunch.PickLunch(c.Request.Context(), c.Param("roomId"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, sel)
}

func (h *LunchHandler) SubmitRating(c *gin.Context) {
	var req RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		CodedErrorResponse(c, http.StatusBadRequest, CodeInvalidInput, "Invalid input: score is required")
		return
	}
	if err := h.lunch.SubmitRating(c.Request.Context(), c.Param("roomId"), req.Score); err != nil {
		HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LunchHandler) AverageRating(c *gin.Context) {
	kind := domain.ItemKind(c.Query("kind"))
	itemID := c.Query("item_id")
	if itemID == "" {
		CodedErrorResponse(c, http.StatusBadRequest, CodeInvalidInput, "Invalid input: item_id is required")
		return
	}
	summary, err := h.lunch.AverageRating(c.Request.Context(), c.Param("roomId"), kind, itemID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, summary)
}
