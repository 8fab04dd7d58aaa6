package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"printhub/internal/api/dto"
	"printhub/internal/model"
	"printhub/internal/service"
)

// UserController 用户控制器
type UserController struct {
	userSvc *service.UserService
}

// NewUserController 创建用户控制器
func NewUserController(userSvc *service.UserService) *UserController {
	return &UserController{userSvc: userSvc}
}

// Register 用户注册
// POST /api/users
func (c *UserController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := c.userSvc.Register(ctx, req.Name, req.Contact)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": toUserVO(user)})
}

// Get 用户详情
// GET /api/users/:id
func (c *UserController) Get(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的用户 ID"})
		return
	}

	user, err := c.userSvc.Get(ctx, id)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": toUserVO(user)})
}

// Rename 修改昵称
// PUT /api/users/:id/name
func (c *UserController) Rename(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的用户 ID"})
		return
	}

	var req dto.RenameRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := c.userSvc.Rename(ctx, id, req.Name); err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "ok"})
}

func toUserVO(user *model.User) *dto.UserVO {
	return &dto.UserVO{
		ID:      user.ID,
		Name:    user.Name,
		Contact: user.Contact,
	}
}
