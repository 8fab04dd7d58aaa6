package dto

// RegisterRequest 用户注册
// 联系方式唯一，重复注册直接返回已有用户
type RegisterRequest struct {
	Name    string `json:"name" binding:"required"`
	Contact string `json:"contact" binding:"required"`
}

// RenameRequest 修改昵称
type RenameRequest struct {
	Name string `json:"name" binding:"required"`
}

// UserVO 用户信息
type UserVO struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
}
