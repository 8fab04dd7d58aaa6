package model

// User 下单用户
// 注册后除昵称外不可修改
type User struct {
	BaseModel
	Name    string `gorm:"size:100;not null"`
	Contact string `gorm:"size:255;uniqueIndex;not null"` // 手机号或邮箱，用于通知

	// 关联
	Orders []Order `gorm:"foreignKey:UserID"`
}

func (*User) TableName() string {
	return "users"
}
