package repository

import (
	"context"

	"gorm.io/gorm"

	"printhub/internal/model"
)

// UserRepository 用户仓储接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByContact(ctx context.Context, contact string) (*model.User, error)
	UpdateName(ctx context.Context, id int64, name string) error
}

type userRepo struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByContact(ctx context.Context, contact string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("contact = ?", contact).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) UpdateName(ctx context.Context, id int64, name string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("name", name).Error
}
