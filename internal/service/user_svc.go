package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"printhub/internal/model"
	"printhub/internal/repository"
)

// UserService 用户服务
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService 创建用户服务
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Register 注册用户，联系方式唯一
func (s *UserService) Register(ctx context.Context, name, contact string) (*model.User, error) {
	if name == "" || contact == "" {
		return nil, fmt.Errorf("%w: 姓名与联系方式必填", ErrValidation)
	}
	if existing, err := s.userRepo.GetByContact(ctx, contact); err == nil {
		return existing, nil
	}
	user := &model.User{Name: name, Contact: contact}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}
	return user, nil
}

// Get 查询用户
func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: 用户 %d", ErrNotFound, id)
		}
		return nil, err
	}
	return user, nil
}

// Rename 修改昵称（注册后唯一可变字段）
func (s *UserService) Rename(ctx context.Context, id int64, name string) error {
	if name == "" {
		return fmt.Errorf("%w: 姓名必填", ErrValidation)
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.userRepo.UpdateName(ctx, id, name)
}
