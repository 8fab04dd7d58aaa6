package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"printhub/internal/model"
)

// ==================== 接口定义 ====================

// ShopRepository 打印站仓储接口
type ShopRepository interface {
	Create(ctx context.Context, shop *model.Shop) error
	GetByID(ctx context.Context, id int64) (*model.Shop, error)
	GetByName(ctx context.Context, name string) (*model.Shop, error)
	Update(ctx context.Context, shop *model.Shop) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	UpdateStatus(ctx context.Context, id int64, status int) error

	// 列表查询
	ListActive(ctx context.Context) ([]model.Shop, error)
	ListWithUpi(ctx context.Context) ([]model.Shop, error)

	// 死站检测：最后心跳早于 deadline 的活跃打印站
	ListStale(ctx context.Context, deadline time.Time) ([]model.Shop, error)
}

// ==================== 仓储实现 ====================

type shopRepo struct {
	db *gorm.DB
}

// NewShopRepository 创建打印站仓储
func NewShopRepository(db *gorm.DB) ShopRepository {
	return &shopRepo{db: db}
}

func (r *shopRepo) Create(ctx context.Context, shop *model.Shop) error {
	return r.db.WithContext(ctx).Create(shop).Error
}

func (r *shopRepo) GetByID(ctx context.Context, id int64) (*model.Shop, error) {
	var shop model.Shop
	if err := r.db.WithContext(ctx).First(&shop, id).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *shopRepo) GetByName(ctx context.Context, name string) (*model.Shop, error) {
	var shop model.Shop
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&shop).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *shopRepo) Update(ctx context.Context, shop *model.Shop) error {
	return r.db.WithContext(ctx).Save(shop).Error
}

func (r *shopRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Shop{}).Where("id = ?", id).Updates(fields).Error
}

func (r *shopRepo) UpdateStatus(ctx context.Context, id int64, status int) error {
	return r.db.WithContext(ctx).Model(&model.Shop{}).Where("id = ?", id).Update("status", status).Error
}

func (r *shopRepo) ListActive(ctx context.Context) ([]model.Shop, error) {
	var shops []model.Shop
	err := r.db.WithContext(ctx).
		Where("status = ?", model.ShopStatusActive).
		Order("id ASC").
		Find(&shops).Error
	return shops, err
}

func (r *shopRepo) ListWithUpi(ctx context.Context) ([]model.Shop, error) {
	var shops []model.Shop
	err := r.db.WithContext(ctx).
		Where("status = ?", model.ShopStatusActive).
		Where("upi_id <> ''").
		Find(&shops).Error
	return shops, err
}

func (r *shopRepo) ListStale(ctx context.Context, deadline time.Time) ([]model.Shop, error) {
	var shops []model.Shop
	err := r.db.WithContext(ctx).
		Where("status = ?", model.ShopStatusActive).
		Where("last_heartbeat IS NOT NULL AND last_heartbeat < ?", deadline).
		Find(&shops).Error
	return shops, err
}
