package repository

import (
	"github.com/hyeonkim/tabling-backend/internal/app/model"
	"github.com/hyeonkim/tabling-backend/pkg/logger"
	"gorm.io/gorm"
)

type StoreFilter struct {
	Search       string // 매장명 검색어
	IncludeSlots bool   // 예약 타임 포함 여부
	SortByRating bool   // 평점 내림차순 정렬
}

type StoreRepository interface {
	Create(store *model.Store) error
	Update(store *model.Store) error
	FindAll(filter StoreFilter) ([]model.Store, error)
	FindByID(id uint, includeSlots bool) (*model.Store, error)
	FindByIDAndPartnerID(id, partnerID uint) (*model.Store, error)
	ExistsByName(name string) (bool, error)
}

type storeRepository struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

func (r *storeRepository) Create(store *model.Store) error {
	logger.Debug("Creating store in database", map[string]interface{}{
		"name":       store.Name,
		"partner_id": store.PartnerID,
	})

	if err := r.db.Create(store).Error; err != nil {
		logger.Error("Failed to create store in database", err, map[string]interface{}{
			"name":       store.Name,
			"partner_id": store.PartnerID,
		})
		return err
	}

	logger.Debug("Store created in database", map[string]interface{}{
		"store_id": store.ID,
		"name":     store.Name,
	})
	return nil
}

func (r *storeRepository) Update(store *model.Store) error {
	if err := r.db.Save(store).Error; err != nil {
		logger.Error("Failed to update store in database", err, map[string]interface{}{
			"store_id": store.ID,
			"name":     store.Name,
		})
		return err
	}
	return nil
}

func (r *storeRepository) FindAll(filter StoreFilter) ([]model.Store, error) {
	query := r.db.Model(&model.Store{})

	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+filter.Search+"%")
	}
	if filter.IncludeSlots {
		query = query.Preload("Slots")
	}
	if filter.SortByRating {
		query = query.Order("rating DESC")
	} else {
		query = query.Order("name ASC")
	}

	var stores []model.Store
	if err := query.Find(&stores).Error; err != nil {
		logger.Error("Failed to list stores from database", err, nil)
		return nil, err
	}
	return stores, nil
}

func (r *storeRepository) FindByID(id uint, includeSlots bool) (*model.Store, error) {
	query := r.db
	if includeSlots {
		query = query.Preload("Slots", func(db *gorm.DB) *gorm.DB {
			return db.Order("start_at ASC")
		})
	}

	var store model.Store
	if err := query.First(&store, id).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) FindByIDAndPartnerID(id, partnerID uint) (*model.Store, error) {
	var store model.Store
	if err := r.db.Where("id = ? AND partner_id = ?", id, partnerID).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) ExistsByName(name string) (bool, error) {
	var count int64
	if err := r.db.Model(&model.Store{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
