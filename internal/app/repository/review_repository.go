package repository

import (
	"github.com/hyeonkim/tabling-backend/internal/app/model"
	"gorm.io/gorm"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create 리뷰 생성
func (r *ReviewRepository) Create(review *model.Review) error {
	return r.db.Create(review).Error
}

// Update 리뷰 수정
func (r *ReviewRepository) Update(review *model.Review) error {
	return r.db.Save(review).Error
}

// Delete 리뷰 삭제 (하드 삭제 - 별점 집계에서 먼저 제거되어야 함)
func (r *ReviewRepository) Delete(review *model.Review) error {
	return r.db.Delete(review).Error
}

// FindByIDAndCustomerID 본인이 작성한 리뷰 조회
func (r *ReviewRepository) FindByIDAndCustomerID(id, customerID uint) (*model.Review, error) {
	var review model.Review
	if err := r.db.Where("id = ? AND customer_id = ?", id, customerID).First(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// FindByIDAndPartnerID 본인 매장에 등록된 리뷰 조회
func (r *ReviewRepository) FindByIDAndPartnerID(id, partnerID uint) (*model.Review, error) {
	var review model.Review
	if err := r.db.Where("id = ? AND partner_id = ?", id, partnerID).First(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// ExistsByCustomerAndReservation 해당 예약에 이미 리뷰를 작성했는지 확인
func (r *ReviewRepository) ExistsByCustomerAndReservation(customerID, reservationID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Review{}).
		Where("customer_id = ? AND reservation_id = ?", customerID, reservationID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByCustomerID 고객이 작성한 리뷰 목록 조회
func (r *ReviewRepository) FindByCustomerID(customerID uint, offset, limit int) ([]model.Review, int64, error) {
	query := r.db.Model(&model.Review{}).Where("customer_id = ?", customerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []model.Review
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&reviews).Error; err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

// FindByPartnerAndStore 파트너의 특정 매장에 등록된 리뷰 목록 조회
func (r *ReviewRepository) FindByPartnerAndStore(partnerID, storeID uint, offset, limit int) ([]model.Review, int64, error) {
	query := r.db.Model(&model.Review{}).
		Where("partner_id = ? AND store_id = ?", partnerID, storeID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []model.Review
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&reviews).Error; err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}
