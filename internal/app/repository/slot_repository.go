package repository

import (
	"github.com/hyeonkim/tabling-backend/internal/app/model"
	"gorm.io/gorm"
)

type SlotRepository struct {
	db *gorm.DB
}

func NewSlotRepository(db *gorm.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

// Create 예약 타임 생성
func (r *SlotRepository) Create(slot *model.ReservationSlot) error {
	return r.db.Create(slot).Error
}

// FindByID ID로 예약 타임 조회 (매장 포함)
// 삭제된 매장 여부를 서비스에서 판단해야 하므로 소프트 삭제된 매장도 함께 가져온다
func (r *SlotRepository) FindByID(id uint) (*model.ReservationSlot, error) {
	var slot model.ReservationSlot
	err := r.db.Preload("Store", func(db *gorm.DB) *gorm.DB {
		return db.Unscoped()
	}).First(&slot, id).Error
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// FindByIDAndPartnerID 파트너 본인 매장의 예약 타임 조회
func (r *SlotRepository) FindByIDAndPartnerID(id, partnerID uint) (*model.ReservationSlot, error) {
	var slot model.ReservationSlot
	if err := r.db.Where("id = ? AND partner_id = ?", id, partnerID).First(&slot).Error; err != nil {
		return nil, err
	}
	return &slot, nil
}

// FindByStoreID 매장의 모든 예약 타임을 시작시간 순으로 조회
func (r *SlotRepository) FindByStoreID(storeID uint) ([]model.ReservationSlot, error) {
	var slots []model.ReservationSlot
	if err := r.db.Where("store_id = ?", storeID).Order("start_at ASC").Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

// Update 예약 타임 수정
func (r *SlotRepository) Update(slot *model.ReservationSlot) error {
	return r.db.Save(slot).Error
}

// DeleteByIDs 예약 타임 일괄 삭제
func (r *SlotRepository) DeleteByIDs(ids []uint) error {
	return r.db.Delete(&model.ReservationSlot{}, ids).Error
}
