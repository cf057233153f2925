package repository

import (
	"github.com/hyeonkim/tabling-backend/internal/app/model"
	"github.com/hyeonkim/tabling-backend/pkg/logger"
	"gorm.io/gorm"
)

type ReservationRepository interface {
	Create(reservation *model.Reservation) error
	Update(reservation *model.Reservation) error
	FindByIDAndCustomerID(id, customerID uint) (*model.Reservation, error)
	FindByCustomerAndSlot(customerID, slotID uint, date string) (*model.Reservation, error)
	FindByCustomerID(customerID uint, offset, limit int) ([]model.Reservation, int64, error)
	FindByCustomerAndStore(customerID, storeID uint, offset, limit int) ([]model.Reservation, int64, error)
	FindByStoreAndDate(storeID uint, date string, offset, limit int) ([]model.Reservation, int64, error)
	ExistsBySlotID(slotID uint) (bool, error)
}

type reservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) Create(reservation *model.Reservation) error {
	logger.Debug("Creating reservation in database", map[string]interface{}{
		"customer_id": reservation.CustomerID,
		"slot_id":     reservation.SlotID,
		"date":        reservation.Date,
		"head_count":  reservation.HeadCount,
	})

	if err := r.db.Create(reservation).Error; err != nil {
		logger.Error("Failed to create reservation in database", err, map[string]interface{}{
			"customer_id": reservation.CustomerID,
			"slot_id":     reservation.SlotID,
		})
		return err
	}
	return nil
}

func (r *reservationRepository) Update(reservation *model.Reservation) error {
	return r.db.Save(reservation).Error
}

func (r *reservationRepository) FindByIDAndCustomerID(id, customerID uint) (*model.Reservation, error) {
	var reservation model.Reservation
	err := r.db.Preload("Slot").
		Where("id = ? AND customer_id = ?", id, customerID).
		First(&reservation).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *reservationRepository) FindByCustomerAndSlot(customerID, slotID uint, date string) (*model.Reservation, error) {
	var reservation model.Reservation
	err := r.db.Where("customer_id = ? AND slot_id = ? AND date = ?", customerID, slotID, date).
		First(&reservation).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *reservationRepository) FindByCustomerID(customerID uint, offset, limit int) ([]model.Reservation, int64, error) {
	query := r.db.Model(&model.Reservation{}).Where("customer_id = ?", customerID)
	return r.page(query, offset, limit)
}

func (r *reservationRepository) FindByCustomerAndStore(customerID, storeID uint, offset, limit int) ([]model.Reservation, int64, error) {
	query := r.db.Model(&model.Reservation{}).
		Where("customer_id = ? AND store_id = ?", customerID, storeID)
	return r.page(query, offset, limit)
}

func (r *reservationRepository) FindByStoreAndDate(storeID uint, date string, offset, limit int) ([]model.Reservation, int64, error) {
	query := r.db.Model(&model.Reservation{}).
		Where("store_id = ? AND date = ?", storeID, date)
	return r.page(query, offset, limit)
}

func (r *reservationRepository) page(query *gorm.DB, offset, limit int) ([]model.Reservation, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reservations []model.Reservation
	err := query.Preload("Slot").
		Order("date DESC, created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&reservations).Error
	if err != nil {
		return nil, 0, err
	}
	return reservations, total, nil
}

func (r *reservationRepository) ExistsBySlotID(slotID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&model.Reservation{}).Where("slot_id = ?", slotID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
