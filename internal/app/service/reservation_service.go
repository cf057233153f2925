package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/hyeonkim/tabling-backend/internal/app/model"
	"github.com/hyeonkim/tabling-backend/internal/app/repository"
	"github.com/hyeonkim/tabling-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrReservationNotFound  = errors.New("예약 정보가 존재하지 않습니다")
	ErrSlotNotFound         = errors.New("매장 예약 상세정보가 존재하지 않습니다")
	ErrCannotReserveDate    = errors.New("예약 가능한 날짜가 아닙니다")
	ErrDuplicateReservation = errors.New("예약정보가 존재합니다")
	ErrBelowMinCapacity     = errors.New("예약 가능 인원이 부족합니다")
	ErrOverMaxCapacity      = errors.New("예약 가능인원을 초과하였습니다")
	ErrAlreadyDecided       = errors.New("이미 예약상태가 변경되었습니다")
	ErrInvalidStatus        = errors.New("예약 상태는 APPROVED 또는 REJECTED만 가능합니다")
	ErrUnmatchedCustomer    = errors.New("예약 정보와 고객 정보가 일치하지 않습니다")
	ErrNotDecidedYet        = errors.New("예약 수락을 확인해주세요")
	ErrNotTodayReservation  = errors.New("예약한 날짜가 아닙니다")
	ErrCannotCheckYet       = errors.New("방문 확인은 10분전부터 가능합니다")
	ErrOverReservationTime  = errors.New("예약 시간이 지났습니다")
)

// visitCheckWindow 방문 확인 가능 구간 - 예약 시작시간 10분 전부터 시작시간까지
const visitCheckWindow = 10 * time.Minute

type MakeReservationInput struct {
	SlotID    uint
	Date      string // "2006-01-02"
	HeadCount int
	Phone     string
}

type ReservationService interface {
	MakeReservation(customerID uint, input MakeReservationInput) (*model.Reservation, error)
	ChangeStatus(partnerID, reservationID uint, status model.ReservationStatus) (*model.Reservation, error)
	Cancel(customerID, reservationID uint) (*model.Reservation, error)
	RecordVisit(customerID, reservationID uint, now time.Time) (*model.Reservation, error)
	SearchByCustomer(customerID uint, page, pageSize int) ([]model.Reservation, int64, error)
	SearchByCustomerAndStore(customerID, storeID uint, page, pageSize int) ([]model.Reservation, int64, error)
	SearchByPartner(partnerID, storeID uint, date string, page, pageSize int) ([]model.Reservation, int64, error)
}

type reservationService struct {
	reservationRepo repository.ReservationRepository
	slotRepo        *repository.SlotRepository
	storeRepo       repository.StoreRepository
	db              *gorm.DB
}

func NewReservationService(
	reservationRepo repository.ReservationRepository,
	slotRepo *repository.SlotRepository,
	storeRepo repository.StoreRepository,
	db *gorm.DB,
) ReservationService {
	return &reservationService{
		reservationRepo: reservationRepo,
		slotRepo:        slotRepo,
		storeRepo:       storeRepo,
		db:              db,
	}
}

// MakeReservation 매장 예약 신청.
// 잔여 인원은 승인 시점에만 감소하므로 여기서는 마감 여부만 확인한다.
func (s *reservationService) MakeReservation(customerID uint, input MakeReservationInput) (*model.Reservation, error) {
	logger.Info("Making reservation", map[string]interface{}{
		"customer_id": customerID,
		"slot_id":     input.SlotID,
		"date":        input.Date,
		"head_count":  input.HeadCount,
	})

	slot, err := s.slotRepo.FindByID(input.SlotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		logger.Error("Failed to fetch slot", err, map[string]interface{}{
			"slot_id": input.SlotID,
		})
		return nil, err
	}

	// 예약 오픈된 날짜인지 확인
	if !slot.Store.HasDate(input.Date) {
		return nil, ErrCannotReserveDate
	}

	// 삭제된 매장인지 확인
	if slot.Store.DeletedAt.Valid {
		return nil, ErrStoreAlreadyDeleted
	}

	// 같은 타임/같은 날짜 중복 신청 확인
	if _, err := s.reservationRepo.FindByCustomerAndSlot(customerID, slot.ID, input.Date); err == nil {
		logger.Warn("Duplicate reservation attempt", map[string]interface{}{
			"customer_id": customerID,
			"slot_id":     slot.ID,
			"date":        input.Date,
		})
		return nil, ErrDuplicateReservation
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// 최소/최대 인원 확인
	if input.HeadCount < slot.MinCount {
		return nil, ErrBelowMinCapacity
	}
	if input.HeadCount > slot.MaxCount {
		return nil, ErrOverMaxCapacity
	}

	// 마감된 날짜인지 확인
	if !slot.IsOpen(input.Date) {
		return nil, model.ErrReservationClosed
	}

	reservation := &model.Reservation{
		CustomerID: customerID,
		StoreID:    slot.StoreID,
		SlotID:     slot.ID,
		Phone:      input.Phone,
		Date:       input.Date,
		HeadCount:  input.HeadCount,
		Status:     model.ReservationPending,
		Visited:    false,
	}

	if err := s.reservationRepo.Create(reservation); err != nil {
		return nil, err
	}

	logger.Info("Reservation created", map[string]interface{}{
		"reservation_id": reservation.ID,
		"customer_id":    customerID,
		"status":         reservation.Status,
	})

	return reservation, nil
}

// ChangeStatus 파트너의 예약 승인/거절.
// 승인은 해당 날짜의 잔여 인원을 감소시키므로 타임 행을 잠그고 한 트랜잭션으로 처리한다.
func (s *reservationService) ChangeStatus(partnerID, reservationID uint, status model.ReservationStatus) (*model.Reservation, error) {
	if status != model.ReservationApproved && status != model.ReservationRejected {
		return nil, ErrInvalidStatus
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during status change, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"reservation_id": reservationID,
			})
		}
	}()

	// 상태 확인과 갱신이 같은 스냅샷에서 이루어지도록 예약 행부터 잠근다
	var reservation model.Reservation
	if err := lockForUpdate(tx).First(&reservation, reservationID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}

	// 승인/취소 경합이 잔여 인원을 잃어버리지 않도록 타임 행을 잠근다
	var slot model.ReservationSlot
	if err := lockForUpdate(tx).First(&slot, reservation.SlotID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	// 본인 매장의 예약인지 확인
	if slot.PartnerID != partnerID {
		tx.Rollback()
		return nil, ErrUnmatchedPartner
	}

	// 이미 승인/거절했거나 매장 삭제로 종료된 예약인지 확인
	if reservation.Status != model.ReservationPending {
		tx.Rollback()
		switch reservation.Status {
		case model.ReservationApproved:
			return nil, fmt.Errorf("%w: 이미 승인된 예약입니다", ErrAlreadyDecided)
		case model.ReservationRejected:
			return nil, fmt.Errorf("%w: 이미 거절된 예약입니다", ErrAlreadyDecided)
		default:
			return nil, fmt.Errorf("%w: 매장이 삭제된 예약입니다", ErrAlreadyDecided)
		}
	}

	if status == model.ReservationApproved {
		// 신청 인원만큼 해당 날짜의 잔여 인원 감소
		if err := slot.ReserveCapacity(reservation.Date, reservation.HeadCount); err != nil {
			tx.Rollback()
			logger.Warn("Approval failed: capacity check", map[string]interface{}{
				"reservation_id": reservation.ID,
				"date":           reservation.Date,
				"head_count":     reservation.HeadCount,
			})
			return nil, err
		}
		if err := tx.Save(&slot).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	reservation.Status = status
	if err := tx.Save(&reservation).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	logger.Info("Reservation status changed", map[string]interface{}{
		"reservation_id": reservation.ID,
		"status":         status,
	})

	return &reservation, nil
}

// Cancel 고객의 예약 취소. 승인된 예약은 잔여 인원을 복구한 뒤 레코드를 삭제한다.
func (s *reservationService) Cancel(customerID, reservationID uint) (*model.Reservation, error) {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during cancellation, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"reservation_id": reservationID,
			})
		}
	}()

	// 본인이 신청한 예약인지 확인. 취소와 승인이 경합해도
	// 같은 예약을 두 번 정산하지 않도록 예약 행을 잠근다
	var reservation model.Reservation
	err := lockForUpdate(tx).Where("id = ? AND customer_id = ?", reservationID, customerID).
		First(&reservation).Error
	if err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnmatchedCustomer
		}
		return nil, err
	}

	// 승인된 예약만 잔여 인원을 차지하고 있다
	if reservation.Status == model.ReservationApproved {
		var slot model.ReservationSlot
		if err := lockForUpdate(tx).First(&slot, reservation.SlotID).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrSlotNotFound
			}
			return nil, err
		}

		slot.ReleaseCapacity(reservation.Date, reservation.HeadCount)
		if err := tx.Save(&slot).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Delete(&reservation).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	logger.Info("Reservation cancelled", map[string]interface{}{
		"reservation_id": reservation.ID,
		"customer_id":    customerID,
		"was_approved":   reservation.Status == model.ReservationApproved,
	})

	return &reservation, nil
}

// RecordVisit 매장 방문 확인.
// 예약한 날짜 당일, 예약 시작시간 10분 전부터 시작시간까지만 가능하다.
func (s *reservationService) RecordVisit(customerID, reservationID uint, now time.Time) (*model.Reservation, error) {
	reservation, err := s.reservationRepo.FindByIDAndCustomerID(reservationID, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}

	switch reservation.Status {
	case model.ReservationRejected:
		return nil, fmt.Errorf("%w: 예약이 거절되었습니다", ErrNotDecidedYet)
	case model.ReservationPending:
		return nil, fmt.Errorf("%w: 예약이 확인중입니다", ErrNotDecidedYet)
	case model.ReservationStoreDeleted:
		return nil, fmt.Errorf("%w: 매장이 삭제된 예약입니다", ErrNotDecidedYet)
	}

	// 예약한 날짜 당일인지 확인
	if reservation.Date != now.Format(model.DateLayout) {
		return nil, fmt.Errorf("%w [예약 날짜 : %s]", ErrNotTodayReservation, reservation.Date)
	}

	startAt, err := time.Parse(model.TimeLayout, reservation.Slot.StartAt)
	if err != nil {
		logger.Error("Invalid slot start time", err, map[string]interface{}{
			"slot_id":  reservation.SlotID,
			"start_at": reservation.Slot.StartAt,
		})
		return nil, err
	}
	start := time.Date(now.Year(), now.Month(), now.Day(), startAt.Hour(), startAt.Minute(), 0, 0, now.Location())

	if now.Before(start.Add(-visitCheckWindow)) {
		return nil, fmt.Errorf("%w [예약 시간 : %s, 현재 시간 : %s]",
			ErrCannotCheckYet, reservation.Slot.StartAt, now.Format(model.TimeLayout))
	}
	if now.After(start) {
		return nil, fmt.Errorf("%w [예약 시간 : %s, 현재 시간 : %s]",
			ErrOverReservationTime, reservation.Slot.StartAt, now.Format(model.TimeLayout))
	}

	reservation.Visited = true
	if err := s.reservationRepo.Update(reservation); err != nil {
		return nil, err
	}

	logger.Info("Visit recorded", map[string]interface{}{
		"reservation_id": reservation.ID,
		"customer_id":    customerID,
	})

	return reservation, nil
}

// SearchByCustomer 고객 본인의 예약 리스트 조회
func (s *reservationService) SearchByCustomer(customerID uint, page, pageSize int) ([]model.Reservation, int64, error) {
	offset := (page - 1) * pageSize
	return s.reservationRepo.FindByCustomerID(customerID, offset, pageSize)
}

// SearchByCustomerAndStore 고객 본인의 특정 매장 예약 리스트 조회
func (s *reservationService) SearchByCustomerAndStore(customerID, storeID uint, page, pageSize int) ([]model.Reservation, int64, error) {
	offset := (page - 1) * pageSize
	return s.reservationRepo.FindByCustomerAndStore(customerID, storeID, offset, pageSize)
}

// SearchByPartner 파트너 본인 매장의 날짜별 예약 리스트 조회
func (s *reservationService) SearchByPartner(partnerID, storeID uint, date string, page, pageSize int) ([]model.Reservation, int64, error) {
	// 본인 매장인지 확인
	if _, err := s.storeRepo.FindByIDAndPartnerID(storeID, partnerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrUnmatchedPartner
		}
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	return s.reservationRepo.FindByStoreAndDate(storeID, date, offset, pageSize)
}
