package service

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/hyeonkim/tabling-backend/internal/app/model"
	"github.com/hyeonkim/tabling-backend/internal/app/repository"
	"github.com/hyeonkim/tabling-backend/pkg/logger"
	"github.com/hyeonkim/tabling-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrStoreNotFound        = errors.New("매장이 존재하지 않습니다")
	ErrDuplicateStoreName   = errors.New("매장명은 중복일 수 없습니다")
	ErrCheckStoreHours      = errors.New("매장 운영시간을 확인해주세요")
	ErrCheckSlotTime        = errors.New("예약 시작시간과 마감시간을 확인해주세요")
	ErrStoreAlreadyDeleted  = errors.New("이미 삭제된 매장입니다")
	ErrUnmatchedPartner     = errors.New("매장 정보와 파트너 정보가 일치하지 않습니다")
	ErrStillHaveReservation = errors.New("해당 매장에 예약이 남아 있습니다")
	ErrInvalidDate          = errors.New("날짜 형식을 확인해주세요")
)

type StoreInput struct {
	Name        string
	Description string
	Address     string
	Latitude    *float64
	Longitude   *float64
	OpenAt      string // "15:04"
	CloseAt     string
}

type SlotInput struct {
	ID       uint // 수정 시에만 사용
	StartAt  string
	EndAt    string
	MinCount int
	MaxCount int
	Count    int
}

// StoreWithDistance 거리 검색 결과 - 매장과 요청 좌표로부터의 거리(km)
type StoreWithDistance struct {
	model.Store
	DistanceKm float64 `json:"distance_km"`
}

type StoreService interface {
	RegisterStore(partnerID uint, input StoreInput) (*model.Store, error)
	UpdateStore(partnerID, storeID uint, input StoreInput) (*model.Store, error)
	UpdateStoreDates(partnerID, storeID uint, dates []string) (*model.Store, error)
	DeleteStore(partnerID, storeID uint) error
	AddSlots(partnerID, storeID uint, inputs []SlotInput) (*model.Store, error)
	UpdateSlot(partnerID uint, input SlotInput) (*model.ReservationSlot, error)
	DeleteSlots(partnerID, storeID uint, slotIDs []uint) error
	SetDateClosed(partnerID, slotID uint, date string, value int) (*model.ReservationSlot, error)
	PruneExpiredDates(now time.Time) error
	GetStore(id uint) (*model.Store, error)
	ListStores(filter repository.StoreFilter) ([]model.Store, error)
	NearbyStores(lat, lng float64, limit int) ([]StoreWithDistance, error)
}

type storeService struct {
	storeRepo       repository.StoreRepository
	slotRepo        *repository.SlotRepository
	reservationRepo repository.ReservationRepository
	db              *gorm.DB
}

func NewStoreService(
	storeRepo repository.StoreRepository,
	slotRepo *repository.SlotRepository,
	reservationRepo repository.ReservationRepository,
	db *gorm.DB,
) StoreService {
	return &storeService{
		storeRepo:       storeRepo,
		slotRepo:        slotRepo,
		reservationRepo: reservationRepo,
		db:              db,
	}
}

// RegisterStore 매장 등록. 매장명은 전역 유일(대소문자 구분)
func (s *storeService) RegisterStore(partnerID uint, input StoreInput) (*model.Store, error) {
	if err := checkStoreHours(input.OpenAt, input.CloseAt); err != nil {
		return nil, err
	}

	exists, err := s.storeRepo.ExistsByName(input.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		logger.Warn("Store registration failed: duplicate name", map[string]interface{}{
			"name": input.Name,
		})
		return nil, ErrDuplicateStoreName
	}

	store := &model.Store{
		PartnerID:   partnerID,
		Name:        input.Name,
		Description: input.Description,
		Address:     input.Address,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		OpenAt:      input.OpenAt,
		CloseAt:     input.CloseAt,
		Dates:       model.DateList{},
	}

	if err := s.storeRepo.Create(store); err != nil {
		return nil, err
	}

	logger.Info("Store registered", map[string]interface{}{
		"store_id":   store.ID,
		"partner_id": partnerID,
		"name":       store.Name,
	})

	return store, nil
}

// UpdateStore 매장 정보 수정 (파트너 본인 매장만)
func (s *storeService) UpdateStore(partnerID, storeID uint, input StoreInput) (*model.Store, error) {
	if err := checkStoreHours(input.OpenAt, input.CloseAt); err != nil {
		return nil, err
	}

	store, err := s.getPartnerStore(storeID, partnerID)
	if err != nil {
		return nil, err
	}

	if input.Name != store.Name {
		exists, err := s.storeRepo.ExistsByName(input.Name)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrDuplicateStoreName
		}
	}

	store.Name = input.Name
	store.Description = input.Description
	store.Address = input.Address
	store.Latitude = input.Latitude
	store.Longitude = input.Longitude
	store.OpenAt = input.OpenAt
	store.CloseAt = input.CloseAt

	if err := s.storeRepo.Update(store); err != nil {
		return nil, err
	}
	return store, nil
}

// UpdateStoreDates 매장 예약 오픈 날짜 수정.
// 모든 타임의 날짜 맵을 다시 만든다 - 유지되는 날짜는 잔여 인원 유지, 새 날짜는 기본 인원
func (s *storeService) UpdateStoreDates(partnerID, storeID uint, dates []string) (*model.Store, error) {
	for _, date := range dates {
		if _, err := time.Parse(model.DateLayout, date); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidDate, date)
		}
	}

	store, err := s.getPartnerStore(storeID, partnerID)
	if err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var slots []model.ReservationSlot
	if err := lockForUpdate(tx).Where("store_id = ?", storeID).Find(&slots).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	for i := range slots {
		slots[i].RebuildDates(dates)
		if err := tx.Save(&slots[i]).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	store.Dates = model.DateList(dates)
	if err := tx.Save(store).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	logger.Info("Store dates updated", map[string]interface{}{
		"store_id":    storeID,
		"dates_count": len(dates),
		"slots_count": len(slots),
	})

	return store, nil
}

// DeleteStore 매장 소프트 삭제.
// 매장의 모든 예약을 STORE_DELETED로 일괄 전환한 뒤 같은 트랜잭션에서 삭제한다
func (s *storeService) DeleteStore(partnerID, storeID uint) error {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// 이미 삭제된 매장을 구분하기 위해 소프트 삭제된 행도 조회
	var store model.Store
	err := tx.Unscoped().Where("id = ? AND partner_id = ?", storeID, partnerID).First(&store).Error
	if err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUnmatchedPartner
		}
		return err
	}
	if store.DeletedAt.Valid {
		tx.Rollback()
		return ErrStoreAlreadyDeleted
	}

	// 관리자성 강제 전환 - 일반 상태 전이 가드를 거치지 않는다
	err = tx.Model(&model.Reservation{}).
		Where("store_id = ?", storeID).
		Update("status", model.ReservationStoreDeleted).Error
	if err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Delete(&store).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	logger.Info("Store deleted", map[string]interface{}{
		"store_id":   storeID,
		"partner_id": partnerID,
	})

	return nil
}

// AddSlots 매장 예약 타임 추가.
// 타임별 시작 < 마감, 같은 매장의 타임끼리는 시간이 겹치지 않아야 한다
func (s *storeService) AddSlots(partnerID, storeID uint, inputs []SlotInput) (*model.Store, error) {
	store, err := s.getPartnerStore(storeID, partnerID)
	if err != nil {
		return nil, err
	}

	existing, err := s.slotRepo.FindByStoreID(storeID)
	if err != nil {
		return nil, err
	}

	created := make([]model.ReservationSlot, 0, len(inputs))
	for _, input := range inputs {
		slot := model.ReservationSlot{
			StoreID:   storeID,
			PartnerID: partnerID,
			StartAt:   input.StartAt,
			EndAt:     input.EndAt,
			MinCount:  input.MinCount,
			MaxCount:  input.MaxCount,
			Count:     input.Count,
		}
		// 매장이 이미 오픈한 날짜 전부에 명시적 엔트리 생성
		slot.RebuildDates(store.Dates)
		created = append(created, slot)
	}

	if err := checkSlotTimes(append(existing, created...)); err != nil {
		return nil, err
	}

	for i := range created {
		if err := s.slotRepo.Create(&created[i]); err != nil {
			return nil, err
		}
	}

	logger.Info("Slots added", map[string]interface{}{
		"store_id": storeID,
		"count":    len(created),
	})

	return s.storeRepo.FindByID(storeID, true)
}

// UpdateSlot 예약 타임 수정. 예약이 참조 중인 타임은 수정할 수 없다
func (s *storeService) UpdateSlot(partnerID uint, input SlotInput) (*model.ReservationSlot, error) {
	slot, err := s.slotRepo.FindByIDAndPartnerID(input.ID, partnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	if err := s.checkNoReservations(slot.ID); err != nil {
		return nil, err
	}

	slot.StartAt = input.StartAt
	slot.EndAt = input.EndAt
	slot.MinCount = input.MinCount
	slot.MaxCount = input.MaxCount
	slot.Count = input.Count

	// 형제 타임들과의 시간 순서 재검증
	siblings, err := s.slotRepo.FindByStoreID(slot.StoreID)
	if err != nil {
		return nil, err
	}
	for i := range siblings {
		if siblings[i].ID == slot.ID {
			siblings[i] = *slot
		}
	}
	if err := checkSlotTimes(siblings); err != nil {
		return nil, err
	}

	if err := s.slotRepo.Update(slot); err != nil {
		return nil, err
	}
	return slot, nil
}

// DeleteSlots 예약 타임 삭제. 예약이 참조 중인 타임은 삭제할 수 없다
func (s *storeService) DeleteSlots(partnerID, storeID uint, slotIDs []uint) error {
	if _, err := s.getPartnerStore(storeID, partnerID); err != nil {
		return err
	}

	for _, id := range slotIDs {
		if _, err := s.slotRepo.FindByIDAndPartnerID(id, partnerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSlotNotFound
			}
			return err
		}
		if err := s.checkNoReservations(id); err != nil {
			return err
		}
	}

	return s.slotRepo.DeleteByIDs(slotIDs)
}

// SetDateClosed 특정 날짜의 예약 마감(-1) 또는 잔여 인원 수동 지정.
// 매장이 오픈하지 않은 날짜는 수정할 수 없다
func (s *storeService) SetDateClosed(partnerID, slotID uint, date string, value int) (*model.ReservationSlot, error) {
	slot, err := s.slotRepo.FindByIDAndPartnerID(slotID, partnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	if err := slot.SetDateClosed(date, value); err != nil {
		return nil, err
	}

	if err := s.slotRepo.Update(slot); err != nil {
		return nil, err
	}

	logger.Info("Slot date closed value updated", map[string]interface{}{
		"slot_id": slotID,
		"date":    date,
		"value":   value,
	})

	return slot, nil
}

// PruneExpiredDates 지나간 예약 오픈 날짜 정리 (스케줄러에서 매일 호출).
// 오늘 이전 날짜를 매장 날짜 목록과 모든 타임의 날짜 맵에서 제거한다.
// 유지되는 날짜의 잔여 인원은 그대로 보존된다
func (s *storeService) PruneExpiredDates(now time.Time) error {
	today := now.Format(model.DateLayout)

	stores, err := s.storeRepo.FindAll(repository.StoreFilter{})
	if err != nil {
		return err
	}

	pruned := 0
	for i := range stores {
		store := &stores[i]

		kept := make([]string, 0, len(store.Dates))
		for _, date := range store.Dates {
			if date >= today {
				kept = append(kept, date)
			}
		}
		if len(kept) == len(store.Dates) {
			continue
		}

		tx := s.db.Begin()

		var slots []model.ReservationSlot
		if err := lockForUpdate(tx).Where("store_id = ?", store.ID).Find(&slots).Error; err != nil {
			tx.Rollback()
			return err
		}
		for j := range slots {
			slots[j].RebuildDates(kept)
			if err := tx.Save(&slots[j]).Error; err != nil {
				tx.Rollback()
				return err
			}
		}

		store.Dates = model.DateList(kept)
		if err := tx.Save(store).Error; err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit().Error; err != nil {
			return err
		}
		pruned++
	}

	if pruned > 0 {
		logger.Info("Expired reservation dates pruned", map[string]interface{}{
			"stores": pruned,
			"today":  today,
		})
	}
	return nil
}

// GetStore 매장 상세 조회 (예약 타임 포함)
func (s *storeService) GetStore(id uint) (*model.Store, error) {
	store, err := s.storeRepo.FindByID(id, true)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	return store, nil
}

// ListStores 매장 목록 조회 (매장명 검색, 평점순 정렬)
func (s *storeService) ListStores(filter repository.StoreFilter) ([]model.Store, error) {
	return s.storeRepo.FindAll(filter)
}

// NearbyStores 좌표 기준 가까운 매장 검색.
// 좌표 변환(지오코딩)은 외부에서 수행하고 위도/경도만 받는다
func (s *storeService) NearbyStores(lat, lng float64, limit int) ([]StoreWithDistance, error) {
	stores, err := s.storeRepo.FindAll(repository.StoreFilter{})
	if err != nil {
		return nil, err
	}

	results := make([]StoreWithDistance, 0, len(stores))
	for _, store := range stores {
		if store.Latitude == nil || store.Longitude == nil {
			continue
		}
		results = append(results, StoreWithDistance{
			Store:      store,
			DistanceKm: util.CalculateDistance(lat, lng, *store.Latitude, *store.Longitude),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].DistanceKm < results[j].DistanceKm
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *storeService) getPartnerStore(storeID, partnerID uint) (*model.Store, error) {
	store, err := s.storeRepo.FindByIDAndPartnerID(storeID, partnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnmatchedPartner
		}
		return nil, err
	}
	return store, nil
}

func (s *storeService) checkNoReservations(slotID uint) error {
	exists, err := s.reservationRepo.ExistsBySlotID(slotID)
	if err != nil {
		return err
	}
	if exists {
		return ErrStillHaveReservation
	}
	return nil
}

// checkStoreHours 매장 오픈시간이 마감시간보다 빠른지 확인
func checkStoreHours(openAt, closeAt string) error {
	open, err := time.Parse(model.TimeLayout, openAt)
	if err != nil {
		return fmt.Errorf("%w [매장 오픈시간 : %s]", ErrCheckStoreHours, openAt)
	}
	close, err := time.Parse(model.TimeLayout, closeAt)
	if err != nil {
		return fmt.Errorf("%w [매장 마감시간 : %s]", ErrCheckStoreHours, closeAt)
	}
	if !open.Before(close) {
		return fmt.Errorf("%w [매장 오픈시간 : %s, 마감시간 : %s]", ErrCheckStoreHours, openAt, closeAt)
	}
	return nil
}

// checkSlotTimes 타임별 시작 < 마감 확인, 시작시간 순 정렬 후 이전 타임 마감 <= 다음 타임 시작 확인
func checkSlotTimes(slots []model.ReservationSlot) error {
	type window struct {
		start, end time.Time
	}

	windows := make([]window, 0, len(slots))
	for _, slot := range slots {
		start, err := time.Parse(model.TimeLayout, slot.StartAt)
		if err != nil {
			return fmt.Errorf("%w [예약 시작시간 : %s]", ErrCheckSlotTime, slot.StartAt)
		}
		end, err := time.Parse(model.TimeLayout, slot.EndAt)
		if err != nil {
			return fmt.Errorf("%w [예약 마감시간 : %s]", ErrCheckSlotTime, slot.EndAt)
		}
		if !start.Before(end) {
			return fmt.Errorf("%w [예약 시작시간 : %s, 마감시간 : %s]", ErrCheckSlotTime, slot.StartAt, slot.EndAt)
		}
		windows = append(windows, window{start: start, end: end})
	}

	sort.Slice(windows, func(i, j int) bool {
		return windows[i].start.Before(windows[j].start)
	})

	for i := 0; i+1 < len(windows); i++ {
		if windows[i].end.After(windows[i+1].start) {
			return fmt.Errorf("%w [이전타임 마감시간 : %s, 다음타임 시작시간 : %s]",
				ErrCheckSlotTime,
				windows[i].end.Format(model.TimeLayout),
				windows[i+1].start.Format(model.TimeLayout))
		}
	}
	return nil
}
