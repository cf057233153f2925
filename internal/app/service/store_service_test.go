package service

import (
	"testing"
	"time"

	"github.com/hyeonkim/tabling-backend/internal/app/model"
	"github.com/hyeonkim/tabling-backend/internal/app/repository"
	"github.com/hyeonkim/tabling-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type storeFixture struct {
	service StoreService
	db      *gorm.DB
	partner *model.User
}

func setupStoreServiceTest(t *testing.T) *storeFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	storeRepo := repository.NewStoreRepository(testDB)
	slotRepo := repository.NewSlotRepository(testDB)
	reservationRepo := repository.NewReservationRepository(testDB)
	storeService := NewStoreService(storeRepo, slotRepo, reservationRepo, testDB)

	partner := &model.User{
		Email:        "partner@example.com",
		PasswordHash: "hash",
		Name:         "테스트 파트너",
		Role:         model.RolePartner,
	}
	testDB.Create(partner)

	return &storeFixture{
		service: storeService,
		db:      testDB,
		partner: partner,
	}
}

func validStoreInput(name string) StoreInput {
	return StoreInput{
		Name:    name,
		Address: "서울시 강남구 테스트로 1",
		OpenAt:  "09:00",
		CloseAt: "22:00",
	}
}

func (f *storeFixture) registerStoreWithSlot(t *testing.T) (*model.Store, *model.ReservationSlot) {
	store, err := f.service.RegisterStore(f.partner.ID, validStoreInput("테스트 식당"))
	require.NoError(t, err)

	updated, err := f.service.AddSlots(f.partner.ID, store.ID, []SlotInput{
		{StartAt: "12:00", EndAt: "13:00", MinCount: 1, MaxCount: 4, Count: 20},
	})
	require.NoError(t, err)
	require.Len(t, updated.Slots, 1)

	return updated, &updated.Slots[0]
}

func TestStoreService_RegisterStore(t *testing.T) {
	f := setupStoreServiceTest(t)

	store, err := f.service.RegisterStore(f.partner.ID, validStoreInput("강남불백"))
	require.NoError(t, err)
	assert.NotZero(t, store.ID)
	assert.Equal(t, f.partner.ID, store.PartnerID)

	// 매장명 중복 불가
	_, err = f.service.RegisterStore(f.partner.ID, validStoreInput("강남불백"))
	assert.ErrorIs(t, err, ErrDuplicateStoreName)

	// 오픈시간 >= 마감시간 불가
	input := validStoreInput("역삼곱창")
	input.OpenAt = "22:00"
	input.CloseAt = "09:00"
	_, err = f.service.RegisterStore(f.partner.ID, input)
	assert.ErrorIs(t, err, ErrCheckStoreHours)
}

func TestStoreService_UpdateStore(t *testing.T) {
	f := setupStoreServiceTest(t)

	store, err := f.service.RegisterStore(f.partner.ID, validStoreInput("강남불백"))
	require.NoError(t, err)
	_, err = f.service.RegisterStore(f.partner.ID, validStoreInput("역삼곱창"))
	require.NoError(t, err)

	// 다른 매장의 이름으로 변경 불가
	input := validStoreInput("역삼곱창")
	_, err = f.service.UpdateStore(f.partner.ID, store.ID, input)
	assert.ErrorIs(t, err, ErrDuplicateStoreName)

	// 같은 이름 유지하며 다른 필드 수정 가능
	input = validStoreInput("강남불백")
	input.Description = "점심특선 있음"
	updated, err := f.service.UpdateStore(f.partner.ID, store.ID, input)
	require.NoError(t, err)
	assert.Equal(t, "점심특선 있음", updated.Description)

	// 본인 매장이 아니면 수정 불가
	_, err = f.service.UpdateStore(f.partner.ID+99, store.ID, input)
	assert.ErrorIs(t, err, ErrUnmatchedPartner)
}

func TestStoreService_AddSlots_TimeValidation(t *testing.T) {
	f := setupStoreServiceTest(t)

	store, err := f.service.RegisterStore(f.partner.ID, validStoreInput("테스트 식당"))
	require.NoError(t, err)

	// 시작 >= 마감 불가
	_, err = f.service.AddSlots(f.partner.ID, store.ID, []SlotInput{
		{StartAt: "13:00", EndAt: "12:00", MinCount: 1, MaxCount: 4, Count: 20},
	})
	assert.ErrorIs(t, err, ErrCheckSlotTime)

	_, err = f.service.AddSlots(f.partner.ID, store.ID, []SlotInput{
		{StartAt: "12:00", EndAt: "13:00", MinCount: 1, MaxCount: 4, Count: 20},
	})
	require.NoError(t, err)

	// 기존 타임과 겹치면 불가
	_, err = f.service.AddSlots(f.partner.ID, store.ID, []SlotInput{
		{StartAt: "12:30", EndAt: "14:00", MinCount: 1, MaxCount: 4, Count: 20},
	})
	assert.ErrorIs(t, err, ErrCheckSlotTime)

	// 이전 타임 마감시간과 맞닿는 건 허용
	_, err = f.service.AddSlots(f.partner.ID, store.ID, []SlotInput{
		{StartAt: "13:00", EndAt: "14:00", MinCount: 1, MaxCount: 4, Count: 20},
	})
	assert.NoError(t, err)
}

func TestStoreService_UpdateStoreDates_RebuildsSlotMaps(t *testing.T) {
	f := setupStoreServiceTest(t)
	store, slot := f.registerStoreWithSlot(t)

	_, err := f.service.UpdateStoreDates(f.partner.ID, store.ID, []string{"2026-09-01", "2026-09-02"})
	require.NoError(t, err)

	var reloaded model.ReservationSlot
	require.NoError(t, f.db.First(&reloaded, slot.ID).Error)
	remaining, _ := reloaded.Remaining("2026-09-01")
	assert.Equal(t, 20, remaining)

	// 일부 예약 승인으로 잔여 인원이 줄어든 상태에서 날짜를 다시 발행
	require.NoError(t, reloaded.ReserveCapacity("2026-09-01", 5))
	require.NoError(t, f.db.Save(&reloaded).Error)

	_, err = f.service.UpdateStoreDates(f.partner.ID, store.ID, []string{"2026-09-01", "2026-09-03"})
	require.NoError(t, err)

	require.NoError(t, f.db.First(&reloaded, slot.ID).Error)
	// 유지된 날짜는 잔여 인원 보존
	remaining, _ = reloaded.Remaining("2026-09-01")
	assert.Equal(t, 15, remaining)
	// 새 날짜는 기본 인원
	remaining, _ = reloaded.Remaining("2026-09-03")
	assert.Equal(t, 20, remaining)
	// 제외된 날짜는 제거
	assert.False(t, reloaded.IsOpen("2026-09-02"))

	// 잘못된 날짜 형식
	_, err = f.service.UpdateStoreDates(f.partner.ID, store.ID, []string{"09/01/2026"})
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestStoreService_UpdateSlot_ReservationGuard(t *testing.T) {
	f := setupStoreServiceTest(t)
	store, slot := f.registerStoreWithSlot(t)

	_, err := f.service.UpdateStoreDates(f.partner.ID, store.ID, []string{"2026-09-01"})
	require.NoError(t, err)

	// 예약이 참조하는 타임은 수정/삭제 불가
	customer := &model.User{
		Email: "customer@example.com", PasswordHash: "hash", Name: "고객", Role: model.RoleCustomer,
	}
	f.db.Create(customer)
	f.db.Create(&model.Reservation{
		CustomerID: customer.ID,
		StoreID:    store.ID,
		SlotID:     slot.ID,
		Date:       "2026-09-01",
		HeadCount:  2,
		Status:     model.ReservationPending,
	})

	_, err = f.service.UpdateSlot(f.partner.ID, SlotInput{
		ID: slot.ID, StartAt: "14:00", EndAt: "15:00", MinCount: 1, MaxCount: 4, Count: 20,
	})
	assert.ErrorIs(t, err, ErrStillHaveReservation)

	err = f.service.DeleteSlots(f.partner.ID, store.ID, []uint{slot.ID})
	assert.ErrorIs(t, err, ErrStillHaveReservation)
}

func TestStoreService_SetDateClosed(t *testing.T) {
	f := setupStoreServiceTest(t)
	store, slot := f.registerStoreWithSlot(t)

	_, err := f.service.UpdateStoreDates(f.partner.ID, store.ID, []string{"2026-09-01"})
	require.NoError(t, err)

	updated, err := f.service.SetDateClosed(f.partner.ID, slot.ID, "2026-09-01", model.ClosedDate)
	require.NoError(t, err)
	assert.False(t, updated.IsOpen("2026-09-01"))

	// 오픈하지 않은 날짜는 마감 처리 불가
	_, err = f.service.SetDateClosed(f.partner.ID, slot.ID, "2026-12-25", model.ClosedDate)
	assert.ErrorIs(t, err, model.ErrDateNotOpen)

	// 본인 타임이 아니면 불가
	_, err = f.service.SetDateClosed(f.partner.ID+99, slot.ID, "2026-09-01", model.ClosedDate)
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestStoreService_DeleteStore(t *testing.T) {
	f := setupStoreServiceTest(t)
	store, slot := f.registerStoreWithSlot(t)

	_, err := f.service.UpdateStoreDates(f.partner.ID, store.ID, []string{"2026-09-01"})
	require.NoError(t, err)

	customer := &model.User{
		Email: "customer@example.com", PasswordHash: "hash", Name: "고객", Role: model.RoleCustomer,
	}
	f.db.Create(customer)
	reservation := &model.Reservation{
		CustomerID: customer.ID,
		StoreID:    store.ID,
		SlotID:     slot.ID,
		Date:       "2026-09-01",
		HeadCount:  2,
		Status:     model.ReservationApproved,
	}
	f.db.Create(reservation)

	// 본인 매장이 아니면 삭제 불가
	err = f.service.DeleteStore(f.partner.ID+99, store.ID)
	assert.ErrorIs(t, err, ErrUnmatchedPartner)

	require.NoError(t, f.service.DeleteStore(f.partner.ID, store.ID))

	// 예약은 STORE_DELETED로 전환
	var rv model.Reservation
	require.NoError(t, f.db.First(&rv, reservation.ID).Error)
	assert.Equal(t, model.ReservationStoreDeleted, rv.Status)

	// 일반 조회에서는 사라진다
	_, err = f.service.GetStore(store.ID)
	assert.ErrorIs(t, err, ErrStoreNotFound)

	// 중복 삭제 불가
	err = f.service.DeleteStore(f.partner.ID, store.ID)
	assert.ErrorIs(t, err, ErrStoreAlreadyDeleted)
}

func TestStoreService_ListStores(t *testing.T) {
	f := setupStoreServiceTest(t)

	for _, s := range []struct {
		name   string
		rating float64
		count  int64
	}{
		{"강남불백", 4.5, 10},
		{"역삼곱창", 3.0, 4},
		{"선릉초밥", 5.0, 1},
	} {
		store, err := f.service.RegisterStore(f.partner.ID, validStoreInput(s.name))
		require.NoError(t, err)
		store.Rating = s.rating
		store.ReviewSum = s.rating * float64(s.count)
		store.ReviewCount = s.count
		require.NoError(t, f.db.Save(store).Error)
	}

	// 전체 조회
	stores, err := f.service.ListStores(repository.StoreFilter{})
	require.NoError(t, err)
	assert.Len(t, stores, 3)

	// 매장명 검색
	stores, err = f.service.ListStores(repository.StoreFilter{Search: "곱창"})
	require.NoError(t, err)
	require.Len(t, stores, 1)
	assert.Equal(t, "역삼곱창", stores[0].Name)

	// 평점순 정렬
	stores, err = f.service.ListStores(repository.StoreFilter{SortByRating: true})
	require.NoError(t, err)
	require.Len(t, stores, 3)
	assert.Equal(t, "선릉초밥", stores[0].Name)
	assert.Equal(t, "강남불백", stores[1].Name)
}

func TestStoreService_NearbyStores(t *testing.T) {
	f := setupStoreServiceTest(t)

	coords := []struct {
		name     string
		lat, lng float64
	}{
		{"가까운집", 37.50, 127.03},
		{"먼집", 37.60, 127.20},
	}
	for _, c := range coords {
		input := validStoreInput(c.name)
		lat, lng := c.lat, c.lng
		input.Latitude = &lat
		input.Longitude = &lng
		_, err := f.service.RegisterStore(f.partner.ID, input)
		require.NoError(t, err)
	}
	// 좌표 없는 매장은 결과에서 제외
	_, err := f.service.RegisterStore(f.partner.ID, validStoreInput("좌표없는집"))
	require.NoError(t, err)

	results, err := f.service.NearbyStores(37.50, 127.03, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "가까운집", results[0].Name)
	assert.Equal(t, "먼집", results[1].Name)
	assert.Less(t, results[0].DistanceKm, results[1].DistanceKm)
}

func TestStoreService_PruneExpiredDates(t *testing.T) {
	f := setupStoreServiceTest(t)
	store, slot := f.registerStoreWithSlot(t)

	_, err := f.service.UpdateStoreDates(f.partner.ID, store.ID,
		[]string{"2026-08-29", "2026-08-30", "2026-09-01"})
	require.NoError(t, err)

	now, err := time.Parse(model.DateLayout, "2026-08-30")
	require.NoError(t, err)
	require.NoError(t, f.service.PruneExpiredDates(now))

	reloaded, err := f.service.GetStore(store.ID)
	require.NoError(t, err)
	// 오늘과 미래 날짜만 유지
	assert.Equal(t, model.DateList{"2026-08-30", "2026-09-01"}, reloaded.Dates)

	var reloadedSlot model.ReservationSlot
	require.NoError(t, f.db.First(&reloadedSlot, slot.ID).Error)
	assert.False(t, reloadedSlot.IsOpen("2026-08-29"))
	assert.True(t, reloadedSlot.IsOpen("2026-08-30"))
	assert.True(t, reloadedSlot.IsOpen("2026-09-01"))
}
