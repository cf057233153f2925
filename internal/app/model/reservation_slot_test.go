package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSlot() *ReservationSlot {
	return &ReservationSlot{
		StartAt:  "12:00",
		EndAt:    "13:00",
		MinCount: 1,
		MaxCount: 4,
		Count:    20,
		Closed: DateCountMap{
			"2026-09-01": 20,
			"2026-09-02": 3,
			"2026-09-03": ClosedDate,
		},
	}
}

func TestReservationSlot_IsOpen(t *testing.T) {
	slot := newTestSlot()

	assert.True(t, slot.IsOpen("2026-09-01"))
	assert.True(t, slot.IsOpen("2026-09-02"))

	// 마감된 날짜
	assert.False(t, slot.IsOpen("2026-09-03"))
	// 엔트리가 없는 날짜는 예약 불가
	assert.False(t, slot.IsOpen("2026-09-04"))

	// 잔여 인원 0도 열린 상태 (마감과 구분)
	slot.Closed["2026-09-05"] = 0
	assert.True(t, slot.IsOpen("2026-09-05"))
	remaining, ok := slot.Remaining("2026-09-05")
	assert.True(t, ok)
	assert.Equal(t, 0, remaining)
}

func TestReservationSlot_ReserveCapacity(t *testing.T) {
	slot := newTestSlot()

	// 정상 감소
	require.NoError(t, slot.ReserveCapacity("2026-09-01", 3))
	remaining, _ := slot.Remaining("2026-09-01")
	assert.Equal(t, 17, remaining)

	// 잔여 인원 전부 사용 가능
	require.NoError(t, slot.ReserveCapacity("2026-09-02", 3))
	remaining, _ = slot.Remaining("2026-09-02")
	assert.Equal(t, 0, remaining)

	// 잔여 인원 초과
	err := slot.ReserveCapacity("2026-09-02", 1)
	assert.ErrorIs(t, err, ErrOverCapacity)

	// 마감된 날짜
	err = slot.ReserveCapacity("2026-09-03", 1)
	assert.ErrorIs(t, err, ErrReservationClosed)

	// 열리지 않은 날짜
	err = slot.ReserveCapacity("2026-09-04", 1)
	assert.ErrorIs(t, err, ErrReservationClosed)
}

func TestReservationSlot_ReleaseCapacity(t *testing.T) {
	slot := newTestSlot()

	// 감소 후 복구하면 원래 값
	require.NoError(t, slot.ReserveCapacity("2026-09-01", 5))
	slot.ReleaseCapacity("2026-09-01", 5)
	remaining, _ := slot.Remaining("2026-09-01")
	assert.Equal(t, 20, remaining)

	// 마감된 날짜는 복구하지 않는다 (파트너의 마감 의사 유지)
	slot.ReleaseCapacity("2026-09-03", 5)
	assert.False(t, slot.IsOpen("2026-09-03"))

	// 엔트리가 없는 날짜는 무시
	slot.ReleaseCapacity("2026-09-04", 5)
	_, ok := slot.Closed["2026-09-04"]
	assert.False(t, ok)
}

func TestReservationSlot_SetDateClosed(t *testing.T) {
	slot := newTestSlot()

	// 마감 처리
	require.NoError(t, slot.SetDateClosed("2026-09-01", ClosedDate))
	assert.False(t, slot.IsOpen("2026-09-01"))

	// 잔여 인원 수동 지정
	require.NoError(t, slot.SetDateClosed("2026-09-02", 10))
	remaining, _ := slot.Remaining("2026-09-02")
	assert.Equal(t, 10, remaining)

	// -1 이외의 음수는 마감으로 처리
	require.NoError(t, slot.SetDateClosed("2026-09-02", -7))
	assert.False(t, slot.IsOpen("2026-09-02"))

	// 열리지 않은 날짜는 수정 불가
	err := slot.SetDateClosed("2026-09-04", 5)
	assert.ErrorIs(t, err, ErrDateNotOpen)
}

func TestReservationSlot_RebuildDates(t *testing.T) {
	slot := newTestSlot()
	require.NoError(t, slot.ReserveCapacity("2026-09-01", 5))

	slot.RebuildDates([]string{"2026-09-01", "2026-09-03", "2026-09-10"})

	// 유지된 날짜는 잔여 인원 보존
	remaining, _ := slot.Remaining("2026-09-01")
	assert.Equal(t, 15, remaining)

	// 마감 상태도 보존
	assert.False(t, slot.IsOpen("2026-09-03"))
	_, exists := slot.Closed["2026-09-03"]
	assert.True(t, exists)

	// 새 날짜는 기본 인원
	remaining, _ = slot.Remaining("2026-09-10")
	assert.Equal(t, 20, remaining)

	// 제외된 날짜의 엔트리는 삭제
	_, exists = slot.Closed["2026-09-02"]
	assert.False(t, exists)
}

func TestDateCountMap_ScanNormalizesNegatives(t *testing.T) {
	var m DateCountMap
	require.NoError(t, m.Scan([]byte(`{"2026-09-01":10,"2026-09-02":-1,"2026-09-03":-99}`)))

	assert.Equal(t, 10, m["2026-09-01"])
	assert.Equal(t, ClosedDate, m["2026-09-02"])
	// -1 이외의 음수는 마감으로 정규화
	assert.Equal(t, ClosedDate, m["2026-09-03"])
}
