package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// ClosedDate는 날짜별 잔여 인원 맵에서 "해당 날짜 예약 마감"을 뜻하는 센티널 값
const ClosedDate = -1

var (
	// ErrReservationClosed 마감된 날짜에 예약을 시도한 경우
	ErrReservationClosed = errors.New("예약이 마감되었습니다")
	// ErrOverCapacity 잔여 인원보다 많은 인원을 예약 승인하려는 경우
	ErrOverCapacity = errors.New("예약 가능 인원을 초과합니다")
	// ErrDateNotOpen 예약이 열려있지 않은 날짜를 수정하려는 경우
	ErrDateNotOpen = errors.New("예약이 열려있지 않은 날짜입니다")
)

// DateCountMap은 날짜("2006-01-02") -> 잔여 예약 가능 인원 맵을 JSONB로 저장하기 위한 커스텀 타입.
// 값이 ClosedDate(-1)이면 해당 날짜는 마감. -1 이외의 음수는 저장 경계에서 -1로 정규화한다.
type DateCountMap map[string]int

// Value는 database/sql/driver.Valuer 인터페이스 구현
func (m DateCountMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan은 database/sql.Scanner 인터페이스 구현
func (m *DateCountMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan DateCountMap")
	}

	if err := json.Unmarshal(bytes, m); err != nil {
		return err
	}

	// -1 이외의 음수는 정의되지 않은 값이므로 마감으로 정규화
	for date, count := range *m {
		if count < ClosedDate {
			(*m)[date] = ClosedDate
		}
	}
	return nil
}

// ReservationSlot 매장의 예약 타임 (예: 12:00~13:00).
// 같은 타임이라도 날짜마다 잔여 인원을 독립적으로 관리한다.
type ReservationSlot struct {
	ID        uint         `gorm:"primarykey" json:"id"`
	StoreID   uint         `gorm:"not null;index" json:"store_id"`   // 소속 매장 ID
	Store     Store        `gorm:"foreignKey:StoreID" json:"-"`      // 소속 매장
	PartnerID uint         `gorm:"not null;index" json:"partner_id"` // 매장 파트너 ID
	StartAt   string       `gorm:"type:varchar(10)" json:"start_at"` // 예약 시작 시간 (예: "12:00")
	EndAt     string       `gorm:"type:varchar(10)" json:"end_at"`   // 예약 마감 시간 (예: "13:00")
	MinCount  int          `gorm:"not null" json:"min_count"`        // 예약 최소 인원
	MaxCount  int          `gorm:"not null" json:"max_count"`        // 예약 최대 인원
	Count     int          `gorm:"not null" json:"count"`            // 날짜별 기본 예약 가능 인원
	Closed    DateCountMap `gorm:"type:jsonb" json:"closed"`         // 날짜 -> 잔여 인원 (-1: 마감)

	CreatedAt time.Time `json:"created_at"` // 생성 시각
	UpdatedAt time.Time `json:"updated_at"` // 수정 시각
}

func (ReservationSlot) TableName() string {
	return "reservation_slots"
}

// IsOpen은 해당 날짜에 예약을 받을 수 있는지 확인합니다.
// 날짜 엔트리가 없거나 마감(-1)이면 false
func (s *ReservationSlot) IsOpen(date string) bool {
	count, ok := s.Closed[date]
	return ok && count != ClosedDate
}

// Remaining은 해당 날짜의 잔여 예약 가능 인원을 반환합니다
func (s *ReservationSlot) Remaining(date string) (int, bool) {
	count, ok := s.Closed[date]
	if !ok || count == ClosedDate {
		return 0, false
	}
	return count, true
}

// ReserveCapacity는 예약 승인 시 해당 날짜의 잔여 인원을 headCount만큼 감소시킵니다.
// 잔여 인원보다 많은 인원을 요청하면 ErrOverCapacity
func (s *ReservationSlot) ReserveCapacity(date string, headCount int) error {
	remaining, ok := s.Remaining(date)
	if !ok {
		return ErrReservationClosed
	}
	if headCount > remaining {
		return ErrOverCapacity
	}
	s.Closed[date] = remaining - headCount
	return nil
}

// ReleaseCapacity는 승인된 예약 취소 시 해당 날짜의 잔여 인원을 headCount만큼 복구합니다.
// 이전 감소를 되돌리는 것이므로 기본 인원 상한과 재대조하지 않는다.
// 파트너가 이미 마감한 날짜(-1)는 복구하지 않는다.
func (s *ReservationSlot) ReleaseCapacity(date string, headCount int) {
	count, ok := s.Closed[date]
	if !ok || count == ClosedDate {
		return
	}
	s.Closed[date] = count + headCount
}

// SetDateClosed는 해당 날짜의 엔트리를 마감(-1) 또는 수동 지정 인원으로 덮어씁니다.
// 매장이 오픈하지 않은 날짜는 수정할 수 없다
func (s *ReservationSlot) SetDateClosed(date string, value int) error {
	if _, ok := s.Closed[date]; !ok {
		return ErrDateNotOpen
	}
	if value < 0 {
		value = ClosedDate
	}
	s.Closed[date] = value
	return nil
}

// RebuildDates는 매장의 예약 오픈 날짜가 변경될 때 날짜 맵을 다시 만듭니다.
// 기존에 열려있던 날짜는 잔여 인원을 유지하고, 새 날짜는 기본 인원으로 초기화한다.
// 제외된 날짜의 엔트리는 버린다 - 모든 오픈 날짜는 명시적 엔트리를 가진다.
func (s *ReservationSlot) RebuildDates(dates []string) {
	rebuilt := make(DateCountMap, len(dates))
	for _, date := range dates {
		if count, ok := s.Closed[date]; ok {
			rebuilt[date] = count
		} else {
			rebuilt[date] = s.Count
		}
	}
	s.Closed = rebuilt
}
