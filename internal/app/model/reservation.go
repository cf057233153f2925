package model

import (
	"time"
)

type ReservationStatus string // 예약 상태 타입

const (
	ReservationPending      ReservationStatus = "PENDING"       // 파트너 승인 대기
	ReservationApproved     ReservationStatus = "APPROVED"      // 파트너 승인 완료
	ReservationRejected     ReservationStatus = "REJECTED"      // 파트너 거절
	ReservationStoreDeleted ReservationStatus = "STORE_DELETED" // 매장 삭제로 강제 종료
)

// Reservation 매장 예약.
// 취소 시 상태 전이 없이 레코드를 삭제하므로 소프트 삭제를 쓰지 않는다.
type Reservation struct {
	ID         uint              `gorm:"primarykey" json:"id"`
	CustomerID uint              `gorm:"not null;index" json:"customer_id"` // 예약 신청한 고객 ID
	Customer   User              `gorm:"foreignKey:CustomerID" json:"-"`    // 예약 신청한 고객
	StoreID    uint              `gorm:"not null;index" json:"store_id"`    // 예약 받는 매장 ID
	SlotID     uint              `gorm:"not null;index" json:"slot_id"`     // 예약한 타임 ID
	Slot       ReservationSlot   `gorm:"foreignKey:SlotID" json:"slot,omitempty"`
	Phone      string            `gorm:"type:varchar(30)" json:"phone"` // 고객 연락처
	Date       string            `gorm:"type:varchar(10);not null;index" json:"date"` // 예약 날짜 ("2006-01-02")
	HeadCount  int               `gorm:"not null" json:"head_count"`                  // 예약 인원
	Status     ReservationStatus `gorm:"type:varchar(20);default:'PENDING'" json:"status"`
	Visited    bool              `gorm:"default:false" json:"visited"` // 방문 확인 여부

	CreatedAt time.Time `json:"created_at"` // 생성 시각
	UpdatedAt time.Time `json:"updated_at"` // 수정 시각
}

func (Reservation) TableName() string {
	return "reservations"
}
