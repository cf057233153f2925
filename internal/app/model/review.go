package model

import (
	"time"
)

// Review 매장 방문 리뷰. 예약 1건당 1개만 작성할 수 있다.
// 삭제 시 별점 집계에서 먼저 제거해야 하므로 하드 삭제를 쓴다.
type Review struct {
	ID            uint        `gorm:"primarykey" json:"id"`
	CustomerID    uint        `gorm:"not null;index" json:"customer_id"` // 작성한 고객 ID
	Customer      User        `gorm:"foreignKey:CustomerID" json:"-"`
	StoreID       uint        `gorm:"not null;index" json:"store_id"`   // 리뷰 대상 매장 ID
	PartnerID     uint        `gorm:"not null;index" json:"partner_id"` // 매장 파트너 ID (타임에서 역정규화)
	ReservationID uint        `gorm:"not null;uniqueIndex" json:"reservation_id"` // 리뷰 대상 예약 ID (1:1)
	Reservation   Reservation `gorm:"foreignKey:ReservationID" json:"-"`
	Rating        float64     `gorm:"not null" json:"rating"`            // 별점 (0~5)
	Comment       string      `gorm:"type:text;not null" json:"comment"` // 리뷰 내용

	CreatedAt time.Time `json:"created_at"` // 생성 시각
	UpdatedAt time.Time `json:"updated_at"` // 수정 시각
}

func (Review) TableName() string {
	return "reviews"
}
