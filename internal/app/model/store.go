package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

// DateList는 매장의 예약 오픈 날짜 목록("2006-01-02" 형식)을 JSON 배열로 저장하기 위한 커스텀 타입
type DateList []string

// Value는 database/sql/driver.Valuer 인터페이스 구현
func (d DateList) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

// Scan은 database/sql.Scanner 인터페이스 구현
func (d *DateList) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan DateList")
	}

	return json.Unmarshal(bytes, d)
}

const (
	// DateLayout 예약 날짜 형식
	DateLayout = "2006-01-02"
	// TimeLayout 매장 운영시간/예약 타임 형식
	TimeLayout = "15:04"
)

// MaxRating 리뷰 별점 상한 (5점 만점)
const MaxRating = 5.0

// ErrOverRatingLimit 별점이 상한을 초과한 경우
var ErrOverRatingLimit = errors.New("별점은 최대 5점까지 가능합니다")

type Store struct {
	ID          uint     `gorm:"primarykey" json:"id"`                // 고유 매장 ID
	PartnerID   uint     `gorm:"not null;index" json:"partner_id"`    // 매장 소유 파트너 ID
	Partner     User     `gorm:"foreignKey:PartnerID" json:"-"`       // 매장 소유자
	Name        string   `gorm:"uniqueIndex;not null" json:"name"`    // 매장명 (전역 유일, 대소문자 구분)
	Description string   `gorm:"type:text" json:"description"`        // 매장 소개
	Address     string   `gorm:"type:text" json:"address"`            // 상세 주소
	Latitude    *float64 `gorm:"type:decimal(10,8)" json:"latitude"`  // 위도 (WGS84)
	Longitude   *float64 `gorm:"type:decimal(11,8)" json:"longitude"` // 경도 (WGS84)
	OpenAt      string   `gorm:"type:varchar(10)" json:"open_at"`     // 오픈 시간 (예: "09:00")
	CloseAt     string   `gorm:"type:varchar(10)" json:"close_at"`    // 마감 시간 (예: "21:00")
	Dates       DateList `gorm:"type:jsonb" json:"dates"`             // 예약 오픈 날짜 목록

	// 리뷰 별점 집계 - 리뷰 생성/수정/삭제 시 O(1)로 유지, 전체 재계산 금지
	ReviewSum   float64 `gorm:"default:0" json:"review_sum"`   // 별점 합
	ReviewCount int64   `gorm:"default:0" json:"review_count"` // 리뷰 개수
	Rating      float64 `gorm:"default:0" json:"rating"`       // 평균 별점 (ReviewSum / ReviewCount)

	CreatedAt time.Time      `json:"created_at"`     // 생성 시각
	UpdatedAt time.Time      `json:"updated_at"`     // 수정 시각
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"` // 삭제 시각(소프트 삭제)

	Slots []ReservationSlot `gorm:"foreignKey:StoreID" json:"slots,omitempty"` // 매장의 예약 타임 목록
}

func (Store) TableName() string {
	return "stores"
}

// HasDate는 해당 날짜가 예약 오픈된 날짜인지 확인합니다
func (s *Store) HasDate(date string) bool {
	for _, d := range s.Dates {
		if d == date {
			return true
		}
	}
	return false
}

// ApplyRating은 리뷰 생성 시 별점 집계에 새 별점을 반영합니다
func (s *Store) ApplyRating(rating float64) error {
	if rating > MaxRating {
		return ErrOverRatingLimit
	}
	s.ReviewSum += rating
	s.ReviewCount++
	s.refreshRating()
	return nil
}

// ReplaceRating은 리뷰 수정 시 기존 별점을 새 별점으로 교체합니다 (개수 불변)
func (s *Store) ReplaceRating(oldRating, newRating float64) error {
	if newRating > MaxRating {
		return ErrOverRatingLimit
	}
	s.ReviewSum += newRating - oldRating
	s.refreshRating()
	return nil
}

// RemoveRating은 리뷰 삭제 시 별점 집계에서 별점을 제거합니다
func (s *Store) RemoveRating(rating float64) {
	s.ReviewSum -= rating
	s.ReviewCount--
	if s.ReviewCount < 0 {
		s.ReviewCount = 0
		s.ReviewSum = 0
	}
	s.refreshRating()
}

// refreshRating은 집계값으로 평균 별점을 다시 계산합니다 (0으로 나누기 방지)
func (s *Store) refreshRating() {
	if s.ReviewCount == 0 {
		s.Rating = 0
		return
	}
	s.Rating = s.ReviewSum / float64(s.ReviewCount)
}
