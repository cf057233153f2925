package model

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string // 사용자 권한 타입

const (
	RoleCustomer UserRole = "customer" // 예약 고객 권한
	RolePartner  UserRole = "partner"  // 매장 파트너(점주) 권한
)

type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`                            // 사용자 ID
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`               // 이메일
	PasswordHash string         `gorm:"not null" json:"-"`                               // 비밀번호 해시
	Name         string         `gorm:"not null" json:"name"`                            // 이름
	Phone        string         `json:"phone"`                                           // 전화번호 (숫자만, 예: 01012345678)
	Role         UserRole       `gorm:"type:varchar(20);default:'customer'" json:"role"` // 권한
	CreatedAt    time.Time      `json:"created_at"`                                      // 생성 시각
	UpdatedAt    time.Time      `json:"updated_at"`                                      // 수정 시각
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                  // 삭제 시각(소프트 삭제)

	Stores []Store `gorm:"foreignKey:PartnerID" json:"stores,omitempty"` // 소유 매장 목록 (파트너용)
}

func (User) TableName() string {
	return "users"
}
