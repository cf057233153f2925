package service

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockForUpdate 동시 승인/취소가 같은 타임의 날짜별 잔여 인원을 덮어쓰지 않도록
// 행 잠금을 적용한다. sqlite(테스트용)는 SELECT ... FOR UPDATE를 지원하지 않으므로
// postgres에서만 잠금 절을 붙인다.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
