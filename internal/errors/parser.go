package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo 에러 정보 구조
type ErrorInfo struct {
	Code    string // 에러 코드 (codes.go 참조)
	Message string // 사용자 친화적 메시지
}

// ParseError 에러를 파싱하여 사용자 친화적인 메시지와 코드로 변환
// 보안상 민감한 정보는 숨기되, 사용자가 문제를 해결할 수 있는 정보 제공
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "서버 오류가 발생했습니다",
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	// 1. GORM 기본 에러
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    getNotFoundCode(context),
			Message: getNotFoundMessage(context),
		}
	}

	// 2. PostgreSQL 에러 파싱

	// 2-1. Unique constraint violation (23505)
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStr)
	}

	// 2-2. Foreign key constraint violation (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		return ErrorInfo{
			Code:    getNotFoundCode(context),
			Message: "참조하는 데이터를 찾을 수 없습니다",
		}
	}

	// 2-3. Not null constraint violation (23502)
	if strings.Contains(errStrLower, "null value") && strings.Contains(errStrLower, "violates not-null constraint") {
		return ErrorInfo{
			Code:    ValidationRequired,
			Message: "필수 항목이 누락되었습니다",
		}
	}

	// 3. 네트워크/연결 에러
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalDatabaseError,
			Message: "데이터베이스 연결에 실패했습니다. 잠시 후 다시 시도해주세요",
		}
	}

	// 4. 기본 내부 서버 오류
	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

// parseDuplicateKeyError Unique constraint 위반 에러 파싱
func parseDuplicateKeyError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	// 매장명 중복
	if strings.Contains(errLower, "idx_stores_name") || strings.Contains(errLower, "stores") {
		return ErrorInfo{
			Code:    StoreDuplicateName,
			Message: "매장명은 중복일 수 없습니다",
		}
	}

	// 이메일 중복
	if strings.Contains(errLower, "email") || strings.Contains(errLower, "idx_users_email") {
		return ErrorInfo{
			Code:    AuthEmailAlreadyExists,
			Message: "이미 가입된 이메일입니다",
		}
	}

	// 예약 1건당 리뷰 1개
	if strings.Contains(errLower, "reservation_id") || strings.Contains(errLower, "reviews") {
		return ErrorInfo{
			Code:    ReviewAlreadyCreated,
			Message: "이미 리뷰를 작성하였습니다",
		}
	}

	// 기본 중복 메시지
	return ErrorInfo{
		Code:    ValidationInvalidInput,
		Message: "이미 존재하는 데이터입니다",
	}
}

// getNotFoundCode context에 따른 Not Found 코드
func getNotFoundCode(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "slot") || strings.Contains(contextLower, "타임"):
		return StoreSlotNotFound
	case strings.Contains(contextLower, "store") || strings.Contains(contextLower, "매장"):
		return StoreNotFound
	case strings.Contains(contextLower, "reservation") || strings.Contains(contextLower, "예약"):
		return ReservationNotFound
	case strings.Contains(contextLower, "review") || strings.Contains(contextLower, "리뷰"):
		return ReviewNotFound
	}
	return StoreNotFound
}

// getNotFoundMessage context에 따른 Not Found 메시지
func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "slot") || strings.Contains(contextLower, "타임"):
		return "매장 예약 상세정보가 존재하지 않습니다"
	case strings.Contains(contextLower, "store") || strings.Contains(contextLower, "매장"):
		return "매장이 존재하지 않습니다"
	case strings.Contains(contextLower, "reservation") || strings.Contains(contextLower, "예약"):
		return "예약 정보가 존재하지 않습니다"
	case strings.Contains(contextLower, "review") || strings.Contains(contextLower, "리뷰"):
		return "리뷰가 존재하지 않습니다"
	case strings.Contains(contextLower, "user") || strings.Contains(contextLower, "사용자"):
		return "일치하는 회원이 없습니다"
	}
	return "요청한 데이터를 찾을 수 없습니다"
}

// getDefaultErrorMessage context에 따른 기본 에러 메시지
func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "create") || strings.Contains(contextLower, "등록"):
		return "등록 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요"
	case strings.Contains(contextLower, "update") || strings.Contains(contextLower, "수정"):
		return "수정 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요"
	case strings.Contains(contextLower, "delete") || strings.Contains(contextLower, "삭제"):
		return "삭제 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요"
	}
	return "서버 오류가 발생했습니다. 잠시 후 다시 시도해주세요"
}

// ParseAndRespond 에러를 파싱하여 JSON 응답으로 전송
// c는 gin.Context이나 테스트 편의를 위해 인터페이스로 받음
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}
