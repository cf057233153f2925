package errors

// 에러 코드 상수 정의
// 형식: CATEGORY_SPECIFIC_DETAIL
// 프론트엔드에서 이 코드를 기반으로 메시지를 매핑함

const (
	// ==================== 인증 (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // 로그인 필요
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // 잘못된 이메일/비밀번호
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"       // 토큰 만료
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"       // 잘못된 토큰
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"       // 토큰 폐기됨
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"        // 이메일 중복

	// ==================== 인가/권한 (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"      // 접근 권한 없음
	AuthzPartnerOnly  = "AUTHZ_PARTNER_ONLY"   // 파트너만 가능
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND" // 컨텍스트에 권한 정보 없음

	// ==================== 검증 (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"  // 잘못된 입력
	ValidationInvalidID     = "VALIDATION_INVALID_ID"     // 잘못된 ID
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT" // 잘못된 형식
	ValidationRequired      = "VALIDATION_REQUIRED"       // 필수 항목

	// ==================== 매장 (STORE_) ====================
	StoreNotFound             = "STORE_NOT_FOUND"              // 매장 없음
	StoreDuplicateName        = "STORE_DUPLICATE_NAME"         // 매장명 중복
	StoreCheckHours           = "STORE_CHECK_HOURS"            // 운영시간 오류 (오픈 >= 마감)
	StoreCheckSlotTime        = "STORE_CHECK_SLOT_TIME"        // 예약 타임 시간 오류
	StoreAlreadyDeleted       = "STORE_ALREADY_DELETED"        // 이미 삭제된 매장
	StoreUnmatchedPartner     = "STORE_UNMATCHED_PARTNER"      // 매장-파트너 불일치
	StoreStillHaveReservation = "STORE_STILL_HAVE_RESERVATION" // 예약이 남아있어 수정/삭제 불가
	StoreDateNotOpen          = "STORE_DATE_NOT_OPEN"          // 오픈하지 않은 날짜
	StoreSlotNotFound         = "STORE_SLOT_NOT_FOUND"         // 예약 타임 없음

	// ==================== 예약 (RESERVATION_) ====================
	ReservationNotFound          = "RESERVATION_NOT_FOUND"           // 예약 없음
	ReservationCannotReserveDate = "RESERVATION_CANNOT_RESERVE_DATE" // 예약 불가 날짜
	ReservationClosed            = "RESERVATION_CLOSED"              // 예약 마감
	ReservationDuplicate         = "RESERVATION_DUPLICATE"           // 중복 예약
	ReservationAlreadyDecided    = "RESERVATION_ALREADY_DECIDED"     // 이미 승인/거절됨
	ReservationBelowMinCapacity  = "RESERVATION_BELOW_MIN_CAPACITY"  // 최소 인원 미달
	ReservationOverMaxCapacity   = "RESERVATION_OVER_MAX_CAPACITY"   // 최대 인원 초과
	ReservationOverCapacity      = "RESERVATION_OVER_CAPACITY"       // 잔여 인원 초과
	ReservationUnmatchedCustomer = "RESERVATION_UNMATCHED_CUSTOMER"  // 예약-고객 불일치
	ReservationNotDecided        = "RESERVATION_NOT_DECIDED"         // 승인되지 않은 예약
	ReservationNotToday          = "RESERVATION_NOT_TODAY"           // 예약한 날이 아님
	ReservationTooEarly          = "RESERVATION_TOO_EARLY"           // 방문 확인 가능 시간 전
	ReservationTimePassed        = "RESERVATION_TIME_PASSED"         // 예약 시간 지남

	// ==================== 리뷰 (REVIEW_) ====================
	ReviewNotFound        = "REVIEW_NOT_FOUND"         // 리뷰 없음
	ReviewVisitRequired   = "REVIEW_VISIT_REQUIRED"    // 방문하지 않은 예약
	ReviewOverRatingLimit = "REVIEW_OVER_RATING_LIMIT" // 별점 상한 초과
	ReviewAlreadyCreated  = "REVIEW_ALREADY_CREATED"   // 이미 리뷰 작성함
	ReviewUnmatchedWriter = "REVIEW_UNMATCHED_WRITER"  // 작성자/파트너 불일치

	// ==================== 내부 오류 (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"   // 서버 오류
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR" // DB 오류
	InternalConfigError   = "INTERNAL_CONFIG_ERROR"   // 설정 오류
)
