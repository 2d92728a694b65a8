package errors

// 에러 코드 상수 정의
// 형식: CATEGORY_SPECIFIC_DETAIL
// 위젯/관리자 화면에서 이 코드를 기반으로 메시지를 매핑함

const (
	// ==================== 인증 (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // 로그인 필요
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // 잘못된 이름/비밀번호
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"       // 토큰 만료
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"       // 잘못된 토큰
	AuthAdminKeyInvalid    = "AUTH_ADMIN_KEY_INVALID"   // 관리자 키 불일치
	AuthAdminKeyNotSet     = "AUTH_ADMIN_KEY_NOT_SET"   // 관리자 키 미설정

	// ==================== 인가/권한 (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"      // 접근 권한 없음
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND" // 권한 정보 없음
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"     // 관리자만 가능
	AuthzBlocked      = "AUTHZ_BLOCKED"        // 차단된 IP/이메일
	AuthzDomain       = "AUTHZ_DOMAIN"         // 허용되지 않은 도메인
	AuthzFeatureOff   = "AUTHZ_FEATURE_OFF"    // 비활성화된 기능

	// ==================== 검증 (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"  // 잘못된 입력
	ValidationInvalidID     = "VALIDATION_INVALID_ID"     // 잘못된 ID
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT" // 잘못된 형식
	ValidationInvalidEmail  = "VALIDATION_INVALID_EMAIL"  // 잘못된 이메일
	ValidationRequired      = "VALIDATION_REQUIRED"       // 필수 항목

	// ==================== 리소스 (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"      // 리소스 없음
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS" // 이미 존재
	ResourceConflict      = "RESOURCE_CONFLICT"       // 충돌

	// ==================== 댓글 (COMMENT_) ====================
	CommentNotFound     = "COMMENT_NOT_FOUND"     // 댓글 없음
	CommentRateLimited  = "COMMENT_RATE_LIMITED"  // 작성 빈도 초과
	CommentImportFailed = "COMMENT_IMPORT_FAILED" // 가져오기 실패

	// ==================== 메일 (MAIL_) ====================
	MailNotConfigured = "MAIL_NOT_CONFIGURED" // SMTP 미설정
	MailSendFailed    = "MAIL_SEND_FAILED"    // 발송 실패

	// ==================== 외부 연동 (INTEGRATION_) ====================
	IntegrationNotConfigured = "INTEGRATION_NOT_CONFIGURED" // 봇/스토리지 미설정

	// ==================== 내부 오류 (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"   // 서버 오류
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR" // DB 오류
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"   // 외부 API 오류
	InternalConfigError   = "INTERNAL_CONFIG_ERROR"   // 설정 오류
)
