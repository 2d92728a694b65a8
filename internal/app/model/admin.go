package model

// AdminRole 관리자 토큰에 기록되는 역할
const AdminRole = "admin"

// AdminLoginRequest 관리자 로그인 요청
type AdminLoginRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLoginResponse 관리자 로그인 응답
type AdminLoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"` // unix ms
}
