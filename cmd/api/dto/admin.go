package dto

import "time"

type AdminDTO struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	AddedBy   string    `json:"added_by"`
	CreatedAt time.Time `json:"created_at"`
}

// AddAdminRequestDTO 는 관리자 등록 요청이다.
type AddAdminRequestDTO struct {
	UID   string `json:"uid" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}
