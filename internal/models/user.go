package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleSuperAdmin UserRole = "SUPER_ADMIN"
	RoleAdmin      UserRole = "ADMIN"
	RoleInstructor UserRole = "INSTRUCTOR"
	RoleStudent    UserRole = "STUDENT"
)

// JWTClaims represents the access-token payload minted by the identity
// service. This API only validates tokens, it never issues them.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
