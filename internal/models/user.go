package models

// UserRole represents the roles carried in identity tokens.
type UserRole string

const (
	RoleCitizen  UserRole = "CITIZEN"
	RoleOfficial UserRole = "OFFICIAL"
	RoleStaff    UserRole = "STAFF"
	RoleAdmin    UserRole = "ADMIN"
)

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
