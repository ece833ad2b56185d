package models

// UserRole represents the marketplace roles a user can hold.
type UserRole string

const (
	RoleTutor UserRole = "TUTOR"
	RoleTutee UserRole = "TUTEE"
	RoleBoth  UserRole = "BOTH"
)

// CanTutor reports whether the role may apply to tutoring requests.
func (r UserRole) CanTutor() bool {
	return r == RoleTutor || r == RoleBoth
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
