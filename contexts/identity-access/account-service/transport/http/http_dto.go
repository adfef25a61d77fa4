package httptransport

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Name     string `json:"name" validate:"required,max=120"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string  `json:"token"`
	ExpiresAt string  `json:"expires_at"`
	User      UserDTO `json:"user"`
}

// UserDTO is the account as seen by its owner or an administrator.
type UserDTO struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Bio       string `json:"bio,omitempty"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// PublicProfileDTO omits contact details.
type PublicProfileDTO struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Bio       string `json:"bio,omitempty"`
	CreatedAt string `json:"created_at"`
}

type UpdateProfileRequest struct {
	Name *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Bio  *string `json:"bio,omitempty" validate:"omitempty,max=2000"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password,omitempty"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

type UpdateRoleRequest struct {
	Role   string `json:"role" validate:"required,oneof=user admin banned"`
	Reason string `json:"reason" validate:"max=500"`
}

type ListUsersRequest struct {
	Role  string
	Page  int
	Limit int
}

type ListUsersResponse struct {
	Users []UserDTO `json:"users"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
	Total int       `json:"total"`
}
