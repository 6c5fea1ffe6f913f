package model

// LoginRequest is the body of POST /users/login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the body of POST /users
type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	DOB       Date   `json:"dob" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	RoleIDs   []int  `json:"role_ids" validate:"required,min=1"`
}

// CreateRoleRequest is the body of POST /users/roles
type CreateRoleRequest struct {
	RoleName string `json:"role_name" validate:"required"`
}
