package model

// User is a patient or staff record.
//
// MedicalStaff and Patients describe the same relation from opposite sides but
// are fetched and saved independently; the client never mirrors one into the other.
type User struct {
	UserID       int    `json:"user_id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	DOB          Date   `json:"dob"`
	Roles        []Role `json:"roles"`
	MedicalStaff []User `json:"medical_staff"`
	Patients     []User `json:"patients"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// HasRole reports whether the user holds a role with the given name.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.RoleName == name {
			return true
		}
	}
	return false
}

// UserIDs projects a user list onto identifiers, preserving order.
func UserIDs(users []User) []int {
	ids := make([]int, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.UserID)
	}
	return ids
}

// UpdateUserRequest is the body of POST /users/{user_id}: the complete record
// plus identifier-only projections of its relationship lists.
type UpdateUserRequest struct {
	User
	MedicalStaffIDs []int `json:"medical_staff_ids"`
	PatientIDs      []int `json:"patient_ids"`
	RoleIDs         []int `json:"role_ids"`
}

// NewUpdateUserRequest derives the projections from u.
func NewUpdateUserRequest(u *User) *UpdateUserRequest {
	return &UpdateUserRequest{
		User:            *u,
		MedicalStaffIDs: UserIDs(u.MedicalStaff),
		PatientIDs:      UserIDs(u.Patients),
		RoleIDs:         RoleIDs(u.Roles),
	}
}
