package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire format of calendar dates
const DateLayout = "2006-01-02"

// Date is a calendar date without a time component
type Date struct {
	time.Time
}

// NewDate builds a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// dateTimeLayouts are the timestamp forms a dob may arrive in: RFC 3339 from
// JavaScript clients, RFC 1123 from Flask's jsonify.
var dateTimeLayouts = []string{time.RFC3339, time.RFC1123, time.RFC1123Z}

// ParseDate accepts "2006-01-02" or one of dateTimeLayouts, keeping only the
// calendar date.
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return Date{Time: t}, nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return NewDate(y, m, d), nil
		}
	}
	return Date{}, fmt.Errorf("invalid date string: %s", s)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ErrorResponse is the backend failure envelope
type ErrorResponse struct {
	Errors []string `json:"errors"`
}

// UserEnvelope wraps a single user
type UserEnvelope struct {
	User *User `json:"user"`
}

// UsersEnvelope wraps a user list
type UsersEnvelope struct {
	Users []User `json:"users"`
}

// RolesEnvelope wraps the role list
type RolesEnvelope struct {
	UserRoles []Role `json:"user_roles"`
}

// RoleEnvelope wraps a single role
type RoleEnvelope struct {
	UserRole *Role `json:"user_role"`
}
