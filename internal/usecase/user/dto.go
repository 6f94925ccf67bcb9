package user

import (
	"time"

	"product-catalog/internal/auth"
	domainUser "product-catalog/internal/domain/user"
)

type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (r *LoginRequest) Lookup(field string) (any, bool) {
	switch field {
	case "email":
		return r.Email, true
	case "password":
		return r.Password, true
	}
	return nil, false
}

type RegisterRequest struct {
	Name                 string `json:"name" form:"name"`
	Email                string `json:"email" form:"email"`
	Password             string `json:"password" form:"password"`
	PasswordConfirmation string `json:"password_confirmation" form:"password_confirmation"`
}

func (r *RegisterRequest) Lookup(field string) (any, bool) {
	switch field {
	case "name":
		return r.Name, true
	case "email":
		return r.Email, true
	case "password":
		return r.Password, true
	case "password_confirmation":
		return r.PasswordConfirmation, true
	}
	return nil, false
}

type ForgotPasswordRequest struct {
	Email string `json:"email" form:"email"`
}

func (r *ForgotPasswordRequest) Lookup(field string) (any, bool) {
	if field == "email" {
		return r.Email, true
	}
	return nil, false
}

type ResetPasswordRequest struct {
	Email                string `json:"email" form:"email"`
	Token                string `json:"token" form:"token"`
	Password             string `json:"password" form:"password"`
	PasswordConfirmation string `json:"password_confirmation" form:"password_confirmation"`
}

func (r *ResetPasswordRequest) Lookup(field string) (any, bool) {
	switch field {
	case "email":
		return r.Email, true
	case "token":
		return r.Token, true
	case "password":
		return r.Password, true
	case "password_confirmation":
		return r.PasswordConfirmation, true
	}
	return nil, false
}

type UserResponse struct {
	ID        int64     `json:"id,string"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuthPayload is returned by login and registration.
type AuthPayload struct {
	User  *UserResponse   `json:"user"`
	Token *auth.TokenInfo `json:"token"`
}

func ToUserResponse(u *domainUser.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
