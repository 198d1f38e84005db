package dto

import "github.com/Hems566/eter-projectv1.0/internal/model"

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CreateUserRequest admin-only account creation.
type CreateUserRequest struct {
	Username   string     `json:"username"   binding:"required,min=3,max=150"`
	FullName   string     `json:"full_name"  binding:"required,max=150"`
	Email      string     `json:"email"      binding:"omitempty,email"`
	Phone      string     `json:"phone"      binding:"omitempty,max=20"`
	Password   string     `json:"password"   binding:"required,min=8,max=64"`
	Role       model.Role `json:"role"       binding:"required,oneof=ADMIN REQUESTER BUYER"`
	Department string     `json:"department" binding:"omitempty,oneof=DTX DEM DAL DAF"`
}

type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresIn   int          `json:"expires_in"`
	User        UserResponse `json:"user"`
}

type UserResponse struct {
	ID           string             `json:"id"`
	Username     string             `json:"username"`
	FullName     string             `json:"full_name"`
	Email        string             `json:"email"`
	Phone        string             `json:"phone"`
	Role         model.Role         `json:"role"`
	Department   string             `json:"department,omitempty"`
	Capabilities model.Capabilities `json:"capabilities"`
	CreatedAt    string             `json:"created_at"`
}
