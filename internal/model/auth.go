package model

import "go.mongodb.org/mongo-driver/bson/primitive"

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type SignupRequest struct {
	Name          string `json:"name" binding:"required,max=100"`
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,min=8"`
	Role          string `json:"role" binding:"required"`
	Age           int    `json:"age" binding:"omitempty,min=1,max=120"`
	Gender        string `json:"gender" binding:"omitempty,oneof=male female other"`
	ContactNumber string `json:"contact_number" binding:"omitempty,phone"`
	BloodGroup    string `json:"blood_group" binding:"omitempty,max=5"`
	Address       string `json:"address" binding:"omitempty,max=500"`
}

type SignupResponse struct {
	ID string `json:"id"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// AuthenticatedUser is the identity attached to the request context after the
// auth middleware re-resolves the token subject from storage.
type AuthenticatedUser struct {
	ID    primitive.ObjectID
	Email string
	Role  Role
	Name  string
}
