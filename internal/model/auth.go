package model

import "github.com/golang-jwt/jwt/v5"

// LoginRequest is the admin login payload
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the admin token
type LoginResponse struct {
	Token   string `json:"token"`
	AdminID string `json:"adminId"`
}

// AdminClaims are JWT claims for framework administrators
type AdminClaims struct {
	AdminID string `json:"adminId"`
	jwt.RegisteredClaims
}

// RespondentClaims are JWT claims scoped to one assessment run
type RespondentClaims struct {
	AssessmentID string `json:"assessmentId"`
	RespondentID string `json:"respondentId"`
	jwt.RegisteredClaims
}
