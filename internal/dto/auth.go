package dto

import (
	"github.com/SscSPs/wallet_game_backend/internal/core/domain"
)

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email" example:"a@x.com"`
	Password string `json:"password" binding:"required" example:"secret1"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"a@x.com"`
	Password string `json:"password" binding:"required" example:"secret1"`
}

// GoogleLoginRequest carries the ID token obtained from the identity provider.
type GoogleLoginRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

// UserSummary is the minimal user view returned on registration.
type UserSummary struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// RegisterResponse represents the response for a successful registration.
type RegisterResponse struct {
	Message string      `json:"message"`
	User    UserSummary `json:"user"`
}

// LoginResponse represents the response for a successful login.
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	UserID      int64  `json:"userId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// AccessTokenResponse is returned by federated login and refresh.
type AccessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// MeResponse echoes the identity carried by the access token.
type MeResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

func ToRegisterResponse(user *domain.User) RegisterResponse {
	return RegisterResponse{
		Message: "User registered",
		User:    UserSummary{ID: user.UserID, Email: user.Email},
	}
}

func ToLoginResponse(session *domain.Session) LoginResponse {
	return LoginResponse{
		AccessToken: session.AccessToken.Value,
		UserID:      session.User.UserID,
		Email:       session.User.Email,
		DisplayName: session.User.DisplayNameOrEmail(),
	}
}

func ToMeResponse(identity domain.Identity) MeResponse {
	return MeResponse{ID: identity.UserID, Email: identity.Email}
}
