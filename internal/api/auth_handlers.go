package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/example/restaurant-pos/internal/api/middleware"
	"github.com/example/restaurant-pos/internal/auth"
	"github.com/example/restaurant-pos/internal/domain/actor"
	"github.com/example/restaurant-pos/internal/domain/staff"
)

// AuthHandlers owns the login and staff-management endpoints.
type AuthHandlers struct {
	users      staff.Store
	jwtService *auth.JWTService
}

func NewAuthHandlers(users staff.Store, jwtService *auth.JWTService) *AuthHandlers {
	return &AuthHandlers{users: users, jwtService: jwtService}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func userResponse(u *staff.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Name: u.Name, Role: string(u.Role)}
}

// Register creates a staff account. Only admins can call it.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Name == "" {
		respondJSONError(w, "Email and name are required", http.StatusBadRequest)
		return
	}

	role := actor.Role(req.Role)
	if !role.Valid() {
		respondJSONError(w, "Unknown role", http.StatusBadRequest)
		return
	}

	if _, exists, err := h.users.GetByEmail(r.Context(), req.Email); err != nil {
		respondJSONError(w, "Failed to check existing users", http.StatusInternalServerError)
		return
	} else if exists {
		respondJSONError(w, "Email already registered", http.StatusConflict)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) {
			respondJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		respondJSONError(w, "Failed to hash password", http.StatusInternalServerError)
		return
	}

	user := &staff.User{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := h.users.Create(r.Context(), user); err != nil {
		respondJSONError(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, userResponse(user))
}

// Login authenticates a staff member and sets the access token cookie.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, found, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		respondJSONError(w, "Failed to look up user", http.StatusInternalServerError)
		return
	}
	if !found || !auth.CheckPassword(req.Password, user.PasswordHash) {
		respondJSONError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	token, expiresAt, err := h.jwtService.GenerateToken(user.ID, user.Name, user.Role)
	if err != nil {
		respondJSONError(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	respondJSON(w, http.StatusOK, AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      userResponse(user),
	})
}

// Me returns the authenticated staff member.
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	act, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respondJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	user, found, err := h.users.Get(r.Context(), act.ID)
	if err != nil || !found {
		respondJSONError(w, "User not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, userResponse(user))
}

// ListStaff returns every staff account. Admin only.
func (h *AuthHandlers) ListStaff(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		respondJSONError(w, "Failed to list users", http.StatusInternalServerError)
		return
	}

	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse(u))
	}
	respondJSON(w, http.StatusOK, out)
}
