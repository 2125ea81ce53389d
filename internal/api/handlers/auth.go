package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/rohits-web03/robotutor/internal/api/middleware"
	"github.com/rohits-web03/robotutor/internal/api/services"
	"github.com/rohits-web03/robotutor/internal/apperr"
	"github.com/rohits-web03/robotutor/internal/auth"
	"github.com/rohits-web03/robotutor/internal/models"
	"github.com/rohits-web03/robotutor/internal/repositories"
	"github.com/rohits-web03/robotutor/internal/utils"
)

const avatarUploadExpiry = 15 * time.Minute

type AuthHandler struct {
	Sessions    *auth.SessionManager
	Store       *repositories.Store
	Google      *services.GoogleOAuth       // nil when OAuth is not configured
	Avatars     *repositories.AvatarStorage // nil when R2 is not configured
	FrontendURL string
	Environment string
	SessionTTL  time.Duration
}

type userSummary struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
}

func summarize(u *models.User) userSummary {
	return userSummary{ID: u.ID, Email: u.Email, Name: u.Name}
}

// POST /api/auth/signup
// Signup godoc
// @Summary Register a new user
// @Description Creates the user with its profile atomically and returns a session token
// @Tags Auth
// @Accept json
// @Produce json
// @Success 201 {object} utils.Payload
// @Failure 409 {object} utils.Payload
// @Router /api/auth/signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email              string `json:"email"`
		Name               string `json:"name"`
		Password           string `json:"password"`
		SoftwareBackground string `json:"software_background"`
		HardwareBackground string `json:"hardware_background"`
		OperatingSystem    string `json:"operating_system"`
		GPUHardware        string `json:"gpu_hardware"`
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Invalid input",
		})
		return
	}

	token, user, err := h.Sessions.Signup(r.Context(), auth.SignupInput{
		Email:              input.Email,
		Name:               input.Name,
		Password:           input.Password,
		SoftwareBackground: input.SoftwareBackground,
		HardwareBackground: input.HardwareBackground,
		OperatingSystem:    input.OperatingSystem,
		GPUHardware:        input.GPUHardware,
	})
	if err != nil {
		utils.JSONError(w, err)
		return
	}

	h.setSessionCookie(w, token)
	utils.JSONResponse(w, http.StatusCreated, utils.Payload{
		Success: true,
		Message: "User registered successfully",
		Data: map[string]any{
			"session_token": token,
			"user":          summarize(user),
		},
	})
}

// POST /api/auth/signin
// Signin godoc
// @Summary Sign in with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} utils.Payload
// @Failure 401 {object} utils.Payload
// @Router /api/auth/signin [post]
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Invalid input",
		})
		return
	}

	token, user, err := h.Sessions.Signin(r.Context(), input.Email, input.Password)
	if err != nil {
		utils.JSONError(w, err)
		return
	}

	h.setSessionCookie(w, token)
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Signin successful",
		Data: map[string]any{
			"session_token": token,
			"user":          summarize(user),
		},
	})
}

// POST /api/auth/signout
func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Signout(r.Context(), middleware.BearerToken(r)); err != nil {
		utils.JSONError(w, err)
		return
	}

	h.clearSessionCookie(w)
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Signed out successfully",
	})
}

// GET /api/auth/me
// Me godoc
// @Summary Current user with profile
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.Payload
// @Failure 401 {object} utils.Payload
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.JSONError(w, apperr.New(apperr.Unauthorized, "Not authenticated"))
		return
	}

	profile, err := h.Store.GetProfile(r.Context(), user.ID)
	if err != nil && apperr.KindOf(err) != apperr.NotFound {
		utils.JSONError(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "OK",
		Data: map[string]any{
			"id":      user.ID,
			"email":   user.Email,
			"name":    user.Name,
			"image":   user.Image,
			"profile": profile,
		},
	})
}

// PUT /api/auth/profile
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.JSONError(w, apperr.New(apperr.Unauthorized, "Not authenticated"))
		return
	}

	var input struct {
		SoftwareBackground string `json:"software_background"`
		HardwareBackground string `json:"hardware_background"`
		OperatingSystem    string `json:"operating_system"`
		GPUHardware        string `json:"gpu_hardware"`
		ExperienceLevel    string `json:"experience_level"`
		PreferredLanguage  string `json:"preferred_language"`
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Invalid input",
		})
		return
	}

	if input.ExperienceLevel == "" {
		input.ExperienceLevel = "beginner"
	}
	if input.PreferredLanguage == "" {
		input.PreferredLanguage = "en"
	}

	err := h.Store.UpdateProfile(r.Context(), &models.UserProfile{
		UserID:             user.ID,
		SoftwareBackground: input.SoftwareBackground,
		HardwareBackground: input.HardwareBackground,
		OperatingSystem:    input.OperatingSystem,
		GPUHardware:        input.GPUHardware,
		ExperienceLevel:    input.ExperienceLevel,
		PreferredLanguage:  input.PreferredLanguage,
	})
	if err != nil {
		utils.JSONError(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Profile updated successfully",
	})
}

// DELETE /api/auth/me
// Deleting the user cascades to sessions, accounts, profile and chat
// history at the database level.
func (h *AuthHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.JSONError(w, apperr.New(apperr.Unauthorized, "Not authenticated"))
		return
	}

	if err := h.Store.DeleteUser(r.Context(), user.ID); err != nil {
		utils.JSONError(w, err)
		return
	}

	h.clearSessionCookie(w)
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Account deleted",
	})
}

// GET /api/auth/google/login
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.Google == nil {
		utils.JSONError(w, apperr.New(apperr.ServiceUnavailable, "Google signin is not configured"))
		return
	}

	state, err := GenerateState(map[string]string{"flow": "signin"})
	if err != nil {
		utils.JSONError(w, apperr.Wrap(apperr.Internal, "Failed to generate OAuth state", err))
		return
	}

	http.Redirect(w, r, h.Google.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// GET /api/auth/google/callback
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.Google == nil {
		utils.JSONError(w, apperr.New(apperr.ServiceUnavailable, "Google signin is not configured"))
		return
	}

	if _, err := DecodeState(r.FormValue("state")); err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Invalid OAuth state",
		})
		return
	}

	googleUser, err := h.Google.Exchange(r.Context(), r.FormValue("code"))
	if err != nil {
		log.Println("Google exchange error:", err)
		utils.JSONError(w, apperr.Wrap(apperr.ServiceUnavailable, "Google signin failed", err))
		return
	}

	token, _, err := h.Sessions.SigninOAuth(r.Context(), "google", googleUser.ID, googleUser.Email, googleUser.Name, googleUser.Picture)
	if err != nil {
		utils.JSONError(w, err)
		return
	}

	h.setSessionCookie(w, token)
	http.Redirect(w, r, h.FrontendURL+"/?status=signin_success", http.StatusTemporaryRedirect)
}

// POST /api/auth/avatar/presign
func (h *AuthHandler) PresignAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.JSONError(w, apperr.New(apperr.Unauthorized, "Not authenticated"))
		return
	}
	if h.Avatars == nil {
		utils.JSONError(w, apperr.New(apperr.ServiceUnavailable, "Avatar storage is not configured"))
		return
	}

	key := fmt.Sprintf("avatars/%s/%s", user.ID, uuid.New())
	uploadURL, err := h.Avatars.PresignAvatarUpload(r.Context(), key, avatarUploadExpiry)
	if err != nil {
		utils.JSONError(w, apperr.Wrap(apperr.ServiceUnavailable, "Failed to presign avatar upload", err))
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Avatar upload URL created",
		Data: map[string]any{
			"upload_url": uploadURL,
			"key":        key,
			"expires_in": avatarUploadExpiry.String(),
		},
	})
}

// POST /api/auth/avatar/complete
func (h *AuthHandler) CompleteAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.JSONError(w, apperr.New(apperr.Unauthorized, "Not authenticated"))
		return
	}
	if h.Avatars == nil {
		utils.JSONError(w, apperr.New(apperr.ServiceUnavailable, "Avatar storage is not configured"))
		return
	}

	var input struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Key == "" {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Invalid input",
		})
		return
	}

	exists, err := h.Avatars.VerifyAvatarExists(r.Context(), input.Key)
	if err != nil {
		utils.JSONError(w, apperr.Wrap(apperr.ServiceUnavailable, "Failed to verify avatar upload", err))
		return
	}
	if !exists {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Avatar object was not uploaded",
		})
		return
	}

	imageURL := h.Avatars.PublicURL(input.Key)
	if err := h.Store.UpdateUserImage(r.Context(), user.ID, imageURL); err != nil {
		utils.JSONError(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Avatar updated",
		Data:    map[string]any{"image": imageURL},
	})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	isProd := h.Environment == "production"

	sameSite := http.SameSiteLaxMode
	if isProd {
		sameSite = http.SameSiteNoneMode
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "session_token",
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.SessionTTL.Seconds()),
		Secure:   isProd,
		HttpOnly: true,
		SameSite: sameSite,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   h.Environment == "production",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
