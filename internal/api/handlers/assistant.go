package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rohits-web03/robotutor/internal/api/middleware"
	"github.com/rohits-web03/robotutor/internal/apperr"
	"github.com/rohits-web03/robotutor/internal/assistant"
	"github.com/rohits-web03/robotutor/internal/models"
	"github.com/rohits-web03/robotutor/internal/repositories"
	"github.com/rohits-web03/robotutor/internal/utils"
)

const defaultHistoryLimit = 20

type AssistantHandler struct {
	Gateway *assistant.Gateway
	Store   *repositories.Store
}

// POST /api/ask
// Ask godoc
// @Summary Ask the textbook assistant a question
// @Description Embeds the question, searches the vector index and returns a generated answer
// @Tags Assistant
// @Accept json
// @Produce json
// @Success 200 {object} utils.Payload
// @Failure 401 {object} utils.Payload
// @Failure 503 {object} utils.Payload
// @Router /api/ask [post]
func (h *AssistantHandler) Ask(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.JSONError(w, apperr.New(apperr.Unauthorized, "Not authenticated"))
		return
	}

	var input struct {
		Question     string `json:"question"`
		SelectedText string `json:"selected_text"`
		Language     string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Invalid input",
		})
		return
	}

	profile := h.profileFor(r, user)
	if input.Language == "" && profile != nil && profile.PreferredLanguage != "" {
		input.Language = profile.PreferredLanguage
	}

	result, err := h.Gateway.Ask(r.Context(), assistant.AskInput{
		UserID:       user.ID,
		Question:     input.Question,
		SelectedText: input.SelectedText,
		Language:     input.Language,
		Profile:      profile,
	})
	if err != nil {
		utils.JSONError(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "OK",
		Data:    result,
	})
}

// GET /api/chat/history
func (h *AssistantHandler) History(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.JSONError(w, apperr.New(apperr.Unauthorized, "Not authenticated"))
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	msgs, err := h.Store.ListRecentChatMessages(r.Context(), user.ID, limit)
	if err != nil {
		utils.JSONError(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "OK",
		Data:    map[string]any{"messages": msgs},
	})
}

// POST /api/personalize
func (h *AssistantHandler) Personalize(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.JSONError(w, apperr.New(apperr.Unauthorized, "Not authenticated"))
		return
	}

	var input struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Invalid input",
		})
		return
	}

	personalized, err := h.Gateway.Personalize(r.Context(), input.Content, h.profileFor(r, user))
	if err != nil {
		utils.JSONError(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "OK",
		Data:    map[string]any{"personalized_content": personalized},
	})
}

// POST /api/translate
func (h *AssistantHandler) Translate(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserFrom(r.Context()); !ok {
		utils.JSONError(w, apperr.New(apperr.Unauthorized, "Not authenticated"))
		return
	}

	var input struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Invalid input",
		})
		return
	}

	translated, err := h.Gateway.Translate(r.Context(), input.Content)
	if err != nil {
		utils.JSONError(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "OK",
		Data:    map[string]any{"translated_content": translated},
	})
}

// profileFor loads the user's profile; a missing profile degrades to nil
// rather than failing the request.
func (h *AssistantHandler) profileFor(r *http.Request, user *models.User) *models.UserProfile {
	profile, err := h.Store.GetProfile(r.Context(), user.ID)
	if err != nil {
		return nil
	}
	return profile
}
