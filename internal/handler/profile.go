package handler

import (
	"errors"
	"net/http"
	"strings"

	"ecocare/internal/dto"
	"ecocare/internal/middleware"
	"ecocare/internal/repository"
	"ecocare/internal/validation"
)

func GetProfileHandler(users repository.UserRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := middleware.UserIDFromContext(r.Context())

		user, err := users.GetByID(r.Context(), userID)
		if errors.Is(err, repository.ErrNotFound) {
			respondMessage(w, http.StatusNotFound, "User not found")
			return
		}
		if err != nil {
			respondMessage(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, user)
	}
}

// UpdateProfileHandler changes the caller's name and/or email.
func UpdateProfileHandler(users repository.UserRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := middleware.UserIDFromContext(r.Context())

		var req dto.ProfileUpdate
		if err := decodeJSON(w, r, &req); err != nil {
			respondMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Name != nil {
			trimmed := strings.TrimSpace(*req.Name)
			if trimmed == "" {
				respondMessage(w, http.StatusBadRequest, "name must not be empty")
				return
			}
			req.Name = &trimmed
		}
		if err := validation.Struct(&req); err != nil {
			respondMessage(w, http.StatusBadRequest, err.Error())
			return
		}

		user, err := users.Update(r.Context(), userID, req.Name, req.Email)
		if errors.Is(err, repository.ErrNotFound) {
			respondMessage(w, http.StatusNotFound, "User not found")
			return
		}
		if err != nil {
			respondMessage(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, user)
	}
}
