package handler

import (
	"errors"
	"net/http"

	"ecocare/internal/dto"
	"ecocare/internal/logger"
	"ecocare/internal/service"
	"ecocare/internal/validation"
)

// AddDetectionHandler stores a new detection and triggers its live notification.
func AddDetectionHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.NewDetection
		if err := decodeJSON(w, r, &req); err != nil {
			respondMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}

		det, err := manager.RecordDetection(r.Context(), &req)
		if err != nil {
			var verr *validation.Error
			switch {
			case errors.Is(err, service.ErrMissingFields):
				respondMessage(w, http.StatusBadRequest, err.Error())
			case errors.As(err, &verr):
				respondJSON(w, http.StatusBadRequest, map[string]interface{}{
					"message": verr.Error(),
					"errors":  verr.Fields,
				})
			default:
				logger.Error().Err(err).Msg("failed to add detection")
				respondError(w, http.StatusInternalServerError, err)
			}
			return
		}

		respondJSON(w, http.StatusCreated, det)
	}
}
