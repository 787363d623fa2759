package handler

import (
	"net/http"

	"ecocare/internal/model"
	"ecocare/internal/service/analytics"
)

func rangeParam(r *http.Request) model.Range {
	return model.Range(r.URL.Query().Get("range"))
}

// GetRecentHandler returns the newest detections in the range.
func GetRecentHandler(svc *analytics.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := svc.Recent(r.Context(), rangeParam(r))
		if err != nil {
			respondError(w, http.StatusInternalServerError, err)
			return
		}
		respondJSON(w, http.StatusOK, data)
	}
}

// GetHistoryHandler searches all detections by type and free text.
func GetHistoryHandler(svc *analytics.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		data, err := svc.History(r.Context(), q.Get("type"), q.Get("search"))
		if err != nil {
			respondError(w, http.StatusInternalServerError, err)
			return
		}
		respondJSON(w, http.StatusOK, data)
	}
}

func GetTopMaterialsHandler(svc *analytics.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := svc.TopMaterials(r.Context(), rangeParam(r))
		if err != nil {
			respondError(w, http.StatusInternalServerError, err)
			return
		}
		respondJSON(w, http.StatusOK, data)
	}
}

func GetStatsHandler(svc *analytics.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := svc.Stats(r.Context(), rangeParam(r))
		if err != nil {
			respondError(w, http.StatusInternalServerError, err)
			return
		}
		respondJSON(w, http.StatusOK, data)
	}
}

func GetAlertsHandler(svc *analytics.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := svc.Alerts(r.Context(), rangeParam(r))
		if err != nil {
			respondError(w, http.StatusInternalServerError, err)
			return
		}
		respondJSON(w, http.StatusOK, data)
	}
}

func GetAccuracyHandler(svc *analytics.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := svc.AccuracyTrend(r.Context(), rangeParam(r))
		if err != nil {
			respondError(w, http.StatusInternalServerError, err)
			return
		}
		respondJSON(w, http.StatusOK, data)
	}
}

func GetTimelineHandler(svc *analytics.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := svc.Timeline(r.Context(), rangeParam(r))
		if err != nil {
			respondError(w, http.StatusInternalServerError, err)
			return
		}
		respondJSON(w, http.StatusOK, data)
	}
}
