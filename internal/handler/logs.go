package handler

import (
	"net/http"
	"os"

	"ecocare/internal/logger"
)

// ShowLogsHandler serves the server log file as text/plain.
func ShowLogsHandler(log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := log.Path()
		if path == "" {
			respondMessage(w, http.StatusNotFound, "file logging is disabled")
			return
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			respondMessage(w, http.StatusNotFound, "Log file not found: "+logger.FileName)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(w, r, path)
	}
}

// ClearLogsHandler truncates the server log file.
func ClearLogsHandler(log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := log.CleanLogs(); err != nil {
			respondError(w, http.StatusInternalServerError, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
