package handler

import "net/http"

func Health(w http.ResponseWriter, _ *http.Request) {
	RespondSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}
