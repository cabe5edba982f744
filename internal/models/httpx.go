package models

import (
	"encoding/json"
	"net/http"
)

// Фиксированные тела ошибок аутентификации/авторизации (контракт API).
const (
	MsgUnauthenticated = "Please authenticate"
	MsgForbidden       = "Insufficient permissions"
)

type ErrorBody struct {
	Error string `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, ErrorBody{Error: msg})
}

func WriteUnauthenticated(w http.ResponseWriter) {
	WriteError(w, http.StatusUnauthorized, MsgUnauthenticated)
}

func WriteForbidden(w http.ResponseWriter) {
	WriteError(w, http.StatusForbidden, MsgForbidden)
}
