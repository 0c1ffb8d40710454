package utils

import (
	"encoding/json"
	"net/http"
)

// RespondJSON 发送JSON响应
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(payload)
}

// RespondError 发送错误响应
func RespondError(w http.ResponseWriter, status int, message string) error {
	return RespondJSON(w, status, map[string]string{"error": message})
}

// RespondFieldErrors 发送表单字段校验失败的响应
func RespondFieldErrors(w http.ResponseWriter, status int, message string, fields map[string]string) error {
	return RespondJSON(w, status, map[string]any{
		"error":  message,
		"fields": fields,
	})
}
