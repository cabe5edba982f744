package middleware

import (
	"net/http"
	"runtime/debug"

	"keel/internal/logs"
	"keel/internal/models"
)

// Recoverer перехватывает панику в обработчике, пишет лог со стеком
// и возвращает 500 в едином JSON-формате.
func Recoverer(devMode bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					reqid := GetRequestID(r)
					logs.Logger.Errorf("panic: %v reqid=%s uri=%s method=%s\nstack:\n%s",
						rec, reqid, r.RequestURI, r.Method, string(debug.Stack()))
					msg := "internal server error"
					if devMode {
						msg = "panic: " + stringify(rec)
					}
					models.WriteError(w, http.StatusInternalServerError, msg)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func stringify(v any) string {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	if s, ok := v.(string); ok {
		return s
	}
	return "unexpected error"
}
