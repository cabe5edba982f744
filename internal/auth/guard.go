package auth

import (
	"context"
	"net/http"
	"strings"

	"keel/internal/models"
	"keel/internal/repo"

	"github.com/gorilla/mux"
)

type ctxKey string

const identityKey ctxKey = "identity"

// Identity — результат работы Guard: пользователь и его набор прав
// на время одного запроса. Между запросами не кэшируется.
type Identity struct {
	User        *models.User
	Permissions map[string]bool
}

func (id *Identity) Has(perm string) bool { return id.Permissions[perm] }

// CurrentIdentity достаёт Identity из контекста; nil для незащищённых роутов.
func CurrentIdentity(r *http.Request) *Identity {
	v, _ := r.Context().Value(identityKey).(*Identity)
	return v
}

// Guard проверяет bearer-токен, резолвит пользователя и его права.
// 401: токен отсутствует/битый/просрочен, пользователь не найден или деактивирован.
func Guard(tokens *Tokens, users *repo.UserStore) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const p = "Bearer "
			raw := r.Header.Get("Authorization")
			if !strings.HasPrefix(raw, p) {
				models.WriteUnauthenticated(w)
				return
			}
			userID, err := tokens.Verify(strings.TrimPrefix(raw, p))
			if err != nil {
				models.WriteUnauthenticated(w)
				return
			}
			u, err := users.GetWithPermissions(r.Context(), userID)
			if err != nil || !u.IsActive {
				models.WriteUnauthenticated(w)
				return
			}
			id := &Identity{User: u, Permissions: make(map[string]bool, len(u.Permissions))}
			for _, perm := range u.Permissions {
				id.Permissions[perm.Name] = true
			}
			ctx := context.WithValue(r.Context(), identityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
