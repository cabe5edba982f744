package auth

// Allow — чистая проверка права. Админ может всё, остальные — по выданным грантам.
// Вычисляется заново на каждый запрос: гранты могли измениться.
func Allow(id *Identity, permission string) bool {
	if id == nil || id.User == nil {
		return false
	}
	if id.User.IsAdmin() {
		return true
	}
	return id.Has(permission)
}

// AllowSelf — право либо по гранту, либо self-доступ к собственному ресурсу
// (свой профиль, свой таймшит, своя задача, свои уведомления).
func AllowSelf(id *Identity, permission string, ownerID uint) bool {
	if Allow(id, permission) {
		return true
	}
	return id != nil && id.User != nil && id.User.ID == ownerID
}

// AllowAny — хотя бы одно из перечисленных прав.
func AllowAny(id *Identity, permissions ...string) bool {
	for _, p := range permissions {
		if Allow(id, p) {
			return true
		}
	}
	return false
}
