package http

import (
	"net/http"

	"github.com/Hoang7604119/mmostore-sub002/internal/domain"
	"github.com/google/uuid"
)

const (
	headerUserID   = "X-User-ID"
	headerUserRole = "X-User-Role"
)

// actorFromRequest reads the verified identity headers set by the upstream
// auth layer. The settlement core trusts them; it only authorizes.
func actorFromRequest(r *http.Request) (domain.Actor, bool) {
	id, err := uuid.Parse(r.Header.Get(headerUserID))
	if err != nil {
		return domain.Actor{}, false
	}

	role := domain.Role(r.Header.Get(headerUserRole))
	switch role {
	case domain.RoleUser, domain.RoleAdmin, domain.RoleManager:
	default:
		return domain.Actor{}, false
	}

	return domain.Actor{ID: id, Role: role}, true
}

func requireActor(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeError(w, http.StatusForbidden, codeForbidden, "missing or invalid identity headers")
	}
	return actor, ok
}
