package realtime

import "github.com/camden-git/jeudelamort/services"

// IdentitySource publishes identity changes.
type IdentitySource interface {
	Subscribe(fn func(services.AuthEvent)) (unsubscribe func())
}

// FollowIdentity forwards identity changes to the affected player's
// connections and drops those connections once their session is revoked.
func (h *Hub) FollowIdentity(src IdentitySource) (unsubscribe func()) {
	return src.Subscribe(func(e services.AuthEvent) {
		h.SendToUser(e.UserID, "session."+string(e.Type), map[string]interface{}{"user_id": e.UserID})
		switch e.Type {
		case services.EventSignedOut, services.EventPasswordUpdated:
			h.Disconnect(e.UserID)
		}
	})
}
