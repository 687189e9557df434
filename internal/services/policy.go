package services

import (
	"fmt"

	"eventcalendar/internal/domain"
)

// Authorize is the access policy gate. Viewing is open to everyone, toggling
// participation needs a USER or ADMIN session and event administration needs ADMIN.
// Violations wrap domain.ErrUnauthorized.
func Authorize(claims domain.Claims, action domain.Action) error {
	switch action {
	case domain.ActionView:
		return nil
	case domain.ActionToggleParticipation:
		if claims.IsGuest() {
			return fmt.Errorf("%w: sign in to %s", domain.ErrUnauthorized, action)
		}
		if claims.Role == domain.RoleUser || claims.Role == domain.RoleAdmin {
			return nil
		}
	case domain.ActionCreate, domain.ActionUpdate, domain.ActionDelete:
		if !claims.IsGuest() && claims.Role == domain.RoleAdmin {
			return nil
		}
		return fmt.Errorf("%w: %s requires role %s", domain.ErrUnauthorized, action, domain.RoleAdmin)
	}
	return fmt.Errorf("%w: %s not permitted", domain.ErrUnauthorized, action)
}
