package service

import "pointsgame/models"

// RequireAdmin returns ErrPermissionDenied unless the session belongs to an administrator
func RequireAdmin(actor models.Session) error {
	if !actor.IsAdmin {
		return ErrPermissionDenied
	}
	return nil
}
