package entity

import "github.com/google/uuid"

// Scope identifies who a triage operation runs on behalf of: an
// authenticated user or an anonymous device. It is passed explicitly into
// every service call so the storage path is never ambient state.
type Scope struct {
	UserId  *uuid.UUID
	GuestId string
}

func GuestScope(guestId string) Scope {
	return Scope{GuestId: guestId}
}

func UserScope(userId uuid.UUID) Scope {
	return Scope{UserId: &userId}
}

func (s Scope) IsGuest() bool {
	return s.UserId == nil
}

// Key is the storage/notification key for this scope.
func (s Scope) Key() string {
	if s.UserId != nil {
		return "user:" + s.UserId.String()
	}
	return "guest:" + s.GuestId
}
