package identity

import (
	"time"

	"github.com/astralabs/astra-backend/pkg/enums"
)

// User is a designer or admin account document, keyed by the Google subject.
type User struct {
	UID         string     `firestore:"-" json:"uid"`
	Email       string     `firestore:"email" json:"email"`
	DisplayName string     `firestore:"displayName" json:"displayName"`
	PhotoURL    string     `firestore:"photoUrl" json:"photoUrl,omitempty"`
	Role        enums.Role `firestore:"role" json:"role"`
	CreatedAt   time.Time  `firestore:"createdAt" json:"createdAt"`
}
