package entity

import "time"

// User is the minimal identity record mirrored from the managed auth provider.
// Its lifecycle (registration, credentials, verification) belongs to the
// provider; this service only ever consumes the resolved ID.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}
