package domain

import (
	"time"

	"github.com/google/uuid"
)

// Agent is read-only to the distribution core: the roster is managed
// elsewhere, the pipeline only consumes an ordered snapshot of it.
type Agent struct {
	ID        uuid.UUID `db:"id"         json:"id"`
	Name      string    `db:"name"       json:"name"`
	Email     string    `db:"email"      json:"email"`
	Active    bool      `db:"active"     json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
