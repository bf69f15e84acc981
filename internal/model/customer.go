package model

import (
	"time"

	"github.com/google/uuid"
)

// Customer is the stored buyer profile.
type Customer struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Phone      *string   `json:"phone,omitempty"`
	OrderCount int       `json:"orderCount"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
