package models

import "time"

type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	TaxID     string    `gorm:"size:15" json:"tax_id"` // CPF
	BirthDate time.Time `json:"birth_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BirthDateBR returns the birth date as DD/MM/YYYY, or "" when unset.
func (c *Client) BirthDateBR() string {
	if c.BirthDate.IsZero() {
		return ""
	}
	return c.BirthDate.Format("02/01/2006")
}
