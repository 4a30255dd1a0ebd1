package models

import "time"

// SystemSetting represents one configuration entry, addressed by
// (category, key). Encrypted settings hold ciphertext at rest and are
// decrypted on read by the settings service.
type SystemSetting struct {
	Category    string    `json:"category"`
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Encrypted   bool      `json:"encrypted"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
