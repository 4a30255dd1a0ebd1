package teams

import "github.com/gridironlabs/gridpick/go/internal/models"

// TeamSeed is one team entry from reference data, identified by its code.
type TeamSeed struct {
	Code       string            `json:"code"`
	Name       string            `json:"name"`
	City       string            `json:"city,omitempty"`
	Conference models.Conference `json:"conference"`
	Division   string            `json:"division"`
	Colors     string            `json:"colors,omitempty"`
	LogoURL    string            `json:"logo_url,omitempty"`
}

// UpdateTeamRequest represents the fields an update can touch. Nil pointers
// leave the field unchanged.
type UpdateTeamRequest struct {
	Name       *string            `json:"name,omitempty"`
	City       *string            `json:"city,omitempty"`
	Conference *models.Conference `json:"conference,omitempty"`
	Division   *string            `json:"division,omitempty"`
	Colors     *string            `json:"colors,omitempty"`
	LogoURL    *string            `json:"logo_url,omitempty"`
}

// IsZero reports whether the request would change nothing.
func (r UpdateTeamRequest) IsZero() bool {
	return r.Name == nil && r.City == nil && r.Conference == nil &&
		r.Division == nil && r.Colors == nil && r.LogoURL == nil
}

// SyncResult represents the result of syncing teams from seed data
type SyncResult struct {
	TotalProcessed int     `json:"total_processed"`
	Created        int     `json:"created"`
	Updated        int     `json:"updated"`
	Unchanged      int     `json:"unchanged"`
	Errors         []error `json:"errors,omitempty"`
}
