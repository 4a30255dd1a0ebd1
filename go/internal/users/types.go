package users

import "github.com/google/uuid"

// CreateUserRequest represents the data needed to register a new user.
// Password is hashed before anything is handed to the repository.
type CreateUserRequest struct {
	Email          string     `json:"email"`
	Password       string     `json:"password"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	FavoriteTeamID *uuid.UUID `json:"favorite_team_id,omitempty"`
}

// UpdateUserRequest represents the profile fields that can be updated.
// Nil pointers leave the field unchanged; ClearFavoriteTeam removes the
// favorite team outright.
type UpdateUserRequest struct {
	Email             *string    `json:"email,omitempty"`
	FirstName         *string    `json:"first_name,omitempty"`
	LastName          *string    `json:"last_name,omitempty"`
	FavoriteTeamID    *uuid.UUID `json:"favorite_team_id,omitempty"`
	ClearFavoriteTeam bool       `json:"clear_favorite_team,omitempty"`
}
