package seasons

import "errors"

var (
	// ErrYearTaken indicates a season already exists for the year.
	ErrYearTaken = errors.New("season year already exists")

	// ErrNoCurrentSeason indicates no season is flagged current.
	ErrNoCurrentSeason = errors.New("no current season")

	// ErrSeasonInUse indicates scheduled games still reference the season.
	ErrSeasonInUse = errors.New("season has scheduled games")
)
