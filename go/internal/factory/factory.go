// Package factory wires the storage backend, event publisher, and every app
// into one service graph from configuration.
package factory

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/gridironlabs/gridpick/go/internal/calculator"
	"github.com/gridironlabs/gridpick/go/internal/config"
	"github.com/gridironlabs/gridpick/go/internal/crypto"
	"github.com/gridironlabs/gridpick/go/internal/events"
	"github.com/gridironlabs/gridpick/go/internal/invitations"
	"github.com/gridironlabs/gridpick/go/internal/nfldata"
	"github.com/gridironlabs/gridpick/go/internal/pickem"
	"github.com/gridironlabs/gridpick/go/internal/picks"
	"github.com/gridironlabs/gridpick/go/internal/seasons"
	"github.com/gridironlabs/gridpick/go/internal/settings"
	"github.com/gridironlabs/gridpick/go/internal/standings"
	"github.com/gridironlabs/gridpick/go/internal/storage"
	"github.com/gridironlabs/gridpick/go/internal/storage/dynamo"
	"github.com/gridironlabs/gridpick/go/internal/storage/sqlite"
	"github.com/gridironlabs/gridpick/go/internal/teams"
	"github.com/gridironlabs/gridpick/go/internal/users"
)

// Services bundles every app wired over one storage backend.
type Services struct {
	Users       *users.App
	Teams       *teams.App
	Seasons     *seasons.App
	NFLData     *nfldata.App
	Pickem      *pickem.App
	Picks       *picks.App
	Invitations *invitations.App
	Settings    *settings.App
	Standings   *standings.App
	Calculator  *calculator.Calculator
	Publisher   events.Publisher

	store storage.Provider
}

// New builds the full service graph for the configured backend.
func New(ctx context.Context, cfg *config.Config, clock clockwork.Clock) (*Services, error) {
	store, err := openStore(ctx, cfg, clock)
	if err != nil {
		return nil, err
	}

	publisher, err := openPublisher(cfg)
	if err != nil {
		store.Close()
		return nil, err
	}

	enc, err := newEncryptor(cfg)
	if err != nil {
		publisher.Close()
		store.Close()
		return nil, err
	}

	svcs := &Services{Publisher: publisher, store: store}
	switch cfg.Backend {
	case config.BackendSQLite:
		svcs.Users = users.NewApp(users.NewSQLiteRepository(store), clock)
		svcs.Teams = teams.NewApp(teams.NewSQLiteRepository(store))
		svcs.Seasons = seasons.NewApp(seasons.NewSQLiteRepository(store))
		svcs.NFLData = nfldata.NewApp(nfldata.NewSQLiteRepository(store), clock)
		svcs.Pickem = pickem.NewApp(pickem.NewSQLiteRepository(store), clock)
		svcs.Picks = picks.NewApp(picks.NewSQLiteRepository(store), clock)
		svcs.Invitations = invitations.NewApp(invitations.NewSQLiteRepository(store), clock)
		svcs.Settings = settings.NewApp(settings.NewSQLiteRepository(store), enc)
		svcs.Standings = standings.NewApp(standings.NewSQLiteRepository(store))
	case config.BackendDynamoDB:
		svcs.Users = users.NewApp(users.NewDynamoRepository(store), clock)
		svcs.Teams = teams.NewApp(teams.NewDynamoRepository(store))
		svcs.Seasons = seasons.NewApp(seasons.NewDynamoRepository(store))
		svcs.NFLData = nfldata.NewApp(nfldata.NewDynamoRepository(store), clock)
		svcs.Pickem = pickem.NewApp(pickem.NewDynamoRepository(store), clock)
		svcs.Picks = picks.NewApp(picks.NewDynamoRepository(store), clock)
		svcs.Invitations = invitations.NewApp(invitations.NewDynamoRepository(store), clock)
		svcs.Settings = settings.NewApp(settings.NewDynamoRepository(store), enc)
		svcs.Standings = standings.NewApp(standings.NewDynamoRepository(store))
	}
	svcs.Calculator = calculator.New(svcs.NFLData, svcs.Picks, svcs.Standings, publisher, clock)

	log.Info().
		Str("backend", string(cfg.Backend)).
		Bool("events", cfg.NATS.URL != "").
		Bool("settings_encryption", enc != nil).
		Msg("services ready")

	return svcs, nil
}

// Close releases the event publisher and the storage backend.
func (s *Services) Close() error {
	var firstErr error
	if err := s.Publisher.Close(); err != nil {
		firstErr = err
	}
	if err := s.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func openStore(ctx context.Context, cfg *config.Config, clock clockwork.Clock) (storage.Provider, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		store, err := sqlite.Open(cfg.SQLite.Path, clock)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite storage: %w", err)
		}
		return store, nil
	case config.BackendDynamoDB:
		store, err := dynamo.New(ctx, dynamo.Config{
			Region:      cfg.DynamoDB.Region,
			Endpoint:    cfg.DynamoDB.Endpoint,
			TablePrefix: cfg.DynamoDB.TablePrefix,
		}, clock)
		if err != nil {
			return nil, fmt.Errorf("failed to open dynamodb storage: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func openPublisher(cfg *config.Config) (events.Publisher, error) {
	if cfg.NATS.URL == "" {
		return events.NewNoopPublisher(), nil
	}
	jsCfg := events.DefaultJetStreamConfig()
	jsCfg.URL = cfg.NATS.URL
	publisher, err := events.NewJetStreamPublisher(jsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect event publisher: %w", err)
	}
	return publisher, nil
}

func newEncryptor(cfg *config.Config) (*crypto.Encryptor, error) {
	key, err := cfg.EncryptionKey()
	if err != nil {
		return nil, err
	}
	if key == nil {
		return nil, nil
	}
	return crypto.NewEncryptor(key)
}
