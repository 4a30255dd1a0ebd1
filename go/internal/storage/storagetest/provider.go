// Package storagetest provides an in-memory storage.Provider for unit tests.
// It mimics the key-value backend: no uniqueness constraints, nil stripping,
// synthetic-attribute indexes, and ErrIndexNotFound for undeclared indexes
// so fallback paths can be exercised without a database.
package storagetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/gridironlabs/gridpick/go/internal/storage"
)

// Provider is a map-backed storage.Provider. Safe for concurrent use.
type Provider struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	tables  map[string]map[string]storage.Record
	indexes map[string]map[string]string // table -> index name -> key attribute
}

var _ storage.Provider = (*Provider)(nil)

// New returns an empty provider with every standard index declared.
func New(clock clockwork.Clock) *Provider {
	p := &Provider{
		clock:   clock,
		tables:  make(map[string]map[string]storage.Record),
		indexes: make(map[string]map[string]string),
	}

	declare := func(table, index, attr string) {
		if p.indexes[table] == nil {
			p.indexes[table] = make(map[string]string)
		}
		p.indexes[table][index] = attr
	}

	declare(storage.TableUsers, storage.IndexUsersByEmail, storage.AttrEmailLC)
	declare(storage.TableUsers, storage.IndexUsersByAdminFlag, storage.AttrAdminFlag)
	declare(storage.TableUsers, storage.IndexUsersByResetToken, "reset_token")
	declare(storage.TableTeams, storage.IndexTeamsByCode, "code")
	declare(storage.TableSeasons, storage.IndexSeasonsByYear, "year")
	declare(storage.TableSeasons, storage.IndexSeasonsByCurrent, storage.AttrCurrentFlag)
	declare(storage.TableScheduledGames, storage.IndexGamesBySeason, "season_id")
	declare(storage.TableScheduledGames, storage.IndexGamesBySeasonWeek, storage.AttrSeasonWeek)
	declare(storage.TableScheduledGames, storage.IndexGamesByMatchup, storage.AttrMatchupKey)
	declare(storage.TablePickemGames, storage.IndexPickemGamesBySeason, "season_id")
	declare(storage.TableParticipants, storage.IndexParticipantsByGame, "pickem_game_id")
	declare(storage.TableParticipants, storage.IndexParticipantsByUser, "user_id")
	declare(storage.TableParticipants, storage.IndexParticipantsByGameUser, storage.AttrGameUser)
	declare(storage.TablePicks, storage.IndexPicksByScheduledGame, "scheduled_game_id")
	declare(storage.TablePicks, storage.IndexPicksByPickemGame, "pickem_game_id")
	declare(storage.TablePicks, storage.IndexPicksByUser, "user_id")
	declare(storage.TablePicks, storage.IndexPicksByUserGame, storage.AttrUserGame)
	declare(storage.TablePicks, storage.IndexPicksByUserGameSched, storage.AttrUserGameSched)
	declare(storage.TableInvitations, storage.IndexInvitationsByToken, "token")
	declare(storage.TableInvitations, storage.IndexInvitationsByGame, "pickem_game_id")
	declare(storage.TableInvitations, storage.IndexInvitationsByEmail, storage.AttrEmailLC)
	declare(storage.TableInvitations, storage.IndexInvitationsByPending, storage.AttrPendingKey)
	declare(storage.TableStandings, storage.IndexStandingsByGame, "pickem_game_id")
	declare(storage.TableStandings, storage.IndexStandingsByGameUser, storage.AttrGameUser)
	declare(storage.TableSettings, storage.IndexSettingsByCategory, "category")

	return p
}

// RemoveIndex undeclares an index to simulate schema drift; subsequent
// queries against it return storage.ErrIndexNotFound.
func (p *Provider) RemoveIndex(table, index string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if idx, ok := p.indexes[table]; ok {
		delete(idx, index)
	}
}

// Len reports how many records a table holds.
func (p *Provider) Len(table string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.tables[table])
}

func (p *Provider) Get(ctx context.Context, table, id string) (storage.Record, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	rec, ok := p.tables[table][id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return rec.Clone(), nil
}

func (p *Provider) Put(ctx context.Context, table string, rec storage.Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.putLocked(table, rec)
}

func (p *Provider) putLocked(table string, rec storage.Record) error {
	if !rec.Has(storage.FieldID) {
		return fmt.Errorf("put %s: record has no id", table)
	}
	if p.tables[table] == nil {
		p.tables[table] = make(map[string]storage.Record)
	}

	now := p.clock.Now().UTC()
	stored := make(storage.Record, len(rec))
	for k, v := range rec {
		if v == nil {
			continue
		}
		stored[k] = normalize(v)
	}
	if !stored.Has(storage.FieldCreatedAt) {
		stored[storage.FieldCreatedAt] = now.Format(storage.TimeLayout)
	}
	stored[storage.FieldUpdatedAt] = now.Format(storage.TimeLayout)

	p.tables[table][stored.String(storage.FieldID)] = stored
	return nil
}

func (p *Provider) Update(ctx context.Context, table, id string, fields map[string]any) (storage.Record, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.updateLocked(table, id, fields); err != nil {
		return nil, err
	}
	return p.tables[table][id].Clone(), nil
}

func (p *Provider) updateLocked(table, id string, fields map[string]any) error {
	rec, ok := p.tables[table][id]
	if !ok {
		return storage.ErrNotFound
	}
	for k, v := range fields {
		if v == nil {
			delete(rec, k)
			continue
		}
		rec[k] = normalize(v)
	}
	if _, ok := fields[storage.FieldUpdatedAt]; !ok {
		rec[storage.FieldUpdatedAt] = p.clock.Now().UTC().Format(storage.TimeLayout)
	}
	return nil
}

func (p *Provider) Delete(ctx context.Context, table, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.tables[table], id)
	return nil
}

func (p *Provider) Query(ctx context.Context, table string, q storage.Query) ([]storage.Record, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(q.Key) != 1 {
		return nil, fmt.Errorf("query %s: key-value lookups take exactly one key condition, got %d", table, len(q.Key))
	}

	var attr string
	var val any
	for k, v := range q.Key {
		attr, val = k, v
	}
	if val == nil {
		return nil, fmt.Errorf("query %s: cannot match a null attribute", table)
	}

	if q.Index != "" {
		keyAttr, ok := p.indexes[table][q.Index]
		if !ok {
			return nil, fmt.Errorf("missing table or index: %w", storage.ErrIndexNotFound)
		}
		if keyAttr != attr {
			return nil, fmt.Errorf("query %s: index %s serves %s, not %s", table, q.Index, keyAttr, attr)
		}
	} else if attr != storage.FieldID {
		return nil, fmt.Errorf("query %s: base-table lookups only match %s", table, storage.FieldID)
	}

	return p.matchLocked(table, map[string]any{attr: val}), nil
}

func (p *Provider) Scan(ctx context.Context, table string, filter map[string]any) ([]storage.Record, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, v := range filter {
		if v == nil {
			return nil, fmt.Errorf("scan %s: cannot filter on a null attribute", table)
		}
	}
	return p.matchLocked(table, filter), nil
}

func (p *Provider) Transact(ctx context.Context, ops []storage.Op) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	// stage on a copy so a failing op leaves the tables untouched
	backup := make(map[string]map[string]storage.Record, len(p.tables))
	for t, rows := range p.tables {
		cp := make(map[string]storage.Record, len(rows))
		for id, rec := range rows {
			cp[id] = rec.Clone()
		}
		backup[t] = cp
	}

	for _, op := range ops {
		var err error
		switch op.Kind {
		case storage.OpPut:
			err = p.putLocked(op.Table, op.Record)
		case storage.OpUpdate:
			err = p.updateLocked(op.Table, op.ID, op.Fields)
		case storage.OpDelete:
			delete(p.tables[op.Table], op.ID)
		default:
			err = fmt.Errorf("unknown op kind %d", op.Kind)
		}
		if err != nil {
			p.tables = backup
			return err
		}
	}
	return nil
}

func (p *Provider) Close() error {
	return nil
}

func (p *Provider) matchLocked(table string, conds map[string]any) []storage.Record {
	var out []storage.Record
	for _, rec := range p.tables[table] {
		matches := true
		for k, v := range conds {
			if rec[k] != normalize(v) {
				matches = false
				break
			}
		}
		if matches {
			out = append(out, rec.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String(storage.FieldID) < out[j].String(storage.FieldID)
	})
	return out
}

// normalize mirrors how the real key-value backend represents scalars.
func normalize(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(storage.TimeLayout)
	case int:
		return int64(t)
	default:
		return v
	}
}
