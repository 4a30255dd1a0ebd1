package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"

	"github.com/gridironlabs/gridpick/go/internal/storage"
)

type indexDef struct {
	Name    string
	HashKey string
	KeyType types.ScalarAttributeType
}

type tableDef struct {
	Name    string
	Indexes []indexDef
}

// tableDefs declares every table and the GSIs the repositories expect.
// Index keys over composites and flags point at the synthetic attributes
// written by the repositories; see storage/keys.go.
var tableDefs = []tableDef{
	{storage.TableUsers, []indexDef{
		{storage.IndexUsersByEmail, storage.AttrEmailLC, types.ScalarAttributeTypeS},
		{storage.IndexUsersByAdminFlag, storage.AttrAdminFlag, types.ScalarAttributeTypeS},
		{storage.IndexUsersByResetToken, "reset_token", types.ScalarAttributeTypeS},
	}},
	{storage.TableTeams, []indexDef{
		{storage.IndexTeamsByCode, "code", types.ScalarAttributeTypeS},
	}},
	{storage.TableSeasons, []indexDef{
		{storage.IndexSeasonsByYear, "year", types.ScalarAttributeTypeN},
		{storage.IndexSeasonsByCurrent, storage.AttrCurrentFlag, types.ScalarAttributeTypeS},
	}},
	{storage.TableScheduledGames, []indexDef{
		{storage.IndexGamesBySeason, "season_id", types.ScalarAttributeTypeS},
		{storage.IndexGamesBySeasonWeek, storage.AttrSeasonWeek, types.ScalarAttributeTypeS},
		{storage.IndexGamesByMatchup, storage.AttrMatchupKey, types.ScalarAttributeTypeS},
	}},
	{storage.TablePickemGames, []indexDef{
		{storage.IndexPickemGamesBySeason, "season_id", types.ScalarAttributeTypeS},
	}},
	{storage.TableParticipants, []indexDef{
		{storage.IndexParticipantsByGame, "pickem_game_id", types.ScalarAttributeTypeS},
		{storage.IndexParticipantsByUser, "user_id", types.ScalarAttributeTypeS},
		{storage.IndexParticipantsByGameUser, storage.AttrGameUser, types.ScalarAttributeTypeS},
	}},
	{storage.TablePicks, []indexDef{
		{storage.IndexPicksByScheduledGame, "scheduled_game_id", types.ScalarAttributeTypeS},
		{storage.IndexPicksByPickemGame, "pickem_game_id", types.ScalarAttributeTypeS},
		{storage.IndexPicksByUser, "user_id", types.ScalarAttributeTypeS},
		{storage.IndexPicksByUserGame, storage.AttrUserGame, types.ScalarAttributeTypeS},
		{storage.IndexPicksByUserGameSched, storage.AttrUserGameSched, types.ScalarAttributeTypeS},
	}},
	{storage.TableInvitations, []indexDef{
		{storage.IndexInvitationsByToken, "token", types.ScalarAttributeTypeS},
		{storage.IndexInvitationsByGame, "pickem_game_id", types.ScalarAttributeTypeS},
		{storage.IndexInvitationsByEmail, storage.AttrEmailLC, types.ScalarAttributeTypeS},
		{storage.IndexInvitationsByPending, storage.AttrPendingKey, types.ScalarAttributeTypeS},
	}},
	{storage.TableStandings, []indexDef{
		{storage.IndexStandingsByGame, "pickem_game_id", types.ScalarAttributeTypeS},
		{storage.IndexStandingsByGameUser, storage.AttrGameUser, types.ScalarAttributeTypeS},
	}},
	{storage.TableSettings, []indexDef{
		{storage.IndexSettingsByCategory, "category", types.ScalarAttributeTypeS},
	}},
}

// EnsureTables creates any missing tables with their GSIs and waits until
// they are active. Intended for DynamoDB Local and fresh environments;
// production tables are usually provisioned out of band.
func (p *Provider) EnsureTables(ctx context.Context) error {
	for _, def := range tableDefs {
		name := p.tableName(def.Name)

		_, err := p.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
			TableName: aws.String(name),
		})
		if err == nil {
			continue
		}
		var nf *types.ResourceNotFoundException
		if !errors.As(err, &nf) {
			return fmt.Errorf("describe table %s: %w", name, err)
		}

		if err := p.createTable(ctx, name, def); err != nil {
			return err
		}
	}
	return nil
}

func (p *Provider) createTable(ctx context.Context, name string, def tableDef) error {
	attrs := []types.AttributeDefinition{{
		AttributeName: aws.String(storage.FieldID),
		AttributeType: types.ScalarAttributeTypeS,
	}}
	seen := map[string]bool{storage.FieldID: true}

	var gsis []types.GlobalSecondaryIndex
	for _, idx := range def.Indexes {
		if !seen[idx.HashKey] {
			attrs = append(attrs, types.AttributeDefinition{
				AttributeName: aws.String(idx.HashKey),
				AttributeType: idx.KeyType,
			})
			seen[idx.HashKey] = true
		}
		gsis = append(gsis, types.GlobalSecondaryIndex{
			IndexName: aws.String(idx.Name),
			KeySchema: []types.KeySchemaElement{{
				AttributeName: aws.String(idx.HashKey),
				KeyType:       types.KeyTypeHash,
			}},
			Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
		})
	}

	input := &dynamodb.CreateTableInput{
		TableName:            aws.String(name),
		AttributeDefinitions: attrs,
		KeySchema: []types.KeySchemaElement{{
			AttributeName: aws.String(storage.FieldID),
			KeyType:       types.KeyTypeHash,
		}},
		BillingMode: types.BillingModePayPerRequest,
	}
	if len(gsis) > 0 {
		input.GlobalSecondaryIndexes = gsis
	}

	if _, err := p.client.CreateTable(ctx, input); err != nil {
		return fmt.Errorf("create table %s: %w", name, err)
	}

	waiter := dynamodb.NewTableExistsWaiter(p.client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(name)}, 2*time.Minute); err != nil {
		return fmt.Errorf("wait for table %s: %w", name, err)
	}

	log.Info().Str("table", name).Msg("created dynamodb table")
	return nil
}
