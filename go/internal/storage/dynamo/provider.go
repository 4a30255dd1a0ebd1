// Package dynamo implements the storage.Provider contract on DynamoDB with
// one table per entity and GSIs over the synthetic index attributes. Lookups
// that name a missing index surface storage.ErrIndexNotFound so repositories
// can fall back to a broader index or a scan.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/gridironlabs/gridpick/go/internal/storage"
)

// maxTransactOps caps Transact batches well under the service limit;
// callers only ever batch a handful of same-request writes.
const maxTransactOps = 25

// Config holds the DynamoDB connection settings.
type Config struct {
	Region      string
	Endpoint    string // non-empty points at DynamoDB Local
	TablePrefix string
}

// DefaultConfig returns production-shaped defaults.
func DefaultConfig() Config {
	return Config{
		Region:      "us-east-1",
		TablePrefix: "gridpick",
	}
}

// Provider is the key-value storage variant.
type Provider struct {
	client *dynamodb.Client
	prefix string
	clock  clockwork.Clock
}

// New builds a DynamoDB-backed provider. With an Endpoint configured it
// targets DynamoDB Local using static credentials.
func New(ctx context.Context, cfg Config, clock clockwork.Clock) (*Provider, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.Endpoint != "" {
		loadOpts = append(loadOpts,
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("local", "local", "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	log.Debug().
		Str("region", cfg.Region).
		Str("endpoint", cfg.Endpoint).
		Str("table_prefix", cfg.TablePrefix).
		Msg("dynamodb storage ready")

	return &Provider{client: client, prefix: cfg.TablePrefix, clock: clock}, nil
}

// Close is a no-op; the underlying HTTP client needs no teardown.
func (p *Provider) Close() error {
	return nil
}

func (p *Provider) tableName(table string) string {
	if p.prefix == "" {
		return table
	}
	return p.prefix + "-" + table
}

// Get fetches one item by id with a consistent read.
func (p *Provider) Get(ctx context.Context, table, id string) (storage.Record, error) {
	out, err := p.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(p.tableName(table)),
		Key:            idKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", table, mapErr(err))
	}
	if len(out.Item) == 0 {
		return nil, storage.ErrNotFound
	}
	return decodeItem(out.Item), nil
}

// Put writes the full item. Nil values are stripped; created_at survives
// overwrites only if the caller carried it over from a read.
func (p *Provider) Put(ctx context.Context, table string, rec storage.Record) error {
	if !rec.Has(storage.FieldID) {
		return fmt.Errorf("put %s: record has no id", table)
	}
	item, err := encodeRecord(p.stamp(rec))
	if err != nil {
		return fmt.Errorf("put %s: %w", table, err)
	}
	if _, err := p.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(p.tableName(table)),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("put %s: %w", table, mapErr(err))
	}
	return nil
}

// Update applies a partial update to an existing item and returns the new
// state. A nil field value removes the attribute. Missing items return
// storage.ErrNotFound via an existence condition.
func (p *Provider) Update(ctx context.Context, table, id string, fields map[string]any) (storage.Record, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("update %s: no fields", table)
	}

	expr, err := p.buildUpdateExpr(fields)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", table, err)
	}

	out, err := p.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(p.tableName(table)),
		Key:                       idKey(id),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			// the existence guard failed, not a business condition
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("update %s: %w", table, mapErr(err))
	}
	return decodeItem(out.Attributes), nil
}

// Delete removes the item if present; deleting a missing item is fine.
func (p *Provider) Delete(ctx context.Context, table, id string) error {
	if _, err := p.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(p.tableName(table)),
		Key:       idKey(id),
	}); err != nil {
		return fmt.Errorf("delete %s: %w", table, mapErr(err))
	}
	return nil
}

// Query runs an equality lookup against a GSI (or the base key when no
// index is named). Exactly one key condition is supported: multi-attribute
// lookups go through the synthetic composite attributes instead.
func (p *Provider) Query(ctx context.Context, table string, q storage.Query) ([]storage.Record, error) {
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

	keyCond := expression.Key(attr).Equal(expression.Value(normalizeScalar(val)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(p.tableName(table)),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}
	if q.Index != "" {
		input.IndexName = aws.String(q.Index)
	}

	var recs []storage.Record
	for {
		out, err := p.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", table, mapErr(err))
		}
		recs = append(recs, decodeItems(out.Items)...)
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	return recs, nil
}

// Scan walks the full table, applying the equality filter server-side. This
// is the fallback path for missing indexes and is logged by callers.
func (p *Provider) Scan(ctx context.Context, table string, filter map[string]any) ([]storage.Record, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(p.tableName(table)),
	}

	if len(filter) > 0 {
		var cond expression.ConditionBuilder
		first := true
		for k, v := range filter {
			if v == nil {
				return nil, fmt.Errorf("scan %s: cannot filter on a null attribute", table)
			}
			c := expression.Name(k).Equal(expression.Value(normalizeScalar(v)))
			if first {
				cond = c
				first = false
			} else {
				cond = cond.And(c)
			}
		}
		expr, err := expression.NewBuilder().WithFilter(cond).Build()
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		input.FilterExpression = expr.Filter()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}

	var recs []storage.Record
	for {
		out, err := p.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, mapErr(err))
		}
		recs = append(recs, decodeItems(out.Items)...)
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	return recs, nil
}

// Transact applies a small batch through TransactWriteItems.
func (p *Provider) Transact(ctx context.Context, ops []storage.Op) error {
	if len(ops) == 0 {
		return nil
	}
	if len(ops) > maxTransactOps {
		return fmt.Errorf("transact: %d ops exceeds batch limit %d", len(ops), maxTransactOps)
	}

	items := make([]types.TransactWriteItem, 0, len(ops))
	for _, op := range ops {
		switch op.Kind {
		case storage.OpPut:
			item, err := encodeRecord(p.stamp(op.Record))
			if err != nil {
				return fmt.Errorf("transact put %s: %w", op.Table, err)
			}
			items = append(items, types.TransactWriteItem{Put: &types.Put{
				TableName: aws.String(p.tableName(op.Table)),
				Item:      item,
			}})
		case storage.OpUpdate:
			expr, err := p.buildUpdateExpr(op.Fields)
			if err != nil {
				return fmt.Errorf("transact update %s: %w", op.Table, err)
			}
			items = append(items, types.TransactWriteItem{Update: &types.Update{
				TableName:                 aws.String(p.tableName(op.Table)),
				Key:                       idKey(op.ID),
				UpdateExpression:          expr.Update(),
				ConditionExpression:       expr.Condition(),
				ExpressionAttributeNames:  expr.Names(),
				ExpressionAttributeValues: expr.Values(),
			}})
		case storage.OpDelete:
			items = append(items, types.TransactWriteItem{Delete: &types.Delete{
				TableName: aws.String(p.tableName(op.Table)),
				Key:       idKey(op.ID),
			}})
		default:
			return fmt.Errorf("transact: unknown op kind %d", op.Kind)
		}
	}

	if _, err := p.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	}); err != nil {
		var canceled *types.TransactionCanceledException
		if errors.As(err, &canceled) {
			return fmt.Errorf("transaction canceled: %w", storage.ErrConflict)
		}
		return fmt.Errorf("transact: %w", mapErr(err))
	}
	return nil
}

// buildUpdateExpr turns a partial field map into SET/REMOVE clauses with an
// existence guard, restamping updated_at unless the caller set it.
func (p *Provider) buildUpdateExpr(fields map[string]any) (expression.Expression, error) {
	var upd expression.UpdateBuilder
	for k, v := range fields {
		if v == nil {
			upd = upd.Remove(expression.Name(k))
			continue
		}
		upd = upd.Set(expression.Name(k), expression.Value(normalizeScalar(v)))
	}
	if _, ok := fields[storage.FieldUpdatedAt]; !ok {
		now := p.clock.Now().UTC().Format(storage.TimeLayout)
		upd = upd.Set(expression.Name(storage.FieldUpdatedAt), expression.Value(now))
	}

	cond := expression.AttributeExists(expression.Name(storage.FieldID))
	return expression.NewBuilder().WithUpdate(upd).WithCondition(cond).Build()
}

func (p *Provider) stamp(rec storage.Record) storage.Record {
	now := p.clock.Now().UTC()
	out := rec.Clone()
	if !out.Has(storage.FieldCreatedAt) {
		out[storage.FieldCreatedAt] = now
	}
	out[storage.FieldUpdatedAt] = now
	return out
}

func idKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		storage.FieldID: &types.AttributeValueMemberS{Value: id},
	}
}

// mapErr translates DynamoDB errors into the storage sentinels. A missing
// table or index is schema drift: repositories catch ErrIndexNotFound and
// fall back to a scan or a broader index.
func mapErr(err error) error {
	var rnf *types.ResourceNotFoundException
	if errors.As(err, &rnf) {
		return fmt.Errorf("missing table or index: %w", storage.ErrIndexNotFound)
	}

	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("conditional check failed: %w", storage.ErrConflict)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) &&
		apiErr.ErrorCode() == "ValidationException" &&
		strings.Contains(strings.ToLower(apiErr.ErrorMessage()), "index") {
		return fmt.Errorf("%s: %w", apiErr.ErrorMessage(), storage.ErrIndexNotFound)
	}

	return err
}
