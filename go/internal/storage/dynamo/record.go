package dynamo

import (
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/gridironlabs/gridpick/go/internal/storage"
)

// encodeRecord converts a record to a DynamoDB item. Nil values are dropped
// so cleared fields become absent attributes, the same shape NULL columns
// take on the relational backend.
func encodeRecord(rec storage.Record) (map[string]types.AttributeValue, error) {
	item := make(map[string]types.AttributeValue, len(rec))
	for k, v := range rec {
		if v == nil {
			continue
		}
		av, err := encodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", k, err)
		}
		item[k] = av
	}
	return item, nil
}

func encodeValue(v any) (types.AttributeValue, error) {
	switch t := v.(type) {
	case string:
		return &types.AttributeValueMemberS{Value: t}, nil
	case bool:
		return &types.AttributeValueMemberBOOL{Value: t}, nil
	case int:
		return &types.AttributeValueMemberN{Value: strconv.Itoa(t)}, nil
	case int64:
		return &types.AttributeValueMemberN{Value: strconv.FormatInt(t, 10)}, nil
	case float64:
		return &types.AttributeValueMemberN{Value: strconv.FormatFloat(t, 'f', -1, 64)}, nil
	case time.Time:
		return &types.AttributeValueMemberS{Value: t.UTC().Format(storage.TimeLayout)}, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// normalizeScalar reduces a record value to the narrow scalar set the
// expression builder marshals predictably.
func normalizeScalar(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(storage.TimeLayout)
	case int:
		return int64(t)
	default:
		return v
	}
}

// decodeItem converts a DynamoDB item back into a record. Numbers come back
// as int64 when integral, float64 otherwise; timestamps stay strings and are
// parsed by the record accessors.
func decodeItem(item map[string]types.AttributeValue) storage.Record {
	rec := make(storage.Record, len(item))
	for k, av := range item {
		switch t := av.(type) {
		case *types.AttributeValueMemberS:
			rec[k] = t.Value
		case *types.AttributeValueMemberBOOL:
			rec[k] = t.Value
		case *types.AttributeValueMemberN:
			if n, err := strconv.ParseInt(t.Value, 10, 64); err == nil {
				rec[k] = n
				continue
			}
			if f, err := strconv.ParseFloat(t.Value, 64); err == nil {
				rec[k] = f
			}
		case *types.AttributeValueMemberNULL:
			// absent attribute semantics
		}
	}
	return rec
}

func decodeItems(items []map[string]types.AttributeValue) []storage.Record {
	recs := make([]storage.Record, 0, len(items))
	for _, item := range items {
		recs = append(recs, decodeItem(item))
	}
	return recs
}
