package metastore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	appconfig "github.com/ignite/storemailer/internal/config"
)

// DynamoDB is a Store backed by a single DynamoDB table.
//
// Layout: PK = "APP#<installID>", SK = "<namespace>#<key>", with the JSON
// document in the Data attribute. Expiring documents carry a TTL attribute
// the table's TTL setting garbage-collects.
type DynamoDB struct {
	client    *dynamodb.Client
	tableName string
	installID string
}

// dynamoItem is the stored item shape.
type dynamoItem struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	Data      string `dynamodbav:"Data"`
	Timestamp string `dynamodbav:"Timestamp"`
	TTL       int64  `dynamodbav:"TTL,omitempty"`
}

// NewDynamoDB builds a DynamoDB-backed store from application config.
func NewDynamoDB(ctx context.Context, cfg appconfig.MetastoreConfig) (*DynamoDB, error) {
	var awsCfg aws.Config
	var err error

	if profile := cfg.GetAWSProfile(); profile != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
			awsconfig.WithSharedConfigProfile(profile),
		)
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &DynamoDB{
		client:    dynamodb.NewFromConfig(awsCfg),
		tableName: cfg.Table,
		installID: cfg.InstallID,
	}, nil
}

func (d *DynamoDB) pk() string { return "APP#" + d.installID }

func sk(namespace, key string) string { return namespace + "#" + key }

// Read implements Store.
func (d *DynamoDB) Read(ctx context.Context, namespace, key string) ([]byte, error) {
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: d.pk()},
			"SK": &types.AttributeValueMemberS{Value: sk(namespace, key)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("metastore read %s/%s: %w", namespace, key, err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var item dynamoItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshaling item %s/%s: %w", namespace, key, err)
	}
	return []byte(item.Data), nil
}

// Write implements Store.
func (d *DynamoDB) Write(ctx context.Context, namespace, key string, value []byte) error {
	return d.put(ctx, namespace, key, value, 0)
}

// WriteExpiring implements Store.
func (d *DynamoDB) WriteExpiring(ctx context.Context, namespace, key string, value []byte, expireAt time.Time) error {
	return d.put(ctx, namespace, key, value, expireAt.Unix())
}

func (d *DynamoDB) put(ctx context.Context, namespace, key string, value []byte, ttl int64) error {
	item := dynamoItem{
		PK:        d.pk(),
		SK:        sk(namespace, key),
		Data:      string(value),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		TTL:       ttl,
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshaling item %s/%s: %w", namespace, key, err)
	}

	if _, err := d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName),
		Item:      av,
	}); err != nil {
		return fmt.Errorf("metastore write %s/%s: %w", namespace, key, err)
	}
	return nil
}

// Delete implements Store.
func (d *DynamoDB) Delete(ctx context.Context, namespace, key string) error {
	_, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: d.pk()},
			"SK": &types.AttributeValueMemberS{Value: sk(namespace, key)},
		},
	})
	if err != nil {
		var nf *types.ResourceNotFoundException
		if errors.As(err, &nf) {
			return nil
		}
		return fmt.Errorf("metastore delete %s/%s: %w", namespace, key, err)
	}
	return nil
}

// List implements Store.
func (d *DynamoDB) List(ctx context.Context, namespace string) (map[string][]byte, error) {
	prefix := namespace + "#"
	out := make(map[string][]byte)

	paginator := dynamodb.NewQueryPaginator(d.client, &dynamodb.QueryInput{
		TableName:              aws.String(d.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: d.pk()},
			":prefix": &types.AttributeValueMemberS{Value: prefix},
		},
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("metastore list %s: %w", namespace, err)
		}
		for _, raw := range page.Items {
			var item dynamoItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				continue
			}
			out[strings.TrimPrefix(item.SK, prefix)] = []byte(item.Data)
		}
	}

	return out, nil
}
