package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/example/restaurant-pos/internal/domain/actor"
	"github.com/example/restaurant-pos/internal/domain/cash"
	"github.com/example/restaurant-pos/internal/domain/menu"
	"github.com/example/restaurant-pos/internal/domain/order"
	"github.com/example/restaurant-pos/internal/domain/staff"
	"github.com/example/restaurant-pos/internal/domain/table"
)

// ConnectDynamo builds a DynamoDB client from the ambient AWS configuration.
func ConnectDynamo(ctx context.Context) (*dynamodb.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg), nil
}

// Tables are single-key (id) documents; filtered listings scan with filter
// expressions. The venue-scale record counts make scans acceptable.

// sortableTime is a fixed-width RFC 3339 layout. Timestamps are compared as
// strings in filter expressions, so every stored instant must keep the full
// nine fractional digits for lexical order to match chronological order.
const sortableTime = "2006-01-02T15:04:05.000000000Z07:00"

// DynamoOrderStore persists orders as whole documents.
type DynamoOrderStore struct {
	client    *dynamodb.Client
	tableName string
}

func NewDynamoOrderStore(client *dynamodb.Client, tableName string) *DynamoOrderStore {
	return &DynamoOrderStore{client: client, tableName: tableName}
}

type dynamoOrder struct {
	ID        string `dynamodbav:"id"`
	Status    string `dynamodbav:"status"`
	UpdatedAt string `dynamodbav:"updated_at"`
	CreatedAt string `dynamodbav:"created_at"`
	Data      []byte `dynamodbav:"data"`
}

func (s *DynamoOrderStore) put(ctx context.Context, o *order.Order) error {
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshal order data: %w", err)
	}
	av, err := attributevalue.MarshalMap(dynamoOrder{
		ID:        o.ID,
		Status:    string(o.Status),
		UpdatedAt: o.UpdatedAt.UTC().Format(sortableTime),
		CreatedAt: o.CreatedAt.UTC().Format(sortableTime),
		Data:      data,
	})
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("put order: %w", err)
	}
	return nil
}

func (s *DynamoOrderStore) Create(ctx context.Context, o *order.Order) error {
	return s.put(ctx, o)
}

func (s *DynamoOrderStore) Save(ctx context.Context, o *order.Order) error {
	return s.put(ctx, o)
}

func (s *DynamoOrderStore) Get(ctx context.Context, id string) (*order.Order, bool, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, false, fmt.Errorf("get order: %w", err)
	}
	if result.Item == nil {
		return nil, false, nil
	}
	o, err := unmarshalOrderItem(result.Item)
	if err != nil {
		return nil, false, err
	}
	return o, true, nil
}

func (s *DynamoOrderStore) List(ctx context.Context) ([]*order.Order, error) {
	return s.scan(ctx, &dynamodb.ScanInput{TableName: aws.String(s.tableName)})
}

func (s *DynamoOrderStore) ListByStatus(ctx context.Context, status order.Status) ([]*order.Order, error) {
	return s.scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(s.tableName),
		FilterExpression: aws.String("#st = :status"),
		ExpressionAttributeNames: map[string]string{
			"#st": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(status)},
		},
	})
}

func (s *DynamoOrderStore) ListCompletedBetween(ctx context.Context, start, end time.Time) ([]*order.Order, error) {
	return s.scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(s.tableName),
		FilterExpression: aws.String("#st = :status AND #ua BETWEEN :start AND :end"),
		ExpressionAttributeNames: map[string]string{
			"#st": "status",
			"#ua": "updated_at",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(order.StatusCompleted)},
			":start":  &types.AttributeValueMemberS{Value: start.UTC().Format(sortableTime)},
			":end":    &types.AttributeValueMemberS{Value: end.UTC().Format(sortableTime)},
		},
	})
}

func (s *DynamoOrderStore) scan(ctx context.Context, input *dynamodb.ScanInput) ([]*order.Order, error) {
	var out []*order.Order
	paginator := dynamodb.NewScanPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan orders: %w", err)
		}
		for _, item := range page.Items {
			o, err := unmarshalOrderItem(item)
			if err != nil {
				return nil, err
			}
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func unmarshalOrderItem(item map[string]types.AttributeValue) (*order.Order, error) {
	var rec dynamoOrder
	if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal order item: %w", err)
	}
	var o order.Order
	if err := json.Unmarshal(rec.Data, &o); err != nil {
		return nil, fmt.Errorf("decode order data: %w", err)
	}
	return &o, nil
}

// DynamoTableStore persists dining tables.
type DynamoTableStore struct {
	client    *dynamodb.Client
	tableName string
}

func NewDynamoTableStore(client *dynamodb.Client, tableName string) *DynamoTableStore {
	return &DynamoTableStore{client: client, tableName: tableName}
}

type dynamoTable struct {
	ID             string `dynamodbav:"id"`
	Number         int    `dynamodbav:"number"`
	Seats          int    `dynamodbav:"seats"`
	Status         string `dynamodbav:"status"`
	CurrentOrderID string `dynamodbav:"current_order_id,omitempty"`
}

func (s *DynamoTableStore) put(ctx context.Context, t *table.Table) error {
	av, err := attributevalue.MarshalMap(dynamoTable{
		ID:             t.ID,
		Number:         t.Number,
		Seats:          t.Seats,
		Status:         string(t.Status),
		CurrentOrderID: t.CurrentOrderID,
	})
	if err != nil {
		return fmt.Errorf("marshal table: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("put table: %w", err)
	}
	return nil
}

func (s *DynamoTableStore) Create(ctx context.Context, t *table.Table) error {
	return s.put(ctx, t)
}

func (s *DynamoTableStore) Save(ctx context.Context, t *table.Table) error {
	return s.put(ctx, t)
}

func (s *DynamoTableStore) Get(ctx context.Context, id string) (*table.Table, bool, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, false, fmt.Errorf("get table: %w", err)
	}
	if result.Item == nil {
		return nil, false, nil
	}
	var rec dynamoTable
	if err := attributevalue.UnmarshalMap(result.Item, &rec); err != nil {
		return nil, false, fmt.Errorf("unmarshal table: %w", err)
	}
	return &table.Table{
		ID:             rec.ID,
		Number:         rec.Number,
		Seats:          rec.Seats,
		Status:         table.TableStatus(rec.Status),
		CurrentOrderID: rec.CurrentOrderID,
	}, true, nil
}

func (s *DynamoTableStore) List(ctx context.Context) ([]*table.Table, error) {
	var out []*table.Table
	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(s.tableName),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan tables: %w", err)
		}
		for _, item := range page.Items {
			var rec dynamoTable
			if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
				return nil, fmt.Errorf("unmarshal table: %w", err)
			}
			out = append(out, &table.Table{
				ID:             rec.ID,
				Number:         rec.Number,
				Seats:          rec.Seats,
				Status:         table.TableStatus(rec.Status),
				CurrentOrderID: rec.CurrentOrderID,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

// DynamoMenuStore persists menu items. Stock lives in its own numeric
// attribute so AdjustStock can use an atomic ADD update.
type DynamoMenuStore struct {
	client    *dynamodb.Client
	tableName string
}

func NewDynamoMenuStore(client *dynamodb.Client, tableName string) *DynamoMenuStore {
	return &DynamoMenuStore{client: client, tableName: tableName}
}

type dynamoMenuItem struct {
	ID          string  `dynamodbav:"id"`
	Name        string  `dynamodbav:"name"`
	Description string  `dynamodbav:"description,omitempty"`
	Category    string  `dynamodbav:"category,omitempty"`
	Price       float64 `dynamodbav:"price"`
	Stock       int     `dynamodbav:"stock"`
	Available   bool    `dynamodbav:"available"`
}

func (s *DynamoMenuStore) put(ctx context.Context, m *menu.MenuItem) error {
	av, err := attributevalue.MarshalMap(dynamoMenuItem{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Category:    m.Category,
		Price:       m.Price,
		Stock:       m.Stock,
		Available:   m.Available,
	})
	if err != nil {
		return fmt.Errorf("marshal menu item: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("put menu item: %w", err)
	}
	return nil
}

func (s *DynamoMenuStore) Create(ctx context.Context, m *menu.MenuItem) error {
	return s.put(ctx, m)
}

func (s *DynamoMenuStore) Save(ctx context.Context, m *menu.MenuItem) error {
	return s.put(ctx, m)
}

func (s *DynamoMenuStore) Get(ctx context.Context, id string) (*menu.MenuItem, bool, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, false, fmt.Errorf("get menu item: %w", err)
	}
	if result.Item == nil {
		return nil, false, nil
	}
	var rec dynamoMenuItem
	if err := attributevalue.UnmarshalMap(result.Item, &rec); err != nil {
		return nil, false, fmt.Errorf("unmarshal menu item: %w", err)
	}
	return menuItemFromRecord(rec), true, nil
}

func (s *DynamoMenuStore) List(ctx context.Context) ([]*menu.MenuItem, error) {
	var out []*menu.MenuItem
	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(s.tableName),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan menu items: %w", err)
		}
		for _, item := range page.Items {
			var rec dynamoMenuItem
			if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
				return nil, fmt.Errorf("unmarshal menu item: %w", err)
			}
			out = append(out, menuItemFromRecord(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *DynamoMenuStore) AdjustStock(ctx context.Context, id string, delta int) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression: aws.String("ADD #stock :delta"),
		ExpressionAttributeNames: map[string]string{
			"#stock": "stock",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":delta": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", delta)},
		},
	})
	if err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}
	return nil
}

func menuItemFromRecord(rec dynamoMenuItem) *menu.MenuItem {
	return &menu.MenuItem{
		ID:          rec.ID,
		Name:        rec.Name,
		Description: rec.Description,
		Category:    rec.Category,
		Price:       rec.Price,
		Stock:       rec.Stock,
		Available:   rec.Available,
	}
}

// DynamoMovementStore persists the cash ledger.
type DynamoMovementStore struct {
	client    *dynamodb.Client
	tableName string
}

func NewDynamoMovementStore(client *dynamodb.Client, tableName string) *DynamoMovementStore {
	return &DynamoMovementStore{client: client, tableName: tableName}
}

type dynamoMovement struct {
	ID          string  `dynamodbav:"id"`
	Type        string  `dynamodbav:"type"`
	Amount      float64 `dynamodbav:"amount"`
	Description string  `dynamodbav:"description"`
	UserID      string  `dynamodbav:"user_id"`
	Date        string  `dynamodbav:"date"`
}

func (s *DynamoMovementStore) Create(ctx context.Context, m *cash.Movement) error {
	av, err := attributevalue.MarshalMap(dynamoMovement{
		ID:          m.ID,
		Type:        string(m.Type),
		Amount:      m.Amount,
		Description: m.Description,
		UserID:      m.UserID,
		Date:        m.Date.UTC().Format(sortableTime),
	})
	if err != nil {
		return fmt.Errorf("marshal movement: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("put movement: %w", err)
	}
	return nil
}

func (s *DynamoMovementStore) ListBetween(ctx context.Context, start, end time.Time, userID string) ([]*cash.Movement, error) {
	filter := "#date BETWEEN :start AND :end"
	names := map[string]string{"#date": "date"}
	values := map[string]types.AttributeValue{
		":start": &types.AttributeValueMemberS{Value: start.UTC().Format(sortableTime)},
		":end":   &types.AttributeValueMemberS{Value: end.UTC().Format(sortableTime)},
	}
	if userID != "" {
		filter += " AND #uid = :uid"
		names["#uid"] = "user_id"
		values[":uid"] = &types.AttributeValueMemberS{Value: userID}
	}

	var out []*cash.Movement
	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName:                 aws.String(s.tableName),
		FilterExpression:          aws.String(filter),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan movements: %w", err)
		}
		for _, item := range page.Items {
			var rec dynamoMovement
			if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
				return nil, fmt.Errorf("unmarshal movement: %w", err)
			}
			date, err := time.Parse(sortableTime, rec.Date)
			if err != nil {
				return nil, fmt.Errorf("parse movement date: %w", err)
			}
			out = append(out, &cash.Movement{
				ID:          rec.ID,
				Type:        cash.MovementType(rec.Type),
				Amount:      rec.Amount,
				Description: rec.Description,
				UserID:      rec.UserID,
				Date:        date,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

// DynamoCutStore persists cash cuts as whole documents.
type DynamoCutStore struct {
	client    *dynamodb.Client
	tableName string
}

func NewDynamoCutStore(client *dynamodb.Client, tableName string) *DynamoCutStore {
	return &DynamoCutStore{client: client, tableName: tableName}
}

type dynamoCut struct {
	ID        string `dynamodbav:"id"`
	Type      string `dynamodbav:"type"`
	CashierID string `dynamodbav:"cashier_id,omitempty"`
	CutDate   string `dynamodbav:"cut_date"`
	Data      []byte `dynamodbav:"data"`
}

func (s *DynamoCutStore) Create(ctx context.Context, c *cash.Cut) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cut data: %w", err)
	}
	av, err := attributevalue.MarshalMap(dynamoCut{
		ID:        c.ID,
		Type:      string(c.Type),
		CashierID: c.CashierID,
		CutDate:   c.CutDate.UTC().Format(sortableTime),
		Data:      data,
	})
	if err != nil {
		return fmt.Errorf("marshal cut: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("put cut: %w", err)
	}
	return nil
}

func (s *DynamoCutStore) List(ctx context.Context) ([]*cash.Cut, error) {
	out, err := s.scan(ctx, &dynamodb.ScanInput{TableName: aws.String(s.tableName)})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CutDate.After(out[j].CutDate) })
	return out, nil
}

func (s *DynamoCutStore) LastCashierCut(ctx context.Context, cashierID string) (*cash.Cut, bool, error) {
	cuts, err := s.scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(s.tableName),
		FilterExpression: aws.String("#ty = :type AND #cid = :cid"),
		ExpressionAttributeNames: map[string]string{
			"#ty":  "type",
			"#cid": "cashier_id",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":type": &types.AttributeValueMemberS{Value: string(cash.CutCashier)},
			":cid":  &types.AttributeValueMemberS{Value: cashierID},
		},
	})
	if err != nil {
		return nil, false, err
	}
	var last *cash.Cut
	for _, c := range cuts {
		if last == nil || c.CutDate.After(last.CutDate) {
			last = c
		}
	}
	return last, last != nil, nil
}

func (s *DynamoCutStore) scan(ctx context.Context, input *dynamodb.ScanInput) ([]*cash.Cut, error) {
	var out []*cash.Cut
	paginator := dynamodb.NewScanPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan cuts: %w", err)
		}
		for _, item := range page.Items {
			var rec dynamoCut
			if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
				return nil, fmt.Errorf("unmarshal cut: %w", err)
			}
			var c cash.Cut
			if err := json.Unmarshal(rec.Data, &c); err != nil {
				return nil, fmt.Errorf("decode cut data: %w", err)
			}
			out = append(out, &c)
		}
	}
	return out, nil
}

// DynamoStaffStore persists staff accounts.
type DynamoStaffStore struct {
	client    *dynamodb.Client
	tableName string
}

func NewDynamoStaffStore(client *dynamodb.Client, tableName string) *DynamoStaffStore {
	return &DynamoStaffStore{client: client, tableName: tableName}
}

type dynamoStaff struct {
	ID           string `dynamodbav:"id"`
	Name         string `dynamodbav:"name"`
	Email        string `dynamodbav:"email"`
	PasswordHash string `dynamodbav:"password_hash"`
	Role         string `dynamodbav:"role"`
}

func (s *DynamoStaffStore) Create(ctx context.Context, u *staff.User) error {
	av, err := attributevalue.MarshalMap(dynamoStaff{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
	})
	if err != nil {
		return fmt.Errorf("marshal staff: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("put staff: %w", err)
	}
	return nil
}

func (s *DynamoStaffStore) Get(ctx context.Context, id string) (*staff.User, bool, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, false, fmt.Errorf("get staff: %w", err)
	}
	if result.Item == nil {
		return nil, false, nil
	}
	var rec dynamoStaff
	if err := attributevalue.UnmarshalMap(result.Item, &rec); err != nil {
		return nil, false, fmt.Errorf("unmarshal staff: %w", err)
	}
	return staffFromRecord(rec), true, nil
}

func (s *DynamoStaffStore) GetByEmail(ctx context.Context, email string) (*staff.User, bool, error) {
	users, err := s.scanFiltered(ctx, "#email = :email",
		map[string]string{"#email": "email"},
		map[string]types.AttributeValue{
			":email": &types.AttributeValueMemberS{Value: email},
		})
	if err != nil {
		return nil, false, err
	}
	if len(users) == 0 {
		return nil, false, nil
	}
	return users[0], true, nil
}

func (s *DynamoStaffStore) List(ctx context.Context) ([]*staff.User, error) {
	users, err := s.scanFiltered(ctx, "", nil, nil)
	if err != nil {
		return nil, err
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

func (s *DynamoStaffStore) scanFiltered(ctx context.Context, filter string, names map[string]string, values map[string]types.AttributeValue) ([]*staff.User, error) {
	input := &dynamodb.ScanInput{TableName: aws.String(s.tableName)}
	if filter != "" {
		input.FilterExpression = aws.String(filter)
		input.ExpressionAttributeNames = names
		input.ExpressionAttributeValues = values
	}

	var out []*staff.User
	paginator := dynamodb.NewScanPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan staff: %w", err)
		}
		for _, item := range page.Items {
			var rec dynamoStaff
			if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
				return nil, fmt.Errorf("unmarshal staff: %w", err)
			}
			out = append(out, staffFromRecord(rec))
		}
	}
	return out, nil
}

func staffFromRecord(rec dynamoStaff) *staff.User {
	return &staff.User{
		ID:           rec.ID,
		Name:         rec.Name,
		Email:        rec.Email,
		PasswordHash: rec.PasswordHash,
		Role:         actor.Role(rec.Role),
	}
}
