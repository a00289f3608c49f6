package repository

import (
	"context"
	"errors"
	"fmt"

	"averix/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection  = "users"
	stakesCollection = "stakes"
	tradesCollection = "trades"
)

// Mongo groups the collection-backed repositories of one database.
type Mongo struct {
	Users  *MongoUsers
	Stakes *MongoStakes
	Trades *MongoTrades
}

// NewMongo binds the repositories to dbName and makes sure the unique indexes exist.
func NewMongo(ctx context.Context, client *mongo.Client, dbName string) (*Mongo, error) {
	db := client.Database(dbName)
	m := &Mongo{
		Users:  &MongoUsers{coll: db.Collection(usersCollection)},
		Stakes: &MongoStakes{coll: db.Collection(stakesCollection)},
		Trades: &MongoTrades{coll: db.Collection(tradesCollection)},
	}

	indexes := map[*mongo.Collection][]mongo.IndexModel{
		m.Users.coll: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		m.Stakes.coll: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "is_active", Value: 1}}},
		},
		m.Trades.coll: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}
	for coll, idx := range indexes {
		if _, err := coll.Indexes().CreateMany(ctx, idx); err != nil {
			return nil, fmt.Errorf("create indexes on %s: %w", coll.Name(), err)
		}
	}

	return m, nil
}

type MongoUsers struct {
	coll *mongo.Collection
}

func (r *MongoUsers) Create(ctx context.Context, u *models.User) error {
	if err := checkRecord(u); err != nil {
		return err
	}
	if _, err := r.coll.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *MongoUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *MongoUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUsers) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := r.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := checkRecord(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// MoveToStake shifts amount from the balance to the staked total in a single
// update that only matches while the balance still covers amount.
func (r *MongoUsers) MoveToStake(ctx context.Context, id string, amount float64) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id, "tft_balance": bson.M{"$gte": amount}},
		bson.M{"$inc": bson.M{"tft_balance": -amount, "staked_amount": amount}},
	)
	if err != nil {
		return fmt.Errorf("move balance to stake: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrConditionFailed
	}
	return nil
}

func (r *MongoUsers) ReleaseStake(ctx context.Context, id string, amount float64) error {
	return r.inc(ctx, id, bson.M{"tft_balance": amount, "staked_amount": -amount})
}

func (r *MongoUsers) RecordTrade(ctx context.Context, id string, pnl float64, successful bool) error {
	won := 0
	if successful {
		won = 1
	}
	return r.inc(ctx, id, bson.M{
		"total_trades":      1,
		"successful_trades": won,
		"tft_balance":       pnl,
	})
}

func (r *MongoUsers) inc(ctx context.Context, id string, fields bson.M) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$inc": fields})
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type MongoStakes struct {
	coll *mongo.Collection
}

func (r *MongoStakes) Create(ctx context.Context, s *models.Stake) error {
	if err := checkRecord(s); err != nil {
		return err
	}
	if _, err := r.coll.InsertOne(ctx, s); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert stake: %w", err)
	}
	return nil
}

func (r *MongoStakes) ListByUser(ctx context.Context, userID string, activeOnly bool, limit int64) ([]models.Stake, error) {
	filter := bson.M{"user_id": userID}
	if activeOnly {
		filter["is_active"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find stakes: %w", err)
	}
	defer cur.Close(ctx)

	stakes := []models.Stake{}
	if err := cur.All(ctx, &stakes); err != nil {
		return nil, fmt.Errorf("decode stakes: %w", err)
	}
	for i := range stakes {
		if err := checkRecord(&stakes[i]); err != nil {
			return nil, err
		}
	}
	return stakes, nil
}

type MongoTrades struct {
	coll *mongo.Collection
}

func (r *MongoTrades) Create(ctx context.Context, t *models.Trade) error {
	if err := checkRecord(t); err != nil {
		return err
	}
	if _, err := r.coll.InsertOne(ctx, t); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

func (r *MongoTrades) ListRecent(ctx context.Context, userID string, limit int64) ([]models.Trade, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cur, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find trades: %w", err)
	}
	defer cur.Close(ctx)

	trades := []models.Trade{}
	if err := cur.All(ctx, &trades); err != nil {
		return nil, fmt.Errorf("decode trades: %w", err)
	}
	for i := range trades {
		if err := checkRecord(&trades[i]); err != nil {
			return nil, err
		}
	}
	return trades, nil
}
