package merchant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alovak/brcode-playground/merchant/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const profileDocID = "default"

type MongoRepository struct {
	Client   *mongo.Client
	Database string
}

type profileDoc struct {
	ID             string `bson:"_id"`
	models.Profile `bson:",inline"`
}

// ConnectMongo connects to the mongodb server and verifies it answers.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	timeout := time.Second * 5
	opts := &options.ClientOptions{ServerSelectionTimeout: &timeout}

	client, err := mongo.Connect(ctx, opts.ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

func NewMongoRepository(client *mongo.Client, database string) *MongoRepository {
	return &MongoRepository{Client: client, Database: database}
}

func (r *MongoRepository) profiles() *mongo.Collection {
	return r.Client.Database(r.Database).Collection("profile")
}

func (r *MongoRepository) transactions() *mongo.Collection {
	return r.Client.Database(r.Database).Collection("transactions")
}

func (r *MongoRepository) GetProfile(ctx context.Context) (*models.Profile, error) {
	var doc profileDoc
	err := r.profiles().FindOne(ctx, bson.M{"_id": profileDocID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc.Profile, nil
}

func (r *MongoRepository) SaveProfile(ctx context.Context, profile *models.Profile) error {
	doc := profileDoc{ID: profileDocID, Profile: *profile}
	_, err := r.profiles().ReplaceOne(ctx, bson.M{"_id": profileDocID}, doc, options.Replace().SetUpsert(true))
	return err
}

func (r *MongoRepository) AddTransaction(ctx context.Context, transaction *models.Transaction) error {
	_, err := r.transactions().InsertOne(ctx, transaction)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("transaction %s exists: %w", transaction.ID, ErrConflict)
	}
	return err
}

// ListTransactions sorts on _id, which is time ordered.
func (r *MongoRepository) ListTransactions(ctx context.Context, limit int) ([]*models.Transaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.transactions().Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]*models.Transaction, 0)
	for cur.Next(ctx) {
		var t models.Transaction
		if err := cur.Decode(&t); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, cur.Err()
}

func (r *MongoRepository) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	var t models.Transaction
	err := r.transactions().FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *MongoRepository) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx, readpref.Primary())
}

func (r *MongoRepository) Close() error {
	return r.Client.Disconnect(context.Background())
}
