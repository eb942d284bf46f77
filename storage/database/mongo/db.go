// Package mongorepos implements the repositories on MongoDB.
package mongorepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/trezcool/carnet/core"
)

const (
	classCollection       = "classes"
	studentCollection     = "eleves"
	compositionCollection = "compositions"
	scoreCollection       = "notes"
)

// DB holds the client and the app database.
type DB struct {
	client   *mongo.Client
	database *mongo.Database
}

// Open connects to MongoDB, pings the primary and ensures the indexes exist.
func Open(ctx context.Context, conf *core.Config) (*DB, error) {
	connectCtx, cancel := context.WithTimeout(ctx, conf.Database.Timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(conf.Database.MongoURI).
		SetConnectTimeout(conf.Database.Timeout).
		SetServerSelectionTimeout(conf.Database.Timeout).
		SetAppName(conf.AppName)
	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to MongoDB")
	}
	if err = client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "pinging MongoDB")
	}

	db := &DB{client: client, database: client.Database(conf.Database.Name)}
	if err = db.ensureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return db, nil
}

func (db *DB) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return db.client.Disconnect(ctx)
}

func (db *DB) collection(name string) *mongo.Collection {
	return db.database.Collection(name)
}

func (db *DB) ensureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		studentCollection: {
			{Keys: bson.D{{Key: "classe_id", Value: 1}, {Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}},
		},
		compositionCollection: {
			{
				Keys:    bson.D{{Key: "classe_id", Value: 1}, {Key: "numero", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		scoreCollection: {
			{
				Keys:    bson.D{{Key: "composition_id", Value: 1}, {Key: "eleve_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "eleve_id", Value: 1}}},
		},
	}
	for coll, models := range indexes {
		if _, err := db.collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrapf(err, "creating %s indexes", coll)
		}
	}
	return nil
}

// findAll decodes every document matched by filter into results (a pointer to a slice).
func findAll(ctx context.Context, coll *mongo.Collection, filter interface{}, results interface{}, opts ...*options.FindOptions) error {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return err
	}
	return cursor.All(ctx, results)
}

func exists(ctx context.Context, coll *mongo.Collection, filter interface{}) (bool, error) {
	n, err := coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	return n > 0, err
}
