package mongorepos

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/carnet/core/composition"
)

type compositionRepository struct {
	db *DB
}

func NewCompositionRepository(db *DB) composition.Repository {
	return &compositionRepository{db: db}
}

func (repo *compositionRepository) coll() *mongo.Collection {
	return repo.db.collection(compositionCollection)
}

func (repo *compositionRepository) CreateComposition(ctx context.Context, comp composition.Composition) (composition.Composition, error) {
	if _, err := repo.coll().InsertOne(ctx, comp); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return composition.Composition{}, composition.ErrNumberExists
		}
		return composition.Composition{}, errors.Wrap(err, "inserting composition")
	}
	return comp, nil
}

func (repo *compositionRepository) QueryCompositions(ctx context.Context, filter composition.QueryFilter) ([]composition.Composition, error) {
	query := bson.M{}
	if filter.ClassID != "" {
		query["classe_id"] = filter.ClassID
	}
	comps := make([]composition.Composition, 0)
	opts := options.Find().SetSort(bson.D{{Key: "classe_id", Value: 1}, {Key: "numero", Value: 1}})
	if err := findAll(ctx, repo.coll(), query, &comps, opts); err != nil {
		return nil, errors.Wrap(err, "finding compositions")
	}
	return comps, nil
}

func (repo *compositionRepository) GetCompositionByID(ctx context.Context, id string) (composition.Composition, error) {
	var comp composition.Composition
	if err := repo.coll().FindOne(ctx, bson.M{"_id": id}).Decode(&comp); err != nil {
		if err == mongo.ErrNoDocuments {
			return composition.Composition{}, composition.ErrNotFound
		}
		return composition.Composition{}, errors.Wrap(err, "finding composition")
	}
	return comp, nil
}

func (repo *compositionRepository) UpdateComposition(ctx context.Context, comp composition.Composition) (composition.Composition, error) {
	update := bson.M{"$set": bson.M{
		"numero":     comp.Number,
		"date":       comp.Date,
		"titre":      comp.Title,
		"mois":       comp.Month,
		"updated_at": comp.UpdatedAt,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated composition.Composition
	if err := repo.coll().FindOneAndUpdate(ctx, bson.M{"_id": comp.ID}, update, opts).Decode(&updated); err != nil {
		switch {
		case err == mongo.ErrNoDocuments:
			return composition.Composition{}, composition.ErrNotFound
		case mongo.IsDuplicateKeyError(err):
			return composition.Composition{}, composition.ErrNumberExists
		}
		return composition.Composition{}, errors.Wrap(err, "updating composition")
	}
	return updated, nil
}

func (repo *compositionRepository) DeleteComposition(ctx context.Context, id string) error {
	res, err := repo.coll().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting composition")
	}
	if res.DeletedCount == 0 {
		return composition.ErrNotFound
	}
	if _, err = repo.db.collection(scoreCollection).DeleteMany(ctx, bson.M{"composition_id": id}); err != nil {
		return errors.Wrap(err, "deleting composition score records")
	}
	return nil
}

func (repo *compositionRepository) NumberExists(ctx context.Context, classID string, number int, excludeID string) (bool, error) {
	filter := bson.M{"classe_id": classID, "numero": number, "_id": bson.M{"$ne": excludeID}}
	found, err := exists(ctx, repo.coll(), filter)
	return found, errors.Wrap(err, "checking composition number")
}
