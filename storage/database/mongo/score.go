package mongorepos

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/carnet/core/score"
)

type scoreRepository struct {
	db *DB
}

func NewScoreRepository(db *DB) score.Repository {
	return &scoreRepository{db: db}
}

func (repo *scoreRepository) coll() *mongo.Collection {
	return repo.db.collection(scoreCollection)
}

func (repo *scoreRepository) CreateScore(ctx context.Context, sc score.Score) (score.Score, error) {
	if _, err := repo.coll().InsertOne(ctx, sc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return score.Score{}, score.ErrExists
		}
		return score.Score{}, errors.Wrap(err, "inserting score record")
	}
	return sc, nil
}

func (repo *scoreRepository) QueryScores(ctx context.Context, filter score.QueryFilter) ([]score.Score, error) {
	conds := bson.A{}
	if filter.CompositionID != "" {
		conds = append(conds, bson.M{"composition_id": filter.CompositionID})
	}
	if filter.StudentID != "" {
		conds = append(conds, bson.M{"eleve_id": filter.StudentID})
	}
	if filter.CompositionIDs != nil {
		conds = append(conds, bson.M{"composition_id": bson.M{"$in": filter.CompositionIDs}})
	}
	query := bson.M{}
	if len(conds) > 0 {
		query["$and"] = conds
	}

	scores := make([]score.Score, 0)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	if err := findAll(ctx, repo.coll(), query, &scores, opts); err != nil {
		return nil, errors.Wrap(err, "finding score records")
	}
	return scores, nil
}

func (repo *scoreRepository) GetScoreByID(ctx context.Context, id string) (score.Score, error) {
	var sc score.Score
	if err := repo.coll().FindOne(ctx, bson.M{"_id": id}).Decode(&sc); err != nil {
		if err == mongo.ErrNoDocuments {
			return score.Score{}, score.ErrNotFound
		}
		return score.Score{}, errors.Wrap(err, "finding score record")
	}
	return sc, nil
}

func (repo *scoreRepository) UpdateScore(ctx context.Context, sc score.Score) (score.Score, error) {
	update := bson.M{"$set": bson.M{
		"etude_texte": sc.TextStudy,
		"aem":         sc.AEM,
		"dictee":      sc.Dictation,
		"math":        sc.Math,
		"updated_at":  sc.UpdatedAt,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated score.Score
	if err := repo.coll().FindOneAndUpdate(ctx, bson.M{"_id": sc.ID}, update, opts).Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return score.Score{}, score.ErrNotFound
		}
		return score.Score{}, errors.Wrap(err, "updating score record")
	}
	return updated, nil
}

func (repo *scoreRepository) DeleteScore(ctx context.Context, id string) error {
	res, err := repo.coll().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting score record")
	}
	if res.DeletedCount == 0 {
		return score.ErrNotFound
	}
	return nil
}

func (repo *scoreRepository) ScoreExists(ctx context.Context, compositionID, studentID string) (bool, error) {
	found, err := exists(ctx, repo.coll(), bson.M{"composition_id": compositionID, "eleve_id": studentID})
	return found, errors.Wrap(err, "checking score record")
}
