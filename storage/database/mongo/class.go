package mongorepos

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/carnet/core/class"
)

type classRepository struct {
	db *DB
}

func NewClassRepository(db *DB) class.Repository {
	return &classRepository{db: db}
}

func (repo *classRepository) coll() *mongo.Collection {
	return repo.db.collection(classCollection)
}

func (repo *classRepository) CreateClass(ctx context.Context, cls class.Class) (class.Class, error) {
	if _, err := repo.coll().InsertOne(ctx, cls); err != nil {
		return class.Class{}, errors.Wrap(err, "inserting class")
	}
	return cls, nil
}

func (repo *classRepository) QueryClasses(ctx context.Context) ([]class.Class, error) {
	classes := make([]class.Class, 0)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	if err := findAll(ctx, repo.coll(), bson.M{}, &classes, opts); err != nil {
		return nil, errors.Wrap(err, "finding classes")
	}
	return classes, nil
}

func (repo *classRepository) GetClassByID(ctx context.Context, id string) (class.Class, error) {
	var cls class.Class
	if err := repo.coll().FindOne(ctx, bson.M{"_id": id}).Decode(&cls); err != nil {
		if err == mongo.ErrNoDocuments {
			return class.Class{}, class.ErrNotFound
		}
		return class.Class{}, errors.Wrap(err, "finding class")
	}
	return cls, nil
}

func (repo *classRepository) UpdateClass(ctx context.Context, cls class.Class) (class.Class, error) {
	update := bson.M{"$set": bson.M{
		"nom":            cls.School,
		"niveau":         cls.Level,
		"annee_scolaire": cls.SchoolYear,
		"enseignant":     cls.Teacher,
		"updated_at":     cls.UpdatedAt,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated class.Class
	if err := repo.coll().FindOneAndUpdate(ctx, bson.M{"_id": cls.ID}, update, opts).Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return class.Class{}, class.ErrNotFound
		}
		return class.Class{}, errors.Wrap(err, "updating class")
	}
	return updated, nil
}

// DeleteClass removes the score records, compositions and students of the class before the class itself.
func (repo *classRepository) DeleteClass(ctx context.Context, id string) error {
	if _, err := repo.GetClassByID(ctx, id); err != nil {
		return err
	}

	var comps []struct {
		ID string `bson:"_id"`
	}
	err := findAll(ctx, repo.db.collection(compositionCollection), bson.M{"classe_id": id}, &comps,
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return errors.Wrap(err, "finding class compositions")
	}
	compIDs := make([]string, len(comps))
	for i, c := range comps {
		compIDs[i] = c.ID
	}

	var students []struct {
		ID string `bson:"_id"`
	}
	err = findAll(ctx, repo.db.collection(studentCollection), bson.M{"classe_id": id}, &students,
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return errors.Wrap(err, "finding class students")
	}
	studentIDs := make([]string, len(students))
	for i, s := range students {
		studentIDs[i] = s.ID
	}

	scoreFilter := bson.M{"$or": bson.A{
		bson.M{"composition_id": bson.M{"$in": compIDs}},
		bson.M{"eleve_id": bson.M{"$in": studentIDs}},
	}}
	if _, err = repo.db.collection(scoreCollection).DeleteMany(ctx, scoreFilter); err != nil {
		return errors.Wrap(err, "deleting class score records")
	}
	if _, err = repo.db.collection(compositionCollection).DeleteMany(ctx, bson.M{"classe_id": id}); err != nil {
		return errors.Wrap(err, "deleting class compositions")
	}
	if _, err = repo.db.collection(studentCollection).DeleteMany(ctx, bson.M{"classe_id": id}); err != nil {
		return errors.Wrap(err, "deleting class students")
	}
	if _, err = repo.coll().DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return nil
}
