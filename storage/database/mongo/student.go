package mongorepos

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/carnet/core/student"
)

type studentRepository struct {
	db *DB
}

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) coll() *mongo.Collection {
	return repo.db.collection(studentCollection)
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	if _, err := repo.coll().InsertOne(ctx, std); err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return std, nil
}

func (repo *studentRepository) QueryStudents(ctx context.Context, filter student.QueryFilter) ([]student.Student, error) {
	query := bson.M{}
	if filter.ClassID != "" {
		query["classe_id"] = filter.ClassID
	}
	students := make([]student.Student, 0)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	if err := findAll(ctx, repo.coll(), query, &students, opts); err != nil {
		return nil, errors.Wrap(err, "finding students")
	}
	return students, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	var std student.Student
	if err := repo.coll().FindOne(ctx, bson.M{"_id": id}).Decode(&std); err != nil {
		if err == mongo.ErrNoDocuments {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "finding student")
	}
	return std, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	set := bson.M{
		"nom":        std.LastName,
		"prenom":     std.FirstName,
		"classe_id":  std.ClassID,
		"updated_at": std.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if std.BirthDate != nil {
		set["date_naissance"] = *std.BirthDate
	} else {
		update["$unset"] = bson.M{"date_naissance": ""}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated student.Student
	if err := repo.coll().FindOneAndUpdate(ctx, bson.M{"_id": std.ID}, update, opts).Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	return updated, nil
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id string) error {
	res, err := repo.coll().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	if res.DeletedCount == 0 {
		return student.ErrNotFound
	}
	if _, err = repo.db.collection(scoreCollection).DeleteMany(ctx, bson.M{"eleve_id": id}); err != nil {
		return errors.Wrap(err, "deleting student score records")
	}
	return nil
}
