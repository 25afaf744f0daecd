package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/pablogoliveira/personia-hub/internal/models"
	"github.com/pablogoliveira/personia-hub/internal/observability"
	"github.com/pablogoliveira/personia-hub/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPersonRepository stores persons in a MongoDB collection with unique
// cpf_1 and email_1 indexes
type MongoPersonRepository struct {
	collection *mongo.Collection
}

// NewMongoPersonRepository creates a repository over collection
func NewMongoPersonRepository(collection *mongo.Collection) *MongoPersonRepository {
	return &MongoPersonRepository{collection: collection}
}

func recordDBOperation(operation string, err error) {
	status := "success"
	if err != nil && !errors.Is(err, ErrNotFound) {
		status = "error"
	}
	observability.DatabaseOperations.WithLabelValues(operation, status).Inc()
}

// duplicateKeyConflict translates a unique index violation into the models
// sentinel for the violated field, or nil
func duplicateKeyConflict(err error) error {
	if err == nil || !mongo.IsDuplicateKeyError(err) {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "index: cpf_1"):
		return models.ErrCPFAlreadyExists
	case strings.Contains(msg, "index: email_1"):
		return models.ErrEmailAlreadyExists
	default:
		return nil
	}
}

// Create inserts a person
func (r *MongoPersonRepository) Create(ctx context.Context, person *models.Person) error {
	ctx, span := utils.TraceDatabaseWrite(ctx, r.collection.Name(), "insert")
	defer span.End()

	_, err := r.collection.InsertOne(ctx, person)
	recordDBOperation("person_insert", err)
	if err != nil {
		if conflict := duplicateKeyConflict(err); conflict != nil {
			return conflict
		}
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"operation": "insert"})
		return fmt.Errorf("failed to insert person: %w", err)
	}
	return nil
}

func (r *MongoPersonRepository) findOne(ctx context.Context, name string, filter bson.M) (*models.Person, error) {
	ctx, span := utils.TraceDatabaseFind(ctx, r.collection.Name(), name)
	defer span.End()

	var person models.Person
	err := r.collection.FindOne(ctx, filter).Decode(&person)
	if errors.Is(err, mongo.ErrNoDocuments) {
		err = ErrNotFound
	}
	recordDBOperation("person_find", err)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"filter": name})
		return nil, fmt.Errorf("failed to find person: %w", err)
	}
	return &person, nil
}

// FindByID returns the person with id
func (r *MongoPersonRepository) FindByID(ctx context.Context, id string) (*models.Person, error) {
	return r.findOne(ctx, "person_by_id", bson.M{"_id": id})
}

// FindByCPF returns the person with cpf
func (r *MongoPersonRepository) FindByCPF(ctx context.Context, cpf string) (*models.Person, error) {
	return r.findOne(ctx, "person_by_cpf", bson.M{"cpf": cpf})
}

// FindByEmail returns the person with email. Emails are stored lower-case.
func (r *MongoPersonRepository) FindByEmail(ctx context.Context, email string) (*models.Person, error) {
	return r.findOne(ctx, "person_by_email", bson.M{"email": strings.ToLower(email)})
}

// searchFilter matches search case-insensitively against nome, cpf and email
func searchFilter(search string) bson.M {
	search = strings.TrimSpace(search)
	if search == "" {
		return bson.M{}
	}
	pattern := bson.M{"$regex": regexp.QuoteMeta(search), "$options": "i"}
	return bson.M{"$or": bson.A{
		bson.M{"nome": pattern},
		bson.M{"cpf": pattern},
		bson.M{"email": pattern},
	}}
}

// List returns one page of persons sorted by name
func (r *MongoPersonRepository) List(ctx context.Context, filter models.PersonFilter) ([]models.Person, int64, error) {
	ctx, span := utils.TraceDatabaseFind(ctx, r.collection.Name(), "person_list")
	defer span.End()

	query := searchFilter(filter.Search)

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		recordDBOperation("person_count", err)
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"operation": "count"})
		return nil, 0, fmt.Errorf("failed to count persons: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "nome", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(filter.Offset()))
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := r.collection.Find(ctx, query, opts)
	recordDBOperation("person_list", err)
	if err != nil {
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"operation": "find"})
		return nil, 0, fmt.Errorf("failed to list persons: %w", err)
	}
	defer cursor.Close(ctx)

	persons := []models.Person{}
	if err := cursor.All(ctx, &persons); err != nil {
		return nil, 0, fmt.Errorf("failed to decode persons: %w", err)
	}
	return persons, total, nil
}

// Update replaces a stored person
func (r *MongoPersonRepository) Update(ctx context.Context, person *models.Person) error {
	ctx, span := utils.TraceDatabaseWrite(ctx, r.collection.Name(), "replace")
	defer span.End()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": person.ID}, person)
	recordDBOperation("person_update", err)
	if err != nil {
		if conflict := duplicateKeyConflict(err); conflict != nil {
			return conflict
		}
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"operation": "replace"})
		return fmt.Errorf("failed to update person: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a person
func (r *MongoPersonRepository) Delete(ctx context.Context, id string) error {
	ctx, span := utils.TraceDatabaseWrite(ctx, r.collection.Name(), "delete")
	defer span.End()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	recordDBOperation("person_delete", err)
	if err != nil {
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"operation": "delete"})
		return fmt.Errorf("failed to delete person: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
