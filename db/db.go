package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"insightengine/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var MongoClient *mongo.Client
var MongoDatabase *mongo.Database
var EvaluationCollection *mongo.Collection

// ErrNotConnected is returned when report history is requested but no
// database was configured.
var ErrNotConnected = errors.New("database not connected")

// extractDBName parses the database name from the URI, defaulting to "insightengine"
func extractDBName(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "insightengine"
	}
	if u.Path != "" && u.Path != "/" {
		return u.Path[1:] // Trim leading '/'
	}
	return "insightengine"
}

// ConnectMongoDB establishes a connection to MongoDB using the provided URI
func ConnectMongoDB(uri string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Verify connection with a ping
	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	MongoClient = client
	dbName := extractDBName(uri)
	log.Printf("Using database: %s", dbName)

	MongoDatabase = client.Database(dbName)
	EvaluationCollection = MongoDatabase.Collection("evaluations")
	return nil
}

// Connected reports whether report history is available.
func Connected() bool {
	return EvaluationCollection != nil
}

// SaveEvaluation stores a completed evaluation report and returns its id.
func SaveEvaluation(ctx context.Context, report models.EvaluationReport) (primitive.ObjectID, error) {
	if !Connected() {
		return primitive.NilObjectID, ErrNotConnected
	}
	res, err := EvaluationCollection.InsertOne(ctx, report)
	if err != nil {
		log.Printf("Error saving evaluation: %v", err)
		return primitive.NilObjectID, err
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	return id, nil
}

// ListEvaluations returns the most recent evaluation reports, newest first.
func ListEvaluations(ctx context.Context, limit int64) ([]models.EvaluationReport, error) {
	if !Connected() {
		return nil, ErrNotConnected
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	opts := options.Find().SetSort(bson.M{"createdAt": -1}).SetLimit(limit)
	cursor, err := EvaluationCollection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reports []models.EvaluationReport
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// GetEvaluation retrieves one stored report by its hex id.
func GetEvaluation(ctx context.Context, hexID string) (*models.EvaluationReport, error) {
	if !Connected() {
		return nil, ErrNotConnected
	}
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return nil, fmt.Errorf("invalid evaluation id: %w", err)
	}
	var report models.EvaluationReport
	err = EvaluationCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&report)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("no evaluation found with id %s", hexID)
		}
		return nil, err
	}
	return &report, nil
}
