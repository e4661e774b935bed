package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"shmboard/config"
	"shmboard/models"
)

const CollectionNetworkSnapshots = "network_snapshots"

var ErrMongoDisabled = errors.New("MongoDB not enabled")

type MongoDBService struct {
	client  *mongo.Client
	db      *mongo.Database
	enabled bool
	logger  *zap.Logger
}

// NewMongoDBService connects when enabled. A disabled config yields a no-op service.
func NewMongoDBService(cfg *config.Config, logger *zap.Logger) (*MongoDBService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.MongoDB.Enabled {
		logger.Info("MongoDB is disabled in configuration")
		return &MongoDBService{enabled: false, logger: logger}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDB.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	service := &MongoDBService{
		client:  client,
		db:      client.Database(cfg.MongoDB.Database),
		enabled: true,
		logger:  logger,
	}

	if err := service.createIndexes(ctx); err != nil {
		logger.Warn("failed to create MongoDB indexes", zap.Error(err))
	}

	logger.Info("MongoDB connected", zap.String("database", cfg.MongoDB.Database))
	return service, nil
}

func (m *MongoDBService) Enabled() bool {
	return m != nil && m.enabled
}

func (m *MongoDBService) createIndexes(ctx context.Context) error {
	_, err := m.db.Collection(CollectionNetworkSnapshots).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "timestamp", Value: -1}},
		Options: options.Index().SetName("timestamp_desc"),
	})
	return err
}

func (m *MongoDBService) Close() error {
	if !m.Enabled() || m.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

func (m *MongoDBService) InsertNetworkSnapshot(ctx context.Context, snapshot *models.NetworkSnapshot) error {
	if !m.Enabled() {
		return nil
	}
	_, err := m.db.Collection(CollectionNetworkSnapshots).InsertOne(ctx, snapshot)
	return err
}

// GetNetworkHistory returns snapshots taken after since, oldest first
func (m *MongoDBService) GetNetworkHistory(ctx context.Context, since time.Time, limit int64) ([]models.NetworkSnapshot, error) {
	if !m.Enabled() {
		return nil, ErrMongoDisabled
	}

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := m.db.Collection(CollectionNetworkSnapshots).Find(ctx, bson.M{
		"timestamp": bson.M{"$gte": since},
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var snapshots []models.NetworkSnapshot
	if err := cursor.All(ctx, &snapshots); err != nil {
		return nil, err
	}
	return snapshots, nil
}

// GetDailyNetworkAverages groups snapshots per UTC day for the last days days
func (m *MongoDBService) GetDailyNetworkAverages(ctx context.Context, days int) ([]models.DailyNetworkAverage, error) {
	if !m.Enabled() {
		return nil, ErrMongoDisabled
	}

	pipeline := dailyAveragesPipeline(time.Now().UTC().AddDate(0, 0, -days))

	cursor, err := m.db.Collection(CollectionNetworkSnapshots).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []models.DailyNetworkAverage
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// PruneNetworkSnapshots deletes snapshots older than retention
func (m *MongoDBService) PruneNetworkSnapshots(ctx context.Context, retention time.Duration) (int64, error) {
	if !m.Enabled() || retention <= 0 {
		return 0, nil
	}
	res, err := m.db.Collection(CollectionNetworkSnapshots).DeleteMany(ctx, pruneFilter(time.Now().Add(-retention)))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// dailyAveragesPipeline averages snapshots since start per UTC day. Fallback
// snapshots carry configured defaults, not observations, so they are skipped.
func dailyAveragesPipeline(start time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"timestamp": bson.M{"$gte": start},
			"source":    bson.M{"$ne": models.SourceFallback},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$timestamp"},
			},
			"avg_hourly_reward": bson.M{"$avg": "$hourly_reward"},
			"avg_probability":   bson.M{"$avg": "$activation_probability"},
			"avg_total_nodes":   bson.M{"$avg": "$total_nodes"},
			"avg_standby_nodes": bson.M{"$avg": "$standby_nodes"},
			"avg_price_usd":     bson.M{"$avg": "$spot_price.usd"},
			"samples":           bson.M{"$sum": 1},
		}}},
		{{Key: "$addFields", Value: bson.M{"date": "$_id"}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
}

func pruneFilter(cutoff time.Time) bson.M {
	return bson.M{"timestamp": bson.M{"$lt": cutoff}}
}
