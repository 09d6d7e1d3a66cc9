package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Suryansh0910/ImageProcessor/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection  = "users"
	imagesCollection = "images"
)

// MongoService 持有 MongoDB 连接
type MongoService struct {
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration
}

func NewMongoService(ctx context.Context, cfg *config.MongoConfig) (*MongoService, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &MongoService{
		client:  client,
		db:      client.Database(cfg.Database),
		timeout: cfg.Timeout,
	}, nil
}

// EnsureIndexes 创建 email 唯一索引与图库查询索引
func (s *MongoService) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users index: %w", err)
	}

	_, err = s.db.Collection(imagesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create images index: %w", err)
	}
	return nil
}

func (s *MongoService) Users() *MongoUserRepository {
	return &MongoUserRepository{coll: s.db.Collection(usersCollection), timeout: s.timeout}
}

func (s *MongoService) Images() *MongoImageRepository {
	return &MongoImageRepository{coll: s.db.Collection(imagesCollection), timeout: s.timeout}
}

func (s *MongoService) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
