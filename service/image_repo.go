package service

import (
	"context"
	"errors"
	"time"

	"github.com/Suryansh0910/ImageProcessor/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ImageRepository 图库元数据存储
type ImageRepository interface {
	Create(ctx context.Context, img *model.Image) error
	FindByID(ctx context.Context, id string) (*model.Image, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Image, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, id string) error
}

type MongoImageRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func (r *MongoImageRepository) Create(ctx context.Context, img *model.Image) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if img.ID.IsZero() {
		img.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, img)
	return err
}

// FindByID 未找到或 ID 非法时返回 nil, nil
func (r *MongoImageRepository) FindByID(ctx context.Context, id string) (*model.Image, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var img model.Image
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&img); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &img, nil
}

// ListByUser 按创建时间倒序
func (r *MongoImageRepository) ListByUser(ctx context.Context, userID string) ([]*model.Image, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}

	images := make([]*model.Image, 0)
	if err := cur.All(ctx, &images); err != nil {
		return nil, err
	}
	return images, nil
}

func (r *MongoImageRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return r.coll.CountDocuments(ctx, bson.M{"userId": userID})
}

func (r *MongoImageRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrImageNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrImageNotFound
	}
	return nil
}
