package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ImageTypeUpload    = "upload"
	ImageTypeProcessed = "processed"
)

// Image 图库中的图片元数据
type Image struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	UserID        string              `bson:"userId" json:"userId"`
	OriginalName  string              `bson:"originalName" json:"originalName"`
	Filename      string              `bson:"filename" json:"filename"`
	Path          string              `bson:"path" json:"path"`
	Size          int64               `bson:"size" json:"size"`
	Width         int                 `bson:"width,omitempty" json:"width,omitempty"`
	Height        int                 `bson:"height,omitempty" json:"height,omitempty"`
	Format        string              `bson:"format,omitempty" json:"format,omitempty"`
	Type          string              `bson:"type" json:"type"`
	OriginalImage *primitive.ObjectID `bson:"originalImage,omitempty" json:"originalImage,omitempty"`
	Operation     string              `bson:"operation,omitempty" json:"operation,omitempty"`
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
}
