package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Topic groups posts under a named subject.
type Topic struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Slug        string             `bson:"slug" json:"slug"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	// CreatedBy email of the editor who created the topic
	CreatedBy string    `bson:"createdBy" json:"created_by"`
	CreatedAt time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updated_at"`
}

// Collection returns the name of the MongoDB collection for topics
func (Topic) Collection() string {
	return "topics"
}
