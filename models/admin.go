package models

import "time"

// Admin is a registry entry for a user allowed to use the admin API.
// Collection: admins (document id = uid)
type Admin struct {
	UID       string    `bson:"_id" firestore:"-" json:"uid"`
	Email     string    `bson:"email" firestore:"email" json:"email"`
	CreatedAt time.Time `bson:"createdAt" firestore:"createdAt" json:"createdAt"`
	AddedBy   string    `bson:"addedBy" firestore:"addedBy" json:"addedBy"`
}
