package models

import "time"

// Rating is a user's star rating of an external catalog book.
// At most one row exists per (book_id, user_id); writes are upserts.
type Rating struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	BookID    string    `json:"book_id" gorm:"size:64;not null;uniqueIndex:idx_ratings_book_user,priority:1"`
	UserID    string    `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_ratings_book_user,priority:2;index"`
	Stars     int       `json:"stars" gorm:"not null;check:chk_ratings_stars,stars >= 1 AND stars <= 5"`
	Comment   *string   `json:"comment,omitempty" gorm:"type:text"`
	RatedAt   time.Time `json:"rated_at" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Associations
	User User `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
}

func (Rating) TableName() string {
	return "ratings"
}
