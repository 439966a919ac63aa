package models

import "time"

// FavoriteBook is one member of a user's favorites set.
// Insertion order is the autoincrement ID; (user_id, book_id) is unique.
type FavoriteBook struct {
	ID      int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID  string    `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_book,priority:1" json:"user_id"`
	BookID  string    `gorm:"size:64;not null;uniqueIndex:idx_favorites_user_book,priority:2" json:"book_id"`
	AddedAt time.Time `gorm:"autoCreateTime" json:"added_at"`

	// Associations
	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"-"`
}

func (FavoriteBook) TableName() string {
	return "favorite_books"
}
