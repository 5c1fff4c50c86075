package model

import "time"

// Post 帖子，UserID 外键指向作者
type Post struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"post_id"`
	UserID    string    `gorm:"type:varchar(36);index:idx_post_user;not null" json:"user_id"`
	Text      string    `gorm:"type:text" json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Post) TableName() string { return "posts" }
