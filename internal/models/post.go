package models

import "time"

type Post struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	DatePosted time.Time `json:"date_posted"`
	UserID     int64     `json:"user_id"`
	// Заполняется при выборке (JOIN users)
	Author      string `json:"author,omitempty"`
	AuthorImage string `json:"author_image,omitempty"`
}
