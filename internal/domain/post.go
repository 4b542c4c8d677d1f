package domain

import "time"

type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Author    string    `json:"author"`
	Username  string    `json:"username"`
	Thumbnail *string   `json:"thumbnail"`
	Desc      string    `json:"desc"`
	RegDate   time.Time `json:"regdate"`
}

// PostEventType names what happened to a post on the live feed.
type PostEventType string

const (
	PostCreated PostEventType = "post_created"
	PostDeleted PostEventType = "post_deleted"
)

type PostEvent struct {
	Type PostEventType `json:"type"`
	Post Post          `json:"post"`
}
