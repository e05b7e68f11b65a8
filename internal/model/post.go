package model

import "time"

// Media is an image or video attached to a post
type Media struct {
	URL    string `json:"url"`
	FileID string `json:"fileId"`
}

// Post is a news article
type Post struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Images    []Media   `json:"images"`
	Videos    []Media   `json:"videos"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Cover returns the first image URL, or "" when the post has none
func (p *Post) Cover() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}
