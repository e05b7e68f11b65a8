package api

import (
	"context"
	"net/http"

	"github.com/existflow/scic/internal/form"
	"github.com/existflow/scic/internal/model"
)

// PostMedia lists local files to upload with a post, and for updates the
// ids of existing media to drop
type PostMedia struct {
	Images       []string
	Videos       []string
	RemoveImages []string
	RemoveVideos []string
}

// ListPosts returns published posts (public)
func (c *Client) ListPosts(ctx context.Context) ([]model.Post, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.resourceURL(c.cfg.PostsPath), nil, "")
	if err != nil {
		return nil, err
	}
	resp, err := c.sendPublic(req)
	if err != nil {
		return nil, err
	}

	var out []model.Post
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPost returns one post (public)
func (c *Client) GetPost(ctx context.Context, id string) (*model.Post, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.resourceURL(c.cfg.PostsPath, id), nil, "")
	if err != nil {
		return nil, err
	}
	resp, err := c.sendPublic(req)
	if err != nil {
		return nil, err
	}

	var out model.Post
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePost publishes a post with optional images and videos (admin)
func (c *Client) CreatePost(ctx context.Context, p form.Post, media PostMedia) (*model.Post, error) {
	return c.sendPost(ctx, http.MethodPost, c.resourceURL(c.cfg.PostsPath), p, media, false)
}

// UpdatePost replaces title and content, adds new media and removes the
// listed existing media (admin)
func (c *Client) UpdatePost(ctx context.Context, id string, p form.Post, media PostMedia) (*model.Post, error) {
	return c.sendPost(ctx, http.MethodPut, c.resourceURL(c.cfg.PostsPath, id), p, media, true)
}

func (c *Client) sendPost(ctx context.Context, method, rawURL string, p form.Post, media PostMedia, update bool) (*model.Post, error) {
	body := newMultipartBody()

	if err := body.field("title", p.Title); err != nil {
		return nil, err
	}
	if err := body.field("content", p.Content); err != nil {
		return nil, err
	}
	if update {
		for _, id := range media.RemoveImages {
			if err := body.field("removeImages", id); err != nil {
				return nil, err
			}
		}
		for _, id := range media.RemoveVideos {
			if err := body.field("removeVideos", id); err != nil {
				return nil, err
			}
		}
	}
	if err := body.files("images", media.Images); err != nil {
		return nil, err
	}
	if err := body.files("videos", media.Videos); err != nil {
		return nil, err
	}

	reader, ctype, err := body.finish()
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, method, rawURL, reader, ctype)
	if err != nil {
		return nil, err
	}
	resp, err := c.sendGuarded(ctx, req)
	if err != nil {
		return nil, err
	}

	var out model.Post
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePost removes a post (admin)
func (c *Client) DeletePost(ctx context.Context, id string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, c.resourceURL(c.cfg.PostsPath, id), nil, "")
	if err != nil {
		return err
	}
	resp, err := c.sendGuarded(ctx, req)
	if err != nil {
		return err
	}
	return decode(resp, nil)
}
