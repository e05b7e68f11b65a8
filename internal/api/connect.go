package api

import (
	"context"
	"net/http"

	"github.com/existflow/scic/internal/form"
	"github.com/existflow/scic/internal/model"
)

// ListMembers returns every team-finder registration (admin)
func (c *Client) ListMembers(ctx context.Context) ([]model.Member, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.resourceURL(c.cfg.ConnectPath), nil, "")
	if err != nil {
		return nil, err
	}
	resp, err := c.sendGuarded(ctx, req)
	if err != nil {
		return nil, err
	}

	var out []model.Member
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetMember returns one registration (admin)
func (c *Client) GetMember(ctx context.Context, id string) (*model.Member, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.resourceURL(c.cfg.ConnectPath, id), nil, "")
	if err != nil {
		return nil, err
	}
	resp, err := c.sendGuarded(ctx, req)
	if err != nil {
		return nil, err
	}

	var out model.Member
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMemberStatus moves a registration to status (admin). Any
// transition is accepted.
func (c *Client) UpdateMemberStatus(ctx context.Context, id string, status model.Status) (*model.Member, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPatch, c.resourceURL(c.cfg.ConnectPath, id), map[string]model.Status{
		"status": status,
	})
	if err != nil {
		return nil, err
	}
	resp, err := c.sendGuarded(ctx, req)
	if err != nil {
		return nil, err
	}

	var out model.Member
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		out.ID = id
	}
	if out.Status == "" {
		out.Status = status
	}
	return &out, nil
}

// ListAcceptedMembers returns the registrations shown publicly
func (c *Client) ListAcceptedMembers(ctx context.Context) ([]model.Member, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.resourceURL(c.cfg.ConnectPath)+"?status="+string(model.StatusAccepted), nil, "")
	if err != nil {
		return nil, err
	}
	resp, err := c.sendPublic(req)
	if err != nil {
		return nil, err
	}

	var all []model.Member
	if err := decode(resp, &all); err != nil {
		return nil, err
	}

	// The backend may ignore the query parameter
	out := make([]model.Member, 0, len(all))
	for _, m := range all {
		if m.Status == model.StatusAccepted {
			out = append(out, m)
		}
	}
	return out, nil
}

// Register signs up for the team finder (public). The form must already be valid.
func (c *Client) Register(ctx context.Context, r form.Registration) (*model.Member, error) {
	if r.SocialLinks == nil {
		r.SocialLinks = []model.SocialLink{}
	}
	req, err := c.newJSONRequest(ctx, http.MethodPost, c.resourceURL(c.cfg.ConnectPath), r)
	if err != nil {
		return nil, err
	}
	resp, err := c.sendPublic(req)
	if err != nil {
		return nil, err
	}

	var out model.Member
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
