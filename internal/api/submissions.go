package api

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/existflow/scic/internal/form"
	"github.com/existflow/scic/internal/model"
)

// DefaultExportName is used when the export response names no file
const DefaultExportName = "submissions.xlsx"

// ListSubmissions returns every submission (admin)
func (c *Client) ListSubmissions(ctx context.Context) ([]model.Submission, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.resourceURL(c.cfg.SubmissionsPath), nil, "")
	if err != nil {
		return nil, err
	}
	resp, err := c.sendGuarded(ctx, req)
	if err != nil {
		return nil, err
	}

	var out []model.Submission
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSubmission returns one submission with full details (admin)
func (c *Client) GetSubmission(ctx context.Context, id string) (*model.Submission, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.resourceURL(c.cfg.SubmissionsPath, id), nil, "")
	if err != nil {
		return nil, err
	}
	resp, err := c.sendGuarded(ctx, req)
	if err != nil {
		return nil, err
	}

	var out model.Submission
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSubmission removes a submission (admin)
func (c *Client) DeleteSubmission(ctx context.Context, id string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, c.resourceURL(c.cfg.SubmissionsPath, id), nil, "")
	if err != nil {
		return err
	}
	resp, err := c.sendGuarded(ctx, req)
	if err != nil {
		return err
	}
	return decode(resp, nil)
}

// ExportSubmissions streams the export file into w and returns the file
// name suggested by the backend (admin)
func (c *Client) ExportSubmissions(ctx context.Context, w io.Writer) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.cfg.URL(c.cfg.ExportPath), nil, "")
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "*/*")

	resp, err := c.sendGuarded(ctx, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errorFromResponse(resp)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", fmt.Errorf("failed to download export: %w", err)
	}
	return exportName(resp.Header.Get("Content-Disposition")), nil
}

func exportName(disposition string) string {
	if disposition == "" {
		return DefaultExportName
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return DefaultExportName
	}
	name := filepath.Base(params["filename"])
	if name == "" || name == "." || name == "/" {
		return DefaultExportName
	}
	return name
}

// CreateSubmission uploads a competition entry (public). The form must
// already be valid.
func (c *Client) CreateSubmission(ctx context.Context, s form.Submission) (*model.Submission, error) {
	body := newMultipartBody()

	members := s.Members
	if members == nil {
		members = []model.Person{}
	}

	steps := []func() error{
		func() error { return body.field("teamName", s.TeamName) },
		func() error { return body.field("projectName", s.ProjectName) },
		func() error { return body.jsonField("leader", s.Leader) },
		func() error { return body.jsonField("members", members) },
		func() error { return body.field("description", s.Description) },
		func() error {
			if s.VideoLink == "" {
				return nil
			}
			return body.field("videoLink", s.VideoLink)
		},
		func() error { return body.file("report", s.Report) },
		func() error { return body.files("attachments", s.Attachments) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}

	reader, ctype, err := body.finish()
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.resourceURL(c.cfg.SubmissionsPath), reader, ctype)
	if err != nil {
		return nil, err
	}
	resp, err := c.sendPublic(req)
	if err != nil {
		return nil, err
	}

	var out model.Submission
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
