package rest

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"

	"saldo/internal/remote"
)

type profileRow struct {
	ID        string  `json:"id"`
	FullName  *string `json:"full_name"`
	AvatarURL *string `json:"avatar_url"`
	UpdatedAt *string `json:"updated_at"`
}

// FetchProfile implements remote.ProfileStore. A user who never saved a
// profile gets an empty row, not an error.
func (c *Client) FetchProfile(ctx context.Context, userID string) (remote.Profile, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("id", "eq."+userID)

	var rows []profileRow
	if err := c.doJSON(ctx, http.MethodGet, restPath+"/"+profilesTable, q, nil, "", &rows); err != nil {
		return remote.Profile{}, fmt.Errorf("fetch profile: %w", err)
	}
	if len(rows) == 0 {
		return remote.Profile{ID: userID}, nil
	}
	r := rows[0]
	p := remote.Profile{ID: r.ID, FullName: r.FullName, AvatarURL: r.AvatarURL}
	if r.UpdatedAt != nil {
		p.UpdatedAt = *r.UpdatedAt
	}
	return p, nil
}

// UpsertProfile implements remote.ProfileStore, merging on id.
func (c *Client) UpsertProfile(ctx context.Context, p remote.Profile) error {
	row := profileRow{ID: p.ID, FullName: p.FullName, AvatarURL: p.AvatarURL}
	if p.UpdatedAt != "" {
		row.UpdatedAt = &p.UpdatedAt
	}
	if err := c.doJSON(ctx, http.MethodPost, restPath+"/"+profilesTable, nil, []profileRow{row}, preferMerge, nil); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// UploadAvatar implements remote.AvatarUploader. Uploads overwrite any
// previous object at the same path and return the bucket's public URL.
func (c *Client) UploadAvatar(ctx context.Context, path string, contentType string, data []byte) (string, error) {
	u := c.baseURL + storagePath + "/object/" + c.avatarBucket + "/" + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("upload avatar: status %d", resp.StatusCode)
	}
	return c.baseURL + storagePath + "/object/public/" + c.avatarBucket + "/" + path, nil
}
