package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/wrale/wrale-scheduler/api/types/v1alpha1"
)

// Scope selects shows or permissions for the last-device setting
type Scope string

const (
	ScopeShows       Scope = "shows"
	ScopePermissions Scope = "permissions"
)

// Window is a listing query
type Window struct {
	Device int64
	Start  time.Time
	End    time.Time
	// UserID filters permission listings; zero lists every grantee
	UserID int64
}

func (w Window) values() url.Values {
	v := url.Values{}
	v.Set("device", strconv.FormatInt(w.Device, 10))
	v.Set("start", strconv.FormatInt(w.Start.Unix(), 10))
	v.Set("end", strconv.FormatInt(w.End.Unix(), 10))
	if w.UserID != 0 {
		v.Set("user_id", strconv.FormatInt(w.UserID, 10))
	}
	return v
}

func entryQuery(recurring bool) url.Values {
	v := url.Values{}
	if recurring {
		v.Set("recurring", "1")
	}
	return v
}

func entryPath(collection string, id int64) string {
	return "/" + collection + "/" + strconv.FormatInt(id, 10)
}

// ListShows returns show occurrences in the window
func (c *Client) ListShows(ctx context.Context, w Window) ([]v1alpha1.Occurrence, error) {
	var out []v1alpha1.Occurrence
	_, err := c.do(ctx, http.MethodGet, "/shows", w.values(), nil, &out)
	return out, err
}

// GetShow returns a show
func (c *Client) GetShow(ctx context.Context, id int64, recurring bool) (*v1alpha1.Show, error) {
	var out v1alpha1.Show
	if _, err := c.do(ctx, http.MethodGet, entryPath("shows", id), entryQuery(recurring), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveShow creates a show, or edits it when req.ID is set
func (c *Client) SaveShow(ctx context.Context, req v1alpha1.SaveShowRequest) (*v1alpha1.Show, string, error) {
	method, p := http.MethodPost, "/shows"
	if req.ID != "" {
		method, p = http.MethodPut, "/shows/"+url.PathEscape(req.ID)
	}
	var out v1alpha1.Show
	msg, err := c.do(ctx, method, p, nil, req, &out)
	if err != nil {
		return nil, "", err
	}
	return &out, msg, nil
}

// DeleteShow removes a show
func (c *Client) DeleteShow(ctx context.Context, id int64, recurring bool) error {
	_, err := c.do(ctx, http.MethodDelete, entryPath("shows", id), entryQuery(recurring), nil, nil)
	return err
}

// ListPermissions returns permission occurrences in the window
func (c *Client) ListPermissions(ctx context.Context, w Window) ([]v1alpha1.Occurrence, error) {
	var out []v1alpha1.Occurrence
	_, err := c.do(ctx, http.MethodGet, "/permissions", w.values(), nil, &out)
	return out, err
}

// GetPermission returns a permission grant
func (c *Client) GetPermission(ctx context.Context, id int64, recurring bool) (*v1alpha1.Permission, error) {
	var out v1alpha1.Permission
	if _, err := c.do(ctx, http.MethodGet, entryPath("permissions", id), entryQuery(recurring), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SavePermission creates a grant, or edits it when req.ID is set
func (c *Client) SavePermission(ctx context.Context, req v1alpha1.SavePermissionRequest) (*v1alpha1.Permission, string, error) {
	method, p := http.MethodPost, "/permissions"
	if req.ID != "" {
		method, p = http.MethodPut, "/permissions/"+url.PathEscape(req.ID)
	}
	var out v1alpha1.Permission
	msg, err := c.do(ctx, method, p, nil, req, &out)
	if err != nil {
		return nil, "", err
	}
	return &out, msg, nil
}

// DeletePermission removes a grant
func (c *Client) DeletePermission(ctx context.Context, id int64, recurring bool) error {
	_, err := c.do(ctx, http.MethodDelete, entryPath("permissions", id), entryQuery(recurring), nil, nil)
	return err
}

// LastDevice returns the remembered device for scope
func (c *Client) LastDevice(ctx context.Context, scope Scope) (int64, error) {
	var out v1alpha1.LastDevice
	if _, err := c.do(ctx, http.MethodGet, "/"+string(scope)+"/last-device", nil, nil, &out); err != nil {
		return 0, err
	}
	return out.Device, nil
}

// SetLastDevice remembers device for scope
func (c *Client) SetLastDevice(ctx context.Context, scope Scope, device int64) error {
	body := v1alpha1.SetLastDeviceRequest{Device: strconv.FormatInt(device, 10)}
	_, err := c.do(ctx, http.MethodPut, "/"+string(scope)+"/last-device", nil, body, nil)
	return err
}

// ListDevices returns every device
func (c *Client) ListDevices(ctx context.Context) ([]v1alpha1.Device, error) {
	var out []v1alpha1.Device
	_, err := c.do(ctx, http.MethodGet, "/devices", nil, nil, &out)
	return out, err
}
