package circles

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/idilsaglam/circles/internal/model"
	"github.com/idilsaglam/circles/internal/notify"
)

// Service is the remote circle collection.
type Service interface {
	List(ctx context.Context, p model.PageParams) (model.Page, error)
	Add(ctx context.Context, d model.NewDraft) error
	Update(ctx context.Context, p model.ExistingPatch) error
	Remove(ctx context.Context, ids []string) error
}

// Uploader stores an avatar image and returns the reference to save.
type Uploader interface {
	Upload(ctx context.Context, name string, r io.Reader) (string, error)
}

// Notification texts.
const (
	msgAdding    = "Adding"
	msgAdded     = "Added successfully"
	msgAddFailed = "Adding failed, please try again!"
	msgUpdating  = "Updating"
	msgUpdated   = "Updated successfully"
	msgUpdFailed = "Update failed, please try again!"
	msgDeleting  = "Deleting"
	msgDeleted   = "Deleted successfully, refreshing"
	msgDelFailed = "Delete failed, please try again!"
	msgUploading = "Uploading avatar"
	msgUplFailed = "Avatar upload failed, please try again!"
)

// Controller runs the page's remote calls. Every call is wrapped in a
// loading notification and reports plain success or failure.
type Controller struct {
	svc    Service
	up     Uploader
	notify notify.Notifier
	log    *zap.Logger
}

// NewController wires a controller. up may be nil, in which case avatar
// values are sent as typed.
func NewController(svc Service, up Uploader, n notify.Notifier, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{svc: svc, up: up, notify: n, log: log}
}

// List fetches one page. Errors are returned so the caller can decide how
// to surface them; the page treats them as an empty result.
func (c *Controller) List(ctx context.Context, p model.PageParams) (model.Page, error) {
	page, err := c.svc.List(ctx, p.Normalize())
	if err != nil {
		c.log.Debug("list circles", zap.Error(err), zap.Int("page", p.Current))
		return model.Page{}, err
	}
	return page, nil
}

// Add creates a record.
func (c *Controller) Add(ctx context.Context, d model.NewDraft) bool {
	hide := c.notify.Loading(msgAdding)
	err := c.svc.Add(ctx, d)
	hide()
	if err != nil {
		c.log.Debug("add circle", zap.Error(err), zap.String("name", d.Name))
		c.notify.Error(msgAddFailed)
		return false
	}
	c.notify.Success(msgAdded)
	return true
}

// Update patches a persisted record.
func (c *Controller) Update(ctx context.Context, p model.ExistingPatch) bool {
	hide := c.notify.Loading(msgUpdating)
	err := c.svc.Update(ctx, p)
	hide()
	if err != nil {
		c.log.Debug("update circle", zap.Error(err), zap.String("id", p.ID))
		c.notify.Error(msgUpdFailed)
		return false
	}
	c.notify.Success(msgUpdated)
	return true
}

// Remove deletes the given rows in one call. An empty selection succeeds
// without touching the service.
func (c *Controller) Remove(ctx context.Context, rows []model.Circle) bool {
	if len(rows) == 0 {
		return true
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return c.removeIDs(ctx, ids)
}

func (c *Controller) removeIDs(ctx context.Context, ids []string) bool {
	if len(ids) == 0 {
		return true
	}
	hide := c.notify.Loading(msgDeleting)
	err := c.svc.Remove(ctx, ids)
	hide()
	if err != nil {
		c.log.Debug("remove circles", zap.Error(err), zap.Strings("ids", ids))
		c.notify.Error(msgDelFailed)
		return false
	}
	c.notify.Success(msgDeleted)
	return true
}

// Dispatch sends a draft to the matching remote call after uploading a
// local avatar file if one was given.
func (c *Controller) Dispatch(ctx context.Context, d model.Draft) bool {
	switch d := d.(type) {
	case model.NewDraft:
		avatar, ok := c.resolveAvatar(ctx, d.Avatar)
		if !ok {
			return false
		}
		d.Avatar = avatar
		return c.Add(ctx, d)
	case model.ExistingPatch:
		if d.Avatar != nil {
			avatar, ok := c.resolveAvatar(ctx, *d.Avatar)
			if !ok {
				return false
			}
			d.Avatar = &avatar
		}
		return c.Update(ctx, d)
	}
	c.log.Warn("unknown draft type", zap.String("type", fmt.Sprintf("%T", d)))
	return false
}

// Run executes an effect and returns the event that completes it.
func (c *Controller) Run(ctx context.Context, eff Effect) Event {
	switch eff := eff.(type) {
	case Fetch:
		page, err := c.List(ctx, eff.Params)
		if err != nil {
			return LoadFailed{Params: eff.Params, Err: err}
		}
		return Loaded{Params: eff.Params, Page: page}
	case Submit:
		return Submitted{OK: c.Dispatch(ctx, eff.Draft)}
	case Remove:
		return Removed{OK: c.removeIDs(ctx, eff.IDs)}
	}
	return nil
}

// Drive applies e and then runs effects until the page settles. It is the
// headless equivalent of the TUI's update loop.
func (c *Controller) Drive(ctx context.Context, s State, e Event) State {
	for e != nil {
		var eff Effect
		s, eff = Transition(s, e)
		if eff == nil {
			break
		}
		e = c.Run(ctx, eff)
	}
	return s
}

// resolveAvatar uploads value when it names a local file and returns the
// stored reference. Other values pass through unchanged.
func (c *Controller) resolveAvatar(ctx context.Context, value string) (string, bool) {
	if c.up == nil {
		return value, true
	}
	fi, err := os.Stat(value)
	if err != nil || !fi.Mode().IsRegular() {
		return value, true
	}
	hide := c.notify.Loading(msgUploading)
	ref, err := c.upload(ctx, value)
	hide()
	if err != nil {
		c.log.Debug("upload avatar", zap.Error(err), zap.String("path", value))
		c.notify.Error(msgUplFailed)
		return "", false
	}
	return ref, true
}

func (c *Controller) upload(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open avatar: %w", err)
	}
	defer f.Close()
	return c.up.Upload(ctx, path, f)
}
