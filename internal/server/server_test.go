package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/idilsaglam/circles/internal/api"
	"github.com/idilsaglam/circles/internal/circles"
	"github.com/idilsaglam/circles/internal/model"
	"github.com/idilsaglam/circles/internal/notify"
	"github.com/idilsaglam/circles/internal/store/sqlstore"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

type fixture struct {
	srv    *httptest.Server
	client *api.Client
	dir    string
}

func newFixture(t *testing.T, opt Options, token string) fixture {
	t.Helper()
	st, err := sqlstore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	dir := t.TempDir()
	if opt.UploadDir == "" {
		opt.UploadDir = dir
	}
	srv := httptest.NewServer(New(st, opt, nil).Router())
	t.Cleanup(srv.Close)

	c, err := api.New(srv.URL,
		api.WithHTTPClient(srv.Client()),
		api.WithToken(func() string { return token }))
	require.NoError(t, err)
	return fixture{srv: srv, client: c, dir: dir}
}

func TestCRUDOverHTTP(t *testing.T) {
	f := newFixture(t, Options{}, "")
	ctx := context.Background()

	require.NoError(t, f.client.Add(ctx, model.NewDraft{Name: "Runners", Desc: "Morning jog", Avatar: "a.png"}))
	page, err := f.client.List(ctx, model.PageParams{})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	id := page.Data[0].ID
	assert.NotEmpty(t, id)

	name := "Night Runners"
	require.NoError(t, f.client.Update(ctx, model.ExistingPatch{ID: id, Name: &name}))
	got, err := f.client.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.Circle{ID: id, Name: "Night Runners", Desc: "Morning jog", Avatar: "a.png"}, got)

	require.NoError(t, f.client.Remove(ctx, []string{id}))
	page, err = f.client.List(ctx, model.PageParams{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	assert.Empty(t, page.Data)
}

func TestStatusMapping(t *testing.T) {
	f := newFixture(t, Options{}, "")
	ctx := context.Background()

	var apiErr *api.Error
	err := f.client.Add(ctx, model.NewDraft{Name: "Runners"})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)

	d := model.NewDraft{Name: "Runners", Desc: "x", Avatar: "a.png"}
	require.NoError(t, f.client.Add(ctx, d))
	require.ErrorAs(t, f.client.Add(ctx, d), &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)

	name := "x"
	require.ErrorAs(t, f.client.Update(ctx, model.ExistingPatch{ID: "missing", Name: &name}), &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestAuthRequired(t *testing.T) {
	secret := []byte("dev-secret")
	tok, err := IssueToken(secret, "admin", time.Hour)
	require.NoError(t, err)

	anon := newFixture(t, Options{JWTSecret: secret}, "")
	_, err = anon.client.List(context.Background(), model.PageParams{})
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	expired, err := IssueToken(secret, "admin", -time.Hour)
	require.NoError(t, err)
	stale := newFixture(t, Options{JWTSecret: secret}, expired)
	_, err = stale.client.List(context.Background(), model.PageParams{})
	require.ErrorAs(t, err, &apiErr)

	authed := newFixture(t, Options{JWTSecret: secret}, tok)
	_, err = authed.client.List(context.Background(), model.PageParams{})
	require.NoError(t, err)
}

func TestUpload(t *testing.T) {
	f := newFixture(t, Options{}, "")
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

	ref, err := f.client.Upload(context.Background(), "face.png", bytes.NewReader(png))
	require.NoError(t, err)
	assert.Regexp(t, `^/uploads/[0-9a-f-]{36}\.png$`, ref)

	stored, err := os.ReadFile(filepath.Join(f.dir, filepath.Base(ref)))
	require.NoError(t, err)
	assert.Equal(t, png, stored)

	resp, err := f.srv.Client().Get(f.srv.URL + ref)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUploadRejectsNonImage(t *testing.T) {
	f := newFixture(t, Options{}, "")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("just text"))
	require.NoError(t, mw.Close())

	resp, err := f.srv.Client().Post(f.srv.URL+"/upload.do", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Contains(t, out["error"], "not an image")
}

// The page controller against the real service: every write round-trips
// and the reload shows the backend's view.
func TestPageAgainstService(t *testing.T) {
	f := newFixture(t, Options{}, "")
	ctx := context.Background()
	rec := &notify.Recorder{}
	ctrl := circles.NewController(f.client, f.client, rec, nil)

	avatar := filepath.Join(t.TempDir(), "face.png")
	require.NoError(t, os.WriteFile(avatar, append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...), 0o644))

	s := ctrl.Drive(ctx, circles.NewState(20), circles.Load{})
	s = ctrl.Drive(ctx, s, circles.OpenCreate{})
	s = ctrl.Drive(ctx, s, circles.SubmitForm{Form: circles.Form{Name: "Runners", Desc: "Morning jog", Avatar: avatar}})
	require.Equal(t, circles.Idle, s.Phase)
	require.Len(t, s.Rows, 1)
	assert.Regexp(t, `^/uploads/`, s.Rows[0].Avatar)
	id := s.Rows[0].ID

	// duplicate name is rejected by the backend; the editor stays open
	s = ctrl.Drive(ctx, s, circles.OpenCreate{})
	s = ctrl.Drive(ctx, s, circles.SubmitForm{Form: circles.Form{Name: "Runners", Desc: "again", Avatar: "b.png"}})
	assert.Equal(t, circles.Editing, s.Phase)
	assert.Len(t, s.Rows, 1)
	s = ctrl.Drive(ctx, s, circles.CancelEdit{})

	s = ctrl.Drive(ctx, s, circles.OpenEdit{Row: s.Rows[0]})
	form := s.Form
	form.Name = "Night Runners"
	s = ctrl.Drive(ctx, s, circles.SubmitForm{Form: form})
	require.Len(t, s.Rows, 1)
	assert.Equal(t, id, s.Rows[0].ID)
	assert.Equal(t, "Night Runners", s.Rows[0].Name)

	s = ctrl.Drive(ctx, s, circles.SelectRows{Rows: s.Rows})
	s = ctrl.Drive(ctx, s, circles.DeleteRows{})
	assert.Equal(t, circles.Idle, s.Phase)
	assert.Empty(t, s.Rows)
	assert.Empty(t, s.Selected)
}
