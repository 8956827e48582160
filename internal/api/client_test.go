package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/circles/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, WithToken(func() string { return "tok" }))
	require.NoError(t, err)
	return c
}

func TestNewRejectsRelativeURL(t *testing.T) {
	_, err := New("localhost:8080")
	require.Error(t, err)
}

func TestTimeoutAppliesToGivenClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	h := srv.Client()
	c, err := New(srv.URL, WithTimeout(50*time.Millisecond), WithHTTPClient(h))
	require.NoError(t, err)
	assert.Zero(t, h.Timeout, "caller's client is left alone")

	start := time.Now()
	_, err = c.List(context.Background(), model.PageParams{})
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestListSendsParamsAndToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/circles", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("current"))
		assert.Equal(t, "20", r.URL.Query().Get("pageSize"))
		assert.Equal(t, "run", r.URL.Query().Get("name"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(model.Page{
			Data:    []model.Circle{{ID: "1", Name: "Runners", Desc: "Morning jog", Avatar: "a.png"}},
			Total:   21,
			Success: true,
		})
	})

	page, err := c.List(context.Background(), model.PageParams{Current: 2, Name: "run"})
	require.NoError(t, err)
	assert.Equal(t, 21, page.Total)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Runners", page.Data[0].Name)
}

func TestUpdateSendsOnlyChangedFields(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/circles/1", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	})

	name := "Night Runners"
	require.NoError(t, c.Update(context.Background(), model.ExistingPatch{ID: "1", Name: &name}))
	assert.Equal(t, map[string]any{"id": "1", "name": "Night Runners"}, body)
}

func TestRemoveSendsKeys(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		var req removeRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"1", "3"}, req.Key)
		_, _ = w.Write([]byte(`{"removed":2}`))
	})
	require.NoError(t, c.Remove(context.Background(), []string{"1", "3"}))
}

func TestErrorStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"name already taken"}`))
	})

	err := c.Add(context.Background(), model.NewDraft{Name: "A", Desc: "B", Avatar: "c"})
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "name already taken", apiErr.Message)
}

func TestUploadChecksLocallyFirst(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	_, err := c.Upload(context.Background(), "notes.txt", bytes.NewReader([]byte("plain text")))
	require.ErrorIs(t, err, model.ErrAvatar)
	assert.False(t, called)
}

func TestUploadMultipart(t *testing.T) {
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 16)...)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/upload.do", r.URL.Path)
		f, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		assert.Equal(t, png, b)
		assert.Equal(t, "face.png", hdr.Filename)
		_ = json.NewEncoder(w).Encode(UploadResult{URL: "/uploads/abc.png", Name: hdr.Filename, Size: hdr.Size})
	})

	ref, err := c.Upload(context.Background(), "/tmp/face.png", bytes.NewReader(png))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/abc.png", ref)
}
