package circles

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/circles/internal/model"
	"github.com/idilsaglam/circles/internal/notify"
)

var errRejected = errors.New("rejected")

// memService is an in-memory collection that can be told to reject writes.
type memService struct {
	mu      sync.Mutex
	rows    map[string]model.Circle
	nextID  int
	reject  bool
	updates []model.ExistingPatch
	removes [][]string
}

func newMemService(rows ...model.Circle) *memService {
	m := &memService{rows: map[string]model.Circle{}}
	for _, r := range rows {
		m.rows[r.ID] = r
		if n, err := strconv.Atoi(r.ID); err == nil && n > m.nextID {
			m.nextID = n
		}
	}
	return m
}

func (m *memService) List(_ context.Context, p model.PageParams) (model.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.Circle
	for _, r := range m.rows {
		if p.Name != "" && !strings.Contains(r.Name, p.Name) {
			continue
		}
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := len(all)
	start := p.Offset()
	if start > total {
		start = total
	}
	end := start + p.Normalize().PageSize
	if end > total {
		end = total
	}
	return model.Page{Data: all[start:end], Total: total, Success: true}, nil
}

func (m *memService) Add(_ context.Context, d model.NewDraft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reject {
		return errRejected
	}
	m.nextID++
	id := strconv.Itoa(m.nextID)
	m.rows[id] = model.Circle{ID: id, Name: d.Name, Desc: d.Desc, Avatar: d.Avatar}
	return nil
}

func (m *memService) Update(_ context.Context, p model.ExistingPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, p)
	if m.reject {
		return errRejected
	}
	cur, ok := m.rows[p.ID]
	if !ok {
		return errRejected
	}
	m.rows[p.ID] = p.Apply(cur)
	return nil
}

func (m *memService) Remove(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removes = append(m.removes, ids)
	if m.reject {
		return errRejected
	}
	for _, id := range ids {
		delete(m.rows, id)
	}
	return nil
}

type fakeUploader struct {
	got  string
	fail bool
}

func (u *fakeUploader) Upload(_ context.Context, name string, r io.Reader) (string, error) {
	if u.fail {
		return "", errRejected
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	u.got = string(b)
	return "/uploads/" + filepath.Base(name), nil
}

func newTestController(svc Service, up Uploader) (*Controller, *notify.Recorder) {
	rec := &notify.Recorder{}
	return NewController(svc, up, rec, nil), rec
}

func start(t *testing.T, c *Controller) State {
	t.Helper()
	return c.Drive(context.Background(), NewState(20), Load{Params: model.PageParams{Current: 1, PageSize: 20}})
}

func TestCreateThenRefreshShowsRecord(t *testing.T) {
	svc := newMemService(runners)
	c, rec := newTestController(svc, nil)
	ctx := context.Background()

	s := start(t, c)
	require.Len(t, s.Rows, 1)

	s = c.Drive(ctx, s, OpenCreate{})
	s = c.Drive(ctx, s, SubmitForm{Form: Form{Name: "Readers", Desc: "Book club", Avatar: "b.png"}})

	assert.Equal(t, Idle, s.Phase)
	require.Len(t, s.Rows, 2)
	created := s.Rows[1]
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Readers", created.Name)
	assert.Equal(t, "Book club", created.Desc)
	assert.Equal(t, "b.png", created.Avatar)
	assert.Equal(t, []notify.Kind{notify.KindLoading, notify.KindDismiss, notify.KindSuccess}, rec.Kinds())
}

func TestUpdateRenameExample(t *testing.T) {
	svc := newMemService(runners)
	c, _ := newTestController(svc, nil)
	ctx := context.Background()

	s := start(t, c)
	s = c.Drive(ctx, s, OpenEdit{Row: s.Rows[0]})
	f := s.Form
	f.Name = "Night Runners"
	s = c.Drive(ctx, s, SubmitForm{Form: f})

	name := "Night Runners"
	require.Len(t, svc.updates, 1)
	assert.Equal(t, model.ExistingPatch{ID: "1", Name: &name}, svc.updates[0])

	require.Len(t, s.Rows, 1)
	assert.Equal(t, model.Circle{ID: "1", Name: "Night Runners", Desc: "Morning jog", Avatar: "a.png"}, s.Rows[0])
	assert.False(t, s.EditorOpen())
}

func TestBatchDeleteExcludesExactlySelected(t *testing.T) {
	third := model.Circle{ID: "3", Name: "Climbers", Desc: "Bouldering", Avatar: "c.png"}
	svc := newMemService(runners, readers, third)
	c, _ := newTestController(svc, nil)
	ctx := context.Background()

	s := start(t, c)
	s = c.Drive(ctx, s, SelectRows{Rows: []model.Circle{s.Rows[0], s.Rows[2]}})
	s = c.Drive(ctx, s, DeleteRows{})

	assert.Equal(t, [][]string{{"1", "3"}}, svc.removes)
	assert.Empty(t, s.Selected)
	assert.Equal(t, Idle, s.Phase)
	assert.Equal(t, []model.Circle{readers}, s.Rows)
}

func TestRejectedWritesLeaveListAndOverlay(t *testing.T) {
	svc := newMemService(runners, readers)
	c, rec := newTestController(svc, nil)
	ctx := context.Background()

	s := start(t, c)
	rows := append([]model.Circle(nil), s.Rows...)
	svc.reject = true

	s = c.Drive(ctx, s, OpenCreate{})
	s = c.Drive(ctx, s, SubmitForm{Form: Form{Name: "X", Desc: "Y", Avatar: "z.png"}})
	assert.Equal(t, Editing, s.Phase)
	assert.Equal(t, Form{Name: "X", Desc: "Y", Avatar: "z.png"}, s.Form)
	s = c.Drive(ctx, s, CancelEdit{})

	s = c.Drive(ctx, s, OpenEdit{Row: s.Rows[0]})
	s = c.Drive(ctx, s, SubmitForm{Form: Form{Name: "Y", Desc: "Y", Avatar: "z.png"}})
	assert.Equal(t, Editing, s.Phase)
	require.NotNil(t, s.Current)
	s = c.Drive(ctx, s, CancelEdit{})

	s = c.Drive(ctx, s, SelectRows{Rows: rows})
	s = c.Drive(ctx, s, DeleteRows{})
	assert.Equal(t, Selecting, s.Phase)
	assert.Len(t, s.Selected, 2)

	assert.Equal(t, rows, s.Rows)
	assert.Contains(t, rec.Kinds(), notify.KindError)
	for _, toast := range rec.Toasts() {
		if toast.Kind == notify.KindSuccess {
			t.Fatalf("unexpected success toast %q", toast.Text)
		}
	}
}

func TestRemoveEmptySelectionSkipsService(t *testing.T) {
	svc := newMemService(runners)
	c, rec := newTestController(svc, nil)
	assert.True(t, c.Remove(context.Background(), nil))
	assert.Empty(t, svc.removes)
	assert.Empty(t, rec.Toasts())
}

func TestDispatchUploadsLocalAvatar(t *testing.T) {
	svc := newMemService()
	up := &fakeUploader{}
	c, _ := newTestController(svc, up)

	path := filepath.Join(t.TempDir(), "face.png")
	require.NoError(t, os.WriteFile(path, []byte("png-bytes"), 0o644))

	ok := c.Dispatch(context.Background(), model.NewDraft{Name: "A", Desc: "B", Avatar: path})
	require.True(t, ok)
	assert.Equal(t, "png-bytes", up.got)

	page, err := svc.List(context.Background(), model.PageParams{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "/uploads/face.png", page.Data[0].Avatar)
}

func TestDispatchUploadFailureFailsSubmit(t *testing.T) {
	svc := newMemService()
	c, rec := newTestController(svc, &fakeUploader{fail: true})

	path := filepath.Join(t.TempDir(), "face.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0o644))

	assert.False(t, c.Dispatch(context.Background(), model.NewDraft{Name: "A", Desc: "B", Avatar: path}))
	assert.Empty(t, svc.rows)
	assert.Equal(t, notify.KindError, rec.Kinds()[len(rec.Kinds())-1])
}

func TestDispatchKeepsRemoteAvatarReference(t *testing.T) {
	svc := newMemService()
	up := &fakeUploader{}
	c, _ := newTestController(svc, up)

	require.True(t, c.Dispatch(context.Background(), model.NewDraft{Name: "A", Desc: "B", Avatar: "/uploads/x.png"}))
	assert.Empty(t, up.got)
}
