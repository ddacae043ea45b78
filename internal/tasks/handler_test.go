package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/taskhive/backend/internal/auth"
	"github.com/taskhive/backend/internal/models"
)

// --- Store mock: mirrors the repository's conditional take ---

type mockStore struct {
	tasks map[uuid.UUID]*models.Task
}

func newMockStore() *mockStore {
	return &mockStore{tasks: make(map[uuid.UUID]*models.Task)}
}

func (m *mockStore) Create(_ context.Context, t *models.Task) error {
	m.tasks[t.ID] = t
	return nil
}

func (m *mockStore) GetByID(_ context.Context, id uuid.UUID) (*models.Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, errNotFound
	}
	return t, nil
}

func (m *mockStore) Take(_ context.Context, taskID, userID uuid.UUID) (*models.Task, error) {
	t, ok := m.tasks[taskID]
	if !ok {
		return nil, errNotFound
	}
	if t.Status != models.TaskStatusOpen {
		return nil, errNotOpen
	}
	t.Status = models.TaskStatusAssigned
	t.AssignedTo = &userID
	return t, nil
}

func (m *mockStore) List(_ context.Context) ([]*models.Task, error) {
	var out []*models.Task
	for _, t := range m.tasks {
		out = append(out, t)
	}
	return out, nil
}

func newTestHandler() (*Handler, *mockStore) {
	store := newMockStore()
	return NewHandler(NewService(store), nil), store
}

func asUser(r *http.Request, ident *auth.Identity) *http.Request {
	return r.WithContext(auth.WithIdentity(r.Context(), ident))
}

// =====================================================================
// POST /tasks
// =====================================================================

func TestCreateTask(t *testing.T) {
	h, store := newTestHandler()
	admin := &auth.Identity{ID: uuid.New(), IsAdmin: true}

	body := `{"title":"tag photos","description":"tag 100 photos","reward":"12.50","tags":["images"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks", strings.NewReader(body))
	req = asUser(req, admin)
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Task TaskResponse `json:"task"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Task.Reward != "12.50" {
		t.Errorf("expected reward 12.50, got %q", resp.Task.Reward)
	}
	if resp.Task.Status != models.TaskStatusOpen {
		t.Errorf("expected open status, got %q", resp.Task.Status)
	}
	id, err := uuid.Parse(resp.Task.ID)
	if err != nil {
		t.Fatalf("bad task id: %v", err)
	}
	if stored := store.tasks[id]; stored == nil || stored.RewardCents != 1250 {
		t.Errorf("expected stored reward of 1250 cents, got %+v", stored)
	}
}

func TestCreateTask_MissingTitle(t *testing.T) {
	h, _ := newTestHandler()
	admin := &auth.Identity{ID: uuid.New(), IsAdmin: true}

	body := `{"description":"no title","reward":"1.00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks", strings.NewReader(body))
	req = asUser(req, admin)
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateTask_SubCentReward(t *testing.T) {
	h, _ := newTestHandler()
	admin := &auth.Identity{ID: uuid.New(), IsAdmin: true}

	body := `{"title":"t","description":"d","reward":"0.001"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks", strings.NewReader(body))
	req = asUser(req, admin)
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for sub-cent reward, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateTask_NoReward(t *testing.T) {
	h, store := newTestHandler()
	admin := &auth.Identity{ID: uuid.New(), IsAdmin: true}

	body := `{"title":"volunteer work","description":"unpaid"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks", strings.NewReader(body))
	req = asUser(req, admin)
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	for _, stored := range store.tasks {
		if stored.RewardCents != 0 {
			t.Errorf("expected 0 reward, got %d", stored.RewardCents)
		}
	}
}

// =====================================================================
// POST /tasks/{id}/take
// =====================================================================

func takeRequest(taskID string, ident *auth.Identity) *http.Request {
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/tasks/%s/take", taskID), nil)
	req.SetPathValue("id", taskID)
	return asUser(req, ident)
}

func TestTakeTask(t *testing.T) {
	h, store := newTestHandler()
	userID := uuid.New()

	task := &models.Task{ID: uuid.New(), Title: "t", Status: models.TaskStatusOpen}
	store.tasks[task.ID] = task

	rec := httptest.NewRecorder()
	h.Take(rec, takeRequest(task.ID.String(), &auth.Identity{ID: userID}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if task.Status != models.TaskStatusAssigned {
		t.Errorf("expected assigned status, got %q", task.Status)
	}
	if task.AssignedTo == nil || *task.AssignedTo != userID {
		t.Error("expected task assigned to caller")
	}
}

func TestTakeTask_NotOpen(t *testing.T) {
	h, store := newTestHandler()
	other := uuid.New()

	task := &models.Task{ID: uuid.New(), Title: "t", Status: models.TaskStatusAssigned, AssignedTo: &other}
	store.tasks[task.ID] = task

	rec := httptest.NewRecorder()
	h.Take(rec, takeRequest(task.ID.String(), &auth.Identity{ID: uuid.New()}))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if task.AssignedTo == nil || *task.AssignedTo != other {
		t.Error("assignee must be unchanged")
	}
}

func TestTakeTask_NotFound(t *testing.T) {
	h, _ := newTestHandler()

	rec := httptest.NewRecorder()
	h.Take(rec, takeRequest(uuid.NewString(), &auth.Identity{ID: uuid.New()}))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestTakeTask_BadID(t *testing.T) {
	h, _ := newTestHandler()

	rec := httptest.NewRecorder()
	h.Take(rec, takeRequest("not-a-uuid", &auth.Identity{ID: uuid.New()}))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
