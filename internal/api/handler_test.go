package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/branch-cover/pkg/core/coverage"
	"github.com/jakechorley/branch-cover/pkg/core/model"
	"github.com/jakechorley/branch-cover/pkg/core/services"
	"github.com/jakechorley/branch-cover/pkg/db"
	"github.com/jakechorley/branch-cover/pkg/directory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockService struct {
	createReq    services.CreateRequest
	createResult model.Assignment
	createErr    error

	cancelErr error

	getResult model.Assignment
	getErr    error

	listBranch string
	listStatus model.Status
	listResult []model.Assignment
	listErr    error

	dashRef    model.Date
	dashResult *model.Dashboard
	dashErr    error

	outlookRule   string
	outlookResult []coverage.OutlookEntry
	outlookErr    error
}

func (m *mockService) Create(_ context.Context, req services.CreateRequest) (model.Assignment, error) {
	m.createReq = req
	return m.createResult, m.createErr
}
func (m *mockService) Cancel(_ context.Context, _ string) error {
	return m.cancelErr
}
func (m *mockService) Get(_ context.Context, _ string) (model.Assignment, error) {
	return m.getResult, m.getErr
}
func (m *mockService) List(_ context.Context, branchID string, status model.Status) ([]model.Assignment, error) {
	m.listBranch, m.listStatus = branchID, status
	return m.listResult, m.listErr
}
func (m *mockService) Dashboard(_ context.Context, ref model.Date) (*model.Dashboard, error) {
	m.dashRef = ref
	return m.dashResult, m.dashErr
}
func (m *mockService) Outlook(_ context.Context, _ model.Date, rule string) ([]coverage.OutlookEntry, error) {
	m.outlookRule = rule
	return m.outlookResult, m.outlookErr
}

func doRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Details string          `json:"details"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func newTestRouter(svc AssignmentService) *gin.Engine {
	return Setup(NewHandler(svc, "FREQ=DAILY;COUNT=7", zap.NewNop()), zap.NewNop())
}

func validCreateBody() map[string]string {
	return map[string]string{
		"staffId":      "S1",
		"tempBranchId": "B2",
		"startDate":    "2024-01-10",
		"endDate":      "2024-01-15",
		"reason":       "support",
	}
}

func TestHealth(t *testing.T) {
	w := doRequest(newTestRouter(&mockService{}), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRequestID_EchoesIncomingHeader(t *testing.T) {
	r := newTestRouter(&mockService{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestCreateAssignment_Success(t *testing.T) {
	svc := &mockService{createResult: model.Assignment{ID: "A1", StaffID: "S1", Status: model.StatusActive}}
	w := doRequest(newTestRouter(svc), http.MethodPost, "/api/v1/assignments", validCreateBody())

	assert.Equal(t, http.StatusCreated, w.Code)
	env := decode(t, w)
	assert.Equal(t, CodeOK, env.Code)

	var a model.Assignment
	require.NoError(t, json.Unmarshal(env.Data, &a))
	assert.Equal(t, "A1", a.ID)

	assert.Equal(t, "2024-01-10", svc.createReq.StartDate.String())
	assert.Equal(t, model.ReasonSupport, svc.createReq.Reason)
}

func TestCreateAssignment_BadRequests(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(map[string]string)
		wantCode int
	}{
		{"missing staff", func(b map[string]string) { delete(b, "staffId") }, CodeInvalidRequest},
		{"missing reason", func(b map[string]string) { delete(b, "reason") }, CodeInvalidRequest},
		{"malformed start", func(b map[string]string) { b["startDate"] = "10/01/2024" }, CodeValidation},
		{"malformed end", func(b map[string]string) { b["endDate"] = "tomorrow" }, CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := validCreateBody()
			tt.mutate(body)

			w := doRequest(newTestRouter(&mockService{}), http.MethodPost, "/api/v1/assignments", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantCode, decode(t, w).Code)
		})
	}
}

func TestCreateAssignment_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"validation", &model.ValidationError{Field: "reason", Message: "bad"}, http.StatusBadRequest, CodeValidation},
		{"conflict", &model.ConflictError{StaffID: "S1"}, http.StatusConflict, CodeConflict},
		{"wrapped conflict", errors.Join(errors.New("context"), &model.ConflictError{StaffID: "S1"}), http.StatusConflict, CodeConflict},
		{"not found", &model.NotFoundError{Kind: "assignment", ID: "x"}, http.StatusNotFound, CodeNotFound},
		{"already terminal", &model.AlreadyTerminalError{ID: "x", Status: model.StatusCancelled}, http.StatusConflict, CodeAlreadyTerminal},
		{"invalid transition", &model.InvalidTransitionError{ID: "x"}, http.StatusInternalServerError, CodeInternal},
		{"unknown", errors.New("db down"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{createErr: tt.err}
			w := doRequest(newTestRouter(svc), http.MethodPost, "/api/v1/assignments", validCreateBody())

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decode(t, w).Code)
		})
	}
}

func TestCreateAssignment_ConflictCarriesConflictingRecords(t *testing.T) {
	svc := &mockService{createErr: &model.ConflictError{
		StaffID:   "S1",
		Candidate: model.DateRange{Start: model.MustParseDate("2024-01-12"), End: model.MustParseDate("2024-01-13")},
		Conflicting: []model.Assignment{{
			ID:        "A1",
			StaffID:   "S1",
			StartDate: model.MustParseDate("2024-01-10"),
			EndDate:   model.MustParseDate("2024-01-15"),
		}},
	}}

	w := doRequest(newTestRouter(svc), http.MethodPost, "/api/v1/assignments", validCreateBody())
	require.Equal(t, http.StatusConflict, w.Code)

	var data conflictData
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	require.Len(t, data.Conflicting, 1)
	assert.Equal(t, "A1", data.Conflicting[0].ID)
	assert.Equal(t, "2024-01-10", data.Conflicting[0].StartDate.String())
	assert.Equal(t, "2024-01-15", data.Conflicting[0].EndDate.String())
}

func TestListAssignments(t *testing.T) {
	svc := &mockService{}
	w := doRequest(newTestRouter(svc), http.MethodGet, "/api/v1/assignments?branchId=B2&status=expired", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "B2", svc.listBranch)
	assert.Equal(t, model.StatusExpired, svc.listStatus)

	var data struct {
		List []model.Assignment `json:"list"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	assert.NotNil(t, data.List)
	assert.Empty(t, data.List)
}

func TestListAssignments_InvalidStatus(t *testing.T) {
	w := doRequest(newTestRouter(&mockService{}), http.MethodGet, "/api/v1/assignments?status=pending", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCancelAssignment(t *testing.T) {
	svc := &mockService{getResult: model.Assignment{ID: "A1", Status: model.StatusCancelled}}
	w := doRequest(newTestRouter(svc), http.MethodPost, "/api/v1/assignments/A1/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code)

	svc = &mockService{cancelErr: &model.AlreadyTerminalError{ID: "A1", Status: model.StatusCancelled}}
	w = doRequest(newTestRouter(svc), http.MethodPost, "/api/v1/assignments/A1/cancel", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, CodeAlreadyTerminal, decode(t, w).Code)
}

func TestGetDashboard(t *testing.T) {
	svc := &mockService{dashResult: &model.Dashboard{ReferenceDate: model.MustParseDate("2024-01-11")}}

	w := doRequest(newTestRouter(svc), http.MethodGet, "/api/v1/coverage/dashboard?date=2024-01-11", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2024-01-11", svc.dashRef.String())

	w = doRequest(newTestRouter(svc), http.MethodGet, "/api/v1/coverage/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, svc.dashRef.IsZero(), "no date means today")

	w = doRequest(newTestRouter(svc), http.MethodGet, "/api/v1/coverage/dashboard?date=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOutlook_DefaultsRule(t *testing.T) {
	svc := &mockService{}

	w := doRequest(newTestRouter(svc), http.MethodGet, "/api/v1/coverage/outlook?from=2024-01-01", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "FREQ=DAILY;COUNT=7", svc.outlookRule)

	w = doRequest(newTestRouter(svc), http.MethodGet, "/api/v1/coverage/outlook?rule=FREQ%3DWEEKLY%3BCOUNT%3D2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "FREQ=WEEKLY;COUNT=2", svc.outlookRule)
}

// Exercises the real service end to end over HTTP
func TestAPI_CreateConflictCancelFlow(t *testing.T) {
	snap := directory.NewSnapshot(
		[]model.StaffRecord{
			{ID: "S1", FirstName: "Ada", LastName: "Lovelace", HomeBranchID: "B1"},
			{ID: "S2", FirstName: "Grace", LastName: "Hopper", HomeBranchID: "B1"},
		},
		[]model.BranchRecord{{ID: "B1", Name: "Central"}, {ID: "B2", Name: "Northside"}, {ID: "B3", Name: "West"}},
		nil,
	)
	now := func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) }
	svc := services.NewAssignmentService(db.NewMemoryStore(), snap, snap, snap, zap.NewNop(), services.WithClock(now))
	r := newTestRouter(svc)

	w := doRequest(r, http.MethodPost, "/api/v1/assignments", validCreateBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created model.Assignment
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &created))

	overlapping := validCreateBody()
	overlapping["tempBranchId"] = "B3"
	overlapping["startDate"] = "2024-01-12"
	overlapping["endDate"] = "2024-01-13"
	w = doRequest(r, http.MethodPost, "/api/v1/assignments", overlapping)
	require.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(r, http.MethodPost, "/api/v1/assignments/"+created.ID+"/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cancelled model.Assignment
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &cancelled))
	assert.Equal(t, model.StatusCancelled, cancelled.Status)

	w = doRequest(r, http.MethodPost, "/api/v1/assignments/"+created.ID+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(r, http.MethodGet, "/api/v1/assignments/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
