package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rsaputelli/PRS/internal/api/middleware"
	"github.com/rsaputelli/PRS/internal/dto"
	"github.com/rsaputelli/PRS/internal/model"
	"github.com/rsaputelli/PRS/internal/service"
	pkgerrors "github.com/rsaputelli/PRS/pkg/errors"
	"github.com/rsaputelli/PRS/pkg/response"
	"github.com/rsaputelli/PRS/pkg/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := validator.Register(); err != nil {
		panic(err)
	}
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock GigService ──

type mockGigService struct {
	detail    *dto.GigDetailResponse
	list      []model.Gig
	total     int64
	deleteRes *dto.DeleteGigResponse
	err       error
	gotPurge  bool
	gotActor  string
}

func (m *mockGigService) Create(_ context.Context, _ *dto.GigRequest, actor string) (*dto.GigDetailResponse, error) {
	m.gotActor = actor
	return m.detail, m.err
}
func (m *mockGigService) Get(_ context.Context, _ string) (*dto.GigDetailResponse, error) {
	return m.detail, m.err
}
func (m *mockGigService) List(_ context.Context, _ *dto.GigListRequest) ([]model.Gig, int64, error) {
	return m.list, m.total, m.err
}
func (m *mockGigService) Update(_ context.Context, _ string, _ *dto.GigRequest, actor string) (*dto.GigDetailResponse, error) {
	m.gotActor = actor
	return m.detail, m.err
}
func (m *mockGigService) ReplaceDeposits(_ context.Context, _ string, _ *dto.DepositsRequest) (*dto.GigDetailResponse, error) {
	return m.detail, m.err
}
func (m *mockGigService) UpdateStaffing(_ context.Context, _ string, _ *dto.StaffingRequest) (*dto.GigDetailResponse, error) {
	return m.detail, m.err
}
func (m *mockGigService) DeletePreview(_ context.Context, _ string) (*dto.DeletePreviewResponse, error) {
	return &dto.DeletePreviewResponse{}, m.err
}
func (m *mockGigService) Delete(_ context.Context, _ string, purge bool) (*dto.DeleteGigResponse, error) {
	m.gotPurge = purge
	return m.deleteRes, m.err
}

// ── Mock ContractService ──

type mockContractService struct {
	fields map[string]string
	render *dto.RenderResponse
	err    error
}

func (m *mockContractService) MergeFields(_ context.Context, _ string) (map[string]string, error) {
	return m.fields, m.err
}
func (m *mockContractService) Render(_ context.Context, _ string, _ *dto.RenderRequest) (*dto.RenderResponse, error) {
	return m.render, m.err
}

// ── Mock ConfirmService ──

type mockConfirmService struct {
	res      *dto.ConfirmResponse
	err      error
	gotAsync bool
	gotIDs   []string
}

func (m *mockConfirmService) VenueConfirm(_ context.Context, _, _ string, async bool) (*dto.ConfirmResponse, error) {
	m.gotAsync = async
	return m.res, m.err
}
func (m *mockConfirmService) PlayerConfirms(_ context.Context, _ string, ids []string, _ string, async bool) (*dto.ConfirmResponse, error) {
	m.gotAsync, m.gotIDs = async, ids
	return m.res, m.err
}
func (m *mockConfirmService) AgentConfirm(_ context.Context, _ string) (*dto.ConfirmResponse, error) {
	return m.res, m.err
}
func (m *mockConfirmService) SoundTechConfirm(_ context.Context, _ string) (*dto.ConfirmResponse, error) {
	return m.res, m.err
}

// ── Mock DirectoryService ──

type mockVenueService struct {
	venue *model.Venue
	err   error
}

func (m *mockVenueService) List(_ context.Context, _ *dto.DirectoryListRequest) ([]model.Venue, error) {
	return []model.Venue{}, m.err
}
func (m *mockVenueService) Get(_ context.Context, _ string) (*model.Venue, error) {
	return m.venue, m.err
}
func (m *mockVenueService) Create(_ context.Context, _ *dto.VenueRequest) (*model.Venue, error) {
	return m.venue, m.err
}
func (m *mockVenueService) Update(_ context.Context, _ string, _ *dto.VenueRequest) (*model.Venue, error) {
	return m.venue, m.err
}
func (m *mockVenueService) SetActive(_ context.Context, _ string, _ bool) error { return m.err }
func (m *mockVenueService) Delete(_ context.Context, _ string) error            { return m.err }

// ── Mock ReportService ──

type mockReportService struct {
	buf *bytes.Buffer
	err error
}

func (m *mockReportService) Report1099(_ context.Context, year int) (*dto.Report1099Response, error) {
	return &dto.Report1099Response{Year: year}, m.err
}
func (m *mockReportService) Export1099(_ context.Context, year int) (*bytes.Buffer, string, error) {
	return m.buf, "prs_1099_2031.xlsx", m.err
}

// ── Mock EmailService ──

type mockEmailService struct {
	err     error
	clicked []string
}

func (m *mockEmailService) Send(_ context.Context, _ *service.OutboundEmail) (dto.SendResult, error) {
	return dto.SendResult{}, nil
}
func (m *mockEmailService) NewToken() string             { return "tok" }
func (m *mockEmailService) TrackURL(token string) string { return "/t/" + token }
func (m *mockEmailService) TrackClick(_ context.Context, token string) error {
	m.clicked = append(m.clicked, token)
	return m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setAuth(c *gin.Context) {
	c.Set(middleware.CtxUserID, "test-user-id")
	c.Set(middleware.CtxEmail, "boss@example.com")
}

func withAuth(h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		setAuth(c)
		h(c)
	}
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func do(r *gin.Engine, method, path string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func expect(t *testing.T, w *httptest.ResponseRecorder, status, code int) {
	t.Helper()
	if w.Code != status {
		t.Errorf("expected %d, got %d: %s", status, w.Code, w.Body.String())
	}
	if resp := parseResponse(w); resp.Code != code {
		t.Errorf("expected code %d, got %d", code, resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// GigHandler Tests
// ═══════════════════════════════════════════════════════════

func TestGigHandler_GetGig_NotFound(t *testing.T) {
	h := NewGigHandler(&mockGigService{err: service.ErrGigNotFound}, zap.NewNop())
	r := gin.New()
	r.GET("/gigs/:id", h.GetGig)

	expect(t, do(r, "GET", "/gigs/g1", nil), http.StatusNotFound, 20001)
}

func TestGigHandler_CreateGig(t *testing.T) {
	mock := &mockGigService{detail: &dto.GigDetailResponse{Gig: &model.Gig{ID: "g1"}}}
	h := NewGigHandler(mock, zap.NewNop())
	r := gin.New()
	r.POST("/gigs", withAuth(h.CreateGig))

	w := do(r, "POST", "/gigs", jsonBody(map[string]interface{}{"event_date": "2031-06-14", "title": "Gala"}))
	expect(t, w, http.StatusCreated, 0)
	if mock.gotActor != "boss@example.com" {
		t.Errorf("actor = %q", mock.gotActor)
	}
}

func TestGigHandler_CreateGig_BadJSON(t *testing.T) {
	h := NewGigHandler(&mockGigService{}, zap.NewNop())
	r := gin.New()
	r.POST("/gigs", h.CreateGig)

	expect(t, do(r, "POST", "/gigs", strings.NewReader("not json")), http.StatusBadRequest, 10001)
}

func TestGigHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   int
	}{
		{"time window", service.ErrInvalidTimeWindow, http.StatusBadRequest, 20003},
		{"private required", service.ErrPrivateDetailsRequired, http.StatusUnprocessableEntity, 20004},
		{"unknown venue", service.ErrVenueNotFound, http.StatusUnprocessableEntity, 20006},
		{"deposits exceed", service.ErrDepositsExceedFee, http.StatusUnprocessableEntity, 20007},
		{"duplicate", pkgerrors.ErrDuplicate, http.StatusConflict, 10006},
		{"unexpected", context.DeadlineExceeded, http.StatusInternalServerError, 50000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewGigHandler(&mockGigService{err: tc.err}, zap.NewNop())
			r := gin.New()
			r.PUT("/gigs/:id", h.UpdateGig)
			w := do(r, "PUT", "/gigs/g1", jsonBody(map[string]interface{}{"event_date": "2031-06-14"}))
			expect(t, w, tc.status, tc.code)
		})
	}
}

func TestGigHandler_DeleteGig(t *testing.T) {
	t.Run("payments block", func(t *testing.T) {
		h := NewGigHandler(&mockGigService{err: service.ErrGigHasPayments}, zap.NewNop())
		r := gin.New()
		r.DELETE("/admin/gigs/:id", h.DeleteGig)
		expect(t, do(r, "DELETE", "/admin/gigs/g1", nil), http.StatusConflict, 20005)
	})

	t.Run("purge", func(t *testing.T) {
		mock := &mockGigService{deleteRes: &dto.DeleteGigResponse{GigID: "g1", PaymentsDeleted: 2}}
		h := NewGigHandler(mock, zap.NewNop())
		r := gin.New()
		r.DELETE("/admin/gigs/:id", h.DeleteGig)
		expect(t, do(r, "DELETE", "/admin/gigs/g1?purge_payments=true", nil), http.StatusOK, 0)
		if !mock.gotPurge {
			t.Error("purge_payments should reach the service")
		}
	})
}

func TestGigHandler_ListGigs_Paged(t *testing.T) {
	mock := &mockGigService{list: []model.Gig{{ID: "g1"}, {ID: "g2"}}, total: 3}
	h := NewGigHandler(mock, zap.NewNop())
	r := gin.New()
	r.GET("/gigs", h.ListGigs)

	w := do(r, "GET", "/gigs?page=1&page_size=2", nil)
	expect(t, w, http.StatusOK, 0)
	var body struct {
		Data response.PageData `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body.Data.Pagination.TotalPages != 2 || body.Data.Pagination.Total != 3 {
		t.Errorf("pagination = %+v", body.Data.Pagination)
	}
}

// ═══════════════════════════════════════════════════════════
// ContractHandler Tests
// ═══════════════════════════════════════════════════════════

func TestContractHandler_Render_UnknownFields(t *testing.T) {
	h := NewContractHandler(&mockContractService{err: &service.UnknownFieldsError{Names: []string{"alpha"}}}, zap.NewNop())
	r := gin.New()
	r.POST("/gigs/:id/contract/render", h.Render)

	w := do(r, "POST", "/gigs/g1/contract/render", jsonBody(dto.RenderRequest{Template: "{{alpha}}"}))
	expect(t, w, http.StatusUnprocessableEntity, 21002)
	if !strings.Contains(w.Body.String(), `"unknown_fields":["alpha"]`) {
		t.Errorf("details should list the fields: %s", w.Body.String())
	}
}

func TestContractHandler_MergeFields_PrivateMissing(t *testing.T) {
	h := NewContractHandler(&mockContractService{err: service.ErrPrivateDetailsMissing}, zap.NewNop())
	r := gin.New()
	r.GET("/gigs/:id/merge-fields", h.MergeFields)

	expect(t, do(r, "GET", "/gigs/g1/merge-fields", nil), http.StatusUnprocessableEntity, 21001)
}

func TestContractHandler_DepositScheduleErrors(t *testing.T) {
	cases := []error{
		service.ErrDepositsExceedFee,
		service.ErrDepositsWithoutFee,
		service.ErrPercentOver100,
		service.ErrTooManyDeposits,
		service.ErrNegativeAmount,
	}
	for _, e := range cases {
		t.Run(e.Error(), func(t *testing.T) {
			h := NewContractHandler(&mockContractService{err: e}, zap.NewNop())
			r := gin.New()
			r.GET("/gigs/:id/merge-fields", h.MergeFields)
			r.POST("/gigs/:id/contract/render", h.Render)

			expect(t, do(r, "GET", "/gigs/g1/merge-fields", nil), http.StatusUnprocessableEntity, 21004)
			expect(t, do(r, "POST", "/gigs/g1/contract/render", jsonBody(dto.RenderRequest{Template: "{{final_payment_formatted}}"})),
				http.StatusUnprocessableEntity, 21004)
		})
	}
}

// ═══════════════════════════════════════════════════════════
// ConfirmHandler Tests
// ═══════════════════════════════════════════════════════════

func TestConfirmHandler_VenueConfirm(t *testing.T) {
	t.Run("sync without body", func(t *testing.T) {
		mock := &mockConfirmService{res: &dto.ConfirmResponse{GigID: "g1"}}
		h := NewConfirmHandler(mock, zap.NewNop())
		r := gin.New()
		r.POST("/gigs/:id/venue-confirm", withAuth(h.VenueConfirm))
		expect(t, do(r, "POST", "/gigs/g1/venue-confirm", nil), http.StatusOK, 0)
		if mock.gotAsync {
			t.Error("default should be synchronous")
		}
	})

	t.Run("async queued", func(t *testing.T) {
		mock := &mockConfirmService{res: &dto.ConfirmResponse{GigID: "g1", Queued: true}}
		h := NewConfirmHandler(mock, zap.NewNop())
		r := gin.New()
		r.POST("/gigs/:id/venue-confirm", withAuth(h.VenueConfirm))
		expect(t, do(r, "POST", "/gigs/g1/venue-confirm", jsonBody(dto.ConfirmRequest{Async: true})), http.StatusAccepted, 0)
	})

	t.Run("private gig", func(t *testing.T) {
		h := NewConfirmHandler(&mockConfirmService{err: service.ErrConfirmPrivateGig}, zap.NewNop())
		r := gin.New()
		r.POST("/gigs/:id/venue-confirm", withAuth(h.VenueConfirm))
		expect(t, do(r, "POST", "/gigs/g1/venue-confirm", nil), http.StatusUnprocessableEntity, 22001)
	})

	t.Run("queue unavailable", func(t *testing.T) {
		h := NewConfirmHandler(&mockConfirmService{err: service.ErrQueueUnavailable}, zap.NewNop())
		r := gin.New()
		r.POST("/gigs/:id/venue-confirm", withAuth(h.VenueConfirm))
		expect(t, do(r, "POST", "/gigs/g1/venue-confirm", jsonBody(dto.ConfirmRequest{Async: true})), http.StatusServiceUnavailable, 22009)
	})
}

func TestConfirmHandler_PlayerConfirms_PartialFailure(t *testing.T) {
	mock := &mockConfirmService{
		res: &dto.ConfirmResponse{GigID: "g1", Results: []dto.SendResult{{Status: "sent"}, {Status: "error: boom"}}},
		err: service.ErrDeliveryFailed,
	}
	h := NewConfirmHandler(mock, zap.NewNop())
	r := gin.New()
	r.POST("/gigs/:id/player-confirms", withAuth(h.PlayerConfirms))

	ids := []string{"6f1c2a9e-8d3b-4c5a-9e7f-1a2b3c4d5e6f"}
	w := do(r, "POST", "/gigs/g1/player-confirms", jsonBody(dto.ConfirmRequest{MusicianIDs: ids}))
	expect(t, w, http.StatusBadGateway, 22010)
	if !strings.Contains(w.Body.String(), "error: boom") {
		t.Errorf("details should carry per-recipient results: %s", w.Body.String())
	}
	if len(mock.gotIDs) != 1 {
		t.Errorf("musician ids = %v", mock.gotIDs)
	}
}

// ═══════════════════════════════════════════════════════════
// DirectoryHandler Tests
// ═══════════════════════════════════════════════════════════

func TestDirectoryHandler_Delete_Referenced(t *testing.T) {
	h := NewDirectoryHandler[model.Venue, dto.VenueRequest](&mockVenueService{err: service.ErrStillReferenced}, service.ErrVenueNotFound, zap.NewNop())
	r := gin.New()
	r.DELETE("/venues/:id", h.Delete)

	expect(t, do(r, "DELETE", "/venues/v1", nil), http.StatusConflict, 24002)
}

func TestDirectoryHandler_Get_NotFound(t *testing.T) {
	h := NewDirectoryHandler[model.Venue, dto.VenueRequest](&mockVenueService{err: service.ErrVenueNotFound}, service.ErrVenueNotFound, zap.NewNop())
	r := gin.New()
	r.GET("/venues/:id", h.Get)

	expect(t, do(r, "GET", "/venues/v1", nil), http.StatusNotFound, 24001)
}

func TestDirectoryHandler_Create_Validation(t *testing.T) {
	h := NewDirectoryHandler[model.Venue, dto.VenueRequest](&mockVenueService{}, service.ErrVenueNotFound, zap.NewNop())
	r := gin.New()
	r.POST("/venues", h.Create)

	expect(t, do(r, "POST", "/venues", jsonBody(map[string]string{"city": "Philadelphia"})), http.StatusBadRequest, 10001)
}

func TestDirectoryHandler_SetActive_RequiresFlag(t *testing.T) {
	h := NewDirectoryHandler[model.Venue, dto.VenueRequest](&mockVenueService{}, service.ErrVenueNotFound, zap.NewNop())
	r := gin.New()
	r.PUT("/venues/:id/active", h.SetActive)

	expect(t, do(r, "PUT", "/venues/v1/active", jsonBody(map[string]string{})), http.StatusBadRequest, 10001)
	expect(t, do(r, "PUT", "/venues/v1/active", jsonBody(map[string]bool{"active": false})), http.StatusOK, 0)
}

// ═══════════════════════════════════════════════════════════
// ReportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestReportHandler_Export1099(t *testing.T) {
	h := NewReportHandler(&mockReportService{buf: bytes.NewBufferString("xlsx")}, nil, zap.NewNop())
	r := gin.New()
	r.GET("/reports/1099/export", h.Export1099)

	w := do(r, "GET", "/reports/1099/export?year=2031", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("content type = %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "prs_1099_2031.xlsx") {
		t.Errorf("content disposition = %s", cd)
	}
}

func TestReportHandler_Report1099_YearRequired(t *testing.T) {
	h := NewReportHandler(&mockReportService{}, nil, zap.NewNop())
	r := gin.New()
	r.GET("/reports/1099", h.Report1099)

	expect(t, do(r, "GET", "/reports/1099", nil), http.StatusBadRequest, 10001)
}

// ═══════════════════════════════════════════════════════════
// EmailHandler / ProfileHandler Tests
// ═══════════════════════════════════════════════════════════

func TestEmailHandler_Track(t *testing.T) {
	t.Run("redirect", func(t *testing.T) {
		mock := &mockEmailService{}
		h := NewEmailHandler(mock, "https://prs.example.com/thanks", zap.NewNop())
		r := gin.New()
		r.GET("/email/track/:token", h.Track)

		w := do(r, "GET", "/email/track/abc", nil)
		if w.Code != http.StatusFound || w.Header().Get("Location") != "https://prs.example.com/thanks" {
			t.Errorf("expected redirect, got %d %s", w.Code, w.Header().Get("Location"))
		}
		if len(mock.clicked) != 1 || mock.clicked[0] != "abc" {
			t.Errorf("clicked = %v", mock.clicked)
		}
	})

	t.Run("thank you page", func(t *testing.T) {
		h := NewEmailHandler(&mockEmailService{}, "", zap.NewNop())
		r := gin.New()
		r.GET("/email/track/:token", h.Track)

		w := do(r, "GET", "/email/track/abc", nil)
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Thank you") {
			t.Errorf("got %d %s", w.Code, w.Body.String())
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		h := NewEmailHandler(&mockEmailService{err: service.ErrTrackTokenNotFound}, "", zap.NewNop())
		r := gin.New()
		r.GET("/email/track/:token", h.Track)

		expect(t, do(r, "GET", "/email/track/nope", nil), http.StatusNotFound, 27001)
	})
}

func TestProfileHandler_Me_Unauthenticated(t *testing.T) {
	h := NewProfileHandler(nil)
	r := gin.New()
	r.GET("/me", h.Me)

	expect(t, do(r, "GET", "/me", nil), http.StatusUnauthorized, 10002)
}
