package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Kiran9223/service-link-sub000/internal/domain"
	"github.com/Kiran9223/service-link-sub000/internal/dto"
)

// MockSlotService is a mock implementation of SlotService
type MockSlotService struct {
	CreateSlotFunc        func(ctx context.Context, actor domain.Actor, req *dto.CreateSlotRequest) (*dto.SlotResponse, error)
	UpdateSlotFunc        func(ctx context.Context, actor domain.Actor, slotID string, req *dto.UpdateSlotRequest) (*dto.SlotResponse, error)
	SetAvailabilityFunc   func(ctx context.Context, actor domain.Actor, slotID string, available bool) (*dto.SlotResponse, error)
	DeleteSlotFunc        func(ctx context.Context, actor domain.Actor, slotID string) error
	FindBookableSlotsFunc func(ctx context.Context, providerID, date string) ([]*dto.SlotResponse, error)
	GetProviderSlotsFunc  func(ctx context.Context, providerID, from, to string) ([]*dto.SlotResponse, error)
}

func (m *MockSlotService) CreateSlot(ctx context.Context, actor domain.Actor, req *dto.CreateSlotRequest) (*dto.SlotResponse, error) {
	if m.CreateSlotFunc != nil {
		return m.CreateSlotFunc(ctx, actor, req)
	}
	return &dto.SlotResponse{ID: "slot-001", ProviderID: actor.ID, Available: true}, nil
}

func (m *MockSlotService) UpdateSlot(ctx context.Context, actor domain.Actor, slotID string, req *dto.UpdateSlotRequest) (*dto.SlotResponse, error) {
	if m.UpdateSlotFunc != nil {
		return m.UpdateSlotFunc(ctx, actor, slotID, req)
	}
	return &dto.SlotResponse{ID: slotID, ProviderID: actor.ID, Available: true}, nil
}

func (m *MockSlotService) SetAvailability(ctx context.Context, actor domain.Actor, slotID string, available bool) (*dto.SlotResponse, error) {
	if m.SetAvailabilityFunc != nil {
		return m.SetAvailabilityFunc(ctx, actor, slotID, available)
	}
	return &dto.SlotResponse{ID: slotID, ProviderID: actor.ID, Available: available}, nil
}

func (m *MockSlotService) DeleteSlot(ctx context.Context, actor domain.Actor, slotID string) error {
	if m.DeleteSlotFunc != nil {
		return m.DeleteSlotFunc(ctx, actor, slotID)
	}
	return nil
}

func (m *MockSlotService) FindBookableSlots(ctx context.Context, providerID, date string) ([]*dto.SlotResponse, error) {
	if m.FindBookableSlotsFunc != nil {
		return m.FindBookableSlotsFunc(ctx, providerID, date)
	}
	return []*dto.SlotResponse{}, nil
}

func (m *MockSlotService) GetProviderSlots(ctx context.Context, providerID, from, to string) ([]*dto.SlotResponse, error) {
	if m.GetProviderSlotsFunc != nil {
		return m.GetProviderSlotsFunc(ctx, providerID, from, to)
	}
	return []*dto.SlotResponse{}, nil
}

func slotTestRouter(svc *MockSlotService, actor domain.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)

	h := NewSlotHandler(svc)

	r := gin.New()
	slots := r.Group("/slots", withActor(actor))
	slots.POST("", h.CreateSlot)
	slots.PUT("/:id", h.UpdateSlot)
	slots.PATCH("/:id/availability", h.SetAvailability)
	slots.DELETE("/:id", h.DeleteSlot)
	r.GET("/providers/:id/slots/bookable", h.FindBookableSlots)
	return r
}

func validSlotBody() []byte {
	body, _ := json.Marshal(map[string]any{
		"slot_date": "2026-09-01",
		"start_at":  "2026-09-01T09:00:00Z",
		"end_at":    "2026-09-01T11:00:00Z",
	})
	return body
}

func TestSlotHandler_CreateSlot(t *testing.T) {
	provider := domain.Actor{ID: "provider-001", Role: domain.RoleProvider}

	tests := []struct {
		name       string
		body       []byte
		svcErr     error
		wantStatus int
	}{
		{
			name:       "created",
			body:       validSlotBody(),
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing fields",
			body:       []byte(`{"slot_date":"2026-09-01"}`),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "overlap",
			body:       validSlotBody(),
			svcErr:     domain.ErrSlotOverlap,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "outside window",
			body:       validSlotBody(),
			svcErr:     domain.ErrSlotOutsideWindow,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockSlotService{}
			if tt.svcErr != nil {
				svc.CreateSlotFunc = func(ctx context.Context, actor domain.Actor, req *dto.CreateSlotRequest) (*dto.SlotResponse, error) {
					return nil, tt.svcErr
				}
			}
			router := slotTestRouter(svc, provider)

			req := httptest.NewRequest(http.MethodPost, "/slots", bytes.NewBuffer(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body: %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestSlotHandler_SetAvailability(t *testing.T) {
	provider := domain.Actor{ID: "provider-001", Role: domain.RoleProvider}

	var gotAvailable bool
	svc := &MockSlotService{
		SetAvailabilityFunc: func(ctx context.Context, actor domain.Actor, slotID string, available bool) (*dto.SlotResponse, error) {
			gotAvailable = available
			return &dto.SlotResponse{ID: slotID, Available: available}, nil
		},
	}
	router := slotTestRouter(svc, provider)

	// explicit false must reach the service, not be treated as missing
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/slots/slot-001/availability", bytes.NewBufferString(`{"available":false}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
	}
	if gotAvailable {
		t.Error("available = true, want false")
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPatch, "/slots/slot-001/availability", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d (available is required)", w.Code, http.StatusBadRequest)
	}
}

func TestSlotHandler_DeleteSlot(t *testing.T) {
	provider := domain.Actor{ID: "provider-001", Role: domain.RoleProvider}

	tests := []struct {
		name       string
		svcErr     error
		wantStatus int
	}{
		{name: "deleted", svcErr: nil, wantStatus: http.StatusNoContent},
		{name: "booked", svcErr: domain.ErrSlotBooked, wantStatus: http.StatusConflict},
		{name: "not owner", svcErr: domain.ErrForbidden, wantStatus: http.StatusForbidden},
		{name: "not found", svcErr: domain.ErrSlotNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockSlotService{}
			if tt.svcErr != nil {
				svc.DeleteSlotFunc = func(ctx context.Context, actor domain.Actor, slotID string) error {
					return tt.svcErr
				}
			}
			router := slotTestRouter(svc, provider)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/slots/slot-001", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body: %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestSlotHandler_FindBookableSlots(t *testing.T) {
	var gotProvider, gotDate string
	svc := &MockSlotService{
		FindBookableSlotsFunc: func(ctx context.Context, providerID, date string) ([]*dto.SlotResponse, error) {
			gotProvider, gotDate = providerID, date
			return []*dto.SlotResponse{{ID: "slot-001", ProviderID: providerID, Available: true}}, nil
		},
	}
	router := slotTestRouter(svc, domain.Actor{ID: "customer-001", Role: domain.RoleCustomer})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/providers/provider-001/slots/bookable?date=2026-09-01", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
	}
	if gotProvider != "provider-001" || gotDate != "2026-09-01" {
		t.Errorf("provider/date = %s/%s, want provider-001/2026-09-01", gotProvider, gotDate)
	}

	var resp struct {
		Slots []*dto.SlotResponse `json:"slots"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(resp.Slots) != 1 {
		t.Errorf("slots = %d, want 1", len(resp.Slots))
	}
}
