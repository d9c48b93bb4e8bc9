package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aischooloff-pixel/boys-hub-pr2/internal/model"
)

func ticketRouter(h *SupportHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/v1/tickets", h.List)
	r.GET("/api/v1/tickets/:id", h.Get)
	return r
}

func TestGetTicket(t *testing.T) {
	svc := newFakeService()
	ticket := &model.Ticket{UserTelegramID: 7, Question: "q", Status: model.TicketStatusPending}
	if err := svc.CreateTicket(context.Background(), ticket); err != nil {
		t.Fatal(err)
	}
	h, _ := newTestHandler(svc, &fakeNotifier{})
	r := ticketRouter(h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/tickets/"+ticket.ID, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status: want 200, got %d", w.Code)
	}
	var got model.Ticket
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != ticket.ID || got.Question != "q" {
		t.Fatalf("unexpected ticket: %+v", got)
	}
}

func TestGetTicketNotFound(t *testing.T) {
	h, _ := newTestHandler(newFakeService(), &fakeNotifier{})
	r := ticketRouter(h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/tickets/"+uuid.NewString(), nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status: want 404, got %d", w.Code)
	}
}

func TestListTickets(t *testing.T) {
	svc := newFakeService()
	for i := 0; i < 3; i++ {
		ticket := &model.Ticket{UserTelegramID: int64(i), Question: "q", Status: model.TicketStatusPending}
		if err := svc.CreateTicket(context.Background(), ticket); err != nil {
			t.Fatal(err)
		}
	}
	h, _ := newTestHandler(svc, &fakeNotifier{})
	r := ticketRouter(h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/tickets", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status: want 200, got %d", w.Code)
	}
	var body struct {
		Tickets []model.Ticket `json:"tickets"`
		Total   int64          `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Total != 3 || len(body.Tickets) != 3 {
		t.Fatalf("want 3 tickets, got total=%d len=%d", body.Total, len(body.Tickets))
	}
}

func TestListTicketsBadTelegramID(t *testing.T) {
	h, _ := newTestHandler(newFakeService(), &fakeNotifier{})
	r := ticketRouter(h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/tickets?telegram_id=abc", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: want 400, got %d", w.Code)
	}
}
