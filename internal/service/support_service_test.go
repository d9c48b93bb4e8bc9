package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aischooloff-pixel/boys-hub-pr2/internal/errs"
	"github.com/aischooloff-pixel/boys-hub-pr2/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "support.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.Profile{}, &model.Ticket{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestCreateTicket(t *testing.T) {
	svc := NewSupportService(newTestDB(t))
	ctx := context.Background()

	ticket := &model.Ticket{
		UserTelegramID: 7,
		Question:       "How do I top up?",
		Status:         model.TicketStatusPending,
	}
	if err := svc.CreateTicket(ctx, ticket); err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if ticket.ID == "" {
		t.Fatal("ticket id not generated")
	}
	if ticket.ShortID != ticket.ID[:model.ShortIDLength] {
		t.Errorf("short id %q is not a prefix of %q", ticket.ShortID, ticket.ID)
	}

	stored, err := svc.GetByID(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != model.TicketStatusPending {
		t.Errorf("status: want pending, got %q", stored.Status)
	}
	if stored.AdminMessageID != nil {
		t.Errorf("admin message id should start NULL, got %v", *stored.AdminMessageID)
	}
	if stored.UserProfileID != nil {
		t.Errorf("profile id should be NULL without a profile, got %v", *stored.UserProfileID)
	}
}

func TestCreateTicketShortIDCollision(t *testing.T) {
	svc := NewSupportService(newTestDB(t))
	ctx := context.Background()

	first := &model.Ticket{UserTelegramID: 7, Question: "q1", Status: model.TicketStatusPending}
	if err := svc.CreateTicket(ctx, first); err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	// Навязанная коллизия: другой uuid с тем же префиксом у того же пользователя.
	second := &model.Ticket{
		ID:             first.ShortID + "-aaaa-aaaa-aaaa-aaaaaaaaaaaa",
		ShortID:        first.ShortID,
		UserTelegramID: 7,
		Question:       "q2",
		Status:         model.TicketStatusPending,
	}
	if err := svc.CreateTicket(ctx, second); err != nil {
		t.Fatalf("CreateTicket after collision: %v", err)
	}
	if second.ShortID == first.ShortID {
		t.Fatalf("short id was not regenerated after collision: %q", second.ShortID)
	}

	// У разных пользователей одинаковый short id допустим.
	other := &model.Ticket{
		ID:             first.ShortID + "-bbbb-bbbb-bbbb-bbbbbbbbbbbb",
		ShortID:        first.ShortID,
		UserTelegramID: 8,
		Question:       "q3",
		Status:         model.TicketStatusPending,
	}
	if err := svc.CreateTicket(ctx, other); err != nil {
		t.Fatalf("CreateTicket for other user: %v", err)
	}
	if other.ShortID != first.ShortID {
		t.Errorf("short id should survive for a different user, got %q", other.ShortID)
	}
}

func TestFindProfileByTelegramID(t *testing.T) {
	db := newTestDB(t)
	svc := NewSupportService(db)
	ctx := context.Background()

	// Отсутствие профиля — не ошибка.
	p, err := svc.FindProfileByTelegramID(ctx, 7)
	if err != nil {
		t.Fatalf("FindProfileByTelegramID: %v", err)
	}
	if p != nil {
		t.Fatalf("want nil profile, got %+v", p)
	}

	profile := &model.Profile{TelegramID: 7, FirstName: "Мария", Username: "maria"}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	p, err = svc.FindProfileByTelegramID(ctx, 7)
	if err != nil {
		t.Fatalf("FindProfileByTelegramID: %v", err)
	}
	if p == nil || p.FirstName != "Мария" {
		t.Fatalf("unexpected profile: %+v", p)
	}
}

func TestAttachAdminMessage(t *testing.T) {
	svc := NewSupportService(newTestDB(t))
	ctx := context.Background()

	ticket := &model.Ticket{UserTelegramID: 7, Question: "q", Status: model.TicketStatusPending}
	if err := svc.CreateTicket(ctx, ticket); err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if err := svc.AttachAdminMessage(ctx, ticket.ID, 555); err != nil {
		t.Fatalf("AttachAdminMessage: %v", err)
	}

	stored, err := svc.GetByID(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.AdminMessageID == nil || *stored.AdminMessageID != 555 {
		t.Fatalf("admin message id: want 555, got %v", stored.AdminMessageID)
	}

	if err := svc.AttachAdminMessage(ctx, "00000000-0000-0000-0000-000000000000", 1); !errors.Is(err, errs.ErrTicketNotFound) {
		t.Fatalf("want ErrTicketNotFound, got %v", err)
	}
}

func TestResolveShortID(t *testing.T) {
	svc := NewSupportService(newTestDB(t))
	ctx := context.Background()

	ticket := &model.Ticket{UserTelegramID: 42, Question: "q", Status: model.TicketStatusPending}
	if err := svc.CreateTicket(ctx, ticket); err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	found, err := svc.ResolveShortID(ctx, 42, ticket.ShortID)
	if err != nil {
		t.Fatalf("ResolveShortID: %v", err)
	}
	if found.ID != ticket.ID {
		t.Errorf("resolved wrong ticket: %q vs %q", found.ID, ticket.ID)
	}

	// Чужой telegram id не должен разрешать тот же short id.
	if _, err := svc.ResolveShortID(ctx, 43, ticket.ShortID); !errors.Is(err, errs.ErrTicketNotFound) {
		t.Fatalf("want ErrTicketNotFound, got %v", err)
	}
}

func TestList(t *testing.T) {
	db := newTestDB(t)
	svc := NewSupportService(db)
	ctx := context.Background()

	for i, tg := range []int64{7, 7, 8} {
		ticket := &model.Ticket{UserTelegramID: tg, Question: "q", Status: model.TicketStatusPending}
		if i == 2 {
			ticket.Status = model.TicketStatusAnswered
		}
		if err := svc.CreateTicket(ctx, ticket); err != nil {
			t.Fatalf("CreateTicket: %v", err)
		}
	}

	items, total, err := svc.List(ctx, map[string]interface{}{"user_telegram_id = ?": int64(7)}, 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("want 2 tickets for user 7, got total=%d len=%d", total, len(items))
	}

	items, total, err = svc.List(ctx, map[string]interface{}{"status = ?": "answered"}, 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("want 1 answered ticket, got total=%d len=%d", total, len(items))
	}

	items, total, err = svc.List(ctx, nil, 1, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 || len(items) != 1 {
		t.Fatalf("limit=1: want total=3 len=1, got total=%d len=%d", total, len(items))
	}
}
