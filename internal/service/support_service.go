package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/aischooloff-pixel/boys-hub-pr2/internal/errs"
	"github.com/aischooloff-pixel/boys-hub-pr2/internal/model"
)

// SupportServicer — интерфейс слоя хранения для handler (подмена моком в тестах).
type SupportServicer interface {
	FindProfileByTelegramID(ctx context.Context, telegramID int64) (*model.Profile, error)
	CreateTicket(ctx context.Context, t *model.Ticket) error
	AttachAdminMessage(ctx context.Context, ticketID string, messageID int64) error
	GetByID(ctx context.Context, id string) (*model.Ticket, error)
	List(ctx context.Context, filter map[string]interface{}, limit, offset int) ([]model.Ticket, int64, error)
}

type SupportService struct {
	db *gorm.DB
}

func NewSupportService(db *gorm.DB) *SupportService {
	return &SupportService{db: db}
}

// FindProfileByTelegramID ищет известный профиль пользователя. Отсутствие
// профиля — не ошибка: возвращается (nil, nil), тикет создаётся без привязки.
func (s *SupportService) FindProfileByTelegramID(ctx context.Context, telegramID int64) (*model.Profile, error) {
	var p model.Profile
	err := s.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateTicket сохраняет тикет. short id уникален в пределах пользователя
// (уникальный индекс user_telegram_id+short_id); при коллизии uuid
// перегенерируется и вставка повторяется.
func (s *SupportService) CreateTicket(ctx context.Context, t *model.Ticket) error {
	const maxAttempts = 3
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			t.RegenerateID()
		}
		err = s.db.WithContext(ctx).Create(t).Error
		if err == nil || !isDuplicateKey(err) {
			return err
		}
	}
	return err
}

// AttachAdminMessage записывает id сообщения в админ-чате после успешной доставки.
func (s *SupportService) AttachAdminMessage(ctx context.Context, ticketID string, messageID int64) error {
	res := s.db.WithContext(ctx).
		Model(&model.Ticket{}).
		Where("id = ?", ticketID).
		Update("admin_message_id", messageID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrTicketNotFound
	}
	return nil
}

func (s *SupportService) GetByID(ctx context.Context, id string) (*model.Ticket, error) {
	var t model.Ticket
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrTicketNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ResolveShortID — обратный индекс корреляционного токена: пара
// (telegram id, short id) однозначно указывает на тикет.
func (s *SupportService) ResolveShortID(ctx context.Context, telegramID int64, shortID string) (*model.Ticket, error) {
	var t model.Ticket
	err := s.db.WithContext(ctx).
		Where("user_telegram_id = ? AND short_id = ?", telegramID, shortID).
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrTicketNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (s *SupportService) List(ctx context.Context, filter map[string]interface{}, limit, offset int) ([]model.Ticket, int64, error) {
	var items []model.Ticket
	var total int64
	tx := s.db.WithContext(ctx).Model(&model.Ticket{})
	for k, v := range filter {
		tx = tx.Where(k, v)
	}
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if offset > 0 {
		tx = tx.Offset(offset)
	}
	if err := tx.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// isDuplicateKey распознаёт нарушение уникального индекса у postgres (23505)
// и sqlite (в тестах) по тексту ошибки драйвера.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
