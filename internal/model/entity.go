package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TicketStatus string

const (
	TicketStatusPending  TicketStatus = "pending"
	TicketStatusAnswered TicketStatus = "answered"
)

// ShortIDLength — длина короткого идентификатора тикета (префикс uuid),
// попадающего в callback-токен кнопки ответа.
const ShortIDLength = 8

// Ticket — вопрос пользователя в поддержку.
type Ticket struct {
	ID      string `gorm:"type:uuid;primaryKey" json:"id"`
	ShortID string `gorm:"type:varchar(8);uniqueIndex:uq_tickets_user_short,priority:2;not null" json:"short_id"`

	// UserTelegramID — подтверждённый верификатором telegram id, никогда не
	// берётся из тела запроса.
	UserTelegramID int64   `gorm:"uniqueIndex:uq_tickets_user_short,priority:1;index;not null" json:"user_telegram_id"`
	UserProfileID  *string `gorm:"type:uuid;index" json:"user_profile_id,omitempty"`

	Question string       `gorm:"type:text;not null" json:"question"`
	Status   TicketStatus `gorm:"type:varchar(32);index;not null" json:"status"`

	// AdminMessageID — id сообщения в админ-чате; NULL, пока уведомление
	// оператору не доставлено.
	AdminMessageID *int64 `gorm:"column:admin_message_id" json:"admin_message_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate генерирует uuid и производный short id, если они не заданы.
func (t *Ticket) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.RegenerateID()
	}
	if t.ShortID == "" {
		t.ShortID = t.ID[:ShortIDLength]
	}
	return nil
}

// RegenerateID выдаёт тикету новый uuid и short id. Используется при
// коллизии short id в пределах одного пользователя.
func (t *Ticket) RegenerateID() {
	t.ID = uuid.NewString()
	t.ShortID = t.ID[:ShortIDLength]
}

// Profile — известный профиль пользователя mini-app. Сервис поддержки его
// только читает.
type Profile struct {
	ID         string `gorm:"type:uuid;primaryKey" json:"id"`
	TelegramID int64  `gorm:"index;not null" json:"telegram_id"`
	FirstName  string `gorm:"type:varchar(255)" json:"first_name,omitempty"`
	Username   string `gorm:"type:varchar(255)" json:"username,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
