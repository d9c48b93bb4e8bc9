package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/aischooloff-pixel/boys-hub-pr2/internal/initdata"
	"github.com/aischooloff-pixel/boys-hub-pr2/internal/kafka"
	"github.com/aischooloff-pixel/boys-hub-pr2/internal/metrics"
	"github.com/aischooloff-pixel/boys-hub-pr2/internal/model"
	"github.com/aischooloff-pixel/boys-hub-pr2/internal/service"
	"github.com/aischooloff-pixel/boys-hub-pr2/internal/telegram"
	"github.com/aischooloff-pixel/boys-hub-pr2/internal/token"
)

// Notifier доставляет уведомление оператору. Возвращает message_id либо
// причину недоставки; недоставка для Submit не фатальна.
type Notifier interface {
	SendOperatorMessage(ctx context.Context, text string, callbackData string) (int64, error)
}

// fallbackName подставляется, когда имени нет ни в профиле, ни в initData.
const fallbackName = "User"

type SupportHandler struct {
	botToken string
	svc      service.SupportServicer
	notifier Notifier
	events   kafka.TicketEventProducer
	log      zerolog.Logger
}

func NewSupportHandler(botToken string, svc service.SupportServicer, notifier Notifier, events kafka.TicketEventProducer, log zerolog.Logger) *SupportHandler {
	return &SupportHandler{
		botToken: botToken,
		svc:      svc,
		notifier: notifier,
		events:   events,
		log:      log,
	}
}

type submitRequest struct {
	LaunchContext string `json:"launchContext"`
	QuestionText  string `json:"questionText"`
}

type submitResponse struct {
	Success  bool   `json:"success"`
	TicketID string `json:"ticketId"`
}

// Submit принимает вопрос из mini-app: проверка подписи initData, тикет в
// базе, уведомление в админ-чат с кнопкой ответа.
//
// Тикет — единственное, от чего зависит успех запроса: сбой уведомления или
// записи message_id логируется, но клиенту не виден. Тикет без
// admin_message_id — валидное состояние («ещё не доставлено»).
func (h *SupportHandler) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.SubmissionsTotal.WithLabelValues("server_error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}

	user, err := initdata.Verify(req.LaunchContext, h.botToken)
	if err != nil {
		// Причина отказа — только в лог, клиент видит общий unauthorized.
		reason := initdata.Reason(err)
		h.log.Warn().Str("reason", reason).Int("init_data_len", len(req.LaunchContext)).Msg("initData verification failed")
		metrics.VerificationFailures.WithLabelValues(reason).Inc()
		metrics.SubmissionsTotal.WithLabelValues("unauthorized").Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	question := strings.TrimSpace(req.QuestionText)
	if question == "" {
		metrics.SubmissionsTotal.WithLabelValues("empty_question").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty_question"})
		return
	}

	ctx := c.Request.Context()

	// Поиск профиля best-effort: его отсутствие (или сбой поиска) не мешает
	// созданию тикета.
	profile, err := h.svc.FindProfileByTelegramID(ctx, user.ID)
	if err != nil {
		h.log.Warn().Err(err).Int64("telegram_id", user.ID).Msg("profile lookup failed")
		profile = nil
	}

	ticket := &model.Ticket{
		UserTelegramID: user.ID,
		Question:       question,
		Status:         model.TicketStatusPending,
	}
	if profile != nil {
		ticket.UserProfileID = &profile.ID
	}
	if err := h.svc.CreateTicket(ctx, ticket); err != nil {
		h.log.Error().Err(err).Int64("telegram_id", user.ID).Msg("ticket insert failed")
		metrics.SubmissionsTotal.WithLabelValues("save_failed").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save_failed"})
		return
	}
	h.events.ProduceTicketEvent(ctx, "ticket.created", map[string]interface{}{
		"ticket_id":        ticket.ID,
		"user_telegram_id": ticket.UserTelegramID,
		"status":           string(ticket.Status),
	})

	h.notifyOperators(ctx, user, profile, ticket)

	metrics.SubmissionsTotal.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, submitResponse{Success: true, TicketID: ticket.ID})
}

// notifyOperators отправляет уведомление и привязывает message_id к тикету.
// Все сбои здесь не фатальны для запроса.
func (h *SupportHandler) notifyOperators(ctx context.Context, user *initdata.User, profile *model.Profile, ticket *model.Ticket) {
	name := ""
	handle := user.Username
	if profile != nil {
		name = profile.FirstName
		if handle == "" {
			handle = profile.Username
		}
	}
	if name == "" {
		name = user.FirstName
	}
	if name == "" {
		name = fallbackName
	}

	text := telegram.FormatOperatorMessage(name, handle, user.ID, ticket.Question)
	callback := token.Encode(user.ID, ticket.ShortID)

	messageID, err := h.notifier.SendOperatorMessage(ctx, text, callback)
	if err != nil {
		h.log.Warn().Err(err).Str("ticket_id", ticket.ID).Msg("admin notification undelivered")
		metrics.NotificationsTotal.WithLabelValues("undelivered").Inc()
		return
	}
	metrics.NotificationsTotal.WithLabelValues("delivered").Inc()

	if err := h.svc.AttachAdminMessage(ctx, ticket.ID, messageID); err != nil {
		// Тикет уже есть и ответить на него можно другим путём.
		h.log.Warn().Err(err).Str("ticket_id", ticket.ID).Int64("message_id", messageID).Msg("attach admin message failed")
		return
	}
	h.events.ProduceTicketEvent(ctx, "ticket.notified", map[string]interface{}{
		"ticket_id":        ticket.ID,
		"admin_message_id": messageID,
	})
}
