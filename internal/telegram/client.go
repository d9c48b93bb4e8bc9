// Package telegram — клиент Bot API админ-бота: одно уведомление оператору
// с кнопкой ответа. Доставка best-effort: исход возвращается вызывающему,
// решение «не валить запрос» принимает handler.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// ErrNotConfigured — админ-бот не настроен (нет токена или chat id).
// В development это штатная ситуация: тикет сохраняется без уведомления.
var ErrNotConfigured = errors.New("telegram: admin bot is not configured")

const answerButtonText = "💬 Ответить"

type Client struct {
	baseURL  string
	botToken string
	chatID   string
	http     *http.Client
	log      zerolog.Logger
}

// NewClient создаёт клиент админ-бота. baseURL — обычно
// https://api.telegram.org, в тестах подменяется на httptest-сервер.
func NewClient(baseURL, botToken, chatID string, log zerolog.Logger) *Client {
	return &Client{
		baseURL:  baseURL,
		botToken: botToken,
		chatID:   chatID,
		http: &http.Client{
			Timeout: 5 * time.Second,
		},
		log: log,
	}
}

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type replyMarkup struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

type sendMessageRequest struct {
	ChatID      string      `json:"chat_id"`
	Text        string      `json:"text"`
	ParseMode   string      `json:"parse_mode"`
	ReplyMarkup replyMarkup `json:"reply_markup"`
}

type sendMessageResponse struct {
	OK     bool `json:"ok"`
	Result struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// SendOperatorMessage отправляет HTML-сообщение в админ-чат с одной кнопкой
// ответа, чей callback_data — корреляционный токен. Возвращает message_id
// доставленного сообщения либо причину недоставки.
func (c *Client) SendOperatorMessage(ctx context.Context, text string, callbackData string) (int64, error) {
	if c.botToken == "" || c.chatID == "" {
		return 0, ErrNotConfigured
	}

	payload := sendMessageRequest{
		ChatID:    c.chatID,
		Text:      text,
		ParseMode: "HTML",
		ReplyMarkup: replyMarkup{
			InlineKeyboard: [][]inlineButton{
				{{Text: answerButtonText, CallbackData: callbackData}},
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("telegram: marshal sendMessage: %w", err)
	}

	url := c.baseURL + "/bot" + c.botToken + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("telegram: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("telegram: sendMessage: %w", err)
	}
	defer resp.Body.Close()

	var result sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("telegram: decode sendMessage response: %w", err)
	}
	if !result.OK {
		return 0, fmt.Errorf("telegram: sendMessage failed: %d %s", result.ErrorCode, result.Description)
	}
	c.log.Debug().Int64("message_id", result.Result.MessageID).Msg("admin notification delivered")
	return result.Result.MessageID, nil
}
