// Package token кодирует callback-токен кнопки «Ответить» в уведомлении
// оператору. Токен связывает нажатие кнопки с пользователем и тикетом без
// обращения к базе: support_answer:<telegram_id>:<short_id>.
//
// Telegram ограничивает callback_data 64 байтами, поэтому в токен попадает
// короткий id тикета, а не полный uuid. Обратное разрешение short id в тикет
// делает service.ResolveShortID.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Tag отличает callback ответа поддержки от прочих кнопок ботов.
const Tag = "support_answer"

const sep = ":"

var ErrInvalidToken = errors.New("token: invalid support callback token")

// Encode собирает callback-токен для пары (telegram id, короткий id тикета).
func Encode(telegramID int64, shortID string) string {
	return Tag + sep + strconv.FormatInt(telegramID, 10) + sep + shortID
}

// Decode разбирает токен обратно. Токены с чужим тегом, лишними или пустыми
// полями отклоняются.
func Decode(s string) (telegramID int64, shortID string, err error) {
	parts := strings.Split(s, sep)
	if len(parts) != 3 || parts[0] != Tag {
		return 0, "", ErrInvalidToken
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("%w: telegram id: %v", ErrInvalidToken, err)
	}
	if parts[2] == "" {
		return 0, "", fmt.Errorf("%w: empty short id", ErrInvalidToken)
	}
	return id, parts[2], nil
}
