package telegram

import (
	"fmt"
	"html"
	"strconv"
)

// FormatOperatorMessage собирает текст уведомления операторам. Вопрос
// подставляется целиком, без обрезания: оператору нужен полный текст.
// Пользовательские строки экранируются — parse_mode=HTML.
func FormatOperatorMessage(name, handle string, telegramID int64, question string) string {
	display := "ID:" + strconv.FormatInt(telegramID, 10)
	if handle != "" {
		display = "@" + handle
	}
	return fmt.Sprintf(
		"❓ <b>Новый вопрос в поддержку</b>\n\n"+
			"👤 <b>От:</b> %s (%s)\n"+
			"🆔 <b>Telegram ID:</b> %d\n\n"+
			"📝 <b>Вопрос:</b>\n%s",
		html.EscapeString(name), html.EscapeString(display), telegramID, html.EscapeString(question),
	)
}
