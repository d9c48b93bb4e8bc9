// Package initdata проверяет подпись Telegram WebApp initData.
//
// Схема подписи описана в документации Telegram: ключ подписи — это
// HMAC-SHA256 от токена бота с ключом-литералом "WebAppData" (именно в таком
// порядке: токен — сообщение, литерал — ключ), а подпись — HMAC-SHA256 от
// data-check-string этим ключом. Порядок нельзя «исправлять».
package initdata

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// User — личность, подтверждённая initData.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

var (
	ErrNoHash    = errors.New("initdata: hash field is missing")
	ErrBadHash   = errors.New("initdata: hash mismatch")
	ErrNoUser    = errors.New("initdata: user field is missing")
	ErrMalformed = errors.New("initdata: malformed payload")
)

// Reason — короткий код причины отказа для логов и метрик. Наружу клиенту
// эти коды не отдаются.
func Reason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNoHash):
		return "no_hash"
	case errors.Is(err, ErrBadHash):
		return "bad_hash"
	case errors.Is(err, ErrNoUser):
		return "no_user"
	default:
		return "exception"
	}
}

// Verify проверяет подпись raw (query-string из window.Telegram.WebApp.initData)
// токеном бота и возвращает пользователя из поля user.
//
// Чистая функция: без I/O и состояния, безопасна для конкурентных вызовов.
func Verify(raw string, botToken string) (*User, error) {
	params, err := url.ParseQuery(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	hashValues, ok := params["hash"]
	if !ok || len(hashValues) == 0 {
		return nil, ErrNoHash
	}
	submitted := hashValues[0]
	delete(params, "hash")

	if !hmac.Equal([]byte(checkHash(params, botToken)), []byte(submitted)) {
		return nil, ErrBadHash
	}

	userValues, ok := params["user"]
	if !ok || len(userValues) == 0 {
		return nil, ErrNoUser
	}
	var user User
	if err := json.Unmarshal([]byte(userValues[0]), &user); err != nil {
		return nil, fmt.Errorf("%w: user: %v", ErrMalformed, err)
	}
	if user.ID == 0 {
		return nil, fmt.Errorf("%w: user id is missing", ErrMalformed)
	}
	return &user, nil
}

// checkHash строит data-check-string (ключи по возрастанию, строки key=value
// через \n, без завершающего \n) и считает hex-подпись ключом из botToken.
func checkHash(params url.Values, botToken string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params.Get(k))
	}

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))
	signingKey := secret.Sum(nil)

	mac := hmac.New(sha256.New, signingKey)
	mac.Write([]byte(b.String()))
	return hex.EncodeToString(mac.Sum(nil))
}
