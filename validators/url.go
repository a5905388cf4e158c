package validators

import (
	"errors"
	"net/url"
	"strings"
)

const (
	MaxURLLength     = 2048
	MaxMessageLength = 2000
)

var (
	ErrURLEmpty       = errors.New("no url provided")
	ErrURLInvalid     = errors.New("url must be an absolute http or https url")
	ErrURLTooLong     = errors.New("url is too long")
	ErrMessageTooLong = errors.New("message is too long")
)

// URLValidator accepts absolute http(s) URLs only
func URLValidator(raw string) error {
	if raw == "" {
		return ErrURLEmpty
	}

	if len(raw) > MaxURLLength {
		return ErrURLTooLong
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ErrURLInvalid
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return nil
	}

	return ErrURLInvalid
}

func MessageValidator(m string) error {
	if len([]rune(m)) > MaxMessageLength {
		return ErrMessageTooLong
	}

	return nil
}
