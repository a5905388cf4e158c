package validators

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmailValidator(t *testing.T) {
	assert.NoError(t, EmailValidator("lead@example.com"))
	assert.NoError(t, EmailValidator("first.last+tag@sub.example.co"))

	assert.ErrorIs(t, EmailValidator(""), ErrEmailEmpty)
	assert.ErrorIs(t, EmailValidator("not-an-email"), ErrEmailInvalid)
	assert.ErrorIs(t, EmailValidator("Jane <jane@example.com>"), ErrEmailInvalid)
	assert.ErrorIs(t, EmailValidator(strings.Repeat("a", 250)+"@example.com"), ErrEmailTooLong)
}

func TestURLValidator(t *testing.T) {
	assert.NoError(t, URLValidator("https://example.com/resources/playbook.pdf"))
	assert.NoError(t, URLValidator("http://localhost:3000/x"))

	assert.ErrorIs(t, URLValidator(""), ErrURLEmpty)
	assert.ErrorIs(t, URLValidator("/relative/path"), ErrURLInvalid)
	assert.ErrorIs(t, URLValidator("javascript:alert(1)"), ErrURLInvalid)
	assert.ErrorIs(t, URLValidator("ftp://example.com/file"), ErrURLInvalid)
	assert.ErrorIs(t, URLValidator("https://example.com/"+strings.Repeat("a", MaxURLLength)), ErrURLTooLong)
}

func TestMessageValidator(t *testing.T) {
	assert.NoError(t, MessageValidator(""))
	assert.NoError(t, MessageValidator(strings.Repeat("é", MaxMessageLength)))
	assert.ErrorIs(t, MessageValidator(strings.Repeat("a", MaxMessageLength+1)), ErrMessageTooLong)
}
