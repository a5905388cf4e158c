package email

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMTPSenderAllowsOwnAddress(t *testing.T) {
	s, err := NewSMTPSender("localhost", 2525, "", "", "admin@example.com", "Resource Desk")
	require.NoError(t, err)

	// Reaching the ctx check means the message to the sender's own
	// address wasn't rejected up front
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = s.Send(ctx, &Message{To: "admin@example.com", Subject: "Test", Text: "hi"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewSMTPSenderValidates(t *testing.T) {
	_, err := NewSMTPSender("localhost", 25, "", "", "", "")
	assert.ErrorIs(t, err, ErrNoFromAddress)

	_, err = NewSMTPSender("", 25, "", "", "admin@example.com", "")
	assert.Error(t, err)
}
