package mailer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jviciana84/dealerops-backend/pkg/config"
)

func testConfig() config.SMTPConfig {
	return config.SMTPConfig{
		Host:        "smtp.example.com",
		Port:        465,
		User:        "relay",
		Password:    "secret",
		From:        "noreply@example.com",
		FromName:    "Dealer Ops",
		SendTimeout: 10 * time.Second,
	}
}

func TestNewSMTPRequiresCredentials(t *testing.T) {
	cfg := testConfig()
	cfg.Password = ""

	_, err := NewSMTP(cfg)
	assert.Error(t, err)
}

func TestComposeRejectsEmptyRecipients(t *testing.T) {
	sender, err := NewSMTP(testConfig())
	require.NoError(t, err)

	_, err = sender.compose(Message{Subject: "hola"})
	assert.Error(t, err)
}

func TestComposeCollectsAllAddressErrors(t *testing.T) {
	sender, err := NewSMTP(testConfig())
	require.NoError(t, err)

	_, err = sender.compose(Message{
		To:      []string{"not-an-address", "also bad"},
		Subject: "hola",
		HTML:    "<p>hola</p>",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not-an-address")
	assert.Contains(t, err.Error(), "also bad")
}

func TestComposeValidMessage(t *testing.T) {
	sender, err := NewSMTP(testConfig())
	require.NoError(t, err)

	m, err := sender.compose(Message{
		To:      []string{"pagos@example.com"},
		CC:      []string{"backoffice@example.com"},
		ReplyTo: "asesor@example.com",
		Subject: "Nuevo extorno",
		HTML:    "<p>detalle</p>",
	})
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Len(t, m.GetTo(), 1)
	assert.Len(t, m.GetCc(), 1)
}
