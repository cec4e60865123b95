package mailer

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockTransport struct {
	mock.Mock
}

func (m *mockTransport) Deliver(ctx context.Context, msg Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer()
	require.NoError(t, err)
	return r
}

func TestRenderer_RendersEveryTemplate(t *testing.T) {
	r := newTestRenderer(t)

	for _, name := range []string{TemplateVerification, TemplateVerified, TemplatePasswordReset} {
		msg, err := r.Render(name, map[string]interface{}{
			"name":         "Ana",
			"code":         "123456",
			"frontend_url": "http://app.test",
			"ttl_minutes":  15,
		})
		require.NoError(t, err, name)
		assert.NotEmpty(t, msg.Subject, name)
		assert.NotEmpty(t, msg.Text, name)
		assert.NotEmpty(t, msg.HTML, name)
	}
}

func TestRenderer_EscapesHTML(t *testing.T) {
	r := newTestRenderer(t)

	msg, err := r.Render(TemplateVerified, map[string]interface{}{"name": "<script>x</script>"})
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "<script>")
}

func TestRenderer_UnknownTemplate(t *testing.T) {
	_, err := newTestRenderer(t).Render("nope", nil)
	assert.Error(t, err)
}

func TestMailer_SendVerification(t *testing.T) {
	transport := new(mockTransport)
	transport.On("Deliver", mock.Anything, mock.MatchedBy(func(msg Message) bool {
		return msg.To == "a@x.com" &&
			msg.Subject == "Verify account" &&
			strings.Contains(msg.HTML, "654321") &&
			strings.Contains(msg.HTML, "http://app.test/auth/confirm-account") &&
			strings.Contains(msg.Text, "15 minutes")
	})).Return(nil).Once()

	m := New(newTestRenderer(t), transport, "http://app.test", 15*time.Minute)
	require.NoError(t, m.SendVerification(context.Background(), "Ana", "a@x.com", "654321"))

	transport.AssertExpectations(t)
}

func TestMailer_SendPasswordReset(t *testing.T) {
	transport := new(mockTransport)
	transport.On("Deliver", mock.Anything, mock.MatchedBy(func(msg Message) bool {
		return msg.To == "a@x.com" && strings.Contains(msg.Text, "111222")
	})).Return(errors.New("relay down")).Once()

	m := New(newTestRenderer(t), transport, "http://app.test", 15*time.Minute)
	err := m.SendPasswordReset(context.Background(), "a@x.com", "111222")

	assert.EqualError(t, err, "relay down")
	transport.AssertExpectations(t)
}

func TestMailer_SendVerified(t *testing.T) {
	transport := new(mockTransport)
	transport.On("Deliver", mock.Anything, mock.MatchedBy(func(msg Message) bool {
		return msg.To == "a@x.com" && strings.Contains(msg.HTML, "Ana")
	})).Return(nil).Once()

	m := New(newTestRenderer(t), transport, "http://app.test", 15*time.Minute)
	require.NoError(t, m.SendVerified(context.Background(), "Ana", "a@x.com"))
	transport.AssertExpectations(t)
}

func TestSMTPTransport_Deliver(t *testing.T) {
	tr, err := NewSMTPTransport("mail.test", "2525", "user", "pass", `"Budget Control" <no-reply@budget.test>`)
	require.NoError(t, err)

	var gotAddr, gotFrom string
	var gotTo []string
	var gotBody []byte
	tr.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotBody = addr, from, to, msg
		assert.NotNil(t, a)
		return nil
	}

	err = tr.Deliver(context.Background(), Message{To: "a@x.com", Subject: "Verify account", Text: "plain", HTML: "<b>html</b>"})
	require.NoError(t, err)

	assert.Equal(t, "mail.test:2525", gotAddr)
	assert.Equal(t, "no-reply@budget.test", gotFrom)
	assert.Equal(t, []string{"a@x.com"}, gotTo)
	body := string(gotBody)
	assert.Contains(t, body, "To: a@x.com\r\n")
	assert.Contains(t, body, "Subject: Verify account\r\n")
	assert.Contains(t, body, "multipart/alternative")
	assert.Contains(t, body, "plain")
	assert.Contains(t, body, "<b>html</b>")
}

func TestSMTPTransport_NoAuthWithoutUser(t *testing.T) {
	tr, err := NewSMTPTransport("mail.test", "25", "", "", "no-reply@budget.test")
	require.NoError(t, err)
	assert.Nil(t, tr.auth)
}

func TestSMTPTransport_CancelledContext(t *testing.T) {
	tr, err := NewSMTPTransport("mail.test", "25", "", "", "no-reply@budget.test")
	require.NoError(t, err)
	tr.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("send must not be called")
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, tr.Deliver(ctx, Message{To: "a@x.com"}), context.Canceled)
}

func TestNewSMTPTransport_InvalidSender(t *testing.T) {
	_, err := NewSMTPTransport("mail.test", "25", "", "", "not an address")
	assert.Error(t, err)
}

func TestAsync_DeliversInBackground(t *testing.T) {
	rec := NewRecorder()
	async := NewAsync(rec, zap.NewNop().Sugar())

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, async.SendVerification(ctx, "Ana", "a@x.com", "123456"))
	require.NoError(t, async.SendPasswordReset(ctx, "a@x.com", "654321"))
	require.NoError(t, async.SendVerified(ctx, "Ana", "a@x.com"))
	// Cancelling the request context must not stop delivery.
	cancel()
	async.Wait()

	assert.Len(t, rec.Sent(), 3)
	assert.Equal(t, "654321", rec.LastCode("a@x.com"))
}

func TestAsync_SwallowsErrors(t *testing.T) {
	rec := NewRecorder()
	rec.Err = errors.New("smtp down")
	async := NewAsync(rec, zap.NewNop().Sugar())

	assert.NoError(t, async.SendVerification(context.Background(), "Ana", "a@x.com", "123456"))
	async.Wait()
	assert.Equal(t, 1, rec.Count(TemplateVerification))
}

func TestRecorder(t *testing.T) {
	rec := NewRecorder()
	ctx := context.Background()

	_ = rec.SendVerification(ctx, "Ana", "a@x.com", "111111")
	_ = rec.SendVerification(ctx, "Bo", "b@x.com", "222222")
	_ = rec.SendVerified(ctx, "Ana", "a@x.com")

	assert.Equal(t, "111111", rec.LastCode("a@x.com"))
	assert.Equal(t, "222222", rec.LastCode("b@x.com"))
	assert.Equal(t, "", rec.LastCode("c@x.com"))
	assert.Equal(t, 2, rec.Count(TemplateVerification))
	assert.Equal(t, 1, rec.Count(TemplateVerified))
}
