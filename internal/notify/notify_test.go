package notify

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDigest() Digest {
	return Digest{
		Question: "Giá VCB hôm nay",
		Answer:   "**VCB** đóng cửa ở 65.2 <tăng 1.2%>",
		Label:    "price",
		Symbols:  []string{"VCB"},
		Sources:  []string{"VCB"},
		Success:  true,
		AskedAt:  time.Date(2025, 3, 12, 9, 30, 0, 0, time.UTC),
	}
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "Stockchat VCB: Giá VCB hôm nay", sampleDigest().Subject())

	d := Digest{Question: strings.Repeat("á", 70)}
	assert.Equal(t, "Stockchat: "+strings.Repeat("á", 60)+"…", d.Subject())
}

func TestRender(t *testing.T) {
	msg, err := NewHTMLEmailRenderer().Render(sampleDigest())
	require.NoError(t, err)

	assert.Equal(t, "Stockchat VCB: Giá VCB hôm nay", msg.Subject)
	assert.Contains(t, msg.Text, "Date: 12/03/2025 09:30")
	assert.Contains(t, msg.Text, "Sources: VCB")
	assert.Contains(t, msg.Text, "**VCB** đóng cửa ở 65.2")

	assert.Contains(t, msg.HTML, "&lt;tăng 1.2%&gt;")
	assert.Contains(t, msg.HTML, `<span class="source-tag">VCB</span>`)
	assert.NotContains(t, msg.HTML, "Partial answer")
}

func TestRenderPartial(t *testing.T) {
	d := sampleDigest()
	d.Success = false
	d.Symbols = nil
	d.Sources = nil
	d.AskedAt = time.Time{}

	msg, err := NewHTMLEmailRenderer().Render(d)
	require.NoError(t, err)
	assert.Contains(t, msg.HTML, "Partial answer")
	assert.Contains(t, msg.Text, "Symbols: N/A")
	assert.NotContains(t, msg.Text, "Date:")
}

func TestReportAnswer(t *testing.T) {
	var buf bytes.Buffer
	ReportAnswer(&buf, sampleDigest())

	out := buf.String()
	assert.Contains(t, out, "✅ Giá VCB hôm nay")
	assert.Contains(t, out, "Label:   price")
	assert.Contains(t, out, "Asked:   12/03/2025 09:30")
}

func TestDisabledSenderSkips(t *testing.T) {
	sender := NewEmailSender(EmailConfig{SMTPServer: "127.0.0.1", SMTPPort: 1}, zerolog.Nop())
	assert.False(t, sender.Enabled())
	assert.NoError(t, NewNotifier(sender).EmailAnswer(sampleDigest()))
}

func TestSendReportsDialErrors(t *testing.T) {
	sender := NewEmailSender(EmailConfig{
		SMTPServer: "127.0.0.1",
		SMTPPort:   1,
		SMTPUser:   "bot@example.com",
		ToEmail:    "me@example.com",
		Enabled:    true,
		Timeout:    time.Second,
	}, zerolog.Nop())

	err := NewNotifier(sender).EmailAnswer(sampleDigest())
	assert.Error(t, err)
}
