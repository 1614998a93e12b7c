package services

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"microblog/internal/config"
	"microblog/internal/logger"
)

var testMessage = Message{
	To:      []string{"alice@example.com"},
	Subject: "Password Reset Request",
	Text:    "plain body",
	HTML:    "<p>html body</p>",
}

func TestSMTPMailer_Send(t *testing.T) {
	m := NewSMTPMailer(&config.Config{
		SMTPHost: "smtp.example.com",
		SMTPPort: "587",
		SMTPUser: "user",
		MailFrom: "noreply@example.com",
	})

	var gotAddr, gotFrom string
	var gotTo []string
	var gotBody string
	m.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotBody = addr, from, to, string(msg)
		return nil
	}

	require.NoError(t, m.Send(context.Background(), testMessage))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "noreply@example.com", gotFrom)
	assert.Equal(t, []string{"alice@example.com"}, gotTo)
	assert.Contains(t, gotBody, "Subject: Password Reset Request")
	assert.Contains(t, gotBody, "multipart/alternative")
	assert.Contains(t, gotBody, "plain body")
	assert.Contains(t, gotBody, "<p>html body</p>")

	m.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}
	assert.ErrorIs(t, m.Send(context.Background(), testMessage), ErrMailDeliveryFailed)
}

func TestBuildMIME_SkipsEmptyParts(t *testing.T) {
	body, err := buildMIME("noreply@example.com", Message{To: []string{"a@b.c"}, Subject: "Hi", Text: "only text"}, time.Now())
	require.NoError(t, err)
	assert.Contains(t, string(body), "text/plain")
	assert.NotContains(t, string(body), "text/html")
	assert.True(t, strings.HasPrefix(string(body), "From: noreply@example.com\r\n"))
}

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = in
	return &ses.SendEmailOutput{MessageId: aws.String("id-1")}, f.err
}

func TestSESMailer_Send(t *testing.T) {
	fake := &fakeSES{}
	m := &SESMailer{ses: fake, sender: "noreply@example.com"}

	require.NoError(t, m.Send(context.Background(), testMessage))
	require.NotNil(t, fake.input)
	assert.Equal(t, "noreply@example.com", aws.ToString(fake.input.Source))
	assert.Equal(t, []string{"alice@example.com"}, fake.input.Destination.ToAddresses)
	assert.Equal(t, "Password Reset Request", aws.ToString(fake.input.Message.Subject.Data))
	assert.Equal(t, "plain body", aws.ToString(fake.input.Message.Body.Text.Data))
	assert.Equal(t, "<p>html body</p>", aws.ToString(fake.input.Message.Body.Html.Data))

	fake.err = errors.New("throttled")
	assert.ErrorIs(t, m.Send(context.Background(), testMessage), ErrMailDeliveryFailed)
}

func TestQueueMailer_DrainsOnClose(t *testing.T) {
	next := &recordingMailer{}
	q := NewQueueMailer(next, 10, 2)

	for i := 0; i < 10; i++ {
		require.NoError(t, q.Send(context.Background(), testMessage))
	}
	q.Close()

	assert.Len(t, next.messages(), 10)
	assert.ErrorIs(t, q.Send(context.Background(), testMessage), ErrMailQueueClosed)

	// повторный Close безопасен
	q.Close()
}

// blockingMailer держит воркер, пока не закроют release
type blockingMailer struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingMailer) Send(context.Context, Message) error {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return nil
}

func TestQueueMailer_Full(t *testing.T) {
	next := &blockingMailer{started: make(chan struct{}), release: make(chan struct{})}
	q := NewQueueMailer(next, 1, 1)

	require.NoError(t, q.Send(context.Background(), testMessage))
	<-next.started // воркер занят первым письмом

	require.NoError(t, q.Send(context.Background(), testMessage))
	assert.ErrorIs(t, q.Send(context.Background(), testMessage), ErrMailQueueFull)

	close(next.release)
	q.Close()
}

func TestQueueMailer_WorkerErrorsAreSwallowed(t *testing.T) {
	next := &recordingMailer{err: ErrMailDeliveryFailed}
	q := NewQueueMailer(next, 1, 1)

	assert.NoError(t, q.Send(context.Background(), testMessage))
	q.Close()
	assert.Empty(t, next.messages())
}

// observeLogs подменяет глобальный логгер на наблюдаемый до конца теста.
func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prev := logger.Log
	logger.Log = zap.New(core)
	t.Cleanup(func() { logger.Log = prev })
	return logs
}

func TestLogMailer(t *testing.T) {
	logs := observeLogs(t)

	require.NoError(t, LogMailer{}.Send(context.Background(), testMessage))
	require.NoError(t, LogMailer{ShowBody: true}.Send(context.Background(), testMessage))

	entries := logs.All()
	require.Len(t, entries, 2)

	hidden := entries[0].ContextMap()
	assert.NotContains(t, hidden, "text")
	assert.EqualValues(t, len(testMessage.Text), hidden["text_bytes"])
	assert.Equal(t, []interface{}{"a***@example.com"}, hidden["to"])

	assert.Equal(t, testMessage.Text, entries[1].ContextMap()["text"])
}
