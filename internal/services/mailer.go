package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"

	"microblog/internal/config"
	"microblog/internal/logger"
)

var (
	ErrMailDeliveryFailed = errors.New("mail delivery failed")
	ErrMailQueueFull      = errors.New("mail queue is full")
	ErrMailQueueClosed    = errors.New("mail queue is closed")
)

type Message struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// ---- SMTP ----

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type SMTPMailer struct {
	auth     smtp.Auth
	from     string
	host     string
	port     string
	sendMail sendMailFunc
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	auth := smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	return &SMTPMailer{
		auth:     auth,
		from:     cfg.MailFrom,
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		sendMail: smtp.SendMail,
	}
}

func (s *SMTPMailer) Send(_ context.Context, msg Message) error {
	body, err := buildMIME(s.from, msg, time.Now())
	if err != nil {
		return err
	}
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := s.sendMail(addr, s.auth, s.from, msg.To, body); err != nil {
		return fmt.Errorf("%w: %v", ErrMailDeliveryFailed, err)
	}
	return nil
}

// buildMIME собирает multipart/alternative письмо (text + html).
func buildMIME(from string, msg Message, date time.Time) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	headers := []string{
		"From: " + from,
		"To: " + strings.Join(msg.To, ", "),
		"Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject),
		"Date: " + date.Format(time.RFC1123Z),
		"MIME-Version: 1.0",
		fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q", mw.Boundary()),
	}
	var out bytes.Buffer
	out.WriteString(strings.Join(headers, "\r\n"))
	out.WriteString("\r\n\r\n")

	parts := []struct {
		contentType string
		body        string
	}{
		{"text/plain; charset=\"utf-8\"", msg.Text},
		{"text/html; charset=\"utf-8\"", msg.HTML},
	}
	for _, p := range parts {
		if p.body == "" {
			continue
		}
		w, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {p.contentType}})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(p.body)); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	out.Write(buf.Bytes())
	return out.Bytes(), nil
}

// ---- AWS SES ----

type sesSender interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SESMailer struct {
	ses sesSender
	// Адрес должен быть подтверждён в Amazon SES.
	sender string
}

func NewSESMailer(awsConfig aws.Config, sender string) *SESMailer {
	return &SESMailer{ses: ses.NewFromConfig(awsConfig), sender: sender}
}

func (s *SESMailer) Send(ctx context.Context, msg Message) error {
	body := &types.Body{}
	if msg.Text != "" {
		body.Text = &types.Content{Data: aws.String(msg.Text), Charset: aws.String("UTF-8")}
	}
	if msg.HTML != "" {
		body.Html = &types.Content{Data: aws.String(msg.HTML), Charset: aws.String("UTF-8")}
	}

	_, err := s.ses.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(s.sender),
		Destination: &types.Destination{
			ToAddresses: msg.To,
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
			Body:    body,
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMailDeliveryFailed, err)
	}
	return nil
}

// ---- log (dev) ----

// LogMailer пишет письма в лог вместо отправки. Тело со ссылкой сброса
// пишется только при ShowBody (ENV=dev).
type LogMailer struct {
	ShowBody bool
}

func (m LogMailer) Send(ctx context.Context, msg Message) error {
	fields := []zap.Field{
		zap.Strings("to", maskAll(msg.To)),
		zap.String("subject", msg.Subject),
	}
	if m.ShowBody {
		fields = append(fields, zap.String("text", msg.Text))
	} else {
		fields = append(fields, zap.Int("text_bytes", len(msg.Text)))
	}
	logger.WithCtx(ctx).Info("Письмо (log mailer)", fields...)
	return nil
}

func maskAll(emails []string) []string {
	out := make([]string, len(emails))
	for i, e := range emails {
		out[i] = logger.MaskEmail(e)
	}
	return out
}

// ---- очередь ----

// QueueMailer отправляет письма в фоне пулом воркеров поверх другого Mailer.
type QueueMailer struct {
	next    Mailer
	jobs    chan Message
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	once   sync.Once
	wg     sync.WaitGroup
}

func NewQueueMailer(next Mailer, buffer, workers int) *QueueMailer {
	if buffer < 1 {
		buffer = 100
	}
	if workers < 1 {
		workers = 1
	}
	q := &QueueMailer{
		next:    next,
		jobs:    make(chan Message, buffer),
		timeout: 30 * time.Second,
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

func (q *QueueMailer) Send(_ context.Context, msg Message) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrMailQueueClosed
	}
	select {
	case q.jobs <- msg:
		return nil
	default:
		return ErrMailQueueFull
	}
}

// Close перестаёт принимать письма и дожидается отправки уже поставленных.
func (q *QueueMailer) Close() {
	q.once.Do(func() {
		q.mu.Lock()
		q.closed = true
		close(q.jobs)
		q.mu.Unlock()
	})
	q.wg.Wait()
}

func (q *QueueMailer) worker() {
	defer q.wg.Done()
	for msg := range q.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
		if err := q.next.Send(ctx, msg); err != nil {
			logger.Log.Error("Не удалось отправить письмо",
				zap.Strings("to", maskAll(msg.To)),
				zap.String("subject", msg.Subject),
				zap.Error(err),
			)
		}
		cancel()
	}
}
