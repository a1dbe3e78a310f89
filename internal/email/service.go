// Package email queues outgoing mail in Redis and delivers it over SMTP
// from a background worker.
package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"alcyxob/gym-platform/internal/config"
	"alcyxob/gym-platform/internal/logger"
	"alcyxob/gym-platform/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	popTimeout     = 2 * time.Second
	queueKey       = "emails"
	failedQueueKey = "emails:failed"
	maxTries       = 3
)

type EmailJob struct {
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	HTML    bool      `json:"html"`
	Kind    string    `json:"kind"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

type Service struct {
	redis      *redis.Client
	from       string
	fromName   string
	smtpHost   string
	smtpPort   string
	smtpUser   string
	smtpPass   string
	retryDelay time.Duration
	// send delivers one job; replaced in tests.
	send func(job EmailJob) error
}

func New(cfg config.SMTPConfig, client *redis.Client) *Service {
	s := &Service{
		redis:      client,
		from:       cfg.From,
		fromName:   cfg.FromName,
		smtpHost:   cfg.Host,
		smtpPort:   cfg.Port,
		smtpUser:   cfg.User,
		smtpPass:   cfg.Password,
		retryDelay: 5 * time.Second,
	}
	s.send = s.sendNow
	return s
}

func (s *Service) SendHTML(ctx context.Context, kind, to, name, subject, body string) error {
	return s.enqueue(ctx, EmailJob{To: to, Name: name, Subject: subject, Body: body, HTML: true, Kind: kind})
}

func (s *Service) enqueue(ctx context.Context, job EmailJob) error {
	job.Created = time.Now().UTC()

	data, err := json.Marshal(job)
	if err != nil {
		logger.Errorf("Failed to marshal email job: %v", err)
		return err
	}
	if err := s.redis.LPush(ctx, queueKey, string(data)).Err(); err != nil {
		logger.Errorf("Failed to queue email to %s: %v", job.To, err)
		return err
	}

	logger.Info("email queued", "subject", job.Subject, "to", job.To)
	return nil
}

// Start drains the queue until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	logger.Info("Email worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Email worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, popTimeout, queueKey).Result()
	if errors.Is(err, redis.Nil) {
		// idle timeout
		return
	}
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		logger.WithError(err).Error("failed to read email queue")
		s.wait(ctx)
		return
	}
	s.QueueLength(ctx)

	var job EmailJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Error("bad email data", "error", err)
		return
	}

	job.Tries++
	if err := s.send(job); err != nil {
		logger.WithError(err).Error("failed to send email", "to", job.To, "attempt", job.Tries)
		metrics.RecordEmail(job.Kind, "failed")

		if job.Tries < maxTries {
			s.wait(ctx)
			data, _ := json.Marshal(job)
			s.redis.LPush(context.WithoutCancel(ctx), queueKey, string(data))
			return
		}
		s.saveFailed(ctx, job, err)
		return
	}

	metrics.RecordEmail(job.Kind, "sent")
	logger.Info("email sent", "to", job.To, "subject", job.Subject)
}

// wait pauses for retryDelay or until ctx is cancelled.
func (s *Service) wait(ctx context.Context) {
	if s.retryDelay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(s.retryDelay):
	}
}

func (s *Service) sendNow(job EmailJob) error {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", s.fromName, s.from)
	fmt.Fprintf(&b, "To: %s\r\n", job.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", job.Subject)
	if job.HTML {
		b.WriteString("MIME-Version: 1.0\r\n")
		b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	}
	b.WriteString("\r\n" + job.Body)

	var auth smtp.Auth
	if s.smtpUser != "" && s.smtpPass != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPass, s.smtpHost)
	}

	addr := s.smtpHost + ":" + s.smtpPort
	return smtp.SendMail(addr, auth, s.from, []string{job.To}, []byte(b.String()))
}

func (s *Service) saveFailed(ctx context.Context, job EmailJob, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now().UTC(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.WithoutCancel(ctx), failedQueueKey, string(data))
	logger.Errorf("Email to %s moved to failed queue after %d attempts", job.To, job.Tries)
}

// QueueLength also refreshes the queue length gauge.
func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	metrics.EmailQueueLength.Set(float64(length))
	return length
}
