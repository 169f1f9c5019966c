package smtp

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/DanishNadar/ttp-tracker/internal/logger"
	"github.com/DanishNadar/ttp-tracker/internal/tracing"
)

const defaultTimeout = 30 * time.Second

type ServerConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Timeout  time.Duration
}

// SMTPClient delivers over STARTTLS with PLAIN auth, one connection per message
type SMTPClient struct {
	server ServerConfig
	from   Identity
	log    logger.Logger
}

func NewSMTPClient(server ServerConfig, from Identity, log logger.Logger) *SMTPClient {
	if server.Timeout <= 0 {
		server.Timeout = defaultTimeout
	}
	return &SMTPClient{server: server, from: from, log: log}
}

func (s *SMTPClient) Send(ctx context.Context, email *OutboundEmail) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "SMTPClient.Send")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	message, err := BuildMessage(s.from, email)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	tracing.TagMessageId(span, email.MessageID)

	if err := s.sendWithSTARTTLS(ctx, email.To, message); err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	s.log.Debugf("Delivered message %s to %s", email.MessageID, email.To)
	return nil
}

func (s *SMTPClient) sendWithSTARTTLS(ctx context.Context, recipient string, message []byte) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "SMTPClient.sendWithSTARTTLS")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogKV("smtp_server", s.server.Host, "smtp_port", s.server.Port)

	addr := net.JoinHostPort(s.server.Host, fmt.Sprintf("%d", s.server.Port))
	dialer := &net.Dialer{Timeout: s.server.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return errors.Wrap(err, "failed to connect to SMTP server")
	}
	defer conn.Close()

	deadline := time.Now().Add(s.server.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return errors.Wrap(err, "failed to set SMTP deadline")
	}

	client, err := smtp.NewClient(conn, s.server.Host)
	if err != nil {
		return errors.Wrap(err, "failed to create SMTP client")
	}
	defer client.Close()

	if err = client.StartTLS(&tls.Config{ServerName: s.server.Host}); err != nil {
		return errors.Wrap(err, "failed to start TLS")
	}

	auth := smtp.PlainAuth("", s.server.User, s.server.Password, s.server.Host)
	if err = client.Auth(auth); err != nil {
		return errors.Wrap(err, "SMTP authentication failed")
	}

	if err = client.Mail(s.from.Email); err != nil {
		return errors.Wrap(err, "SMTP MAIL command failed")
	}
	if err = client.Rcpt(recipient); err != nil {
		return errors.Wrapf(err, "SMTP RCPT command failed for %s", recipient)
	}

	dataWriter, err := client.Data()
	if err != nil {
		return errors.Wrap(err, "SMTP DATA command failed")
	}
	if _, err = dataWriter.Write(message); err != nil {
		return errors.Wrap(err, "failed to write email data")
	}
	if err = dataWriter.Close(); err != nil {
		return errors.Wrap(err, "failed to close data writer")
	}

	return client.Quit()
}

// DryRunClient builds every message but only logs it
type DryRunClient struct {
	from Identity
	log  logger.Logger
}

func NewDryRunClient(from Identity, log logger.Logger) *DryRunClient {
	return &DryRunClient{from: from, log: log}
}

func (d *DryRunClient) Send(ctx context.Context, email *OutboundEmail) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "DryRunClient.Send")
	defer span.Finish()

	if _, err := BuildMessage(d.from, email); err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	d.log.Infof("[DRY_RUN] Would send to %s: %s", email.To, email.Subject)
	return nil
}
