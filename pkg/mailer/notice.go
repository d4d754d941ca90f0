package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-profile-service/internal/domain/event"
	mailtpl "github.com/oksasatya/go-profile-service/pkg/mailer/templates"
)

// Sender is satisfied by *Mailgun.
type Sender interface {
	Send(ctx context.Context, to, subject, text string) error
}

// Disposition tells the consumer what to do with a delivery.
type Disposition int

const (
	Ack Disposition = iota
	Drop
	Requeue
)

func (d Disposition) String() string {
	switch d {
	case Ack:
		return "ack"
	case Drop:
		return "drop"
	case Requeue:
		return "requeue"
	default:
		return fmt.Sprintf("Disposition(%d)", int(d))
	}
}

// NoticeHandler turns account events into notice emails.
type NoticeHandler struct {
	AppName     string
	Sender      Sender
	Logger      *logrus.Logger
	SendTimeout time.Duration
}

func templateFor(typ string) (string, bool) {
	switch typ {
	case event.UserRegistered:
		return mailtpl.Welcome, true
	case event.ProfileUpdated:
		return mailtpl.ProfileUpdated, true
	}
	return "", false
}

// Handle processes one message body. Payloads that can never succeed are
// dropped; send failures are requeued.
func (h *NoticeHandler) Handle(ctx context.Context, body []byte) Disposition {
	var ev event.AccountEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		h.Logger.WithError(err).Warn("bad account event payload")
		return Drop
	}
	if strings.TrimSpace(ev.Email) == "" {
		h.Logger.WithField("event", ev.Type).Warn("account event without email")
		return Drop
	}
	name, ok := templateFor(ev.Type)
	if !ok {
		h.Logger.WithField("event", ev.Type).Warn("unknown account event type")
		return Drop
	}

	subject, text, err := mailtpl.Render(name, mailtpl.NoticeData{
		AppName: h.AppName,
		Name:    ev.Name,
		Email:   ev.Email,
		Time:    ev.OccurredAt,
	})
	if err != nil {
		h.Logger.WithError(err).WithField("template", name).Error("render notice failed")
		return Drop
	}

	timeout := h.SendTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := h.Sender.Send(c, ev.Email, subject, text); err != nil {
		h.Logger.WithError(err).WithFields(logrus.Fields{"event": ev.Type, "user_id": ev.UserID}).Warn("send notice failed")
		return Requeue
	}
	h.Logger.WithFields(logrus.Fields{"event": ev.Type, "user_id": ev.UserID}).Info("notice sent")
	return Ack
}
