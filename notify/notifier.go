package notify

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"statuscheck-go/status"
)

// Mailer sends a single HTML email.
type Mailer interface {
	Send(toEmail, subject, htmlBody string) error
}

// Notifier posts completed checks to Discord and email. Either channel may be
// disabled by leaving it nil.
type Notifier struct {
	discord   EmbedSender
	channelID string
	mailer    Mailer
	emailTo   string
	log       *zap.SugaredLogger
}

// New creates a Notifier.
func New(discord EmbedSender, channelID string, mailer Mailer, emailTo string, log *zap.SugaredLogger) *Notifier {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	n := &Notifier{log: log}
	if discord != nil && channelID != "" {
		n.discord, n.channelID = discord, channelID
	}
	if mailer != nil && emailTo != "" {
		n.mailer, n.emailTo = mailer, emailTo
	}
	return n
}

// Enabled reports whether any channel is configured.
func (n *Notifier) Enabled() bool {
	return n.discord != nil || n.mailer != nil
}

// Observe sends the completion to every configured channel.
func (n *Notifier) Observe(_ context.Context, c status.Completion) error {
	if c.Result == nil {
		return nil
	}
	var errs []error
	if n.discord != nil {
		if _, err := n.discord.ChannelMessageSendEmbed(n.channelID, buildCheckEmbed(c)); err != nil {
			errs = append(errs, fmt.Errorf("notify: discord: %w", err))
		} else {
			n.log.Debugw("discord notification sent", "check_id", c.ID.String())
		}
	}
	if n.mailer != nil {
		subject, body := checkEmail(c)
		if err := n.mailer.Send(n.emailTo, subject, body); err != nil {
			errs = append(errs, fmt.Errorf("notify: email: %w", err))
		}
	}
	return errors.Join(errs...)
}
