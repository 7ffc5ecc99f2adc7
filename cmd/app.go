package cmd

import (
	"go.uber.org/zap"

	"statuscheck-go/config"
	"statuscheck-go/notify"
	"statuscheck-go/status"
	"statuscheck-go/tlsclient"
)

func siteSettings(c *config.Config) status.Settings {
	return status.Settings{
		StartURL:     c.Site.TargetE2S1,
		UserAgent:    c.Site.UserAgent,
		Timeout:      c.Timeout(),
		MaxRedirects: c.Site.MaxRedirects,
	}
}

func newChecker(c *config.Config, log *zap.SugaredLogger) *status.Checker {
	factory := tlsclient.New(c.Timeout()).NewSession
	return status.NewChecker(factory, siteSettings(c), log.Named("checker"))
}

func newProber(c *config.Config, log *zap.SugaredLogger) *status.Prober {
	factory := tlsclient.New(c.Timeout()).NewSession
	return status.NewProber(factory, siteSettings(c), log.Named("probe"))
}

// newNotifier returns nil when no notification channel is configured.
func newNotifier(c *config.Config, log *zap.SugaredLogger) (*notify.Notifier, error) {
	var discord notify.EmbedSender
	if c.DiscordEnabled() {
		s, err := notify.NewDiscordSession(c.Notify.DiscordToken)
		if err != nil {
			return nil, err
		}
		discord = s
	}

	var mailer notify.Mailer
	if c.EmailEnabled() {
		if ec := notify.NewEmailClient(c.Notify.ResendAPIKey, c.Notify.EmailFrom, c.Notify.EmailFromName, log); ec != nil {
			mailer = ec
		}
	}

	n := notify.New(discord, c.Notify.DiscordChannelID, mailer, c.Notify.EmailTo, log.Named("notify"))
	if !n.Enabled() {
		return nil, nil
	}
	return n, nil
}
