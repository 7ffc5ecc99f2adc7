package notify

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"statuscheck-go/status"
)

const (
	colorClear      = 0x2ECC71
	colorNotCurrent = 0xF39C12
	colorFailed     = 0xE74C3C
)

// EmbedSender is the part of *discordgo.Session the notifier needs.
type EmbedSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// NewDiscordSession opens a bot session for posting embeds.
func NewDiscordSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord: session: %w", err)
	}
	return s, nil
}

func outcomeLabel(res *status.FlowResult) string {
	if !res.OK {
		return "failed"
	}
	switch res.Structured.Outcome {
	case status.OutcomeClearAndCurrent:
		return "clear and current"
	case status.OutcomeCurrent:
		return "current"
	case status.OutcomeNotCurrent:
		return "not current"
	default:
		return "unknown"
	}
}

func buildCheckEmbed(c status.Completion) *discordgo.MessageEmbed {
	res := c.Result
	fields := []*discordgo.MessageEmbedField{
		{Name: "Organisation", Value: nvl(c.Details.OrganisationName, "N/A"), Inline: true},
		{Name: "Requested by", Value: nvl(c.Details.RequesterForename+" "+c.Details.RequesterSurname, "N/A"), Inline: true},
		{Name: "Certificate", Value: nvl(c.Details.CertificateNumber, "N/A"), Inline: true},
	}

	embed := &discordgo.MessageEmbed{
		Timestamp: c.StartedAt.Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Check %s • %d steps • %s", c.ID, len(res.Steps), c.Duration.Round(time.Millisecond)),
		},
	}

	if res.OK {
		s := res.Structured
		embed.Title = fmt.Sprintf("✅ Certificate %s", outcomeLabel(res))
		embed.Color = colorClear
		if s.Outcome == status.OutcomeNotCurrent {
			embed.Title = "⚠️ Certificate not current"
			embed.Color = colorNotCurrent
		}
		fields = append(fields,
			&discordgo.MessageEmbedField{Name: "Name", Value: nvl(s.PersonName, "N/A"), Inline: true},
			&discordgo.MessageEmbedField{Name: "Date of Birth", Value: nvl(s.DateOfBirth, "N/A"), Inline: true},
			&discordgo.MessageEmbedField{Name: "Print Date", Value: nvl(s.CertificatePrintDate, "N/A"), Inline: true},
		)
		embed.Description = s.OutcomeText
	} else {
		embed.Title = "❌ Status check failed"
		embed.Color = colorFailed
		embed.Description = res.Error
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Error kind", Value: nvl(string(res.ErrorKind), "N/A"), Inline: true,
		})
	}
	embed.Fields = fields
	return embed
}

func nvl(s, fallback string) string {
	if len(s) == 0 || s == " " {
		return fallback
	}
	return s
}
