package notify

import (
	"fmt"
	"html"

	"github.com/resend/resend-go/v3"
	"go.uber.org/zap"

	"statuscheck-go/status"
)

// EmailClient sends check summaries via Resend.
type EmailClient struct {
	client    *resend.Client
	fromEmail string
	fromName  string
	log       *zap.SugaredLogger
}

// NewEmailClient returns a configured Resend client, or nil if not configured.
func NewEmailClient(apiKey, fromEmail, fromName string, log *zap.SugaredLogger) *EmailClient {
	if apiKey == "" || fromEmail == "" {
		return nil
	}
	if fromName == "" {
		fromName = "Status Check"
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &EmailClient{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
		log:       log,
	}
}

// Send sends an email to the given address.
func (c *EmailClient) Send(toEmail, subject, htmlBody string) error {
	if c == nil {
		return fmt.Errorf("email: client not configured")
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail),
		To:      []string{toEmail},
		Subject: subject,
		Html:    htmlBody,
	}

	sent, err := c.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("email: resend send: %w", err)
	}

	c.log.Infow("email sent", "to", toEmail, "subject", subject, "id", sent.Id)
	return nil
}

// checkEmail renders the subject and body for a completed check.
func checkEmail(c status.Completion) (string, string) {
	res := c.Result
	name := c.Details.ApplicantSurname

	headerColor := "#2ecc71"
	heading := "Certificate Status Confirmed"
	var detail string
	if res.OK {
		s := res.Structured
		if s.Outcome == status.OutcomeNotCurrent {
			headerColor = "#f39c12"
		}
		detail = fmt.Sprintf(`<ul>
      <li><strong>Name:</strong> %s</li>
      <li><strong>Date of birth:</strong> %s</li>
      <li><strong>Certificate #:</strong> %s</li>
      <li><strong>Print date:</strong> %s</li>
    </ul>
    <p>%s</p>`,
			html.EscapeString(s.PersonName), html.EscapeString(s.DateOfBirth),
			html.EscapeString(s.CertificateNumber), html.EscapeString(s.CertificatePrintDate),
			html.EscapeString(s.OutcomeText))
	} else {
		headerColor = "#e74c3c"
		heading = "Certificate Status Check Failed"
		detail = fmt.Sprintf(`<p><strong>Reason:</strong> %s</p>
    <p>Certificate #%s could not be confirmed. Check the details and try again.</p>`,
			html.EscapeString(res.Error), html.EscapeString(c.Details.CertificateNumber))
	}

	subject := fmt.Sprintf("Status check for %s: %s", name, outcomeLabel(res))
	body := fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background: %s; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0;">
    <h1 style="margin: 0;">%s</h1>
  </div>
  <div style="padding: 20px; background: #f9f9f9; border-radius: 0 0 8px 8px;">
    %s
    <hr style="border: none; border-top: 1px solid #ddd; margin: 20px 0;">
    <p style="color: #999; font-size: 12px;">Check %s requested by %s for %s.</p>
  </div>
</div>`, headerColor, heading, detail, c.ID,
		html.EscapeString(c.Details.RequesterForename+" "+c.Details.RequesterSurname),
		html.EscapeString(c.Details.OrganisationName))
	return subject, body
}
