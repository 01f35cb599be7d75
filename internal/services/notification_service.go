package services

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/poofware/mono-repo/backend/services/structure-service/internal/config"
	"github.com/poofware/mono-repo/backend/services/structure-service/internal/generator"
	"github.com/poofware/mono-repo/backend/services/structure-service/internal/utils"
)

// EmailSender is satisfied by *sendgrid.Client.
type EmailSender interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

// SMSSender is satisfied by the Twilio REST client's Api service.
type SMSSender interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// NotificationReporter tells the ops contacts how each batch ended: an email
// for every outcome, an SMS only for failures.
type NotificationReporter struct {
	cfg   *config.Config
	email EmailSender
	sms   SMSSender
}

// NewNotificationReporter accepts nil senders; the matching channel is skipped.
func NewNotificationReporter(cfg *config.Config, email EmailSender, sms SMSSender) *NotificationReporter {
	return &NotificationReporter{cfg: cfg, email: email, sms: sms}
}

func (n *NotificationReporter) Report(_ context.Context, o generator.Outcome) {
	subject := fmt.Sprintf("[%s] Structure generation succeeded for building %s", n.cfg.AppName, o.Report.BuildingID)
	detail := "All floors and units were created."
	if o.Status == generator.StatusFailed {
		subject = fmt.Sprintf("[%s] Structure generation failed for building %s", n.cfg.AppName, o.Report.BuildingID)
		detail = "Reason: " + o.Reason
	}

	n.sendEmail(subject, detail, o.Report)
	if o.Status == generator.StatusFailed {
		n.sendSMS(subject + " :: " + detail)
	}
}

func (n *NotificationReporter) sendEmail(subject, detail string, report *generator.Report) {
	if n.email == nil || n.cfg.OpsNotifyEmail == "" {
		utils.Logger.Debug("SendGrid client or ops email not configured, skipping generation email")
		return
	}

	plain := fmt.Sprintf(
		"%s\n\nBuilding: %s\nFloors created: %d\nUnits created: %d\nRolled back: %t\n%s",
		subject, report.BuildingID, report.FloorsCreated(), report.UnitsCreated(), report.RolledBack, detail,
	)
	htmlBody := fmt.Sprintf(
		generationOutcomeEmailHTML,
		html.EscapeString(subject),
		html.EscapeString(report.BuildingID),
		report.FloorsCreated(),
		report.UnitsCreated(),
		report.RolledBack,
		html.EscapeString(detail),
		time.Now().UTC().Format(time.RFC1123Z),
		html.EscapeString(n.cfg.AppName),
	)

	from := mail.NewEmail(fmt.Sprintf("%s Bot", n.cfg.OrganizationName), n.cfg.LDFlag_SendgridFromEmail)
	to := mail.NewEmail("Poof Operations Team", n.cfg.OpsNotifyEmail)
	msg := mail.NewSingleEmail(from, subject, to, plain, htmlBody)
	msg.TrackingSettings = &mail.TrackingSettings{
		ClickTracking: &mail.ClickTrackingSetting{
			Enable: utils.Ptr(false),
		},
	}
	if n.cfg.LDFlag_SendgridSandboxMode {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		msg.MailSettings = ms
	}

	resp, err := n.email.Send(msg)
	if err != nil {
		utils.Logger.WithError(err).Errorf("Failed to send generation notification to %s", n.cfg.OpsNotifyEmail)
		return
	}
	if resp != nil && resp.StatusCode >= 300 {
		utils.Logger.Errorf("SendGrid rejected generation notification: %d %s", resp.StatusCode, resp.Body)
		return
	}
	utils.Logger.Infof("Sent generation notification to %s", n.cfg.OpsNotifyEmail)
}

func (n *NotificationReporter) sendSMS(body string) {
	if n.sms == nil || n.cfg.OpsNotifyPhone == "" {
		utils.Logger.Debug("Twilio client or ops phone not configured, skipping generation SMS")
		return
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(n.cfg.OpsNotifyPhone)
	params.SetFrom(n.cfg.LDFlag_TwilioFromPhone)
	params.SetBody(body)
	if _, err := n.sms.CreateMessage(params); err != nil {
		utils.Logger.WithError(err).Warnf("Failed to send generation SMS to %s", n.cfg.OpsNotifyPhone)
	}
}
