package alerts

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/leadscout/discovery-bot/internal/config"
	"github.com/leadscout/discovery-bot/internal/models"
)

const telegramAPIBase = "https://api.telegram.org"

// Service delivers lead alerts over the configured channels (email and
// Telegram). A channel with incomplete configuration warns and no-ops; it
// never fails the pipeline.
type Service struct {
	config *config.Config
	client *resty.Client
}

// Ensure Service implements Notifier
var _ Notifier = (*Service)(nil)

type telegramSendRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// NewService creates a new alert delivery service.
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		client: resty.New().SetTimeout(30 * time.Second),
	}
}

// Notify sends a single-lead alert through every configured channel.
func (s *Service) Notify(business *models.Business) error {
	var errors []string

	if s.emailConfigured() {
		if err := s.sendEmail(business); err != nil {
			logrus.Errorf("Failed to send email alert: %v", err)
			errors = append(errors, fmt.Sprintf("email: %v", err))
		} else {
			logrus.Infof("Email alert sent for: %s", business.BusinessName)
		}
	}

	if s.telegramConfigured() {
		if err := s.sendTelegram(s.buildTelegramMessage(business)); err != nil {
			logrus.Errorf("Failed to send Telegram alert: %v", err)
			errors = append(errors, fmt.Sprintf("telegram: %v", err))
		} else {
			logrus.Infof("Telegram alert sent for: %s", business.BusinessName)
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("alert errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// NotifyBatch sends one digest covering all businesses through every
// configured channel.
func (s *Service) NotifyBatch(businesses []models.Business) error {
	if len(businesses) == 0 {
		return nil
	}

	var errors []string

	if s.emailConfigured() {
		if err := s.sendBatchEmail(businesses); err != nil {
			logrus.Errorf("Failed to send batch email: %v", err)
			errors = append(errors, fmt.Sprintf("email: %v", err))
		} else {
			logrus.Infof("Batch email sent for %d businesses", len(businesses))
		}
	}

	if s.telegramConfigured() {
		if err := s.sendTelegram(s.buildBatchTelegramMessage(businesses)); err != nil {
			logrus.Errorf("Failed to send batch Telegram message: %v", err)
			errors = append(errors, fmt.Sprintf("telegram: %v", err))
		} else {
			logrus.Infof("Batch Telegram message sent for %d businesses", len(businesses))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("batch alert errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

func (s *Service) emailConfigured() bool {
	if s.config.NotificationEmail == "" {
		return false
	}
	if s.config.SMTPHost == "" || s.config.SMTPUsername == "" || s.config.SMTPPassword == "" {
		logrus.Warn("Email alerts configured without complete SMTP settings; skipping email channel")
		return false
	}
	return true
}

func (s *Service) telegramConfigured() bool {
	if s.config.TelegramBotToken == "" && s.config.TelegramChatID == "" {
		return false
	}
	if s.config.TelegramBotToken == "" || s.config.TelegramChatID == "" {
		logrus.Warn("Telegram alerts configured without both bot token and chat ID; skipping Telegram channel")
		return false
	}
	return true
}

func (s *Service) sendEmail(business *models.Business) error {
	subject := fmt.Sprintf("New %s Priority Lead: %s",
		strings.ToUpper(string(business.Priority)), business.BusinessName)

	htmlBody, err := buildLeadEmailHTML(business)
	if err != nil {
		return fmt.Errorf("failed to build email HTML: %w", err)
	}

	return s.deliverEmail(subject, htmlBody)
}

func (s *Service) sendBatchEmail(businesses []models.Business) error {
	subject := fmt.Sprintf("Lead Report: %d New Businesses Discovered", len(businesses))

	htmlBody, err := buildBatchEmailHTML(businesses)
	if err != nil {
		return fmt.Errorf("failed to build batch email HTML: %w", err)
	}

	return s.deliverEmail(subject, htmlBody)
}

func (s *Service) deliverEmail(subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.NotificationEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func (s *Service) sendTelegram(text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", telegramAPIBase, s.config.TelegramBotToken)

	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(telegramSendRequest{
			ChatID:    s.config.TelegramChatID,
			Text:      text,
			ParseMode: "HTML",
		}).
		Post(url)

	if err != nil {
		return fmt.Errorf("failed to send Telegram message: %w", err)
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("telegram API returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

func (s *Service) buildTelegramMessage(business *models.Business) string {
	emoji := map[models.Priority]string{
		models.PriorityHigh:   "\U0001F534",
		models.PriorityMedium: "\U0001F7E1",
		models.PriorityLow:    "\U0001F7E2",
	}[business.Priority]

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("%s <b>New Business Discovered!</b>\n\n", emoji))
	msg.WriteString(fmt.Sprintf("<b>Name:</b> %s\n", business.BusinessName))
	msg.WriteString(fmt.Sprintf("<b>Platform:</b> %s\n", business.Platform))
	msg.WriteString(fmt.Sprintf("<b>Category:</b> %s\n", business.Category))
	msg.WriteString(fmt.Sprintf("<b>Location:</b> %s\n", business.Location))
	msg.WriteString(fmt.Sprintf("<b>Score:</b> %d/100\n\n", business.ConfidenceScore))

	if business.Description != "" {
		desc := business.Description
		if len(desc) > 150 {
			desc = desc[:150] + "..."
		}
		msg.WriteString(fmt.Sprintf("<i>%s</i>\n\n", desc))
	}

	msg.WriteString(fmt.Sprintf("<a href='%s'>View Page</a>", business.PageURL))
	return msg.String()
}

func (s *Service) buildBatchTelegramMessage(businesses []models.Business) string {
	high, medium, _ := groupByPriority(businesses)

	var msg strings.Builder
	msg.WriteString("\U0001F4CA <b>Lead Report</b>\n\n")
	msg.WriteString(fmt.Sprintf("\U0001F3AF %d new businesses discovered\n\n", len(businesses)))

	if len(high) > 0 {
		msg.WriteString(fmt.Sprintf("\U0001F534 <b>High Priority:</b> %d\n", len(high)))
	}
	if len(medium) > 0 {
		msg.WriteString(fmt.Sprintf("\U0001F7E1 <b>Medium Priority:</b> %d\n", len(medium)))
	}

	msg.WriteString("\n\U0001F4F1 Check dashboard for details")
	return msg.String()
}

func groupByPriority(businesses []models.Business) (high, medium, low []models.Business) {
	for _, b := range businesses {
		switch b.Priority {
		case models.PriorityHigh:
			high = append(high, b)
		case models.PriorityMedium:
			medium = append(medium, b)
		default:
			low = append(low, b)
		}
	}
	return high, medium, low
}

var leadEmailTemplate = template.Must(template.New("lead").Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #0078d4; color: white; padding: 20px; border-radius: 5px; }
        .content { background: #f8f9fa; padding: 20px; margin-top: 20px; border-radius: 5px; }
        .field { margin: 10px 0; }
        .label { font-weight: bold; color: #555; }
        .button { background: #007bff; color: white; padding: 10px 20px;
                  text-decoration: none; border-radius: 5px; display: inline-block; margin-top: 20px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h2>New Business Discovered</h2>
            <p>Priority: {{.Priority}}</p>
        </div>
        <div class="content">
            <div class="field"><span class="label">Business Name:</span> {{.BusinessName}}</div>
            <div class="field"><span class="label">Platform:</span> {{.Platform}}</div>
            <div class="field"><span class="label">Category:</span> {{.Category}}</div>
            <div class="field"><span class="label">Location:</span> {{.Location}}</div>
            <div class="field"><span class="label">Confidence Score:</span> {{.ConfidenceScore}}/100</div>
            {{if .Description}}<div class="field"><span class="label">Description:</span> {{.Description}}</div>{{end}}
            {{if .ScoringSignals}}
            <div class="field"><span class="label">Signals:</span>
                <ul>{{range .ScoringSignals}}<li>{{.}}</li>{{end}}</ul>
            </div>
            {{end}}
            <a href="{{.PageURL}}" class="button">View Page</a>
        </div>
    </div>
</body>
</html>
`))

func buildLeadEmailHTML(business *models.Business) (string, error) {
	var buf bytes.Buffer
	if err := leadEmailTemplate.Execute(&buf, business); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var batchEmailTemplate = template.Must(template.New("batch").Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 800px; margin: 0 auto; padding: 20px; }
        .header { background: #007bff; color: white; padding: 20px; border-radius: 5px; }
        .summary { background: #f8f9fa; padding: 15px; margin: 20px 0; border-radius: 5px; }
        .business-card { background: white; padding: 15px; margin: 10px 0;
                         border-left: 4px solid #007bff; border-radius: 3px; }
        .high { border-left-color: #dc3545; }
        .medium { border-left-color: #ffc107; }
        .low { border-left-color: #28a745; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h2>Lead Report</h2>
            <p>{{.Date}}</p>
        </div>
        <div class="summary">
            <h3>Summary</h3>
            <p>Total Businesses: {{.Total}}</p>
            <p>High Priority: {{len .High}} | Medium Priority: {{len .Medium}} | Low Priority: {{len .Low}}</p>
        </div>
        {{if .High}}
        <h3>High Priority Leads</h3>
        {{range .High}}
        <div class="business-card high">
            <h4>{{.BusinessName}}</h4>
            <p><strong>Platform:</strong> {{.Platform}} | <strong>Category:</strong> {{.Category}}</p>
            <p><strong>Location:</strong> {{.Location}}</p>
            <p><strong>Score:</strong> {{.ConfidenceScore}}/100</p>
            <p><a href="{{.PageURL}}">View Page</a></p>
        </div>
        {{end}}
        {{end}}
        {{if .Medium}}
        <h3>Medium Priority Leads</h3>
        {{range .Medium}}
        <div class="business-card medium">
            <h4>{{.BusinessName}}</h4>
            <p><strong>Platform:</strong> {{.Platform}} | <strong>Category:</strong> {{.Category}}</p>
            <p><strong>Location:</strong> {{.Location}}</p>
            <p><strong>Score:</strong> {{.ConfidenceScore}}/100</p>
            <p><a href="{{.PageURL}}">View Page</a></p>
        </div>
        {{end}}
        {{end}}
    </div>
</body>
</html>
`))

func buildBatchEmailHTML(businesses []models.Business) (string, error) {
	high, medium, low := groupByPriority(businesses)

	// Keep digests readable; the dashboard has the full list.
	if len(high) > 10 {
		high = high[:10]
	}
	if len(medium) > 10 {
		medium = medium[:10]
	}

	data := struct {
		Date   string
		Total  int
		High   []models.Business
		Medium []models.Business
		Low    []models.Business
	}{
		Date:   time.Now().Format("January 2, 2006"),
		Total:  len(businesses),
		High:   high,
		Medium: medium,
		Low:    low,
	}

	var buf bytes.Buffer
	if err := batchEmailTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
