package alerts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadscout/discovery-bot/internal/config"
	"github.com/leadscout/discovery-bot/internal/models"
)

func testLead() *models.Business {
	return &models.Business{
		ID:              1,
		BusinessName:    "Lagos Bakery",
		Platform:        models.PlatformFacebook,
		PageURL:         "https://facebook.com/lagosbakery",
		Category:        "food",
		Location:        "Lagos, Nigeria",
		ConfidenceScore: 72,
		Priority:        models.PriorityHigh,
		ScoringSignals:  []string{"Country: Nigeria", "Has phone"},
	}
}

func TestService_ChannelConfiguration(t *testing.T) {
	tests := []struct {
		name         string
		cfg          config.Config
		wantEmail    bool
		wantTelegram bool
	}{
		{"nothing configured", config.Config{}, false, false},
		{
			"complete email",
			config.Config{
				NotificationEmail: "leads@example.com",
				SMTPHost:          "smtp.example.com",
				SMTPUsername:      "bot",
				SMTPPassword:      "secret",
			},
			true, false,
		},
		{
			"email without smtp credentials",
			config.Config{NotificationEmail: "leads@example.com", SMTPHost: "smtp.example.com"},
			false, false,
		},
		{
			"complete telegram",
			config.Config{TelegramBotToken: "token", TelegramChatID: "42"},
			false, true,
		},
		{
			"telegram missing chat id",
			config.Config{TelegramBotToken: "token"},
			false, false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&tt.cfg)
			assert.Equal(t, tt.wantEmail, svc.emailConfigured())
			assert.Equal(t, tt.wantTelegram, svc.telegramConfigured())
		})
	}
}

func TestService_Notify_NoChannelsIsNoop(t *testing.T) {
	svc := NewService(&config.Config{})

	assert.NoError(t, svc.Notify(testLead()))
	assert.NoError(t, svc.NotifyBatch([]models.Business{*testLead()}))
	assert.NoError(t, svc.NotifyBatch(nil))
}

func TestService_BuildTelegramMessage(t *testing.T) {
	svc := NewService(&config.Config{})

	msg := svc.buildTelegramMessage(testLead())

	assert.Contains(t, msg, "Lagos Bakery")
	assert.Contains(t, msg, "facebook")
	assert.Contains(t, msg, "72/100")
	assert.Contains(t, msg, "https://facebook.com/lagosbakery")
	assert.Contains(t, msg, "\U0001F534") // high-priority marker
}

func TestService_BuildTelegramMessage_TruncatesDescription(t *testing.T) {
	svc := NewService(&config.Config{})

	lead := testLead()
	lead.Description = strings.Repeat("a", 200)

	msg := svc.buildTelegramMessage(lead)

	assert.Contains(t, msg, strings.Repeat("a", 150)+"...")
	assert.NotContains(t, msg, strings.Repeat("a", 151))
}

func TestService_BuildBatchTelegramMessage(t *testing.T) {
	svc := NewService(&config.Config{})

	leads := []models.Business{*testLead(), *testLead(), *testLead()}
	leads[1].Priority = models.PriorityMedium
	leads[2].Priority = models.PriorityLow

	msg := svc.buildBatchTelegramMessage(leads)

	assert.Contains(t, msg, "3 new businesses discovered")
	assert.Contains(t, msg, "High Priority:</b> 1")
	assert.Contains(t, msg, "Medium Priority:</b> 1")
}

func TestGroupByPriority(t *testing.T) {
	leads := []models.Business{*testLead(), *testLead(), *testLead(), *testLead()}
	leads[1].Priority = models.PriorityMedium
	leads[2].Priority = models.PriorityLow
	leads[3].Priority = "" // unknown tiers fall into low

	high, medium, low := groupByPriority(leads)

	assert.Len(t, high, 1)
	assert.Len(t, medium, 1)
	assert.Len(t, low, 2)
}

func TestBuildLeadEmailHTML(t *testing.T) {
	html, err := buildLeadEmailHTML(testLead())
	require.NoError(t, err)

	assert.Contains(t, html, "Lagos Bakery")
	assert.Contains(t, html, "72/100")
	assert.Contains(t, html, "Country: Nigeria")
	assert.Contains(t, html, `href="https://facebook.com/lagosbakery"`)
}

func TestBuildBatchEmailHTML(t *testing.T) {
	var leads []models.Business
	for i := 0; i < 15; i++ {
		lead := *testLead()
		lead.BusinessName = "Lead " + strings.Repeat("x", i+1)
		leads = append(leads, lead)
	}

	html, err := buildBatchEmailHTML(leads)
	require.NoError(t, err)

	assert.Contains(t, html, "Total Businesses: 15")
	// Digest caps at ten high-priority cards.
	assert.Equal(t, 10, strings.Count(html, `business-card high`))
}
