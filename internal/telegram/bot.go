package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"slices"
	"strings"
	"time"

	"ai-study-planner/internal/app"
	"ai-study-planner/internal/config"
	"ai-study-planner/internal/metrics"
	"ai-study-planner/internal/planner"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	maxMessageRunes = 4096
	maxDocumentSize = 20 << 20
	dateLayout      = "2006-01-02"
	planTimeout     = 3 * time.Minute
)

var errNoExamDate = errors.New("send the exam date as YYYY-MM-DD in the document caption")

// PlanGenerator produces study plans from uploaded syllabi.
type PlanGenerator interface {
	GeneratePlans(ctx context.Context, uploads []app.Upload) (planner.Batch, error)
}

// botAPI is the part of *tgbotapi.BotAPI the bot talks to.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
	HandleUpdate(r *http.Request) (*tgbotapi.Update, error)
}

// Bot wraps the Telegram API and the study planner.
type Bot struct {
	api          botAPI
	plans        PlanGenerator
	metricsStore *metrics.Store
	cfg          *config.Config
	httpClient   *http.Client
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, plans PlanGenerator, metricsStore *metrics.Store) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
	}
	resp, err := bot.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return &Bot{
		api:          bot,
		plans:        plans,
		metricsStore: metricsStore,
		cfg:          cfg,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// RegisterHandlers registers the webhook handler on mux.
func (b *Bot) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("POST /webhook", b.handleWebhook)
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		log.Printf("Error parsing update: %v", err)
		return
	}

	if update.Message == nil || update.Message.From == nil {
		return
	}

	if !isAllowed(b.cfg.TelegramAllowedUserIDs, update.Message.From.ID) {
		log.Printf("⚠️ Unauthorized access attempt from UserID: %d (@%s)", update.Message.From.ID, update.Message.From.UserName)
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	switch {
	case msg.Document != nil:
		b.handleDocument(msg)
	case msg.Text == "/metrics":
		b.handleMetricsCommand(msg.Chat.ID)
	default:
		b.send(msg.Chat.ID, helpText)
	}
}

const helpText = "📚 Send me a syllabus (PDF, HTML or text) with the exam date as caption, e.g. 2026-12-15, and I'll reply with a study plan for the days before the exam."

func (b *Bot) handleDocument(msg *tgbotapi.Message) {
	exam, err := parseExamDate(msg.Caption)
	if err != nil {
		b.send(msg.Chat.ID, "❌ "+err.Error())
		return
	}
	if msg.Document.FileSize > maxDocumentSize {
		b.send(msg.Chat.ID, "❌ The document is too large.")
		return
	}

	sent, err := b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, "🧠 Thinking...\n(Reading your syllabus and generating the plan)"))
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), planTimeout)
	defer cancel()

	data, err := b.download(ctx, msg.Document.FileID)
	if err != nil {
		log.Printf("Error downloading document: %v", err)
		b.api.Send(tgbotapi.NewEditMessageText(msg.Chat.ID, sent.MessageID, "❌ Could not download the document."))
		return
	}

	batch, err := b.plans.GeneratePlans(ctx, []app.Upload{{
		Filename: msg.Document.FileName,
		Data:     data,
		ExamDate: exam,
	}})
	if err != nil {
		log.Printf("Error generating plan: %v", err)
		text := "❌ Failed to generate the study plan."
		if errors.Is(err, planner.ErrMissingCredential) {
			text = "❌ " + planner.KindMissingCredential.Message()
		}
		b.api.Send(tgbotapi.NewEditMessageText(msg.Chat.ID, sent.MessageID, text))
		return
	}

	parts := formatBatch(batch)
	b.api.Send(tgbotapi.NewEditMessageText(msg.Chat.ID, sent.MessageID, parts[0]))
	for _, p := range parts[1:] {
		b.send(msg.Chat.ID, p)
	}
}

func (b *Bot) download(ctx context.Context, fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download file: status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
}

func (b *Bot) handleMetricsCommand(chatID int64) {
	usage, err := b.metricsStore.GetDailyUsage(context.Background(), 7)
	if err != nil {
		log.Printf("Error fetching metrics: %v", err)
		b.send(chatID, "❌ Error fetching metrics.")
		return
	}
	b.send(chatID, formatMetrics(usage, metrics.GetSysHealth(b.cfg.DatabasePath)))
}

func (b *Bot) send(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("Failed to send message: %v", err)
	}
}

func isAllowed(allowed []int64, id int64) bool {
	return slices.Contains(allowed, id)
}

func parseExamDate(caption string) (time.Time, error) {
	for _, field := range strings.Fields(caption) {
		if t, err := time.Parse(dateLayout, field); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errNoExamDate
}

// formatBatch renders one message per course, each split to fit Telegram's limit.
func formatBatch(batch planner.Batch) []string {
	var parts []string
	for _, r := range batch.Results {
		var sb strings.Builder
		fmt.Fprintf(&sb, "📝 %s\n📅 Exam: %s\n\n", r.CourseName, r.ExamDate.Format("Monday, January 2, 2006"))
		if r.OK() {
			sb.WriteString(r.PlanText)
		} else {
			fmt.Fprintf(&sb, "❌ %s", r.Error.Message())
		}
		parts = append(parts, splitMessage(sb.String(), maxMessageRunes)...)
	}

	if len(batch.Conflicts) > 0 {
		var sb strings.Builder
		sb.WriteString("⚠️ Schedule conflicts\n")
		for _, c := range batch.Conflicts {
			fmt.Fprintf(&sb, "• %s: %s\n", c.Date.Format("Mon Jan 2"), strings.Join(c.Courses, ", "))
		}
		parts = append(parts, sb.String())
	}

	if len(parts) == 0 {
		parts = append(parts, "No study plans were generated.")
	}
	return parts
}

// splitMessage breaks text into chunks of at most limit runes, preferring line breaks.
func splitMessage(text string, limit int) []string {
	var chunks []string
	runes := []rune(text)
	for len(runes) > limit {
		cut := limit
		for i := limit; i > limit/2; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	return append(chunks, string(runes))
}

func formatMetrics(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 Usage & Health Report\n\n")

	sb.WriteString("🗓 Recent LLM Activity\n")
	if len(usage) == 0 {
		sb.WriteString("No data yet\n")
	}
	for _, d := range usage {
		fmt.Fprintf(&sb, "• %s: %d tokens (%d execs, %d failed)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution, d.Failed)
	}

	sb.WriteString("\n🧠 System Health\n")
	fmt.Fprintf(&sb, "• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB)
	fmt.Fprintf(&sb, "• Goroutines: %d\n", health.Goroutines)
	fmt.Fprintf(&sb, "• Database: %s\n", health.DatabaseSize)
	return sb.String()
}
