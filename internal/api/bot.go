package api

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	app "railscan/internal/application"
	"railscan/internal/domain/entity"
	"railscan/internal/domain/port"
)

const (
	msgStart = `👋 Привет! Я бот мониторинга рельсового пути.

📸 Отправьте фото участка пути, и я найду аномалии и оценю критичность.

📋 Команды:
/check — проверить снимок пути
/stats — статистика инспекций
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте фото участка пути
2️⃣ Бот проанализирует изображение
3️⃣ Вы получите результат: число аномалий, уровень критичности и фото с разметкой

💡 Рекомендации:
• Снимайте при хорошем освещении
• Держите камеру перпендикулярно полотну
• Фото должно быть чётким

📋 Команды:
/check — начать проверку
/stats — статистика инспекций
/cancel — отменить операцию`

	msgAwaitingPhoto   = "📸 Отправьте фото участка пути для проверки."
	msgCancelled       = "❌ Операция отменена. Отправьте /check для новой проверки."
	msgSendPhoto       = "📸 Пожалуйста, отправьте фото участка пути."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Обрабатываю снимок..."
	msgProcessingError = "⚠️ Не удалось обработать снимок. Попробуйте сделать другое фото."
	msgStatsError      = "⚠️ Не удалось получить статистику."
)

// Bot представляет Telegram-бота
type Bot struct {
	api     *tgbotapi.BotAPI
	users   *app.UserService
	catalog *app.CatalogService
	images  port.ImageStore
}

// NewBot создаёт нового бота
func NewBot(token string, users *app.UserService, catalog *app.CatalogService, images port.ImageStore) (*Bot, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Printf("Authorized on account %s", botAPI.Self.UserName)

	return &Bot{
		api:     botAPI,
		users:   users,
		catalog: catalog,
		images:  images,
	}, nil
}

// Run запускает основной цикл обработки сообщений
func (b *Bot) Run() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	ctx := context.Background()

	for update := range updates {
		if update.Message == nil {
			continue
		}

		b.handleMessage(ctx, update.Message)
	}

	return nil
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	user, err := b.users.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		log.Printf("Error getting user: %v", err)
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg, user)
		return
	}

	// Обработка фото
	if len(msg.Photo) > 0 {
		b.handlePhoto(ctx, msg)
		return
	}

	// Текстовое сообщение (не команда)
	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	switch msg.Command() {
	case "start":
		b.setState(ctx, user, entity.StateMainMenu)
		b.sendMessage(msg.Chat.ID, msgStart)

	case "help":
		b.sendMessage(msg.Chat.ID, msgHelp)

	case "check":
		b.setState(ctx, user, entity.StateAwaitingPhoto)
		b.sendMessage(msg.Chat.ID, msgAwaitingPhoto)

	case "stats":
		b.sendStats(ctx, msg.Chat.ID)

	case "cancel":
		b.setState(ctx, user, entity.StateMainMenu)
		b.sendMessage(msg.Chat.ID, msgCancelled)

	default:
		b.sendMessage(msg.Chat.ID, msgUnknownCommand)
	}
}

// handlePhoto анализирует присланное фото и отвечает результатом инспекции
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	if _, err := b.users.SetState(ctx, msg.From.ID, msg.Chat.ID, entity.StateProcessing); err != nil {
		log.Printf("Error setting state: %v", err)
	}
	b.sendMessage(msg.Chat.ID, msgProcessing)

	// Берём файл с максимальным разрешением
	photo := msg.Photo[len(msg.Photo)-1]

	imageData, err := b.downloadFile(photo.FileID)
	if err != nil {
		log.Printf("Error downloading photo: %v", err)
		b.finishWithError(ctx, msg)
		return
	}

	insp, err := b.catalog.AnalyzeAndRecord(ctx, imageData, fmt.Sprintf("telegram_%s.jpg", photo.FileUniqueID))
	if err != nil {
		log.Printf("Error analyzing photo: %v", err)
		b.finishWithError(ctx, msg)
		return
	}

	b.sendMessage(msg.Chat.ID, formatInspection(insp))
	b.sendAnnotated(msg.Chat.ID, insp)

	if _, err := b.users.SetState(ctx, msg.From.ID, msg.Chat.ID, entity.StateMainMenu); err != nil {
		log.Printf("Error setting state: %v", err)
	}
}

func (b *Bot) finishWithError(ctx context.Context, msg *tgbotapi.Message) {
	b.sendMessage(msg.Chat.ID, msgProcessingError)
	if _, err := b.users.SetState(ctx, msg.From.ID, msg.Chat.ID, entity.StateMainMenu); err != nil {
		log.Printf("Error setting state: %v", err)
	}
}

// sendAnnotated отправляет фото с разметкой аномалий
func (b *Bot) sendAnnotated(chatID int64, insp *entity.Inspection) {
	if insp.AnnotatedImage == "" {
		return
	}
	data, err := b.images.Load(insp.AnnotatedImage)
	if err != nil {
		log.Printf("Error loading annotated image: %v", err)
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: insp.AnnotatedImage, Bytes: data})
	if _, err := b.api.Send(photo); err != nil {
		log.Printf("Error sending photo: %v", err)
	}
}

// sendStats отправляет сводку по каталогу инспекций
func (b *Bot) sendStats(ctx context.Context, chatID int64) {
	stats, err := b.catalog.Statistics(ctx)
	if err != nil {
		log.Printf("Error getting statistics: %v", err)
		b.sendMessage(chatID, msgStatsError)
		return
	}

	b.sendMessage(chatID, fmt.Sprintf(`📊 Всего инспекций: %d

🔴 high: %d
🟠 medium: %d
🟢 low: %d

Среднее число аномалий: %.2f`,
		stats.Total, stats.HighCount, stats.MediumCount, stats.LowCount, stats.AverageAnomalies))
}

func (b *Bot) setState(ctx context.Context, user *entity.User, state entity.UserState) {
	if _, err := b.users.SetState(ctx, user.ID, user.ChatID, state); err != nil {
		log.Printf("Error setting state: %v", err)
	}
}

// formatInspection собирает текст ответа по инспекции
func formatInspection(insp *entity.Inspection) string {
	return fmt.Sprintf(`🔎 Инспекция #%d

Аномалий: %d
Уровень: %s
Оценка критичности: %.2f
Время обработки: %.3f с

%s`,
		insp.ID, insp.AnomaliesCount, insp.CriticalityLevel, insp.CriticalityScore, insp.ProcessingTime, insp.Notes)
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	fileURL := file.Link(b.api.Token)

	resp, err := http.Get(fileURL)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}
