package main

import (
	"log"

	"railscan/config"
	"railscan/internal/api"
	"railscan/internal/container"
	"railscan/internal/infrastructure/storage"
	"railscan/internal/infrastructure/vision"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Открываем базу инспекций
	repo, err := storage.OpenSQLite(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer repo.Close()

	// Файловое хранилище снимков
	images, err := storage.NewDiskImageStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to init upload dir: %v", err)
	}

	detector := vision.NewDetector()
	userRepo := storage.NewMemoryUserRepository()

	// Собираем сервисы приложения
	appContainer := container.New(userRepo, repo, detector, images)

	// Бот запускается только при наличии токена
	if cfg.TelegramToken != "" {
		bot, err := api.NewBot(cfg.TelegramToken, appContainer.UserService, appContainer.CatalogService, images)
		if err != nil {
			log.Fatalf("Failed to create bot: %v", err)
		}
		go func() {
			log.Println("Bot is running...")
			if err := bot.Run(); err != nil {
				log.Printf("Bot error: %v", err)
			}
		}()
	}

	srv := api.NewServer(appContainer.CatalogService, cfg.UploadDir)
	log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
	if err := srv.Start(cfg.HTTPAddr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
