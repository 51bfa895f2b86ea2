package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"researchequals-backend/pkg/container"
	"researchequals-backend/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	logger.Init(env)

	// The worker shares the API's dependency graph: it needs the module
	// repository and the indexer, wired the same way.
	appContainer, err := container.NewContainer()
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer appContainer.Close()

	handlers := NewHandlerRegistry(appContainer)

	srv := setupAsynqServer(appContainer, handlers)
	sched := setupScheduler(appContainer)

	// Block until shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sched.Shutdown()
	srv.Shutdown()
}
