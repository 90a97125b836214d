package main

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"pasarkerja/internal/adapter/api"
	"pasarkerja/internal/adapter/api/handler"
	apimiddleware "pasarkerja/internal/adapter/api/middleware"
	"pasarkerja/internal/adapter/api/router"
	"pasarkerja/internal/adapter/repository"
	"pasarkerja/internal/infrastructure/firebase"
	"pasarkerja/internal/infrastructure/realtime"
	"pasarkerja/internal/infrastructure/websocket"
	"pasarkerja/internal/usecase"
	"pasarkerja/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opt option.ClientOption

	// Try to get service account from environment variable (for production)
	serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON")
	if serviceAccountJSON != "" {
		log.Printf("Using Firebase service account from environment variable")
		opt = option.WithCredentialsJSON([]byte(serviceAccountJSON))
	} else {
		// Fallback to file path (for local development)
		serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
		if serviceAccountPath == "" {
			serviceAccountPath = "./service-account.json"
		}

		if _, err := os.Stat(serviceAccountPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", serviceAccountPath)
		}

		log.Printf("Using Firebase service account from file: %s", serviceAccountPath)
		opt = option.WithCredentialsFile(serviceAccountPath)
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	chatRepo := repository.NewFirestoreChatRepository(firestoreClient)

	firebaseAuthClient := firebase.NewFirebaseAuthClient(authClient, cfg.FirebaseApiKey)

	// Live message channels backed by Firestore snapshot listeners
	eventSource := realtime.NewFirestoreEventSource(firestoreClient, cfg.SessionBuffer)
	channelManager := realtime.NewManager(eventSource)

	chatUseCase := usecase.NewChatUseCase(chatRepo, userRepo)
	readStateUseCase := usecase.NewReadStateUseCase(chatRepo)
	chatListUseCase := usecase.NewChatListUseCase(chatRepo, userRepo, readStateUseCase)
	sessionUseCase := usecase.NewChatSessionUseCase(chatUseCase, chatRepo, readStateUseCase, channelManager)

	wsManager := websocket.NewManager(sessionUseCase)
	wsManager.Start(ctx)

	handler.Setup(chatUseCase, chatListUseCase, readStateUseCase)
	handler.SetupHealthHandler(firebaseAuthClient)
	handler.SetupDevTokenHandler(firebaseAuthClient, userRepo)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(apimiddleware.GeneralRateLimit())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient)

	wsHandler := handler.NewWebSocketHandler(wsManager, authMiddleware)

	router.Setup(e, authMiddleware)
	router.SetupDevRouter(e, cfg.Environment)
	router.SetupWebSocketRouter(e, wsHandler)

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
