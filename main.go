package main

import (
	"context"
	"encoding/base64"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/api/option"

	"synqAPI/handlers"
	"synqAPI/internal/ai"
	"synqAPI/internal/httpclient"
	"synqAPI/internal/places"
	"synqAPI/internal/push"
	"synqAPI/internal/store"
	"synqAPI/middleware"
	"synqAPI/services"

	_ "net/http/pprof"
)

var (
	authClient        *auth.Client
	firestoreClient   *firestore.Client
	userService       *services.UserService
	friendService     *services.FriendService
	chatService       *services.ChatService
	pushService       *services.PushService
	deletionService   *services.DeletionService
	suggestionService *services.SuggestionService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	app, err := firebase.NewApp(ctx, nil, firebaseCredentials())
	if err != nil {
		log.Fatal("Failed to initialize Firebase app:", err)
	}

	authClient, err = app.Auth(ctx)
	if err != nil {
		log.Fatal("Failed to initialize Firebase auth:", err)
	}

	firestoreClient, err = app.Firestore(ctx)
	if err != nil {
		log.Fatal("Failed to initialize Firestore:", err)
	}
	log.Println("Connected to Firestore")

	docStore := store.NewFirestoreStore(firestoreClient)

	httpClient := httpclient.New(httpclient.Config{
		Timeout:         15 * time.Second,
		RetryMaxElapsed: 20 * time.Second,
		MaxIdleConns:    20,
		IdleConnTimeout: 90 * time.Second,
	})

	expoService := push.NewExpoService(httpClient)

	geminiService, err := ai.NewGeminiService(httpClient)
	if err != nil {
		log.Fatal("Failed to initialize model client:", err)
	}
	placesService, err := places.NewService(httpClient)
	if err != nil {
		log.Fatal("Failed to initialize places client:", err)
	}

	userService = services.NewUserService(docStore)
	pushService = services.NewPushService(docStore, expoService)
	friendService = services.NewFriendService(docStore, userService, pushService)
	chatService = services.NewChatService(docStore, userService, pushService)
	deletionService = services.NewDeletionService(docStore, authClient)
	suggestionService = services.NewSuggestionService(geminiService, placesService)

	middleware.InitPrometheus()
}

// firebaseCredentials prefers a Base64-encoded service account from the
// environment and falls back to a local key file.
func firebaseCredentials() option.ClientOption {
	if encoded := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); encoded != "" {
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			log.Fatal("Failed to decode FIREBASE_SERVICE_ACCOUNT_JSON:", err)
		}
		log.Println("Firebase: initializing from FIREBASE_SERVICE_ACCOUNT_JSON environment variable")
		return option.WithCredentialsJSON(decoded)
	}
	keyPath := os.Getenv("FIREBASE_KEY_FILE")
	if keyPath == "" {
		keyPath = "./serviceAccountKey.json"
	}
	log.Printf("Firebase: initializing from local file: %s", keyPath)
	return option.WithCredentialsFile(keyPath)
}

func main() {
	defer func() {
		log.Println("Closing Firestore client...")
		firestoreClient.Close()
	}()

	userHandler := handlers.NewUserHandler(userService)
	friendHandler := handlers.NewFriendHandler(friendService)
	chatHandler := handlers.NewChatHandler(chatService)
	accountHandler := handlers.NewAccountHandler(deletionService)
	suggestionHandler := handlers.NewSuggestionHandler(suggestionService)
	triggerHandler := handlers.NewTriggerHandler(pushService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if _, err := firestoreClient.Collections(ctx).GetAll(); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "firestore connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "synq-api"}`))
	}).Methods("GET")

	// -------------------------------------------------------------------------
	// EVENT TRIGGERS (PLATFORM-INVOKED, SHARED-SECRET GUARDED)
	// -------------------------------------------------------------------------
	triggers := r.PathPrefix("/triggers").Subrouter()
	triggers.Use(middleware.TriggerSecretMiddleware)

	triggers.HandleFunc("/message-created", triggerHandler.MessageCreated).Methods("POST")
	triggers.HandleFunc("/friend-request-created", triggerHandler.FriendRequestCreated).Methods("POST")
	triggers.HandleFunc("/friend-created", triggerHandler.FriendCreated).Methods("POST")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.FirebaseAuthMiddleware(authClient))

	api.HandleFunc("/user", userHandler.GetProfile).Methods("GET")
	api.HandleFunc("/user", userHandler.CreateProfile).Methods("POST")
	api.HandleFunc("/user", userHandler.UpdateProfile).Methods("PUT")
	api.HandleFunc("/user/availability", userHandler.SetAvailability).Methods("PUT")
	api.HandleFunc("/user/push-token", userHandler.RegisterPushToken).Methods("POST")

	api.HandleFunc("/friends", friendHandler.GetFriends).Methods("GET")
	api.HandleFunc("/friends/{friendId}", friendHandler.RemoveFriend).Methods("DELETE")
	api.HandleFunc("/available", friendHandler.GetAvailableFriends).Methods("GET")
	api.HandleFunc("/friend-requests", friendHandler.GetRequests).Methods("GET")
	api.HandleFunc("/friend-requests", friendHandler.SendRequest).Methods("POST")
	api.HandleFunc("/friend-requests/{requestId}/accept", friendHandler.AcceptRequest).Methods("POST")
	api.HandleFunc("/friend-requests/{requestId}", friendHandler.DeclineRequest).Methods("DELETE")

	api.HandleFunc("/chats", chatHandler.CreateChat).Methods("POST")
	api.HandleFunc("/chats", chatHandler.GetChats).Methods("GET")
	api.HandleFunc("/chats/{chatId}/messages", chatHandler.GetMessages).Methods("GET")
	api.HandleFunc("/chats/{chatId}/messages", chatHandler.SendMessage).Methods("POST")

	api.HandleFunc("/account/delete", accountHandler.DeleteAccount).Methods("POST")
	api.HandleFunc("/suggestions", suggestionHandler.GetSuggestions).Methods("POST")

	corsHandler := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins([]string{"*"}),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret", "X-Trigger-Secret"}),
		gorillaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorillaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 150 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
