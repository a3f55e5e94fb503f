package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/yeremiapane/restaurant-client/api"
	"github.com/yeremiapane/restaurant-client/config"
	"github.com/yeremiapane/restaurant-client/realtime"
	"github.com/yeremiapane/restaurant-client/store"
	"github.com/yeremiapane/restaurant-client/tablesync"
	"github.com/yeremiapane/restaurant-client/utils"
)

func init() {
	// .env dibaca oleh config.Load, di sini cukup logger
	utils.InitLogger()
}

func main() {
	cfg := config.Load()

	sess, err := store.Open(cfg.SessionPath)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to open session store: %v", err)
	}

	rest := api.NewClient(cfg.APIBaseURL)

	ctx := context.Background()
	token, userID, role, ok := sess.LoadSession()
	if ok {
		rest.Token = token
		utils.InfoLogger.Printf("Reusing stored session for %s (role=%s)", userID, role)
	} else {
		email := os.Getenv("LOGIN_EMAIL")
		password := os.Getenv("LOGIN_PASSWORD")
		if email == "" || password == "" {
			utils.ErrorLogger.Fatal("No stored session; set LOGIN_EMAIL and LOGIN_PASSWORD to log in")
		}

		result, err := rest.Login(ctx, email, password)
		if err != nil {
			utils.ErrorLogger.Fatalf("Login failed: %v", err)
		}

		userID = result.User.UserID
		role = result.User.Role
		// Identitas di dalam token menang kalau berbeda dari profil
		if claims, err := utils.ParseIdentity(result.Token); err == nil {
			userID = claims.UserID
			role = claims.Role
		}

		if err := sess.SaveSession(result.Token, userID, role); err != nil {
			utils.ErrorLogger.Printf("Failed to persist session: %v", err)
		}
		utils.InfoLogger.Printf("Logged in as %s (role=%s)", userID, role)
	}

	menu, err := rest.FetchMenu(ctx)
	if err != nil {
		utils.ErrorLogger.Printf("Failed to fetch menu: %v", err)
	} else {
		utils.InfoLogger.Printf("Menu snapshot loaded, %d items", len(menu))
	}

	manager := realtime.NewManager(cfg.WSBaseURL)
	ch, err := manager.Connect(ctx, userID, role)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect realtime channel: %v", err)
	}

	syncer := tablesync.NewSynchronizer(manager)
	if err := syncer.Start(); err != nil {
		utils.ErrorLogger.Fatalf("Failed to start synchronizer: %v", err)
	}

	utils.InfoLogger.Printf("Client running, channel state: %s", ch.State())

	// Jalan sampai diinterupsi; semua update masuk lewat handler channel
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	utils.InfoLogger.Println("Shutting down")
	syncer.Stop()
	ch.Close()
}
