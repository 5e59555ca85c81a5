package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatdesk.org/internal/bot"
	"chatdesk.org/internal/chat"
	"chatdesk.org/internal/config"
	"chatdesk.org/internal/directory"
	"chatdesk.org/internal/httpapi"
	"chatdesk.org/internal/identity"
	"chatdesk.org/internal/obs"
	"chatdesk.org/internal/session"
	pgstore "chatdesk.org/internal/store/pg"
	"chatdesk.org/internal/stream"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.SessionSecret == "" {
		log.Fatal("CHATDESK_SESSION_SECRET is required")
	}

	var (
		userStore directory.Store
		chatStore chat.Store
		probe     httpapi.ReadyProbe
		closeFn   = func() {}
	)
	if cfg.DatabaseURL != "" {
		store, err := pgstore.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		userStore = store.Users()
		chatStore = store.Conversations()
		probe = httpapi.ReadyProbe{DB: store.DB()}
		closeFn = func() { _ = store.Close() }
	} else {
		obs.Log("warn", "no database configured, using in-memory stores", nil)
		userStore = directory.NewInMemory()
		chatStore = chat.NewInMemory()
	}

	var provider identity.Provider
	if cfg.IdentityURL != "" {
		opts := []identity.ClientOption{}
		if cfg.ServiceAccount != nil {
			opts = append(opts, identity.WithServiceAccount(*cfg.ServiceAccount))
		}
		client, err := identity.NewClient(cfg.IdentityURL, cfg.IdentityAPIKey, opts...)
		if err != nil {
			log.Fatalf("identity client: %v", err)
		}
		provider = client
	} else {
		obs.Log("warn", "no identity provider configured, using local accounts", nil)
		provider = identity.NewLocal()
	}

	users, err := directory.NewService(userStore)
	if err != nil {
		log.Fatalf("directory service: %v", err)
	}

	botOpts := []bot.Option{}
	if cfg.BotEndpoint != "" {
		botOpts = append(botOpts, bot.WithEndpoint(cfg.BotEndpoint))
	}
	chats, err := chat.NewService(chatStore, bot.New(botOpts...))
	if err != nil {
		log.Fatalf("chat service: %v", err)
	}

	sessions, err := session.NewManager(cfg.SessionSecret,
		session.WithTTL(cfg.SessionTTL),
		session.WithSecureCookies(cfg.Production()),
	)
	if err != nil {
		log.Fatalf("session manager: %v", err)
	}

	api := httpapi.New(probe, version, users, chats, provider, sessions, stream.New())

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      0, // SSE connections stay open
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting chatdesk-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	closeFn()
	log.Println("Stopped")
}
