package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/voxeterna/blog-api/internal/config"
	"github.com/voxeterna/blog-api/internal/es"
	"github.com/voxeterna/blog-api/internal/google"
	"github.com/voxeterna/blog-api/internal/httpserver"
	"github.com/voxeterna/blog-api/internal/logging"
	"github.com/voxeterna/blog-api/internal/mailer"
	"github.com/voxeterna/blog-api/internal/middleware"
	"github.com/voxeterna/blog-api/internal/mykafka"
	"github.com/voxeterna/blog-api/internal/repo"
	"github.com/voxeterna/blog-api/internal/service"
	"github.com/voxeterna/blog-api/internal/tokens"
)

const blogIndex = "blogs"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	cfg.MustValidate()

	logger := logging.New(cfg.LOG_LEVEL)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	var brokers []string
	if cfg.KAFKA_ADDRESS != "" {
		brokers = []string{cfg.KAFKA_ADDRESS}
	}
	producer := mykafka.NewProducer(brokers)

	var esClient *elasticsearch.Client
	if cfg.ES_URL != "" {
		esClient, err = es.NewClient(cfg)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
	}

	store := &repo.Store{DB: db}
	codec := &tokens.Codec{
		ActivationSecret: []byte(cfg.ACTIVATION_SECRET),
		SessionSecret:    []byte(cfg.SESSION_SECRET),
		ResetSecret:      []byte(cfg.RESET_SECRET),
	}
	smtp := mailer.NewSMTP(cfg.SMTP_HOST, cfg.SMTP_PORT, cfg.SMTP_USER, cfg.SMTP_PASSWORD)

	authSvc := &service.AuthService{
		Repo:      store,
		Tokens:    codec,
		Mailer:    smtp,
		Provider:  google.NewProvider(cfg.GOOGLE_CLIENT_ID),
		Producer:  producer,
		ClientURL: cfg.CLIENT_URL,
		EmailFrom: cfg.EMAIL_FROM,
	}

	e := echo.New()
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover(), echomw.RequestID(), middleware.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		Auth: &httpserver.AuthHTTP{Svc: authSvc},
		Blog: &httpserver.BlogHTTP{
			Repo:     store,
			Producer: producer,
			ES:       esClient,
			ESIndex:  blogIndex,
			AppName:  cfg.APP_NAME,
		},
		Category: &httpserver.CategoryHTTP{Repo: store},
		Tag:      &httpserver.TagHTTP{Repo: store},
		User:     &httpserver.UserHTTP{Repo: store},
		Form: &httpserver.FormHTTP{
			Mailer:  smtp,
			AppName: cfg.APP_NAME,
			EmailTo: cfg.EMAIL_TO,
		},
		Search: &httpserver.SearchHTTP{ES: esClient, Index: blogIndex},
		MW:     middleware.NewAuth(codec, store),
	})

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
