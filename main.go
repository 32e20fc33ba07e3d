package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"DomainCheck/config"
	"DomainCheck/domain"
	"DomainCheck/internal/app"
	"DomainCheck/scheduler"
	"DomainCheck/server"
	"DomainCheck/storage"
	"DomainCheck/telegram"
	"DomainCheck/whois"
)

func main() {
	configPath := flag.String("config", "config.yaml", "配置文件路径")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	kv, err := newStorage(cfg)
	if err != nil {
		log.Fatalf("初始化存储失败: %v", err)
	}

	resolver := newResolver(cfg)
	cache := whois.NewCachedResolver(resolver, kv, cfg.CacheMaxAge())
	store := domain.NewStore(kv, cache)

	var sender telegram.Sender
	botSender, err := telegram.NewBotSender(
		cfg.Telegram.BotToken,
		cfg.Telegram.ChatID,
		2,
		time.Second,
		10*time.Second,
	)
	if err != nil {
		log.Printf("初始化 Telegram 失败，使用空实现: %v", err)
		sender = telegram.NoopSender{}
	} else {
		sender = botSender
	}

	checker := &app.ExpiryChecker{
		Store:     store,
		Markers:   kv,
		Sender:    sender,
		AlertDays: cfg.AlertDays,
	}

	sched := scheduler.NewDailyScheduler(cfg.AlertHour, cfg.AlertMin)
	go func() {
		if err := sched.Run(ctx, func(ctx context.Context) error {
			_, err := checker.RunCheck(ctx)
			return err
		}); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("定时任务退出: %v", err)
		}
	}()

	srv := server.New(cfg, store, cache, checker).HTTPServer()
	go func() {
		log.Printf("[http] listen addr=%s", cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP 服务退出: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("收到退出信号，开始关闭")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP 关闭失败: %v", err)
	}
	cache.Flush()
}

func newStorage(cfg config.Config) (storage.KV, error) {
	switch cfg.Storage.Backend {
	case "memory":
		return storage.NewMemory(), nil
	case "file":
		return storage.NewFileStore(cfg.Storage.FileDir)
	case "cloudflarekv":
		return storage.NewCloudflareKV(
			cfg.Storage.Cloudflare.APIToken,
			cfg.Storage.Cloudflare.AccountID,
			cfg.Storage.Cloudflare.NamespaceID,
		)
	case "redis":
		return storage.NewRedis(cfg.Storage.RedisURL)
	default:
		return nil, fmt.Errorf("未知的存储后端: %s", cfg.Storage.Backend)
	}
}

func newResolver(cfg config.Config) whois.Resolver {
	switch cfg.Whois.Source {
	case "rdap":
		return whois.TimeoutResolver{Upstream: whois.NewRDAPResolver(), Timeout: cfg.Whois.Timeout}
	case "port43":
		return whois.TimeoutResolver{Upstream: whois.Port43Resolver{}, Timeout: cfg.Whois.Timeout}
	case "chain":
		// RDAP 优先，43 端口兜底，整条链共用一个超时预算
		return whois.TimeoutResolver{
			Upstream: &whois.ChainResolver{Resolvers: []whois.Resolver{
				whois.NewRDAPResolver(),
				whois.Port43Resolver{},
			}},
			Timeout: cfg.Whois.Timeout,
		}
	default:
		return whois.NewHTTPResolver(cfg.Whois.APIURL, cfg.Whois.Timeout)
	}
}
