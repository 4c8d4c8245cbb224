package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"toktok/pkg/agent"
	"toktok/pkg/api"
	"toktok/pkg/channels"
	_ "toktok/pkg/channels/autoload" // 自動註冊 Channels
	"toktok/pkg/config"
	"toktok/pkg/gateway"
	"toktok/pkg/handler"
	"toktok/pkg/llm"
	_ "toktok/pkg/llm/autoload" // 自動註冊 LLM Providers
	"toktok/pkg/monitor"
	"toktok/pkg/search"
	"toktok/pkg/session"
	"toktok/pkg/tools"

	jsoniter "github.com/json-iterator/go"
)

func main() {
	// 啟動監控環境
	monitor.Startup()

	log.Println("==========================================")

	// --- 0. 讀取設定檔與憑證 ---
	cfg, sysCfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v\n", err)
	}
	monitor.SetupSlog(sysCfg.LogLevel)

	secrets := config.LoadSecrets()
	missing := secrets.Missing(cfg.ProviderTypes())

	// --- 1. 對話歷史 ---
	store := session.NewStore()

	// --- 2. Agent 組裝 ---
	// 缺少憑證時不建立 Agent，改用 setup notice 模式讓 UI 顯示警告
	var assistant api.Agent
	var coordinator *agent.Coordinator
	var setupNotice string

	if len(missing) > 0 {
		setupNotice = fmt.Sprintf(
			"⚠️ Setup required: missing credentials: %s.\nSet them in the environment (or a .env file) and restart.",
			strings.Join(missing, ", "),
		)
		log.Printf("⚠️ Missing credentials: %s — starting in setup-notice mode\n", strings.Join(missing, ", "))
	} else {
		client, err := llm.NewFromConfig(cfg.LLM, sysCfg, secrets)
		if err != nil {
			log.Fatalf("❌ Failed to init LLM client: %v\n", err)
		}

		serp := search.NewSerpAPIClient(secrets.SerpAPIKey, time.Duration(sysCfg.SearchTimeoutMs)*time.Millisecond)

		coordinator = agent.NewCoordinator(client, cfg, sysCfg, store)
		coordinator.SetToolRegistry(tools.BuildRegistry(serp))
		assistant = coordinator
	}

	// --- 3. Gateway 初始化（使用 Builder 模式）---
	gw, err := gateway.NewGatewayBuilder().
		WithMonitor(monitor.NewCLIMonitor()).
		WithChannelConfigs(cfg.Channels).
		WithChannelLoader(func(g *gateway.GatewayManager, configs map[string]jsoniter.RawMessage) {
			channels.LoadFromConfig(g, configs, store, secrets, sysCfg)
		}).
		WithHandlerFactory(func(gw *gateway.GatewayManager) gateway.MessageHandler {
			return handler.NewMessageHandler(assistant, gw, store, setupNotice)
		}).
		Build()

	if err != nil {
		log.Fatalf("❌ Failed to build gateway: %v\n", err)
	}

	// --- 4. 設定檔熱更新（引擎參數）---
	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()

	reloadCh := config.WatchConfig(watchCtx, "system.json")
	go func() {
		for range reloadCh {
			// 只熱載引擎參數；channels/llm 結構變更需要重啟。
			// 用指標交換把新設定交給 Coordinator，避免與請求併發讀寫同一個 struct。
			newSys := config.LoadSystemConfig("system.json")
			monitor.SetupSlog(newSys.LogLevel)
			if coordinator != nil {
				coordinator.UpdateSystemConfig(newSys)
			}
			log.Printf("🔄 System config reloaded (log_level=%s)\n", newSys.LogLevel)
		}
	}()

	// 監聽系統信號
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// 等待信號
	<-sigChan
	log.Println("\nReceived shutdown signal. Stopping services...")

	// 執行清理
	gw.StopAll()
	log.Println("Bye!")
}
