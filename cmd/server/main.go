// cmd/server/main.go
package main

import (
	"log"
	"path/filepath"

	"github.com/Corphon/NovelForge/internal/app"
	"github.com/Corphon/NovelForge/internal/config"
	"github.com/Corphon/NovelForge/internal/di"
	"github.com/Corphon/NovelForge/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logFile := ""
	if cfg.LogDir != "" {
		logFile = filepath.Join(cfg.LogDir, "server.log")
	}
	if err := utils.InitLogger(logFile, cfg.DebugMode); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	logger := utils.GetLogger()
	logger.Info("starting NovelForge API server", map[string]interface{}{
		"port":     cfg.Port,
		"data_dir": cfg.DataDir,
		"debug":    cfg.DebugMode,
	})

	a := app.New(cfg, di.GetContainer(), logger)
	if err := a.InitServices(); err != nil {
		logger.Fatal("init services failed", map[string]interface{}{"error": err})
	}

	if err := a.Run(); err != nil {
		logger.Fatal("server exited", map[string]interface{}{"error": err})
	}
}
