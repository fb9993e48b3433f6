package main

import (
	"fmt"
	"os"

	"github.com/prasetyowira/cardgen/config"
	"github.com/prasetyowira/cardgen/constant"
	appLogger "github.com/prasetyowira/cardgen/infrastructure/logger"
)

func main() {
	// Load configuration from .env and environment variables
	cfg := config.LoadConfig()

	// Initialize logger based on environment
	appLogger.Initialize(cfg.IsProduction())

	appLogger.Debug(constant.MsgApplicationStarting, appLogger.LoggerInfo{
		ContextFunction: constant.CtxMain,
		Data: map[string]interface{}{
			constant.DataDBPath:      cfg.HistoryDB,
			constant.DataFontPath:    cfg.FontPath,
			constant.DataEnvironment: cfg.LogLevel,
		},
	})

	err := newRootCmd(cfg).Execute()
	appLogger.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
