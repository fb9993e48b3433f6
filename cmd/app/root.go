package main

import (
	"github.com/prasetyowira/cardgen/config"
	"github.com/prasetyowira/cardgen/constant"
	"github.com/prasetyowira/cardgen/domain/card"
	"github.com/prasetyowira/cardgen/infrastructure/cache"
	"github.com/prasetyowira/cardgen/infrastructure/db"
	appLogger "github.com/prasetyowira/cardgen/infrastructure/logger"
	"github.com/prasetyowira/cardgen/infrastructure/qrcode"
	"github.com/prasetyowira/cardgen/infrastructure/storage"
	"github.com/prasetyowira/cardgen/infrastructure/typeface"
	"github.com/spf13/cobra"
	"golang.org/x/image/font/opentype"
)

type rootFlags struct {
	cfg       config.Config
	fontPath  string
	historyDB string
	asJSON    bool
}

func newRootCmd(cfg config.Config) *cobra.Command {
	flags := &rootFlags{cfg: cfg}

	cmd := &cobra.Command{
		Use:           "cardgen",
		Short:         "Batch-generate redemption cards with a QR code and code label",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&flags.fontPath, "font", cfg.FontPath, "TTF/OTF font for the label (empty uses the bundled Go Regular)")
	cmd.PersistentFlags().StringVar(&flags.historyDB, "history-db", cfg.HistoryDB, "SQLite file for run history (empty disables history)")
	cmd.PersistentFlags().BoolVar(&flags.asJSON, "json", false, "print results as JSON")

	cmd.AddCommand(newGenerateCmd(flags))
	cmd.AddCommand(newPreviewCmd(flags))
	cmd.AddCommand(newVerifyCmd(flags))
	cmd.AddCommand(newHistoryCmd(flags))
	cmd.AddCommand(newServeCmd(flags))
	return cmd
}

// historyMode selects how a command reaches the run history database.
type historyMode int

const (
	historyOff historyMode = iota
	// historyLazy opens the database on first use. Open failures reach the
	// card service as history errors, which it logs without failing the run.
	historyLazy
	// historyRequired opens the database up front and fails the command when
	// it cannot be opened.
	historyRequired
)

// app holds the wired card pipeline for one command invocation.
type app struct {
	qr      *qrcode.Generator
	service *card.Service
	history *db.LazyRepository
}

// newApp wires the pipeline. History is used only when a database path is
// configured and mode is not historyOff.
func newApp(flags *rootFlags, mode historyMode) (*app, error) {
	qr := qrcode.NewGenerator(constant.RedemptionURLPrefix, constant.QRModuleSize)
	fonts := typeface.NewLoader(flags.fontPath, cache.NewNamespaceLRU[*opentype.Font](flags.cfg.CacheSize))

	a := &app{qr: qr}

	// A nil *LazyRepository must not reach the service as a non-nil interface.
	var runs card.RunRepository
	if mode != historyOff && flags.historyDB != "" {
		a.history = db.NewLazyRepository(flags.historyDB)
		if mode == historyRequired {
			if _, err := a.history.Open(); err != nil {
				appLogger.Error(constant.MsgFailedToInitDB, appLogger.LoggerInfo{
					ContextFunction: constant.CtxCLI,
					Error: &appLogger.CustomError{
						Code:    constant.ErrCodeAppDBInit,
						Message: err.Error(),
						Type:    constant.ErrTypeApp,
					},
					Data: map[string]interface{}{
						constant.DataDBPath: flags.historyDB,
					},
				})
				return nil, err
			}
		}
		runs = a.history
	}

	a.service = card.NewService(qr, fonts, storage.NewFileStore(), runs)
	return a, nil
}

func closeApp(a *app) {
	if a != nil && a.history != nil {
		_ = a.history.Close()
	}
}
