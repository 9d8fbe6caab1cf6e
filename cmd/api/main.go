package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/config"
	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/database"
	kopHttp "github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/http"
	loanHandler "github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/http/loan"
	shuHandler "github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/http/shu"
	txHandler "github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/http/transaction"
	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/loan"
	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/member"
	memberStore "github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/member/store"
	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/shu"
	shuStore "github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/shu/store"
	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/transaction"
	txStore "github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/transaction/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.DB.Migrate {
		if err := database.Migrate(context.Background(), db); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	shuOpts := []shu.Option{shu.WithPreviewSize(cfg.SHU.PreviewSize)}
	if cfg.SHU.PreviewSeed != 0 {
		shuOpts = append(shuOpts, shu.WithSeed(cfg.SHU.PreviewSeed))
	}

	var (
		transactionService = transaction.NewService(txStore.New(db))
		loanService        = loan.NewService(transactionService)
		memberService      = member.NewService(memberStore.New(db))
		shuService         = shu.NewService(shuStore.New(db), memberService, transactionService, shuOpts...)
	)

	var (
		transactionH = txHandler.NewHandler(transactionService)
		loanH        = loanHandler.NewHandler(loanService, transactionService)
		shuH         = shuHandler.NewHandler(shuService)
	)

	router := kopHttp.New(cfg.CORS.AllowedOrigins, transactionH, loanH, shuH)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	slog.Info("starting server", "app", cfg.App.Name, "port", server.Addr)

	if err := server.ListenAndServe(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
