package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"bloodcell/internal/api/rest"
	"bloodcell/internal/api/telegram"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve POST /predict and, with TELEGRAM_TOKEN set, the Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			rt, err := newRuntime(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, rt)
		},
	}
	cmd.Flags().String("addr", "", "HTTP listen address (default :8080)")
	return cmd
}

func serve(ctx context.Context, rt *appRuntime) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	handler := rest.NewHandler(rt.app.AnalysisService, rt.cfg.MaxUploadBytes(), rt.log)
	server := rest.NewServer(rt.cfg.Addr, handler, rt.log)

	errCh := make(chan error, 2)
	running := 1
	go func() { errCh <- server.Run(ctx) }()

	if rt.cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(rt.cfg.TelegramToken, rt.app)
		if err != nil {
			rt.log.WithError(err).Error("telegram bot disabled")
		} else {
			running++
			go func() { errCh <- bot.Run(ctx) }()
		}
	}

	var firstErr error
	for i := 0; i < running; i++ {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
		}
		// Остановка одного транспорта останавливает остальные.
		cancel()
	}
	return firstErr
}
