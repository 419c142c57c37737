package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/shanehull/stockchat/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if cfg.Log.Level != "debug" {
			gin.SetMode(gin.ReleaseMode)
		}

		a, err := buildApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		srv := server.New(cfg.Server.Addr(), server.Deps{
			Pipeline:   a.pipeline,
			Stocks:     a.gateway,
			News:       a.iqx,
			History:    a.history,
			Symbols:    a.extractor,
			Aggregator: a.aggregator,
		}, log)

		return srv.Run(ctx)
	},
}
