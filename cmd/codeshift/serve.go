package main

import (
	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/codeshift/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr, static string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Example: `  codeshift serve --addr :8080
  CODESHIFT_MODE=always-model codeshift serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			if static != "" {
				a.cfg.Server.StaticDir = static
			}

			ctx := cmd.Context()
			rt, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer rt.close()

			srv := server.New(rt.engine,
				server.WithModelLister(rt.models),
				server.WithStore(rt.store),
				server.WithLogger(a.logger),
				server.WithSessionTTL(a.cfg.Server.SessionTTL),
				server.WithStaticDir(a.cfg.Server.StaticDir),
			)
			return srv.Run(ctx, a.cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&static, "static", "", "directory with a browser front-end to serve")
	return cmd
}
