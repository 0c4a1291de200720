package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jhoicas/fuel-tracker/internal/bootstrap"
	"github.com/jhoicas/fuel-tracker/pkg/config"
	"github.com/jhoicas/fuel-tracker/pkg/logger"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	backend string
	demo    bool
	verbose bool
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:          "fuelctl",
		Short:        "Operación de órdenes de carga y stock de combustible",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&g.backend, "backend", "", "sobrescribe DB_BACKEND (postgres, memory)")
	root.PersistentFlags().BoolVar(&g.demo, "demo", false, "con backend memory, carga datos de demostración")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "logs de depuración")

	root.AddCommand(
		newResolveCmd(g),
		newDepleteCmd(g),
		newReverseCmd(g),
		newTransitionCmd(g),
		newAvailableCmd(g),
		newAuditCmd(g),
		newSeedCmd(g),
	)
	return root
}

// withServices carga la configuración, arma los servicios y ejecuta fn.
func withServices(cmd *cobra.Command, g *globalFlags, fn func(ctx context.Context, svc *bootstrap.Services) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}
	if g.backend != "" {
		cfg.DB.Backend = g.backend
	}
	level := "warn"
	if g.verbose {
		level = "debug"
	}
	log := logger.New(logger.Config{Env: "development", Level: level})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, err := bootstrap.Build(ctx, cfg, log, g.demo)
	if err != nil {
		return err
	}
	defer svc.Close()
	return fn(ctx, svc)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
