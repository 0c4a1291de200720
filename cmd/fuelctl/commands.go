package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jhoicas/fuel-tracker/internal/application/dto"
	"github.com/jhoicas/fuel-tracker/internal/bootstrap"
	"github.com/jhoicas/fuel-tracker/internal/domain"
	"github.com/jhoicas/fuel-tracker/internal/domain/entity"
	"github.com/jhoicas/fuel-tracker/internal/infrastructure/seed"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newResolveCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <identificador>",
		Short: "Resuelve un identificador externo a su orden de carga",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, g, func(ctx context.Context, svc *bootstrap.Services) error {
				order, meta, err := svc.Orchestrator.Resolve(ctx, args[0])
				var unresolved *domain.UnresolvedError
				if errors.As(err, &unresolved) {
					_ = printJSON(cmd.OutOrStdout(), dto.NewUnresolvedResponse(unresolved))
					return err
				}
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), dto.NewResolveResponse(order, meta))
			})
		},
	}
}

func parseQuantity(raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	q, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("cantidad inválida %q: %w", raw, err)
	}
	return &q, nil
}

func newDepleteCmd(g *globalFlags) *cobra.Command {
	var quantity string
	cmd := &cobra.Command{
		Use:   "deplete <order-id>",
		Short: "Agota stock FIFO contra una orden",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := parseQuantity(quantity)
			if err != nil {
				return err
			}
			return withServices(cmd, g, func(ctx context.Context, svc *bootstrap.Services) error {
				plan, err := svc.Ledger.DepleteOrder(ctx, args[0], qty)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), plan)
			})
		},
	}
	cmd.Flags().StringVarP(&quantity, "quantity", "q", "", "litros a agotar (por defecto la cantidad de la orden)")
	return cmd
}

func newReverseCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reverse <order-id>",
		Short: "Revierte los agotamientos de una orden",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, g, func(ctx context.Context, svc *bootstrap.Services) error {
				summary, err := svc.Ledger.ReverseOrder(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), summary)
			})
		},
	}
}

func newTransitionCmd(g *globalFlags) *cobra.Command {
	var quantity string
	cmd := &cobra.Command{
		Use:   "transition <order-id> <estado>",
		Short: "Cambia el estado de una orden (LOADED agota, CANCELLED revierte)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := parseQuantity(quantity)
			if err != nil {
				return err
			}
			return withServices(cmd, g, func(ctx context.Context, svc *bootstrap.Services) error {
				res, err := svc.Transitions.Apply(ctx, args[0], dto.TransitionRequest{Status: args[1], Quantity: qty})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	cmd.Flags().StringVarP(&quantity, "quantity", "q", "", "litros cargados al pasar a LOADED")
	return cmd
}

type scopeFlags struct {
	product     string
	destination string
}

func (s *scopeFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.product, "product", "", "producto")
	cmd.Flags().StringVar(&s.destination, "destination", "", "destino (terminal)")
	_ = cmd.MarkFlagRequired("product")
	_ = cmd.MarkFlagRequired("destination")
}

func (s *scopeFlags) scope() entity.Scope {
	return entity.Scope{ProductID: s.product, DestinationID: s.destination}
}

func newAvailableCmd(g *globalFlags) *cobra.Command {
	var sf scopeFlags
	cmd := &cobra.Command{
		Use:   "available",
		Short: "Stock disponible en un alcance producto/destino",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd, g, func(ctx context.Context, svc *bootstrap.Services) error {
				total, err := svc.Ledger.Allocator().Available(ctx, sf.scope())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), dto.AvailableDTO{
					ProductID:     sf.product,
					DestinationID: sf.destination,
					Available:     total,
				})
			})
		},
	}
	sf.bind(cmd)
	return cmd
}

func newAuditCmd(g *globalFlags) *cobra.Command {
	var sf scopeFlags
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Compara el remanente de cada lote con el recomputado desde los agotamientos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd, g, func(ctx context.Context, svc *bootstrap.Services) error {
				rows, err := svc.Ledger.Audit(ctx, sf.scope())
				if err != nil {
					return err
				}
				if err := printJSON(cmd.OutOrStdout(), rows); err != nil {
					return err
				}
				for _, r := range rows {
					if !r.Consistent {
						return fmt.Errorf("lote %s inconsistente", r.BatchID)
					}
				}
				return nil
			})
		},
	}
	sf.bind(cmd)
	return cmd
}

func newSeedCmd(g *globalFlags) *cobra.Command {
	opts := seed.DefaultOptions()
	var (
		out  string
		load bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Genera datos de demostración como script SQL o los carga en el backend configurado",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds := seed.Generate(opts)
			if load {
				return withServices(cmd, g, func(ctx context.Context, svc *bootstrap.Services) error {
					if err := seed.Load(ctx, svc.Orders, svc.Batches, ds); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "cargados %d lotes y %d órdenes\n", len(ds.Batches), len(ds.Orders))
					return nil
				})
			}
			if out == "" || out == "-" {
				return seed.WriteSQL(cmd.OutOrStdout(), ds)
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("crear %s: %w", out, err)
			}
			defer f.Close()
			if err := seed.WriteSQL(f, ds); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "escrito %s (%d lotes, %d órdenes)\n", out, len(ds.Batches), len(ds.Orders))
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.Orders, "orders", opts.Orders, "cantidad de órdenes")
	cmd.Flags().IntVar(&opts.Batches, "batches", opts.Batches, "cantidad de lotes")
	cmd.Flags().StringVar(&opts.Prefix, "prefix", opts.Prefix, "prefijo de los números de orden")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "semilla (0 = aleatoria)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "archivo SQL de salida (por defecto stdout)")
	cmd.Flags().BoolVar(&load, "load", false, "carga directa en el backend en vez de generar SQL")
	return cmd
}
