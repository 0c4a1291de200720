// Package seed genera datos de demostración (órdenes de carga y lotes) para el store en memoria,
// entornos de desarrollo y pruebas de carga.
package seed

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/jhoicas/fuel-tracker/internal/domain/entity"
	"github.com/jhoicas/fuel-tracker/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// Options tamaño del conjunto generado. Seed fija la semilla (0 = aleatoria).
type Options struct {
	Orders       int
	Batches      int
	Prefix       string
	Products     []string
	Destinations []string
	Seed         int64
}

// DefaultOptions conjunto pequeño con dos productos y tres terminales.
func DefaultOptions() Options {
	return Options{
		Orders:       40,
		Batches:      12,
		Prefix:       "ORD",
		Products:     []string{"DIESEL", "GASOLINA"},
		Destinations: []string{"TERM-NORTE", "TERM-SUR", "TERM-CENTRO"},
	}
}

// Dataset órdenes y lotes generados.
type Dataset struct {
	Orders  []*entity.LoadingOrder
	Batches []*entity.StockBatch
}

var orderStatuses = []string{
	entity.OrderStatusPending,
	entity.OrderStatusApproved,
	entity.OrderStatusApproved,
	entity.OrderStatusLoading,
	entity.OrderStatusLoading,
	entity.OrderStatusDelivered,
	entity.OrderStatusCancelled,
}

// Generate arma un dataset determinista para una semilla dada. Los números de orden son únicos.
// No genera agotamientos: todos los lotes empiezan llenos.
func Generate(opts Options) Dataset {
	faker := gofakeit.New(opts.Seed)
	if opts.Prefix == "" {
		opts.Prefix = "ORD"
	}
	base := time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC)

	var ds Dataset
	for i := 0; i < opts.Batches; i++ {
		total := decimal.NewFromInt(int64(faker.Number(4, 40) * 500))
		ds.Batches = append(ds.Batches, &entity.StockBatch{
			ID:                fmt.Sprintf("LOTE-%04d", i+1),
			ProductID:         faker.RandomString(opts.Products),
			DestinationID:     faker.RandomString(opts.Destinations),
			TotalQuantity:     total,
			QuantityRemaining: total,
			ReceivedAt:        base.Add(time.Duration(faker.Number(0, 90*24)) * time.Hour),
		})
	}
	sort.Slice(ds.Batches, func(i, j int) bool { return ds.Batches[i].ReceivedAt.Before(ds.Batches[j].ReceivedAt) })

	used := make(map[string]bool, opts.Orders)
	for len(ds.Orders) < opts.Orders {
		number := opts.Prefix + faker.Numerify("#####")
		if used[number] {
			continue
		}
		used[number] = true
		created := base.Add(time.Duration(faker.Number(0, 120*24)) * time.Hour)
		ds.Orders = append(ds.Orders, &entity.LoadingOrder{
			ID:                faker.UUID(),
			OrderNumber:       number,
			Status:            faker.RandomString(orderStatuses),
			ProductID:         faker.RandomString(opts.Products),
			DestinationID:     faker.RandomString(opts.Destinations),
			RequestedQuantity: decimal.NewFromInt(int64(faker.Number(1, 16) * 500)),
			CreatedAt:         created,
			UpdatedAt:         created,
		})
	}
	return ds
}

// Load persiste el dataset con los repositorios dados.
func Load(ctx context.Context, orders repository.LoadingOrderRepository, batches repository.StockBatchRepository, ds Dataset) error {
	for _, b := range ds.Batches {
		if err := batches.Create(ctx, b); err != nil {
			return fmt.Errorf("lote %s: %w", b.ID, err)
		}
	}
	for _, o := range ds.Orders {
		if err := orders.Create(ctx, o); err != nil {
			return fmt.Errorf("orden %s: %w", o.OrderNumber, err)
		}
	}
	return nil
}
