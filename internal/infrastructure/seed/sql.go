package seed

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

// WriteSQL escribe el dataset como script SQL idempotente (ON CONFLICT DO NOTHING)
// compatible con el esquema de postgres.
func WriteSQL(w io.Writer, ds Dataset) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "-- Datos de demostración: lotes de stock y órdenes de carga")
	fmt.Fprintln(bw, "BEGIN;")
	fmt.Fprintln(bw)
	for _, b := range ds.Batches {
		fmt.Fprintf(bw,
			"INSERT INTO stock_batches (id, product_id, destination_id, total_quantity, quantity_remaining, received_at) VALUES (%s, %s, %s, %s, %s, %s) ON CONFLICT (id) DO NOTHING;\n",
			quote(b.ID), quote(b.ProductID), quote(b.DestinationID),
			b.TotalQuantity.String(), b.QuantityRemaining.String(), quote(b.ReceivedAt.UTC().Format(time.RFC3339)))
	}
	fmt.Fprintln(bw)
	for _, o := range ds.Orders {
		fmt.Fprintf(bw,
			"INSERT INTO loading_orders (id, order_number, status, product_id, destination_id, requested_quantity, created_at, updated_at) VALUES (%s, %s, %s, %s, %s, %s, %s, %s) ON CONFLICT (id) DO NOTHING;\n",
			quote(o.ID), quote(o.OrderNumber), quote(o.Status), quote(o.ProductID), quote(o.DestinationID),
			o.RequestedQuantity.String(), quote(o.CreatedAt.UTC().Format(time.RFC3339)), quote(o.UpdatedAt.UTC().Format(time.RFC3339)))
	}
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "COMMIT;")
	return bw.Flush()
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
