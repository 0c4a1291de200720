// fuelctl herramienta de operación: resolver identificadores, agotar y revertir stock,
// auditar lotes y generar datos de demostración.
//
// Uso: go run ./cmd/fuelctl <comando> [flags]
// Lee la misma configuración que el API (variables de entorno o .env).
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
