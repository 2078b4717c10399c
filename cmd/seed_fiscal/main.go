// seed_fiscal carga el export de clasificaciones NCM/UF del ERP (ICMS-ST) en el espejo local.
//
// Uso:
//
//	go run ./cmd/seed_fiscal -in ncm_st.csv               # escribe migrations/002_seed_ncm_st.sql
//	go run ./cmd/seed_fiscal -in ncm_st.csv -apply        # upsert directo en la base (una transacción)
//
// El export del ERP viene en ISO-8859-1; usar -utf8 si ya fue convertido.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jhoicas/Cotizador-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Cotizador-api/pkg/config"
	"github.com/jhoicas/Cotizador-api/pkg/logger"
)

func main() {
	in := flag.String("in", "ncm_st.csv", "export NCM/UF del ERP")
	out := flag.String("out", "", "script SQL de salida (por defecto migrations/002_seed_ncm_st.sql)")
	apply := flag.Bool("apply", false, "aplicar directo en la base configurada")
	utf8 := flag.Bool("utf8", false, "el export ya está en UTF-8")
	flag.Parse()

	f, err := os.Open(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir export: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	rows, err := parseNCMExport(f, !*utf8)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer export: %v\n", err)
		os.Exit(1)
	}

	if !*apply {
		outPath := *out
		if outPath == "" {
			outPath = filepath.Join(findModuleRoot(), "internal", "infrastructure", "postgres", "migrations", "002_seed_ncm_st.sql")
		}
		w, err := os.Create(outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
			os.Exit(1)
		}
		defer w.Close()
		if err := writeSQL(w, rows); err != nil {
			fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Generado %s: %d clasificaciones\n", outPath, len(rows))
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	err = postgres.NewTxRunner(pool).Run(ctx, func(q postgres.Querier) error {
		repo := postgres.NewFiscalRuleRepository(q)
		for i := range rows {
			if err := repo.SaveNCMClassification(ctx, &rows[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal().Err(err).Msg("carga de clasificaciones NCM")
	}
	log.Info().Int("rows", len(rows)).Str("file", *in).Msg("clasificaciones NCM cargadas")
}

// findModuleRoot sube desde el directorio actual hasta encontrar go.mod.
func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "."
		}
		dir = parent
	}
}
