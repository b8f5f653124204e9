// Command recordstore is a small demo that wires engine configuration to a
// record manager: it creates a table, inserts a few rows, and scans them
// back with a filter.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/kavarin/recordstore/internal/config"
	"github.com/kavarin/recordstore/internal/expr"
	"github.com/kavarin/recordstore/internal/record"
	"github.com/kavarin/recordstore/internal/recordmgr"
)

func main() {
	configPath := flag.String("config", "recordstore.yaml", "path to engine config")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("recordstore: fatal", "err", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	rm, err := recordmgr.InitWithPool(cfg.Storage.File, cfg.BufferPool.NumFrames, cfg.BufferPool.Strategy)
	if err != nil {
		return fmt.Errorf("init record manager: %w", err)
	}
	defer rm.Shutdown()

	schema := &record.Schema{
		Attrs: []record.Attribute{
			{Name: "id", Type: record.TypeInt},
			{Name: "name", Type: record.TypeString, TypeLength: 16},
		},
		KeyAttrs: []int32{0},
	}

	if rm.GetNumTables() == 0 {
		if err := rm.CreateTable("people", schema); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	tbl, err := rm.OpenTable("people")
	if err != nil {
		return fmt.Errorf("open table: %w", err)
	}
	defer tbl.Close()

	rows := []struct {
		id   int32
		name string
	}{
		{1, "ada"},
		{2, "grace"},
		{3, "alan"},
	}
	for _, r := range rows {
		tuple, err := record.NewTuple(schema)
		if err != nil {
			return err
		}
		if err := record.SetAttr(tuple, schema, 0, record.IntValue(r.id)); err != nil {
			return err
		}
		if err := record.SetAttr(tuple, schema, 1, record.StringValue(r.name)); err != nil {
			return err
		}
		if _, err := tbl.InsertRecord(tuple); err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
	}

	cond := expr.Smaller(expr.AttrRef(0), expr.Const(record.IntValue(3)))
	sc := tbl.StartScan(cond)
	defer sc.Close()

	for {
		rec, err := sc.Next()
		if err != nil {
			break
		}
		id, _ := record.GetAttr(rec.Data, schema, 0)
		name, _ := record.GetAttr(rec.Data, schema, 1)
		fmt.Printf("id=%s name=%s\n", id, name)
	}
	return nil
}
