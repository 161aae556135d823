// memrisdemo demonstrates insert, primary-key lookup, predicate scan, and
// tombstone against a single in-memory entity table.
package main

import (
	"fmt"
	"log"

	"github.com/Thejuampi/memris-core/cond"
	"github.com/Thejuampi/memris-core/memriscore"
	"github.com/Thejuampi/memris-core/query"
	"github.com/Thejuampi/memris-core/schema"
	"github.com/Thejuampi/memris-core/table"
	"github.com/Thejuampi/memris-core/typecode"
)

func main() {
	db := memriscore.NewDB()

	meta := schema.TableMetadata{
		EntityName: "widget",
		Fields: []schema.Field{
			{Name: "id", Type: typecode.Long, IsID: true, PrimitiveNonNull: true},
			{Name: "name", Type: typecode.String},
			{Name: "stock", Type: typecode.Int},
		},
	}
	cfg := table.DefaultConfig()
	cfg.PageSize = 256
	cfg.MaxPages = 16

	widgets, err := db.CreateTable(meta, cfg)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("--- insert ---")
	seed := []struct {
		id    int64
		name  string
		stock int32
	}{
		{1, "bolt", 120},
		{2, "nut", 45},
		{3, "washer", 0},
		{4, "screw", 300},
	}
	for _, w := range seed {
		r, err := widgets.Insert([]table.Value{table.LongValue(w.id), table.StringValue(w.name), table.IntValue(w.stock)})
		if err != nil {
			log.Fatalf("insert %s: %v", w.name, err)
		}
		fmt.Printf("  inserted %s as row %d (generation %d)\n", w.name, r.Index(), r.Generation())
	}

	fmt.Println("--- lookup by id ---")
	r, ok, err := widgets.LookupByID(3)
	if err != nil {
		log.Fatal(err)
	}
	if ok {
		name, _ := widgets.Read(1, r)
		fmt.Printf("  id=3 -> %s\n", name.Str)
	}

	fmt.Println("--- query: stock > 50 ---")
	q := query.CompiledQuery{Conditions: []query.CompiledCondition{{Column: 2, Op: cond.GT}}}
	rows, err := widgets.Query(q, []any{int32(50)})
	if err != nil {
		log.Fatal(err)
	}
	for _, row := range rows {
		name, _ := widgets.Read(1, row)
		fmt.Printf("  %s\n", name.Str)
	}

	fmt.Println("--- tombstone washer, then re-lookup ---")
	if _, err := widgets.Tombstone(r); err != nil {
		log.Fatal(err)
	}
	if _, ok, err := widgets.LookupByID(3); err != nil {
		log.Fatal(err)
	} else if !ok {
		fmt.Println("  id=3 no longer resolves")
	}
}
