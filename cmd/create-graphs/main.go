// Command create-graphs builds and persists the flat and hierarchical
// graph cache files for a map, always rebuilding from the map file and
// overwriting whatever cache already exists (the "force_create" half of
// the original engine's graph_generator.cpp).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"prastar/pkg/mapio"
	"prastar/pkg/runner"
)

func main() {
	mapPath := flag.String("map_path", "", "Path to the ASCII occupancy-grid map file")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: create-graphs --map_path=<map>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *mapPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	start := time.Now()
	log.Printf("Building graphs for %s...", *mapPath)
	g, err := runner.CreateAndSaveGraphs(*mapPath)
	if err != nil {
		log.Fatalf("Failed to build graphs: %v", err)
	}
	log.Printf("Flat graph: %d nodes, %d edges", g.Flat.NodeCount(), g.Flat.EdgeCount())
	log.Printf("Hierarchical graph: %d layers", g.Hierarchical.NumLayers())
	log.Printf("Wrote %s and %s in %s",
		mapio.MapToFlatGraphPath(*mapPath), mapio.MapToHierarchicalGraphPath(*mapPath),
		time.Since(start).Round(time.Millisecond))
}
