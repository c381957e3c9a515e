// Command run-multi runs every scenario in a .scen file through the
// requested algorithm and writes one CSV export row per scenario.
package main

import (
	"flag"
	"fmt"
	"os"

	"prastar/pkg/mapio"
	"prastar/pkg/runner"
)

func main() {
	scenarioPath := flag.String("scenario_path", "", "Path to the .scen scenario file")
	algorithmFlag := flag.String("algorithm", "astar", "Search algorithm: astar or pra")
	k := flag.Int("k", 0, "PRA* truncation window (0 = unbounded; ignored for astar)")
	exportPath := flag.String("export_path", "", "CSV file to write results to")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: run-multi --scenario_path=<scen> --export_path=<csv> --algorithm={astar|pra} --k=<k>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *scenarioPath == "" || *exportPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	algo, err := runner.ParseAlgorithm(*algorithmFlag)
	if err != nil {
		runner.FailWithUnknownAlgorithm()
	}

	scenarios, err := mapio.LoadScenarios(*scenarioPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Create(*exportPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	cw, err := runner.NewCSVWriter(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	graphsByMap := make(map[string]*runner.Graphs)
	for _, sc := range scenarios {
		mapPath := mapio.ScenarioToMapPath(sc.MapPath)
		g, ok := graphsByMap[mapPath]
		if !ok {
			g, err = runner.LoadOrBuildGraphs(mapPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			graphsByMap[mapPath] = g
		}

		out, err := runner.RunScenario(g, algo, *k, sc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := cw.WriteRow(sc, out); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if err := cw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
