// Command run-single runs one scenario from a .scen file through the
// requested algorithm and writes a CSV export file holding the header and
// its result row, replacing any file already at that path.
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
	scenarioNumber := flag.Int("scenario_number", 0, "Index of the scenario to run within the file")
	algorithmFlag := flag.String("algorithm", "astar", "Search algorithm: astar or pra")
	k := flag.Int("k", 0, "PRA* truncation window (0 = unbounded; ignored for astar)")
	exportPath := flag.String("export_path", "", "CSV file to write the result to")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: run-single --scenario_path=<scen> --scenario_number=<n> --export_path=<csv> --algorithm={astar|pra} --k=<k>")
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
	if *scenarioNumber < 0 || *scenarioNumber >= len(scenarios) {
		fmt.Fprintf(os.Stderr, "Error: scenario_number %d out of range [0, %d)\n", *scenarioNumber, len(scenarios))
		os.Exit(1)
	}
	sc := scenarios[*scenarioNumber]

	mapPath := mapio.ScenarioToMapPath(sc.MapPath)
	g, err := runner.LoadOrBuildGraphs(mapPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	out, err := runner.RunScenario(g, algo, *k, sc)
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
	if err := cw.WriteRow(sc, out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
