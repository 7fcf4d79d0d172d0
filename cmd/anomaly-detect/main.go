// Command anomaly-detect compares a baseline density CSV against a current
// one and flags grid cells whose vessel traffic changed anomalously.
//
// Usage:
//
//	anomaly-detect [flags] baseline_csv current_csv output_csv
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/banshee-data/density.report/internal/anomaly"
	"github.com/banshee-data/density.report/internal/config"
	"github.com/banshee-data/density.report/internal/density"
	"github.com/banshee-data/density.report/internal/store"
	"github.com/banshee-data/density.report/internal/version"
)

var (
	ratioThresh       = flag.Float64("ratio-thresh", 5.0, "Minimum ratio current/baseline to flag anomaly")
	minCurrentDensity = flag.Float64("min-current-density", 2.0, "Minimum current density to consider (hours for time_at_cells)")
	eps               = flag.Float64("eps", 1e-3, "Small epsilon to avoid divide-by-zero when baseline is ~0")
	configFile        = flag.String("config", "", "Optional JSON tuning config (flags set on the command line win)")
	dbFile            = flag.String("db", "", "Optional sqlite database to record the run in")
	showVersion       = flag.Bool("version", false, "Print version and exit")
)

const topN = 10

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Usage: %s [flags] baseline_csv current_csv output_csv\n\nCell-level anomaly detection for AIS density maps.\n\nFlags:\n",
			os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Println("anomaly-detect", version.String())
		return
	}

	if flag.NArg() != 3 {
		flag.Usage()
		os.Exit(2)
	}

	params, err := resolveParams(*configFile, setFlags())
	if err != nil {
		log.Fatalf("failed to resolve parameters: %v", err)
	}

	if err := run(flag.Arg(0), flag.Arg(1), flag.Arg(2), *dbFile, params); err != nil {
		log.Fatalf("anomaly detection failed: %v", err)
	}
}

// setFlags reports which flags were explicitly set on the command line.
func setFlags() map[string]bool {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// resolveParams merges defaults, the optional tuning config, and explicit
// command line flags, in increasing order of precedence.
func resolveParams(configPath string, set map[string]bool) (anomaly.Params, error) {
	params := anomaly.DefaultParams()

	if configPath != "" {
		cfg, err := config.LoadTuningConfig(configPath)
		if err != nil {
			return params, err
		}
		params = cfg.ApplyTo(params)
	}

	if set["ratio-thresh"] {
		params.RatioThresh = *ratioThresh
	}
	if set["min-current-density"] {
		params.MinCurrentDensity = *minCurrentDensity
	}
	if set["eps"] {
		params.Eps = *eps
	}

	return params, nil
}

func run(baselinePath, currentPath, outputPath, dbPath string, params anomaly.Params) error {
	baseline, err := density.ReadTable(baselinePath)
	if err != nil {
		return err
	}
	current, err := density.ReadTable(currentPath)
	if err != nil {
		return err
	}

	cmps := anomaly.Compare(baseline, current, params)
	if err := anomaly.WriteCSVFile(outputPath, cmps); err != nil {
		return err
	}

	fmt.Println("Saved:", outputPath)
	fmt.Println("Total anomalies:", anomaly.CountAnomalies(cmps))
	fmt.Println("Top 10 by score:")
	fmt.Print(anomaly.FormatTable(anomaly.TopByScore(cmps, topN)))

	if dbPath != "" {
		if err := recordRun(dbPath, baselinePath, currentPath, outputPath, params, cmps); err != nil {
			return err
		}
	}

	return nil
}

func recordRun(dbPath, baselinePath, currentPath, outputPath string, params anomaly.Params, cmps []anomaly.Comparison) error {
	db, err := store.NewDB(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	runRec := store.NewRun(baselinePath, currentPath, outputPath, params)
	runRec.TotalCells = len(cmps)
	runRec.AnomalyCount = anomaly.CountAnomalies(cmps)

	if err := db.RecordRun(runRec, anomaly.Anomalies(cmps)); err != nil {
		return err
	}
	log.Printf("Recorded run %s in %s", runRec.ID, dbPath)
	return nil
}
