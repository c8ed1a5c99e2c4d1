package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alpvest/alpvest/internal/config"
	"github.com/alpvest/alpvest/internal/engine"
	"github.com/alpvest/alpvest/internal/montecarlo"
	"github.com/alpvest/alpvest/internal/report"
	"github.com/alpvest/alpvest/internal/sensitivity"
	"github.com/alpvest/alpvest/pkg/constants"
	"github.com/alpvest/alpvest/pkg/output"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		// Test if we can create/write to the file
		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

func main() {
	configLocation := flag.String("config", constants.DefaultAssumptionsFile, "path to assumptions file")
	mode := flag.String("mode", "analysis", "run mode: analysis, sensitivity, montecarlo")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	outputFile := flag.String("output", "", "write the JSON export to this path instead of stdout")
	chartFile := flag.String("chart", "", "write a PNG chart of the run to this path")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	years := flag.Int("years", 0, "projection horizon override in years")
	steps := flag.Int("steps", 11, "sweep steps per parameter (sensitivity mode)")
	simulations := flag.Int("simulations", constants.DefaultSimulations, "iteration count (montecarlo mode)")
	seed := flag.Int64("seed", 0, "random seed (montecarlo mode; 0 derives one from the clock)")
	flag.Parse()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load assumptions at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}

	if err := config.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	cfg, err := conf.BuildModel()
	if err != nil {
		logger.Fatal("failed to build model from assumptions",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	assumptions := conf.Projection.Assumptions()
	if *years > 0 {
		assumptions.Years = *years
	}

	switch *mode {
	case "analysis":
		annual := engine.Analyze(cfg)
		projection := engine.Project(cfg, assumptions)

		var returns engine.ReturnMetrics
		if len(projection) > 0 {
			last := projection[len(projection)-1]
			returns = engine.Returns(projection, engine.ReturnInput{
				InitialEquityPerOwner: cfg.Financing.EquityPerOwner(),
				FinalPropertyValue:    last.PropertyValue,
				FinalLoanBalance:      last.RemainingLoanBalance,
				NumOwners:             cfg.Financing.NumOwners,
				PurchasePrice:         cfg.Financing.PurchasePrice,
				SellingCostsRate:      conf.Projection.SellingCostsRate,
				DiscountRate:          conf.Projection.DiscountRate,
			})
		}

		switch outputFormat {
		case constants.OutputFormatPretty:
			output.PrettyFormat(annual, projection, returns)
		case constants.OutputFormatCSV:
			output.CsvFormat(projection)
		case constants.OutputFormatJSON:
			export := report.NewAnalysisExport(cfg, annual, projection, returns)
			writeExport(logger, *outputFile, export)
		}

		if *chartFile != "" {
			png, err := report.RenderProjectionChart(projection)
			if err != nil {
				logger.Fatal("failed to render projection chart",
					zap.String("op", "main"),
					zap.Error(err),
				)
			}
			if err := os.WriteFile(*chartFile, png, 0644); err != nil {
				logger.Fatal("failed to write chart file",
					zap.String("op", "main"),
					zap.String("path", *chartFile),
					zap.Error(err),
				)
			}
		}

	case "sensitivity":
		runner := sensitivity.NewRunner(logger, cfg, assumptions,
			conf.Projection.DiscountRate, conf.Projection.SellingCostsRate)
		export := report.NewSensitivityExport(runner.Sweep(*steps), runner.BreakEven())
		writeExport(logger, *outputFile, export)

	case "montecarlo":
		runSeed := *seed
		if runSeed == 0 {
			runSeed = time.Now().UnixNano()
		}
		result, err := montecarlo.Run(logger, cfg, montecarlo.DefaultDistributions(cfg), montecarlo.Options{
			Simulations:      *simulations,
			Seed:             runSeed,
			Assumptions:      assumptions,
			SellingCostsRate: conf.Projection.SellingCostsRate,
		})
		if err != nil {
			logger.Fatal("monte carlo run failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}

		export := report.NewMonteCarloExport(result)
		writeExport(logger, *outputFile, export)

		if *chartFile != "" {
			npvs := make([]float64, len(result.Outcomes))
			for i, outcome := range result.Outcomes {
				npvs[i] = outcome.NPV
			}
			png, err := report.RenderNPVHistogram(npvs, 40)
			if err != nil {
				logger.Fatal("failed to render NPV histogram",
					zap.String("op", "main"),
					zap.Error(err),
				)
			}
			if err := os.WriteFile(*chartFile, png, 0644); err != nil {
				logger.Fatal("failed to write chart file",
					zap.String("op", "main"),
					zap.String("path", *chartFile),
					zap.Error(err),
				)
			}
		}

	default:
		logger.Fatal("invalid mode, expected analysis, sensitivity, or montecarlo",
			zap.String("op", "main"),
			zap.String("mode", *mode),
		)
	}
}

// writeExport sends a payload to the output file when one is configured,
// otherwise to stdout.
func writeExport(logger *zap.Logger, path string, payload interface{}) {
	if path == "" {
		if err := output.JSONFormat(payload); err != nil {
			logger.Fatal("failed to encode export",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		return
	}
	if err := report.WriteJSON(path, payload); err != nil {
		logger.Fatal("failed to write export",
			zap.String("op", "main"),
			zap.String("path", path),
			zap.Error(err),
		)
	}
}
