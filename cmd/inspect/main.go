package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go-id-inspector/internal/analyzer"
	"go-id-inspector/internal/config"
	"go-id-inspector/internal/detector"
	"go-id-inspector/internal/factory"
	"go-id-inspector/internal/logger"
	"go-id-inspector/internal/strategy"
	"go-id-inspector/pkg/models"
	"go-id-inspector/pkg/validation"

	"github.com/fatih/color"
)

var (
	// Color printers
	infoColor    = color.New(color.FgBlue).SprintFunc()
	successColor = color.New(color.FgGreen).SprintFunc()
	warningColor = color.New(color.FgYellow).SprintFunc()
	errorColor   = color.New(color.FgRed).SprintFunc()
	alertColor   = color.New(color.FgRed, color.Bold).SprintFunc()
)

func printInfo(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", infoColor("[*]"), fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", successColor("[+]"), fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", warningColor("[!]"), fmt.Sprintf(format, args...))
}

func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s %s\n", errorColor("[-]"), fmt.Sprintf(format, args...))
}

func printAlert(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", alertColor("[!!!]"), fmt.Sprintf(format, args...))
}

func main() {
	var (
		jsonOut   = flag.Bool("json", false, "Print the full detection report as JSON")
		modelPath = flag.String("model", "", "Path to the classifier artifact (overrides MODEL_PATH)")
		expected  = flag.String("expected", "", "Text expected on the document, scored against OCR output")
		timeout   = flag.Duration("timeout", 0, "Per document analysis timeout (overrides ANALYSIS_TIMEOUT)")
	)
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Println("Usage:")
		fmt.Println("  inspect [flags] <image> [image...]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		printError("Failed to load config: %v", err)
		os.Exit(1)
	}
	if *modelPath != "" {
		cfg.ModelPath = *modelPath
	}
	if *timeout > 0 {
		cfg.AnalysisTimeout = *timeout
	}
	// Keep structured logs out of the way of the report output
	logger.SetLevel("error")

	components := factory.NewComponentFactory(cfg)
	pool := analyzer.NewWorkerPool(cfg.AnalyzerWorkers)
	pool.Start()
	defer pool.Close()

	engine := components.EngineFactory.CreateEngine(pool, factory.NewModelProvider(cfg))

	fetcher, err := components.StorageFactory.CreateStorage(factory.LocalStorage)
	if err != nil {
		printError("Failed to create file source: %v", err)
		os.Exit(1)
	}
	source := strategy.NewLocalSourceStrategy(validation.NewUploadValidator(cfg.MaxRequestBodySize), fetcher)

	tampered := 0
	for _, path := range flag.Args() {
		report, err := inspect(engine, source, path, *expected, cfg.AnalysisTimeout)
		if err != nil {
			printError("%s: %v", path, err)
			tampered++
			continue
		}
		if !report.IsAuthentic {
			tampered++
		}

		if *jsonOut {
			out, _ := json.MarshalIndent(models.NewDetectionResponse("", filepath.Base(path), time.Now(), report), "", "  ")
			fmt.Println(string(out))
			continue
		}
		printReport(path, report)
	}

	if tampered > 0 {
		os.Exit(2)
	}
}

func inspect(engine detector.Detector, source strategy.SourceStrategy, path, expected string, timeout time.Duration) (*models.DetectionReport, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	img, err := source.Resolve(ctx, path)
	if err != nil {
		return nil, err
	}
	return engine.Detect(ctx, detector.Input{
		FileName:     img.Name,
		Data:         img.Data,
		ExpectedText: expected,
	}), nil
}

func printReport(path string, report *models.DetectionReport) {
	printInfo("Analyzing %s", path)
	if report.Error != "" {
		printError("Detection failed: %s", report.Error)
		return
	}

	if report.IsAuthentic {
		printSuccess("%s (confidence %.2f)", report.Status(), report.Confidence)
	} else {
		printAlert("%s (confidence %.2f)", report.Status(), report.Confidence)
	}
	if ml, ok := report.Checks[models.CheckMLClassification].(models.MLClassification); ok {
		printInfo("%s", classificationLine(ml))
	}
	for _, reason := range report.Reasons {
		printWarning("%s", reason)
	}
	for name, check := range report.Checks {
		if msg := check.Degradation(); msg != "" {
			printWarning("%s degraded: %s", name, msg)
		}
	}
}

// classificationLine describes the classifier outcome; the recorded
// confidence is already a percentage
func classificationLine(ml models.MLClassification) string {
	return fmt.Sprintf("Classified as %s (%.2f%%)", ml.Label, ml.Confidence)
}
