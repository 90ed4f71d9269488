package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"DocSim/internal/config"
	"DocSim/internal/coordinator"
	"DocSim/internal/logger"
)

func main() {
	defaults := config.DefaultOptions()
	logLevel := flag.String("log-level", defaults.LogLevel, "Log level: DEBUG, INFO, WARN or ERROR")
	queueCap := flag.Int("queue-cap", defaults.QueueCapacity, "Task queue capacity, 0 for unbounded")
	historyDir := flag.String("history", "", "Directory of the run history database (disabled when empty)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <workerCount> <inputFile> <outputFile>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 3 {
		flag.Usage()
		os.Exit(2)
	}

	workers, err := strconv.Atoi(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid worker count %q: %v\n", flag.Arg(0), err)
		os.Exit(2)
	}

	opts := config.Options{
		Workers:       workers,
		QueueCapacity: *queueCap,
		LogLevel:      *logLevel,
		HistoryDir:    *historyDir,
	}
	os.Exit(run(opts, flag.Arg(1), flag.Arg(2)))
}

func run(opts config.Options, inputPath, outputPath string) int {
	lg := logger.New(opts.LogLevel)

	driver, err := coordinator.NewDriver(opts, lg)
	if err != nil {
		lg.Error("Failed to create driver: %v", err)
		return 1
	}

	if _, err := driver.RunFiles(inputPath, outputPath); err != nil {
		if errors.Is(err, config.ErrReferenceNotFound) {
			fmt.Println("There's an error in the input file.\n" +
				"No document selected (or bad name) for checking similarity with the others.")
			return 1
		}
		lg.Error("Run failed: %v", err)
		return 1
	}
	return 0
}
