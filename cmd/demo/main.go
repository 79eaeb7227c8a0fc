// Command demo replays the scheduling desk, library catalog and task list
// sessions against fresh in-memory stores and prints the results.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/zhouzirui/recordkeeper/backend/internal/demo"
	"github.com/zhouzirui/recordkeeper/backend/internal/handler"
	"github.com/zhouzirui/recordkeeper/backend/internal/logger"
	"github.com/zhouzirui/recordkeeper/backend/internal/report"
)

func main() {
	only := flag.String("only", "", "run a single session: appointments, library or tasks")
	verbose := flag.Bool("v", false, "log store mutations to stderr")
	flag.Parse()

	level := "warn"
	if *verbose {
		level = "debug"
	}
	lg, err := logger.NewLogger(logger.Config{Level: level, Development: true})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx := context.Background()
	svcs := handler.NewServices(lg)
	p := report.New(os.Stdout, nil)

	switch *only {
	case "":
		demo.Run(ctx, p, svcs)
	case "appointments":
		demo.Appointments(ctx, p, svcs)
	case "library":
		demo.Library(ctx, p, svcs)
	case "tasks":
		demo.Tasks(ctx, p, svcs)
	default:
		fmt.Fprintf(os.Stderr, "unknown session %q\n", *only)
		flag.Usage()
		os.Exit(2)
	}
}
