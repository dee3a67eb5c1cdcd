// Command findash-report prints a user's dashboard to the terminal and can
// also write the PDF report.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"findash/internal/cli"
	"findash/internal/format"
	"findash/internal/log"
	"findash/internal/report"
	"findash/internal/services"
)

func main() {
	user := flag.String("user", "", "username to report on")
	pdfPath := flag.String("pdf", "", "also write the PDF report to this path")
	flag.Parse()

	if *user == "" {
		fmt.Fprintln(os.Stderr, "usage: findash-report -user NAME [-pdf out.pdf]")
		os.Exit(2)
	}

	cfg, logger := cli.LoadConfig(log.ComponentReport)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	res := cli.OpenStore(ctx, logger, cfg)
	defer res.Cleanup()

	ledgerSvc := services.NewLedgerService(res.Store, nil)
	d, err := services.NewDashboardService(ledgerSvc).Build(ctx, *user)
	if err != nil {
		logger.Error("Failed to build dashboard", "error", err, log.FieldUser, *user)
		os.Exit(1)
	}

	fmt.Println(report.RenderText(d, format.New(cfg.CurrencySymbol)))

	if *pdfPath == "" {
		return
	}
	pdf, err := report.BuildPDF(d, report.PDFOptions{FontPath: cfg.PDFFontPath})
	if err != nil {
		logger.Error("Failed to render PDF", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*pdfPath, pdf, 0o644); err != nil {
		logger.Error("Failed to write PDF", "error", err, "path", *pdfPath)
		os.Exit(1)
	}
	logger.Info("Wrote PDF report", "path", *pdfPath, "bytes", len(pdf))
}
