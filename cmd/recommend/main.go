// Command recommend prints crop recommendations for one soil reading using
// the local ranker, and optionally writes the advisory as PDF or XLSX.
//
// Usage:
//
//	go run ./cmd/recommend -npk 80:48:40 -ph 6.4
//	go run ./cmd/recommend -n 23 -p 132 -k 200 -ph 6.0 -top 3 -pdf advisory.pdf
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/couchcryptid/crop-advisory-service/internal/adapter/export"
	"github.com/couchcryptid/crop-advisory-service/internal/advisory"
	"github.com/couchcryptid/crop-advisory-service/internal/dataset"
	"github.com/couchcryptid/crop-advisory-service/internal/domain"
	"github.com/couchcryptid/crop-advisory-service/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
)

// optionalFloat is a flag that remembers whether it was set.
type optionalFloat struct {
	value *float64
}

func (f *optionalFloat) String() string {
	if f.value == nil {
		return ""
	}
	return fmt.Sprint(*f.value)
}

func (f *optionalFloat) Set(s string) error {
	var v float64
	if _, err := fmt.Sscan(s, &v); err != nil {
		return fmt.Errorf("not a number: %q", s)
	}
	f.value = &v
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var n, p, k, ph, oc optionalFloat
	flag.Var(&n, "n", "soil nitrogen (mg/kg)")
	flag.Var(&p, "p", "soil phosphorus (mg/kg)")
	flag.Var(&k, "k", "soil potassium (mg/kg)")
	npk := flag.String("npk", "", `packed nutrients "N:P:K", used when -n/-p/-k are absent`)
	flag.Var(&ph, "ph", "soil pH (0-14)")
	flag.Var(&oc, "oc", "organic carbon (%)")
	topN := flag.Int("top", domain.DefaultTopN, "number of crops to rank")
	dataPath := flag.String("data", "", "reference CSV (default: bundled dataset)")
	pdfOut := flag.String("pdf", "", "write the advisory card to this PDF path")
	xlsxOut := flag.String("xlsx", "", "write the advisory workbook to this XLSX path")
	asJSON := flag.Bool("json", false, "print the advisory as JSON instead of the text report")
	flag.Parse()

	table, err := loadTable(*dataPath)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	svc := advisory.NewService(domain.NewLocalRecommender(table), *topN, logger, observability.NewMetricsWithRegistry(prometheus.NewRegistry()))

	a, err := svc.Advise(context.Background(), domain.AdvisoryRequest{
		Soil: domain.SoilInput{
			Nitrogen:      n.value,
			Phosphorus:    p.value,
			Potassium:     k.value,
			NPK:           *npk,
			PH:            ph.value,
			OrganicCarbon: oc.value,
		},
		TopN: *topN,
	})
	if err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(a); err != nil {
			return fmt.Errorf("encode advisory: %w", err)
		}
	} else {
		fmt.Println(a.Report)
	}

	if *pdfOut != "" {
		if err := writeFile(*pdfOut, func(w io.Writer) error {
			return export.WritePDF(w, a, export.DefaultPDFOptions())
		}); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		log.Printf("wrote %s", *pdfOut)
	}
	if *xlsxOut != "" {
		if err := writeFile(*xlsxOut, func(w io.Writer) error {
			return export.WriteXLSX(w, a)
		}); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
		log.Printf("wrote %s", *xlsxOut)
	}
	return nil
}

func loadTable(path string) (*dataset.Table, error) {
	if path == "" {
		return dataset.Bundled()
	}
	return dataset.LoadFile(path)
}

func writeFile(path string, render func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return render(f)
}
