package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"shiftcal/internal/calendar"
	"shiftcal/internal/capture"
	"shiftcal/internal/ics"
	appLog "shiftcal/internal/log"
	"shiftcal/internal/pipeline"
	"shiftcal/internal/render"
	"shiftcal/internal/store"
)

var (
	renderFile    string
	renderURL     string
	renderView    string
	renderDate    string
	renderYear    int
	renderMonth   int
	renderOut     string
	renderPNG     bool
	renderPeriods int
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a printable calendar from an ICS file or URL",
	Long: `Run the full pipeline once over a local ICS file or a fetched URL and write
the printable HTML page (optionally a PNG screenshot via headless Chromium).
With --periods N in week view, N consecutive weeks are rendered sequentially
into numbered files.`,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVar(&renderFile, "file", "", "path to a local ICS file")
	renderCmd.Flags().StringVar(&renderURL, "url", "", "ICS feed URL")
	renderCmd.Flags().StringVar(&renderView, "view", "month", "view to render: month or week")
	renderCmd.Flags().StringVar(&renderDate, "date", "", "anchor date YYYY-MM-DD (week view; default today)")
	renderCmd.Flags().IntVar(&renderYear, "year", 0, "year (month view; default current)")
	renderCmd.Flags().IntVar(&renderMonth, "month", 0, "month 1-12 (month view; default current)")
	renderCmd.Flags().StringVar(&renderOut, "out", "calendar.html", "output HTML path")
	renderCmd.Flags().BoolVar(&renderPNG, "png", false, "also capture a PNG next to the HTML output")
	renderCmd.Flags().IntVar(&renderPeriods, "periods", 1, "number of consecutive weeks to render (week view)")
}

func runRender(cmd *cobra.Command, args []string) error {
	if renderFile == "" && renderURL == "" {
		return fmt.Errorf("either --file or --url is required")
	}
	if renderView != "month" && renderView != "week" {
		return fmt.Errorf("unknown view %q", renderView)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	loc := cfg.Location()
	now := time.Now().In(loc)

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()

	doc, err := loadDocument(ctx)
	if err != nil {
		return err
	}

	// Cache the body so later runs can rebuild without refetching.
	if _, err := st.SaveImport(ctx, doc.Source.ID, doc.Body); err != nil {
		appLog.Error("failed to cache import", err, "id", doc.Source.ID)
	}

	assignments, err := st.ColorAssignments(ctx)
	if err != nil {
		return err
	}

	snap, err := pipeline.Run([]pipeline.Document{doc}, pipeline.Options{
		Location:         loc,
		Now:              now,
		ColorAssignments: assignments,
	})
	if err != nil {
		return err
	}

	renderer, err := render.New(render.Options{
		Location:    loc,
		TimeFormat:  cfg.TimeFormat,
		PaperSize:   cfg.PaperSize,
		Orientation: cfg.Orientation,
	})
	if err != nil {
		return err
	}

	if renderView == "month" {
		year, month := renderYear, time.Month(renderMonth)
		if year == 0 {
			year = now.Year()
		}
		if month == 0 {
			month = now.Month()
		}
		weeks := calendar.BuildMonth(year, month, snap.Merged, now, loc)

		if err := writePage(renderOut, func(f *os.File) error {
			return renderer.Month(f, year, month, weeks, assignments)
		}); err != nil {
			return err
		}
		fmt.Printf("Wrote %s (%s %d, %d shifts)\n", renderOut, month, year, len(snap.Shifts))
		return maybeCapture(ctx, cfg.PaperSize, cfg.Orientation, renderOut)
	}

	anchor := now
	if renderDate != "" {
		anchor, err = time.ParseInLocation("2006-01-02", renderDate, loc)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
	}

	// Multi-period export is sequential to bound peak resource use and
	// preserve page ordering.
	periods := renderPeriods
	if periods < 1 {
		periods = 1
	}
	for i := 0; i < periods; i++ {
		weekAnchor := anchor.AddDate(0, 0, 7*i)
		days := calendar.BuildWeek(weekAnchor, snap.Merged, now)

		startHour, endHour, ok := calendar.DetectTimeRange(days)
		if !ok {
			startHour, endHour = cfg.DayStartHour, cfg.DayEndHour
		}

		out := renderOut
		if periods > 1 {
			out = numberedPath(renderOut, i+1)
		}
		if err := writePage(out, func(f *os.File) error {
			return renderer.Week(f, days, startHour, endHour, assignments)
		}); err != nil {
			return err
		}
		fmt.Printf("Wrote %s (week of %s)\n", out, days[0].Date.Format("2006-01-02"))
		if err := maybeCapture(ctx, cfg.PaperSize, cfg.Orientation, out); err != nil {
			return err
		}
	}
	return nil
}

func loadDocument(ctx context.Context) (pipeline.Document, error) {
	if renderFile != "" {
		body, err := os.ReadFile(renderFile)
		if err != nil {
			return pipeline.Document{}, err
		}
		return pipeline.Document{
			Source: ics.Source{ID: filepath.Base(renderFile)},
			Body:   body,
		}, nil
	}

	fetcher := ics.NewFetcher("./cache/ics")
	res, err := fetcher.FetchOne(ctx, ics.Source{ID: renderURL, URL: renderURL})
	if err != nil {
		return pipeline.Document{}, err
	}
	return pipeline.Document{Source: res.Source, Body: res.Body}, nil
}

func writePage(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func maybeCapture(ctx context.Context, paper, orientation, htmlPath string) error {
	if !renderPNG {
		return nil
	}
	abs, err := filepath.Abs(htmlPath)
	if err != nil {
		return err
	}
	pngPath := strings.TrimSuffix(htmlPath, filepath.Ext(htmlPath)) + ".png"
	if err := capture.PNG(ctx, capture.Options{
		URL:         "file://" + abs,
		OutputPath:  pngPath,
		PaperSize:   paper,
		Orientation: orientation,
	}); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", pngPath)
	return nil
}

func numberedPath(path string, n int) string {
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(path, ext), n, ext)
}
