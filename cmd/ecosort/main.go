// EcoSort is a recycling kiosk daemon: it watches a webcam for deposited
// recyclables, classifies them, and turns detections into redeemable
// points served over a local HTTP API.
package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/ecosortai/ecosort/internal/app"
	"github.com/ecosortai/ecosort/internal/capture"
	"github.com/ecosortai/ecosort/internal/config"
	"github.com/ecosortai/ecosort/internal/detector"
	"github.com/ecosortai/ecosort/internal/ledger"
	"github.com/ecosortai/ecosort/internal/redeem"
	"github.com/ecosortai/ecosort/internal/server"
	"github.com/ecosortai/ecosort/internal/store"
	"github.com/ecosortai/ecosort/internal/tracker"
	"github.com/ecosortai/ecosort/internal/tray"
)

const version = "0.1.0"

var (
	flagConfig string
	flagTray   bool
)

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)

	serveCmd.Flags().StringVar(&flagConfig, "config", "", "Path to config.toml (default ~/.ecosort/config.toml)")
	serveCmd.Flags().BoolVar(&flagTray, "tray", false, "Run with the operator's system tray menu")
	resetCmd.Flags().StringVar(&flagConfig, "config", "", "Path to config.toml (default ~/.ecosort/config.toml)")
}

var rootCmd = &cobra.Command{
	Use:   "ecosort",
	Short: "EcoSort recycling kiosk daemon",
	Long: `EcoSort watches a webcam for deposited recyclables, classifies each
item as cardboard, metal, paper, or plastic, and converts detections
into points redeemable for avatars and vouchers. State is served over
a local HTTP API for the kiosk front end.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the kiosk daemon",
	RunE:  runServe,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the detection history and the point ledger",
	RunE:  runReset,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("ecosort " + version)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	return config.DefaultPath()
}

// dataDir resolves and creates the state directory.
func dataDir(cfg config.Config) (string, error) {
	dir := cfg.Data.Dir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".ecosort")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	return dir, nil
}

// creditTable applies the per-material overrides from the config.
func creditTable(points config.PointsConfig) tracker.CreditTable {
	credits := tracker.DefaultCredits()
	if points.CardboardCredits > 0 {
		credits[tracker.Cardboard] = points.CardboardCredits
	}
	if points.MetalCredits > 0 {
		credits[tracker.Metal] = points.MetalCredits
	}
	if points.PaperCredits > 0 {
		credits[tracker.Paper] = points.PaperCredits
	}
	if points.PlasticCredits > 0 {
		credits[tracker.Plastic] = points.PlasticCredits
	}
	return credits
}

// ledgerStore selects the ledger backend configured in [data].
func ledgerStore(cfg config.Config, dir string, st *store.Store) ledger.Store {
	if cfg.Data.LedgerStore == "sqlite" {
		return st.Ledger()
	}
	return ledger.NewFileStore(filepath.Join(dir, "ledger.json"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath())
	if err != nil {
		return err
	}

	dir, err := dataDir(cfg)
	if err != nil {
		return err
	}

	st, err := store.New(filepath.Join(dir, "ecosort.db"))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	tr := tracker.New(tracker.Policy{MinConfidence: cfg.Detector.MinConfidence}, creditTable(cfg.Points))

	// Replay the durable history so earned points survive restarts,
	// then attach the sink for new events.
	events, err := st.Events().List()
	if err != nil {
		return fmt.Errorf("load detection history: %w", err)
	}
	tr.Restore(events)
	tr.SetSink(st.Events())

	cooldown := time.Duration(cfg.Points.CooldownSeconds) * time.Second
	l, err := ledger.New(ledgerStore(cfg, dir, st), tr, cooldown)
	if err != nil {
		// The ledger falls back to an empty record; earned points
		// come back on the next recompute.
		log.Printf("Warning: %v", err)
	}

	detCfg := detector.DefaultConfig()
	detCfg.MinConfidence = cfg.Detector.MinConfidence
	detCfg.IoUThreshold = cfg.Detector.IoUThreshold
	detCfg.ScriptPath = cfg.Detector.ScriptPath
	detCfg.PythonPath = cfg.Detector.PythonPath

	a := app.New(app.Config{
		Store:    st,
		Tracker:  tr,
		Ledger:   l,
		CameraID: cfg.Camera.Device,
		CameraConfig: capture.Settings{
			Width:  cfg.Camera.Width,
			Height: cfg.Camera.Height,
			FPS:    cfg.Camera.IdleFPS,
		},
		Detector:     detCfg,
		IdleFPS:      cfg.Camera.IdleFPS,
		ActiveFPS:    cfg.Camera.ActiveFPS,
		MotionThresh: cfg.Camera.MotionThresh,
	})
	defer a.Close()

	flow := redeem.NewFlow(l, redeem.DefaultCatalog(), redeem.Costs{
		AvatarChange: cfg.Points.AvatarChangeCost,
		Voucher:      cfg.Points.VoucherCost,
	})

	srv := server.New(server.Config{
		StaticDir: cfg.Server.StaticDir,
		App:       a,
		Flow:      flow,
		Bins:      cfg.Bins,
	})

	addr := cfg.Server.Addr()
	log.Printf("EcoSort %s listening on %s (data in %s)", version, addr, dir)

	if !flagTray {
		return srv.ListenAndServe(addr)
	}

	go func() {
		if err := srv.ListenAndServe(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()
	runTray(a, addr)
	return nil
}

// runTray blocks in the systray loop and mirrors kiosk state into the menu.
func runTray(a *app.App, addr string) {
	t := tray.New()
	t.OnToggle(func(capturing bool) {
		if capturing {
			if err := a.StartCapture(); err != nil {
				log.Printf("Failed to start capture: %v", err)
				t.SetCapturing(false)
			}
			return
		}
		a.StopCapture()
	})
	t.OnDashboard(func() {
		openBrowser("http://" + addr)
	})

	done := make(chan struct{})
	t.OnQuit(func() { close(done) })

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				t.SetCapturing(a.IsCapturing())
				t.SetPoints(a.Ledger().Available())
				if event, ok := a.Tracker().LastEvent(); ok {
					t.SetLastDetection(string(event.Material), event.Credits)
				}
			}
		}
	}()

	t.Run()
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}

func runReset(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath())
	if err != nil {
		return err
	}

	dir, err := dataDir(cfg)
	if err != nil {
		return err
	}

	st, err := store.New(filepath.Join(dir, "ecosort.db"))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	if err := st.Events().Reset(); err != nil {
		return fmt.Errorf("clear detection history: %w", err)
	}

	if err := ledgerStore(cfg, dir, st).Save(ledger.DefaultRecord()); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}

	fmt.Println("Detection history and ledger cleared.")
	return nil
}
