package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ayusman/fingercursor/internal/capture"
	"github.com/ayusman/fingercursor/internal/config"
	"github.com/ayusman/fingercursor/internal/cursor"
	"github.com/ayusman/fingercursor/internal/detector"
	"github.com/ayusman/fingercursor/internal/gesture"
	"github.com/ayusman/fingercursor/internal/metrics"
	"github.com/ayusman/fingercursor/internal/plugin"
	"github.com/ayusman/fingercursor/internal/pointer"
	"github.com/ayusman/fingercursor/internal/server"
	"github.com/ayusman/fingercursor/internal/store"
	"github.com/ayusman/fingercursor/internal/tracking"
	"github.com/ayusman/fingercursor/internal/tray"
)

func main() {
	var (
		addr      = flag.String("addr", "127.0.0.1:8080", "HTTP listen address")
		dataDir   = flag.String("data", "", "data directory (default ~/.fingercursor)")
		cfgPath   = flag.String("config", "", "JSON config file applied over the saved settings")
		cameraID  = flag.Int("camera", 0, "camera device index")
		noTray    = flag.Bool("no-tray", false, "run without the menu bar icon")
		dryRun    = flag.Bool("dry-run", false, "log pointer actions instead of performing them")
		pluginDir = flag.String("plugins", "", "plugin directory (default <data>/plugins)")
		webDir    = flag.String("web", "", "static files for the settings page")
	)
	flag.Parse()

	fmt.Println("fingercursor - fingertip cursor control")

	if *dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to get home directory: %v", err)
		}
		*dataDir = filepath.Join(homeDir, ".fingercursor")
	}
	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(filepath.Join(*dataDir, "fingercursor.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	cfg, err := loadConfig(st.Settings(), *cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	holder := config.NewHolder(cfg)

	if *pluginDir == "" {
		*pluginDir = filepath.Join(*dataDir, "plugins")
	}
	plugins := plugin.NewManager(*pluginDir)
	if err := plugins.Discover(); err != nil {
		log.Printf("Plugin discovery failed: %v", err)
	}
	dispatcher := plugin.NewDispatcher(st.Bindings(), plugins, plugin.NewExecutor(plugin.DefaultTimeout), 0)
	defer dispatcher.Close()

	var injector pointer.Injector
	var screens cursor.Screens
	if *dryRun {
		injector = logInjector{}
		screens = cursor.StaticScreens{{Max: r2.Vec{X: 1920, Y: 1080}}}
	} else {
		rg := pointer.NewRobotgo()
		injector, screens = rg, rg
	}
	pointerSink := pointer.NewSink(injector)

	m := metrics.New()
	live := server.NewLiveHub(m)
	trail := server.NewTrail(server.DefaultTrailLength)

	var menu *tray.Tray
	sinks := []tracking.Sink{pointerSink, live, trail, store.NewEventSink(st.Events()), dispatcher}
	if !*noTray {
		menu = tray.New()
		sinks = append(sinks, menu)
	}

	camCfg := capture.DefaultConfig()
	camCfg.DeviceID = *cameraID
	motion := capture.NewMotionDetector(0)
	defer motion.Close()

	tracker := tracking.New(tracking.Config{
		Camera:   capture.NewCamera(camCfg),
		Detector: newDetector(),
		Motion:   motion,
		Screens:  screens,
		Source:   holder,
		Metrics:  m,
		Sinks:    sinks,
	})
	defer tracker.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := tracker.Start(ctx); err != nil {
		log.Printf("Tracking not started: %v", err)
	}

	if *webDir == "" {
		*webDir = findWebDir(*dataDir)
	}
	if *webDir != "" {
		fmt.Printf("Serving static files from: %s\n", *webDir)
	}

	control := trackerControl{Tracker: tracker, tray: menu}
	srv := server.New(server.Config{
		StaticDir: *webDir,
		Store:     st,
		Holder:    holder,
		Tracker:   control,
		Plugins:   plugins,
		Live:      live,
		Trail:     trail,
		Metrics:   m,
	})

	go func() {
		fmt.Printf("Starting server on %s\n", *addr)
		if err := srv.ListenAndServe(*addr); err != nil {
			log.Printf("Server failed: %v", err)
			stop()
		}
	}()

	if menu != nil {
		menu.OnToggle(tracker.SetEnabled)
		menu.OnPauseCursor(pointerSink.SetPaused)
		menu.OnSettings(func() { openBrowser("http://" + *addr) })
		menu.OnQuit(stop)
		go func() {
			<-ctx.Done()
			menu.Quit()
		}()
		// systray must own the main goroutine.
		menu.Run()
	} else {
		<-ctx.Done()
	}

	fmt.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
}

// loadConfig starts from the saved settings, or the defaults on first
// run, and applies the optional file on top. A file that changes the
// settings is saved so the settings page shows it.
func loadConfig(settings *store.SettingsRepository, path string) (config.Config, error) {
	cfg, err := settings.GetConfig()
	switch {
	case errors.Is(err, store.ErrNotFound):
		cfg = config.Default()
	case err != nil:
		return config.Config{}, err
	}

	if path == "" {
		return cfg, nil
	}
	fileCfg, err := config.LoadOver(cfg, path)
	if err != nil {
		return config.Config{}, err
	}
	if err := settings.SaveConfig(fileCfg); err != nil {
		return config.Config{}, err
	}
	return fileCfg, nil
}

// newDetector prefers the MediaPipe service and falls back to a detector
// that never sees a hand, so the server stays usable without Python.
func newDetector() detector.Detector {
	d, err := detector.NewMediaPipeDetector(detector.DefaultConfig())
	if err != nil {
		log.Printf("MediaPipe unavailable (%v), hand detection disabled", err)
		return detector.NewMockDetector()
	}
	return d
}

// trackerControl keeps the tray in step with recognition changes made
// through the HTTP API.
type trackerControl struct {
	*tracking.Tracker
	tray *tray.Tray
}

func (c trackerControl) SetEnabled(enabled bool) {
	c.Tracker.SetEnabled(enabled)
	if c.tray != nil {
		c.tray.SetEnabled(enabled)
	}
}

type logInjector struct{}

func (logInjector) Move(r2.Vec) error { return nil }

func (logInjector) Click(b pointer.Button, at r2.Vec) error {
	log.Printf("dry-run: %s click at (%.0f, %.0f)", b, at.X, at.Y)
	return nil
}

func (logInjector) Swipe(d gesture.Direction) error {
	log.Printf("dry-run: swipe %s", d)
	return nil
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

// findWebDir searches "web", "../web" and <data>/web for the settings
// page. It returns "" when none exists.
func findWebDir(dataDir string) string {
	for _, p := range []string{"web", "../web", filepath.Join(dataDir, "web")} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
