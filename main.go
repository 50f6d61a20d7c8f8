package main

import (
	"context"
	"encoding/json"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/velvetkeys/engagekit/browser"
	"github.com/velvetkeys/engagekit/dedup"
	"github.com/velvetkeys/engagekit/engine"
	"github.com/velvetkeys/engagekit/persistence"
	"github.com/velvetkeys/engagekit/platform"
	"github.com/velvetkeys/engagekit/safety"
	"github.com/velvetkeys/engagekit/server"
	"github.com/velvetkeys/engagekit/templates"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("⚠️ no .env file, using existing environment variables")
	}

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if lvl, err := logrus.ParseLevel(envOr("LOG_LEVEL", "info")); err == nil {
		logrus.SetLevel(lvl)
	}

	platformName := envOr("PLATFORM", "linkedin")
	profile, err := platform.ByName(platformName)
	if err != nil {
		logrus.Fatalf("❌ %v (supported: %v)", err, platform.Names())
	}

	store, err := persistence.NewStore(envOr("DB_PATH", "engagekit.db"))
	if err != nil {
		logrus.Fatalf("❌ open store: %v", err)
	}
	defer store.Close()

	cfg := browser.DefaultLaunchConfig()
	cfg.Headless = envBool("HEADLESS", false)
	b, err := browser.Launch(cfg)
	if err != nil {
		logrus.Fatalf("❌ %v", err)
	}
	defer b.Close()

	cookiePath := envOr("COOKIE_FILE", "cookies.json")
	if err := browser.LoadCookies(b, cookiePath); err != nil {
		logrus.Warnf("⚠️ cookie restore failed: %v", err)
	}

	page, err := browser.NewPage(b, cfg)
	if err != nil {
		logrus.Fatalf("❌ %v", err)
	}

	feedURL := envOr("FEED_URL", profile.FeedURL)
	logrus.Infof("🌍 navigating to %s", feedURL)
	if err := page.Navigate(feedURL); err != nil {
		logrus.Fatalf("❌ navigate: %v", err)
	}
	if err := page.WaitLoad(); err != nil {
		logrus.Warnf("⚠️ page load wait: %v", err)
	}

	detector := dedup.NewDetector(store)
	limiter := safety.NewLimiter(store)
	generator := newGenerator(store, platformName)
	feed := browser.NewFeed(page, profile)
	eng := engine.New(profile, feed, detector, limiter, generator, nil)

	restoreSettings(store, eng)

	// Duplicate sets are also cleaned opportunistically on load; the cron
	// job covers long-lived processes that never restart.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@weekly", detector.Cleanup); err != nil {
		logrus.Warnf("⚠️ cleanup schedule: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv := server.New(eng, store)
	go func() {
		if err := srv.Run(envOr("LISTEN_ADDR", "127.0.0.1:8743")); err != nil {
			logrus.Fatalf("❌ control API: %v", err)
		}
	}()

	if envBool("AUTOSTART", false) {
		eng.Start()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	logrus.Info("👋 shutting down")
	eng.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Warnf("⚠️ server shutdown: %v", err)
	}
	if err := browser.SaveCookies(b, cookiePath); err != nil {
		logrus.Warnf("⚠️ cookie save failed: %v", err)
	}
}

// newGenerator builds the comment generator, preferring templates persisted
// through the control API over the built-in defaults.
func newGenerator(store *persistence.Store, platformName string) *templates.Generator {
	saved, err := store.LoadTemplates(platformName)
	if err != nil {
		logrus.Warnf("⚠️ template load failed: %v", err)
	}
	return templates.NewGenerator(platformName, saved, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// restoreSettings applies the persisted settings blob, if any.
func restoreSettings(store *persistence.Store, eng *engine.Engine) {
	blob, err := store.LoadSettings()
	if err != nil {
		logrus.Warnf("⚠️ settings load failed: %v", err)
		return
	}
	if blob == nil {
		return
	}
	var settings engine.Settings
	if err := json.Unmarshal(blob, &settings); err != nil {
		logrus.Warnf("⚠️ settings blob unreadable: %v", err)
		return
	}
	eng.UpdateSettings(settings)
	logrus.Info("⚙️ restored persisted settings")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
