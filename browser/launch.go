package browser

import (
	"fmt"
	"math/rand"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// LaunchConfig controls how the Chromium instance is started.
type LaunchConfig struct {
	Headless  bool
	UserAgent string
	Width     int
	Height    int
}

type viewport struct {
	width, height int
}

// Realistic desktop resolutions, jittered a little at launch so the exact
// size never repeats.
var commonViewports = []viewport{
	{1920, 1080},
	{1366, 768},
	{1536, 864},
	{1440, 900},
	{1600, 900},
	{1680, 1050},
}

var commonUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36 Edg/126.0.0.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
}

// DefaultLaunchConfig returns a randomized launch configuration.
func DefaultLaunchConfig() LaunchConfig {
	vp := commonViewports[rand.Intn(len(commonViewports))]
	return LaunchConfig{
		Headless:  false,
		UserAgent: commonUserAgents[rand.Intn(len(commonUserAgents))],
		Width:     vp.width + rand.Intn(20) - 10,
		Height:    vp.height + rand.Intn(20) - 10,
	}
}

// Launch starts Chromium with anti-automation flags and connects to it.
//
// "disable-blink-features=AutomationControlled" keeps navigator.webdriver
// unset and removes the automation infobar; the rest suppress first-run
// dialogs and keep the fingerprint close to an ordinary install.
func Launch(cfg LaunchConfig) (*rod.Browser, error) {
	logrus.Infof("🥷 launching browser %dx%d headless=%v", cfg.Width, cfg.Height, cfg.Headless)

	l := launcher.New().
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-infobars").
		Set("no-first-run").
		Set("no-default-browser-check").
		Set("disable-dev-shm-usage").
		Set("disable-extensions").
		Set("window-size", fmt.Sprintf("%d,%d", cfg.Width, cfg.Height)).
		Set("user-agent", cfg.UserAgent).
		Headless(cfg.Headless).
		Leakless(false)

	url, err := l.Launch()
	if err != nil {
		return nil, errors.Wrap(err, "launch chromium")
	}

	b := rod.New().ControlURL(url)
	if err := b.Connect(); err != nil {
		return nil, errors.Wrap(err, "connect to chromium")
	}
	return b, nil
}

// NewPage opens a stealth-patched page: the stealth library's evasion
// script runs before any site script, then the viewport and user agent are
// pinned to the launch configuration.
func NewPage(b *rod.Browser, cfg LaunchConfig) (*rod.Page, error) {
	page, err := stealth.Page(b)
	if err != nil {
		return nil, errors.Wrap(err, "stealth page")
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             cfg.Width,
		Height:            cfg.Height,
		DeviceScaleFactor: 1,
	}); err != nil {
		return nil, errors.Wrap(err, "set viewport")
	}
	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: cfg.UserAgent}); err != nil {
		return nil, errors.Wrap(err, "set user agent")
	}
	return page, nil
}
