package browser

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/playwright-community/playwright-go"
)

// Manager owns the shared Playwright driver and Chromium process and
// hands out isolated pages. The browser is launched lazily on first
// acquire and relaunched if the process died; pages are never shared —
// every acquire gets a fresh context that the release func tears down.
type Manager struct {
	headless bool
	sem      chan struct{} // bounds concurrent pages

	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
}

// viewport matches what the auto-apply flow expects from target pages.
var viewport = playwright.Size{Width: 1280, Height: 800}

func NewManager(poolSize int, headless bool) *Manager {
	if poolSize < 1 {
		poolSize = 1
	}
	return &Manager{
		headless: headless,
		sem:      make(chan struct{}, poolSize),
	}
}

// AcquirePage returns a fresh page and a release func that must be
// called on every exit path. Blocks while the pool is exhausted.
func (m *Manager) AcquirePage(ctx context.Context) (playwright.Page, func(), error) {
	select {
	case m.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}

	br, err := m.ensureBrowser()
	if err != nil {
		<-m.sem
		return nil, nil, err
	}

	browserCtx, err := br.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &viewport,
	})
	if err != nil {
		<-m.sem
		return nil, nil, fmt.Errorf("create browser context: %w", err)
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		browserCtx.Close()
		<-m.sem
		return nil, nil, fmt.Errorf("create page: %w", err)
	}

	release := func() {
		if err := page.Close(); err != nil {
			log.Printf("⚠️ Failed to close page: %v", err)
		}
		if err := browserCtx.Close(); err != nil {
			log.Printf("⚠️ Failed to close browser context: %v", err)
		}
		<-m.sem
	}
	return page, release, nil
}

// ensureBrowser launches the driver and browser on demand and replaces a
// disconnected browser process.
func (m *Manager) ensureBrowser() (playwright.Browser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser != nil && m.browser.IsConnected() {
		return m.browser, nil
	}

	if m.pw == nil {
		pw, err := playwright.Run()
		if err != nil {
			return nil, fmt.Errorf("start playwright driver: %w", err)
		}
		m.pw = pw
	}

	if m.browser != nil {
		log.Println("⚠️ Browser disconnected, relaunching...")
	}

	browser, err := m.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(m.headless),
		Args:     []string{"--no-sandbox", "--disable-dev-shm-usage"},
	})
	if err != nil {
		return nil, fmt.Errorf("launch chromium: %w", err)
	}
	m.browser = browser
	return browser, nil
}

// Close shuts the shared browser and driver down.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser != nil {
		if err := m.browser.Close(); err != nil {
			return fmt.Errorf("close browser: %w", err)
		}
		m.browser = nil
	}
	if m.pw != nil {
		if err := m.pw.Stop(); err != nil {
			return fmt.Errorf("stop playwright driver: %w", err)
		}
		m.pw = nil
	}
	return nil
}
