package tray

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"fyne.io/systray"

	"github.com/butterflysky/elgato-keylight/internal/config"
)

// Manager owns the systray icon and menu.
type Manager struct {
	mu       sync.Mutex
	actions  *Actions
	svc      Service
	interval time.Duration
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	menu       Menu
	built      bool
	lightMenus map[string]*systray.MenuItem
	stopChan   chan struct{}
	refreshCh  chan struct{}
	reloadCh   chan struct{}
	onQuit     func()
}

// NewManager creates a Manager polling svc every interval.
func NewManager(svc Service, interval time.Duration, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		actions:    NewActions(svc, logger),
		svc:        svc,
		interval:   config.ValidatePollInterval(interval),
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
		lightMenus: make(map[string]*systray.MenuItem),
		stopChan:   make(chan struct{}),
		refreshCh:  make(chan struct{}, 1),
		reloadCh:   make(chan struct{}, 1),
	}
}

// OnQuit sets a func called when Quit is clicked, before systray exits.
func (m *Manager) OnQuit(fn func()) {
	m.onQuit = fn
}

// OnReady is called when systray is ready.
func (m *Manager) OnReady() {
	systray.SetIcon(Icon(IconUnknown))
	systray.SetTitle(Title)
	systray.SetTooltip(Title)

	// left click toggles every light; right click opens the menu
	systray.SetOnTapped(func() {
		go m.do(m.actions.ToggleAll)
	})

	go m.loop()
}

// OnExit is called when systray exits.
func (m *Manager) OnExit() {
	m.cancel()
}

// Reload rebuilds the menu from the config file.
func (m *Manager) Reload() {
	select {
	case m.reloadCh <- struct{}{}:
	default:
	}
}

// Refresh polls the lights now.
func (m *Manager) Refresh() {
	select {
	case m.refreshCh <- struct{}{}:
	default:
	}
}

func (m *Manager) loop() {
	m.reload()
	m.refresh()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.refresh()
		case <-m.refreshCh:
			m.refresh()
		case <-m.reloadCh:
			m.reload()
			m.refresh()
		}
	}
}

// do runs an action then refreshes the icon.
func (m *Manager) do(action func(ctx context.Context)) {
	action(m.ctx)
	m.Refresh()
}

func (m *Manager) reload() {
	menu, err := LoadMenu(m.ctx, m.svc)
	if err != nil {
		m.logger.Warn("failed to load menu", "error", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.built && menu.Equal(m.menu) {
		return
	}
	m.rebuildMenu(menu)
}

func (m *Manager) refresh() {
	summary := m.actions.Poll(m.ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	systray.SetIcon(Icon(summary.Icon()))
	systray.SetTooltip(summary.Tooltip())
	for _, l := range summary.Lights {
		if item, ok := m.lightMenus[l.Name]; ok {
			item.SetTitle(LightTitle(l))
		}
	}
}

// rebuildMenu replaces the whole menu. Callers hold mu.
func (m *Manager) rebuildMenu(menu Menu) {
	if m.built {
		close(m.stopChan)
		m.stopChan = make(chan struct{})
		systray.ResetMenu()
	}
	m.menu = menu
	m.built = true
	m.lightMenus = make(map[string]*systray.MenuItem, len(menu.Lights))

	if len(menu.Lights) > 0 {
		header := systray.AddMenuItem("Lights", "Lights")
		header.Disable()
		for _, name := range menu.Lights {
			item := systray.AddMenuItem(LightTitle(LightItem{Name: name, Reachable: true}), "Toggle "+name)
			m.lightMenus[name] = item
			m.handle(item, func(ctx context.Context) { m.actions.ToggleLight(ctx, name) })
		}
		systray.AddSeparator()
	}

	m.submenu("Presets", menu.Presets, m.actions.ApplyPreset)
	m.submenu("Moods", menu.Moods, m.actions.SetMood)
	m.submenu("Effects", menu.Effects, m.actions.RunEffect)

	systray.AddSeparator()
	m.handle(systray.AddMenuItem("All off", "Turn every light off"), m.actions.AllOff)
	quit := systray.AddMenuItem("Quit", "Quit the application")
	go m.handleQuit(quit, m.stopChan)
}

func (m *Manager) submenu(title string, names []string, action func(ctx context.Context, name string)) {
	if len(names) == 0 {
		return
	}
	parent := systray.AddMenuItem(title, title)
	for _, name := range names {
		m.handle(parent.AddSubMenuItem(name, name), func(ctx context.Context) { action(ctx, name) })
	}
}

// handle runs action for each click on item until the menu is rebuilt.
func (m *Manager) handle(item *systray.MenuItem, action func(ctx context.Context)) {
	stop := m.stopChan
	go func() {
		for {
			select {
			case <-item.ClickedCh:
				m.do(action)
			case <-stop:
				return
			case <-m.ctx.Done():
				return
			}
		}
	}()
}

func (m *Manager) handleQuit(item *systray.MenuItem, stop chan struct{}) {
	select {
	case <-item.ClickedCh:
		if m.onQuit != nil {
			m.onQuit()
		}
		m.cancel()
		systray.Quit()
	case <-stop:
	case <-m.ctx.Done():
	}
}
