// Package settings loads classview configuration from a config file, the
// environment and defaults, and reports later edits of the file.
package settings

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/toyz/classview/internal/errors"
	"github.com/toyz/classview/internal/utils/fileops"
)

const (
	// AppName names the user config directory
	AppName = "classview"
	// ConfigFileName is the config file name without extension
	ConfigFileName = "classview"
	// EnvPrefix prefixes every environment override, e.g. CLASSVIEW_AUTO_REFRESH
	EnvPrefix = "CLASSVIEW"
)

// Setting keys
const (
	KeyRefreshDelay     = "refresh_delay"
	KeyAutoRefresh      = "auto_refresh"
	KeyShowMembers      = "show_members"
	KeyWorkspaceFolders = "workspace_folders"
	KeySnapshot         = "snapshot"
)

// Settings is the resolved configuration
type Settings struct {
	RefreshDelay     time.Duration `mapstructure:"refresh_delay"`
	AutoRefresh      bool          `mapstructure:"auto_refresh"`
	ShowMembers      bool          `mapstructure:"show_members"`
	WorkspaceFolders []string      `mapstructure:"workspace_folders"`
	Snapshot         string        `mapstructure:"snapshot"`
}

// Defaults returns the settings used when nothing overrides them
func Defaults() Settings {
	return Settings{
		RefreshDelay:     2 * time.Second,
		AutoRefresh:      true,
		ShowMembers:      false,
		WorkspaceFolders: []string{},
	}
}

// LoadOptions selects where configuration is read from
type LoadOptions struct {
	// ConfigFile forces loading from a specific file when set
	ConfigFile string
	// SearchPaths replaces the default lookup of "." and the user config dir
	SearchPaths []string
}

// Manager holds the current settings and the viper instance behind them
type Manager struct {
	v     *viper.Viper
	paths *fileops.PathValidator

	mu      sync.RWMutex
	current Settings
	watched bool
	onEdit  []func(old, updated Settings)
}

// Load reads settings. A missing config file is not an error unless it was
// named explicitly.
func Load(opts LoadOptions) (*Manager, error) {
	v := viper.New()

	defaults := Defaults()
	v.SetDefault(KeyRefreshDelay, defaults.RefreshDelay)
	v.SetDefault(KeyAutoRefresh, defaults.AutoRefresh)
	v.SetDefault(KeyShowMembers, defaults.ShowMembers)
	v.SetDefault(KeyWorkspaceFolders, defaults.WorkspaceFolders)
	v.SetDefault(KeySnapshot, defaults.Snapshot)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	m := &Manager{v: v, paths: fileops.NewPathValidator()}

	if opts.ConfigFile != "" {
		if !m.paths.IsFile(opts.ConfigFile) {
			return nil, errors.ConfigurationError(opts.ConfigFile, "config file not found").
				WithSuggestion("Verify the --config path is correct")
		}
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WrapConfigurationError(opts.ConfigFile, "read", err)
		}
	} else {
		v.SetConfigName(ConfigFileName)
		for _, dir := range searchPaths(opts.SearchPaths) {
			v.AddConfigPath(dir)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !stderrors.As(err, &notFound) {
				return nil, errors.WrapConfigurationError(ConfigFileName, "read", err)
			}
		}
	}

	current, err := m.decode()
	if err != nil {
		return nil, err
	}
	m.current = current
	return m, nil
}

func searchPaths(override []string) []string {
	if len(override) > 0 {
		return override
	}
	paths := []string{"."}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, AppName))
	}
	return paths
}

// decode unmarshals viper's view into Settings and resolves paths
func (m *Manager) decode() (Settings, error) {
	var s Settings
	if err := m.v.Unmarshal(&s); err != nil {
		return Settings{}, errors.WrapConfigurationError(m.name(), "decode", err)
	}

	if s.RefreshDelay < 0 {
		return Settings{}, errors.NewValidationError(KeyRefreshDelay, "a non-negative duration", s.RefreshDelay.String()).
			WithSuggestion("Use a value such as 500ms or 2s")
	}

	base := ""
	if file := m.v.ConfigFileUsed(); file != "" {
		base = filepath.Dir(file)
	}

	folders := make([]string, 0, len(s.WorkspaceFolders))
	for _, folder := range s.WorkspaceFolders {
		if strings.TrimSpace(folder) == "" {
			continue
		}
		abs, err := m.paths.GetAbsolutePath(relativeTo(base, folder))
		if err != nil {
			return Settings{}, err
		}
		folders = append(folders, abs)
	}
	s.WorkspaceFolders = folders

	if s.Snapshot != "" {
		s.Snapshot = relativeTo(base, s.Snapshot)
	}
	return s, nil
}

func relativeTo(base, p string) string {
	if base == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

func (m *Manager) name() string {
	if file := m.v.ConfigFileUsed(); file != "" {
		return file
	}
	return ConfigFileName
}

// Settings returns the current settings
func (m *Manager) Settings() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.current
	s.WorkspaceFolders = append(make([]string, 0, len(s.WorkspaceFolders)), s.WorkspaceFolders...)
	return s
}

// ConfigFile returns the file settings were read from, or "" when none was found
func (m *Manager) ConfigFile() string {
	return m.v.ConfigFileUsed()
}

// OnChange registers fn to be called by Reload when settings change
func (m *Manager) OnChange(fn func(old, updated Settings)) {
	m.mu.Lock()
	m.onEdit = append(m.onEdit, fn)
	m.mu.Unlock()
}

// Watch calls fn with the previous and new settings each time the config
// file is edited. It does nothing when no config file was loaded.
func (m *Manager) Watch(fn func(old, updated Settings)) bool {
	if m.v.ConfigFileUsed() == "" {
		return false
	}

	m.OnChange(fn)

	m.mu.Lock()
	start := !m.watched
	m.watched = true
	m.mu.Unlock()

	if start {
		m.v.OnConfigChange(func(fsnotify.Event) {
			_ = m.Reload()
		})
		m.v.WatchConfig()
	}
	return true
}

// Reload re-reads the config file and notifies watchers when the settings
// changed. On error the previous settings stay in effect.
func (m *Manager) Reload() error {
	if m.v.ConfigFileUsed() != "" {
		if err := m.v.ReadInConfig(); err != nil {
			return errors.WrapConfigurationError(m.name(), "reload", err)
		}
	}

	updated, err := m.decode()
	if err != nil {
		return err
	}

	m.mu.Lock()
	old := m.current
	m.current = updated
	listeners := make([]func(old, updated Settings), len(m.onEdit))
	copy(listeners, m.onEdit)
	m.mu.Unlock()

	if equal(old, updated) {
		return nil
	}
	for _, fn := range listeners {
		fn(old, updated)
	}
	return nil
}

func equal(a, b Settings) bool {
	if a.RefreshDelay != b.RefreshDelay || a.AutoRefresh != b.AutoRefresh ||
		a.ShowMembers != b.ShowMembers || a.Snapshot != b.Snapshot ||
		len(a.WorkspaceFolders) != len(b.WorkspaceFolders) {
		return false
	}
	for i := range a.WorkspaceFolders {
		if a.WorkspaceFolders[i] != b.WorkspaceFolders[i] {
			return false
		}
	}
	return true
}
