package version

import "fmt"

// Заполняются при сборке через -ldflags:
//
//	-X .../internal/version.version=v1.2.3
//	-X .../internal/version.commit=abc1234
//	-X .../internal/version.date=2026-08-28
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// BuildInfo описывает версию собранного бинаря.
type BuildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Get возвращает информацию о сборке.
func Get() BuildInfo {
	return BuildInfo{Version: version, Commit: commit, Date: date}
}

// GetVersion возвращает только версию, для health-ответов.
func GetVersion() string { return version }

// String форматирует информацию о сборке одной строкой для логов.
func (b BuildInfo) String() string {
	return fmt.Sprintf("version=%s commit=%s date=%s", b.Version, b.Commit, b.Date)
}
