package version

import "fmt"

// Значения подставляются при сборке через -ldflags.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GetVersion возвращает версию сборки.
func GetVersion() string { return version }

// GetCommit возвращает хеш коммита сборки.
func GetCommit() string { return commit }

// GetDate возвращает дату сборки.
func GetDate() string { return date }

// Info возвращает версию, коммит и дату одной тройкой.
func Info() (v, c, d string) { return version, commit, date }

// String возвращает информацию о сборке одной строкой для логов.
func String() string {
	return fmt.Sprintf("version=%s commit=%s date=%s", version, commit, date)
}
