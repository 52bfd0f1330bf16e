// Package version хранит сведения о сборке, которые проставляются через -ldflags:
//
//	go build -ldflags "-X github.com/vladislavdragonenkov/basket/internal/version.version=v1.2.0"
package version

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

const serviceName = "basket"

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Info возвращает версию, коммит и дату сборки.
func Info() (v, c, d string) { return version, commit, date }

// GetVersion возвращает версию сборки.
func GetVersion() string { return version }

// GetCommit возвращает хеш коммита сборки.
func GetCommit() string { return commit }

// GetDate возвращает дату сборки.
func GetDate() string { return date }

// UserAgent — значение заголовка User-Agent для исходящих запросов сервиса.
func UserAgent() string {
	return serviceName + "/" + version
}

// Fields возвращает сведения о сборке для стартового лога.
func Fields() log.Fields {
	return log.Fields{
		"version": version,
		"commit":  commit,
		"date":    date,
	}
}

func String() string {
	return fmt.Sprintf("%s version=%s commit=%s date=%s", serviceName, version, commit, date)
}
