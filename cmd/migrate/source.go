package main

import (
	"fmt"
	"io/fs"
	"os"
	"strings"

	"bookish/db"
	"bookish/internal/logger"
)

// migrationSource prefers the migrations directory on disk and falls back to the copy
// embedded in the binary when dir does not exist.
func migrationSource(dir string) (fs.FS, string) {
	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return nil, dir
		}
	}
	return db.Migrations, db.MigrationsDir
}

// gooseLogger sends goose output through the structured logger.
type gooseLogger struct {
	log *logger.Logger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.log.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.log.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
	os.Exit(1)
}
