package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	gormlogger "gorm.io/gorm/logger"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]gormlogger.LogLevel{
		"silent":  gormlogger.Silent,
		"ERROR":   gormlogger.Error,
		" info ":  gormlogger.Info,
		"warn":    gormlogger.Warn,
		"verbose": gormlogger.Warn,
		"":        gormlogger.Warn,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLogLevel(in), in)
	}
}
