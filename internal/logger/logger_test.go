package logger

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewWithOutputLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("debug", &buf)

	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log.WithField("account", "octocat").Debug("listing repositories")
	assert.Contains(t, buf.String(), "listing repositories")
	assert.Contains(t, buf.String(), "account=octocat")
}

func TestNewWithOutputUnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("chatty", &buf)

	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.Contains(t, buf.String(), "unknown log level")
}
