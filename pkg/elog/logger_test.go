package elog

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

func TestCLILevels(t *testing.T) {

	hook := test.NewGlobal()
	defer hook.Reset()
	logrus.SetLevel(logrus.TraceLevel)

	log := &CLI{DisableTTY: true}

	log.Debugf("debug %d", 1)
	log.Infof("info %d", 2)
	assert.Len(t, hook.AllEntries(), 0)

	log.Printf("print %d", 3)
	log.Warnf("warn %d", 4)
	log.Errorf("error %d", 5)
	assert.Len(t, hook.AllEntries(), 3)
	assert.Equal(t, "error 5", hook.LastEntry().Message)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)

	hook.Reset()
	log.IsVerbose = true
	log.IsDebug = true

	log.Debugf("debug")
	log.Infof("info")
	assert.Len(t, hook.AllEntries(), 2)
	assert.Equal(t, logrus.DebugLevel, hook.AllEntries()[0].Level)
	assert.Equal(t, logrus.InfoLevel, hook.AllEntries()[1].Level)

}

func TestCLIFormat(t *testing.T) {

	log := &CLI{DisableTTY: true}

	out, err := log.Format(&logrus.Entry{Message: "hello", Level: logrus.ErrorLevel})
	assert.NoError(t, err)
	assert.Equal(t, "hello\n", string(out))

	out, err = log.Format(&logrus.Entry{Message: "line\n", Level: logrus.InfoLevel})
	assert.NoError(t, err)
	assert.Equal(t, "line\n", string(out))

	out, err = log.Format(&logrus.Entry{Level: logrus.InfoLevel})
	assert.NoError(t, err)
	assert.Equal(t, "\n", string(out))

}
