package main

/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */

import (
	"os"

	"github.com/mattn/go-colorable"
	"github.com/sirupsen/logrus"

	"github.com/vorteil/vhdxinfo/pkg/elog"
)

var (
	release = "0.0.0"
	commit  = ""
	date    = "Thu, 01 Jan 1970 00:00:00 +0000"
)

var log elog.View

// Each command executed may have a error message and status code
var errorStatusCode int
var errorStatusMessage error

func init() {
	logger := &elog.CLI{}
	logrus.SetFormatter(logger)
	logrus.SetOutput(colorable.NewColorableStdout())
	logrus.SetLevel(logrus.TraceLevel)
	log = logger
}

// setError records err for the process exit and logs it.
func setError(err error, statusCode int) {
	log.Errorf("%s", err.Error())
	errorStatusCode = statusCode
	errorStatusMessage = err
}

func handleErrors() {
	if errorStatusMessage != nil {
		os.Exit(errorStatusCode)
	}
}

func main() {

	defer handleErrors()

	initializeCommands()

	err := rootCmd.Execute()
	if err != nil {
		setError(err, exitCode(err))
	}

	elog.Finish(log, err == nil)

}
