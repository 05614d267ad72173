package main

/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */

import (
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/vorteil/vhdxinfo/pkg/elog"
	"github.com/vorteil/vhdxinfo/pkg/vio"
)

const (
	configFileName = ".vhdxinfo"

	configProbeTimeout = "http.probe-timeout"
	configUserAgent    = "http.user-agent"
	configNumbers      = "numbers"
)

func setConfigDefaults() {
	viper.SetDefault(configProbeTimeout, vio.DefaultProbeTimeout)
	viper.SetDefault(configUserAgent, "vhdxinfo/"+release)
	viper.SetDefault(configNumbers, "short")
}

// reads in config file, uses defaults if not found
func initConfig(cfgFile string, log elog.View) {

	setConfigDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			goto loadDefaults
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(configFileName)
	}

loadDefaults:
	if err := viper.ReadInConfig(); err == nil {
		log.Debugf("using config file: %s", viper.ConfigFileUsed())
	} else {
		log.Debugf("%s", err.Error())
		log.Debugf("using default configuration")
	}
}

// bindFlags lets command-line flags override config file values, but only
// when they are explicitly set.
func bindFlags(f *pflag.FlagSet) error {

	for key, name := range map[string]string{
		configProbeTimeout: "probe-timeout",
		configNumbers:      "numbers",
	} {
		flag := f.Lookup(name)
		if flag == nil || !flag.Changed {
			continue
		}
		err := viper.BindPFlag(key, flag)
		if err != nil {
			return err
		}
	}

	return nil
}

func httpArgs(log elog.View) *vio.HTTPArgs {
	return &vio.HTTPArgs{
		ProbeTimeout: viper.GetDuration(configProbeTimeout),
		UserAgent:    viper.GetString(configUserAgent),
		Logger:       log,
	}
}
