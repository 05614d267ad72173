package main

/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */

import (
	"context"
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
	"github.com/mattn/go-colorable"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vorteil/vhdxinfo/pkg/elog"
	"github.com/vorteil/vhdxinfo/pkg/vhdx"
	"github.com/vorteil/vhdxinfo/pkg/vio"
)

var (
	flagJSON         bool
	flagYAML         bool
	flagVerbose      bool
	flagDebug        bool
	flagConfig       string
	flagNumbers      string
	flagFilter       []string
	flagProbeTimeout = vio.DefaultProbeTimeout
)

// scopeOutput receives the scoped debug log of --debug runs.
var scopeOutput io.Writer = colorable.NewColorableStderr()

func initializeCommands() {

	// setup logging across all commands
	f := rootCmd.PersistentFlags()
	f.BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose output")
	f.BoolVarP(&flagDebug, "debug", "d", false, "enable debug output")
	f.BoolVarP(&flagJSON, "json", "j", false, "enable json output")
	f.BoolVarP(&flagYAML, "yaml", "y", false, "print results as yaml")
	f.StringVar(&flagConfig, "config", "", "config file (default is $HOME/.vhdxinfo.yaml)")
	f.StringVar(&flagNumbers, "numbers", "short", "number format (short, dec, hex)")
	f.DurationVar(&flagProbeTimeout, "probe-timeout", vio.DefaultProbeTimeout, "timeout for the HTTP range support probe")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {

		logger := &elog.CLI{}

		if flagJSON {
			logger.DisableTTY = true
			logrus.SetFormatter(&logrus.JSONFormatter{})
		} else {
			logrus.SetFormatter(logger)
		}

		logrus.SetLevel(logrus.TraceLevel)

		if flagDebug {
			logger.IsDebug = true
			logger.IsVerbose = true
		} else if flagVerbose {
			logger.IsVerbose = true
		}

		log = logger
		if flagDebug && !flagJSON && !flagYAML {
			log = elog.NewEchelonLogger(scopeOutput, elog.DebugLevel)
		}

		initConfig(flagConfig, log)

		err := bindFlags(cmd.Flags())
		if err != nil {
			return err
		}

		err = SetNumbersMode(viper.GetString(configNumbers))
		if err != nil {
			return fmt.Errorf("couldn't parse value of --numbers: %v", err)
		}

		return nil
	}

	metadataCmd.Flags().StringSliceVar(&flagFilter, "filter", nil, "only list items whose name or GUID matches a glob pattern")

	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(regionsCmd)
	rootCmd.AddCommand(metadataCmd)
	rootCmd.AddCommand(versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "vhdxinfo",
	Short: "Inspect VHDX disk image metadata",
	Long: `vhdxinfo reads the structural metadata of VHDX disk images, local or
served over HTTP(S) with byte-range support, without reading the whole file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// printResult writes v as json or yaml when asked to, otherwise as a plain
// table.
func printResult(w io.Writer, v interface{}, rows func() [][]string) error {
	switch {
	case flagJSON:
		return printJSON(w, v)
	case flagYAML:
		return printYAML(w, v)
	}
	PlainTable(w, rows())
	return nil
}

func openSession(ctx context.Context, source string) (*vhdx.Session, error) {
	return vhdx.Open(ctx, source, &vhdx.Args{
		Logger: log,
		HTTP:   httpArgs(log),
	})
}

var infoCmd = &cobra.Command{
	Use:   "info SOURCE",
	Short: "Print the virtual disk parameters of an image",
	Long: `Print the virtual disk parameters of an image. SOURCE is a local path or
an http(s):// URL.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {

		info, err := vhdx.GetInfo(context.Background(), args[0], &vhdx.Args{
			Logger: log,
			HTTP:   httpArgs(log),
		})
		if err != nil {
			return err
		}

		log.Debugf("%s", spew.Sdump(info))

		return printResult(cmd.OutOrStdout(), info, func() [][]string {
			return infoRows(info)
		})
	},
}

var regionsCmd = &cobra.Command{
	Use:   "regions SOURCE",
	Short: "List the region table of an image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {

		ctx := context.Background()

		s, err := openSession(ctx, args[0])
		if err != nil {
			return err
		}
		defer s.Close()

		rs, done := s.Scoped("regions")
		regions, err := rs.EnumRegions(ctx)
		done(err)
		if err != nil {
			return err
		}

		log.Debugf("%s", spew.Sdump(regions))

		return printResult(cmd.OutOrStdout(), regions, func() [][]string {
			return regionRows(regions)
		})
	},
}

var metadataCmd = &cobra.Command{
	Use:   "metadata SOURCE",
	Short: "List the metadata table of an image",
	Long: `List every entry of the metadata table of an image, including items
this tool does not decode.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {

		ctx := context.Background()

		s, err := openSession(ctx, args[0])
		if err != nil {
			return err
		}
		defer s.Close()

		rs, done := s.Scoped("regions")
		regions, err := rs.EnumRegions(ctx)
		done(err)
		if err != nil {
			return err
		}

		region, ok := vhdx.FindRegion(regions, vhdx.RegionMetadata)
		if !ok {
			return &vhdx.RegionNotFoundError{Name: vhdx.RegionMetadata}
		}

		ms, done := s.Scoped("metadata table")
		entries, err := ms.LoadMetadataTable(ctx, int64(region.FileOffset))
		done(err)
		if err != nil {
			return err
		}

		log.Debugf("%s", spew.Sdump(entries))

		entries, err = filterEntries(entries, flagFilter)
		if err != nil {
			return err
		}

		return printResult(cmd.OutOrStdout(), entries, func() [][]string {
			return metadataRows(entries)
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "View CLI version information",
	Long:  "View CLI version information",
	Args:  cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {

		format, err := cmd.Flags().GetString("format")
		if err != nil {
			panic(err)
		}

		switch format {
		case "json", "", "plain":
			return nil
		default:
			return fmt.Errorf("invalid format '%s'", format)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {

		format, err := cmd.Flags().GetString("format")
		if err != nil {
			panic(err)
		}

		w := cmd.OutOrStdout()

		switch format {
		case "json":
			fmt.Fprintf(w, "{\n\t\"version\": \"%s\",\n\t\"ref\": \"%s\",\n\t\"released\": \"%s\"\n}\n",
				release, commit, date)
		default:
			fmt.Fprintf(w, "Version: %s\nRef: %s\nReleased: %s\n", release, commit, date)
		}

	},
}

func init() {
	f := versionCmd.Flags()
	f.String("format", "", "specify output format (json, plain)")
}
