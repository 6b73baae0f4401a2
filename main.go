package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bvisness/camp/inspect"
	"github.com/bvisness/camp/meta"
	"github.com/bvisness/camp/sample"
	"github.com/bvisness/camp/utils"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

func main() {
	cfg := defaultConfig()
	var reg *meta.Registry

	rootCmd := &cobra.Command{
		Use:   "camp",
		Short: "Inspect the classes and enums registered with the meta runtime.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			flags := cmd.Flags()
			if file := utils.Must1(flags.GetString("config")); file != "" {
				if err := loadConfig(file, &cfg); err != nil {
					exitWithError("could not load config: %v", err)
				}
			}
			if flags.Changed("format") {
				cfg.Format = utils.Must1(flags.GetString("format"))
			}
			if flags.Changed("verbose") {
				cfg.Verbose = utils.Must1(flags.GetBool("verbose"))
			}
			cfg.Format = utils.Or(cfg.Format, string(inspect.FormatText))
			if _, err := cfg.format(); err != nil {
				exitWithError("%v", err)
			}

			reg = meta.NewRegistry()
			utils.Must(sample.Register(reg))
			reg.Freeze()
			logf(cfg, "registered %d classes and %d enums", reg.ClassCount(), reg.EnumCount())
		},
	}
	rootCmd.PersistentFlags().StringP("config", "c", "", "TOML configuration file.")
	rootCmd.PersistentFlags().StringP("format", "f", "text", "Output format for descriptions: text or yaml.")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log progress to stderr.")

	newSession := func() *inspect.Session {
		s := inspect.NewSession(reg, os.Stdout)
		s.SetFormat(utils.Must1(cfg.format()))
		return s
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the registered classes and enums.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			s := newSession()
			for _, line := range []string{"classes", "enums"} {
				if err := s.Exec(line); err != nil {
					exitWithError("%v", err)
				}
			}
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "describe <class|enum>...",
		Short: "Print the members of classes or the values of enums.",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			s := newSession()
			for _, name := range args {
				if err := s.Exec("describe " + name); err != nil {
					exitWithError("%v", err)
				}
			}
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "run <file>",
		Short: "Execute a script of inspector commands. Use - to read from stdin.",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			filename := args[0]

			var script io.Reader
			if filename == "-" {
				script = os.Stdin
			} else {
				f, err := os.Open(filename)
				if err != nil {
					err := err.(*os.PathError)
					exitWithError("could not open file %s: %v", err.Path, err.Err)
				}
				defer f.Close()
				script = f
			}

			s := newSession()
			defer s.Close()
			logf(cfg, "running %s", filename)
			if err := s.Run(script); err != nil {
				exitWithError("%s: %v", filename, err)
			}
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "repl",
		Short: "Read inspector commands interactively.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			s := newSession()
			err := repl(cfg, s)
			s.Close()
			if err != nil {
				exitWithError("%v", err)
			}
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "dumpconfig",
		Short: "Print the effective configuration as TOML.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out, err := dumpConfig(cfg)
			if err != nil {
				exitWithError("%v", err)
			}
			os.Stdout.Write(out)
		},
	})

	utils.Must(rootCmd.Execute())
}

// repl returns after the line editor has restored the terminal.
func repl(cfg Config, s *inspect.Session) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := cfg.historyPath()
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			ln.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				ln.WriteHistory(f)
				f.Close()
			} else {
				logf(cfg, "could not save history: %v", err)
			}
		}()
	}

	prompt := utils.Or(cfg.Prompt, "camp> ")
	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Println()
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}
		ln.AppendHistory(line)
		if err := s.Exec(line); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		}
	}
}

func logf(cfg Config, msg string, args ...any) {
	if cfg.Verbose {
		fmt.Fprintf(os.Stderr, msg+"\n", args...)
	}
}

func exitWithError(msg string, args ...any) {
	msg = fmt.Sprintf(msg, args...)
	fmt.Fprintf(os.Stderr, "ERROR: %s\n", msg)
	os.Exit(1)
}
