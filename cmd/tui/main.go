package main

import (
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DoyleJ11/batalla-naval/internal/config"
	"github.com/DoyleJ11/batalla-naval/internal/engine"
	"github.com/DoyleJ11/batalla-naval/internal/tui"
)

var (
	rosterFile string
	logFile    string
)

var rootCmd = &cobra.Command{
	Use:   "batalla-tui",
	Short: "Play the batalla naval scoreboard in a terminal",
	Long: `batalla-tui runs the scoreboard locally in the terminal.

Click a cell to cycle it, click [+] / [-] to change a score,
press r (or click Reiniciar Todo) to reset everything, q to quit.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		roster := engine.DefaultRoster
		if rosterFile != "" {
			r, err := config.LoadRoster(rosterFile)
			if err != nil {
				return err
			}
			roster = r
		}

		// The screen owns stdout; logs only go to a file.
		log := zap.NewNop()
		if logFile != "" {
			cfg := zap.NewDevelopmentConfig()
			cfg.OutputPaths = []string{logFile}
			cfg.ErrorOutputPaths = []string{logFile}
			l, err := cfg.Build()
			if err != nil {
				return err
			}
			log = l
			defer func() { _ = log.Sync() }()
		}

		screen, err := tcell.NewScreen()
		if err != nil {
			return err
		}
		if err := screen.Init(); err != nil {
			return err
		}
		defer screen.Fini()

		return tui.New(screen, roster, log).Run()
	},
}

func init() {
	rootCmd.Flags().StringVar(&rosterFile, "roster", "", "YAML file with the four team names")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
