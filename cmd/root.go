package cmd

import (
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	gomidi "gitlab.com/gomidi/midi/v2"

	"grid-seq/config"
	"grid-seq/midi"
	"grid-seq/sequencer"
	"grid-seq/tui"
)

var (
	fileFlag string
	portFlag string

	logger = charmlog.NewWithOptions(os.Stderr, charmlog.Options{Prefix: "grid-seq"})
)

var rootCmd = &cobra.Command{
	Use:   "grid-seq",
	Short: "4-track step sequencer",
	Long:  `A 4-track MIDI step sequencer: edit a quantized note grid in the terminal and play it out to MIDI devices.`,
	Run: func(cmd *cobra.Command, args []string) {
		runEditor()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&fileFlag, "file", "f", "", "sequence file to load and save")
	rootCmd.PersistentFlags().StringVarP(&portFlag, "port", "p", "", "default MIDI output port")
}

// Execute runs the CLI.
func Execute() {
	defer gomidi.CloseDriver()
	cobra.CheckErr(rootCmd.Execute())
}

// newEngine assembles the engine from flags and the saved preferences.
func newEngine(router *midi.Router) (*sequencer.Engine, *config.Config) {
	cfgPath, err := config.DefaultPath()
	if err != nil {
		logger.Warn("no config dir", "err", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Warn("config unreadable, using defaults", "err", err)
		cfg = &config.Config{}
	}

	engine := sequencer.NewEngine(sequencer.NewSequence(), router)
	if cfg.Tempo != 0 {
		engine.SetBPM(cfg.Tempo)
	}

	if fileFlag != "" {
		if err := engine.LoadFile(fileFlag); err != nil {
			logger.Error("load failed", "file", fileFlag, "err", err)
			os.Exit(1)
		}
		logger.Info("loaded", "file", fileFlag)
	}

	// Route unrouted tracks to the default port so a fresh sequence makes
	// sound without any setup.
	defaultPort := portFlag
	if defaultPort == "" {
		defaultPort = cfg.DefaultPort
	}
	if defaultPort == "" {
		if ports := router.Ports(); len(ports) > 0 {
			defaultPort = ports[0]
		}
	}
	if defaultPort != "" {
		snap := engine.Snapshot()
		for _, tr := range snap.Tracks {
			if tr.SinkRef == "" {
				engine.SetSink(tr.ID, defaultPort)
			}
		}
	}
	return engine, cfg
}

func runEditor() {
	router := midi.NewRouter()
	engine, cfg := newEngine(router)

	savePath := fileFlag
	if savePath == "" {
		savePath = cfg.AutosaveFile
	}
	if savePath == "" {
		if dir, err := config.Dir(); err == nil {
			savePath = filepath.Join(dir, "autosave.json")
		}
	}

	m := tui.NewModel(engine, router.Ports(), savePath)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error("tui failed", "err", err)
		os.Exit(1)
	}

	// Remember the session's tempo and save target.
	cfg.Tempo = engine.Snapshot().BPM
	if fileFlag != "" {
		cfg.LastFile = fileFlag
	}
	if cfgPath, err := config.DefaultPath(); err == nil {
		if err := cfg.Save(cfgPath); err != nil {
			logger.Warn("config save failed", "err", err)
		}
	}
}
