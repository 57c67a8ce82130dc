package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"grid-seq/sequencer"
)

func init() {
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <sequence.json> <out.mid>",
	Short: "Render a sequence to a Standard MIDI File",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := os.ReadFile(args[0])
		if err != nil {
			logger.Fatal("read failed", "file", args[0], "err", err)
		}
		seq, err := sequencer.Unmarshal(data)
		if err != nil {
			logger.Fatal("parse failed", "file", args[0], "err", err)
		}
		if err := sequencer.WriteSMF(seq, args[1]); err != nil {
			logger.Fatal("export failed", "file", args[1], "err", err)
		}
		logger.Info("exported", "file", args[1])
	},
}
