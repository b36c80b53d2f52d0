package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aaron-veronese/RealSAT-sub000/internal/bank"
	"github.com/aaron-veronese/RealSAT-sub000/internal/config"
	"github.com/aaron-veronese/RealSAT-sub000/internal/db"
)

var seedCmd = &cobra.Command{
	Use:   "seed <exam-package.json>",
	Short: "Import an exam package into the question bank",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromEnv()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
		if err != nil {
			return fmt.Errorf("db open: %w", err)
		}
		defer dbh.Close()

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		ex, err := bank.ParseExam(f)
		if err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}
		if err := bank.NewImporter(dbh).Import(ctx, ex); err != nil {
			return fmt.Errorf("import %s: %w", ex.TestID, err)
		}
		fmt.Printf("imported %s (%d questions)\n", ex.TestID, len(ex.Questions))
		return nil
	},
}
