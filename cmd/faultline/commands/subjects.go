package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/moolen/faultline/internal/config"
	"github.com/moolen/faultline/internal/source"
	"github.com/moolen/faultline/internal/subject"
)

var (
	initVariant string
	initForce   bool
)

var subjectsCmd = &cobra.Command{
	Use:   "subjects",
	Short: "Manage subjects files for the file source",
}

var subjectsInitCmd = &cobra.Command{
	Use:   "init PATH",
	Short: "Write a subjects file seeded with the built-in data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		variant, err := subject.ParseVariant(initVariant)
		if err != nil {
			return err
		}
		if err := initSubjectsFile(cmd.Context(), args[0], variant, initForce); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s subjects to %s\n", variant, args[0])
		return nil
	},
}

var subjectsValidateCmd = &cobra.Command{
	Use:   "validate PATH",
	Short: "Check a subjects file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return validateSubjectsFile(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	subjectsInitCmd.Flags().StringVar(&initVariant, "variant", string(subject.Governance), "Variant to seed: governance or market")
	subjectsInitCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing file")

	subjectsCmd.AddCommand(subjectsInitCmd)
	subjectsCmd.AddCommand(subjectsValidateCmd)
}

// initSubjectsFile writes the mock subjects for variant to path. Market
// values are written unjittered.
func initSubjectsFile(ctx context.Context, path string, variant subject.Variant, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	var src source.Source = source.NewGovernanceMock()
	if variant == subject.Market {
		src = source.NewMarketMock(source.MarketOptions{USDToINR: source.DefaultUSDToINR})
	}
	subjects, err := src.Fetch(ctx, "")
	if err != nil {
		return err
	}

	return config.WriteSubjectsFile(path, &config.SubjectsFile{
		Version:  config.SubjectsFileVersion,
		Variant:  string(variant),
		Subjects: subjects,
	})
}

func validateSubjectsFile(w io.Writer, path string) error {
	f, err := config.LoadSubjectsFile(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: %d %s subjects (version %s)\n", path, len(f.Subjects), f.Variant, f.Version)
	return nil
}
