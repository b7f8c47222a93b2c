package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/dropwatch/internal/classify"
	"github.com/jonathan/dropwatch/internal/signals"
	"github.com/jonathan/dropwatch/internal/types"
)

var classifyCommand = &cobra.Command{
	Use:   "classify",
	Short: "Dry-run the classifier against a title",
	Long: `Shows how a product title is classified with the configured keyword sets: thematic and rarity matches, the title-only verdict, whether the product page would be fetched, and any price or LE count found in the title.

With --page-signals the title is treated as coming from a source with page-level exclusivity signals; --page-text supplies the product page text used for that check.`,
	RunE: runClassifyCmd,
}

var (
	classifyTitle       string
	classifyPageSignals bool
	classifyPageText    string
)

func init() {
	classifyCommand.Flags().StringVar(&classifyTitle, "title", "", "Product title to classify (required)")
	classifyCommand.Flags().BoolVar(&classifyPageSignals, "page-signals", false, "Classify as a source with page-level exclusivity signals")
	classifyCommand.Flags().StringVar(&classifyPageText, "page-text", "", "Product page text for page-level and stock signals")

	_ = classifyCommand.MarkFlagRequired("title")

	rootCmd.AddCommand(classifyCommand)
}

func runClassifyCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd, processEnv())
	if err != nil {
		return err
	}

	extractor := newExtractor(cfg)
	classifier := classify.New(extractor, classify.Options{ThematicFilteringDisabled: cfg.ThematicFilteringDisabled})
	writeVerdict(os.Stdout, extractor, classifier, classifyTitle, classifyPageSignals, classifyPageText)
	return nil
}

// writeVerdict prints one line per signal and the resulting verdicts.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func writeVerdict(out io.Writer, extractor *signals.Extractor, classifier *classify.Classifier, title string, pageSignals bool, pageText string) {
	target := types.Target{PageLevelSignals: pageSignals}
	item := types.CandidateItem{Title: title}

	fmt.Fprintf(out, "Title:            %s\n", title)
	fmt.Fprintf(out, "Thematic:         %t\n", extractor.Thematic(title))
	fmt.Fprintf(out, "Rarity keyword:   %t\n", extractor.Rarity(title))
	fmt.Fprintf(out, "Title qualifies:  %t\n", classifier.TitleQualifies(title))
	fmt.Fprintf(out, "Fetch product:    %t\n", classifier.ShouldFetchDetail(item, target))

	if le := signals.ExtractLECount(title); le != nil {
		fmt.Fprintf(out, "LE count:         %d\n", *le)
	}
	if price := extractor.ExtractPriceText(title); price != nil {
		fmt.Fprintf(out, "Price:            %s\n", *price)
	}

	pageExclusive := false
	if pageText != "" {
		pageExclusive = pageSignals && extractor.PageExclusive(pageText)
		fmt.Fprintf(out, "Page exclusive:   %t\n", pageExclusive)
		fmt.Fprintf(out, "Page stock:       %s\n", signals.StockStatus(pageText))
		if le := signals.ExtractLECount(pageText); le != nil {
			fmt.Fprintf(out, "Page LE count:    %d\n", *le)
		}
	}
	fmt.Fprintf(out, "Qualifies:        %t\n", classifier.Qualifies(title, target, pageExclusive))
}
