package commands

import (
	"errors"
	"fmt"

	"jira-stage-metrics/internal/jira"
	"jira-stage-metrics/internal/store"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	importSource string
	importInput  string
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Cache the issues of a Jira search response under a source id",
	Long: `Maps a Jira search response (fetched with expand=changelog) to issue records and merges them
into the JSONL cache of --source. Records with the same key replace earlier ones.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := store.ValidateSource(importSource); err != nil {
			return err
		}

		records, err := jira.DecodeFile(args[0], importInput)
		if err != nil {
			return err
		}

		st := store.NewRecordStore()
		if err := st.Load(cfg.CacheDir, importSource); err != nil && !errors.Is(err, store.ErrUnknownSource) {
			return err
		}
		added := st.Append(importSource, records)
		if err := st.Save(cfg.CacheDir, importSource); err != nil {
			return err
		}

		log.Info().
			Str("source", importSource).
			Int("records", len(records)).
			Int("new", added).
			Int("total", st.Count(importSource)).
			Msg("Import complete")
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d records (%d new) in %s\n",
			importSource, st.Count(importSource), added, store.CachePath(cfg.CacheDir, importSource))
		return err
	},
}

func init() {
	importCmd.Flags().StringVar(&importSource, "source", "", "source id to cache the records under")
	importCmd.Flags().StringVar(&importInput, "input", jira.InputJira, "input format: jira or records")
	_ = importCmd.MarkFlagRequired("source")
}
