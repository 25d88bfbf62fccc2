package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/corey/cfk/internal/adapters/bbolt"
)

var (
	historyLimit   int
	historyProfile string
	historyJSON    bool
	historyClear   bool
	historySummary bool
	historyList    bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the library lifecycle journal",
	Long:  "Reads register/initiate/terminate events recorded by `cfk watch`, newest first.",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	f := historyCmd.Flags()
	f.IntVarP(&historyLimit, "limit", "n", 20, "Max events (0 = all)")
	f.StringVar(&historyProfile, "profile", "", "Journal profile (default: configured profile)")
	f.BoolVar(&historyJSON, "json", false, "Output as JSON")
	f.BoolVar(&historyClear, "clear", false, "Delete the profile's events")
	f.BoolVar(&historySummary, "summary", false, "Last event per library")
	f.BoolVar(&historyList, "profiles", false, "List journal profiles")
}

func runHistory(cmd *cobra.Command, args []string) error {
	root, cfg, err := loadSettings()
	if err != nil {
		return err
	}
	if cfg.DBPath == "" {
		return fmt.Errorf("journal disabled (db_path is empty)")
	}
	profile := cfg.Profile
	if historyProfile != "" {
		profile = historyProfile
	}

	store, err := bbolt.NewStore(cfg.DBPath)
	if err != nil {
		if isDBLockError(err) {
			return fmt.Errorf("%s", diagnoseDBLock(root))
		}
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	if historyList {
		profiles, err := store.Profiles()
		if err != nil {
			return err
		}
		if historyJSON {
			return writeJSON(out, profileList{DB: store.Path(), Profiles: profiles})
		}
		fmt.Fprint(out, formatProfiles(store.Path(), profiles))
		return nil
	}

	if historyClear {
		if err := store.DeleteProfile(profile); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s\n", paint(colorBold, "▸ cleared profile"), profile)
		return nil
	}

	if historySummary {
		snap, err := store.Snapshot(profile)
		if err != nil {
			return err
		}
		if historyJSON {
			return writeJSON(out, snap)
		}
		entries := sortedSnapshot(snap)
		fmt.Fprint(out, formatHistory(profile, entries))
		return nil
	}

	entries, err := store.Entries(profile, historyLimit)
	if err != nil {
		return err
	}
	if historyJSON {
		return writeJSON(out, entries)
	}
	fmt.Fprint(out, formatHistory(profile, entries))
	return nil
}

// profileList is the JSON shape of history --profiles.
type profileList struct {
	DB       string   `json:"db"`
	Profiles []string `json:"profiles"`
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
