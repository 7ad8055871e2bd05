package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/appetiteclub/pos/pkg/validate"
	"github.com/spf13/cobra"
)

const defaultKitchenURL = "http://localhost:8087"

func NewSeedTimingCommand(env *Env) *cobra.Command {
	var (
		file       string
		kitchenURL string
	)

	cmd := &cobra.Command{
		Use:   "seed-timing",
		Short: "Load station timing rules from a YAML file",
		Long: `Load station timing rules from a YAML file into the kitchen service.

Each station in the file replaces the rules currently stored for it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if kitchenURL == "" {
				kitchenURL = env.Config.GetStringOrDef("kitchen.url", defaultKitchenURL)
			}

			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("cannot open timing rules: %w", err)
			}
			defer f.Close()

			rules, err := validate.LoadTimingFile(f)
			if err != nil {
				return err
			}

			client := &http.Client{Timeout: 10 * time.Second}
			for _, stationID := range rules.StationIDs() {
				if err := putTimingRules(cmd.Context(), client, kitchenURL, stationID, rules.Stations[stationID]); err != nil {
					return err
				}
				env.Logger.Info("Timing rules loaded", "station", stationID, "rules", len(rules.Stations[stationID]))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "timing rules YAML file")
	cmd.Flags().StringVar(&kitchenURL, "kitchen-url", "", "kitchen service base url")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func putTimingRules(ctx context.Context, client *http.Client, baseURL, stationID string, rules []validate.TimingRuleInput) error {
	body, err := json.Marshal(map[string]interface{}{"rules": rules})
	if err != nil {
		return err
	}

	endpoint := strings.TrimRight(baseURL, "/") + "/stations/" + url.PathEscape(stationID) + "/timing-rules"
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("put timing rules for %s: %w", stationID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("put timing rules for %s: unexpected status %d", stationID, resp.StatusCode)
	}
	return nil
}
