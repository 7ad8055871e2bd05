package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/appetiteclub/pos/pkg/gateway"
	"github.com/spf13/cobra"
)

// NewSignCommand signs a gateway callback payload the way the gateway does,
// for replaying callbacks against a local cashier service.
func NewSignCommand(env *Env) *cobra.Command {
	var (
		secret  string
		payload string
	)

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a payment gateway callback payload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = env.Config.GetStringOrDef("gateway.secret", "")
			}
			if secret == "" {
				return fmt.Errorf("gateway secret is required (--secret or UTILS_GATEWAY_SECRET)")
			}

			data, err := readPayload(cmd, payload)
			if err != nil {
				return err
			}
			fields, err := gateway.ParseFields(data)
			if err != nil {
				return err
			}

			fields[gateway.SignatureField] = gateway.Sign([]byte(secret), fields)
			out, err := json.Marshal(fields)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "gateway HMAC secret")
	cmd.Flags().StringVarP(&payload, "payload", "p", "-", "payload JSON file, - for stdin")
	return cmd
}

func readPayload(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read payload: %w", err)
	}
	return data, nil
}
