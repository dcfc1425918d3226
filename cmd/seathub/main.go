// Package main provides the seathub CLI: instantiate, execute, and query the
// composed seat and hub contracts against a configured persistent store.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"seathub/internal/core"
	"seathub/pkg/domain"
)

var (
	// configDir is set by the --config flag.
	configDir string

	flagSender   string
	flagContract string
	flagFunds    string
	flagNow      string
	flagHub      bool

	// store is the global persistent store, opened on startup.
	store domain.PersistentStore
	// bondedDenom defaults a sale price denomination.
	bondedDenom string
	// contractOpts carries the configured archiver into contract construction.
	contractOpts []core.Option
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "seathub",
	Short: "Seathub operates composed marketplace contracts",
	Long: `Seathub instantiates, executes, and queries the composed seat and hub
contracts against a persistent store selected by configuration: an embedded
sqlite file, a PostgreSQL server, or process memory.`,
	PersistentPreRunE: initStore,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeStore()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default: ~/.seathub)")
	rootCmd.PersistentFlags().StringVar(&flagSender, "sender", "", "address sending the message")
	rootCmd.PersistentFlags().StringVar(&flagContract, "contract", "seat", "contract address used in the execution context")
	rootCmd.PersistentFlags().StringVar(&flagFunds, "funds", "", `funds attached to an execute, as JSON coins: [{"denom":"uturnt","amount":200}]`)
	rootCmd.PersistentFlags().StringVar(&flagNow, "now", "", "logical block time, RFC 3339 (default: wall clock)")
	rootCmd.PersistentFlags().BoolVar(&flagHub, "hub", false, "operate the hub composition (ownable + metadata) instead of the seat")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(instantiateCmd)
	rootCmd.AddCommand(executeCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(stateCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("seathub v0.1.0")
	},
}

// initStore loads configuration and opens the persistent store.
func initStore(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	cfg, err := loadConfig(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	bondedDenom = cfg.GetString(cfgKeyBondedDenom)

	store, err = openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	if cfg.GetBool(cfgKeyArchiveEnabled) {
		archiver, err := openArchiver(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("open archiver: %w", err)
		}
		contractOpts = append(contractOpts, core.WithArchiver(archiver))
	}
	return nil
}

func closeStore() error {
	if closer, ok := store.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// callEnv assembles the execution context from the persistent flags.
func callEnv() (domain.Env, error) {
	now := time.Now().UTC()
	if flagNow != "" {
		parsed, err := time.Parse(time.RFC3339, flagNow)
		if err != nil {
			return domain.Env{}, fmt.Errorf("parse --now: %w", err)
		}
		now = parsed
	}
	return domain.Env{Contract: domain.Address(flagContract), Now: now}, nil
}

func callInfo() (domain.MsgInfo, error) {
	info := domain.MsgInfo{Sender: domain.Address(flagSender)}
	if flagFunds != "" {
		if err := json.Unmarshal([]byte(flagFunds), &info.Funds); err != nil {
			return domain.MsgInfo{}, fmt.Errorf("parse --funds: %w", err)
		}
	}
	return info, nil
}

func newSeat(cmd *cobra.Command) (*core.Seat, error) {
	return core.NewSeat(cmd.Context(), store, domain.StaticChain{Denom: bondedDenom}, contractOpts...)
}

func newHub() *core.Hub {
	return core.NewHub(store, contractOpts...)
}

// printJSON renders command output as indented JSON on stdout.
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
