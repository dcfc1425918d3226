// Contract commands: instantiate, execute, query, state.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"seathub/internal/core"
	"seathub/pkg/domain"
)

// readMsgArg returns the message payload from the positional argument,
// reading from a file when the argument starts with @.
func readMsgArg(arg string) ([]byte, error) {
	if strings.HasPrefix(arg, "@") {
		data, err := os.ReadFile(strings.TrimPrefix(arg, "@"))
		if err != nil {
			return nil, fmt.Errorf("read message file: %w", err)
		}
		return data, nil
	}
	return []byte(arg), nil
}

var instantiateCmd = &cobra.Command{
	Use:   "instantiate <msg-json|@file>",
	Short: "Instantiate the composed contract",
	Long: `Instantiate sets up every module of the composed contract in one
transaction. The message carries one instantiate payload per module.

Example:
  seathub --sender alice instantiate '{"ownable":{"owner":"alice"},"metadata":{"metadata":{"name":"X"}},"seat_token":{"name":"Seats","symbol":"SEAT","minter":"alice"},"hub_contract":"hub1"}'`,
	Args: cobra.ExactArgs(1),
	RunE: runInstantiate,
}

func runInstantiate(cmd *cobra.Command, args []string) error {
	raw, err := readMsgArg(args[0])
	if err != nil {
		return err
	}
	env, err := callEnv()
	if err != nil {
		return err
	}
	info, err := callInfo()
	if err != nil {
		return err
	}

	var resp core.ContractResponse
	if flagHub {
		var msg core.HubInstantiateMsg
		if err := json.Unmarshal(raw, &msg); err != nil {
			return fmt.Errorf("parse instantiate message: %w", err)
		}
		resp, err = newHub().Instantiate(cmd.Context(), env, info, msg)
	} else {
		var msg core.SeatInstantiateMsg
		if err := json.Unmarshal(raw, &msg); err != nil {
			return fmt.Errorf("parse instantiate message: %w", err)
		}
		var seat *core.Seat
		seat, err = newSeat(cmd)
		if err != nil {
			return err
		}
		resp, err = seat.Instantiate(cmd.Context(), env, info, msg)
	}
	if err != nil {
		return fmt.Errorf("instantiate: %w", err)
	}
	return printJSON(resp)
}

var executeCmd = &cobra.Command{
	Use:   "execute <msg-json|@file>",
	Short: "Execute a module operation",
	Long: `Execute routes a single-key module envelope to the addressed module.

Example:
  seathub --sender alice execute '{"sellable":{"list":{"listings":{"1":{"denom":"uturnt","amount":200}}}}}'
  seathub --sender bob --funds '[{"denom":"uturnt","amount":200}]' execute '{"sellable":{"buy":{"token_id":"1"}}}'`,
	Args: cobra.ExactArgs(1),
	RunE: runExecute,
}

func runExecute(cmd *cobra.Command, args []string) error {
	raw, err := readMsgArg(args[0])
	if err != nil {
		return err
	}
	env, err := callEnv()
	if err != nil {
		return err
	}
	info, err := callInfo()
	if err != nil {
		return err
	}

	var resp core.ContractResponse
	if flagHub {
		resp, err = newHub().Execute(cmd.Context(), env, info, raw)
	} else {
		var seat *core.Seat
		seat, err = newSeat(cmd)
		if err != nil {
			return err
		}
		resp, err = seat.Execute(cmd.Context(), env, info, raw)
	}
	if err != nil {
		return fmt.Errorf("execute: %w", err)
	}
	return printJSON(resp)
}

var queryCmd = &cobra.Command{
	Use:   "query <msg-json|@file>",
	Short: "Query contract state",
	Long: `Query routes a single-key module envelope to the addressed module
through a read-only view.

Example:
  seathub query '{"ownable":{"get_owner":{}}}'
  seathub query '{"seats":{}}'`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
	raw, err := readMsgArg(args[0])
	if err != nil {
		return err
	}
	env, err := callEnv()
	if err != nil {
		return err
	}

	var out any
	if flagHub {
		out, err = newHub().Query(cmd.Context(), env, raw)
	} else {
		var seat *core.Seat
		seat, err = newSeat(cmd)
		if err != nil {
			return err
		}
		out, err = seat.Query(cmd.Context(), env, raw)
	}
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	return printJSON(out)
}

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Dump the full contract state",
	Long:  `State captures and prints a JSON snapshot of the contract's persistent state.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := core.CaptureState(cmd.Context(), store, domain.Address(flagContract))
		if err != nil {
			return fmt.Errorf("capture state: %w", err)
		}
		return printJSON(snap)
	},
}
