package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/site-bender/sitebender-sub007/internal/engine"
	"github.com/site-bender/sitebender-sub007/internal/types"
)

// ErrEvaluationFailed is returned when an evaluation produces a left result.
// The result itself has already been printed.
var ErrEvaluationFailed = errors.New("evaluation failed")

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [operand-file]",
	Short: "Evaluate an operand tree and print the result",
	Long: `Evaluates an operand tree read from a JSON or YAML file, or the tree stored
for --element/--property, and prints the result as JSON.

Exits with status 2 when the result is a failure.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
	evaluateCmd.Flags().String("arg", "", "argument as a JSON document")
	evaluateCmd.Flags().String("arg-file", "", "argument file (.json, .yaml)")
	evaluateCmd.Flags().String("locals", "", "local values file (.json, .yaml)")
	evaluateCmd.Flags().String("element", "", "evaluate the tree stored for this element")
	evaluateCmd.Flags().String("property", "", "stored tree property (calculation, display, format, validation)")
	evaluateCmd.Flags().String("locale", "", "default locale for formatting operators")
	evaluateCmd.Flags().String("policy", "", "And failure policy (collect-all, short-circuit)")
	evaluateCmd.Flags().Bool("compact", false, "print the result on one line")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}

	op, err := loadTarget(cmd, args)
	if err != nil {
		return err
	}
	if _, err := eng.Compile(op); err != nil {
		return err
	}

	arg, err := loadArgument(cmd)
	if err != nil {
		return err
	}

	locals := types.LocalValues{}
	if path, _ := cmd.Flags().GetString("locals"); path != "" {
		if locals, err = readLocals(path); err != nil {
			return err
		}
	}

	result := eng.Evaluate(op, arg, locals)

	compact, _ := cmd.Flags().GetBool("compact")
	enc := json.NewEncoder(cmd.OutOrStdout())
	if !compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	if result.IsLeft() {
		return ErrEvaluationFailed
	}
	return nil
}

// loadTarget reads the operand file argument or the stored tree.
func loadTarget(cmd *cobra.Command, args []string) (types.Operand, error) {
	element, _ := cmd.Flags().GetString("element")
	switch {
	case len(args) == 1 && element != "":
		return nil, fmt.Errorf("give either an operand file or --element, not both")
	case len(args) == 1:
		return engine.LoadOperandFile(args[0])
	case element == "":
		return nil, fmt.Errorf("an operand file or --element is required")
	}

	property, _ := cmd.Flags().GetString("property")
	prop, err := types.ParseProperty(property)
	if err != nil {
		return nil, err
	}

	store, closeStore, err := openStore(cmd.Context(), cmd)
	if err != nil {
		return nil, err
	}
	defer closeStore()

	rec, err := store.GetOperand(cmd.Context(), element, prop)
	if err != nil {
		return nil, err
	}
	return rec.Operand()
}

func loadArgument(cmd *cobra.Command) (types.Value, error) {
	inline, _ := cmd.Flags().GetString("arg")
	path, _ := cmd.Flags().GetString("arg-file")
	switch {
	case inline != "" && path != "":
		return nil, fmt.Errorf("give either --arg or --arg-file, not both")
	case inline != "":
		v, err := engine.LoadValue([]byte(inline), engine.FormatJSON)
		if err != nil {
			return nil, fmt.Errorf("--arg: %w", err)
		}
		return v, nil
	case path != "":
		format, err := engine.FormatFromPath(path)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read argument file: %w", err)
		}
		return engine.LoadValue(data, format)
	default:
		return nil, nil
	}
}

func readLocals(path string) (types.LocalValues, error) {
	format, err := engine.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read local values file: %w", err)
	}
	return engine.LoadLocalValues(data, format)
}
