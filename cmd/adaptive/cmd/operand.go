package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/site-bender/sitebender-sub007/internal/engine"
	"github.com/site-bender/sitebender-sub007/internal/types"
)

var operandCmd = &cobra.Command{
	Use:   "operand",
	Short: "Manage stored operand trees",
}

var operandPutCmd = &cobra.Command{
	Use:   "put <element> <property> <file>",
	Short: "Compile and store an operand tree for an element property",
	Args:  cobra.ExactArgs(3),
	RunE:  runOperandPut,
}

var operandGetCmd = &cobra.Command{
	Use:   "get <element> <property>",
	Short: "Print a stored operand tree",
	Args:  cobra.ExactArgs(2),
	RunE:  runOperandGet,
}

var operandListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored operand trees",
	Args:  cobra.NoArgs,
	RunE:  runOperandList,
}

var operandDeleteCmd = &cobra.Command{
	Use:   "delete <element> <property>",
	Short: "Delete a stored operand tree",
	Args:  cobra.ExactArgs(2),
	RunE:  runOperandDelete,
}

var operandHistoryCmd = &cobra.Command{
	Use:   "history <element> <property>",
	Short: "Show recent evaluations of a stored operand tree",
	Args:  cobra.ExactArgs(2),
	RunE:  runOperandHistory,
}

func init() {
	rootCmd.AddCommand(operandCmd)
	operandCmd.AddCommand(operandPutCmd, operandGetCmd, operandListCmd, operandDeleteCmd, operandHistoryCmd)

	operandGetCmd.Flags().StringP("output", "o", "json", "output format (json, yaml)")
	operandListCmd.Flags().String("element", "", "only list trees for this element")
	operandHistoryCmd.Flags().Int("limit", 20, "number of evaluations to show")
}

func elementArgs(args []string) (string, types.Property, error) {
	prop, err := types.ParseProperty(args[1])
	if err != nil {
		return "", "", err
	}
	return args[0], prop, nil
}

func runOperandPut(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	element, prop, err := elementArgs(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}
	op, err := engine.LoadOperandFile(args[2])
	if err != nil {
		return err
	}
	compiled, err := eng.Compile(op)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	rec, err := store.PutOperand(ctx, element, prop, compiled.Root, compiled.Tags, compiled.Cost)
	if err != nil {
		return err
	}
	logger.Info("operand stored", "operand_id", rec.ID, "element", element, "property", prop, "cost", rec.Cost)
	fmt.Fprintln(cmd.OutOrStdout(), rec.ID)
	return nil
}

func runOperandGet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	element, prop, err := elementArgs(args)
	if err != nil {
		return err
	}
	output, _ := cmd.Flags().GetString("output")

	store, closeStore, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	rec, err := store.GetOperand(ctx, element, prop)
	if err != nil {
		return err
	}
	op, err := rec.Operand()
	if err != nil {
		return err
	}
	encoded := types.Plain(types.EncodeOperand(op))

	switch output {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(encoded)
	case "yaml":
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(encoded)
	default:
		return fmt.Errorf("invalid --output %q (want json or yaml)", output)
	}
}

func runOperandList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	element, _ := cmd.Flags().GetString("element")

	store, closeStore, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	recs, err := store.ListOperands(ctx, element)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ELEMENT\tPROPERTY\tCOST\tTAGS\tUPDATED\tID")
	for _, r := range recs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
			r.Element, r.Property, r.Cost, strings.ReplaceAll(r.Tags, ",", " "),
			r.UpdatedAt.UTC().Format(time.RFC3339), r.ID)
	}
	return w.Flush()
}

func runOperandDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	element, prop, err := elementArgs(args)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.DeleteOperand(ctx, element, prop); err != nil {
		return err
	}
	logger.Info("operand deleted", "element", element, "property", prop)
	return nil
}

func runOperandHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	element, prop, err := elementArgs(args)
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")

	store, closeStore, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	rec, err := store.GetOperand(ctx, element, prop)
	if err != nil {
		return err
	}
	evals, err := store.ListEvaluations(ctx, rec.ID, limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "EVALUATED\tCLIENT\tOK\tERRORS\tDURATION\tID")
	for _, e := range evals {
		fmt.Fprintf(w, "%s\t%s\t%v\t%d\t%dus\t%s\n",
			e.EvaluatedAt.UTC().Format(time.RFC3339), e.ClientID, e.OK, e.ErrorCount, e.DurationUs, e.ID)
	}
	return w.Flush()
}
