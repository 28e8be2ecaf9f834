package expense

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gophregister/internal/app/operator"
	"gophregister/internal/domain/expense"
	"gophregister/internal/domain/shift"
)

var (
	category string
	voucher  string
)

var ExpenseCmd = &cobra.Command{
	Use:   "expense",
	Short: "Выдачи из кассы",
}

var AddCmd = &cobra.Command{
	Use:   "add <amount> <description>",
	Short: "Записать расход в открытую смену",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]string{
			"amount":      args[0],
			"description": args[1],
			"category":    category,
			"voucher":     voucher,
		}
		var out struct {
			Expense *expense.Expense `json:"expense"`
		}
		ok, err := operator.Run(cmd.Context(), http.MethodPost, "/api/v1/expenses", body, &out)
		if err != nil || !ok {
			return err
		}
		c, _ := operator.FromContext(cmd.Context())
		operator.Success("Расход %s записан: %s", out.Expense.ID, c.Money(out.Expense.Amount))
		return nil
	},
}

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Расходы открытой смены",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		c, err := operator.FromContext(ctx)
		if err != nil {
			return err
		}

		var current struct {
			Shift *shift.Shift `json:"shift"`
		}
		if err := c.Do(ctx, http.MethodGet, "/api/v1/shifts/current", nil, &current); err != nil {
			return err
		}

		var out struct {
			Expenses []expense.Expense `json:"expenses"`
		}
		path := "/api/v1/shifts/" + url.PathEscape(current.Shift.ID) + "/expenses"
		ok, err := operator.Run(ctx, http.MethodGet, path, nil, &out)
		if err != nil || !ok {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ВРЕМЯ\tСУММА\tОПИСАНИЕ")
		for _, e := range out.Expenses {
			fmt.Fprintf(w, "%s\t%s\t%s\n", e.CreatedAt.Local().Format("15:04"), c.Money(e.Amount), e.Description)
		}
		return w.Flush()
	},
}

func init() {
	AddCmd.Flags().StringVar(&category, "category", "", "категория")
	AddCmd.Flags().StringVar(&voucher, "voucher", "", "номер чека")
}
