package shift

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"gophregister/internal/app/operator"
	"gophregister/internal/domain/shift"
)

var (
	operatorID   string
	historyLimit int
)

var ShiftCmd = &cobra.Command{
	Use:   "shift",
	Short: "Кассовые смены",
}

type shiftResponse struct {
	Shift   *shift.Shift `json:"shift"`
	Retaken bool         `json:"retaken"`
	Message string       `json:"message"`
}

var OpenCmd = &cobra.Command{
	Use:   "open <initial-cash>",
	Short: "Открыть смену",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]string{"initial_cash": args[0], "operator_id": operatorID}
		var out shiftResponse
		ok, err := operator.Run(cmd.Context(), http.MethodPost, "/api/v1/shifts/open", body, &out)
		if err != nil || !ok {
			return err
		}
		if out.Retaken {
			operator.Warn("Смена уже открыта, продолжаем ее")
		} else {
			operator.Success("Смена открыта")
		}
		printShift(cmd.Context(), out.Shift)
		return nil
	},
}

var CurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Открытая смена",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var out shiftResponse
		ok, err := operator.Run(cmd.Context(), http.MethodGet, "/api/v1/shifts/current", nil, &out)
		if err != nil || !ok {
			return err
		}
		printShift(cmd.Context(), out.Shift)
		return nil
	},
}

var CloseCmd = &cobra.Command{
	Use:   "close <final-cash>",
	Short: "Закрыть открытую смену",
	Long:  `Закрывает открытую смену. Ожидаемая наличность = размен + наличные продажи - расходы.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c, err := operator.FromContext(ctx)
		if err != nil {
			return err
		}

		var current shiftResponse
		if err := c.Do(ctx, http.MethodGet, "/api/v1/shifts/current", nil, &current); err != nil {
			return err
		}

		var out struct {
			Shift  *shift.Shift `json:"shift"`
			Totals shift.Totals `json:"totals"`
		}
		path := "/api/v1/shifts/" + url.PathEscape(current.Shift.ID) + "/close"
		ok, err := operator.Run(ctx, http.MethodPost, path, map[string]string{"final_cash": args[0]}, &out)
		if err != nil || !ok {
			return err
		}

		operator.Success("Смена закрыта")
		printShift(ctx, out.Shift)
		fmt.Printf("Продаж:    %d\n", out.Totals.SalesCount)
		fmt.Printf("Наличные:  %s\n", c.Money(out.Totals.CashSales))
		fmt.Printf("Расходы:   %s\n", c.Money(out.Totals.Expenses))
		return nil
	},
}

var HistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Последние смены филиала",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var out struct {
			Shifts []shift.Shift `json:"shifts"`
		}
		path := "/api/v1/shifts?limit=" + strconv.Itoa(historyLimit)
		ok, err := operator.Run(cmd.Context(), http.MethodGet, path, nil, &out)
		if err != nil || !ok {
			return err
		}
		for i := range out.Shifts {
			s := &out.Shifts[i]
			fmt.Printf("%s  %-6s  %-9s  %s\n", s.StartTime.Local().Format("2006-01-02 15:04"), s.Status, s.TurnType, s.ID)
		}
		return nil
	},
}

func printShift(ctx context.Context, s *shift.Shift) {
	if s == nil {
		return
	}
	c, _ := operator.FromContext(ctx)

	fmt.Printf("ID:        %s\n", s.ID)
	fmt.Printf("Статус:    %s\n", s.Status)
	fmt.Printf("Смена:     %s\n", s.TurnType)
	fmt.Printf("Начало:    %s\n", s.StartTime.Local().Format("2006-01-02 15:04"))
	fmt.Printf("Размен:    %s\n", c.Money(s.InitialCash))
	if s.ExpectedCash.Valid {
		fmt.Printf("Ожидалось: %s\n", c.Money(s.ExpectedCash.Decimal))
	}
	if s.FinalCash.Valid {
		fmt.Printf("Пересчет:  %s\n", c.Money(s.FinalCash.Decimal))
	}
}

func init() {
	OpenCmd.Flags().StringVar(&operatorID, "operator", "", "оператор смены")
	HistoryCmd.Flags().IntVar(&historyLimit, "limit", 10, "сколько смен показать")
}
