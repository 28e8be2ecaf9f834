package sale

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"gophregister/internal/app/operator"
	"gophregister/internal/domain/sale"
)

var (
	paymentMethod string
	tip           string
	discount      string
	diners        int
)

var CheckoutCmd = &cobra.Command{
	Use:   "checkout <table>",
	Short: "Оплатить стол",
	Long: `Записывает продажу в открытую смену. Скидка не может превышать сумму
корзины, чаевые не входят в сумму продажи.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]interface{}{
			"table_id":        args[0],
			"payment_method":  paymentMethod,
			"tip_amount":      tip,
			"discount_amount": discount,
			"diners":          diners,
		}
		var out struct {
			Sale          *sale.Sale `json:"sale"`
			FinalizeError string     `json:"finalize_error"`
		}
		ok, err := operator.Run(cmd.Context(), http.MethodPost, "/api/v1/sales", body, &out)
		if err != nil || !ok {
			return err
		}

		c, _ := operator.FromContext(cmd.Context())
		operator.Success("Продажа %s записана", out.Sale.ID)
		fmt.Printf("Сумма:  %s (%s)\n", c.Money(out.Sale.TotalAmount), out.Sale.PaymentMethod)
		if out.Sale.TipAmount.IsPositive() {
			fmt.Printf("Чаевые: %s\n", c.Money(out.Sale.TipAmount))
		}
		if out.FinalizeError != "" {
			operator.Warn("Черновик заказа не удален: %s", out.FinalizeError)
		}
		return nil
	},
}

func init() {
	CheckoutCmd.Flags().StringVar(&paymentMethod, "pay", "cash", "способ оплаты: cash, card, transfer")
	CheckoutCmd.Flags().StringVar(&tip, "tip", "", "чаевые")
	CheckoutCmd.Flags().StringVar(&discount, "discount", "", "скидка")
	CheckoutCmd.Flags().IntVar(&diners, "diners", 0, "количество гостей")
}
