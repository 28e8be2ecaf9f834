package cart

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gophregister/internal/app/operator"
	"gophregister/internal/domain/cart"
)

var (
	note          string
	diners        int
	customerLabel string
)

var CartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Корзины столов",
	Long:  `Корзины столов. Для продажи без стола используйте стол walk-in.`,
}

type cartResponse struct {
	Cart *cart.Cart `json:"cart"`
}

func tablePath(table string, parts ...string) string {
	p := "/api/v1/carts/" + url.PathEscape(table)
	for _, part := range parts {
		p += "/" + url.PathEscape(part)
	}
	return p
}

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Открытые корзины",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var out struct {
			Carts []cart.Cart `json:"carts"`
		}
		ok, err := operator.Run(cmd.Context(), http.MethodGet, "/api/v1/carts", nil, &out)
		if err != nil || !ok {
			return err
		}
		c, _ := operator.FromContext(cmd.Context())
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "СТОЛ\tПОЗИЦИЙ\tСУММА")
		for i := range out.Carts {
			fmt.Fprintf(w, "%s\t%d\t%s\n", out.Carts[i].TableID, out.Carts[i].Units(), c.Money(out.Carts[i].Total()))
		}
		return w.Flush()
	},
}

var ShowCmd = &cobra.Command{
	Use:   "show <table>",
	Short: "Корзина стола",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return request(cmd.Context(), http.MethodGet, tablePath(args[0]), nil)
	},
}

var OpenCmd = &cobra.Command{
	Use:   "open <table>",
	Short: "Открыть стол",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]interface{}{
			"table_id":       args[0],
			"diners":         diners,
			"customer_label": customerLabel,
		}
		return request(cmd.Context(), http.MethodPost, "/api/v1/carts", body)
	},
}

var AddCmd = &cobra.Command{
	Use:   "add <table> <product-id>",
	Short: "Добавить товар",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]string{"product_id": args[1], "note": note}
		return request(cmd.Context(), http.MethodPost, tablePath(args[0], "lines"), body)
	},
}

var QuantityCmd = &cobra.Command{
	Use:   "qty <table> <line-id> <delta>",
	Short: "Изменить количество",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		delta, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("delta должна быть целым числом: %w", err)
		}
		return request(cmd.Context(), http.MethodPatch, tablePath(args[0], "lines", args[1]), map[string]int{"delta": delta})
	},
}

var RemoveCmd = &cobra.Command{
	Use:   "remove <table> <line-id>",
	Short: "Удалить строку",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return request(cmd.Context(), http.MethodDelete, tablePath(args[0], "lines", args[1]), nil)
	},
}

var ClearCmd = &cobra.Command{
	Use:   "clear <table>",
	Short: "Отменить заказ стола",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := operator.Run(cmd.Context(), http.MethodDelete, tablePath(args[0]), nil, nil)
		if err != nil || !ok {
			return err
		}
		operator.Success("Заказ стола %s отменен, товар возвращен на склад", args[0])
		return nil
	},
}

var TransferCmd = &cobra.Command{
	Use:   "transfer <from> <to>",
	Short: "Перенести заказ на свободный стол",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := operator.Run(cmd.Context(), http.MethodPost, tablePath(args[0], "transfer"), map[string]string{"to": args[1]}, nil)
		if err != nil || !ok {
			return err
		}
		operator.Success("Заказ перенесен: %s -> %s", args[0], args[1])
		return nil
	},
}

func request(ctx context.Context, method, path string, body interface{}) error {
	var out cartResponse
	ok, err := operator.Run(ctx, method, path, body, &out)
	if err != nil || !ok {
		return err
	}
	printCart(ctx, out.Cart)
	return nil
}

func printCart(ctx context.Context, c *cart.Cart) {
	if c == nil {
		return
	}
	client, _ := operator.FromContext(ctx)

	fmt.Printf("Стол %s", c.TableID)
	if c.CustomerLabel != "" {
		fmt.Printf(" (%s)", c.CustomerLabel)
	}
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "СТРОКА\tТОВАР\tКОЛ-ВО\tСУММА")
	for _, l := range c.Lines {
		name := l.Name
		if l.Note != "" {
			name += " [" + l.Note + "]"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", l.ID, name, l.Quantity, client.Money(l.Total()))
	}
	_ = w.Flush()
	fmt.Printf("Итого: %s\n", client.Money(c.Total()))
}

func init() {
	AddCmd.Flags().StringVar(&note, "note", "", "комментарий к позиции")
	OpenCmd.Flags().IntVar(&diners, "diners", 0, "количество гостей")
	OpenCmd.Flags().StringVar(&customerLabel, "label", "", "подпись заказа")
}
