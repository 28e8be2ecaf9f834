package shift

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"gophregister/internal/app/operator"
	"gophregister/internal/domain/shift"
)

type checklistResponse struct {
	Items  []string             `json:"items"`
	State  shift.ChecklistState `json:"state"`
	Locked bool                 `json:"locked"`
}

var ChecklistCmd = &cobra.Command{
	Use:   "checklist",
	Short: "Чек-лист закрытия кассы",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var out checklistResponse
		ok, err := operator.Run(cmd.Context(), http.MethodGet, "/api/v1/checklist", nil, &out)
		if err != nil || !ok {
			return err
		}
		printChecklist(out)
		return nil
	},
}

var markCmd = &cobra.Command{
	Use:   "mark <item>",
	Short: "Отметить пункт",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mark(cmd, args[0], true)
	},
}

var unmarkCmd = &cobra.Command{
	Use:   "unmark <item>",
	Short: "Снять отметку",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mark(cmd, args[0], false)
	},
}

var completeCmd = &cobra.Command{
	Use:   "complete",
	Short: "Закрыть кассу до конца дня",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var out checklistResponse
		ok, err := operator.Run(cmd.Context(), http.MethodPost, "/api/v1/checklist/complete", nil, &out)
		if err != nil || !ok {
			return err
		}
		operator.Success("Касса закрыта до открытия новой смены")
		return nil
	},
}

func mark(cmd *cobra.Command, item string, done bool) error {
	var out checklistResponse
	path := "/api/v1/checklist/items/" + url.PathEscape(item)
	ok, err := operator.Run(cmd.Context(), http.MethodPut, path, map[string]bool{"done": done}, &out)
	if err != nil || !ok {
		return err
	}
	printChecklist(out)
	return nil
}

func printChecklist(out checklistResponse) {
	done := make(map[string]bool, len(out.State.Items))
	for _, i := range out.State.Items {
		done[i] = true
	}
	for _, item := range out.Items {
		box := "[ ]"
		if done[item] {
			box = "[x]"
		}
		fmt.Printf("%s %s\n", box, item)
	}
	if out.Locked {
		operator.Warn("Касса закрыта на сегодня")
	}
}

func init() {
	ChecklistCmd.AddCommand(markCmd, unmarkCmd, completeCmd)
}
