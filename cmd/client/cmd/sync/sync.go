package sync

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/spf13/cobra"

	"gophregister/internal/app/operator"
	domainsync "gophregister/internal/domain/sync"
)

var (
	pullOnly    bool
	pushOnly    bool
	syncStatus  bool
	pruneDays   int
	pruneNeeded bool
)

var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Синхронизация с облаком",
	Long: `Внеочередная синхронизация. Без флагов выполняет выгрузку локальных
изменений и затем загрузку данных филиала.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		switch {
		case syncStatus:
			return showStatus(cmd)
		case pruneNeeded:
			return prune(cmd)
		}

		if !pullOnly {
			if err := push(cmd); err != nil {
				return err
			}
		}
		if !pushOnly {
			return pull(cmd)
		}
		return nil
	},
}

func push(cmd *cobra.Command) error {
	var out struct {
		Result *domainsync.PushResult `json:"result"`
	}
	ok, err := operator.Run(cmd.Context(), http.MethodPost, "/api/v1/sync/push", nil, &out)
	if err != nil || !ok {
		return err
	}
	operator.Success("Выгружено строк: %d", out.Result.Sent)
	for _, entity := range sortedKeys(out.Result.Acked) {
		fmt.Printf("  %-11s %d\n", entity, out.Result.Acked[entity])
	}
	return nil
}

func pull(cmd *cobra.Command) error {
	var out struct {
		Result *domainsync.PullResult `json:"result"`
	}
	ok, err := operator.Run(cmd.Context(), http.MethodPost, "/api/v1/sync/pull", nil, &out)
	if err != nil || !ok {
		return err
	}
	operator.Success("Загружено строк: %d", out.Result.Upserted)
	if out.Result.SkippedDirty > 0 {
		fmt.Printf("  пропущено невыгруженных: %d\n", out.Result.SkippedDirty)
	}
	if out.Result.Pruned > 0 {
		fmt.Printf("  удалено старых строк: %d\n", out.Result.Pruned)
	}
	return nil
}

func showStatus(cmd *cobra.Command) error {
	var out struct {
		Sync *domainsync.Status `json:"sync"`
	}
	ok, err := operator.Run(cmd.Context(), http.MethodGet, "/api/v1/sync/status", nil, &out)
	if err != nil || !ok {
		return err
	}

	st := out.Sync
	fmt.Printf("Филиал:         %s\n", st.BranchID)
	if st.LastPullAt != nil {
		fmt.Printf("Загрузка:       %s\n", st.LastPullAt.Local().Format("2006-01-02 15:04:05"))
	}
	if st.LastPushAt != nil {
		fmt.Printf("Выгрузка:       %s\n", st.LastPushAt.Local().Format("2006-01-02 15:04:05"))
	}
	if st.LastError != "" {
		operator.Warn("Последняя ошибка: %s", st.LastError)
	}
	fmt.Println("Ожидают выгрузки:")
	for _, entity := range sortedKeys(st.Pending) {
		fmt.Printf("  %-11s %d\n", entity, st.Pending[entity])
	}
	return nil
}

func prune(cmd *cobra.Command) error {
	var out struct {
		Removed int64 `json:"removed"`
	}
	ok, err := operator.Run(cmd.Context(), http.MethodPost, "/api/v1/sync/prune", map[string]int{"days": pruneDays}, &out)
	if err != nil || !ok {
		return err
	}
	operator.Success("Удалено строк: %d", out.Removed)
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	SyncCmd.Flags().BoolVar(&pullOnly, "pull", false, "только загрузка")
	SyncCmd.Flags().BoolVar(&pushOnly, "push", false, "только выгрузка")
	SyncCmd.Flags().BoolVar(&syncStatus, "status", false, "показать состояние синхронизации")
	SyncCmd.Flags().BoolVar(&pruneNeeded, "prune", false, "удалить старые синхронизированные строки")
	SyncCmd.Flags().IntVar(&pruneDays, "days", 0, "срок хранения для --prune")
}
