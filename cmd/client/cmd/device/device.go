package device

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"gophregister/internal/app/operator"
	"gophregister/internal/domain/monitor"
)

var operatorID string

var DeviceCmd = &cobra.Command{
	Use:   "device",
	Short: "Привязка кассы и выбор филиала",
}

type statusResponse struct {
	Provisioned    bool   `json:"provisioned"`
	OrganizationID string `json:"organization_id"`
	DeviceID       string `json:"device_id"`
	BranchID       string `json:"branch_id"`
	OperatorID     string `json:"operator_id"`
}

var StatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Состояние привязки кассы",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var out statusResponse
		ok, err := operator.Run(cmd.Context(), http.MethodGet, "/api/v1/device", nil, &out)
		if err != nil || !ok {
			return err
		}
		printStatus(out)
		return nil
	},
}

var SelectCmd = &cobra.Command{
	Use:   "select <branch-id>",
	Short: "Выбрать филиал кассы",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]string{"branch_id": args[0], "operator_id": operatorID}
		var out statusResponse
		ok, err := operator.Run(cmd.Context(), http.MethodPut, "/api/v1/device/context", body, &out)
		if err != nil || !ok {
			return err
		}
		operator.Success("Филиал %s выбран", out.BranchID)
		return nil
	},
}

var ProvisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Привязать кассу к организации",
	Long: `Открывает сессию привязки. Отсканируйте QR-код по ссылке в приложении
администратора, касса дождется подтверждения в фоне.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var out struct {
			SessionID string `json:"session_id"`
			QRURL     string `json:"qr_url"`
		}
		ok, err := operator.Run(cmd.Context(), http.MethodPost, "/api/v1/device/provision", nil, &out)
		if err != nil || !ok {
			return err
		}
		fmt.Printf("Сессия: %s\n", out.SessionID)
		fmt.Printf("Ссылка для подтверждения: %s\n", out.QRURL)
		fmt.Println("Статус привязки: gophregister device status")
		return nil
	},
}

var SignOutCmd = &cobra.Command{
	Use:   "sign-out",
	Short: "Удалить токен устройства",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ok, err := operator.Run(cmd.Context(), http.MethodPost, "/api/v1/device/sign-out", nil, nil)
		if err != nil || !ok {
			return err
		}
		operator.Success("Токен устройства удален, локальные данные сохранены")
		return nil
	},
}

var NoticesCmd = &cobra.Command{
	Use:   "notices",
	Short: "Сообщения кассы оператору",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var out struct {
			Notices []monitor.Notice `json:"notices"`
		}
		ok, err := operator.Run(cmd.Context(), http.MethodGet, "/api/v1/notices", nil, &out)
		if err != nil || !ok {
			return err
		}
		if len(out.Notices) == 0 {
			fmt.Println("Сообщений нет")
			return nil
		}
		for _, n := range out.Notices {
			line := fmt.Sprintf("%s  %s", n.At.Local().Format("15:04:05"), n.Message)
			if n.Level == monitor.LevelWarn {
				operator.Warn("%s", line)
				continue
			}
			fmt.Println(line)
		}
		return nil
	},
}

func printStatus(s statusResponse) {
	if s.Provisioned {
		operator.Success("Касса привязана к организации %s", s.OrganizationID)
	} else {
		operator.Warn("Касса не привязана: gophregister device provision")
	}
	fmt.Printf("Устройство: %s\n", s.DeviceID)
	fmt.Printf("Филиал:     %s\n", valueOr(s.BranchID, "не выбран"))
	fmt.Printf("Оператор:   %s\n", valueOr(s.OperatorID, "-"))
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func init() {
	SelectCmd.Flags().StringVar(&operatorID, "operator", "", "оператор по умолчанию")
}
