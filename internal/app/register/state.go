package register

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gophregister/internal/domain/shift"
)

// AppState сохраняемое между запусками состояние кассы
type AppState struct {
	OrganizationID string               `json:"organization_id,omitempty"`
	DeviceID       string               `json:"device_id"`
	BranchID       string               `json:"branch_id,omitempty"`
	OperatorID     string               `json:"operator_id,omitempty"`
	Checklist      shift.ChecklistState `json:"checklist"`
	LastSyncAt     *time.Time           `json:"last_sync_at,omitempty"`
}

func loadAppState(path string) (*AppState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &AppState{}, nil
		}
		return nil, fmt.Errorf("ошибка чтения состояния: %w", err)
	}

	var state AppState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("ошибка разбора состояния: %w", err)
	}
	return &state, nil
}

func saveAppState(path string, state *AppState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации состояния: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("ошибка записи состояния: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("ошибка записи состояния: %w", err)
	}
	return nil
}
