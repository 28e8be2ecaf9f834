// cmd/client/cmd/root.go
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"gophregister/internal/app/operator"
	"gophregister/internal/app/register/config"
)

var (
	cfgFile    string
	cfg        *config.Config
	jsonOutput bool
	apiAddress string
)

var rootCmd = &cobra.Command{
	Use:   "gophregister",
	Short: "GophRegister - терминал оператора кассы",
	Long: `GophRegister: интерфейс оператора для кассы, работающей офлайн.

Команды обращаются к локальному API кассы (gophregisterd). Смены, продажи,
расходы и доставки записываются локально и выгружаются в облако в фоне.`,
	PersistentPreRunE: setupClient,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func setupClient(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = loadConfig()
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	if apiAddress != "" {
		cfg.APIAddress = apiAddress
	}

	// вывод в пайп всегда в JSON
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		jsonOutput = true
	}

	client, err := operator.New(cfg)
	if err != nil {
		return err
	}

	ctx := operator.WithClient(cmd.Context(), client)
	ctx = operator.WithJSON(ctx, jsonOutput)
	cmd.SetContext(ctx)
	return nil
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}

		viper.AddConfigPath(filepath.Join(home, ".gophregister"))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	return config.MustLoad(), nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "конфигурационный файл")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "вывод в формате JSON")
	rootCmd.PersistentFlags().StringVar(&apiAddress, "api", "", "адрес локального API кассы")
}
