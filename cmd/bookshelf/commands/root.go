package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd без подкоманды запускает сервер
var rootCmd = &cobra.Command{
	Use:   "bookshelf",
	Short: "my-books: каталог книг с оценками",
	Long: `HTTP-сервис каталога книг: регистрация и вход по JWT,
CRUD книг с обложками, оценки пользователей и топ лучших книг.

Конфигурация читается из окружения (и .env для локальной разработки).`,
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute запускает корневую команду
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
}
