package cmd

import (
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/SaugatGautam100/courseplex-sub001/adminbot"
	"github.com/SaugatGautam100/courseplex-sub001/logging"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram admin bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.TelegramBotToken == "" || cfg.TelegramAdminChatID == 0 {
			return errors.New("TELEGRAM_BOT_TOKEN and TELEGRAM_ADMIN_CHAT_ID are required")
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := loadApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		b, err := adminbot.New(cfg.TelegramBotToken, cfg.TelegramAdminChatID, a.st, a.opts, a.rewards, logging.Logger)
		if err != nil {
			return err
		}
		return b.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(botCmd)
}

