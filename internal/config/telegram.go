package config

type Telegram struct {
	BotToken string `env:"TELEGRAM_BOT_TOKEN"`
	ChatID   int64  `env:"TELEGRAM_CHAT_ID"`
}

func (t Telegram) Enabled() bool {
	return t.BotToken != "" && t.ChatID != 0
}
