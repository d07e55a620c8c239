package notifier

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"
)

// pollHold is how long getUpdates may hold the connection open.
const pollHold = 30

// CommandHandler turns an incoming command into a reply; an empty reply sends nothing.
type CommandHandler func(ctx context.Context, command string) string

type update struct {
	UpdateID int `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

// StartPolling long-polls getUpdates and answers each command in the chat it
// came from. Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	offset := 0
	for ctx.Err() == nil {
		updates, err := t.getUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Printf("[WARN] telegram polling: %v", err)
			sleep(ctx, 5*time.Second)
			continue
		}
		for _, u := range updates {
			offset = u.UpdateID + 1
			t.dispatch(ctx, u, handler)
		}
	}
	log.Println("[INFO] telegram polling stopped")
}

func (t *TelegramNotifier) getUpdates(ctx context.Context, offset int) ([]update, error) {
	payload := map[string]interface{}{
		"offset":          offset,
		"timeout":         pollHold,
		"allowed_updates": []string{"message"},
	}
	var updates []update
	if err := t.call(ctx, "getUpdates", payload, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

func (t *TelegramNotifier) dispatch(ctx context.Context, u update, handler CommandHandler) {
	if u.Message == nil {
		return
	}
	text := strings.TrimSpace(u.Message.Text)
	if text == "" {
		return
	}
	log.Printf("[INFO] received command: %s", text)
	reply := handler(ctx, text)
	if reply == "" {
		return
	}
	chatID := t.ChatID
	if u.Message.Chat.ID != 0 {
		chatID = strconv.FormatInt(u.Message.Chat.ID, 10)
	}
	if err := t.SendTo(chatID, reply); err != nil {
		log.Printf("[ERROR] send reply to %s: %v", chatID, err)
	}
}
