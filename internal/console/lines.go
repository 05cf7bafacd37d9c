package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"sleep_bot/internal/bot"
)

// Lines reads "<conversation> <text>" lines from r and writes replies to w as
// "[<conversation>] <text>". The update channel closes at end of input.
type Lines struct {
	r   io.Reader
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

func NewLines(r io.Reader, w io.Writer) *Lines {
	return &Lines{r: r, w: w, now: time.Now}
}

func (l *Lines) Updates(ctx context.Context) <-chan bot.Update {
	out := make(chan bot.Update)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(l.r)
		for scanner.Scan() {
			u, ok := l.parse(scanner.Text())
			if !ok {
				continue
			}
			select {
			case out <- u:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (l *Lines) Send(ctx context.Context, conversationID, text string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := fmt.Fprintf(l.w, "[%s] %s\n", conversationID, text); err != nil {
		return fmt.Errorf("send to %s: %w", conversationID, err)
	}
	return nil
}

func (l *Lines) parse(line string) (bot.Update, bool) {
	conversation, text, _ := strings.Cut(strings.TrimSpace(line), " ")
	if conversation == "" || strings.HasPrefix(conversation, "#") {
		return bot.Update{}, false
	}
	text = strings.TrimSpace(text)

	u := bot.Update{ConversationID: conversation, Date: l.now()}
	if name, ok := strings.CutPrefix(text, "/join "); ok {
		u.NewMembers = []string{strings.TrimSpace(name)}
	} else {
		u.Text = text
	}
	return u, true
}
