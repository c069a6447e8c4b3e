// Package notify delivers user-facing messages produced by card commands.
//
// Every message is logged. Messages are also appended to the Collector
// carried by the request context, if any, so a transport can return them to
// its caller, and pushed to an ntfy topic when one is configured.
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	userAgent = "japanese-cards/1"
	title     = "Japanese Cards"
)

// Notifier fans a message out to the log, the context collector and ntfy.
type Notifier struct {
	log      *slog.Logger
	endpoint string
	client   *http.Client
}

// NewNotifier creates a Notifier. An empty ntfyURL disables push delivery.
func NewNotifier(ntfyURL string, timeout time.Duration, logger *slog.Logger) *Notifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	n := &Notifier{
		log:      logger.With("adapter", "notify"),
		endpoint: strings.TrimSpace(ntfyURL),
	}
	if n.endpoint != "" {
		n.client = &http.Client{Timeout: timeout}
	}
	return n
}

// Notify never fails; push errors are logged.
func (n *Notifier) Notify(ctx context.Context, message string) {
	n.log.InfoContext(ctx, "notification", slog.String("message", message))

	if c := CollectorFromCtx(ctx); c != nil {
		c.add(message)
	}

	if n.client == nil {
		return
	}
	if err := n.push(ctx, message); err != nil {
		n.log.WarnContext(ctx, "ntfy push failed", slog.String("error", err.Error()))
	}
}

func (n *Notifier) push(ctx context.Context, message string) error {
	req, err := http.NewRequestWithContext(context.WithoutCancel(ctx), http.MethodPost, n.endpoint, strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("Title", title)
	req.Header.Set("Tags", "cards")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// ---------------------------------------------------------------------------
// Collector
// ---------------------------------------------------------------------------

// Collector accumulates the messages of one command invocation.
type Collector struct {
	mu       sync.Mutex
	messages []string
}

func (c *Collector) add(message string) {
	c.mu.Lock()
	c.messages = append(c.messages, message)
	c.mu.Unlock()
}

// Messages returns a copy of the collected messages in arrival order.
func (c *Collector) Messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.messages))
	copy(out, c.messages)
	return out
}

type collectorKey struct{}

// WithCollector returns a context carrying a fresh Collector.
func WithCollector(ctx context.Context) (context.Context, *Collector) {
	c := &Collector{}
	return context.WithValue(ctx, collectorKey{}, c), c
}

// CollectorFromCtx returns the Collector carried by ctx, or nil.
func CollectorFromCtx(ctx context.Context) *Collector {
	c, _ := ctx.Value(collectorKey{}).(*Collector)
	return c
}
