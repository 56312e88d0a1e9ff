package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"connex/internal/config"
	"connex/internal/domain"
	"connex/internal/repo"
)

const (
	defaultWebhookInterval = 2 * time.Second
	defaultWebhookTimeout  = 5 * time.Second
	defaultWebhookBatch    = 100
)

// ActionFeed is the slice of the store the dispatcher reads from.
type ActionFeed interface {
	FindActions(ctx context.Context, f repo.ActionFilter) ([]domain.Action, error)
}

type webhookDispatcher struct {
	feed     ActionFeed
	webhooks []config.WebhookConfig
	client   *http.Client
	interval time.Duration
	batch    int
	mu       sync.Mutex
	cursors  map[int]int64
}

// StartWebhookDispatcher delivers new ledger entries to the configured hooks
// until ctx is cancelled. Entries recorded before the call are not sent.
func StartWebhookDispatcher(ctx context.Context, feed ActionFeed, hooks []config.WebhookConfig) {
	if feed == nil || len(hooks) == 0 {
		return
	}
	d := newWebhookDispatcher(feed, hooks)
	go d.run(ctx)
}

func newWebhookDispatcher(feed ActionFeed, hooks []config.WebhookConfig) *webhookDispatcher {
	return &webhookDispatcher{
		feed:     feed,
		webhooks: hooks,
		client:   &http.Client{Timeout: defaultWebhookTimeout},
		interval: defaultWebhookInterval,
		batch:    defaultWebhookBatch,
		cursors:  make(map[int]int64),
	}
}

func (d *webhookDispatcher) run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		d.dispatchAll(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (d *webhookDispatcher) dispatchAll(ctx context.Context) {
	for i, hook := range d.webhooks {
		if !hook.WebhookEnabled() || strings.TrimSpace(hook.URL) == "" {
			continue
		}
		d.dispatchWebhook(ctx, i, hook)
	}
}

func (d *webhookDispatcher) dispatchWebhook(ctx context.Context, idx int, hook config.WebhookConfig) {
	cursor := d.cursorFor(ctx, idx)
	actions, err := d.feed.FindActions(ctx, repo.ActionFilter{AfterSeq: cursor, Ascending: true, Limit: d.batch})
	if err != nil {
		log.Printf("webhook: fetch actions failed: %v", err)
		return
	}
	filter := newTypeFilter(hook.Types)
	for _, a := range actions {
		if !filter.match(a.Type) {
			d.setCursor(idx, a.Seq)
			continue
		}
		if err := d.postAction(ctx, hook, a); err != nil {
			log.Printf("webhook: deliver to %s failed: %v", hook.URL, err)
			return
		}
		d.setCursor(idx, a.Seq)
	}
}

func (d *webhookDispatcher) cursorFor(ctx context.Context, idx int) int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if cur, ok := d.cursors[idx]; ok {
		return cur
	}
	var cur int64
	latest, err := d.feed.FindActions(ctx, repo.ActionFilter{Limit: 1})
	if err != nil {
		log.Printf("webhook: init cursor failed: %v", err)
	} else if len(latest) > 0 {
		cur = latest[0].Seq
	}
	d.cursors[idx] = cur
	return cur
}

func (d *webhookDispatcher) setCursor(idx int, value int64) {
	d.mu.Lock()
	d.cursors[idx] = value
	d.mu.Unlock()
}

func (d *webhookDispatcher) postAction(ctx context.Context, hook config.WebhookConfig, a domain.Action) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hook.URL, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Connex-Action", a.Type)
	req.Header.Set("X-Connex-Delivery", fmt.Sprintf("%d", a.Seq))
	res, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return fmt.Errorf("status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

type typeFilter struct {
	all bool
	set map[string]struct{}
}

func newTypeFilter(types []string) typeFilter {
	set := make(map[string]struct{}, len(types))
	for _, t := range types {
		if key := strings.TrimSpace(t); key != "" {
			set[key] = struct{}{}
		}
	}
	if len(set) == 0 {
		return typeFilter{all: true}
	}
	return typeFilter{set: set}
}

func (f typeFilter) match(actionType string) bool {
	if f.all {
		return true
	}
	_, ok := f.set[actionType]
	return ok
}
