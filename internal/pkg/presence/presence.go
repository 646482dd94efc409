// internal/pkg/presence/presence.go
package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = 90 * time.Second

// AgentPresence is what gets stored per heartbeat.
type AgentPresence struct {
	AgentID     string    `json:"agent_id"`
	DisplayName string    `json:"display_name,omitempty"`
	Connections int       `json:"connections"`
	LastSeenAt  time.Time `json:"last_seen_at"`
}

// Tracker keeps agent availability in Redis under TTL keys. An agent is
// online while its key has not expired; missing two heartbeats drops it.
type Tracker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewTracker(client *redis.Client) *Tracker {
	return &Tracker{client: client, ttl: defaultTTL}
}

// Heartbeat refreshes the agent's presence key.
func (t *Tracker) Heartbeat(ctx context.Context, p *AgentPresence) error {
	p.LastSeenAt = time.Now()

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal presence: %w", err)
	}
	if err := t.client.Set(ctx, t.key(p.AgentID), data, t.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store presence in redis: %w", err)
	}
	return nil
}

// Get returns the presence record for one agent, or nil when offline.
func (t *Tracker) Get(ctx context.Context, agentID string) (*AgentPresence, error) {
	data, err := t.client.Get(ctx, t.key(agentID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read presence: %w", err)
	}

	var p AgentPresence
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal presence: %w", err)
	}
	return &p, nil
}

// Online lists the agent ids with a live presence key.
func (t *Tracker) Online(ctx context.Context) ([]string, error) {
	var (
		cursor uint64
		out    []string
	)
	for {
		keys, next, err := t.client.Scan(ctx, cursor, "presence:agent:*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan presence keys: %w", err)
		}
		for _, k := range keys {
			out = append(out, k[len("presence:agent:"):])
		}
		if next == 0 {
			return out, nil
		}
		cursor = next
	}
}

// Drop removes an agent's presence immediately, used on websocket disconnect.
func (t *Tracker) Drop(ctx context.Context, agentID string) error {
	return t.client.Del(ctx, t.key(agentID)).Err()
}

func (t *Tracker) key(agentID string) string {
	return fmt.Sprintf("presence:agent:%s", agentID)
}
