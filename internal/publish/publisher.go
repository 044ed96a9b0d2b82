// Package publish sends monitor results to downstream consumers.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// TopicPrefix is the root of every topic this service publishes to.
const TopicPrefix = "hivethermal"

var (
	ErrInvalidApiary = errors.New("invalid apiary name")
	ErrNotConnected  = errors.New("publisher not connected")
	ErrPublishFailed = errors.New("publish failed")
)

// Publisher delivers the latest state of an apiary.
type Publisher interface {
	Publish(ctx context.Context, apiary string, state any) error
	Close() error
}

// StateTopic returns the retained state topic for an apiary, e.g.
// hivethermal/north-field/state. MQTT wildcard and separator characters are
// replaced so one apiary maps to exactly one topic level.
func StateTopic(apiary string) (string, error) {
	slug := strings.Map(func(r rune) rune {
		switch r {
		case '/', '+', '#', ' ', '\t':
			return '-'
		}
		return r
	}, strings.ToLower(strings.TrimSpace(apiary)))
	if slug == "" || strings.Trim(slug, "-") == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidApiary, apiary)
	}
	return TopicPrefix + "/" + slug + "/state", nil
}

func encode(state any) ([]byte, error) {
	payload, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("%w: encode payload: %w", ErrPublishFailed, err)
	}
	return payload, nil
}

// Nop discards everything. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }
func (Nop) Close() error { return nil }
