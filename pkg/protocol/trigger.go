package protocol

import "context"

// TriggerCallback submits an execution request for a workflow with the
// given trigger payload.
type TriggerCallback func(ctx context.Context, workflowID string, data map[string]any) error

// TriggerSource is an external input feed (chat channel, webhook
// receiver, queue consumer) that converts inbound events into
// execution requests.
type TriggerSource interface {
	Start(ctx context.Context, callback TriggerCallback) error
	Stop(ctx context.Context) error
	Validate(ctx context.Context) error
}
